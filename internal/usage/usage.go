// Package usage meters what transformations cost. The coordinator reports
// per-operation usage on success; recorders decide whether that becomes a
// log line, an aggregate, or nothing.
package usage

import (
	"sort"
	"sync"
	"time"

	"github.com/kingrea/redraft/internal/logbook"
	"github.com/kingrea/redraft/internal/transform"
)

// Recorder receives one report per successfully completed operation.
type Recorder interface {
	Record(task string, u transform.Usage, d time.Duration)
}

// RecorderFunc adapts a plain function to the Recorder interface.
type RecorderFunc func(task string, u transform.Usage, d time.Duration)

// Record calls f.
func (f RecorderFunc) Record(task string, u transform.Usage, d time.Duration) {
	f(task, u, d)
}

// Nop returns a recorder that discards every report.
func Nop() Recorder {
	return RecorderFunc(func(string, transform.Usage, time.Duration) {})
}

// Multi fans one report out to several recorders in order.
func Multi(recorders ...Recorder) Recorder {
	kept := make([]Recorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return RecorderFunc(func(task string, u transform.Usage, d time.Duration) {
		for _, r := range kept {
			r.Record(task, u, d)
		}
	})
}

// LogRecorder writes one logbook line per report.
type LogRecorder struct {
	book *logbook.Logbook
}

// NewLogRecorder wraps book; a nil book yields a recorder that drops reports.
func NewLogRecorder(book *logbook.Logbook) *LogRecorder {
	return &LogRecorder{book: book}
}

// Record appends an info line with the task, units, and wall-clock duration.
func (r *LogRecorder) Record(task string, u transform.Usage, d time.Duration) {
	if r == nil || r.book == nil {
		return
	}
	r.book.Info("usage: task=%s in=%d out=%d total=%d duration=%s",
		task, u.InputUnits, u.OutputUnits, u.Total(), d.Round(time.Millisecond))
}

// Totals aggregates the reports for one task.
type Totals struct {
	Task     string
	Calls    int
	Usage    transform.Usage
	Duration time.Duration
}

// Meter accumulates per-task totals in memory for the console status bar.
type Meter struct {
	mu      sync.Mutex
	perTask map[string]Totals
}

// NewMeter returns an empty meter.
func NewMeter() *Meter {
	return &Meter{perTask: map[string]Totals{}}
}

// Record folds one report into the task's running totals.
func (m *Meter) Record(task string, u transform.Usage, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	totals := m.perTask[task]
	totals.Task = task
	totals.Calls++
	totals.Usage = totals.Usage.Add(u)
	totals.Duration += d
	m.perTask[task] = totals
}

// Snapshot returns the per-task totals sorted by task name.
func (m *Meter) Snapshot() []Totals {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Totals, 0, len(m.perTask))
	for _, totals := range m.perTask {
		out = append(out, totals)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Task < out[j].Task })
	return out
}

// Total collapses every task into one grand total.
func (m *Meter) Total() Totals {
	m.mu.Lock()
	defer m.mu.Unlock()
	grand := Totals{Task: "total"}
	for _, totals := range m.perTask {
		grand.Calls += totals.Calls
		grand.Usage = grand.Usage.Add(totals.Usage)
		grand.Duration += totals.Duration
	}
	return grand
}
