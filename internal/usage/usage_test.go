package usage

import (
	"strings"
	"testing"
	"time"

	"github.com/kingrea/redraft/internal/logbook"
	"github.com/kingrea/redraft/internal/transform"
)

func TestMeterAggregatesPerTask(t *testing.T) {
	meter := NewMeter()
	meter.Record("proofread", transform.Usage{InputUnits: 10, OutputUnits: 5}, 100*time.Millisecond)
	meter.Record("proofread", transform.Usage{InputUnits: 2, OutputUnits: 3}, 50*time.Millisecond)
	meter.Record("shorten", transform.Usage{InputUnits: 4, OutputUnits: 1}, 25*time.Millisecond)

	snapshot := meter.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(snapshot))
	}
	if snapshot[0].Task != "proofread" || snapshot[1].Task != "shorten" {
		t.Fatalf("expected sorted task names, got %q then %q", snapshot[0].Task, snapshot[1].Task)
	}
	proofread := snapshot[0]
	if proofread.Calls != 2 {
		t.Fatalf("expected 2 proofread calls, got %d", proofread.Calls)
	}
	if proofread.Usage.InputUnits != 12 || proofread.Usage.OutputUnits != 8 {
		t.Fatalf("unexpected proofread usage: %+v", proofread.Usage)
	}
	if proofread.Duration != 150*time.Millisecond {
		t.Fatalf("unexpected proofread duration: %s", proofread.Duration)
	}

	grand := meter.Total()
	if grand.Calls != 3 || grand.Usage.Total() != 25 {
		t.Fatalf("unexpected grand total: %+v", grand)
	}
}

func TestLogRecorderWritesLine(t *testing.T) {
	dir := t.TempDir()
	book, err := logbook.New(dir + "/usage.log")
	if err != nil {
		t.Fatalf("create logbook: %v", err)
	}
	recorder := NewLogRecorder(book)
	recorder.Record("expand", transform.Usage{InputUnits: 3, OutputUnits: 7}, 42*time.Millisecond)

	lines, total := book.Tail(5)
	if total != 1 {
		t.Fatalf("expected one log line, got %d", total)
	}
	if !strings.Contains(lines[0], "task=expand") || !strings.Contains(lines[0], "in=3") {
		t.Fatalf("unexpected log line: %q", lines[0])
	}
}

func TestMultiFansOut(t *testing.T) {
	var first, second int
	recorder := Multi(
		RecorderFunc(func(string, transform.Usage, time.Duration) { first++ }),
		nil,
		RecorderFunc(func(string, transform.Usage, time.Duration) { second++ }),
	)
	recorder.Record("rewrite", transform.Usage{}, 0)
	if first != 1 || second != 1 {
		t.Fatalf("expected both recorders to fire, got %d and %d", first, second)
	}
}
