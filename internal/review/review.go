// Package review carries completed candidates from the coordinator to
// whoever renders the accept/reject surface. The coordinator publishes; the
// console, the journal, and tests consume. Diffing the pair is the
// consumer's business.
package review

import (
	"time"

	"github.com/kingrea/redraft/internal/text"
	"github.com/kingrea/redraft/internal/transform"
)

// CompletedOp is the slice of an operation a consumer needs: enough to
// label, locate, and meter the change without reaching back into the
// registry.
type CompletedOp struct {
	ID       string
	Task     string
	Span     text.Span
	Snapshot string
	Result   string
	Usage    transform.Usage
	Duration time.Duration
}

// Candidate is one published (baseline, working copy) pair. Text is the full
// composited document after the operation's splice, not just the changed
// span.
type Candidate struct {
	SessionID string
	Baseline  string
	Text      string
	Op        CompletedOp
}

// Publisher receives candidates as completions land. Publish must not
// block for long; the coordinator defers it off the mutating path but a
// stalled publisher still stalls later candidates behind it.
type Publisher interface {
	Publish(Candidate)
}

// PublisherFunc adapts a plain function to the Publisher interface.
type PublisherFunc func(Candidate)

// Publish calls f.
func (f PublisherFunc) Publish(c Candidate) {
	f(c)
}

// Fanout delivers each candidate to every publisher in order. Nil entries
// are skipped so callers can wire optional consumers unconditionally.
func Fanout(publishers ...Publisher) Publisher {
	kept := make([]Publisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return PublisherFunc(func(c Candidate) {
		for _, p := range kept {
			p.Publish(c)
		}
	})
}
