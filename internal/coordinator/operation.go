package coordinator

import (
	"time"

	"github.com/kingrea/redraft/internal/task"
	"github.com/kingrea/redraft/internal/text"
	"github.com/kingrea/redraft/internal/transform"
)

// Status is an operation's lifecycle state. Cancellation never appears
// here: a cancelled operation is removed, and absence is its only trace.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Settled reports whether the operation reached a terminal status.
func (s Status) Settled() bool {
	return s == StatusCompleted || s == StatusError
}

// Operation is one requested transformation over a span of the baseline.
// Span and Snapshot are fixed at submission; Result, Error, Usage, Duration,
// and SettledAt are written exactly once, by the dispatch goroutine that
// owns the operation.
type Operation struct {
	ID       string
	Seq      int
	Span     text.Span
	Snapshot string
	Task     task.Task
	Group    string
	Status   Status

	Result string
	Error  string

	Usage     transform.Usage
	Duration  time.Duration
	CreatedAt time.Time
	SettledAt time.Time
}

// Delta is how many bytes the operation's result grew or shrank its span.
// Only meaningful once completed.
func (op Operation) Delta() int {
	return len(op.Result) - len(op.Snapshot)
}

// Clone returns an independent copy safe to hand outside the lock.
func (op Operation) Clone() Operation {
	return op
}
