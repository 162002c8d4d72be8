package coordinator

import "github.com/kingrea/redraft/internal/text"

// remapSpan shifts an operation's original span by the summed length delta
// of every completed operation lying fully before it in baseline
// coordinates. The sum ranges over a set, so the order those operations
// completed in cannot change the answer; with no completions the span comes
// back unchanged. The span's length is preserved — the splice always
// replaces exactly the snapshot's extent, relocated.
func remapSpan(original text.Span, completed []Operation) text.Span {
	delta := 0
	for _, op := range completed {
		if op.Status != StatusCompleted {
			continue
		}
		if op.Span.End <= original.Start {
			delta += op.Delta()
		}
	}
	return original.Shift(delta)
}
