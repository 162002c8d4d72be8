package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/kingrea/redraft/internal/review"
	"github.com/kingrea/redraft/internal/text"
	"github.com/kingrea/redraft/internal/transform"
)

// dispatch runs one operation's external call and applies the outcome. It
// is the only writer of the operation's terminal fields. Fire-and-forget
// from the submitter's point of view: by the time this runs, Submit has
// already returned the id.
func (c *Coordinator) dispatch(ctx context.Context, id string) {
	defer c.wg.Done()
	defer c.dropCancelEntry(id)

	c.mu.Lock()
	record, ok := c.reg.find(id)
	if !ok {
		c.mu.Unlock()
		return
	}
	op := record.Clone()
	c.mu.Unlock()

	if c.gate != nil {
		if err := c.gate.Acquire(ctx, 1); err != nil {
			c.finishCancelled(id, "while queued for the concurrency gate")
			return
		}
		defer c.gate.Release(1)
	}

	start := c.now()
	result, err := c.transformer.Transform(ctx, transform.Request{
		TaskName:    op.Task.Name,
		Instruction: op.Task.Instruction,
		Text:        op.Snapshot,
	})
	elapsed := c.now().Sub(start)

	switch {
	case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil):
		// Explicitly cancelled, or the backend failed because the context
		// died under it. Either way: silent.
		c.finishCancelled(id, "call aborted")
	case err != nil:
		c.finishError(id, op, err)
	default:
		c.finishSuccess(id, op, result, elapsed)
	}
}

func (c *Coordinator) dropCancelEntry(id string) {
	c.mu.Lock()
	delete(c.cancels, id)
	c.mu.Unlock()
}

// finishCancelled removes whatever trace remains. Cancel paths already
// removed the record; a backend that ignored the abort and ran to
// completion lands here too, and its result is discarded the same way.
func (c *Coordinator) finishCancelled(id, detail string) {
	c.mu.Lock()
	c.stopTimerLocked(id)
	removed := c.removeLocked(id)
	c.mu.Unlock()
	if removed {
		c.logger.Printf("coordinator: op %s removed after cancellation (%s)", id, detail)
	} else {
		c.logger.Printf("coordinator: op %s cancelled (%s)", id, detail)
	}
}

// finishError records the failure generically and surfaces one notice. The
// provider's actual error goes to the log only.
func (c *Coordinator) finishError(id string, op Operation, cause error) {
	terr := &TransformationError{OpID: id, Task: op.Task.Name, Err: cause}
	c.mu.Lock()
	if !c.reg.markError(id, genericFailureMessage) {
		c.mu.Unlock()
		c.logger.Printf("coordinator: op %s failed after removal, dropped: %v", id, terr)
		return
	}
	if record, ok := c.reg.find(id); ok {
		record.SettledAt = c.now()
	}
	c.scheduleCleanupLocked(id)
	c.mu.Unlock()

	c.logger.Printf("coordinator: %v", terr)
	c.mailbox.Set(Notice{OpID: id, Task: op.Task.Name, Message: genericFailureMessage, At: c.now()})
}

// finishSuccess splices the result into the working copy at the remapped
// span and publishes the new (baseline, candidate) pair one tick later.
func (c *Coordinator) finishSuccess(id string, op Operation, result transform.Result, elapsed time.Duration) {
	adjusted := text.PreserveTrailing(op.Snapshot, result.Text)

	c.mu.Lock()
	if !c.reg.markCompleted(id, adjusted) {
		// Cancelled or cleaned up while the call was in flight; the result
		// lands as a no-op.
		c.mu.Unlock()
		c.logger.Printf("coordinator: op %s completed after removal, result discarded", id)
		return
	}
	record, _ := c.reg.find(id)
	record.Usage = result.Usage
	record.Duration = elapsed
	record.SettledAt = c.now()

	effective := remapSpan(op.Span, c.reg.completedBefore(op.Span.Start, id))
	spliced, err := text.Replace(c.buffer, effective, adjusted)
	if err != nil {
		// Only reachable if the disjoint-span precondition was violated
		// past submission; keep the buffer intact rather than corrupt it.
		c.scheduleCleanupLocked(id)
		c.mu.Unlock()
		c.logger.Printf("coordinator: op %s splice at %s failed: %v", id, effective, err)
		return
	}
	c.buffer = spliced
	candidate := review.Candidate{
		SessionID: c.sessionID,
		Baseline:  c.baseline,
		Text:      c.buffer,
		Op: review.CompletedOp{
			ID:       id,
			Task:     op.Task.Name,
			Span:     op.Span,
			Snapshot: op.Snapshot,
			Result:   adjusted,
			Usage:    result.Usage,
			Duration: elapsed,
		},
	}
	c.scheduleCleanupLocked(id)
	c.mu.Unlock()

	c.logger.Printf("coordinator: op %s completed (%s, %s)", id, op.Task.Name, elapsed.Round(time.Millisecond))
	c.recorder.Record(op.Task.Name, result.Usage, elapsed)
	// Deferred one tick: publication never runs inside the critical
	// section a render cycle might be reading against, and the default
	// notify queue delivers candidates in the order results were spliced.
	c.notify(func() { c.publisher.Publish(candidate) })
}
