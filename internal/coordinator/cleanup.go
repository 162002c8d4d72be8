package coordinator

import "time"

// CleanupTimer is one pending grace-period removal. Stop is idempotent.
type CleanupTimer interface {
	Stop() bool
}

// TimerFactory schedules fn after d. The default wraps time.AfterFunc;
// tests substitute a manual factory and fire timers deterministically.
type TimerFactory func(d time.Duration, fn func()) CleanupTimer

func realTimers(d time.Duration, fn func()) CleanupTimer {
	return time.AfterFunc(d, fn)
}

// scheduleCleanupLocked arms the grace-period timer for a settled record.
// A zero grace removes immediately. Caller holds c.mu.
func (c *Coordinator) scheduleCleanupLocked(id string) {
	if c.grace <= 0 {
		c.removeLocked(id)
		return
	}
	if existing, ok := c.timers[id]; ok {
		existing.Stop()
	}
	c.timers[id] = c.newTimer(c.grace, func() {
		c.mu.Lock()
		delete(c.timers, id)
		// Unconditional: the record may already be gone (cancelled,
		// drained), in which case this is a no-op.
		c.removeLocked(id)
		c.mu.Unlock()
	})
}

// stopTimerLocked disarms any pending removal for id. Caller holds c.mu.
func (c *Coordinator) stopTimerLocked(id string) {
	if timer, ok := c.timers[id]; ok {
		timer.Stop()
		delete(c.timers, id)
	}
}

func (c *Coordinator) stopAllTimersLocked() {
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
}
