// Package coordinator tracks concurrent text-transformation operations over
// one document: it snapshots spans at submission, dispatches each to the
// transformer, remaps splice positions as results land out of order,
// composites them into a virtual working copy, and publishes (baseline,
// candidate) pairs for review. The live document is never touched.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/kingrea/redraft/internal/document"
	"github.com/kingrea/redraft/internal/logging"
	"github.com/kingrea/redraft/internal/review"
	"github.com/kingrea/redraft/internal/task"
	"github.com/kingrea/redraft/internal/text"
	"github.com/kingrea/redraft/internal/transform"
	"github.com/kingrea/redraft/internal/usage"
)

// State is the coordinator's lifecycle phase.
type State string

const (
	StateReady    State = "ready"
	StateDraining State = "draining"
	StateClosed   State = "closed"
)

// DefaultGrace is how long settled records stay visible before cleanup.
const DefaultGrace = 2000 * time.Millisecond

// TaskResolver turns a raw kind string plus optional instruction into a
// normalized task, exactly once, at submission. *task.Resolver satisfies it.
type TaskResolver interface {
	Resolve(kind, instruction string) (task.Task, error)
}

// TaskRequest is one submission.
type TaskRequest struct {
	Span        text.Span
	Kind        string
	Instruction string
	// Group optionally labels the operation for group cancellation.
	Group string
}

// SessionStatus is a point-in-time summary for status bars and tests.
type SessionStatus struct {
	SessionID   string
	State       State
	Pending     int
	Completed   int
	Errored     int
	BatchActive bool
}

type cancelEntry struct {
	cancel context.CancelFunc
	kind   task.Kind
	group  string
}

// Coordinator owns one document session's in-flight operations. All
// registry, buffer, baseline, and cancel-table mutation happens behind one
// mutex; the reference host had a single-threaded runtime and this lock
// recreates its atomicity between completions.
type Coordinator struct {
	doc         document.Provider
	transformer transform.Transformer
	resolver    TaskResolver

	publisher review.Publisher
	recorder  usage.Recorder
	logger    logging.Printer
	mailbox   *Mailbox

	sessionID string
	now       func() time.Time
	newTimer  TimerFactory
	notify    func(func())
	grace     time.Duration
	gate      *semaphore.Weighted

	// pubq is owned when no WithNotify override is given: a single worker
	// drains it, so candidates reach the publisher in splice order.
	pubq      chan func()
	pubWG     sync.WaitGroup
	closeOnce sync.Once

	mu       sync.Mutex
	state    State
	seq      int
	reg      *registry
	cancels  map[string]cancelEntry
	timers   map[string]CleanupTimer
	baseline string
	buffer   string
	batch    bool

	wg sync.WaitGroup
}

// Option customizes a Coordinator during construction.
type Option func(*Coordinator)

// WithPublisher wires the review consumer; use review.Fanout for several.
func WithPublisher(p review.Publisher) Option {
	return func(c *Coordinator) {
		if p != nil {
			c.publisher = p
		}
	}
}

// WithUsageRecorder wires the cost/usage consumer.
func WithUsageRecorder(r usage.Recorder) Option {
	return func(c *Coordinator) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLogger injects a logger; the default discards everything.
func WithLogger(logger logging.Printer) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithTimerFactory overrides cleanup timer creation.
func WithTimerFactory(factory TimerFactory) Option {
	return func(c *Coordinator) {
		if factory != nil {
			c.newTimer = factory
		}
	}
}

// WithGrace overrides the cleanup grace period. Zero removes settled
// records immediately.
func WithGrace(d time.Duration) Option {
	return func(c *Coordinator) {
		if d >= 0 {
			c.grace = d
		}
	}
}

// WithMaxParallel caps concurrent transformer calls. Zero or negative
// disables the gate. Gated operations stay pending and cancellable while
// they queue.
func WithMaxParallel(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.gate = semaphore.NewWeighted(int64(n))
		} else {
			c.gate = nil
		}
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(c *Coordinator) {
		if id != "" {
			c.sessionID = id
		}
	}
}

// WithNotify overrides how deferred work (candidate publication) is
// scheduled. The default queues it to a single worker goroutine — one tick
// removed from the mutating critical section, and still in completion
// order; tests pass a synchronous hook.
func WithNotify(notify func(func())) Option {
	return func(c *Coordinator) {
		if notify != nil {
			c.notify = notify
		}
	}
}

// New builds a coordinator for one document session.
func New(doc document.Provider, transformer transform.Transformer, resolver TaskResolver, opts ...Option) (*Coordinator, error) {
	if doc == nil {
		return nil, fmt.Errorf("coordinator: document provider is required")
	}
	c := &Coordinator{
		doc:         doc,
		transformer: transformer,
		resolver:    resolver,
		publisher:   review.PublisherFunc(func(review.Candidate) {}),
		recorder:    usage.Nop(),
		logger:      logging.Nop(),
		sessionID:   uuid.NewString(),
		now:         time.Now,
		newTimer:    realTimers,
		grace:       DefaultGrace,
		state:       StateReady,
		reg:         newRegistry(),
		cancels:     map[string]cancelEntry{},
		timers:      map[string]CleanupTimer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.notify == nil {
		// One worker serializes publication: completions that land out of
		// order still reach the consumer in splice order, so the latest
		// candidate a consumer keeps is never behind the buffer.
		c.pubq = make(chan func(), 16)
		c.pubWG.Add(1)
		go func() {
			defer c.pubWG.Done()
			for fn := range c.pubq {
				fn()
			}
		}()
		c.notify = func(fn func()) { c.pubq <- fn }
	}
	c.mailbox = NewMailbox(c.logger)
	return c, nil
}

// SessionID identifies this coordinator's session.
func (c *Coordinator) SessionID() string {
	return c.sessionID
}

// Mailbox returns the single-slot error channel.
func (c *Coordinator) Mailbox() *Mailbox {
	return c.mailbox
}

// Submit validates the request, registers a pending operation, and starts
// its dispatch. It returns the operation id immediately; the transformation
// runs independently and may settle in any order relative to other
// submissions. Validation failures return a *ValidationError, register
// nothing, and surface through the mailbox.
func (c *Coordinator) Submit(req TaskRequest) (string, error) {
	c.mu.Lock()
	id, ctx, resolved, err := c.submitLocked(req)
	if err == nil {
		c.wg.Add(1)
	}
	c.mu.Unlock()
	if err != nil {
		if ve, ok := err.(*ValidationError); ok {
			c.mailbox.Set(Notice{Task: req.Kind, Message: ve.Error(), At: c.now()})
			c.logger.Printf("coordinator: %v", ve)
		}
		return "", err
	}
	c.logger.Printf("coordinator: op %s submitted (%s over %s)", id, resolved.Name, req.Span)
	go c.dispatch(ctx, id)
	return id, nil
}

// submitLocked performs every synchronous step of a submission. Caller
// holds c.mu.
func (c *Coordinator) submitLocked(req TaskRequest) (string, context.Context, task.Task, error) {
	if c.state != StateReady {
		return "", nil, task.Task{}, &ValidationError{Reason: ReasonDraining, Detail: "session is shutting down"}
	}
	if c.transformer == nil {
		return "", nil, task.Task{}, &ValidationError{Reason: ReasonNoTransformer, Detail: "no transformation capability configured"}
	}
	if c.resolver == nil {
		return "", nil, task.Task{}, &ValidationError{Reason: ReasonNoResolver, Detail: "no task resolver configured"}
	}
	resolved, err := c.resolver.Resolve(req.Kind, req.Instruction)
	if err != nil {
		return "", nil, task.Task{}, &ValidationError{Reason: ReasonUnknownTask, Detail: err.Error()}
	}

	// The first registration of a batch snapshots the document; rejected
	// submissions must not start a batch, so nothing is committed until
	// every check passes.
	base := c.baseline
	if !c.batch {
		current, err := c.doc.Text()
		if err != nil {
			return "", nil, task.Task{}, fmt.Errorf("coordinator: read document: %w", err)
		}
		base = current
	}

	if err := req.Span.Validate(len(base)); err != nil {
		return "", nil, task.Task{}, &ValidationError{Reason: ReasonOutOfBounds, Detail: err.Error()}
	}
	if req.Span.IsEmpty() {
		return "", nil, task.Task{}, &ValidationError{Reason: ReasonEmptySpan, Detail: "selection is empty"}
	}
	if other, ok := c.reg.overlapping(req.Span); ok {
		detail := fmt.Sprintf("span %s overlaps op %s at %s", req.Span, other.ID, other.Span)
		return "", nil, task.Task{}, &ValidationError{Reason: ReasonOverlap, Detail: detail}
	}

	if !c.batch {
		c.baseline = base
		c.buffer = base
		c.batch = true
	}
	snapshot := base[req.Span.Start:req.Span.End]
	now := c.now()
	c.seq++
	op := &Operation{
		ID:        fmt.Sprintf("op-%d-%d", c.seq, now.UnixNano()),
		Seq:       c.seq,
		Span:      req.Span,
		Snapshot:  snapshot,
		Task:      resolved,
		Group:     req.Group,
		Status:    StatusPending,
		CreatedAt: now,
	}
	c.reg.add(op)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancels[op.ID] = cancelEntry{cancel: cancel, kind: resolved.Kind, group: req.Group}
	return op.ID, ctx, resolved, nil
}

// Cancel aborts one operation: its context is cancelled and its record
// removed immediately, with no grace period and no error surfaced. Returns
// whether an operation was actually cancelled.
func (c *Coordinator) Cancel(id string) bool {
	c.mu.Lock()
	entry, live := c.cancels[id]
	delete(c.cancels, id)
	c.stopTimerLocked(id)
	removed := c.removeLocked(id)
	c.mu.Unlock()
	if live {
		entry.cancel()
	}
	if removed {
		c.logger.Printf("coordinator: op %s cancelled", id)
	}
	return removed
}

// CancelTask cancels every live operation of one task kind.
func (c *Coordinator) CancelTask(kind task.Kind) int {
	return c.cancelWhere(func(e cancelEntry) bool { return e.kind == kind })
}

// CancelGroup cancels every live operation carrying the group label.
func (c *Coordinator) CancelGroup(label string) int {
	return c.cancelWhere(func(e cancelEntry) bool { return e.group == label })
}

func (c *Coordinator) cancelWhere(match func(cancelEntry) bool) int {
	c.mu.Lock()
	var cancels []context.CancelFunc
	for id, entry := range c.cancels {
		if !match(entry) {
			continue
		}
		cancels = append(cancels, entry.cancel)
		delete(c.cancels, id)
		c.stopTimerLocked(id)
		c.removeLocked(id)
	}
	c.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
	return len(cancels)
}

// CancelAll aborts every outstanding call and clears the registry and the
// virtual buffer in one synchronous sweep.
func (c *Coordinator) CancelAll() int {
	c.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(c.cancels))
	for _, entry := range c.cancels {
		cancels = append(cancels, entry.cancel)
	}
	c.cancels = map[string]cancelEntry{}
	c.stopAllTimersLocked()
	n := c.reg.removeAll()
	c.releaseBatchLocked()
	c.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
	if n > 0 {
		c.logger.Printf("coordinator: cancelled all (%d operations)", n)
	}
	return n
}

// Operations returns clones of every current record in submission order.
func (c *Coordinator) Operations() []Operation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.list()
}

// Find returns a clone of one record.
func (c *Coordinator) Find(id string) (Operation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if op, ok := c.reg.find(id); ok {
		return op.Clone(), true
	}
	return Operation{}, false
}

// Baseline returns the batch's document snapshot, or "" outside a batch.
func (c *Coordinator) Baseline() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseline
}

// Buffer returns the current virtual working copy, or "" outside a batch.
func (c *Coordinator) Buffer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer
}

// Status summarizes the session.
func (c *Coordinator) Status() SessionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := SessionStatus{
		SessionID:   c.sessionID,
		State:       c.state,
		BatchActive: c.batch,
	}
	for _, op := range c.reg.list() {
		switch op.Status {
		case StatusPending:
			st.Pending++
		case StatusCompleted:
			st.Completed++
		case StatusError:
			st.Errored++
		}
	}
	return st
}

// Close drains the session: every outstanding call is cancelled, timers are
// stopped, dispatch goroutines are waited out, queued publications are
// flushed, and the buffer is released. Close is idempotent.
func (c *Coordinator) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = StateDraining
		cancels := make([]context.CancelFunc, 0, len(c.cancels))
		for _, entry := range c.cancels {
			cancels = append(cancels, entry.cancel)
		}
		c.cancels = map[string]cancelEntry{}
		c.stopAllTimersLocked()
		c.mu.Unlock()

		for _, cancel := range cancels {
			cancel()
		}
		c.wg.Wait()

		// All dispatchers are done, so nothing sends to pubq anymore.
		if c.pubq != nil {
			close(c.pubq)
			c.pubWG.Wait()
		}

		c.mu.Lock()
		c.reg.removeAll()
		c.releaseBatchLocked()
		c.state = StateClosed
		c.mu.Unlock()
		c.logger.Printf("coordinator: session %s closed", c.sessionID)
	})
	return nil
}

// removeLocked drops one record and, when it was the last, releases the
// batch. Caller holds c.mu.
func (c *Coordinator) removeLocked(id string) bool {
	removed := c.reg.remove(id)
	if removed && c.reg.len() == 0 {
		c.releaseBatchLocked()
	}
	return removed
}

// releaseBatchLocked discards the baseline and working copy; the next
// submission snapshots the document afresh. Caller holds c.mu.
func (c *Coordinator) releaseBatchLocked() {
	c.baseline = ""
	c.buffer = ""
	c.batch = false
}
