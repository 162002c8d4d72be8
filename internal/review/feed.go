package review

import (
	"sync"

	"github.com/kingrea/redraft/internal/logging"
)

const defaultFeedCapacity = 16

// FeedOption customizes Feed construction.
type FeedOption func(*Feed)

// FeedWithCapacity overrides the buffered channel size.
func FeedWithCapacity(capacity int) FeedOption {
	return func(f *Feed) {
		if capacity > 0 {
			f.capacity = capacity
		}
	}
}

// FeedWithLogger injects a logger for drop diagnostics.
func FeedWithLogger(logger logging.Printer) FeedOption {
	return func(f *Feed) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Feed is a bounded candidate queue between the coordinator and a single
// consumer. When the buffer is full the oldest candidate is dropped in
// favor of the incoming one: a consumer that fell behind wants the freshest
// working copy, and every candidate carries the full composite anyway.
type Feed struct {
	mu       sync.Mutex
	ch       chan Candidate
	capacity int
	closed   bool
	dropped  int
	logger   logging.Printer
}

// NewFeed constructs a feed with the default capacity.
func NewFeed(opts ...FeedOption) *Feed {
	f := &Feed{
		capacity: defaultFeedCapacity,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	f.ch = make(chan Candidate, f.capacity)
	return f
}

// Candidates returns the consumer side of the feed. The channel closes when
// the feed closes.
func (f *Feed) Candidates() <-chan Candidate {
	return f.ch
}

// Publish enqueues a candidate, evicting the oldest when full.
func (f *Feed) Publish(c Candidate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.ch <- c:
		return
	default:
	}
	select {
	case oldest := <-f.ch:
		f.dropped++
		f.logger.Printf("review: feed full, dropped candidate for op %s", oldest.Op.ID)
	default:
	}
	f.ch <- c
}

// Dropped reports how many candidates were evicted unread.
func (f *Feed) Dropped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

// Close shuts the feed; later publishes are discarded.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.ch)
}
