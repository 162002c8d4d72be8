package coordinator

import (
	"sync"
	"time"

	"github.com/kingrea/redraft/internal/logging"
)

// Notice is one user-facing error message.
type Notice struct {
	OpID    string
	Task    string
	Message string
	At      time.Time
}

// Mailbox is the single-slot error channel: each surfaced error overwrites
// the previous one, last write wins. That matches the host's "show the
// latest toast" surface; when an unread notice is overwritten the loss is
// logged so it is at least observable.
type Mailbox struct {
	mu      sync.Mutex
	current Notice
	present bool
	read    bool
	changes chan struct{}
	logger  logging.Printer
}

// NewMailbox builds an empty mailbox.
func NewMailbox(logger logging.Printer) *Mailbox {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Mailbox{
		changes: make(chan struct{}, 1),
		logger:  logger,
	}
}

// Set replaces the current notice and signals the change channel.
func (m *Mailbox) Set(n Notice) {
	m.mu.Lock()
	if m.present && !m.read {
		m.logger.Printf("coordinator: error notice for op %s overwritten unread by op %s", m.current.OpID, n.OpID)
	}
	m.current = n
	m.present = true
	m.read = false
	m.mu.Unlock()
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

// Peek returns the current notice without consuming it. The notice counts
// as read afterwards, so a later overwrite is not reported as a loss.
func (m *Mailbox) Peek() (Notice, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present {
		return Notice{}, false
	}
	m.read = true
	return m.current, true
}

// Take returns and clears the current notice.
func (m *Mailbox) Take() (Notice, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present {
		return Notice{}, false
	}
	n := m.current
	m.current = Notice{}
	m.present = false
	m.read = false
	return n, true
}

// Changes signals (buffered, coalescing) whenever a notice is set.
func (m *Mailbox) Changes() <-chan struct{} {
	return m.changes
}
