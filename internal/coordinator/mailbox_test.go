package coordinator

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) contains(fragment string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, fragment) {
			return true
		}
	}
	return false
}

func TestMailboxLastWriteWins(t *testing.T) {
	logger := &recordingLogger{}
	box := NewMailbox(logger)

	box.Set(Notice{OpID: "op-1", Message: "first"})
	box.Set(Notice{OpID: "op-2", Message: "second"})

	notice, ok := box.Peek()
	if !ok || notice.OpID != "op-2" {
		t.Fatalf("expected the later notice, got %+v %v", notice, ok)
	}
	if !logger.contains("overwritten unread") {
		t.Fatalf("unread overwrite must be logged, got %v", logger.lines)
	}
}

func TestMailboxReadNoticeOverwrittenSilently(t *testing.T) {
	logger := &recordingLogger{}
	box := NewMailbox(logger)

	box.Set(Notice{OpID: "op-1", Message: "first"})
	if _, ok := box.Peek(); !ok {
		t.Fatal("expected a notice to peek")
	}
	box.Set(Notice{OpID: "op-2", Message: "second"})
	if logger.contains("overwritten") {
		t.Fatalf("overwriting a read notice is not a loss, got %v", logger.lines)
	}
}

func TestMailboxTakeClears(t *testing.T) {
	box := NewMailbox(nil)
	box.Set(Notice{OpID: "op-1", Message: "boom", At: time.Now()})
	if _, ok := box.Take(); !ok {
		t.Fatal("expected a notice")
	}
	if _, ok := box.Take(); ok {
		t.Fatal("take must clear the slot")
	}
	if _, ok := box.Peek(); ok {
		t.Fatal("peek after take must find nothing")
	}
}

func TestMailboxChangeSignalCoalesces(t *testing.T) {
	box := NewMailbox(nil)
	box.Set(Notice{OpID: "op-1"})
	box.Set(Notice{OpID: "op-2"})

	select {
	case <-box.Changes():
	default:
		t.Fatal("expected a pending change signal")
	}
	select {
	case <-box.Changes():
		t.Fatal("signals must coalesce to one")
	default:
	}
}
