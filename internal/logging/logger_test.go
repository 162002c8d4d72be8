package logging

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/redraft/internal/logbook"
)

func TestBridgeForwardsToLogbook(t *testing.T) {
	book, err := logbook.New(filepath.Join(t.TempDir(), "session.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	bridge := NewBridge(book, logbook.LevelWarn)
	bridge.Printf("dropped %d candidates", 2)
	lines, total := book.Tail(1)
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
	if !strings.Contains(lines[0], "WARN") || !strings.Contains(lines[0], "dropped 2 candidates") {
		t.Fatalf("unexpected line %q", lines[0])
	}
}

func TestBridgeNilBook(t *testing.T) {
	bridge := NewBridge(nil, logbook.LevelInfo)
	bridge.Printf("goes nowhere")
	var nilBridge *Bridge
	nilBridge.Printf("also nowhere")
}

func TestNopPrinter(t *testing.T) {
	Nop().Printf("discarded %s", "entirely")
}
