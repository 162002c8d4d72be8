package logging

import (
	"fmt"

	"github.com/kingrea/redraft/internal/logbook"
)

// Printer is the minimal logging surface library components accept. Keeping
// it to a single Printf method lets tests substitute a recorder and lets the
// console route everything through the session logbook.
type Printer interface {
	Printf(format string, args ...any)
}

// Nop returns a Printer that discards everything; the default wherever a
// component was built without logging.
func Nop() Printer {
	return nopPrinter{}
}

type nopPrinter struct{}

func (nopPrinter) Printf(string, ...any) {}

// Bridge forwards Printf lines into a logbook at a fixed level.
type Bridge struct {
	book  *logbook.Logbook
	level logbook.Level
}

// NewBridge wraps book. A nil book yields a bridge that drops lines, so
// callers can wire it unconditionally.
func NewBridge(book *logbook.Logbook, level logbook.Level) *Bridge {
	return &Bridge{book: book, level: level}
}

// Printf appends one formatted entry at the bridge's level.
func (b *Bridge) Printf(format string, args ...any) {
	if b == nil || b.book == nil {
		return
	}
	b.book.Append(b.level, fmt.Sprintf(format, args...))
}
