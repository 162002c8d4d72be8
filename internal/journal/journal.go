// Package journal keeps a paper trail of completed transformations: one
// markdown note per published candidate under .redraft/journal/, with YAML
// frontmatter so other tools can re-parse what happened and when.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/redraft/internal/logging"
	"github.com/kingrea/redraft/internal/review"
)

// Journal writes notes into a directory. It implements review.Publisher so
// it can fan out beside the console feed; write failures are logged, never
// surfaced, because record-keeping must not break the editing session.
type Journal struct {
	dir    string
	now    func() time.Time
	newID  func() string
	logger logging.Printer
}

// Option customizes a Journal during construction.
type Option func(*Journal)

// WithClock overrides the clock used for note timestamps and filenames.
func WithClock(clock func() time.Time) Option {
	return func(j *Journal) {
		if clock != nil {
			j.now = clock
		}
	}
}

// WithIDGenerator overrides note id generation (tests want stable ids).
func WithIDGenerator(gen func() string) Option {
	return func(j *Journal) {
		if gen != nil {
			j.newID = gen
		}
	}
}

// WithLogger injects a logger for write failures.
func WithLogger(logger logging.Printer) Option {
	return func(j *Journal) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// New builds a journal rooted at dir.
func New(dir string, opts ...Option) *Journal {
	j := &Journal{
		dir:    filepath.Clean(dir),
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(j)
		}
	}
	return j
}

// Dir returns the directory notes are written to.
func (j *Journal) Dir() string {
	return j.dir
}

// Publish writes a note for the candidate. Part of review.Publisher.
func (j *Journal) Publish(c review.Candidate) {
	if j == nil {
		return
	}
	if _, err := j.WriteCandidate(c); err != nil {
		j.logger.Printf("journal: %v", err)
	}
}

// WriteCandidate renders and persists one note, returning its path.
func (j *Journal) WriteCandidate(c review.Candidate) (string, error) {
	created := j.now().UTC()
	meta := Meta{
		NoteID:      j.newID(),
		SessionID:   c.SessionID,
		OpID:        c.Op.ID,
		Task:        c.Op.Task,
		SpanStart:   c.Op.Span.Start,
		SpanEnd:     c.Op.Span.End,
		Created:     created,
		InputUnits:  c.Op.Usage.InputUnits,
		OutputUnits: c.Op.Usage.OutputUnits,
		DurationMS:  int(c.Op.Duration / time.Millisecond),
	}
	body := renderBody(c)
	content, err := Render(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return "", fmt.Errorf("journal: ensure dir: %w", err)
	}
	path := filepath.Join(j.dir, noteFileName(created, c.Op.ID))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("journal: write %s: %w", path, err)
	}
	return path, nil
}

func noteFileName(created time.Time, opID string) string {
	stamp := created.Format("20060102T150405")
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(opID))
	return fmt.Sprintf("%s-%s.md", stamp, slug)
}

func renderBody(c review.Candidate) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s · %s\n\n", c.Op.Task, c.Op.ID)
	b.WriteString("## Before\n\n")
	b.WriteString(strings.TrimRight(c.Op.Snapshot, "\n"))
	b.WriteString("\n\n## After\n\n")
	b.WriteString(strings.TrimRight(c.Op.Result, "\n"))
	b.WriteString("\n")
	return []byte(b.String())
}
