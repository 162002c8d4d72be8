package journal

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontMatter indicates the note did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("journal: missing frontmatter")
	// ErrMalformedFrontMatter indicates the YAML block could not be parsed.
	ErrMalformedFrontMatter = errors.New("journal: malformed frontmatter")
)

// Meta is the frontmatter of one journal note.
type Meta struct {
	NoteID      string
	SessionID   string
	OpID        string
	Task        string
	SpanStart   int
	SpanEnd     int
	Created     time.Time
	InputUnits  int
	OutputUnits int
	DurationMS  int
}

type redraftEnvelope struct {
	Redraft noteMetadata `yaml:"redraft"`
}

type noteMetadata struct {
	Note       string    `yaml:"note"`
	Session    string    `yaml:"session,omitempty"`
	Op         string    `yaml:"op"`
	Task       string    `yaml:"task"`
	Span       noteSpan  `yaml:"span"`
	Created    string    `yaml:"created"`
	Usage      noteUsage `yaml:"usage"`
	DurationMS int       `yaml:"duration_ms"`
}

type noteSpan struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

type noteUsage struct {
	Input  int `yaml:"input"`
	Output int `yaml:"output"`
}

// Render produces the note document: YAML fences around the metadata, then
// the markdown body.
func Render(meta Meta, body []byte) ([]byte, error) {
	if meta.NoteID == "" {
		return nil, fmt.Errorf("journal: note id is required")
	}
	if meta.OpID == "" {
		return nil, fmt.Errorf("journal: op id is required")
	}
	envelope := redraftEnvelope{
		Redraft: noteMetadata{
			Note:       meta.NoteID,
			Session:    meta.SessionID,
			Op:         meta.OpID,
			Task:       meta.Task,
			Span:       noteSpan{Start: meta.SpanStart, End: meta.SpanEnd},
			Created:    meta.Created.UTC().Format(time.RFC3339),
			Usage:      noteUsage{Input: meta.InputUnits, Output: meta.OutputUnits},
			DurationMS: meta.DurationMS,
		},
	}
	data, err := yaml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("journal: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// Parse splits a note back into metadata and body.
func Parse(content []byte) (Meta, []byte, error) {
	if len(content) == 0 {
		return Meta{}, nil, ErrMissingFrontMatter
	}
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return Meta{}, nil, ErrMissingFrontMatter
	}
	parts := bytes.SplitN(normalized[4:], []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return Meta{}, nil, ErrMalformedFrontMatter
	}
	var envelope redraftEnvelope
	if err := yaml.Unmarshal(parts[0], &envelope); err != nil {
		return Meta{}, nil, fmt.Errorf("journal: parse frontmatter: %w", err)
	}
	meta := Meta{
		NoteID:      envelope.Redraft.Note,
		SessionID:   envelope.Redraft.Session,
		OpID:        envelope.Redraft.Op,
		Task:        envelope.Redraft.Task,
		SpanStart:   envelope.Redraft.Span.Start,
		SpanEnd:     envelope.Redraft.Span.End,
		InputUnits:  envelope.Redraft.Usage.Input,
		OutputUnits: envelope.Redraft.Usage.Output,
		DurationMS:  envelope.Redraft.DurationMS,
	}
	if meta.NoteID == "" || meta.OpID == "" {
		return Meta{}, nil, ErrMalformedFrontMatter
	}
	if envelope.Redraft.Created != "" {
		created, err := time.Parse(time.RFC3339, envelope.Redraft.Created)
		if err != nil {
			return Meta{}, nil, fmt.Errorf("journal: parse created stamp: %w", err)
		}
		meta.Created = created
	}
	body := bytes.TrimPrefix(parts[1], []byte("\n"))
	return meta, body, nil
}
