// Package document abstracts where the text being edited lives. The
// coordinator only ever reads whole-document text and the host applies
// accepted candidates back through SetText; span bookkeeping stays in the
// coordinator.
package document

import "sync"

// Provider supplies the full document text and accepts replacements.
type Provider interface {
	Text() (string, error)
	SetText(text string) error
}

// Memory is an in-memory document, used by the console demo and tests.
type Memory struct {
	mu   sync.RWMutex
	text string
}

// NewMemory returns a document holding text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

// Text returns the current document text.
func (m *Memory) Text() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.text, nil
}

// SetText replaces the document text.
func (m *Memory) SetText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}
