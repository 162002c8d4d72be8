package text

import "fmt"

// Span is a half-open byte range [Start, End) into a UTF-8 document.
// Offsets count bytes, not runes; callers working in rune or UTF-16
// coordinates convert before constructing a Span.
type Span struct {
	Start int
	End   int
}

// NewSpan builds a span without validating it against any document.
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// Len reports the number of bytes the span covers.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty reports whether the span covers no bytes.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// Shift returns the span moved by delta bytes.
func (s Span) Shift(delta int) Span {
	return Span{Start: s.Start + delta, End: s.End + delta}
}

// Overlaps reports whether two spans share at least one byte. Empty spans
// overlap nothing, including themselves.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Validate checks the span against a document of docLen bytes.
func (s Span) Validate(docLen int) error {
	switch {
	case s.Start < 0:
		return fmt.Errorf("text: span %s starts before the document", s)
	case s.End < s.Start:
		return fmt.Errorf("text: span %s is inverted", s)
	case s.End > docLen:
		return fmt.Errorf("text: span %s exceeds document length %d", s, docLen)
	}
	return nil
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}
