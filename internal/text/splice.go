package text

import "fmt"

// Slice returns the bytes the span covers in text.
func Slice(text string, sp Span) (string, error) {
	if err := sp.Validate(len(text)); err != nil {
		return "", err
	}
	return text[sp.Start:sp.End], nil
}

// Replace substitutes the span in text with repl and returns the new text.
func Replace(text string, sp Span, repl string) (string, error) {
	if err := sp.Validate(len(text)); err != nil {
		return "", fmt.Errorf("text: replace: %w", err)
	}
	return text[:sp.Start] + repl + text[sp.End:], nil
}

// PreserveTrailing restores a trailing newline byte that a rewrite dropped.
// If snapshot ends with '\n' or '\r' and result does not end with that same
// byte, the byte is appended; otherwise result is returned unchanged.
// Backends routinely trim trailing whitespace, which would otherwise glue a
// rewritten line onto its successor.
func PreserveTrailing(snapshot, result string) string {
	if snapshot == "" {
		return result
	}
	last := snapshot[len(snapshot)-1]
	if last != '\n' && last != '\r' {
		return result
	}
	if result != "" && result[len(result)-1] == last {
		return result
	}
	return result + string(last)
}
