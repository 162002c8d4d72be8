package transform

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Rule produces the result for one request.
type Rule func(req Request) (Result, error)

// Scripted is a deterministic backend. The console demo and the one-shot
// runner use it in place of a remote provider, and tests use it to script
// latency, failures, and malformed responses.
type Scripted struct {
	mu       sync.Mutex
	rules    map[string]Rule
	fallback Rule
	latency  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	calls    int
}

// ScriptedOption customizes a Scripted backend.
type ScriptedOption func(*Scripted)

// WithLatency makes every call wait before answering.
func WithLatency(d time.Duration) ScriptedOption {
	return func(s *Scripted) {
		if d > 0 {
			s.latency = d
		}
	}
}

// WithSleep overrides how latency is waited out, so tests control time.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) ScriptedOption {
	return func(s *Scripted) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithRule installs a rule for one task name.
func WithRule(taskName string, rule Rule) ScriptedOption {
	return func(s *Scripted) {
		if rule != nil {
			s.rules[strings.ToLower(strings.TrimSpace(taskName))] = rule
		}
	}
}

// WithFallback installs the rule used when no task-specific rule matches.
func WithFallback(rule Rule) ScriptedOption {
	return func(s *Scripted) {
		if rule != nil {
			s.fallback = rule
		}
	}
}

// NewScripted builds a backend preloaded with deterministic rules for the
// built-in task kinds.
func NewScripted(opts ...ScriptedOption) *Scripted {
	s := &Scripted{
		rules:    map[string]Rule{},
		fallback: EchoRule,
		sleep:    sleepContext,
	}
	s.rules["proofread"] = ProofreadRule
	s.rules["shorten"] = ShortenRule
	s.rules["expand"] = ExpandRule
	s.rules["rewrite"] = RewriteRule
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Transform applies the rule for the request's task after the configured
// latency. Cancellation wins over the rule.
func (s *Scripted) Transform(ctx context.Context, req Request) (Result, error) {
	s.mu.Lock()
	s.calls++
	rule, ok := s.rules[strings.ToLower(strings.TrimSpace(req.TaskName))]
	if !ok {
		rule = s.fallback
	}
	latency := s.latency
	s.mu.Unlock()

	if latency > 0 {
		if err := s.sleep(ctx, latency); err != nil {
			return Result{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return rule(req)
}

// Calls reports how many requests the backend has seen.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// EchoRule returns the input unchanged; the fallback for unknown tasks.
func EchoRule(req Request) (Result, error) {
	return withUsage(req.Text, req.Text), nil
}

// ProofreadRule collapses doubled spaces and capitalizes the first letter.
func ProofreadRule(req Request) (Result, error) {
	out := req.Text
	for strings.Contains(out, "  ") {
		out = strings.ReplaceAll(out, "  ", " ")
	}
	out = capitalizeFirst(out)
	return withUsage(req.Text, out), nil
}

// ShortenRule keeps the first half of the words, with a floor of one word.
func ShortenRule(req Request) (Result, error) {
	words := strings.Fields(req.Text)
	if len(words) <= 1 {
		return withUsage(req.Text, req.Text), nil
	}
	keep := (len(words) + 1) / 2
	return withUsage(req.Text, strings.Join(words[:keep], " ")), nil
}

// ExpandRule appends a brief elaboration marker after the text.
func ExpandRule(req Request) (Result, error) {
	trimmed := strings.TrimRight(req.Text, " ")
	return withUsage(req.Text, trimmed+", and then some"), nil
}

// RewriteRule swaps the halves of the text around a comma or midpoint, a
// visible but reversible stand-in for a model rewrite.
func RewriteRule(req Request) (Result, error) {
	out := req.Text
	if i := strings.Index(out, ", "); i > 0 && i+2 < len(out) {
		out = out[i+2:] + ", " + out[:i]
	} else {
		words := strings.Fields(out)
		if len(words) > 1 {
			mid := len(words) / 2
			out = strings.Join(append(append([]string{}, words[mid:]...), words[:mid]...), " ")
		}
	}
	return withUsage(req.Text, out), nil
}

// FailingRule returns err for every request.
func FailingRule(err error) Rule {
	return func(Request) (Result, error) {
		return Result{}, err
	}
}

func withUsage(input, output string) Result {
	return Result{
		Text: output,
		Usage: Usage{
			InputUnits:  unitCount(input),
			OutputUnits: unitCount(output),
		},
	}
}

// unitCount approximates token accounting: one unit per four bytes,
// minimum one for non-empty text.
func unitCount(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

func capitalizeFirst(text string) string {
	for i, r := range text {
		if unicode.IsLetter(r) {
			if unicode.IsUpper(r) {
				return text
			}
			return text[:i] + string(unicode.ToUpper(r)) + text[i+len(string(r)):]
		}
		if !unicode.IsSpace(r) {
			return text
		}
	}
	return text
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
