package transform

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestScriptedProofread(t *testing.T) {
	s := NewScripted()
	res, err := s.Transform(context.Background(), Request{TaskName: "proofread", Text: "hello  there  friend"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "Hello there friend" {
		t.Fatalf("expected %q, got %q", "Hello there friend", res.Text)
	}
	if res.Usage.InputUnits == 0 || res.Usage.OutputUnits == 0 {
		t.Fatalf("expected usage to be counted, got %+v", res.Usage)
	}
}

func TestScriptedUnknownTaskFallsBack(t *testing.T) {
	s := NewScripted()
	res, err := s.Transform(context.Background(), Request{TaskName: "no-such-task", Text: "same text"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "same text" {
		t.Fatalf("fallback should echo, got %q", res.Text)
	}
}

func TestScriptedCustomRuleWins(t *testing.T) {
	s := NewScripted(WithRule("proofread", func(req Request) (Result, error) {
		return Result{Text: "scripted"}, nil
	}))
	res, err := s.Transform(context.Background(), Request{TaskName: "Proofread", Text: "anything"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "scripted" {
		t.Fatalf("expected custom rule output, got %q", res.Text)
	}
}

func TestScriptedFailingRule(t *testing.T) {
	s := NewScripted(WithRule("rewrite", FailingRule(ErrMissingResult)))
	_, err := s.Transform(context.Background(), Request{TaskName: "rewrite", Text: "x"})
	if !errors.Is(err, ErrMissingResult) {
		t.Fatalf("expected ErrMissingResult, got %v", err)
	}
}

func TestScriptedCancelDuringLatency(t *testing.T) {
	slept := false
	s := NewScripted(
		WithLatency(time.Hour),
		WithSleep(func(ctx context.Context, d time.Duration) error {
			slept = true
			return context.Canceled
		}),
	)
	_, err := s.Transform(context.Background(), Request{TaskName: "expand", Text: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !slept {
		t.Fatal("expected injected sleep to run")
	}
	if s.Calls() != 1 {
		t.Fatalf("expected 1 call, got %d", s.Calls())
	}
}

func TestShortenRule(t *testing.T) {
	res, err := ShortenRule(Request{Text: "one two three four"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "one two" {
		t.Fatalf("expected %q, got %q", "one two", res.Text)
	}
	res, _ = ShortenRule(Request{Text: "single"})
	if res.Text != "single" {
		t.Fatalf("single word must survive shortening, got %q", res.Text)
	}
}

func TestUsageAddTotal(t *testing.T) {
	sum := Usage{InputUnits: 2, OutputUnits: 3}.Add(Usage{InputUnits: 5, OutputUnits: 7})
	if sum.InputUnits != 7 || sum.OutputUnits != 10 {
		t.Fatalf("unexpected sum %+v", sum)
	}
	if sum.Total() != 17 {
		t.Fatalf("expected total 17, got %d", sum.Total())
	}
}
