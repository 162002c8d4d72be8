// Package transform defines the boundary between the coordinator and
// whatever rewrites text on its behalf. The coordinator never sees provider
// wire formats; backends translate their own responses into a Result or an
// error before it crosses this boundary.
package transform

import (
	"context"
	"errors"
)

// Usage counts the units a backend consumed serving one request. Units are
// whatever the backend meters in (tokens, characters); the coordinator only
// aggregates and reports them.
type Usage struct {
	InputUnits  int
	OutputUnits int
}

// Total returns input plus output units.
func (u Usage) Total() int {
	return u.InputUnits + u.OutputUnits
}

// Add returns the element-wise sum of two usage records.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputUnits:  u.InputUnits + other.InputUnits,
		OutputUnits: u.OutputUnits + other.OutputUnits,
	}
}

// Request carries one snapshot to a backend.
type Request struct {
	// TaskName is the normalized task identifier, e.g. "proofread".
	TaskName string
	// Instruction is the rendered instruction for the backend.
	Instruction string
	// Text is the snapshot to transform.
	Text string
}

// Result is a successful transformation.
type Result struct {
	Text  string
	Usage Usage
}

var (
	// ErrMissingResult indicates the backend's response carried no result
	// text where one was required.
	ErrMissingResult = errors.New("transform: response missing result text")
	// ErrUnavailable indicates the backend could not be reached at all.
	ErrUnavailable = errors.New("transform: backend unavailable")
)

// Transformer is the single capability the coordinator dispatches against.
// Cancellation is cooperative through ctx; implementations return ctx.Err()
// when they abandon work. Any non-context error is treated as a
// transformation failure.
type Transformer interface {
	Transform(ctx context.Context, req Request) (Result, error)
}

// Func adapts a plain function to the Transformer interface.
type Func func(ctx context.Context, req Request) (Result, error)

// Transform calls f.
func (f Func) Transform(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}
