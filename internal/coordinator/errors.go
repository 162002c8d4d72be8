package coordinator

import "fmt"

// Reason classifies why a submission was rejected.
type Reason string

const (
	ReasonNoTransformer Reason = "no-transformer"
	ReasonNoResolver    Reason = "no-resolver"
	ReasonUnknownTask   Reason = "unknown-task"
	ReasonOutOfBounds   Reason = "out-of-bounds"
	ReasonEmptySpan     Reason = "empty-span"
	ReasonOverlap       Reason = "overlap"
	ReasonDraining      Reason = "draining"
)

// ValidationError rejects a submission synchronously; nothing is registered
// and no request is dispatched.
type ValidationError struct {
	Reason Reason
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("coordinator: submission rejected (%s): %s", e.Reason, e.Detail)
}

// TransformationError carries a backend failure for one operation. The
// operation record and the mailbox only ever see the generic message; the
// wrapped detail is for logs.
type TransformationError struct {
	OpID string
	Task string
	Err  error
}

func (e *TransformationError) Error() string {
	return fmt.Sprintf("coordinator: op %s (%s) failed: %v", e.OpID, e.Task, e.Err)
}

func (e *TransformationError) Unwrap() error {
	return e.Err
}

// genericFailureMessage is what reaches the record and the mailbox when a
// backend fails. Provider detail stays out of the user-facing surface.
const genericFailureMessage = "transformation failed"
