package runner

import (
	"errors"
	"fmt"
)

// ErrStepLimit is returned when a run needs more model steps than allowed.
var ErrStepLimit = errors.New("step limit reached before the model produced a final answer")

// ErrInvalidCallID is returned when a tool call carries an empty or repeated ID.
var ErrInvalidCallID = errors.New("invalid tool call id")

// EmptyStateError reports an operation that needs at least one message.
type EmptyStateError struct {
	Op string
}

func (e *EmptyStateError) Error() string {
	return fmt.Sprintf("%s: conversation has no messages", e.Op)
}

// ToolError wraps a failed tool invocation.
type ToolError struct {
	Tool   string
	CallID string
	Err    error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s (call %s): %v", e.Tool, e.CallID, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }
