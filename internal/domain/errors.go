package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownWorkflow rejects a workflow type the catalog has never
	// heard of. Raised synchronously, before any execution exists.
	ErrUnknownWorkflow = errors.New("unknown workflow type")

	// ErrExecutionNotFound is returned by stores for an unknown id.
	ErrExecutionNotFound = errors.New("execution not found")
)

// MissingInputError rejects a launch whose required inputs are absent or
// empty. Raised synchronously, before any execution exists.
type MissingInputError struct {
	Field string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing required input: %s", e.Field)
}

// TaskExecutionError is raised by an executor. It is recorded on the failed
// task and never propagates back to the launch caller.
type TaskExecutionError struct {
	Category TaskCategory
	Message  string
}

func (e *TaskExecutionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}
