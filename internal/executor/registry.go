package executor

import (
	"context"
	"fmt"

	"github.com/BuzzwordStrategies/MarketingOS/internal/domain"
)

// Result is the category-specific success payload of one task.
type Result map[string]any

// Context is the read-only view an executor gets of the execution: the
// caller's inputs plus the outputs of every task that already completed.
// Executors never touch the state store; the engine is the single writer.
type Context struct {
	Inputs       map[string]any
	PriorOutputs map[string]Result
}

// Input returns the named caller input as a string, or fallback when the
// input is absent or not a string.
func (c Context) Input(key, fallback string) string {
	if v, ok := c.Inputs[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// Handler performs (or simulates) the real-world side effect for one task
// category. It must honor ctx cancellation and deadlines.
type Handler func(ctx context.Context, tmpl domain.TaskTemplate, tc Context) (Result, error)

// Registry maps task categories to their handlers. Adding a category means
// registering a new entry, not editing a dispatcher.
type Registry map[domain.TaskCategory]Handler

// Register wires a handler for a category, replacing any previous one.
func (r Registry) Register(category domain.TaskCategory, h Handler) {
	r[category] = h
}

// Resolve returns the handler for a category.
func (r Registry) Resolve(category domain.TaskCategory) (Handler, error) {
	h, ok := r[category]
	if !ok {
		return nil, fmt.Errorf("no executor registered for category %s", category)
	}
	return h, nil
}
