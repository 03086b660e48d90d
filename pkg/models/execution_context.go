package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExecutionContext is the record threaded through every step of an agent
// run. It is treated as immutable: the With* builders return a copy with
// the requested change, so concurrent fan-out never shares mutable state.
type ExecutionContext struct {
	ID          string         `json:"id"`
	WorkflowID  string         `json:"workflow_id"`
	CurrentStep string         `json:"current_step,omitempty"`
	Input       map[string]any `json:"input,omitempty"`
	Output      map[string]any `json:"output,omitempty"`
	Values      map[string]any `json:"values,omitempty"`
	Errors      []string       `json:"errors,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewExecutionContext creates a fresh context for one agent run.
func NewExecutionContext(workflowID string, input map[string]any) ExecutionContext {
	now := time.Now().UTC()

	return ExecutionContext{
		ID:         "exec-" + uuid.New().String()[:8],
		WorkflowID: workflowID,
		Input:      input,
		Output:     map[string]any{},
		Values:     map[string]any{},
		Metadata:   map[string]any{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Failed reports whether any step has recorded an error. Once true, no
// later step may mutate business state.
func (c ExecutionContext) Failed() bool {
	return len(c.Errors) > 0
}

// WithStep returns a copy positioned at the named step.
func (c ExecutionContext) WithStep(name string) ExecutionContext {
	out := c.clone()
	out.CurrentStep = name

	return out
}

// WithOutput returns a copy with an output entry set.
func (c ExecutionContext) WithOutput(key string, value any) ExecutionContext {
	out := c.clone()
	out.Output[key] = value

	return out
}

// WithValue returns a copy with a free-form context entry set.
func (c ExecutionContext) WithValue(key string, value any) ExecutionContext {
	out := c.clone()
	out.Values[key] = value

	return out
}

// WithError returns a copy with an error entry appended. The message is
// prefixed with the current step name so the accumulated list reads as a
// trace.
func (c ExecutionContext) WithError(format string, args ...any) ExecutionContext {
	out := c.clone()

	msg := fmt.Sprintf(format, args...)
	if out.CurrentStep != "" {
		msg = out.CurrentStep + ": " + msg
	}

	out.Errors = append(out.Errors, msg)

	return out
}

// WithMetadata returns a copy with a metadata entry set.
func (c ExecutionContext) WithMetadata(key string, value any) ExecutionContext {
	out := c.clone()
	out.Metadata[key] = value

	return out
}

func (c ExecutionContext) clone() ExecutionContext {
	out := c
	out.Input = cloneMap(c.Input)
	out.Output = cloneMap(c.Output)
	out.Values = cloneMap(c.Values)
	out.Metadata = cloneMap(c.Metadata)
	out.Errors = append([]string(nil), c.Errors...)
	out.UpdatedAt = time.Now().UTC()

	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}
