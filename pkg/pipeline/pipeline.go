// Package pipeline runs ordered, fail-fast step sequences over an
// execution context.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/hireflowhq/hireflow/pkg/models"
)

// Step transforms an execution context. A step signals failure by
// returning a context with new error entries; panics are converted at the
// step boundary into error entries by the runner.
type Step func(ctx context.Context, state models.ExecutionContext) models.ExecutionContext

// Pipeline executes a fixed, named sequence of steps. The step table is
// built at construction so unknown names are caught by the one code path
// that records them, never by reflection.
type Pipeline struct {
	order  []string
	steps  map[string]Step
	logger *slog.Logger
}

// New builds a pipeline from an ordered list of step names and the table
// mapping names to implementations. Names without an implementation stay
// in the order list; running them records a "step not implemented" error.
func New(logger *slog.Logger, order []string, steps map[string]Step) *Pipeline {
	return &Pipeline{
		order:  order,
		steps:  steps,
		logger: logger,
	}
}

// Order returns the configured step names in execution order.
func (p *Pipeline) Order() []string {
	return append([]string(nil), p.order...)
}

// Run executes the steps in order. After any step leaves the context with
// a non-empty error list, the remaining steps are skipped and the context
// is returned as-is. There is no retry and no rollback.
func (p *Pipeline) Run(ctx context.Context, state models.ExecutionContext) models.ExecutionContext {
	for _, name := range p.order {
		if state.Failed() {
			return state
		}

		state = p.RunStep(ctx, name, state)
	}

	return state
}

// RunStep executes a single named step with panic recovery at the
// boundary. Callers that need to interleave their own control flow (the
// orchestrator's suspend point) drive steps one at a time through here.
func (p *Pipeline) RunStep(ctx context.Context, name string, state models.ExecutionContext) (result models.ExecutionContext) {
	state = state.WithStep(name)

	logger := p.logger.With("step", name, "workflow_id", state.WorkflowID)

	step, ok := p.steps[name]
	if !ok {
		logger.Error("Step not implemented")

		return state.WithError("step not implemented")
	}

	if err := ctx.Err(); err != nil {
		logger.Warn("Step skipped, run cancelled", "error", err)

		return state.WithError("cancelled: %v", err)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Step panicked", "panic", r)

			result = state.WithError("step panicked: %v", r)
		}
	}()

	logger.Debug("Executing step")

	result = step(ctx, state)

	if result.Failed() {
		logger.Warn("Step recorded errors", "errors", result.Errors)
	} else {
		logger.Debug("Step completed")
	}

	return result
}
