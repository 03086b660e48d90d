package pipeline

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func recordingStep(name string, trace *[]string) Step {
	return func(_ context.Context, state models.ExecutionContext) models.ExecutionContext {
		*trace = append(*trace, name)

		return state.WithOutput(name, true)
	}
}

func TestPipeline_RunsStepsInOrder(t *testing.T) {
	var trace []string

	p := New(testLogger(), []string{"first", "second", "third"}, map[string]Step{
		"first":  recordingStep("first", &trace),
		"second": recordingStep("second", &trace),
		"third":  recordingStep("third", &trace),
	})

	state := p.Run(context.Background(), models.NewExecutionContext("wf-1", nil))

	assert.Equal(t, []string{"first", "second", "third"}, trace)
	assert.False(t, state.Failed())
	assert.Equal(t, "third", state.CurrentStep)
}

func TestPipeline_FailFastSkipsRemainingSteps(t *testing.T) {
	var trace []string

	p := New(testLogger(), []string{"first", "failing", "never"}, map[string]Step{
		"first": recordingStep("first", &trace),
		"failing": func(_ context.Context, state models.ExecutionContext) models.ExecutionContext {
			return state.WithError("broken")
		},
		"never": recordingStep("never", &trace),
	})

	state := p.Run(context.Background(), models.NewExecutionContext("wf-1", nil))

	assert.Equal(t, []string{"first"}, trace)
	assert.True(t, state.Failed())
	assert.Equal(t, []string{"failing: broken"}, state.Errors)
	assert.Equal(t, "failing", state.CurrentStep)
}

func TestPipeline_UnregisteredStepRecordsError(t *testing.T) {
	p := New(testLogger(), []string{"missing"}, map[string]Step{})

	state := p.Run(context.Background(), models.NewExecutionContext("wf-1", nil))

	assert.True(t, state.Failed())
	assert.Equal(t, []string{"missing: step not implemented"}, state.Errors)
}

func TestPipeline_PanicConvertedToError(t *testing.T) {
	p := New(testLogger(), []string{"explode", "after"}, map[string]Step{
		"explode": func(_ context.Context, _ models.ExecutionContext) models.ExecutionContext {
			panic("kaboom")
		},
		"after": func(_ context.Context, state models.ExecutionContext) models.ExecutionContext {
			t.Fatal("step after panic must not run")

			return state
		},
	})

	state := p.Run(context.Background(), models.NewExecutionContext("wf-1", nil))

	assert.True(t, state.Failed())
	assert.Equal(t, []string{"explode: step panicked: kaboom"}, state.Errors)
}

func TestPipeline_CancelledContextStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var trace []string

	p := New(testLogger(), []string{"first"}, map[string]Step{
		"first": recordingStep("first", &trace),
	})

	state := p.Run(ctx, models.NewExecutionContext("wf-1", nil))

	assert.Empty(t, trace)
	assert.True(t, state.Failed())
	assert.Contains(t, state.Errors[0], "cancelled")
}
