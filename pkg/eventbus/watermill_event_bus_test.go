package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflowhq/hireflow/pkg/channels/gochannel"
	"github.com/hireflowhq/hireflow/pkg/eventbus"
	"github.com/hireflowhq/hireflow/pkg/events"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := newTestBus(t)

	received := make(chan *events.DecisionRequired, 1)

	err := bus.Handle(events.DecisionRequiredEvent, func(_ context.Context, event interface{}) error {
		decision, ok := event.(*events.DecisionRequired)
		require.True(t, ok)

		received <- decision

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Subscribe(ctx))

	published := events.DecisionRequired{
		BaseEvent: events.NewBaseEvent(events.DecisionRequiredEvent, "wf-1"),
		JobID:     "job-1",
	}

	require.NoError(t, bus.Publish(ctx, "wf-1", published))

	select {
	case got := <-received:
		assert.Equal(t, "wf-1", got.WorkflowID)
		assert.Equal(t, "job-1", got.JobID)
		assert.Equal(t, events.DecisionRequiredEvent, got.Type)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_UnhandledTypeIsAcked(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := newTestBus(t)

	received := make(chan *events.WorkflowCompleted, 1)

	err := bus.Handle(events.WorkflowCompletedEvent, func(_ context.Context, event interface{}) error {
		received <- event.(*events.WorkflowCompleted)

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for this one; it must not wedge the stream.
	require.NoError(t, bus.Publish(ctx, "wf-1", events.WorkflowStarted{
		BaseEvent: events.NewBaseEvent(events.WorkflowStartedEvent, "wf-1"),
	}))

	require.NoError(t, bus.Publish(ctx, "wf-1", events.WorkflowCompleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowCompletedEvent, "wf-1"),
		JobID:     "job-1",
	}))

	select {
	case got := <-received:
		assert.Equal(t, "job-1", got.JobID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}
