package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/interfaces"
)

func TestService_PublishDeliversAsync(t *testing.T) {
	service := NewService(arbor.NewLogger())
	defer service.Close()

	received := make(chan interfaces.Event, 1)
	require.NoError(t, service.Subscribe(interfaces.EventDetailsCompleted, func(ctx context.Context, e interfaces.Event) error {
		received <- e
		return nil
	}))

	require.NoError(t, service.Publish(context.Background(), interfaces.Event{
		Type:    interfaces.EventDetailsCompleted,
		Payload: map[string]interface{}{"place_id": "p1"},
	}))

	select {
	case e := <-received:
		assert.Equal(t, interfaces.EventDetailsCompleted, e.Type)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestService_PublishSyncCollectsErrors(t *testing.T) {
	service := NewService(arbor.NewLogger())
	defer service.Close()

	var calls int32
	boom := errors.New("boom")
	require.NoError(t, service.Subscribe(interfaces.EventPredictionsFailed, func(ctx context.Context, e interfaces.Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}))
	require.NoError(t, service.Subscribe(interfaces.EventPredictionsFailed, func(ctx context.Context, e interfaces.Event) error {
		atomic.AddInt32(&calls, 1)
		return boom
	}))

	err := service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventPredictionsFailed})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestService_NoSubscribers(t *testing.T) {
	service := NewService(arbor.NewLogger())
	defer service.Close()

	assert.NoError(t, service.Publish(context.Background(), interfaces.Event{Type: interfaces.EventSessionStarted}))
	assert.NoError(t, service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventSessionStarted}))
}

func TestService_Close(t *testing.T) {
	service := NewService(arbor.NewLogger())

	assert.Error(t, service.Subscribe(interfaces.EventSessionStarted, nil))
	require.NoError(t, service.Subscribe(interfaces.EventSessionStarted, func(ctx context.Context, e interfaces.Event) error { return nil }))
	require.NoError(t, service.Close())

	assert.Equal(t, 0, service.SubscriberCount(interfaces.EventSessionStarted))
	assert.ErrorIs(t, service.Publish(context.Background(), interfaces.Event{Type: interfaces.EventSessionStarted}), ErrServiceClosed)
	assert.ErrorIs(t, service.Subscribe(interfaces.EventSessionStarted, func(ctx context.Context, e interfaces.Event) error { return nil }), ErrServiceClosed)
}
