package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/interfaces"
)

// TestNewLoggerSubscriber verifies that the logger subscriber accepts any payload shape
func TestNewLoggerSubscriber(t *testing.T) {
	subscriber := NewLoggerSubscriber(arbor.NewLogger())
	ctx := context.Background()

	err := subscriber(ctx, interfaces.Event{
		Type: interfaces.EventSessionEnded,
		Payload: map[string]interface{}{
			"platform":         "places-new",
			"outcome":          "selected",
			"prediction_calls": 3,
		},
	})
	assert.NoError(t, err)

	err = subscriber(ctx, interfaces.Event{Type: interfaces.EventPredictionsStarted})
	assert.NoError(t, err)
}

// TestSubscribeLoggerToAllEvents verifies the logger is subscribed to every event type
func TestSubscribeLoggerToAllEvents(t *testing.T) {
	service := NewService(arbor.NewLogger())
	defer service.Close()

	require.NoError(t, SubscribeLoggerToAllEvents(service, arbor.NewLogger()))

	for _, eventType := range AllEventTypes {
		assert.Equal(t, 1, service.SubscriberCount(eventType), string(eventType))
	}
}
