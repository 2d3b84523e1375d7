package events

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/interfaces"
)

// AllEventTypes lists every event the places facade publishes
var AllEventTypes = []interfaces.EventType{
	interfaces.EventPredictionsStarted,
	interfaces.EventPredictionsCompleted,
	interfaces.EventPredictionsFailed,
	interfaces.EventDetailsCompleted,
	interfaces.EventDetailsFailed,
	interfaces.EventSessionStarted,
	interfaces.EventSessionEnded,
}

// NewLoggerSubscriber creates an event handler that logs all events
func NewLoggerSubscriber(logger arbor.ILogger) interfaces.EventHandler {
	return func(ctx context.Context, event interfaces.Event) error {
		logEvent := logger.Debug().
			Str("event_type", string(event.Type))

		if payload, ok := event.Payload.(map[string]interface{}); ok {
			for _, key := range []string{"platform", "place_id", "outcome", "error"} {
				if v, ok := payload[key].(string); ok && v != "" {
					logEvent = logEvent.Str(key, v)
				}
			}
			if n, ok := payload["total_results"].(int); ok {
				logEvent = logEvent.Int("total_results", n)
			}
			if n, ok := payload["prediction_calls"].(int); ok {
				logEvent = logEvent.Int("prediction_calls", n)
			}
		}

		logEvent.Msg("Event published")
		return nil
	}
}

// SubscribeLoggerToAllEvents subscribes the logger to all known event types
func SubscribeLoggerToAllEvents(eventService interfaces.EventService, logger arbor.ILogger) error {
	subscriber := NewLoggerSubscriber(logger)

	for _, eventType := range AllEventTypes {
		if err := eventService.Subscribe(eventType, subscriber); err != nil {
			return fmt.Errorf("failed to subscribe logger to event type %s: %w", eventType, err)
		}
	}

	logger.Debug().
		Int("event_type_count", len(AllEventTypes)).
		Msg("Logger subscribed to all event types")

	return nil
}
