package interfaces

import "context"

// EventType represents different event types in the system
type EventType string

const (
	EventPredictionsStarted   EventType = "places_predictions_started"
	EventPredictionsCompleted EventType = "places_predictions_completed"
	EventPredictionsFailed    EventType = "places_predictions_failed"
	EventDetailsCompleted     EventType = "places_details_completed"
	EventDetailsFailed        EventType = "places_details_failed"
	EventSessionStarted       EventType = "places_session_started"
	EventSessionEnded         EventType = "places_session_ended"
)

// Event represents a system event
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// EventService manages pub/sub event bus
type EventService interface {
	// Subscribe to an event type
	Subscribe(eventType EventType, handler EventHandler) error

	// Publish an event to all subscribers asynchronously
	Publish(ctx context.Context, event Event) error

	// PublishSync publishes event and waits for all handlers to complete
	PublishSync(ctx context.Context, event Event) error

	// Close shuts down the event service
	Close() error
}
