package interfaces

import (
	"context"
	"encoding/json"

	"github.com/ternarybob/placesbridge/internal/models"
)

// Bridge method names understood by every platform handler
const (
	MethodInitialize      = "initialize"
	MethodFindPredictions = "findAutocompletePredictions"
	MethodFetchPlace      = "fetchPlace"
)

// PlatformHandler is the platform side of the bridge. It receives a decoded method call
// and answers with a raw JSON dictionary (or array of dictionaries) in the platform's own
// shape, or a *models.PlatformError.
type PlatformHandler interface {
	// Platform returns the platform identifier (e.g. "places-new", "legacy")
	Platform() string

	// HandleMethodCall executes one bridge call
	HandleMethodCall(ctx context.Context, method string, arguments json.RawMessage) (json.RawMessage, error)
}

// Bridge is the caller side of the message-passing boundary
type Bridge interface {
	// Platform returns the identifier of the handler answering calls
	Platform() string

	// Invoke sends a method call and waits for its reply
	Invoke(ctx context.Context, method string, arguments interface{}) (json.RawMessage, error)

	// Close stops the dispatcher. Calls in flight still receive their reply.
	Close() error
}

// PlacesService defines the unified places operations
type PlacesService interface {
	// Initialize resolves the API key (explicit value first) and initializes the platform
	Initialize(ctx context.Context, apiKey string) error

	// GetPredictions returns autocomplete predictions for req.Query within the current session
	GetPredictions(ctx context.Context, req *models.PredictionsRequest) ([]models.Prediction, error)

	// GetPlaceDetails fetches place details and ends the current session
	GetPlaceDetails(ctx context.Context, placeID string) (*models.PlaceDetails, error)

	// SessionState reports whether a session token is alive
	SessionState() models.SessionState
}
