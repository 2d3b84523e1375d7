package places

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/bridge"
	"github.com/ternarybob/placesbridge/internal/common"
	"github.com/ternarybob/placesbridge/internal/interfaces"
	"github.com/ternarybob/placesbridge/internal/models"
)

// initState is shared by every session of a service so a single Initialize serves them all
type initState struct {
	mu          sync.RWMutex
	initialized bool
}

// Service implements the PlacesService interface over a bridge
type Service struct {
	config       *common.PlacesConfig
	bridge       interfaces.Bridge
	mapper       ResponseMapper
	kvStorage    interfaces.KeyValueStorage
	sessions     interfaces.SessionStorage
	eventService interfaces.EventService
	logger       arbor.ILogger
	validate     *validator.Validate

	state  *initState
	tokens *SessionTokens
}

// NewService creates a new Places service instance for the platform behind br
func NewService(
	config *common.PlacesConfig,
	br interfaces.Bridge,
	storageManager interfaces.StorageManager,
	eventService interfaces.EventService,
	logger arbor.ILogger,
) (*Service, error) {
	mapper, err := NewMapper(br.Platform())
	if err != nil {
		return nil, err
	}

	s := &Service{
		config:       config,
		bridge:       br,
		mapper:       mapper,
		eventService: eventService,
		logger:       logger,
		validate:     validator.New(),
		state:        &initState{},
		tokens:       NewSessionTokens(),
	}
	if storageManager != nil {
		s.kvStorage = storageManager.KeyValueStorage()
		s.sessions = storageManager.SessionStorage()
	}
	return s, nil
}

// NewSession returns a service sharing this one's bridge and initialization but owning
// its own session token. Each live autocomplete client gets one.
func (s *Service) NewSession() *Service {
	clone := *s
	clone.tokens = NewSessionTokens()
	return &clone
}

// Platform returns the platform identifier answering bridge calls
func (s *Service) Platform() string {
	return s.bridge.Platform()
}

// Initialize resolves the API key and hands it to the platform
func (s *Service) Initialize(ctx context.Context, apiKey string) error {
	key, err := common.ResolveAPIKey(ctx, apiKey, s.kvStorage, s.config.APIKey)
	if err != nil {
		return models.NewPlacesError(models.ErrCodeAPIKeyMissing, "no Places API key available", err)
	}

	if _, err := s.bridge.Invoke(ctx, interfaces.MethodInitialize, bridge.InitializeArgs{APIKey: key}); err != nil {
		return models.NewPlacesError(models.ErrCodeAPIKeyMissing, "platform rejected the API key", err)
	}

	s.state.mu.Lock()
	s.state.initialized = true
	s.state.mu.Unlock()

	s.logger.Info().
		Str("platform", s.Platform()).
		Msg("Places platform initialized")
	return nil
}

// IsInitialized reports whether Initialize has succeeded
func (s *Service) IsInitialized() bool {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	return s.state.initialized
}

// SessionState reports whether a session token is alive
func (s *Service) SessionState() models.SessionState {
	return s.tokens.State()
}

// SessionToken returns the live session token, or "" when none exists
func (s *Service) SessionToken() string {
	return s.tokens.Current()
}

// GetPredictions returns autocomplete predictions for req.Query.
// A blank query returns an empty list without touching the platform or the session.
func (s *Service) GetPredictions(ctx context.Context, req *models.PredictionsRequest) ([]models.Prediction, error) {
	if req == nil {
		return nil, models.NewPlacesError(models.ErrCodeInvalidRequest, "predictions request is required", nil)
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return []models.Prediction{}, nil
	}

	if !s.IsInitialized() {
		return nil, models.NewPlacesError(models.ErrCodeNotInitialized, "places service is not initialized", nil)
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, models.NewPlacesError(models.ErrCodeInvalidRequest, "invalid predictions request", err)
	}

	token, started := s.tokens.Acquire(s.Platform())
	if started {
		s.publishEvent(interfaces.EventSessionStarted, map[string]interface{}{
			"platform": s.Platform(),
		})
	}

	args := bridge.PredictionsArgs{
		Query:        query,
		Countries:    req.Countries,
		Types:        req.Types,
		Origin:       req.Origin,
		SessionToken: token,
		Language:     firstNonEmpty(req.Language, s.config.Language),
		Region:       firstNonEmpty(req.Region, s.config.Region),
	}

	s.logger.Debug().
		Str("query", query).
		Int("countries", len(req.Countries)).
		Bool("origin", req.Origin != nil).
		Msg("Requesting place predictions")

	s.publishEvent(interfaces.EventPredictionsStarted, map[string]interface{}{
		"query": query,
	})

	raw, err := s.bridge.Invoke(ctx, interfaces.MethodFindPredictions, args)
	if err != nil {
		s.publishEvent(interfaces.EventPredictionsFailed, map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return nil, models.NewPlacesError(models.ErrCodePredictionsFailed, "failed to fetch predictions", err)
	}

	predictions, err := s.mapper.MapPredictions(raw)
	if err != nil {
		s.publishEvent(interfaces.EventPredictionsFailed, map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return nil, err
	}

	if s.config.MaxPredictions > 0 && len(predictions) > s.config.MaxPredictions {
		predictions = predictions[:s.config.MaxPredictions]
	}

	s.publishEvent(interfaces.EventPredictionsCompleted, map[string]interface{}{
		"query":         query,
		"total_results": len(predictions),
	})

	return predictions, nil
}

// GetPlaceDetails fetches place details within the current session, then ends the session
// whatever the outcome.
func (s *Service) GetPlaceDetails(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, models.NewPlacesError(models.ErrCodeInvalidRequest, "place id is required", nil)
	}

	if !s.IsInitialized() {
		return nil, models.NewPlacesError(models.ErrCodeNotInitialized, "places service is not initialized", nil)
	}

	token := s.tokens.Current()
	args := bridge.FetchPlaceArgs{
		PlaceID:      placeID,
		SessionToken: token,
		Language:     s.config.Language,
		Region:       s.config.Region,
	}

	details, err := s.fetchDetails(ctx, args)

	outcome := models.SessionOutcomeSelected
	if err != nil {
		outcome = models.SessionOutcomeFailed
	}
	s.endSession(ctx, token, outcome, placeID)

	if err != nil {
		s.publishEvent(interfaces.EventDetailsFailed, map[string]interface{}{
			"place_id": placeID,
			"error":    err.Error(),
		})
		return nil, err
	}

	s.publishEvent(interfaces.EventDetailsCompleted, map[string]interface{}{
		"place_id": placeID,
		"name":     details.Name,
	})
	return details, nil
}

func (s *Service) fetchDetails(ctx context.Context, args bridge.FetchPlaceArgs) (*models.PlaceDetails, error) {
	raw, err := s.bridge.Invoke(ctx, interfaces.MethodFetchPlace, args)
	if err != nil {
		var platformErr *models.PlatformError
		if errors.As(err, &platformErr) && platformErr.Code == models.PlatformCodeNotFound {
			return nil, models.NewPlacesError(models.ErrCodePlaceNotFound, "place "+args.PlaceID+" not found", err)
		}
		return nil, models.NewPlacesError(models.ErrCodeDetailsFailed, "failed to fetch place details", err)
	}
	return s.mapper.MapPlaceDetails(raw)
}

// AbandonSession ends a live session without a selection
func (s *Service) AbandonSession(ctx context.Context) {
	s.endSession(ctx, s.tokens.Current(), models.SessionOutcomeAbandoned, "")
}

// endSession clears token and records the finished session
func (s *Service) endSession(ctx context.Context, token, outcome, placeID string) {
	finished := s.tokens.End(token, outcome, placeID)
	if finished == nil {
		return
	}

	s.logger.Debug().
		Str("outcome", outcome).
		Int("prediction_calls", finished.PredictionCalls).
		Msg("Autocomplete session ended")

	if s.sessions != nil {
		if err := s.sessions.SaveSession(ctx, finished); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to record autocomplete session")
		}
	}

	s.publishEvent(interfaces.EventSessionEnded, map[string]interface{}{
		"platform":         finished.Platform,
		"outcome":          outcome,
		"prediction_calls": finished.PredictionCalls,
	})
}

// publishEvent publishes an event via the event service
func (s *Service) publishEvent(eventType interfaces.EventType, data map[string]interface{}) {
	if s.eventService == nil {
		return
	}

	data["timestamp"] = time.Now().Format(time.RFC3339)
	event := interfaces.Event{
		Type:    eventType,
		Payload: data,
	}
	if err := s.eventService.Publish(context.Background(), event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("event_type", string(eventType)).
			Msg("Failed to publish event")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
