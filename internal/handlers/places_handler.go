package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/interfaces"
	"github.com/ternarybob/placesbridge/internal/models"
	"github.com/ternarybob/placesbridge/internal/services/places"
)

const (
	// sessionParam names the opaque client-chosen session id query parameter
	sessionParam     = "session"
	maxSessionIDLen  = 128
	clientSessionTTL = 10 * time.Minute
)

type clientSession struct {
	service  *places.Service
	lastUsed time.Time
}

// PlacesHandler exposes the places facade over HTTP. Requests carrying a session
// parameter get their own session token; requests without one share the facade's
// session, so a details call ends the session opened by earlier prediction calls.
type PlacesHandler struct {
	service  *places.Service
	sessions interfaces.SessionStorage
	logger   arbor.ILogger

	mu      sync.Mutex
	clients map[string]*clientSession
	now     func() time.Time
}

// NewPlacesHandler creates a new places handler
func NewPlacesHandler(service *places.Service, sessions interfaces.SessionStorage, logger arbor.ILogger) *PlacesHandler {
	return &PlacesHandler{
		service:  service,
		sessions: sessions,
		logger:   logger,
		clients:  make(map[string]*clientSession),
		now:      time.Now,
	}
}

// facadeFor returns the facade serving r and the client session id, if any.
// Client sessions idle for longer than clientSessionTTL are abandoned.
func (h *PlacesHandler) facadeFor(r *http.Request) (*places.Service, string, bool) {
	id := strings.TrimSpace(r.URL.Query().Get(sessionParam))
	if id == "" {
		return h.service, "", true
	}
	if len(id) > maxSessionIDLen {
		return nil, "", false
	}

	now := h.now()
	var expired []*places.Service

	h.mu.Lock()
	for key, c := range h.clients {
		if key != id && now.Sub(c.lastUsed) > clientSessionTTL {
			expired = append(expired, c.service)
			delete(h.clients, key)
		}
	}
	c, ok := h.clients[id]
	if !ok {
		c = &clientSession{service: h.service.NewSession()}
		h.clients[id] = c
	}
	c.lastUsed = now
	h.mu.Unlock()

	for _, svc := range expired {
		svc.AbandonSession(context.Background())
	}
	if len(expired) > 0 {
		h.logger.Debug().Int("count", len(expired)).Msg("Abandoned idle client sessions")
	}
	return c.service, id, true
}

// ClientSessionCount reports how many client sessions are tracked
func (h *PlacesHandler) ClientSessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func writeBadSession(w http.ResponseWriter) {
	WriteError(w, http.StatusBadRequest, "session must be at most 128 characters")
}

// PredictionsHandler handles GET /api/places/predictions?q=&country=&type=&lat=&lng=&language=&region=&session=
func (h *PlacesHandler) PredictionsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	service, sessionID, ok := h.facadeFor(r)
	if !ok {
		writeBadSession(w)
		return
	}

	query := r.URL.Query()
	req := &models.PredictionsRequest{
		Query:     query.Get("q"),
		Countries: GetListParam(r, "country"),
		Types:     GetListParam(r, "type"),
		Language:  query.Get("language"),
		Region:    query.Get("region"),
	}

	lat, lng := query.Get("lat"), query.Get("lng")
	if lat != "" || lng != "" {
		origin, err := parseOrigin(lat, lng)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "lat and lng must both be decimal degrees")
			return
		}
		req.Origin = origin
	}

	predictions, err := service.GetPredictions(r.Context(), req)
	if err != nil {
		h.logger.Warn().Err(err).Str("code", models.ErrorCode(err)).Msg("Predictions request failed")
		WritePlacesError(w, err)
		return
	}

	response := map[string]interface{}{
		"predictions":   predictions,
		"count":         len(predictions),
		"session_state": service.SessionState(),
	}
	if sessionID != "" {
		response["session"] = sessionID
	}
	WriteJSON(w, http.StatusOK, response)
}

// DetailsHandler handles GET /api/places/details/{placeId}?session=
func (h *PlacesHandler) DetailsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	service, _, ok := h.facadeFor(r)
	if !ok {
		writeBadSession(w)
		return
	}

	placeID, err := PathParam(r, "/api/places/details/")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid place id encoding")
		return
	}
	if strings.TrimSpace(placeID) == "" {
		WriteError(w, http.StatusBadRequest, "Missing place id")
		return
	}

	details, err := service.GetPlaceDetails(r.Context(), placeID)
	if err != nil {
		h.logger.Warn().Err(err).Str("place_id", placeID).Msg("Details request failed")
		WritePlacesError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, details)
}

// SessionHandler handles GET /api/places/session?session=
func (h *PlacesHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	service, sessionID, ok := h.facadeFor(r)
	if !ok {
		writeBadSession(w)
		return
	}

	response := map[string]interface{}{
		"platform":    service.Platform(),
		"initialized": service.IsInitialized(),
		"state":       service.SessionState(),
	}
	if sessionID != "" {
		response["session"] = sessionID
	}
	WriteJSON(w, http.StatusOK, response)
}

// ListSessionsHandler handles GET /api/sessions?limit= - recorded autocomplete sessions, newest first
func (h *PlacesHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	limit := GetLimitParam(r, 50, 500)
	sessions, err := h.sessions.ListSessions(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list autocomplete sessions")
		WriteError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// DeleteSessionsHandler handles DELETE /api/sessions
func (h *PlacesHandler) DeleteSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	if err := h.sessions.DeleteAll(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Failed to delete autocomplete sessions")
		WriteError(w, http.StatusInternalServerError, "Failed to delete sessions")
		return
	}

	h.logger.Info().Msg("Deleted recorded autocomplete sessions")
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Sessions deleted",
	})
}

func parseOrigin(lat, lng string) (*models.LatLng, error) {
	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, err
	}
	longitude, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, err
	}
	return &models.LatLng{Latitude: latitude, Longitude: longitude}, nil
}
