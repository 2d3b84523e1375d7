package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (live autocomplete, one session per connection)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Places
	mux.HandleFunc("/api/places/predictions", s.app.PlacesHandler.PredictionsHandler) // GET ?q=&country=&type=&lat=&lng=
	mux.HandleFunc("/api/places/details/", s.app.PlacesHandler.DetailsHandler)        // GET /{placeId}
	mux.HandleFunc("/api/places/session", s.app.PlacesHandler.SessionHandler)         // GET - token state

	// API routes - Recorded sessions
	mux.HandleFunc("/api/sessions", s.handleSessionsRoute) // GET (list), DELETE (clear)

	// API routes - Variables (key/value)
	mux.HandleFunc("/api/kv", s.app.KVHandler.ListKVHandler) // GET - masked list
	mux.HandleFunc("/api/kv/", s.handleKVRoutes)             // PUT/DELETE /{key}

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}

func (s *Server) handleSessionsRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		"GET":    s.app.PlacesHandler.ListSessionsHandler,
		"DELETE": s.app.PlacesHandler.DeleteSessionsHandler,
	})
}

// handleKVRoutes stores or deletes a variable. Storing the places key retries
// platform initialization so the key takes effect without a restart.
func (s *Server) handleKVRoutes(w http.ResponseWriter, r *http.Request) {
	RouteCRUD(w, r, nil, nil, s.putVariable, s.app.KVHandler.DeleteKVHandler)
}

func (s *Server) putVariable(w http.ResponseWriter, r *http.Request) {
	rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
	s.app.KVHandler.UpdateKVHandler(rw, r)

	if rw.statusCode < 300 && !s.app.PlacesService.IsInitialized() {
		if err := s.app.InitializePlaces(r.Context(), ""); err != nil {
			s.app.Logger.Debug().Err(err).Msg("Places platform still not initialized")
		}
	}
}
