package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/common"
)

// PlatformStatus reports what the API handler needs about the places facade
type PlatformStatus interface {
	Platform() string
	IsInitialized() bool
}

type APIHandler struct {
	status PlatformStatus
	logger arbor.ILogger
}

func NewAPIHandler(status PlatformStatus, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		status: status,
		logger: logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
		"platform":   h.status.Platform(),
	})
}

// HealthHandler returns health check status. The service is degraded until the
// platform has accepted an API key.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	if !h.status.IsInitialized() {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":      "degraded",
			"initialized": false,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"initialized": true,
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
