package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ternarybob/placesbridge/internal/models"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WritePlacesError writes err with its machine-readable code and a matching HTTP status.
func WritePlacesError(w http.ResponseWriter, err error) error {
	code := models.ErrorCode(err)
	return WriteJSON(w, StatusForCode(code), map[string]string{
		"status": "error",
		"code":   code,
		"error":  err.Error(),
	})
}

// StatusForCode maps a places error code to an HTTP status
func StatusForCode(code string) int {
	switch code {
	case models.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case models.ErrCodePlaceNotFound:
		return http.StatusNotFound
	case models.ErrCodeNotInitialized, models.ErrCodeAPIKeyMissing:
		return http.StatusServiceUnavailable
	case models.ErrCodePredictionsFailed, models.ErrCodeDetailsFailed, models.ErrCodeMappingFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetLimitParam reads ?limit= clamped to [1, max], falling back to def.
func GetLimitParam(r *http.Request, def, max int) int {
	limit := def
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}

// GetListParam collects a repeatable query parameter, also splitting comma separated values.
// ?country=au&country=nz and ?country=au,nz are equivalent.
func GetListParam(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// PathParam returns the URL-decoded remainder of the path after prefix
func PathParam(r *http.Request, prefix string) (string, error) {
	if !strings.HasPrefix(r.URL.Path, prefix) {
		return "", nil
	}
	return url.PathUnescape(strings.TrimPrefix(r.URL.Path, prefix))
}
