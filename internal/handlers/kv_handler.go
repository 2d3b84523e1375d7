package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/interfaces"
)

// KVServiceInterface defines the methods needed from the KV service
type KVServiceInterface interface {
	Set(ctx context.Context, key, value, description string) (bool, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]interfaces.KeyValuePair, error)
}

// KVHandler handles variables (key/value) storage HTTP requests
type KVHandler struct {
	kvService KVServiceInterface
	logger    arbor.ILogger
}

// NewKVHandler creates a new KV handler for managing variables
func NewKVHandler(kvService KVServiceInterface, logger arbor.ILogger) *KVHandler {
	return &KVHandler{
		kvService: kvService,
		logger:    logger,
	}
}

// ListKVHandler handles GET /api/kv - lists all variables with masked values
func (h *KVHandler) ListKVHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	pairs, err := h.kvService.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list key/value pairs")
		WriteError(w, http.StatusInternalServerError, "Failed to list key/value pairs")
		return
	}

	WriteJSON(w, http.StatusOK, pairs)
}

// UpdateKVHandler handles PUT /api/kv/{key} - upserts a variable
func (h *KVHandler) UpdateKVHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "PUT") {
		return
	}

	key, err := PathParam(r, "/api/kv/")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid key encoding")
		return
	}
	if key == "" {
		WriteError(w, http.StatusBadRequest, "Missing key parameter")
		return
	}

	var req struct {
		Value       string `json:"value"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Value == "" {
		WriteError(w, http.StatusBadRequest, "Missing value")
		return
	}

	isNewKey, err := h.kvService.Set(r.Context(), key, req.Value, req.Description)
	if err != nil {
		h.logger.Error().Err(err).Str("key", key).Msg("Failed to upsert key/value pair")
		WriteError(w, http.StatusInternalServerError, "Failed to upsert key/value pair")
		return
	}

	statusCode := http.StatusOK
	message := "Key/value pair updated successfully"
	if isNewKey {
		statusCode = http.StatusCreated
		message = "Key/value pair created successfully"
	}

	WriteJSON(w, statusCode, map[string]interface{}{
		"status":  "success",
		"message": message,
		"key":     key,
		"created": isNewKey,
	})
}

// DeleteKVHandler handles DELETE /api/kv/{key}
func (h *KVHandler) DeleteKVHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	key, err := PathParam(r, "/api/kv/")
	if err != nil || key == "" {
		WriteError(w, http.StatusBadRequest, "Missing key parameter")
		return
	}

	if err := h.kvService.Delete(r.Context(), key); err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			WriteError(w, http.StatusNotFound, "Key not found")
			return
		}
		h.logger.Error().Err(err).Str("key", key).Msg("Failed to delete key/value pair")
		WriteError(w, http.StatusInternalServerError, "Failed to delete key/value pair")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Key/value pair deleted successfully",
	})
}
