// Package platform holds the HTTP plumbing shared by the Google Places platform handlers.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/placesbridge/internal/bridge"
	"github.com/ternarybob/placesbridge/internal/models"
	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 4 * 1024 * 1024

// Client wraps an http.Client with the API key, a request rate limiter and logging
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     arbor.ILogger

	mu     sync.RWMutex
	apiKey string
}

// NewClient creates a Client. rateLimit is the minimum spacing between requests (0 disables limiting).
func NewClient(timeout, rateLimit time.Duration, logger arbor.ILogger) *Client {
	limit := rate.Inf
	if rateLimit > 0 {
		limit = rate.Every(rateLimit)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// SetAPIKey stores the key used for subsequent requests
func (c *Client) SetAPIKey(apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = apiKey
}

// APIKey returns the stored key, or a NOT_INITIALIZED platform error if none was set
func (c *Client) APIKey() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.apiKey == "" {
		return "", &models.PlatformError{
			Code:    models.PlatformCodeNotInitialized,
			Message: "platform not initialized: call initialize with an API key first",
		}
	}
	return c.apiKey, nil
}

// Do waits for the rate limiter, executes req and returns the response body and status.
// Transport failures are reported as NETWORK_ERROR platform errors.
func (c *Client) Do(ctx context.Context, req *http.Request) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, &models.PlatformError{Code: models.PlatformCodeNetwork, Message: err.Error()}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, 0, &models.PlatformError{
			Code:    models.PlatformCodeNetwork,
			Message: fmt.Sprintf("request to %s failed: %v", req.URL.Host, err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, &models.PlatformError{
			Code:    models.PlatformCodeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
		}
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Places platform request")

	return body, resp.StatusCode, nil
}

// DecodeArgs decodes bridge arguments into v, reporting failures as INVALID_ARGUMENT
func DecodeArgs(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return &models.PlatformError{Code: models.PlatformCodeInvalidArgument, Message: "missing arguments"}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &models.PlatformError{Code: models.PlatformCodeInvalidArgument, Message: fmt.Sprintf("malformed arguments: %v", err)}
	}
	return nil
}

// UnknownMethod returns the platform error for an unsupported bridge method
func UnknownMethod(method string) error {
	return &models.PlatformError{Code: models.PlatformCodeUnknownMethod, Message: fmt.Sprintf("method %q is not implemented", method)}
}

// CodeForStatus maps an HTTP status to a platform error code
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return models.PlatformCodeInvalidArgument
	case http.StatusUnauthorized, http.StatusForbidden:
		return models.PlatformCodeRequestDenied
	case http.StatusNotFound:
		return models.PlatformCodeNotFound
	case http.StatusTooManyRequests:
		return models.PlatformCodeQuotaExceeded
	default:
		return models.PlatformCodeAPI
	}
}

// RedactKey removes the API key from a URL string for logging
func RedactKey(rawURL, apiKey string) string {
	if apiKey == "" {
		return rawURL
	}
	return strings.ReplaceAll(rawURL, apiKey, "***REDACTED***")
}

// HandleInitialize stores the API key carried by an initialize call
func HandleInitialize(client *Client, arguments json.RawMessage) (json.RawMessage, error) {
	var args bridge.InitializeArgs
	if err := DecodeArgs(arguments, &args); err != nil {
		return nil, err
	}
	apiKey := strings.TrimSpace(args.APIKey)
	if apiKey == "" {
		return nil, &models.PlatformError{Code: models.PlatformCodeInvalidArgument, Message: "API key must not be empty"}
	}
	client.SetAPIKey(apiKey)
	return json.RawMessage(`true`), nil
}
