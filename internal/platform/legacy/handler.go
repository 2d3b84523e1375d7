// Package legacy answers bridge calls with the legacy Places web service.
// Replies are the service's snake_case dictionaries; callers must tolerate
// missing business_status and geometry.viewport values.
package legacy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/placesbridge/internal/bridge"
	"github.com/ternarybob/placesbridge/internal/common"
	"github.com/ternarybob/placesbridge/internal/interfaces"
	"github.com/ternarybob/placesbridge/internal/models"
	"github.com/ternarybob/placesbridge/internal/platform"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the legacy Places web service endpoint
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// detailsFields lists the place fields requested by fetchPlace
var detailsFields = strings.Join([]string{
	"place_id",
	"name",
	"formatted_address",
	"address_components",
	"geometry",
	"formatted_phone_number",
	"international_phone_number",
	"website",
	"url",
	"rating",
	"user_ratings_total",
	"business_status",
	"permanently_closed",
	"type",
	"utc_offset",
	"utc_offset_minutes",
	"plus_code",
}, ",")

// Handler implements interfaces.PlatformHandler for the legacy web service
type Handler struct {
	baseURL string
	client  *platform.Client
	logger  arbor.ILogger
}

// NewHandler creates a handler; an empty baseURL selects DefaultBaseURL
func NewHandler(baseURL string, client *platform.Client, logger arbor.ILogger) *Handler {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Handler{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

// Platform returns the platform identifier
func (h *Handler) Platform() string {
	return common.PlatformLegacy
}

// HandleMethodCall executes one bridge call
func (h *Handler) HandleMethodCall(ctx context.Context, method string, arguments json.RawMessage) (json.RawMessage, error) {
	switch method {
	case interfaces.MethodInitialize:
		result, err := platform.HandleInitialize(h.client, arguments)
		if err != nil {
			return nil, err
		}
		h.logger.Info().Str("platform", h.Platform()).Msg("Places platform initialized")
		return result, nil

	case interfaces.MethodFindPredictions:
		var args bridge.PredictionsArgs
		if err := platform.DecodeArgs(arguments, &args); err != nil {
			return nil, err
		}
		return h.findPredictions(ctx, &args)

	case interfaces.MethodFetchPlace:
		var args bridge.FetchPlaceArgs
		if err := platform.DecodeArgs(arguments, &args); err != nil {
			return nil, err
		}
		return h.fetchPlace(ctx, &args)

	default:
		return nil, platform.UnknownMethod(method)
	}
}

// findPredictions returns the predictions array of the autocomplete response
func (h *Handler) findPredictions(ctx context.Context, args *bridge.PredictionsArgs) (json.RawMessage, error) {
	apiKey, err := h.client.APIKey()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("input", args.Query)
	if args.SessionToken != "" {
		params.Set("sessiontoken", args.SessionToken)
	}
	if len(args.Countries) > 0 {
		components := make([]string, len(args.Countries))
		for i, country := range args.Countries {
			components[i] = "country:" + strings.ToLower(country)
		}
		params.Set("components", strings.Join(components, "|"))
	}
	if len(args.Types) > 0 {
		params.Set("types", strings.Join(args.Types, "|"))
	}
	if args.Origin != nil {
		params.Set("origin", fmt.Sprintf("%f,%f", args.Origin.Latitude, args.Origin.Longitude))
	}
	if args.Language != "" {
		params.Set("language", args.Language)
	}
	if args.Region != "" {
		params.Set("region", args.Region)
	}
	params.Set("key", apiKey)

	body, err := h.get(ctx, "/autocomplete/json", params, apiKey)
	if err != nil {
		return nil, err
	}
	if err := statusError(body); err != nil {
		return nil, err
	}

	predictions := gjson.GetBytes(body, "predictions")
	if !predictions.Exists() {
		return json.RawMessage(`[]`), nil
	}
	return json.RawMessage(predictions.Raw), nil
}

// fetchPlace returns the result dictionary of the details response
func (h *Handler) fetchPlace(ctx context.Context, args *bridge.FetchPlaceArgs) (json.RawMessage, error) {
	apiKey, err := h.client.APIKey()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.PlaceID) == "" {
		return nil, &models.PlatformError{Code: models.PlatformCodeInvalidArgument, Message: "placeId must not be empty"}
	}

	params := url.Values{}
	params.Set("place_id", args.PlaceID)
	params.Set("fields", detailsFields)
	if args.SessionToken != "" {
		params.Set("sessiontoken", args.SessionToken)
	}
	if args.Language != "" {
		params.Set("language", args.Language)
	}
	if args.Region != "" {
		params.Set("region", args.Region)
	}
	params.Set("key", apiKey)

	body, err := h.get(ctx, "/details/json", params, apiKey)
	if err != nil {
		return nil, err
	}
	if err := statusError(body); err != nil {
		return nil, err
	}

	result := gjson.GetBytes(body, "result")
	if !result.Exists() {
		return nil, &models.PlatformError{Code: models.PlatformCodeNotFound, Message: fmt.Sprintf("no result for place %s", args.PlaceID)}
	}
	return json.RawMessage(result.Raw), nil
}

func (h *Handler) get(ctx context.Context, path string, params url.Values, apiKey string) ([]byte, error) {
	fullURL := h.baseURL + path + "?" + params.Encode()

	h.logger.Debug().Str("url", platform.RedactKey(fullURL, url.QueryEscape(apiKey))).Msg("Calling legacy Places web service")

	req, err := http.NewRequest(http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	body, status, err := h.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &models.PlatformError{
			Code:    platform.CodeForStatus(status),
			Message: fmt.Sprintf("Places web service returned status %d", status),
		}
	}
	if !gjson.ValidBytes(body) {
		return nil, &models.PlatformError{Code: models.PlatformCodeAPI, Message: "response is not valid JSON"}
	}
	return body, nil
}

// statusError maps the web service "status" field to a platform error.
// Only NOT_FOUND names a missing place; INVALID_REQUEST is a rejected request
// (malformed place id, unknown field) and stays an argument error.
func statusError(body []byte) error {
	status := gjson.GetBytes(body, "status").String()
	message := gjson.GetBytes(body, "error_message").String()
	if message == "" {
		message = status
	}

	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	case "NOT_FOUND":
		return &models.PlatformError{Code: models.PlatformCodeNotFound, Message: message}
	case "INVALID_REQUEST":
		return &models.PlatformError{Code: models.PlatformCodeInvalidArgument, Message: message}
	case "REQUEST_DENIED":
		return &models.PlatformError{Code: models.PlatformCodeRequestDenied, Message: message}
	case "OVER_QUERY_LIMIT":
		return &models.PlatformError{Code: models.PlatformCodeQuotaExceeded, Message: message}
	default:
		return &models.PlatformError{Code: models.PlatformCodeAPI, Message: fmt.Sprintf("Places web service status %q: %s", status, message)}
	}
}
