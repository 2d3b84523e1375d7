// Package placesnew answers bridge calls with the Places API (New).
// Replies keep the API's camelCase dictionaries untouched.
package placesnew

import (
	"bytes"
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

// DefaultBaseURL is the Places API (New) endpoint
const DefaultBaseURL = "https://places.googleapis.com/v1"

// detailsFieldMask lists the place fields requested by fetchPlace
var detailsFieldMask = strings.Join([]string{
	"id",
	"displayName",
	"formattedAddress",
	"addressComponents",
	"location",
	"nationalPhoneNumber",
	"internationalPhoneNumber",
	"websiteUri",
	"googleMapsUri",
	"rating",
	"userRatingCount",
	"businessStatus",
	"types",
	"utcOffsetMinutes",
	"plusCode",
	"viewport",
}, ",")

// Handler implements interfaces.PlatformHandler for the Places API (New)
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
	return common.PlatformPlacesNew
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

// autocompleteRequest is the places:autocomplete request body
type autocompleteRequest struct {
	Input                string        `json:"input"`
	SessionToken         string        `json:"sessionToken,omitempty"`
	IncludedRegionCodes  []string      `json:"includedRegionCodes,omitempty"`
	IncludedPrimaryTypes []string      `json:"includedPrimaryTypes,omitempty"`
	Origin               *latLngObject `json:"origin,omitempty"`
	LanguageCode         string        `json:"languageCode,omitempty"`
	RegionCode           string        `json:"regionCode,omitempty"`
}

type latLngObject struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// findPredictions returns the placePrediction dictionaries of the autocomplete response
func (h *Handler) findPredictions(ctx context.Context, args *bridge.PredictionsArgs) (json.RawMessage, error) {
	apiKey, err := h.client.APIKey()
	if err != nil {
		return nil, err
	}

	body := autocompleteRequest{
		Input:                args.Query,
		SessionToken:         args.SessionToken,
		IncludedRegionCodes:  lowerAll(args.Countries),
		IncludedPrimaryTypes: args.Types,
		LanguageCode:         args.Language,
		RegionCode:           args.Region,
	}
	if args.Origin != nil {
		body.Origin = &latLngObject{Latitude: args.Origin.Latitude, Longitude: args.Origin.Longitude}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode autocomplete request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, h.baseURL+"/places:autocomplete", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build autocomplete request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", apiKey)

	h.logger.Debug().
		Str("query", args.Query).
		Bool("has_origin", args.Origin != nil).
		Strs("countries", args.Countries).
		Msg("Calling Places API (New) autocomplete")

	respBody, status, err := h.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(status, respBody)
	}

	if !gjson.ValidBytes(respBody) {
		return nil, &models.PlatformError{Code: models.PlatformCodeAPI, Message: "autocomplete response is not valid JSON"}
	}

	predictions := gjson.GetBytes(respBody, "suggestions.#.placePrediction")
	if !predictions.Exists() {
		return json.RawMessage(`[]`), nil
	}
	return json.RawMessage(predictions.Raw), nil
}

// fetchPlace returns the place dictionary for args.PlaceID
func (h *Handler) fetchPlace(ctx context.Context, args *bridge.FetchPlaceArgs) (json.RawMessage, error) {
	apiKey, err := h.client.APIKey()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.PlaceID) == "" {
		return nil, &models.PlatformError{Code: models.PlatformCodeInvalidArgument, Message: "placeId must not be empty"}
	}

	params := url.Values{}
	if args.SessionToken != "" {
		params.Set("sessionToken", args.SessionToken)
	}
	if args.Language != "" {
		params.Set("languageCode", args.Language)
	}
	if args.Region != "" {
		params.Set("regionCode", args.Region)
	}

	fullURL := h.baseURL + "/places/" + url.PathEscape(args.PlaceID)
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build place details request: %w", err)
	}
	req.Header.Set("X-Goog-Api-Key", apiKey)
	req.Header.Set("X-Goog-FieldMask", detailsFieldMask)

	h.logger.Debug().Str("place_id", args.PlaceID).Msg("Calling Places API (New) place details")

	respBody, status, err := h.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(status, respBody)
	}
	return json.RawMessage(respBody), nil
}

// rpcStatusCodes maps google.rpc.Code names onto platform error codes
var rpcStatusCodes = map[string]string{
	"NOT_FOUND":           models.PlatformCodeNotFound,
	"INVALID_ARGUMENT":    models.PlatformCodeInvalidArgument,
	"FAILED_PRECONDITION": models.PlatformCodeInvalidArgument,
	"PERMISSION_DENIED":   models.PlatformCodeRequestDenied,
	"UNAUTHENTICATED":     models.PlatformCodeRequestDenied,
	"RESOURCE_EXHAUSTED":  models.PlatformCodeQuotaExceeded,
	"UNAVAILABLE":         models.PlatformCodeNetwork,
	"DEADLINE_EXCEEDED":   models.PlatformCodeNetwork,
}

// apiError converts a google.rpc.Status error body into a platform error. The
// body's error.status wins over the HTTP status when it is a known code.
func apiError(status int, body []byte) error {
	message := gjson.GetBytes(body, "error.message").String()
	if message == "" {
		message = fmt.Sprintf("Places API returned status %d", status)
	}
	code, ok := rpcStatusCodes[gjson.GetBytes(body, "error.status").String()]
	if !ok {
		code = platform.CodeForStatus(status)
	}
	return &models.PlatformError{Code: code, Message: message}
}

func lowerAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
