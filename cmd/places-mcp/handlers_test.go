package main

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/models"
)

type stubFacade struct {
	lastRequest *models.PredictionsRequest
	predictions []models.Prediction
	details     *models.PlaceDetails
	err         error
}

func (s *stubFacade) Platform() string                  { return "places-new" }
func (s *stubFacade) IsInitialized() bool               { return true }
func (s *stubFacade) SessionState() models.SessionState { return models.SessionStateActive }

func (s *stubFacade) GetPredictions(ctx context.Context, req *models.PredictionsRequest) ([]models.Prediction, error) {
	s.lastRequest = req
	return s.predictions, s.err
}

func (s *stubFacade) GetPlaceDetails(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	return s.details, s.err
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) string {
	t.Helper()
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args

	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestGetPlacePredictionsTool(t *testing.T) {
	distance := 1500
	facade := &stubFacade{predictions: []models.Prediction{
		{PlaceID: "p1", Title: "Coffee", Description: "Main St", DistanceMeters: &distance},
	}}
	handler := handleGetPlacePredictions(facade, arbor.NewLogger())

	text := callTool(t, handler, map[string]any{
		"query":     "cof",
		"countries": []any{"us"},
		"latitude":  1.5,
		"longitude": 2.5,
	})

	assert.Contains(t, text, "**Coffee** - Main St (1500 m)")
	assert.Contains(t, text, "`p1`")
	require.NotNil(t, facade.lastRequest.Origin)
	assert.Equal(t, 1.5, facade.lastRequest.Origin.Latitude)
	assert.Equal(t, []string{"us"}, facade.lastRequest.Countries)
}

func TestGetPlacePredictionsTool_Errors(t *testing.T) {
	facade := &stubFacade{err: models.NewPlacesError(models.ErrCodeNotInitialized, "not initialized", nil)}
	handler := handleGetPlacePredictions(facade, arbor.NewLogger())

	assert.Contains(t, callTool(t, handler, map[string]any{}), "query parameter is required")
	assert.Contains(t, callTool(t, handler, map[string]any{"query": "x"}), "NOT_INITIALIZED")
}

func TestGetPlaceDetailsTool(t *testing.T) {
	rating := 4.5
	facade := &stubFacade{details: &models.PlaceDetails{
		PlaceID:          "p1",
		Name:             "Coffee",
		FormattedAddress: "1 Main St",
		Location:         &models.LatLng{Latitude: 1, Longitude: 2},
		Rating:           &rating,
		BusinessStatus:   models.BusinessStatusOperational,
	}}
	handler := handleGetPlaceDetails(facade, arbor.NewLogger())

	text := callTool(t, handler, map[string]any{"place_id": "p1"})
	assert.Contains(t, text, "## Coffee")
	assert.Contains(t, text, "**Address:** 1 Main St")
	assert.Contains(t, text, "**Rating:** 4.5")
	assert.Contains(t, text, "OPERATIONAL")
	assert.NotContains(t, text, "Website")
}

func TestGetSessionStatusTool(t *testing.T) {
	text := callTool(t, handleGetSessionStatus(&stubFacade{}), nil)
	assert.Contains(t, text, "Session: ACTIVE")
}
