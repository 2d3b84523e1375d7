package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/models"
)

// placesFacade is the part of the places service the tools use
type placesFacade interface {
	Platform() string
	IsInitialized() bool
	SessionState() models.SessionState
	GetPredictions(ctx context.Context, req *models.PredictionsRequest) ([]models.Prediction, error)
	GetPlaceDetails(ctx context.Context, placeID string) (*models.PlaceDetails, error)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleGetPlacePredictions implements the get_place_predictions tool
func handleGetPlacePredictions(facade placesFacade, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return textResult("Error: query parameter is required"), nil
		}

		req := &models.PredictionsRequest{
			Query:     query,
			Countries: request.GetStringSlice("countries", nil),
			Types:     request.GetStringSlice("types", nil),
		}

		args := request.GetArguments()
		_, hasLat := args["latitude"]
		_, hasLng := args["longitude"]
		if hasLat && hasLng {
			req.Origin = &models.LatLng{
				Latitude:  request.GetFloat("latitude", 0),
				Longitude: request.GetFloat("longitude", 0),
			}
		}

		predictions, err := facade.GetPredictions(ctx, req)
		if err != nil {
			logger.Warn().Err(err).Str("code", models.ErrorCode(err)).Msg("Predictions tool failed")
			return textResult(fmt.Sprintf("Predictions error (%s): %v", models.ErrorCode(err), err)), nil
		}

		return textResult(formatPredictions(query, predictions)), nil
	}
}

// handleGetPlaceDetails implements the get_place_details tool
func handleGetPlaceDetails(facade placesFacade, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		placeID, err := request.RequireString("place_id")
		if err != nil || placeID == "" {
			return textResult("Error: place_id parameter is required"), nil
		}

		details, err := facade.GetPlaceDetails(ctx, placeID)
		if err != nil {
			logger.Warn().Err(err).Str("place_id", placeID).Msg("Details tool failed")
			return textResult(fmt.Sprintf("Details error (%s): %v", models.ErrorCode(err), err)), nil
		}

		return textResult(formatPlaceDetails(details)), nil
	}
}

func handleGetSessionStatus(facade placesFacade) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return textResult(fmt.Sprintf("Platform: %s\nInitialized: %t\nSession: %s\n",
			facade.Platform(), facade.IsInitialized(), facade.SessionState())), nil
	}
}
