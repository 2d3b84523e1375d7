package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetPlacePredictionsTool returns the get_place_predictions tool definition
func createGetPlacePredictionsTool() mcp.Tool {
	return mcp.NewTool("get_place_predictions",
		mcp.WithDescription("Autocomplete a partial place name or address with Google Places"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Partial text typed by the user, e.g. \"coffee near main st\""),
		),
		mcp.WithArray("countries",
			mcp.WithStringItems(),
			mcp.Description("Restrict results to up to 5 ISO 3166-1 alpha-2 country codes"),
		),
		mcp.WithArray("types",
			mcp.WithStringItems(),
			mcp.Description("Restrict results to place types, e.g. cafe, restaurant"),
		),
		mcp.WithNumber("latitude",
			mcp.Description("Origin latitude used to compute distances"),
		),
		mcp.WithNumber("longitude",
			mcp.Description("Origin longitude used to compute distances"),
		),
	)
}

// createGetPlaceDetailsTool returns the get_place_details tool definition
func createGetPlaceDetailsTool() mcp.Tool {
	return mcp.NewTool("get_place_details",
		mcp.WithDescription("Fetch full details for a place id returned by get_place_predictions"),
		mcp.WithString("place_id",
			mcp.Required(),
			mcp.Description("Google place id"),
		),
	)
}

func createGetSessionStatusTool() mcp.Tool {
	return mcp.NewTool("get_session_status",
		mcp.WithDescription("Report the platform, initialization state and autocomplete session state"),
	)
}
