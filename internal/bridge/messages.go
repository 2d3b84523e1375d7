package bridge

import "github.com/ternarybob/placesbridge/internal/models"

// InitializeArgs are the arguments of the initialize method
type InitializeArgs struct {
	APIKey string `json:"apiKey"`
}

// PredictionsArgs are the arguments of the findAutocompletePredictions method
type PredictionsArgs struct {
	Query        string         `json:"query"`
	Countries    []string       `json:"countries,omitempty"`
	Types        []string       `json:"types,omitempty"`
	Origin       *models.LatLng `json:"origin,omitempty"`
	SessionToken string         `json:"sessionToken,omitempty"`
	Language     string         `json:"language,omitempty"`
	Region       string         `json:"region,omitempty"`
}

// FetchPlaceArgs are the arguments of the fetchPlace method
type FetchPlaceArgs struct {
	PlaceID      string `json:"placeId"`
	SessionToken string `json:"sessionToken,omitempty"`
	Language     string `json:"language,omitempty"`
	Region       string `json:"region,omitempty"`
}
