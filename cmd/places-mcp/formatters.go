package main

import (
	"fmt"
	"strings"

	"github.com/ternarybob/placesbridge/internal/models"
)

// formatPredictions formats predictions as markdown
func formatPredictions(query string, predictions []models.Prediction) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Predictions for \"%s\" (%d results)\n\n", query, len(predictions)))

	if len(predictions) == 0 {
		sb.WriteString("No predictions found.\n")
		return sb.String()
	}

	for i, p := range predictions {
		sb.WriteString(fmt.Sprintf("%d. **%s**", i+1, p.Title))
		if p.Description != "" {
			sb.WriteString(" - " + p.Description)
		}
		if p.DistanceMeters != nil {
			sb.WriteString(fmt.Sprintf(" (%d m)", *p.DistanceMeters))
		}
		sb.WriteString(fmt.Sprintf("\n   place_id: `%s`\n", p.PlaceID))
	}

	return sb.String()
}

// formatPlaceDetails formats a place as markdown, skipping absent fields
func formatPlaceDetails(d *models.PlaceDetails) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", d.Name))

	field := func(label, value string) {
		if value != "" {
			sb.WriteString(fmt.Sprintf("**%s:** %s\n", label, value))
		}
	}

	field("Place ID", d.PlaceID)
	field("Address", d.FormattedAddress)
	field("City", d.City)
	field("State", d.State)
	field("Postal code", d.PostalCode)
	field("Country", d.Country)
	if d.Location != nil {
		field("Location", fmt.Sprintf("%.6f, %.6f", d.Location.Latitude, d.Location.Longitude))
	}
	field("Phone", firstNonEmpty(d.InternationalPhoneNumber, d.NationalPhoneNumber))
	field("Website", d.Website)
	field("Maps", d.MapsURL)
	if d.Rating != nil {
		rating := fmt.Sprintf("%.1f", *d.Rating)
		if d.UserRatingCount != nil {
			rating += fmt.Sprintf(" (%d ratings)", *d.UserRatingCount)
		}
		field("Rating", rating)
	}
	field("Status", string(d.BusinessStatus))
	if len(d.Types) > 0 {
		field("Types", strings.Join(d.Types, ", "))
	}

	return sb.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
