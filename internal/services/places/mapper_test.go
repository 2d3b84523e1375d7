package places

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/placesbridge/internal/common"
	"github.com/ternarybob/placesbridge/internal/models"
)

func TestNewMapper_UnknownPlatform(t *testing.T) {
	_, err := NewMapper("android")
	assert.Error(t, err)
}

func TestPlacesNewMapper_Predictions(t *testing.T) {
	mapper, err := NewMapper(common.PlatformPlacesNew)
	require.NoError(t, err)

	raw := []byte(`[
		{"placeId":"p1","distanceMeters":1500,"structuredFormat":{"mainText":{"text":"Coffee"},"secondaryText":{"text":"Main St"}}},
		{"placeId":"p2","text":{"text":"Tea House, Side St"},"types":["cafe","food"]}
	]`)

	predictions, err := mapper.MapPredictions(raw)
	require.NoError(t, err)
	require.Len(t, predictions, 2)

	assert.Equal(t, "p1", predictions[0].PlaceID)
	assert.Equal(t, "Coffee", predictions[0].Title)
	assert.Equal(t, "Main St", predictions[0].Description)
	require.NotNil(t, predictions[0].DistanceMeters)
	assert.Equal(t, 1500, *predictions[0].DistanceMeters)

	assert.Equal(t, "Tea House, Side St", predictions[1].Title)
	assert.Empty(t, predictions[1].Description)
	assert.Nil(t, predictions[1].DistanceMeters, "distance only present when the platform returned it")
	assert.Equal(t, []string{"cafe", "food"}, predictions[1].Types)
}

func TestPlacesNewMapper_PredictionsMalformed(t *testing.T) {
	mapper, _ := NewMapper(common.PlatformPlacesNew)

	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", `[{"placeId":`},
		{"object instead of list", `{"placeId":"p1"}`},
		{"missing place id", `[{"text":{"text":"x"}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mapper.MapPredictions([]byte(tt.raw))
			require.Error(t, err)
			assert.Equal(t, models.ErrCodeMappingFailed, models.ErrorCode(err))
		})
	}
}

func TestPlacesNewMapper_EmptyPredictions(t *testing.T) {
	mapper, _ := NewMapper(common.PlatformPlacesNew)

	predictions, err := mapper.MapPredictions([]byte(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, predictions)
	assert.Empty(t, predictions)
}

func TestPlacesNewMapper_PlaceDetails(t *testing.T) {
	mapper, _ := NewMapper(common.PlatformPlacesNew)

	raw := []byte(`{
		"id": "ChIJ123",
		"displayName": {"text": "Blue Bottle"},
		"formattedAddress": "1 Main St, Springfield NSW 2000, Australia",
		"addressComponents": [
			{"longText": "1", "shortText": "1", "types": ["street_number"]},
			{"longText": "Main Street", "shortText": "Main St", "types": ["route"]},
			{"longText": "Springfield", "shortText": "Springfield", "types": ["locality", "political"]},
			{"longText": "Cumberland", "shortText": "Cumberland", "types": ["administrative_area_level_2", "political"]},
			{"longText": "New South Wales", "shortText": "NSW", "types": ["administrative_area_level_1", "political"]},
			{"longText": "2000", "shortText": "2000", "types": ["postal_code"]},
			{"longText": "Australia", "shortText": "AU", "types": ["country", "political"]}
		],
		"location": {"latitude": -33.86, "longitude": 151.2},
		"viewport": {"low": {"latitude": -33.87, "longitude": 151.19}, "high": {"latitude": -33.85, "longitude": 151.21}},
		"nationalPhoneNumber": "(02) 1234 5678",
		"internationalPhoneNumber": "+61 2 1234 5678",
		"websiteUri": "https://example.com",
		"googleMapsUri": "https://maps.google.com/?cid=1",
		"rating": 4.5,
		"userRatingCount": 321,
		"businessStatus": "OPERATIONAL",
		"types": ["cafe"],
		"utcOffsetMinutes": 600,
		"plusCode": {"globalCode": "4RRH46J2+22", "compoundCode": "46J2+22 Springfield"}
	}`)

	details, err := mapper.MapPlaceDetails(raw)
	require.NoError(t, err)

	assert.Equal(t, "ChIJ123", details.PlaceID)
	assert.Equal(t, "Blue Bottle", details.Name)
	assert.Len(t, details.AddressComponents, 7)
	assert.Equal(t, "1", details.StreetNumber)
	assert.Equal(t, "Main Street", details.Street)
	assert.Equal(t, "Springfield", details.City)
	assert.Equal(t, "Cumberland", details.County)
	assert.Equal(t, "New South Wales", details.State)
	assert.Equal(t, "2000", details.PostalCode)
	assert.Equal(t, "Australia", details.Country)
	assert.Equal(t, "AU", details.CountryCode)

	require.NotNil(t, details.Location)
	assert.InDelta(t, -33.86, details.Location.Latitude, 1e-9)
	assert.InDelta(t, 151.2, details.Location.Longitude, 1e-9)
	require.NotNil(t, details.Viewport)
	assert.InDelta(t, -33.87, details.Viewport.Low.Latitude, 1e-9)
	assert.InDelta(t, 151.21, details.Viewport.High.Longitude, 1e-9)

	assert.Equal(t, "+61 2 1234 5678", details.InternationalPhoneNumber)
	assert.Equal(t, "https://example.com", details.Website)
	assert.Equal(t, "https://maps.google.com/?cid=1", details.MapsURL)
	require.NotNil(t, details.Rating)
	assert.InDelta(t, 4.5, *details.Rating, 1e-9)
	require.NotNil(t, details.UserRatingCount)
	assert.Equal(t, 321, *details.UserRatingCount)
	assert.Equal(t, models.BusinessStatusOperational, details.BusinessStatus)
	require.NotNil(t, details.UTCOffsetMinutes)
	assert.Equal(t, 600, *details.UTCOffsetMinutes)
	require.NotNil(t, details.PlusCode)
	assert.Equal(t, "4RRH46J2+22", details.PlusCode.GlobalCode)
}

func TestPlacesNewMapper_PlaceDetailsWithoutLocation(t *testing.T) {
	mapper, _ := NewMapper(common.PlatformPlacesNew)

	details, err := mapper.MapPlaceDetails([]byte(`{"name":"places/abc","displayName":{"text":"Nowhere"}}`))
	require.NoError(t, err)

	assert.Equal(t, "abc", details.PlaceID, "id falls back to the resource name")
	assert.Nil(t, details.Location)
	assert.Nil(t, details.Viewport)
	assert.Nil(t, details.Rating)
	assert.Empty(t, details.BusinessStatus)
}

func TestPlacesNewMapper_PlaceDetailsMalformed(t *testing.T) {
	mapper, _ := NewMapper(common.PlatformPlacesNew)

	for _, raw := range []string{`not json`, `[]`, `{"displayName":{"text":"x"}}`} {
		_, err := mapper.MapPlaceDetails([]byte(raw))
		require.Error(t, err, raw)
		assert.Equal(t, models.ErrCodeMappingFailed, models.ErrorCode(err), raw)
	}
}

func TestLegacyMapper_Predictions(t *testing.T) {
	mapper, err := NewMapper(common.PlatformLegacy)
	require.NoError(t, err)

	raw := []byte(`[
		{"place_id":"p1","description":"Coffee, Main St","distance_meters":1500,
		 "structured_formatting":{"main_text":"Coffee","secondary_text":"Main St"},"types":["cafe"]},
		{"place_id":"p2","description":"Somewhere"}
	]`)

	predictions, err := mapper.MapPredictions(raw)
	require.NoError(t, err)
	require.Len(t, predictions, 2)

	assert.Equal(t, "Coffee", predictions[0].Title)
	assert.Equal(t, "Main St", predictions[0].Description)
	require.NotNil(t, predictions[0].DistanceMeters)
	assert.Equal(t, 1500, *predictions[0].DistanceMeters)

	assert.Equal(t, "Somewhere", predictions[1].Title)
	assert.Nil(t, predictions[1].DistanceMeters)
}

func TestLegacyMapper_PlaceDetails(t *testing.T) {
	mapper, _ := NewMapper(common.PlatformLegacy)

	raw := []byte(`{
		"place_id": "ChIJ9",
		"name": "Old Mill",
		"formatted_address": "5 River Rd, Millbrook",
		"address_components": [
			{"long_name": "5", "short_name": "5", "types": ["street_number"]},
			{"long_name": "River Road", "short_name": "River Rd", "types": ["route"]},
			{"long_name": "United States", "short_name": "US", "types": ["country", "political"]}
		],
		"geometry": {
			"location": {"lat": 40.1, "lng": -74.2},
			"viewport": {"southwest": {"lat": 40.0, "lng": -74.3}, "northeast": {"lat": 40.2, "lng": -74.1}}
		},
		"formatted_phone_number": "(555) 010-0000",
		"international_phone_number": "+1 555-010-0000",
		"website": "https://mill.example",
		"url": "https://maps.google.com/?cid=9",
		"rating": 3.9,
		"user_ratings_total": 12,
		"business_status": "CLOSED_TEMPORARILY",
		"utc_offset": -240,
		"plus_code": {"global_code": "87G7X6XX+XX", "compound_code": "X6XX+XX Millbrook"}
	}`)

	details, err := mapper.MapPlaceDetails(raw)
	require.NoError(t, err)

	assert.Equal(t, "ChIJ9", details.PlaceID)
	assert.Equal(t, "Old Mill", details.Name)
	assert.Equal(t, "River Road", details.Street)
	assert.Equal(t, "US", details.CountryCode)
	require.NotNil(t, details.Location)
	assert.InDelta(t, 40.1, details.Location.Latitude, 1e-9)
	require.NotNil(t, details.Viewport)
	assert.InDelta(t, 40.0, details.Viewport.Low.Latitude, 1e-9)
	assert.InDelta(t, -74.1, details.Viewport.High.Longitude, 1e-9)
	assert.Equal(t, "(555) 010-0000", details.NationalPhoneNumber)
	assert.Equal(t, "https://maps.google.com/?cid=9", details.MapsURL)
	require.NotNil(t, details.UserRatingCount)
	assert.Equal(t, 12, *details.UserRatingCount)
	assert.Equal(t, models.BusinessStatusClosedTemporarily, details.BusinessStatus)
	require.NotNil(t, details.UTCOffsetMinutes)
	assert.Equal(t, -240, *details.UTCOffsetMinutes)
	require.NotNil(t, details.PlusCode)
	assert.Equal(t, "X6XX+XX Millbrook", details.PlusCode.CompoundCode)
}

func TestLegacyMapper_SynthesizedFields(t *testing.T) {
	mapper, _ := NewMapper(common.PlatformLegacy)

	raw := []byte(`{
		"place_id": "p1",
		"name": "Gone",
		"permanently_closed": true,
		"geometry": {"location": {"lat": 1.5, "lng": 2.5}}
	}`)

	details, err := mapper.MapPlaceDetails(raw)
	require.NoError(t, err)

	assert.Equal(t, models.BusinessStatusClosedPermanently, details.BusinessStatus)
	require.NotNil(t, details.Viewport)
	assert.Equal(t, *details.Location, details.Viewport.Low)
	assert.Equal(t, *details.Location, details.Viewport.High)
}

func TestLegacyMapper_PlaceDetailsWithoutGeometry(t *testing.T) {
	mapper, _ := NewMapper(common.PlatformLegacy)

	details, err := mapper.MapPlaceDetails([]byte(`{"place_id":"p1","name":"Nowhere"}`))
	require.NoError(t, err)
	assert.Nil(t, details.Location)
	assert.Nil(t, details.Viewport)
	assert.Empty(t, details.BusinessStatus)
}
