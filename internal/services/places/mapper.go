package places

import (
	"fmt"
	"strings"

	"github.com/ternarybob/placesbridge/internal/common"
	"github.com/ternarybob/placesbridge/internal/models"
	"github.com/tidwall/gjson"
)

// ResponseMapper converts raw platform dictionaries into the common data model
type ResponseMapper interface {
	MapPredictions(raw []byte) ([]models.Prediction, error)
	MapPlaceDetails(raw []byte) (*models.PlaceDetails, error)
}

// NewMapper returns the mapper for a platform identifier
func NewMapper(platform string) (ResponseMapper, error) {
	switch platform {
	case common.PlatformPlacesNew:
		return placesNewMapper{}, nil
	case common.PlatformLegacy:
		return legacyMapper{}, nil
	default:
		return nil, fmt.Errorf("unsupported places platform: %s", platform)
	}
}

// placesNewMapper reads Places API (New) dictionaries
type placesNewMapper struct{}

func (placesNewMapper) MapPredictions(raw []byte) ([]models.Prediction, error) {
	items, err := parseArray(raw)
	if err != nil {
		return nil, err
	}

	predictions := make([]models.Prediction, 0, len(items))
	for i, item := range items {
		placeID := item.Get("placeId").String()
		if placeID == "" {
			return nil, mappingError(fmt.Sprintf("prediction %d has no placeId", i))
		}

		title := item.Get("structuredFormat.mainText.text").String()
		if title == "" {
			title = item.Get("text.text").String()
		}

		predictions = append(predictions, models.Prediction{
			PlaceID:        placeID,
			Title:          title,
			Description:    item.Get("structuredFormat.secondaryText.text").String(),
			Types:          stringSlice(item.Get("types")),
			DistanceMeters: optionalInt(item.Get("distanceMeters")),
		})
	}
	return predictions, nil
}

func (placesNewMapper) MapPlaceDetails(raw []byte) (*models.PlaceDetails, error) {
	place, err := parseObject(raw)
	if err != nil {
		return nil, err
	}

	placeID := place.Get("id").String()
	if placeID == "" {
		placeID = strings.TrimPrefix(place.Get("name").String(), "places/")
	}
	if placeID == "" {
		return nil, mappingError("place has no id")
	}

	details := &models.PlaceDetails{
		PlaceID:                  placeID,
		Name:                     place.Get("displayName.text").String(),
		FormattedAddress:         place.Get("formattedAddress").String(),
		NationalPhoneNumber:      place.Get("nationalPhoneNumber").String(),
		InternationalPhoneNumber: place.Get("internationalPhoneNumber").String(),
		Website:                  place.Get("websiteUri").String(),
		MapsURL:                  place.Get("googleMapsUri").String(),
		Rating:                   optionalFloat(place.Get("rating")),
		UserRatingCount:          optionalInt(place.Get("userRatingCount")),
		BusinessStatus:           businessStatus(place.Get("businessStatus").String()),
		Types:                    stringSlice(place.Get("types")),
		UTCOffsetMinutes:         optionalInt(place.Get("utcOffsetMinutes")),
		Location:                 latLng(place.Get("location"), "latitude", "longitude"),
	}

	place.Get("addressComponents").ForEach(func(_, c gjson.Result) bool {
		details.AddressComponents = append(details.AddressComponents, models.AddressComponent{
			LongText:  c.Get("longText").String(),
			ShortText: c.Get("shortText").String(),
			Types:     stringSlice(c.Get("types")),
		})
		return true
	})

	if pc := place.Get("plusCode"); pc.Exists() {
		details.PlusCode = &models.PlusCode{
			GlobalCode:   pc.Get("globalCode").String(),
			CompoundCode: pc.Get("compoundCode").String(),
		}
	}

	if vp := place.Get("viewport"); vp.Exists() {
		low := latLng(vp.Get("low"), "latitude", "longitude")
		high := latLng(vp.Get("high"), "latitude", "longitude")
		if low != nil && high != nil {
			details.Viewport = &models.Viewport{Low: *low, High: *high}
		}
	}

	fillAddressFields(details)
	return details, nil
}

// legacyMapper reads legacy web service dictionaries. That shape has no guaranteed
// business status or viewport, so both are approximated when absent.
type legacyMapper struct{}

func (legacyMapper) MapPredictions(raw []byte) ([]models.Prediction, error) {
	items, err := parseArray(raw)
	if err != nil {
		return nil, err
	}

	predictions := make([]models.Prediction, 0, len(items))
	for i, item := range items {
		placeID := item.Get("place_id").String()
		if placeID == "" {
			return nil, mappingError(fmt.Sprintf("prediction %d has no place_id", i))
		}

		title := item.Get("structured_formatting.main_text").String()
		if title == "" {
			title = item.Get("description").String()
		}

		predictions = append(predictions, models.Prediction{
			PlaceID:        placeID,
			Title:          title,
			Description:    item.Get("structured_formatting.secondary_text").String(),
			Types:          stringSlice(item.Get("types")),
			DistanceMeters: optionalInt(item.Get("distance_meters")),
		})
	}
	return predictions, nil
}

func (legacyMapper) MapPlaceDetails(raw []byte) (*models.PlaceDetails, error) {
	place, err := parseObject(raw)
	if err != nil {
		return nil, err
	}

	placeID := place.Get("place_id").String()
	if placeID == "" {
		return nil, mappingError("place has no place_id")
	}

	details := &models.PlaceDetails{
		PlaceID:                  placeID,
		Name:                     place.Get("name").String(),
		FormattedAddress:         place.Get("formatted_address").String(),
		NationalPhoneNumber:      place.Get("formatted_phone_number").String(),
		InternationalPhoneNumber: place.Get("international_phone_number").String(),
		Website:                  place.Get("website").String(),
		MapsURL:                  place.Get("url").String(),
		Rating:                   optionalFloat(place.Get("rating")),
		UserRatingCount:          optionalInt(place.Get("user_ratings_total")),
		BusinessStatus:           businessStatus(place.Get("business_status").String()),
		Types:                    stringSlice(place.Get("types")),
		UTCOffsetMinutes:         optionalInt(place.Get("utc_offset")),
		Location:                 latLng(place.Get("geometry.location"), "lat", "lng"),
	}

	if details.BusinessStatus == "" && place.Get("permanently_closed").Bool() {
		details.BusinessStatus = models.BusinessStatusClosedPermanently
	}
	if details.UTCOffsetMinutes == nil {
		details.UTCOffsetMinutes = optionalInt(place.Get("utc_offset_minutes"))
	}

	place.Get("address_components").ForEach(func(_, c gjson.Result) bool {
		details.AddressComponents = append(details.AddressComponents, models.AddressComponent{
			LongText:  c.Get("long_name").String(),
			ShortText: c.Get("short_name").String(),
			Types:     stringSlice(c.Get("types")),
		})
		return true
	})

	if pc := place.Get("plus_code"); pc.Exists() {
		details.PlusCode = &models.PlusCode{
			GlobalCode:   pc.Get("global_code").String(),
			CompoundCode: pc.Get("compound_code").String(),
		}
	}

	sw := latLng(place.Get("geometry.viewport.southwest"), "lat", "lng")
	ne := latLng(place.Get("geometry.viewport.northeast"), "lat", "lng")
	switch {
	case sw != nil && ne != nil:
		details.Viewport = &models.Viewport{Low: *sw, High: *ne}
	case details.Location != nil:
		// zero-area viewport at the place itself
		details.Viewport = &models.Viewport{Low: *details.Location, High: *details.Location}
	}

	fillAddressFields(details)
	return details, nil
}

// fillAddressFields copies well-known address components into the convenience fields
func fillAddressFields(d *models.PlaceDetails) {
	for _, c := range d.AddressComponents {
		switch {
		case c.HasType(models.AddressTypeStreetNumber):
			d.StreetNumber = c.LongText
		case c.HasType(models.AddressTypeRoute):
			d.Street = c.LongText
		case c.HasType(models.AddressTypeLocality):
			d.City = c.LongText
		case c.HasType(models.AddressTypeAdminArea2):
			d.County = c.LongText
		case c.HasType(models.AddressTypeAdminArea1):
			d.State = c.LongText
		case c.HasType(models.AddressTypePostalCode):
			d.PostalCode = c.LongText
		case c.HasType(models.AddressTypeCountry):
			d.Country = c.LongText
			d.CountryCode = c.ShortText
		}
	}
}

func parseArray(raw []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return nil, mappingError("predictions payload is not valid JSON")
	}
	result := gjson.ParseBytes(raw)
	if !result.IsArray() {
		return nil, mappingError("predictions payload is not a list")
	}
	return result.Array(), nil
}

func parseObject(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, mappingError("place payload is not valid JSON")
	}
	result := gjson.ParseBytes(raw)
	if !result.IsObject() {
		return gjson.Result{}, mappingError("place payload is not an object")
	}
	return result, nil
}

func mappingError(message string) error {
	return models.NewPlacesError(models.ErrCodeMappingFailed, message, nil)
}

func stringSlice(r gjson.Result) []string {
	if !r.IsArray() {
		return nil
	}
	values := r.Array()
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.String())
	}
	return out
}

func optionalInt(r gjson.Result) *int {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	v := int(r.Int())
	return &v
}

func optionalFloat(r gjson.Result) *float64 {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	v := r.Float()
	return &v
}

func latLng(r gjson.Result, latKey, lngKey string) *models.LatLng {
	lat := r.Get(latKey)
	lng := r.Get(lngKey)
	if !lat.Exists() || !lng.Exists() {
		return nil
	}
	return &models.LatLng{Latitude: lat.Float(), Longitude: lng.Float()}
}

// businessStatus normalizes platform status strings to the common enum
func businessStatus(s string) models.BusinessStatus {
	switch strings.ToUpper(s) {
	case "OPERATIONAL":
		return models.BusinessStatusOperational
	case "CLOSED_TEMPORARILY":
		return models.BusinessStatusClosedTemporarily
	case "CLOSED_PERMANENTLY":
		return models.BusinessStatusClosedPermanently
	default:
		return ""
	}
}
