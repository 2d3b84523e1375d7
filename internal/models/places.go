package models

// LatLng represents a geographic coordinate in decimal degrees
type LatLng struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Viewport is a bounding box given by its south-west (Low) and north-east (High) corners
type Viewport struct {
	Low  LatLng `json:"low"`
	High LatLng `json:"high"`
}

// PlusCode is the Open Location Code pair of a place
type PlusCode struct {
	GlobalCode   string `json:"global_code,omitempty"`
	CompoundCode string `json:"compound_code,omitempty"`
}

// BusinessStatus is the operational state of a place
type BusinessStatus string

const (
	BusinessStatusOperational       BusinessStatus = "OPERATIONAL"
	BusinessStatusClosedTemporarily BusinessStatus = "CLOSED_TEMPORARILY"
	BusinessStatusClosedPermanently BusinessStatus = "CLOSED_PERMANENTLY"
)

// Address component type tags used to fill the PlaceDetails convenience fields
const (
	AddressTypeStreetNumber = "street_number"
	AddressTypeRoute        = "route"
	AddressTypeLocality     = "locality"
	AddressTypeAdminArea1   = "administrative_area_level_1"
	AddressTypeAdminArea2   = "administrative_area_level_2"
	AddressTypePostalCode   = "postal_code"
	AddressTypeCountry      = "country"
)

// PredictionsRequest is one autocomplete query
type PredictionsRequest struct {
	Query     string   `json:"query"`
	Countries []string `json:"countries,omitempty" validate:"max=5,dive,len=2"`
	Types     []string `json:"types,omitempty" validate:"max=5"`
	Origin    *LatLng  `json:"origin,omitempty"`
	Language  string   `json:"language,omitempty"`
	Region    string   `json:"region,omitempty"`
}

// Prediction is a single autocomplete candidate
type Prediction struct {
	PlaceID        string   `json:"place_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Types          []string `json:"types,omitempty"`
	DistanceMeters *int     `json:"distance_meters,omitempty"` // Only when an origin was supplied
}

// AddressComponent is one structured piece of a formatted address
type AddressComponent struct {
	LongText  string   `json:"long_text"`
	ShortText string   `json:"short_text,omitempty"`
	Types     []string `json:"types"`
}

// HasType reports whether the component carries the given type tag
func (c AddressComponent) HasType(t string) bool {
	for _, ct := range c.Types {
		if ct == t {
			return true
		}
	}
	return false
}

// PlaceDetails is the full record for one place
type PlaceDetails struct {
	PlaceID           string             `json:"place_id"`
	Name              string             `json:"name"`
	FormattedAddress  string             `json:"formatted_address,omitempty"`
	AddressComponents []AddressComponent `json:"address_components,omitempty"`

	StreetNumber string `json:"street_number,omitempty"`
	Street       string `json:"street,omitempty"`
	City         string `json:"city,omitempty"`
	County       string `json:"county,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`

	Location *LatLng `json:"location"`

	NationalPhoneNumber      string `json:"national_phone_number,omitempty"`
	InternationalPhoneNumber string `json:"international_phone_number,omitempty"`
	Website                  string `json:"website,omitempty"`
	MapsURL                  string `json:"maps_url,omitempty"`

	Rating          *float64       `json:"rating,omitempty"`
	UserRatingCount *int           `json:"user_rating_count,omitempty"`
	BusinessStatus  BusinessStatus `json:"business_status,omitempty"`
	Types           []string       `json:"types,omitempty"`

	UTCOffsetMinutes *int      `json:"utc_offset_minutes,omitempty"`
	PlusCode         *PlusCode `json:"plus_code,omitempty"`
	Viewport         *Viewport `json:"viewport,omitempty"`
}
