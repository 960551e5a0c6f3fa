package placekey

import (
	"fmt"
	"strings"
)

// LocationPrecision describes how precisely the enrichment service
// located the address.
type LocationPrecision string

const (
	PrecisionRooftop           LocationPrecision = "ROOFTOP"
	PrecisionRangeInterpolated LocationPrecision = "RANGE_INTERPOLATED"
	PrecisionGeometricCenter   LocationPrecision = "GEOMETRIC_CENTER"
	PrecisionApproximate       LocationPrecision = "APPROXIMATE"
	PrecisionUnknown           LocationPrecision = "UNKNOWN"
)

// ParseLocationPrecision maps a service-reported precision string onto
// the enum; anything unrecognized is UNKNOWN.
func ParseLocationPrecision(s string) LocationPrecision {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(PrecisionRooftop):
		return PrecisionRooftop
	case string(PrecisionRangeInterpolated):
		return PrecisionRangeInterpolated
	case string(PrecisionGeometricCenter):
		return PrecisionGeometricCenter
	case string(PrecisionApproximate):
		return PrecisionApproximate
	}
	return PrecisionUnknown
}

// Coordinates is a WGS84 point
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AddressQuery is one address submitted for enrichment. Either the
// address fields or the coordinates must be populated.
type AddressQuery struct {
	StreetAddress  string   `json:"street_address,omitempty"`
	City           string   `json:"city,omitempty"`
	Region         string   `json:"region,omitempty"`
	PostalCode     string   `json:"postal_code,omitempty"`
	ISOCountryCode string   `json:"iso_country_code,omitempty"`
	LocationName   string   `json:"location_name,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	QueryID        string   `json:"query_id,omitempty"`
}

// Validate ensures the query carries enough information to resolve
func (q *AddressQuery) Validate() error {
	if q.Latitude != nil && q.Longitude != nil {
		return nil
	}
	if q.StreetAddress != "" || q.City != "" || q.Region != "" || q.PostalCode != "" {
		return nil
	}
	return &EnrichmentError{Message: "address query needs address fields or coordinates"}
}

// EnrichmentResult is the adapter's answer for one address. A failed
// lookup is still a result: Success=false with Error set, never a nil.
type EnrichmentResult struct {
	Success        bool
	Placekey       string
	MatchedAddress string
	Confidence     string
	Precision      LocationPrecision
	Coordinates    *Coordinates
	Error          string
	QueryID        string
}

// EnrichmentError is the adapter's error type. Retryable marks faults
// worth re-submitting (rate limits, transient network errors) as opposed
// to bad input or auth failures.
type EnrichmentError struct {
	StatusCode int
	Message    string
	Retryable  bool
	Err        error
}

func (e *EnrichmentError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("placekey api: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("placekey api: %s", e.Message)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }
