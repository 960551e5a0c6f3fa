package batch

import (
	"strconv"
	"strings"

	"github.com/apartment-accesscode/internal/normalize"
	"github.com/apartment-accesscode/internal/reconcile"
)

// Record is one input row. Fields holds the original CSV cells so the
// output can echo them back unchanged.
type Record struct {
	Address    string
	City       string
	Region     string
	PostalCode string
	// Coordinates is a combined "lat, lng" column; Latitude and Longitude
	// are the split variant. Either form gives the enrichment query a
	// coordinate hint.
	Coordinates string
	Latitude    string
	Longitude   string
	// Prior carries the dataset's pre-existing apartment verdict when the
	// input file has one; nil otherwise.
	Prior  *reconcile.Verdict
	Fields []string
}

// QueryCoordinates returns the record's coordinates when it carries a
// valid in-range pair. The combined column wins over split columns.
func (r Record) QueryCoordinates() (lat, lng float64, ok bool) {
	if lat, lng, ok = normalize.Coordinates(r.Coordinates); ok {
		return lat, lng, true
	}
	if r.Latitude == "" || r.Longitude == "" {
		return 0, 0, false
	}
	lat, err1 := normalize.ParseFloat(r.Latitude)
	lng, err2 := normalize.ParseFloat(r.Longitude)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}
	return lat, lng, true
}

// Result is the fully-populated outcome for one record. Every field is
// always set, with typed zero defaults when a stage did not run.
type Result struct {
	Index  int
	Record Record

	// Unit extraction
	HasApartment  bool
	ApartmentType string
	UnitValue     string
	MainAddress   string

	// Rule classifier
	Rule reconcile.Verdict

	// Enrichment
	Placekey              string
	PlacekeyConfidence    string
	PlacekeySuccess       bool
	ApartmentTypeEnhanced string
	MainAddressEnhanced   string

	// Reconciled verdict
	AccessCode string
	Final      reconcile.Outcome
}

// parsePrior builds a prior verdict from the input file's own columns.
// Any unparseable confidence degrades to zero rather than failing the
// record.
func parsePrior(isApt, confidence, keywords string) *reconcile.Verdict {
	isApt = strings.TrimSpace(isApt)
	if isApt == "" {
		return nil
	}

	v := &reconcile.Verdict{Keywords: strings.TrimSpace(keywords)}
	switch strings.ToLower(isApt) {
	case "true", "yes", "1", "y":
		v.IsApartment = true
	}

	if confidence = strings.TrimSpace(confidence); confidence != "" {
		if f, err := strconv.ParseFloat(confidence, 64); err == nil {
			v.Confidence = int(f)
		}
	}
	return v
}
