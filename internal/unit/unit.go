package unit

import "strings"

// Family identifies which pattern family matched a unit designator.
// Families are evaluated in a fixed precedence order; see Extractor.
type Family int

const (
	FamilyNone Family = iota
	FamilyCompound
	FamilyFloorRoom
	FamilyRange
	FamilyMultiUnit
	FamilyStandard
	FamilySimple
)

// String returns the wire/CSV name of the family
func (f Family) String() string {
	switch f {
	case FamilyCompound:
		return "compound"
	case FamilyFloorRoom:
		return "floor_room"
	case FamilyRange:
		return "range"
	case FamilyMultiUnit:
		return "multi_unit"
	case FamilyStandard:
		return "standard"
	case FamilySimple:
		return "simple"
	default:
		return "none"
	}
}

// Confidence returns the fixed confidence assigned to a family.
// These values are never recomputed downstream.
func (f Family) Confidence() int {
	switch f {
	case FamilyStandard:
		return 95
	case FamilyCompound:
		return 90
	case FamilyFloorRoom, FamilyMultiUnit:
		return 85
	case FamilyRange:
		return 80
	case FamilySimple:
		return 70
	default:
		return 0
	}
}

// UnitMatch is the parsed unit designator of a single address. It is a
// value object: created by Extract and never mutated afterwards.
type UnitMatch struct {
	Type  string `json:"type"`  // normalized designator, e.g. "APT"
	Value string `json:"value"` // extracted unit identifier
	Full  string `json:"full"`  // rendered "TYPE VALUE"

	// Family-specific detail
	Floor      string   `json:"floor,omitempty"`
	Room       string   `json:"room,omitempty"`
	Building   string   `json:"building,omitempty"`
	Units      []string `json:"units,omitempty"` // multi-unit members
	RangeStart string   `json:"range_start,omitempty"`
	RangeEnd   string   `json:"range_end,omitempty"`
}

// Extraction is the result of applying the pattern library to one address
type Extraction struct {
	HasApartment bool
	Family       Family
	Unit         *UnitMatch // nil when no unit was found
	MainAddress  string     // input with the matched span removed
	Confidence   int
}

// typeShortForms maps synonym designators to their canonical short form
var typeShortForms = map[string]string{
	"APARTMENT": "APT",
	"UNIT":      "UNIT",
	"SUITE":     "STE",
	"BUILDING":  "BLDG",
	"ROOM":      "RM",
	"FLOOR":     "FL",
	"PENTHOUSE": "PH",
}

// typeFullNames is the inverse rendering table used by the full format
var typeFullNames = map[string]string{
	"APT":  "APARTMENT",
	"STE":  "SUITE",
	"UNIT": "UNIT",
	"BLDG": "BUILDING",
	"RM":   "ROOM",
	"FL":   "FLOOR",
}

// StandardizeType maps a matched designator to its canonical short form.
// Designators without a mapping are kept as typed.
func StandardizeType(aptType string) string {
	t := strings.ToUpper(strings.TrimSpace(aptType))
	if short, ok := typeShortForms[t]; ok {
		return short
	}
	return t
}

// FullTypeName renders a canonical short designator as its full name
func FullTypeName(aptType string) string {
	if full, ok := typeFullNames[aptType]; ok {
		return full
	}
	return aptType
}
