package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// ParseFloat converts string to float64, trimming surrounding whitespace
func ParseFloat(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	return strconv.ParseFloat(trimmed, 64)
}

// rule pairs a compiled pattern with its replacement
type rule struct {
	re          *regexp.Regexp
	replacement string
}

// AbbrevRules handles address abbreviation expansion
type AbbrevRules struct {
	rules []rule
}

// NewAbbrevRules creates US street-suffix and directional expansion rules.
// Patterns are compiled once; the rule set is read-only after construction.
func NewAbbrevRules() *AbbrevRules {
	raw := []struct{ pattern, replacement string }{
		// Street suffixes
		{`\bST\b`, "STREET"},
		{`\bAVE\b`, "AVENUE"},
		{`\bBLVD\b`, "BOULEVARD"},
		{`\bRD\b`, "ROAD"},
		{`\bDR\b`, "DRIVE"},
		{`\bCT\b`, "COURT"},
		{`\bPL\b`, "PLACE"},
		{`\bLN\b`, "LANE"},
		{`\bCIR\b`, "CIRCLE"},
		// Directionals
		{`\bN\b`, "NORTH"},
		{`\bS\b`, "SOUTH"},
		{`\bE\b`, "EAST"},
		{`\bW\b`, "WEST"},
		{`\bNE\b`, "NORTHEAST"},
		{`\bNW\b`, "NORTHWEST"},
		{`\bSE\b`, "SOUTHEAST"},
		{`\bSW\b`, "SOUTHWEST"},
	}

	rules := make([]rule, 0, len(raw))
	for _, r := range raw {
		rules = append(rules, rule{re: regexp.MustCompile(r.pattern), replacement: r.replacement})
	}
	return &AbbrevRules{rules: rules}
}

// Expand applies abbreviation rules to text
func (ar *AbbrevRules) Expand(text string) string {
	result := text
	for _, r := range ar.rules {
		result = r.re.ReplaceAllString(result, r.replacement)
	}
	return result
}

var (
	// US 5-digit zip, optionally zip+4
	reZipcode = regexp.MustCompile(`\b(\d{5})(?:-\d{4})?\b`)

	// Decimal lat,lng pair
	reCoordinates = regexp.MustCompile(`(-?\d+\.\d+)\s*,\s*(-?\d+\.\d+)`)

	reTrailingJunk = regexp.MustCompile(`[,\s]+$`)
	reLeadingJunk  = regexp.MustCompile(`^[,\s]+`)
	reSpaces       = regexp.MustCompile(`\s+`)
)

// State name to USPS two-letter code for the most common states
var stateCodes = map[string]string{
	"CALIFORNIA":     "CA",
	"NEW YORK":       "NY",
	"TEXAS":          "TX",
	"FLORIDA":        "FL",
	"ILLINOIS":       "IL",
	"PENNSYLVANIA":   "PA",
	"OHIO":           "OH",
	"GEORGIA":        "GA",
	"NORTH CAROLINA": "NC",
	"MICHIGAN":       "MI",
}

// Clean uppercases, trims and collapses whitespace, and strips stray
// leading/trailing commas from a raw address field
func Clean(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = reSpaces.ReplaceAllString(s, " ")
	s = reTrailingJunk.ReplaceAllString(s, "")
	s = reLeadingJunk.ReplaceAllString(s, "")
	return s
}

var defaultRules = NewAbbrevRules()

// StreetAddress normalizes a street line: cleanup plus suffix and
// directional expansion. Normalizing an already-normalized address
// returns the same string.
func StreetAddress(raw string) string {
	if raw == "" {
		return ""
	}
	s := Clean(raw)
	s = defaultRules.Expand(s)
	return strings.TrimSpace(s)
}

// State normalizes a state name to its two-letter code where known
func State(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.ToUpper(strings.TrimSpace(raw))
	if code, ok := stateCodes[s]; ok {
		return code
	}
	return s
}

// Zipcode extracts the 5-digit zip from a postal code field
func Zipcode(raw string) string {
	if raw == "" {
		return ""
	}
	if m := reZipcode.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return strings.TrimSpace(raw)
}

// Coordinates parses a "lat, lng" pair out of free text. Returns ok=false
// when no valid in-range pair is present.
func Coordinates(s string) (lat, lng float64, ok bool) {
	m := reCoordinates.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(m[1], 64)
	lng, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}
	return lat, lng, true
}

// IsBlank checks if an address is effectively blank after normalization
func IsBlank(addr string) bool {
	return strings.TrimSpace(Clean(addr)) == ""
}
