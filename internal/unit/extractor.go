package unit

import (
	"fmt"
	"regexp"
	"strings"
)

// unitKeywords is the alternation used by the keyword-driven families.
// Longer synonyms come first so APARTMENT is never matched as APT+rest.
const unitKeywords = `APARTMENT|APT|UNIT|UN|SUITE|STE|SU|BUILDING|BLDG|BLD|ROOM|RM|FLOOR|FLR|FL|LEVEL|LVL|PENTHOUSE|PH`

// matcher binds one family's compiled pattern to its parse function
type matcher struct {
	family Family
	re     *regexp.Regexp
	parse  func(addr string, loc []int) (*UnitMatch, bool)
}

// Extractor applies the pattern library to single address strings.
// All patterns are compiled once at construction and the extractor is
// safe for concurrent use.
type Extractor struct {
	matchers []matcher
}

// NewExtractor compiles the pattern library in mandatory precedence order:
// compound, floor_room, range, multi_unit, standard, simple. The first
// family whose pattern matches anywhere in the string wins, regardless of
// where later families would have matched.
func NewExtractor() *Extractor {
	e := &Extractor{}
	e.matchers = []matcher{
		{
			family: FamilyCompound,
			re: regexp.MustCompile(
				`(?i)\b(?:BUILDING|BLDG|BLD)\s*([A-Z0-9]+)\s*(` + unitKeywords + `)\s*([A-Z0-9]+)\b` +
					`|\b(` + unitKeywords + `)\s*([A-Z0-9]+)\s*(?:BUILDING|BLDG|BLD)\s*([A-Z0-9]+)\b`),
			parse: parseCompound,
		},
		{
			family: FamilyFloorRoom,
			re: regexp.MustCompile(
				`(?i)\b(?:FLOOR|FL|F)\s*(\d+)(?:\s*(?:ROOM|RM|R)\s*([A-Z0-9]+))?` +
					`|\b(\d+)F[\-\s]*([A-Z0-9]+)\b`),
			parse: parseFloorRoom,
		},
		{
			family: FamilyRange,
			re: regexp.MustCompile(
				`(?i)\b(` + unitKeywords + `)\s*([A-Z0-9]+)\s*[\-~]\s*([A-Z0-9]+)\b`),
			parse: parseRange,
		},
		{
			family: FamilyMultiUnit,
			re: regexp.MustCompile(
				`(?i)\b(` + unitKeywords + `)\s*([A-Z0-9]+(?:\s*[&,]\s*[A-Z0-9]+)+)`),
			parse: parseMultiUnit,
		},
		{
			family: FamilyStandard,
			re: regexp.MustCompile(
				`(?i)\b(` + unitKeywords + `)[#\-\s]*([A-Z0-9]+)\b`),
			parse: parseStandard,
		},
		{
			family: FamilySimple,
			re: regexp.MustCompile(
				`(?i)#\s*([A-Z0-9]+)(?:\s|$)|\b(\d+[A-Z])\b`),
			parse: parseSimple,
		},
	}
	return e
}

var defaultExtractor = NewExtractor()

// Extract applies the shared pattern library to a single street address
func Extract(street string) Extraction {
	return defaultExtractor.Extract(street)
}

// Extract determines whether the address contains a unit designator and,
// if so, which family, the extracted identifier and the residual main
// address. An empty or whitespace-only input is a certain absence:
// has_apartment=false at confidence 100 with the input unchanged.
func (e *Extractor) Extract(street string) Extraction {
	trimmed := strings.TrimSpace(street)
	if trimmed == "" {
		return Extraction{
			HasApartment: false,
			Family:       FamilyNone,
			MainAddress:  street,
			Confidence:   100,
		}
	}

	upper := strings.ToUpper(trimmed)

	for _, m := range e.matchers {
		loc := m.re.FindStringSubmatchIndex(upper)
		if loc == nil {
			continue
		}
		match, ok := m.parse(upper, loc)
		if !ok {
			continue
		}

		// Slice the original casing when ASCII uppercasing preserved
		// byte offsets, so the main address keeps the caller's casing.
		source := upper
		if len(upper) == len(trimmed) {
			source = trimmed
		}

		return Extraction{
			HasApartment: true,
			Family:       m.family,
			Unit:         match,
			MainAddress:  removeSpan(source, loc[0], loc[1]),
			Confidence:   m.family.Confidence(),
		}
	}

	// No family matched: certain absence of unit information
	return Extraction{
		HasApartment: false,
		Family:       FamilyNone,
		MainAddress:  street,
		Confidence:   100,
	}
}

// group returns capture group i of a submatch index slice, or ""
func group(s string, loc []int, i int) string {
	if 2*i+1 >= len(loc) || loc[2*i] < 0 {
		return ""
	}
	return s[loc[2*i]:loc[2*i+1]]
}

// removeSpan deletes s[start:end] and collapses the surrounding whitespace
func removeSpan(s string, start, end int) string {
	remainder := s[:start] + " " + s[end:]
	return strings.Join(strings.Fields(remainder), " ")
}

func parseStandard(addr string, loc []int) (*UnitMatch, bool) {
	aptType := StandardizeType(group(addr, loc, 1))
	value := strings.ToUpper(group(addr, loc, 2))
	if aptType == "" || value == "" {
		return nil, false
	}
	return &UnitMatch{
		Type:  aptType,
		Value: value,
		Full:  fmt.Sprintf("%s %s", aptType, value),
	}, true
}

func parseSimple(addr string, loc []int) (*UnitMatch, bool) {
	value := group(addr, loc, 1)
	if value == "" {
		value = group(addr, loc, 2)
	}
	if value == "" {
		return nil, false
	}
	value = strings.ToUpper(value)

	// Default type: the bare format carries no designator of its own
	return &UnitMatch{
		Type:  "UNIT",
		Value: value,
		Full:  fmt.Sprintf("UNIT %s", value),
	}, true
}

func parseFloorRoom(addr string, loc []int) (*UnitMatch, bool) {
	floor := group(addr, loc, 1)
	room := group(addr, loc, 2)
	if floor == "" {
		// "3F-5" shape
		floor = group(addr, loc, 3)
		room = group(addr, loc, 4)
	}
	if floor == "" {
		return nil, false
	}

	value := floor
	if room != "" {
		value = fmt.Sprintf("%s RM %s", floor, strings.ToUpper(room))
	}
	return &UnitMatch{
		Type:  "FL",
		Value: value,
		Full:  fmt.Sprintf("FL %s", value),
		Floor: floor,
		Room:  strings.ToUpper(room),
	}, true
}

func parseCompound(addr string, loc []int) (*UnitMatch, bool) {
	building := group(addr, loc, 1)
	aptType := group(addr, loc, 2)
	number := group(addr, loc, 3)
	if building == "" {
		// "APT 5 BUILDING 2" shape
		aptType = group(addr, loc, 4)
		number = group(addr, loc, 5)
		building = group(addr, loc, 6)
	}
	if building == "" || aptType == "" || number == "" {
		return nil, false
	}

	std := StandardizeType(aptType)
	value := fmt.Sprintf("%s %s %s", strings.ToUpper(building), std, strings.ToUpper(number))
	return &UnitMatch{
		Type:     "BLDG",
		Value:    value,
		Full:     fmt.Sprintf("BLDG %s", value),
		Building: strings.ToUpper(building),
	}, true
}

func parseRange(addr string, loc []int) (*UnitMatch, bool) {
	aptType := StandardizeType(group(addr, loc, 1))
	start := strings.ToUpper(group(addr, loc, 2))
	end := strings.ToUpper(group(addr, loc, 3))
	if aptType == "" || start == "" || end == "" {
		return nil, false
	}

	value := fmt.Sprintf("%s-%s", start, end)
	return &UnitMatch{
		Type:       aptType,
		Value:      value,
		Full:       fmt.Sprintf("%s %s", aptType, value),
		RangeStart: start,
		RangeEnd:   end,
	}, true
}

var reMultiSeparator = regexp.MustCompile(`[&,\s]+`)

func parseMultiUnit(addr string, loc []int) (*UnitMatch, bool) {
	aptType := StandardizeType(group(addr, loc, 1))
	unitsStr := strings.ToUpper(group(addr, loc, 2))
	if aptType == "" || unitsStr == "" {
		return nil, false
	}

	var units []string
	for _, u := range reMultiSeparator.Split(unitsStr, -1) {
		if u = strings.TrimSpace(u); u != "" {
			units = append(units, u)
		}
	}
	if len(units) < 2 {
		return nil, false
	}

	value := strings.Join(units, ",")
	return &UnitMatch{
		Type:  aptType,
		Value: value,
		Full:  fmt.Sprintf("%s %s", aptType, value),
		Units: units,
	}, true
}
