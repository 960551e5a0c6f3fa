package reconcile

import (
	"regexp"
	"strings"

	"github.com/apartment-accesscode/internal/unit"
)

var (
	reCodeFromType     = regexp.MustCompile(`(?i)\b(?:apt|apartment|unit|suite|ste)\(([^)]+)\)`)
	reCodeFromHash     = regexp.MustCompile(`#\s*([A-Za-z0-9]+)`)
	reCodeFromTrailing = regexp.MustCompile(`([A-Za-z0-9]+)\s*$`)
	reValidCode        = regexp.MustCompile(`^[A-Z0-9]+$`)
)

// ExtractAccessCode derives the unit access code for a record. The
// enriched unit match is authoritative when present; otherwise the code
// is mined from the keyword provenance string. Whatever the source, a
// code must be a bare alphanumeric token or it is discarded.
func ExtractAccessCode(enriched *unit.UnitMatch, keywords string) string {
	if enriched != nil {
		if code := codeFromUnit(enriched); code != "" {
			return code
		}
	}
	return codeFromKeywords(keywords)
}

func codeFromUnit(m *unit.UnitMatch) string {
	// Composite matches (ranges, multi-unit lists, floor/room pairs,
	// building compounds) carry several identifiers; pick the one that
	// actually names the unit.
	var candidates []string
	switch {
	case len(m.Units) > 0:
		candidates = append(candidates, m.Units[0])
	case m.RangeStart != "":
		candidates = append(candidates, m.RangeStart)
	case m.Room != "":
		candidates = append(candidates, m.Room)
	case m.Building != "":
		parts := strings.Fields(m.Value)
		candidates = append(candidates, parts[len(parts)-1])
	}
	candidates = append(candidates, m.Value, m.Floor)

	for _, c := range candidates {
		c = strings.ToUpper(strings.TrimSpace(c))
		if reValidCode.MatchString(c) {
			return c
		}
	}
	return ""
}

func codeFromKeywords(keywords string) string {
	if keywords == "" {
		return ""
	}

	for _, re := range []*regexp.Regexp{reCodeFromType, reCodeFromHash, reCodeFromTrailing} {
		m := re.FindStringSubmatch(keywords)
		if m == nil {
			continue
		}
		candidate := strings.ToUpper(strings.TrimSpace(m[1]))
		if reValidCode.MatchString(candidate) {
			return candidate
		}
	}
	return ""
}
