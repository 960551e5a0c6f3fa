package unit

import (
	"fmt"
	"strings"
)

// RenderFormat selects an output format for a parsed unit designator
type RenderFormat string

const (
	FormatStandard RenderFormat = "standard" // MAIN TYPE VALUE
	FormatShort    RenderFormat = "short"    // MAIN #VALUE
	FormatFull     RenderFormat = "full"     // MAIN FULLTYPE VALUE
)

// Render rebuilds an address string from an extraction in the requested
// format. It is a pure string-building function over the parsed match;
// it never re-parses. Inputs without a unit are returned unchanged.
func Render(street string, format RenderFormat) string {
	ex := Extract(street)
	return RenderExtraction(street, ex, format)
}

// RenderExtraction formats an already-computed extraction
func RenderExtraction(street string, ex Extraction, format RenderFormat) string {
	if !ex.HasApartment || ex.Unit == nil {
		return street
	}

	main := ex.MainAddress
	switch format {
	case FormatStandard:
		return fmt.Sprintf("%s %s %s", main, ex.Unit.Type, ex.Unit.Value)
	case FormatShort:
		return fmt.Sprintf("%s #%s", main, ex.Unit.Value)
	case FormatFull:
		return fmt.Sprintf("%s %s %s", main, FullTypeName(ex.Unit.Type), ex.Unit.Value)
	}
	return street
}

// Variations produces the deduplicated list of re-renderings of one
// address used for fuzzy matching against the enrichment service. The
// unmodified input is always the first element; when a unit was found
// the bare main address is always a member.
func Variations(street string) []string {
	variations := []string{street}

	ex := Extract(street)
	if ex.HasApartment && ex.Unit != nil {
		if ex.MainAddress != "" {
			variations = append(variations, ex.MainAddress)
		}
		variations = append(variations,
			RenderExtraction(street, ex, FormatStandard),
			RenderExtraction(street, ex, FormatShort),
			RenderExtraction(street, ex, FormatFull),
		)
	}

	return dedupe(variations)
}

// dedupe removes duplicates while preserving first-seen order
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		key := strings.TrimSpace(v)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
