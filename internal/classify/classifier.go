package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// Verdict is the rule classifier's opinion of one address. Confidence is
// the maximum tier weight among all matched keywords, not a sum.
type Verdict struct {
	IsApartment bool
	Confidence  int
	// Keywords lists every hit as "keyword(matched_text)", comma-joined,
	// for audit and debugging - not just the winning one.
	Keywords string
}

// Tier confidence weights. The source material carried two divergent
// tables (95/80/60/40 and 90/75/55/35); this one is canonical here.
const (
	highConfidence         = 95
	mediumConfidence       = 80
	lowConfidence          = 60
	verificationConfidence = 40

	numberPatternConfidence = 75 // "NO 5" style
	hashPatternConfidence   = 60 // "#5" style

	apartmentThreshold = 50
)

var highConfidenceKeywords = []string{
	"apartment", "apt", "unit", "suite", "ste",
	"penthouse", "ph", "studio", "loft", "basement", "bsmt",
	"floor", "fl", "level", "lvl",
}

var mediumConfidenceKeywords = []string{
	"building", "bldg", "room", "rm",
	"department", "dept", "office", "ofc",
	"condo", "condominium",
}

// Low-tier words are directional/positional and only count when not part
// of a street name; see contextExcluded.
var lowConfidenceKeywords = []string{
	"trailer", "trlr", "lobby", "lbby",
	"north", "south", "east", "west",
	"upper", "lower", "side", "left", "right", "front", "rear",
	"pier", "slip", "space", "key", "lot",
}

var verificationKeywords = []string{"box", "mailbox", "pmb"}

// Exclusion is absolute: any hit short-circuits to non-apartment.
var excludeKeywords = []string{"townhouse", "th", "duplex", "stop", "hanger"}

var streetTypes = []string{
	"street", "st", "avenue", "ave", "road", "rd", "lane", "ln",
	"drive", "dr", "court", "ct", "circle", "cir", "boulevard", "blvd",
	"place", "pl", "way", "terrace", "ter", "parkway", "pkwy",
	"highway", "hwy", "freeway", "fwy", "expressway", "expy",
	"plaza", "square", "sq", "park", "point", "pt", "ridge",
	"hill", "heights", "hts", "valley", "view", "lake", "river",
}

// Classifier is the keyword/regex rule engine. All patterns are compiled
// once at construction; the classifier is read-only afterwards and safe
// for concurrent use.
type Classifier struct {
	keywordPatterns map[string]*regexp.Regexp
	numberPattern   *regexp.Regexp
	hashPattern     *regexp.Regexp
	streetTypeSet   map[string]bool
}

// NewClassifier compiles the keyword tiers and numeric patterns
func NewClassifier() *Classifier {
	c := &Classifier{
		keywordPatterns: make(map[string]*regexp.Regexp),
		numberPattern:   regexp.MustCompile(`(?i)\b(?:no|num|number)\s+\d+\b`),
		hashPattern:     regexp.MustCompile(`(?i)#\s*\d+`),
		streetTypeSet:   make(map[string]bool, len(streetTypes)),
	}

	var all []string
	all = append(all, excludeKeywords...)
	all = append(all, highConfidenceKeywords...)
	all = append(all, mediumConfidenceKeywords...)
	all = append(all, lowConfidenceKeywords...)
	all = append(all, verificationKeywords...)
	for _, kw := range all {
		c.keywordPatterns[kw] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
	}

	for _, st := range streetTypes {
		c.streetTypeSet[st] = true
	}
	return c
}

var defaultClassifier = NewClassifier()

// Classify runs the shared rule engine over a full address
func Classify(fullAddress string) Verdict {
	return defaultClassifier.Classify(fullAddress)
}

// Classify decides whether an address is an apartment. When the input is
// in the hierarchical state~~~county~~~city~~~street form, only the
// street segment is inspected.
func (c *Classifier) Classify(fullAddress string) Verdict {
	street := ExtractStreetSegment(fullAddress)
	if strings.TrimSpace(street) == "" {
		return Verdict{}
	}

	// Exclusion keywords are absolute and short-circuit every other tier
	for _, kw := range excludeKeywords {
		if c.keywordPatterns[kw].MatchString(street) {
			return Verdict{
				IsApartment: false,
				Confidence:  0,
				Keywords:    fmt.Sprintf("excluded(%s)", kw),
			}
		}
	}

	maxConfidence := 0
	var matched []string
	record := func(weight int, label, span string) {
		if weight > maxConfidence {
			maxConfidence = weight
		}
		matched = append(matched, fmt.Sprintf("%s(%s)", label, span))
	}

	for _, kw := range highConfidenceKeywords {
		if m := c.keywordPatterns[kw].FindString(street); m != "" {
			record(highConfidence, kw, m)
		}
	}

	for _, kw := range mediumConfidenceKeywords {
		if m := c.keywordPatterns[kw].FindString(street); m != "" {
			record(mediumConfidence, kw, m)
		}
	}

	if m := c.numberPattern.FindString(street); m != "" {
		record(numberPatternConfidence, "number", m)
	}
	if m := c.hashPattern.FindString(street); m != "" {
		record(hashPatternConfidence, "#number", m)
	}

	for _, kw := range lowConfidenceKeywords {
		if m := c.keywordPatterns[kw].FindString(street); m != "" {
			if !c.contextExcluded(street, kw) {
				record(lowConfidence, kw, m)
			}
		}
	}

	for _, kw := range verificationKeywords {
		if m := c.keywordPatterns[kw].FindString(street); m != "" {
			record(verificationConfidence, kw, m)
		}
	}

	return Verdict{
		IsApartment: maxConfidence >= apartmentThreshold,
		Confidence:  maxConfidence,
		Keywords:    strings.Join(matched, ", "),
	}
}

// contextExcluded reports whether a low-tier directional/positional word
// is really part of a street name: a street-type word immediately before
// or after it suppresses the match, so "321 North Street" never counts
// NORTH as a unit designator.
func (c *Classifier) contextExcluded(street, keyword string) bool {
	words := strings.Fields(strings.ToLower(street))
	for i, word := range words {
		if strings.Trim(word, ",.") != keyword {
			continue
		}
		if i > 0 && c.streetTypeSet[strings.Trim(words[i-1], ",.")] {
			return true
		}
		if i+1 < len(words) && c.streetTypeSet[strings.Trim(words[i+1], ",.")] {
			return true
		}
	}
	return false
}

// ExtractStreetSegment returns the street portion of a hierarchical
// "state~~~county~~~city~~~street" address, or the whole string when no
// such delimiter is present
func ExtractStreetSegment(fullAddress string) string {
	if fullAddress == "" {
		return ""
	}
	parts := strings.Split(fullAddress, "~~~")
	if len(parts) >= 4 {
		return strings.TrimSpace(parts[len(parts)-1])
	}
	return strings.TrimSpace(fullAddress)
}
