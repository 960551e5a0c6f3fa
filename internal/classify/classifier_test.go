package classify

import (
	"strings"
	"testing"
)

func TestClassifyHighConfidence(t *testing.T) {
	tests := []struct {
		name       string
		address    string
		confidence int
		keyword    string
	}{
		{"apartment", "1543 Mission Street Apartment 3", 95, "apartment"},
		{"apt", "2270 Cahuilla St APT 154", 95, "apt"},
		{"unit", "456 Oak Avenue Unit 12", 95, "unit"},
		{"suite", "500 Market Street Suite 1200", 95, "suite"},
		{"penthouse", "1 Tower Plaza Penthouse", 95, "penthouse"},
		{"basement", "77 Hill Road Basement", 95, "basement"},
		{"level", "300 Pine Way Level 4", 95, "level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Classify(tt.address)
			if !v.IsApartment {
				t.Fatalf("Classify(%q).IsApartment = false, want true", tt.address)
			}
			if v.Confidence != tt.confidence {
				t.Errorf("confidence = %d, want %d", v.Confidence, tt.confidence)
			}
			if !strings.Contains(v.Keywords, tt.keyword+"(") {
				t.Errorf("keywords %q missing %s(...)", v.Keywords, tt.keyword)
			}
		})
	}
}

func TestClassifyMediumConfidence(t *testing.T) {
	tests := []struct {
		address string
	}{
		{"100 Campus Drive Building C"},
		{"42 Elm Street Room 9"},
		{"88 Bay Road Office 3"},
		{"17 Shore Lane Condo 2"},
	}

	for _, tt := range tests {
		v := Classify(tt.address)
		if !v.IsApartment || v.Confidence != 80 {
			t.Errorf("Classify(%q) = (%v, %d), want (true, 80)",
				tt.address, v.IsApartment, v.Confidence)
		}
	}
}

func TestClassifyNumberPatterns(t *testing.T) {
	v := Classify("321 Cedar Grove NO 5")
	if !v.IsApartment || v.Confidence != 75 {
		t.Errorf("NO pattern = (%v, %d), want (true, 75)", v.IsApartment, v.Confidence)
	}
	if !strings.Contains(v.Keywords, "number(") {
		t.Errorf("keywords %q missing number(...)", v.Keywords)
	}

	v = Classify("321 Cedar Grove #5")
	if !v.IsApartment || v.Confidence != 60 {
		t.Errorf("hash pattern = (%v, %d), want (true, 60)", v.IsApartment, v.Confidence)
	}
}

func TestClassifyVerificationTier(t *testing.T) {
	// Verification-tier keywords alone stay below the apartment threshold
	v := Classify("900 Rural Route Box 12")
	if v.IsApartment {
		t.Errorf("box-only address classified as apartment: %+v", v)
	}
	if v.Confidence != 40 {
		t.Errorf("confidence = %d, want 40", v.Confidence)
	}
	if !strings.Contains(v.Keywords, "box(") {
		t.Errorf("keywords %q missing box(...)", v.Keywords)
	}
}

func TestClassifyExclusionShortCircuits(t *testing.T) {
	tests := []struct {
		address string
		keyword string
	}{
		// Exclusion beats even high-confidence keywords in the same string
		{"12 Kings Road Townhouse Unit 3", "townhouse"},
		{"40 Ocean Drive Duplex Apt B", "duplex"},
		{"7 Transit Way Bus Stop", "stop"},
	}

	for _, tt := range tests {
		v := Classify(tt.address)
		if v.IsApartment || v.Confidence != 0 {
			t.Errorf("Classify(%q) = (%v, %d), want (false, 0)",
				tt.address, v.IsApartment, v.Confidence)
		}
		want := "excluded(" + tt.keyword + ")"
		if v.Keywords != want {
			t.Errorf("keywords = %q, want %q", v.Keywords, want)
		}
	}
}

func TestClassifyContextExclusion(t *testing.T) {
	// Directional words adjacent to a street type are street names, not
	// unit designators.
	tests := []struct {
		address string
	}{
		{"321 North Street"},
		{"55 West Avenue"},
		{"900 Upper Road"},
		{"12 East Boulevard"},
	}

	for _, tt := range tests {
		v := Classify(tt.address)
		if v.IsApartment {
			t.Errorf("Classify(%q) classified street name as apartment: %+v",
				tt.address, v)
		}
		if v.Confidence != 0 {
			t.Errorf("Classify(%q) confidence = %d, want 0", tt.address, v.Confidence)
		}
	}
}

func TestClassifyContextExclusionDoesNotSuppressRealUnits(t *testing.T) {
	// NORTH away from a street type still counts, and a real designator
	// elsewhere in the string wins regardless.
	v := Classify("123 Main St Unit North")
	if !v.IsApartment || v.Confidence != 95 {
		t.Fatalf("got (%v, %d), want (true, 95)", v.IsApartment, v.Confidence)
	}
	if !strings.Contains(v.Keywords, "unit(") {
		t.Errorf("keywords %q missing unit(...)", v.Keywords)
	}
	if !strings.Contains(v.Keywords, "north(") {
		t.Errorf("keywords %q missing north(...)", v.Keywords)
	}
}

func TestClassifyLowTierStandalone(t *testing.T) {
	v := Classify("77 Harbor Complex Pier 4")
	if !v.IsApartment || v.Confidence != 60 {
		t.Errorf("got (%v, %d), want (true, 60)", v.IsApartment, v.Confidence)
	}
}

func TestClassifyMaxNotSum(t *testing.T) {
	// Multiple hits report every keyword but confidence is the max tier,
	// never a sum.
	v := Classify("10 Plaza Building Apt 5 Room 2")
	if v.Confidence != 95 {
		t.Errorf("confidence = %d, want 95", v.Confidence)
	}
	for _, kw := range []string{"apt(", "building(", "room("} {
		if !strings.Contains(v.Keywords, kw) {
			t.Errorf("keywords %q missing %s...)", v.Keywords, kw)
		}
	}
}

func TestClassifyPlainAddress(t *testing.T) {
	v := Classify("654 Maple Avenue")
	if v.IsApartment || v.Confidence != 0 || v.Keywords != "" {
		t.Errorf("plain address = %+v, want zero verdict", v)
	}
}

func TestClassifyEmpty(t *testing.T) {
	for _, in := range []string{"", "   "} {
		v := Classify(in)
		if v.IsApartment || v.Confidence != 0 {
			t.Errorf("Classify(%q) = %+v, want zero verdict", in, v)
		}
	}
}

func TestClassifyHierarchicalAddress(t *testing.T) {
	// Only the street segment of a pipe-delimited hierarchical record is
	// classified; earlier segments never contribute keywords.
	v := Classify("CA~~~Los Angeles County~~~Los Angeles~~~123 Sunset Blvd Apt 9")
	if !v.IsApartment || v.Confidence != 95 {
		t.Errorf("got (%v, %d), want (true, 95)", v.IsApartment, v.Confidence)
	}

	// UNIT in a county segment must not leak into the verdict
	v = Classify("TX~~~Unit County~~~Austin~~~800 Congress Ave")
	if v.IsApartment {
		t.Errorf("keyword in county segment leaked into verdict: %+v", v)
	}
}

func TestExtractStreetSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CA~~~Orange~~~Irvine~~~1 Main St Apt 2", "1 Main St Apt 2"},
		{"1 Main St Apt 2", "1 Main St Apt 2"},
		{"a~~~b~~~c", "a~~~b~~~c"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExtractStreetSegment(tt.in); got != tt.want {
			t.Errorf("ExtractStreetSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	addr := "10 Plaza Building Apt 5 Room 2"
	first := Classify(addr)
	for i := 0; i < 5; i++ {
		if got := Classify(addr); got != first {
			t.Fatalf("verdict changed between runs: %+v vs %+v", got, first)
		}
	}
}
