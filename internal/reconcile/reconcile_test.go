package reconcile

import (
	"errors"
	"testing"

	"github.com/apartment-accesscode/internal/unit"
)

func TestMaximizeRuleWinsOnConfidence(t *testing.T) {
	prior := &Verdict{IsApartment: true, Confidence: 60, Keywords: "legacy"}
	rule := Verdict{IsApartment: true, Confidence: 95, Keywords: "apt(Apt)"}

	got := Maximize(prior, rule)
	if !got.IsApartment || got.Confidence != 95 {
		t.Fatalf("got (%v, %d), want (true, 95)", got.IsApartment, got.Confidence)
	}
	if got.Keywords != "apt(Apt)+input(legacy)" {
		t.Errorf("keywords = %q", got.Keywords)
	}
}

func TestMaximizeInputWinsOnConfidence(t *testing.T) {
	prior := &Verdict{IsApartment: true, Confidence: 98, Keywords: "legacy"}
	rule := Verdict{IsApartment: true, Confidence: 95, Keywords: "apt(Apt)"}

	got := Maximize(prior, rule)
	if got.Confidence != 98 {
		t.Errorf("confidence = %d, want 98", got.Confidence)
	}
	if got.Keywords != "input(legacy)" {
		t.Errorf("keywords = %q", got.Keywords)
	}
}

func TestMaximizeEitherSideClaims(t *testing.T) {
	// Input says apartment, rule says not: the merge still reports an
	// apartment. Better to over-report than to miss.
	prior := &Verdict{IsApartment: true, Confidence: 70, Keywords: "legacy"}
	rule := Verdict{IsApartment: false, Confidence: 0}

	got := Maximize(prior, rule)
	if !got.IsApartment || got.Confidence != 70 {
		t.Errorf("got (%v, %d), want (true, 70)", got.IsApartment, got.Confidence)
	}
}

func TestMaximizeNeitherClaims(t *testing.T) {
	prior := &Verdict{IsApartment: false, Confidence: 30, Keywords: "x"}
	rule := Verdict{IsApartment: false, Confidence: 0, Keywords: "y"}

	got := Maximize(prior, rule)
	if got.IsApartment {
		t.Fatal("neither side claimed apartment but merge did")
	}
	if got.Confidence != 30 {
		t.Errorf("confidence = %d, want 30", got.Confidence)
	}
	if got.Keywords != "non_apt(rule:y,input:x)" {
		t.Errorf("keywords = %q", got.Keywords)
	}
}

func TestMaximizeNoPrior(t *testing.T) {
	rule := Verdict{IsApartment: true, Confidence: 95, Keywords: "unit(Unit)"}
	got := Maximize(nil, rule)
	if got != rule {
		t.Errorf("got %+v, want rule verdict unchanged", got)
	}
}

func TestMaximizeMonotonic(t *testing.T) {
	// Adding a prior verdict can never lower the merged confidence
	rule := Verdict{IsApartment: true, Confidence: 80, Keywords: "room(Room)"}
	base := Maximize(nil, rule)

	for _, conf := range []int{0, 40, 80, 99} {
		prior := &Verdict{IsApartment: true, Confidence: conf}
		merged := Maximize(prior, rule)
		if merged.Confidence < base.Confidence {
			t.Errorf("prior conf %d lowered merge to %d", conf, merged.Confidence)
		}
	}
}

func TestShouldEnrich(t *testing.T) {
	tests := []struct {
		v    Verdict
		want bool
	}{
		{Verdict{IsApartment: true, Confidence: 95}, true},
		{Verdict{IsApartment: true, Confidence: 50}, true},
		{Verdict{IsApartment: true, Confidence: 49}, false},
		{Verdict{IsApartment: false, Confidence: 95}, false},
	}

	for _, tt := range tests {
		if got := ShouldEnrich(tt.v); got != tt.want {
			t.Errorf("ShouldEnrich(%+v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestIntegrateNoExternal(t *testing.T) {
	existing := Verdict{IsApartment: true, Confidence: 95, Keywords: "apt(Apt)"}
	got := Integrate(existing, nil)
	if got.Status != StatusExistingOnly || got.Conflict {
		t.Errorf("got status %q conflict %v", got.Status, got.Conflict)
	}
	if got.Verdict != existing {
		t.Errorf("verdict changed: %+v", got.Verdict)
	}
}

func TestIntegrateConflictResolution(t *testing.T) {
	tests := []struct {
		name       string
		existing   Verdict
		external   ExternalVerdict
		wantStatus Status
		wantIsApt  bool
		wantConf   int
	}{
		{
			name:       "external strictly higher wins",
			existing:   Verdict{IsApartment: false, Confidence: 40},
			external:   ExternalVerdict{IsApartment: true, Confidence: 90, ApartmentType: "APT"},
			wantStatus: StatusPlacekeyOverride,
			wantIsApt:  true,
			wantConf:   90,
		},
		{
			name:       "existing wins on higher confidence",
			existing:   Verdict{IsApartment: true, Confidence: 95},
			external:   ExternalVerdict{IsApartment: false, Confidence: 60},
			wantStatus: StatusExistingOverride,
			wantIsApt:  true,
			wantConf:   95,
		},
		{
			name:       "tie favours existing",
			existing:   Verdict{IsApartment: true, Confidence: 80},
			external:   ExternalVerdict{IsApartment: false, Confidence: 80},
			wantStatus: StatusExistingOverride,
			wantIsApt:  true,
			wantConf:   80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Integrate(tt.existing, &tt.external)
			if !got.Conflict {
				t.Error("disagreement did not set Conflict")
			}
			if got.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", got.Status, tt.wantStatus)
			}
			if got.IsApartment != tt.wantIsApt || got.Confidence != tt.wantConf {
				t.Errorf("verdict = (%v, %d), want (%v, %d)",
					got.IsApartment, got.Confidence, tt.wantIsApt, tt.wantConf)
			}
		})
	}
}

func TestIntegrateAgreement(t *testing.T) {
	existing := Verdict{IsApartment: true, Confidence: 80, Keywords: "room(Room)"}

	got := Integrate(existing, &ExternalVerdict{IsApartment: true, Confidence: 95})
	if got.Status != StatusBothAgreePlacekeyHigher || got.Conflict {
		t.Errorf("got status %q conflict %v", got.Status, got.Conflict)
	}
	if got.Confidence != 95 {
		t.Errorf("confidence = %d, want 95", got.Confidence)
	}
	if got.Keywords != "room(Room) + placekey_enhanced" {
		t.Errorf("keywords = %q", got.Keywords)
	}

	got = Integrate(existing, &ExternalVerdict{IsApartment: true, Confidence: 70})
	if got.Status != StatusBothAgreeExistingHigher {
		t.Errorf("status = %q", got.Status)
	}
	if got.Confidence != 80 || got.Keywords != "room(Room)" {
		t.Errorf("verdict changed on lower external confidence: %+v", got.Verdict)
	}
}

func TestErrorOutcome(t *testing.T) {
	got := ErrorOutcome(errors.New("boom"))
	if got.IsApartment || got.Confidence != 0 {
		t.Errorf("error fallback claimed apartment: %+v", got)
	}
	if got.Status != StatusError {
		t.Errorf("status = %q, want error", got.Status)
	}
	if got.Keywords != "error(boom)" {
		t.Errorf("keywords = %q", got.Keywords)
	}
}

func TestExtractAccessCodeFromUnit(t *testing.T) {
	tests := []struct {
		name string
		m    *unit.UnitMatch
		want string
	}{
		{"standard", &unit.UnitMatch{Type: "APT", Value: "154"}, "154"},
		{"letter unit", &unit.UnitMatch{Type: "UNIT", Value: "2B"}, "2B"},
		{"range start", &unit.UnitMatch{Type: "APT", Value: "1-5", RangeStart: "1", RangeEnd: "5"}, "1"},
		{"multi first", &unit.UnitMatch{Type: "APT", Value: "1,2", Units: []string{"1", "2"}}, "1"},
		{"floor room", &unit.UnitMatch{Type: "FL", Value: "3 RM 5", Floor: "3", Room: "5"}, "5"},
		{"floor only", &unit.UnitMatch{Type: "FL", Value: "3", Floor: "3"}, "3"},
		{"compound", &unit.UnitMatch{Type: "BLDG", Value: "2 APT 5", Building: "2"}, "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractAccessCode(tt.m, ""); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractAccessCodeFromKeywords(t *testing.T) {
	tests := []struct {
		name     string
		keywords string
		want     string
	}{
		{"type paren", "apt(154)", "154"},
		{"hash", "some match #42", "42"},
		{"trailing token", "code B7", "B7"},
		{"empty", "", ""},
		{"invalid trailing", "ends with )", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractAccessCode(nil, tt.keywords); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatsMergeAssociative(t *testing.T) {
	a := Stats{TotalProcessed: 3, ExistingMatches: 2, Conflicts: 1}
	b := Stats{TotalProcessed: 5, PlacekeyMatches: 4, APIErrors: 1}
	c := Stats{TotalProcessed: 1, Errors: 1, BothMatches: 1}

	left := Stats{}
	left.Merge(a)
	left.Merge(b)
	left.Merge(c)

	bc := b
	bc.Merge(c)
	right := a
	right.Merge(bc)

	if left != right {
		t.Errorf("merge not associative: %+v vs %+v", left, right)
	}
	if left.TotalProcessed != 9 {
		t.Errorf("TotalProcessed = %d, want 9", left.TotalProcessed)
	}
}

func TestStatsRecord(t *testing.T) {
	var s Stats
	existing := Verdict{IsApartment: true, Confidence: 95}
	external := &ExternalVerdict{IsApartment: false, Confidence: 60}
	outcome := Integrate(existing, external)

	s.Record(existing, external, outcome)
	if s.TotalProcessed != 1 || s.ExistingMatches != 1 || s.BothMatches != 1 {
		t.Errorf("stats = %+v", s)
	}
	if s.Conflicts != 1 {
		t.Errorf("Conflicts = %d, want 1", s.Conflicts)
	}
	if s.PlacekeyMatches != 0 {
		t.Errorf("PlacekeyMatches = %d, want 0", s.PlacekeyMatches)
	}
}
