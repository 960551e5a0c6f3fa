package reconcile

import (
	"fmt"
)

// Verdict is one opinion about whether an address is an apartment,
// whoever produced it: the rule classifier, a prior dataset column, or
// the enrichment path.
type Verdict struct {
	IsApartment bool   `json:"is_apartment"`
	Confidence  int    `json:"confidence"`
	Keywords    string `json:"keywords"`
}

// ExternalVerdict is the enrichment-derived opinion that Integrate
// weighs against the merged in-process verdict
type ExternalVerdict struct {
	IsApartment   bool
	Confidence    int
	ApartmentType string
}

// Status labels which side a reconciled verdict came from
type Status string

const (
	StatusExistingOnly            Status = "existing_only"
	StatusBothAgreeExistingHigher Status = "both_agree_existing_higher"
	StatusBothAgreePlacekeyHigher Status = "both_agree_placekey_higher"
	StatusPlacekeyOverride        Status = "placekey_override"
	StatusExistingOverride        Status = "existing_override"
	StatusError                   Status = "error"
)

// Outcome is a reconciled verdict with its provenance
type Outcome struct {
	Verdict
	Status   Status
	Conflict bool
}

// enrichmentThreshold gates external lookups: only addresses the merged
// verdict already calls apartments at this confidence or above are worth
// an API call.
const enrichmentThreshold = 50

// Maximize merges a prior verdict (from the input data, may be nil) with
// the rule classifier's verdict under the maximization principle: better
// to over-report apartments than to miss one. If either side claims
// apartment the merge does; the higher confidence wins and the keywords
// carry provenance tags for the losing side.
func Maximize(prior *Verdict, rule Verdict) Verdict {
	var p Verdict
	if prior != nil {
		p = *prior
	}

	if !p.IsApartment && !rule.IsApartment {
		conf := rule.Confidence
		if p.Confidence > conf {
			conf = p.Confidence
		}
		return Verdict{
			IsApartment: false,
			Confidence:  conf,
			Keywords:    fmt.Sprintf("non_apt(rule:%s,input:%s)", rule.Keywords, p.Keywords),
		}
	}

	if p.Confidence > rule.Confidence {
		return Verdict{
			IsApartment: true,
			Confidence:  p.Confidence,
			Keywords:    fmt.Sprintf("input(%s)", p.Keywords),
		}
	}

	merged := Verdict{
		IsApartment: true,
		Confidence:  rule.Confidence,
		Keywords:    rule.Keywords,
	}
	if p.IsApartment {
		merged.Keywords = fmt.Sprintf("%s+input(%s)", rule.Keywords, p.Keywords)
	}
	return merged
}

// ShouldEnrich reports whether a merged verdict justifies an external
// lookup
func ShouldEnrich(v Verdict) bool {
	return v.IsApartment && v.Confidence >= enrichmentThreshold
}

// Integrate weighs the merged in-process verdict against the enrichment
// result. A nil external verdict keeps the existing one untouched.
// Disagreement sets Conflict and resolves toward the strictly higher
// confidence; ties always favour the existing verdict.
func Integrate(existing Verdict, external *ExternalVerdict) Outcome {
	out := Outcome{Verdict: existing, Status: StatusExistingOnly}
	if external == nil {
		return out
	}

	if existing.IsApartment != external.IsApartment {
		out.Conflict = true
		if external.Confidence > existing.Confidence {
			out.IsApartment = external.IsApartment
			out.Confidence = external.Confidence
			out.Keywords = fmt.Sprintf("placekey_enhanced: %s", external.ApartmentType)
			out.Status = StatusPlacekeyOverride
		} else {
			out.Status = StatusExistingOverride
		}
		return out
	}

	if external.Confidence > existing.Confidence {
		out.Confidence = external.Confidence
		out.Keywords = fmt.Sprintf("%s + placekey_enhanced", existing.Keywords)
		out.Status = StatusBothAgreePlacekeyHigher
	} else {
		out.Status = StatusBothAgreeExistingHigher
	}
	return out
}

// ErrorOutcome is the safe fallback verdict for a record whose
// processing failed. It never claims an apartment and carries the fault
// in the keywords so the output row stays self-describing.
func ErrorOutcome(err error) Outcome {
	keywords := ""
	if err != nil {
		keywords = fmt.Sprintf("error(%v)", err)
	}
	return Outcome{
		Verdict: Verdict{IsApartment: false, Confidence: 0, Keywords: keywords},
		Status:  StatusError,
	}
}
