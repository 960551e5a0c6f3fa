package reconcile

// Stats accumulates reconciliation counters for one worker or one run.
// It has no internal locking: each worker owns its own accumulator and
// the orchestrator merges them after the workers join.
type Stats struct {
	TotalProcessed  int `json:"total_processed"`
	ExistingMatches int `json:"existing_matches"`
	PlacekeyMatches int `json:"placekey_matches"`
	BothMatches     int `json:"both_matches"`
	Conflicts       int `json:"conflicts"`
	APIErrors       int `json:"api_errors"`
	Errors          int `json:"errors"`
}

// Record tallies one reconciled record
func (s *Stats) Record(existing Verdict, external *ExternalVerdict, outcome Outcome) {
	s.TotalProcessed++
	if existing.IsApartment {
		s.ExistingMatches++
	}
	if external != nil {
		s.BothMatches++
		if external.IsApartment {
			s.PlacekeyMatches++
		}
	}
	if outcome.Conflict {
		s.Conflicts++
	}
}

// RecordError tallies a record whose processing failed entirely
func (s *Stats) RecordError() {
	s.TotalProcessed++
	s.Errors++
}

// RecordAPIError tallies an enrichment call that failed; the record
// itself still completes on the existing verdict
func (s *Stats) RecordAPIError() {
	s.APIErrors++
}

// Merge folds another accumulator into this one. Addition is
// associative, so per-worker stats can be merged in any order.
func (s *Stats) Merge(other Stats) {
	s.TotalProcessed += other.TotalProcessed
	s.ExistingMatches += other.ExistingMatches
	s.PlacekeyMatches += other.PlacekeyMatches
	s.BothMatches += other.BothMatches
	s.Conflicts += other.Conflicts
	s.APIErrors += other.APIErrors
	s.Errors += other.Errors
}
