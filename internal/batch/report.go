package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/apartment-accesscode/internal/reconcile"
	"github.com/apartment-accesscode/internal/unit"
)

// Report summarizes one batch run for the JSON processing report and
// the results store
type Report struct {
	RunID      string          `json:"run_id"`
	InputFile  string          `json:"input_file"`
	OutputFile string          `json:"output_file"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	DurationMS int64           `json:"duration_ms"`
	Records    int             `json:"records"`
	Workers    int             `json:"workers"`
	Stats      reconcile.Stats `json:"stats"`

	Buildings []unit.BuildingSummary `json:"buildings,omitempty"`
}

// NewReport starts a report with a fresh run ID
func NewReport(inputFile, outputFile string, workers int) *Report {
	return &Report{
		RunID:      uuid.NewString(),
		InputFile:  inputFile,
		OutputFile: outputFile,
		StartedAt:  time.Now().UTC(),
		Workers:    workers,
	}
}

// Finish stamps the end time and totals
func (r *Report) Finish(results []Result, stats reconcile.Stats) {
	r.FinishedAt = time.Now().UTC()
	r.DurationMS = r.FinishedAt.Sub(r.StartedAt).Milliseconds()
	r.Records = len(results)
	r.Stats = stats
}

// WriteJSON writes the report next to the output file
func (r *Report) WriteJSON(path string) error {
	payload, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// AggregateBuildings groups the processed results by main address and
// summarizes buildings that hold more than one unit, sorted by unit
// count descending then address for a stable report.
func AggregateBuildings(results []Result) []unit.BuildingSummary {
	addresses := make([]string, 0, len(results))
	for _, res := range results {
		if res.HasApartment {
			addresses = append(addresses, groupingAddress(res))
		}
	}

	groups := unit.GroupByBuilding(addresses)
	summaries := make([]unit.BuildingSummary, 0, len(groups))
	for _, g := range groups {
		if g.ShouldAggregate() {
			summaries = append(summaries, g.Summarize())
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalUnits != summaries[j].TotalUnits {
			return summaries[i].TotalUnits > summaries[j].TotalUnits
		}
		return summaries[i].MainAddress < summaries[j].MainAddress
	})
	return summaries
}

func groupingAddress(res Result) string {
	if res.MainAddress != "" && res.UnitValue != "" && res.ApartmentType != "" {
		return fmt.Sprintf("%s %s %s", res.MainAddress, res.ApartmentType, res.UnitValue)
	}
	return res.Record.Address
}
