package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/apartment-accesscode/internal/classify"
	"github.com/apartment-accesscode/internal/config"
	"github.com/apartment-accesscode/internal/debug"
	"github.com/apartment-accesscode/internal/normalize"
	"github.com/apartment-accesscode/internal/placekey"
	"github.com/apartment-accesscode/internal/reconcile"
	"github.com/apartment-accesscode/internal/unit"
)

const localDebug = false

// Enricher is the slice of the placekey client the processor needs.
// *placekey.Client satisfies it.
type Enricher interface {
	Lookup(ctx context.Context, query placekey.AddressQuery) (placekey.EnrichmentResult, error)
}

// Processor runs the full pipeline over a batch of records: unit
// extraction, rule classification, maximization against any prior
// verdict, gated enrichment, and reconciliation.
type Processor struct {
	extractor  *unit.Extractor
	classifier *classify.Classifier
	enricher   Enricher
	workers    int
}

// NewProcessor wires the pipeline. A nil enricher disables the external
// lookup stage; everything else still runs.
func NewProcessor(settings *config.Settings, enricher Enricher) *Processor {
	workers := settings.MaxWorkers
	if workers <= 0 {
		workers = 1
	}
	return &Processor{
		extractor:  unit.NewExtractor(),
		classifier: classify.NewClassifier(),
		enricher:   enricher,
		workers:    workers,
	}
}

// Run processes all records with a bounded worker pool. Results come
// back indexed by input position no matter which worker finished first.
// Cancelling the context stops scheduling new records; records already
// in flight finish and keep their slots.
func (p *Processor) Run(ctx context.Context, records []Record) ([]Result, reconcile.Stats) {
	results := make([]Result, len(records))
	jobs := make(chan int)

	workerStats := make([]reconcile.Stats, p.workers)
	var wg sync.WaitGroup

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = p.processRecord(ctx, idx, records[idx], &workerStats[worker])
			}
		}(w)
	}

	processed := 0
scheduling:
	for i := range records {
		select {
		case <-ctx.Done():
			break scheduling
		case jobs <- i:
			processed++
			debug.Progress(localDebug, processed, len(records), 100)
		}
	}
	close(jobs)
	wg.Wait()

	// Per-worker accumulators merge associatively after the join
	var stats reconcile.Stats
	for _, ws := range workerStats {
		stats.Merge(ws)
	}
	return results, stats
}

// processRecord runs one record through the pipeline. Failures degrade
// to an error outcome in the record's slot; they never abort the batch.
// That includes a panic anywhere in the stages: the fault is caught
// here so one bad record cannot take a worker down with it.
func (p *Processor) processRecord(ctx context.Context, idx int, rec Record, stats *reconcile.Stats) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Index: idx, Record: rec}
			result.Final = reconcile.ErrorOutcome(fmt.Errorf("record fault: %v", r))
			stats.RecordError()
		}
	}()

	result = Result{Index: idx, Record: rec}

	if normalize.IsBlank(rec.Address) {
		result.Final = reconcile.ErrorOutcome(errors.New("blank address"))
		stats.RecordError()
		return result
	}

	street := classify.ExtractStreetSegment(rec.Address)

	// Unit extraction
	extraction := p.extractor.Extract(street)
	result.HasApartment = extraction.HasApartment
	result.MainAddress = extraction.MainAddress
	if extraction.Unit != nil {
		result.ApartmentType = extraction.Unit.Type
		result.UnitValue = extraction.Unit.Value
	}

	// Rule classification and maximization against any prior verdict
	ruleVerdict := p.classifier.Classify(rec.Address)
	result.Rule = reconcile.Verdict{
		IsApartment: ruleVerdict.IsApartment,
		Confidence:  ruleVerdict.Confidence,
		Keywords:    ruleVerdict.Keywords,
	}
	merged := reconcile.Maximize(rec.Prior, result.Rule)

	// Gated enrichment
	var external *reconcile.ExternalVerdict
	enrichedMatch := extraction.Unit
	if p.enricher != nil && reconcile.ShouldEnrich(merged) {
		query := placekey.AddressQuery{
			StreetAddress: normalize.StreetAddress(extraction.MainAddress),
			City:          normalize.Clean(rec.City),
			Region:        normalize.State(rec.Region),
			PostalCode:    normalize.Zipcode(rec.PostalCode),
		}
		if lat, lng, ok := rec.QueryCoordinates(); ok {
			query.Latitude = &lat
			query.Longitude = &lng
		}
		enriched, err := p.enricher.Lookup(ctx, query)
		if err != nil {
			stats.RecordAPIError()
		} else if enriched.Success {
			result.Placekey = enriched.Placekey
			result.PlacekeyConfidence = enriched.Confidence
			result.PlacekeySuccess = true

			// Re-run extraction over the service's matched address so
			// the external verdict reflects what the service resolved.
			source := enriched.MatchedAddress
			if source == "" {
				source = street
			}
			enhanced := p.extractor.Extract(source)
			result.MainAddressEnhanced = enhanced.MainAddress
			if enhanced.Unit != nil {
				result.ApartmentTypeEnhanced = enhanced.Unit.Type
				enrichedMatch = enhanced.Unit
			}
			external = &reconcile.ExternalVerdict{
				IsApartment:   enhanced.HasApartment,
				Confidence:    enhanced.Confidence,
				ApartmentType: result.ApartmentTypeEnhanced,
			}
		} else {
			stats.RecordAPIError()
		}
	}

	result.Final = reconcile.Integrate(merged, external)
	result.AccessCode = reconcile.ExtractAccessCode(enrichedMatch, merged.Keywords)
	stats.Record(merged, external, result.Final)
	return result
}
