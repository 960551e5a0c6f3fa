package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/apartment-accesscode/internal/batch"
	"github.com/apartment-accesscode/internal/classify"
	"github.com/apartment-accesscode/internal/reconcile"
)

// Store persists batch runs and per-address results so the web
// dashboard and the stats command can query past processing.
type Store struct {
	DB *sql.DB
}

// NewStore opens a Postgres connection from the given URL
func NewStore(databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)

	return &Store{DB: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.DB.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS batch_run (
	run_id           UUID PRIMARY KEY,
	input_file       TEXT NOT NULL,
	output_file      TEXT NOT NULL,
	started_at       TIMESTAMPTZ NOT NULL,
	finished_at      TIMESTAMPTZ NOT NULL,
	duration_ms      BIGINT NOT NULL,
	records          INTEGER NOT NULL,
	workers          INTEGER NOT NULL,
	total_processed  INTEGER NOT NULL,
	existing_matches INTEGER NOT NULL,
	placekey_matches INTEGER NOT NULL,
	both_matches     INTEGER NOT NULL,
	conflicts        INTEGER NOT NULL,
	api_errors       INTEGER NOT NULL,
	errors           INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS address_result (
	id                 BIGSERIAL PRIMARY KEY,
	run_id             UUID NOT NULL REFERENCES batch_run(run_id) ON DELETE CASCADE,
	position           INTEGER NOT NULL,
	address            TEXT NOT NULL,
	main_address       TEXT NOT NULL,
	has_apartment      BOOLEAN NOT NULL,
	apartment_type     TEXT NOT NULL,
	unit_value         TEXT NOT NULL,
	rule_is_apartment  BOOLEAN NOT NULL,
	rule_confidence    INTEGER NOT NULL,
	rule_keywords      TEXT NOT NULL,
	placekey           TEXT NOT NULL,
	placekey_success   BOOLEAN NOT NULL,
	access_code        TEXT NOT NULL,
	final_is_apartment BOOLEAN NOT NULL,
	final_confidence   INTEGER NOT NULL,
	final_keywords     TEXT NOT NULL,
	process_status     TEXT NOT NULL,
	conflict           BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_address_result_run ON address_result(run_id);
CREATE INDEX IF NOT EXISTS idx_address_result_main ON address_result(main_address);
`

// InitSchema creates the tables if they do not exist
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveRun stores one batch run and all of its results in a single
// transaction
func (s *Store) SaveRun(ctx context.Context, report *batch.Report, results []batch.Result) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batch_run (
			run_id, input_file, output_file, started_at, finished_at,
			duration_ms, records, workers, total_processed, existing_matches,
			placekey_matches, both_matches, conflicts, api_errors, errors
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		report.RunID, report.InputFile, report.OutputFile,
		report.StartedAt, report.FinishedAt, report.DurationMS,
		report.Records, report.Workers,
		report.Stats.TotalProcessed, report.Stats.ExistingMatches,
		report.Stats.PlacekeyMatches, report.Stats.BothMatches,
		report.Stats.Conflicts, report.Stats.APIErrors, report.Stats.Errors)
	if err != nil {
		return fmt.Errorf("failed to insert batch run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO address_result (
			run_id, position, address, main_address, has_apartment,
			apartment_type, unit_value, rule_is_apartment, rule_confidence,
			rule_keywords, placekey, placekey_success, access_code,
			final_is_apartment, final_confidence, final_keywords,
			process_status, conflict
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`)
	if err != nil {
		return fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range results {
		_, err = stmt.ExecContext(ctx,
			report.RunID, res.Index, res.Record.Address, res.MainAddress,
			res.HasApartment, res.ApartmentType, res.UnitValue,
			res.Rule.IsApartment, res.Rule.Confidence, res.Rule.Keywords,
			res.Placekey, res.PlacekeySuccess, res.AccessCode,
			res.Final.IsApartment, res.Final.Confidence, res.Final.Keywords,
			string(res.Final.Status), res.Final.Conflict)
		if err != nil {
			return fmt.Errorf("failed to insert result %d: %w", res.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// RunSummary is one row of the recent-runs listing
type RunSummary struct {
	RunID      string          `json:"run_id"`
	InputFile  string          `json:"input_file"`
	StartedAt  time.Time       `json:"started_at"`
	DurationMS int64           `json:"duration_ms"`
	Records    int             `json:"records"`
	Stats      reconcile.Stats `json:"stats"`
}

// RecentRuns lists the latest batch runs, newest first
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT run_id, input_file, started_at, duration_ms, records,
		       total_processed, existing_matches, placekey_matches,
		       both_matches, conflicts, api_errors, errors
		FROM batch_run
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		err := rows.Scan(&r.RunID, &r.InputFile, &r.StartedAt, &r.DurationMS,
			&r.Records, &r.Stats.TotalProcessed, &r.Stats.ExistingMatches,
			&r.Stats.PlacekeyMatches, &r.Stats.BothMatches,
			&r.Stats.Conflicts, &r.Stats.APIErrors, &r.Stats.Errors)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// StoredResult is one persisted address result
type StoredResult struct {
	RunID            string           `json:"run_id"`
	Position         int              `json:"position"`
	Address          string           `json:"address"`
	MainAddress      string           `json:"main_address"`
	HasApartment     bool             `json:"has_apartment"`
	ApartmentType    string           `json:"apartment_type"`
	UnitValue        string           `json:"unit_value"`
	RuleIsApartment  bool             `json:"rule_is_apartment"`
	RuleConfidence   int              `json:"rule_confidence"`
	RuleKeywords     string           `json:"rule_keywords"`
	Placekey         string           `json:"placekey"`
	PlacekeySuccess  bool             `json:"placekey_success"`
	AccessCode       string           `json:"access_code"`
	FinalIsApartment bool             `json:"final_is_apartment"`
	FinalConfidence  int              `json:"final_confidence"`
	FinalKeywords    string           `json:"final_keywords"`
	ProcessStatus    reconcile.Status `json:"process_status"`
	Conflict         bool             `json:"conflict"`
}

// storedResultColumns must list columns in the exact order
// scanStoredResult reads its destinations; every SELECT uses the pair
// together.
const storedResultColumns = `
	run_id, position, address, main_address, has_apartment,
	apartment_type, unit_value, rule_is_apartment, rule_confidence,
	rule_keywords, placekey, placekey_success, access_code,
	final_is_apartment, final_confidence, final_keywords,
	process_status, conflict`

func scanStoredResult(rows *sql.Rows) (StoredResult, error) {
	var r StoredResult
	err := rows.Scan(&r.RunID, &r.Position, &r.Address, &r.MainAddress,
		&r.HasApartment, &r.ApartmentType, &r.UnitValue,
		&r.RuleIsApartment, &r.RuleConfidence, &r.RuleKeywords,
		&r.Placekey, &r.PlacekeySuccess, &r.AccessCode,
		&r.FinalIsApartment, &r.FinalConfidence, &r.FinalKeywords,
		&r.ProcessStatus, &r.Conflict)
	return r, err
}

// RunResults pages through the results of one run in input order
func (s *Store) RunResults(ctx context.Context, runID string, limit, offset int) ([]StoredResult, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+storedResultColumns+`
		FROM address_result
		WHERE run_id = $1
		ORDER BY position
		LIMIT $2 OFFSET $3`, runID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query run results: %w", err)
	}
	defer rows.Close()

	var results []StoredResult
	for rows.Next() {
		r, err := scanStoredResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// SearchByAddress finds stored results whose address contains the given
// fragment, most recent first. Hierarchical input is reduced to its
// street segment before matching.
func (s *Store) SearchByAddress(ctx context.Context, fragment string, limit int) ([]StoredResult, error) {
	if limit <= 0 {
		limit = 50
	}
	fragment = classify.ExtractStreetSegment(fragment)

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+storedResultColumns+`
		FROM address_result
		WHERE main_address ILIKE '%' || $1 || '%' OR address ILIKE '%' || $1 || '%'
		ORDER BY id DESC
		LIMIT $2`, fragment, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search results: %w", err)
	}
	defer rows.Close()

	var results []StoredResult
	for rows.Next() {
		r, err := scanStoredResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Totals aggregates the stats columns across every stored run
func (s *Store) Totals(ctx context.Context) (reconcile.Stats, int, error) {
	var stats reconcile.Stats
	var runs int
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_processed), 0),
		       COALESCE(SUM(existing_matches), 0),
		       COALESCE(SUM(placekey_matches), 0),
		       COALESCE(SUM(both_matches), 0),
		       COALESCE(SUM(conflicts), 0),
		       COALESCE(SUM(api_errors), 0),
		       COALESCE(SUM(errors), 0)
		FROM batch_run`).Scan(&runs,
		&stats.TotalProcessed, &stats.ExistingMatches,
		&stats.PlacekeyMatches, &stats.BothMatches,
		&stats.Conflicts, &stats.APIErrors, &stats.Errors)
	if err != nil {
		return reconcile.Stats{}, 0, fmt.Errorf("failed to aggregate stats: %w", err)
	}
	return stats, runs, nil
}
