package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/linecheck/internal/matcher"
	"github.com/roach88/linecheck/internal/suite"
)

// ErrRunNotFound is returned by ReadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is a recorded suite run.
type Run struct {
	ID        string        `json:"id"`
	Seq       int64         `json:"seq"`
	Suite     string        `json:"suite"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Errored   int           `json:"errored"`
}

// Outcome is a recorded case variant result.
type Outcome struct {
	RunID     string    `json:"run_id"`
	RunSeq    int64     `json:"run_seq"`
	StartedAt time.Time `json:"started_at"`

	Seq     int    `json:"seq"`
	Case    string `json:"case"`
	Variant string `json:"variant"`

	Fixture       string           `json:"fixture"`
	FixtureDigest string           `json:"fixture_digest,omitempty"`
	Status        suite.Status     `json:"status"`
	Reason        string           `json:"reason,omitempty"`
	Failure       *matcher.Failure `json:"failure,omitempty"`
	Detail        string           `json:"detail,omitempty"`
	Duration      time.Duration    `json:"duration_ns"`
}

const runColumns = `id, seq, suite, started_at, duration_ms, passed, failed, errored`

// ListRuns returns the most recent limit runs, oldest first. A limit below 1
// returns every run.
//
// Returns an empty slice (not nil) if no runs are recorded.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = -1
	}
	// Deterministic ordering - ORDER BY seq ASC, id COLLATE BINARY ASC
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM (
			SELECT `+runColumns+` FROM runs
			ORDER BY seq DESC, id COLLATE BINARY DESC
			LIMIT ?
		)
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns one run by ID.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

const outcomeQuery = `
	SELECT o.run_id, r.seq, r.started_at,
	       o.seq, o.case_name, o.variant, o.fixture, o.fixture_digest, o.status, o.reason, o.failure, o.detail, o.duration_ms
	FROM outcomes o
	JOIN runs r ON o.run_id = r.id
`

// ReadOutcomes returns every outcome of a run in report order.
//
// Returns an empty slice (not nil) if the run has no outcomes.
func (s *Store) ReadOutcomes(ctx context.Context, runID string) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx, outcomeQuery+`
		WHERE o.run_id = ?
		ORDER BY o.seq ASC, o.run_id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	return collectOutcomes(rows)
}

// CaseHistory returns the most recent limit outcomes of one case variant
// across runs, oldest first. A limit below 1 returns all of them.
func (s *Store) CaseHistory(ctx context.Context, caseName, variant string, limit int) ([]Outcome, error) {
	if limit < 1 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT * FROM (`+outcomeQuery+`
			WHERE o.case_name = ? AND o.variant = ?
			ORDER BY r.seq DESC, o.run_id COLLATE BINARY DESC
			LIMIT ?
		)
		ORDER BY 2 ASC, 1 COLLATE BINARY ASC
	`, caseName, variant, limit)
	if err != nil {
		return nil, fmt.Errorf("query case history: %w", err)
	}
	return collectOutcomes(rows)
}

func collectOutcomes(rows *sql.Rows) ([]Outcome, error) {
	defer rows.Close()

	outcomes := []Outcome{}
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return outcomes, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r          Run
		startedAt  string
		durationMs int64
	)
	if err := sc.Scan(&r.ID, &r.Seq, &r.Suite, &startedAt, &durationMs, &r.Passed, &r.Failed, &r.Errored); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	t, err := parseTime(startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("scan run %s: %w", r.ID, err)
	}
	r.StartedAt = t
	r.Duration = time.Duration(durationMs) * time.Millisecond
	return r, nil
}

func scanOutcome(sc scanner) (Outcome, error) {
	var (
		o           Outcome
		startedAt   string
		status      string
		failureJSON sql.NullString
		durationMs  int64
	)
	if err := sc.Scan(
		&o.RunID, &o.RunSeq, &startedAt,
		&o.Seq, &o.Case, &o.Variant, &o.Fixture, &o.FixtureDigest, &status, &o.Reason, &failureJSON, &o.Detail, &durationMs,
	); err != nil {
		return Outcome{}, fmt.Errorf("scan outcome: %w", err)
	}

	t, err := parseTime(startedAt)
	if err != nil {
		return Outcome{}, fmt.Errorf("scan outcome: %w", err)
	}
	o.StartedAt = t

	if o.Failure, err = unmarshalFailure(failureJSON); err != nil {
		return Outcome{}, fmt.Errorf("scan outcome: %w", err)
	}
	o.Status = suite.Status(status)
	o.Duration = time.Duration(durationMs) * time.Millisecond
	return o, nil
}
