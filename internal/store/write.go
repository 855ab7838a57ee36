package store

import (
	"context"
	"fmt"

	"github.com/roach88/linecheck/internal/suite"
)

// RecordReport inserts a finished suite report and its outcomes in one
// transaction. The run's seq is one past the highest recorded so far.
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency - recording the same run ID
// twice leaves the first record untouched and returns nil.
func (s *Store) RecordReport(ctx context.Context, r *suite.Report) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record report: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, suite, started_at, duration_ms, passed, failed, errored)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.RunID,
		r.Suite,
		formatTime(r.StartedAt),
		r.Duration.Milliseconds(),
		r.Passed,
		r.Failed,
		r.Errored,
	)
	if err != nil {
		return fmt.Errorf("record report: insert run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record report: %w", err)
	}
	if n == 0 {
		return tx.Commit()
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outcomes
		(run_id, seq, case_name, variant, fixture, fixture_digest, status, reason, failure, detail, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("record report: prepare outcome: %w", err)
	}
	defer stmt.Close()

	for _, o := range r.Outcomes {
		failureJSON, err := marshalFailure(o.Failure)
		if err != nil {
			return fmt.Errorf("record report: outcome %d: %w", o.Seq, err)
		}
		if _, err := stmt.ExecContext(ctx,
			r.RunID,
			o.Seq,
			o.Case,
			o.Variant,
			o.Fixture,
			o.FixtureDigest,
			string(o.Status),
			o.Reason,
			failureJSON,
			o.Detail,
			o.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("record report: outcome %d: %w", o.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record report: commit: %w", err)
	}
	return nil
}
