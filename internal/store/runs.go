package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/seqharness/internal/trace"
)

// Run is one recorded scenario execution.
type Run struct {
	ID       string
	Seq      int64
	Scenario string
	Pass     bool
	Path     string
	Errors   []string

	// Events is empty for runs returned by ListRuns.
	Events []trace.Event
}

// WriteRun appends run and its events in one transaction. ID and Seq are
// assigned by the store and set on run.
func (s *Store) WriteRun(ctx context.Context, run *Run) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	errs := make([]any, len(run.Errors))
	for i, e := range run.Errors {
		errs[i] = e
	}
	errsJSON, err := trace.Marshal(errs)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, scenario, pass, path, errors)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id.String(), seq, run.Scenario, run.Pass, run.Path, string(errsJSON))
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (run_id, seq, type, method, path, request, outcome, status, body, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer stmt.Close()

	for _, ev := range run.Events {
		_, err := stmt.ExecContext(ctx, id.String(), ev.Seq, ev.Type, ev.Method, ev.Path,
			ev.Request, ev.Outcome, ev.Status, ev.Body, ev.Detail)
		if err != nil {
			return fmt.Errorf("write run: event %d: %w", ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	run.ID = id.String()
	run.Seq = seq
	return nil
}

// ReadRun returns a run with its events, or ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, scenario, pass, path, errors FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, type, method, path, request, outcome, status, body, detail
		FROM events WHERE run_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("read run %s events: %w", id, err)
	}
	defer rows.Close()

	run.Events = []trace.Event{}
	for rows.Next() {
		var ev trace.Event
		if err := rows.Scan(&ev.Seq, &ev.Type, &ev.Method, &ev.Path, &ev.Request,
			&ev.Outcome, &ev.Status, &ev.Body, &ev.Detail); err != nil {
			return nil, fmt.Errorf("read run %s events: %w", id, err)
		}
		run.Events = append(run.Events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read run %s events: %w", id, err)
	}
	return run, nil
}

// ListRuns returns runs without events, oldest first. A non-empty scenario
// restricts the list to that scenario.
func (s *Store) ListRuns(ctx context.Context, scenario string) ([]Run, error) {
	query := `SELECT id, seq, scenario, pass, path, errors FROM runs`
	var args []any
	if scenario != "" {
		query += ` WHERE scenario = ?`
		args = append(args, scenario)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recent run of scenario, or ErrNotFound.
func (s *Store) LatestRun(ctx context.Context, scenario string) (*Run, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM runs WHERE scenario = ? ORDER BY seq DESC LIMIT 1
	`, scenario).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest run of %s: %w", scenario, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest run of %s: %w", scenario, err)
	}
	return s.ReadRun(ctx, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var run Run
	var errsJSON string
	if err := sc.Scan(&run.ID, &run.Seq, &run.Scenario, &run.Pass, &run.Path, &errsJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(errsJSON), &run.Errors); err != nil {
		return nil, fmt.Errorf("decode errors: %w", err)
	}
	return &run, nil
}
