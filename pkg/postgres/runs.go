package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/dispatch-rota/pkg/db"
)

// GetRun retrieves a single schedule run
func (d *DB) GetRun(ctx context.Context, runID string) (*db.Run, error) {
	var r db.Run
	var startDate, endDate, generatedAt time.Time
	err := d.pool.QueryRow(ctx, `
		SELECT id, start_date, end_date, success, status, generated_at
		FROM schedule_runs
		WHERE id = $1
	`, runID).Scan(&r.ID, &startDate, &endDate, &r.Success, &r.Status, &generatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule run: %w", err)
	}

	r.StartDate = startDate.Format(dateLayout)
	r.EndDate = endDate.Format(dateLayout)
	r.GeneratedAt = generatedAt.UTC().Format(time.RFC3339)
	return &r, nil
}

// InsertRunWithAssignments saves a run and its assignments in one transaction, so a failed
// assignment write leaves no run behind
func (d *DB) InsertRunWithAssignments(ctx context.Context, run *db.Run, assignments []db.Assignment) error {
	generatedAt := time.Now().UTC()
	if run.GeneratedAt != "" {
		parsed, err := time.Parse(time.RFC3339, run.GeneratedAt)
		if err != nil {
			return fmt.Errorf("invalid generated_at %q: %w", run.GeneratedAt, err)
		}
		generatedAt = parsed
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO schedule_runs (id, start_date, end_date, success, status, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, run.ID, run.StartDate, run.EndDate, run.Success, run.Status, generatedAt); err != nil {
		return fmt.Errorf("failed to insert schedule run: %w", err)
	}

	if len(assignments) > 0 {
		batch := &pgx.Batch{}
		for _, a := range assignments {
			batch.Queue(`
				INSERT INTO schedule_assignments (id, run_id, employee_id, shift_id, date, status)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, a.ID, a.RunID, a.EmployeeID, a.ShiftID, a.Date, a.Status)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert assignments: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SetRunStatus updates the status of a run and all of its assignments
func (d *DB) SetRunStatus(ctx context.Context, runID string, status string) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE schedule_runs SET status = $2 WHERE id = $1`, runID, status)
	if err != nil {
		return fmt.Errorf("failed to update schedule run status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}

	if _, err := tx.Exec(ctx, `UPDATE schedule_assignments SET status = $2 WHERE run_id = $1`, runID, status); err != nil {
		return fmt.Errorf("failed to update assignment status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetAssignments retrieves the assignments of a run ordered by employee then date
func (d *DB) GetAssignments(ctx context.Context, runID string) ([]db.Assignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, run_id, employee_id, shift_id, date, status
		FROM schedule_assignments
		WHERE run_id = $1
		ORDER BY employee_id, date
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		var a db.Assignment
		var date time.Time
		if err := rows.Scan(&a.ID, &a.RunID, &a.EmployeeID, &a.ShiftID, &date, &a.Status); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.Date = date.Format(dateLayout)
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}
