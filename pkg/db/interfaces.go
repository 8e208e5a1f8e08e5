package db

import (
	"context"
	"errors"

	"github.com/jakechorley/dispatch-rota/pkg/core/model"
)

// ErrRunNotFound is returned when a schedule run ID does not exist
var ErrRunNotFound = errors.New("schedule run not found")

// InputStore defines the read-only catalog a schedule is generated from
type InputStore interface {
	GetEmployees(ctx context.Context) ([]model.Employee, error)
	GetShifts(ctx context.Context) ([]model.Shift, error)
	GetShiftPatterns(ctx context.Context) ([]model.ShiftPattern, error)
	GetEmployeePatterns(ctx context.Context) ([]model.EmployeePattern, error)
	GetStaffingRequirements(ctx context.Context) ([]model.StaffingRequirement, error)
}

// RunStore defines the interface for schedule run database operations
type RunStore interface {
	GetRun(ctx context.Context, runID string) (*Run, error)
	// InsertRunWithAssignments saves a run and its assignments atomically
	InsertRunWithAssignments(ctx context.Context, run *Run, assignments []Assignment) error
	SetRunStatus(ctx context.Context, runID string, status string) error
	GetAssignments(ctx context.Context, runID string) ([]Assignment, error)
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	InputStore
	RunStore
}
