package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jakechorley/dispatch-rota/internal/config"
	"github.com/jakechorley/dispatch-rota/pkg/core/coverage"
	"github.com/jakechorley/dispatch-rota/pkg/core/generator"
	"github.com/jakechorley/dispatch-rota/pkg/core/model"
	"github.com/jakechorley/dispatch-rota/pkg/core/validation"
	"github.com/jakechorley/dispatch-rota/pkg/db"
)

// RunReader defines the database operations needed to inspect a stored run
type RunReader interface {
	db.InputStore
	GetRun(ctx context.Context, runID string) (*db.Run, error)
	GetAssignments(ctx context.Context, runID string) ([]db.Assignment, error)
}

// ApproveRunStore defines the database operations needed to approve a run
type ApproveRunStore interface {
	GetRun(ctx context.Context, runID string) (*db.Run, error)
	SetRunStatus(ctx context.Context, runID string, status string) error
}

// storedRun is a persisted run together with the catalog it is interpreted against
type storedRun struct {
	run         *db.Run
	assignments []model.ScheduleAssignment
	input       generator.Input
	catalog     *model.Catalog
	dates       []string
}

// loadRun fetches a run, its assignments and the current catalog, with requirement overrides
// expanded over the run window
func loadRun(ctx context.Context, store RunReader, cfg *config.Config, logger *zap.Logger, runID string) (*storedRun, error) {
	logger.Debug("Fetching schedule run", zap.String("run_id", runID))
	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule run: %w", err)
	}

	start, end, err := window(run.StartDate, run.EndDate)
	if err != nil {
		return nil, fmt.Errorf("run %s has an invalid window: %w", run.ID, err)
	}

	records, err := store.GetAssignments(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	input, err := loadInput(ctx, store, logger)
	if err != nil {
		return nil, err
	}

	input.StaffingRequirements, err = applyRequirementOverrides(input.StaffingRequirements, cfg.RequirementOverrides, start, end, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to convert requirement overrides: %w", err)
	}

	logger.Debug("Loaded schedule run",
		zap.String("run_id", run.ID),
		zap.String("status", run.Status),
		zap.Int("assignments", len(records)))

	return &storedRun{
		run:         run,
		assignments: db.ToModelAssignments(records),
		input:       input,
		catalog:     model.NewCatalog(input.Employees, input.Shifts, input.Patterns),
		dates:       windowDates(start, end),
	}, nil
}

// scheduledEmployees returns the catalog employees that appear in the run
func (s *storedRun) scheduledEmployees() []model.Employee {
	assigned := make(map[string]bool)
	for _, a := range s.assignments {
		assigned[a.EmployeeID] = true
	}

	var employees []model.Employee
	for _, e := range s.input.Employees {
		if assigned[e.ID] {
			employees = append(employees, e)
		}
	}
	return employees
}

// coverage tallies every date of the run window, dropping the spill of overnight shifts past its end
func (s *storedRun) coverage(logger *zap.Logger) (map[string]*model.CoverageReport, error) {
	var schedules []coverage.Schedule
	for _, a := range s.assignments {
		employee, okEmployee := s.catalog.Employees[a.EmployeeID]
		shift, okShift := s.catalog.Shifts[a.ShiftID]
		if !okEmployee || !okShift {
			logger.Warn("Skipping assignment with unknown reference",
				zap.String("employee_id", a.EmployeeID),
				zap.String("shift_id", a.ShiftID),
				zap.String("date", a.Date))
			continue
		}
		schedules = append(schedules, coverage.Schedule{Assignment: a, Shift: shift, Employee: employee})
	}

	reports, err := coverage.CalculateCoverage(schedules, s.input.StaffingRequirements)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate coverage: %w", err)
	}
	coverage.EnsureDates(reports, s.input.StaffingRequirements, s.dates)

	for date := range reports {
		if date < s.run.StartDate || date > s.run.EndDate {
			delete(reports, date)
		}
	}
	return reports, nil
}

// ValidateRun revalidates a stored run against the current catalog and configuration.
// Pattern compliance is checked for the employees who appear in the run.
func ValidateRun(ctx context.Context, store RunReader, cfg *config.Config, logger *zap.Logger, runID string) (*validation.Result, error) {
	stored, err := loadRun(ctx, store, cfg, logger, runID)
	if err != nil {
		return nil, err
	}

	result, err := validation.ValidateSchedule(
		stored.assignments,
		stored.scheduledEmployees(),
		stored.input.EmployeePatterns,
		stored.input.Patterns,
		stored.input.Shifts,
		stored.input.StaffingRequirements,
		validation.Options{
			MinimumRestHours:       cfg.MinimumRestHours,
			MaximumConsecutiveDays: cfg.MaximumConsecutiveDays,
			StartDate:              stored.run.StartDate,
			EndDate:                stored.run.EndDate,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate run %s: %w", stored.run.ID, err)
	}

	logger.Info("Validated schedule run",
		zap.String("run_id", stored.run.ID),
		zap.Bool("valid", result.IsValid),
		zap.Int("errors", len(result.Errors)),
		zap.Int("warnings", len(result.Warnings)))

	return result, nil
}

// CoverageResult is the per-date coverage of a stored run
type CoverageResult struct {
	Run     *db.Run
	Dates   []string
	Reports map[string]*model.CoverageReport
	Periods []string
	Gaps    []coverage.Gap
}

// RunCoverage calculates coverage for every date of a stored run
func RunCoverage(ctx context.Context, store RunReader, cfg *config.Config, logger *zap.Logger, runID string) (*CoverageResult, error) {
	stored, err := loadRun(ctx, store, cfg, logger, runID)
	if err != nil {
		return nil, err
	}

	reports, err := stored.coverage(logger)
	if err != nil {
		return nil, err
	}

	gaps := coverage.Gaps(reports, stored.input.StaffingRequirements)
	logger.Info("Calculated coverage",
		zap.String("run_id", stored.run.ID),
		zap.Int("dates", len(stored.dates)),
		zap.Int("gaps", len(gaps)))

	return &CoverageResult{
		Run:     stored.run,
		Dates:   stored.dates,
		Reports: reports,
		Periods: periodKeys(stored.input.StaffingRequirements),
		Gaps:    gaps,
	}, nil
}

// periodKeys returns the distinct requirement periods in start time order
func periodKeys(requirements []model.StaffingRequirement) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, req := range requirements {
		if !seen[req.PeriodKey()] {
			seen[req.PeriodKey()] = true
			keys = append(keys, req.PeriodKey())
		}
	}
	sort.Strings(keys)
	return keys
}

// ApproveRun marks a pending_review run and its assignments as scheduled
func ApproveRun(ctx context.Context, store ApproveRunStore, logger *zap.Logger, runID string) (*db.Run, error) {
	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule run: %w", err)
	}

	if run.Status == db.RunStatusScheduled {
		logger.Info("Run is already scheduled", zap.String("run_id", run.ID))
		return run, nil
	}

	if err := store.SetRunStatus(ctx, run.ID, db.RunStatusScheduled); err != nil {
		return nil, fmt.Errorf("failed to approve run: %w", err)
	}

	logger.Info("Approved schedule run", zap.String("run_id", run.ID), zap.String("previous_status", run.Status))
	run.Status = db.RunStatusScheduled
	return run, nil
}
