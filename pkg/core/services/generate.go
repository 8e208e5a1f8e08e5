package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/dispatch-rota/internal/config"
	"github.com/jakechorley/dispatch-rota/pkg/core/generator"
	"github.com/jakechorley/dispatch-rota/pkg/core/model"
	"github.com/jakechorley/dispatch-rota/pkg/db"
)

// GenerateScheduleStore defines the database operations needed to generate and persist a schedule
type GenerateScheduleStore interface {
	db.InputStore
	InsertRunWithAssignments(ctx context.Context, run *db.Run, assignments []db.Assignment) error
}

// GenerateRequest describes one generation run
type GenerateRequest struct {
	StartDate          string
	EndDate            string
	IncludeEmployeeIDs []string
	ExcludeEmployeeIDs []string
	// Force persists a schedule that failed validation, marked pending_review
	Force bool
	// DryRun generates and reports without persisting anything
	DryRun bool
}

// GenerateResult is the outcome of GenerateSchedule. Run is nil when nothing was saved.
type GenerateResult struct {
	Run        *db.Run
	Scheduling *generator.SchedulingResult
}

// GenerateSchedule loads the catalog, generates a schedule for the requested window and saves it.
// A schedule that fails validation is only saved when Force is set, in which case the run and its
// assignments are marked pending_review.
func GenerateSchedule(
	ctx context.Context,
	store GenerateScheduleStore,
	cfg *config.Config,
	logger *zap.Logger,
	req GenerateRequest,
) (*GenerateResult, error) {
	logger.Debug("Starting generateSchedule",
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Bool("force", req.Force),
		zap.Bool("dry_run", req.DryRun))

	start, end, err := window(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	input, err := loadInput(ctx, store, logger)
	if err != nil {
		return nil, err
	}

	input.StaffingRequirements, err = applyRequirementOverrides(input.StaffingRequirements, cfg.RequirementOverrides, start, end, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to convert requirement overrides: %w", err)
	}

	gen := generator.NewScheduleGenerator(input, generator.Options{
		StartDate:              req.StartDate,
		EndDate:                req.EndDate,
		MinimumRestHours:       cfg.MinimumRestHours,
		MaximumConsecutiveDays: cfg.MaximumConsecutiveDays,
		IncludeEmployeeIDs:     req.IncludeEmployeeIDs,
		ExcludeEmployeeIDs:     req.ExcludeEmployeeIDs,
	}, logger, generator.WithWeights(generator.Weights{
		Base:            cfg.Weights.Base,
		PreferenceBonus: cfg.Weights.PreferenceBonus,
		CoverageBonus:   cfg.Weights.CoverageBonus,
	}))

	logger.Info("Running schedule generator")
	scheduling, err := gen.GenerateSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("schedule generation failed: %w", err)
	}

	for _, verr := range scheduling.Validation.Errors {
		logger.Warn("Validation error",
			zap.String("code", string(verr.Code)),
			zap.String("employee_id", verr.Details.EmployeeID),
			zap.String("date", verr.Details.Date),
			zap.String("message", verr.Message))
	}

	result := &GenerateResult{Scheduling: scheduling}

	shouldSave := !req.DryRun && (scheduling.Success || req.Force)
	if !shouldSave {
		if req.DryRun {
			logger.Info("Dry run, schedule not saved")
		} else {
			logger.Warn("Schedule failed validation and was not saved; use --force to save it for review",
				zap.Int("errors", len(scheduling.Errors)))
		}
		return result, nil
	}

	status := model.StatusScheduled
	if !scheduling.Success {
		status = model.StatusPendingReview
	}

	run := &db.Run{
		ID:          uuid.New().String(),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Success:     scheduling.Success,
		Status:      string(status),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	records := make([]db.Assignment, 0, len(scheduling.Assignments))
	for _, a := range scheduling.Assignments {
		records = append(records, db.Assignment{
			ID:         uuid.New().String(),
			RunID:      run.ID,
			EmployeeID: a.EmployeeID,
			ShiftID:    a.ShiftID,
			Date:       a.Date,
			Status:     string(status),
		})
	}

	if err := store.InsertRunWithAssignments(ctx, run, records); err != nil {
		return nil, fmt.Errorf("failed to save schedule run: %w", err)
	}
	for i := range scheduling.Assignments {
		scheduling.Assignments[i].Status = status
	}

	logger.Info("Saved schedule run",
		zap.String("run_id", run.ID),
		zap.String("status", run.Status),
		zap.Int("assignments", len(records)))

	result.Run = run
	return result, nil
}
