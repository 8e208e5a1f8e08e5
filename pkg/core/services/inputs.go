package services

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/dispatch-rota/internal/config"
	"github.com/jakechorley/dispatch-rota/pkg/core/generator"
	"github.com/jakechorley/dispatch-rota/pkg/core/model"
	"github.com/jakechorley/dispatch-rota/pkg/core/timeutil"
	"github.com/jakechorley/dispatch-rota/pkg/db"
)

// loadInput fetches the five catalog collections concurrently
func loadInput(ctx context.Context, store db.InputStore, logger *zap.Logger) (generator.Input, error) {
	var input generator.Input
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		employees, err := store.GetEmployees(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch employees: %w", err)
		}
		input.Employees = employees
		return nil
	})
	g.Go(func() error {
		shifts, err := store.GetShifts(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch shifts: %w", err)
		}
		input.Shifts = shifts
		return nil
	})
	g.Go(func() error {
		patterns, err := store.GetShiftPatterns(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch shift patterns: %w", err)
		}
		input.Patterns = patterns
		return nil
	})
	g.Go(func() error {
		bindings, err := store.GetEmployeePatterns(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch employee patterns: %w", err)
		}
		input.EmployeePatterns = bindings
		return nil
	})
	g.Go(func() error {
		requirements, err := store.GetStaffingRequirements(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch staffing requirements: %w", err)
		}
		input.StaffingRequirements = requirements
		return nil
	})

	if err := g.Wait(); err != nil {
		return generator.Input{}, err
	}

	logger.Debug("Loaded schedule inputs",
		zap.Int("employees", len(input.Employees)),
		zap.Int("shifts", len(input.Shifts)),
		zap.Int("patterns", len(input.Patterns)),
		zap.Int("employee_patterns", len(input.EmployeePatterns)),
		zap.Int("requirements", len(input.StaffingRequirements)))

	return input, nil
}

// applyRequirementOverrides returns a copy of requirements with the configured minimum overrides attached.
// Recurrence rules are expanded once over the run window, padded by a week on either side.
func applyRequirementOverrides(
	requirements []model.StaffingRequirement,
	overrides []config.RequirementOverride,
	start, end time.Time,
	logger *zap.Logger,
) ([]model.StaffingRequirement, error) {
	result := make([]model.StaffingRequirement, len(requirements))
	index := make(map[string]int, len(requirements))
	for i, req := range requirements {
		req.Overrides = append([]model.MinimumOverride(nil), req.Overrides...)
		result[i] = req
		index[req.ID] = i
	}

	searchStart := start.AddDate(0, 0, -7)
	searchEnd := end.AddDate(0, 0, 7)

	for i, override := range overrides {
		target, ok := index[override.RequirementID]
		if !ok {
			logger.Warn("Ignoring override for unknown staffing requirement",
				zap.Int("index", i),
				zap.String("requirement_id", override.RequirementID))
			continue
		}

		rule, err := rrule.StrToRRule(override.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for override %d: %w", i, err)
		}
		rule.DTStart(searchStart)

		matches := make(map[string]bool)
		for _, occurrence := range rule.Between(searchStart, searchEnd, true) {
			matches[timeutil.FormatDate(occurrence)] = true
		}

		result[target].Overrides = append(result[target].Overrides, model.MinimumOverride{
			AppliesTo:        func(date string) bool { return matches[date] },
			MinimumEmployees: override.MinimumEmployees,
		})

		logger.Debug("Converted override",
			zap.Int("index", i),
			zap.String("requirement_id", override.RequirementID),
			zap.String("rrule", override.RRule),
			zap.Int("matching_dates", len(matches)),
			zap.Int("minimum_employees", override.MinimumEmployees))
	}

	return result, nil
}

// window parses an inclusive YYYY-MM-DD range
func window(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := timeutil.ParseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := timeutil.ParseDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s", endDate, startDate)
	}
	return start, end, nil
}

func windowDates(start, end time.Time) []string {
	var dates []string
	for _, d := range timeutil.DateRange(start, end) {
		dates = append(dates, timeutil.FormatDate(d))
	}
	return dates
}
