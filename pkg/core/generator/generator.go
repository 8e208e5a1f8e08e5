package generator

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/dispatch-rota/pkg/core/coverage"
	"github.com/jakechorley/dispatch-rota/pkg/core/model"
	"github.com/jakechorley/dispatch-rota/pkg/core/timeutil"
	"github.com/jakechorley/dispatch-rota/pkg/core/validation"
)

// ScheduleGenerator builds the schedule for a single run. It is not safe for concurrent use.
type ScheduleGenerator struct {
	input   Input
	opts    Options
	weights Weights
	logger  *zap.Logger
	catalog *model.Catalog

	// employees is the filtered set, in input order
	employees   []model.Employee
	assignments []model.ScheduleAssignment
	unassigned  []UnassignedShift
	warnings    []string
}

// NewScheduleGenerator creates a generator for one run. A nil logger disables logging.
func NewScheduleGenerator(input Input, opts Options, logger *zap.Logger, options ...GeneratorOption) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &ScheduleGenerator{
		input:   input,
		opts:    opts.withDefaults(),
		weights: DefaultWeights(),
		logger:  logger,
		catalog: model.NewCatalog(input.Employees, input.Shifts, input.Patterns),
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// GenerateSchedule runs the generation phases: filter employees, assign each rotation working day its
// best shift, repair understaffed periods, improve the schedule with pairwise swaps, then validate.
// An infeasible schedule is reported through the result; an error is returned only for malformed
// input or a cancelled context.
func (g *ScheduleGenerator) GenerateSchedule(ctx context.Context) (*SchedulingResult, error) {
	g.assignments = nil
	g.unassigned = nil
	g.warnings = nil

	start, end, err := g.checkInput()
	if err != nil {
		return nil, err
	}

	g.filterEmployees()
	g.logger.Debug("Filtered employees",
		zap.Int("total", len(g.input.Employees)),
		zap.Int("included", len(g.employees)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := g.assignInitial(start, end); err != nil {
		return nil, err
	}
	g.logger.Debug("Initial assignment complete",
		zap.Int("assignments", len(g.assignments)),
		zap.Int("unassigned", len(g.unassigned)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := g.repairCoverage(ctx); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := g.optimize(ctx); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := g.finalize()
	if err != nil {
		return nil, err
	}

	g.logger.Info("Schedule generated",
		zap.String("start_date", g.opts.StartDate),
		zap.String("end_date", g.opts.EndDate),
		zap.Bool("success", result.Success),
		zap.Int("assignments", len(result.Assignments)),
		zap.Int("unassigned", len(result.UnassignedShifts)),
		zap.Int("coverage_gaps", len(result.CoverageGaps)),
		zap.Int("errors", len(result.Errors)),
		zap.Int("warnings", len(result.Warnings)))

	return result, nil
}

// checkInput parses the run window and every time of day up front so later phases never
// meet a malformed value
func (g *ScheduleGenerator) checkInput() (string, string, error) {
	start, err := timeutil.ParseDate(g.opts.StartDate)
	if err != nil {
		return "", "", fmt.Errorf("invalid start date: %w", err)
	}
	end, err := timeutil.ParseDate(g.opts.EndDate)
	if err != nil {
		return "", "", fmt.Errorf("invalid end date: %w", err)
	}
	if end.Before(start) {
		return "", "", fmt.Errorf("end date %s is before start date %s", g.opts.EndDate, g.opts.StartDate)
	}

	for _, shift := range g.input.Shifts {
		if _, err := timeutil.CrossesMidnight(shift.StartTime, shift.EndTime); err != nil {
			return "", "", fmt.Errorf("shift %s: %w", shift.ID, err)
		}
	}
	for _, req := range g.input.StaffingRequirements {
		if _, err := timeutil.CrossesMidnight(req.StartTime, req.EndTime); err != nil {
			return "", "", fmt.Errorf("staffing requirement %s: %w", req.ID, err)
		}
	}

	return g.opts.StartDate, g.opts.EndDate, nil
}

func (g *ScheduleGenerator) filterEmployees() {
	g.employees = make([]model.Employee, 0, len(g.input.Employees))
	for _, e := range g.input.Employees {
		if len(g.opts.IncludeEmployeeIDs) > 0 && !slices.Contains(g.opts.IncludeEmployeeIDs, e.ID) {
			continue
		}
		if slices.Contains(g.opts.ExcludeEmployeeIDs, e.ID) {
			continue
		}
		g.employees = append(g.employees, e)
	}
}

// shiftsTaken returns the IDs of shifts already assigned to anyone on the date
func (g *ScheduleGenerator) shiftsTaken(date string) map[string]bool {
	taken := make(map[string]bool)
	for _, a := range g.assignments {
		if a.Date == date {
			taken[a.ShiftID] = true
		}
	}
	return taken
}

func (g *ScheduleGenerator) assign(employeeID, shiftID, date string) {
	g.assignments = append(g.assignments, model.ScheduleAssignment{
		EmployeeID: employeeID,
		ShiftID:    shiftID,
		Date:       date,
		Status:     model.StatusScheduled,
	})
}

// assignInitial walks each employee's rotation working days and gives each day the best shift
// nobody has taken yet that day. An employee whose bindings change within the run is scheduled
// under each binding for the part of the run it covers.
func (g *ScheduleGenerator) assignInitial(start, end string) error {
	for _, employee := range g.employees {
		bindings := model.ActivePatterns(g.input.EmployeePatterns, employee.ID, start, end)
		if len(bindings) == 0 {
			g.logger.Debug("Employee has no active pattern", zap.String("employee_id", employee.ID))
			continue
		}

		for _, binding := range bindings {
			if err := g.assignBinding(employee, binding, start, end); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *ScheduleGenerator) assignBinding(employee model.Employee, binding model.EmployeePattern, start, end string) error {
	pattern, ok := g.catalog.Patterns[binding.PatternID]
	if !ok {
		g.warnings = append(g.warnings,
			fmt.Sprintf("Employee %s is bound to unknown pattern %s", employee.ID, binding.PatternID))
		return nil
	}

	workingDays, err := g.workingDays(binding, pattern, start, end)
	if err != nil {
		return err
	}

	for _, day := range workingDays {
		date := timeutil.FormatDate(day)

		// Where bindings overlap, the first one in effect on the date decides
		if current, _, ok := g.activePattern(employee.ID, date); !ok || current.ID != binding.ID {
			continue
		}

		taken := g.shiftsTaken(date)
		candidates := make([]model.Shift, 0, len(g.input.Shifts))
		for _, shift := range g.input.Shifts {
			if !taken[shift.ID] {
				candidates = append(candidates, shift)
			}
		}

		shift, score, err := g.bestShift(candidates, employee, date)
		if err != nil {
			return err
		}
		if score <= 0 {
			reason := "no shift satisfies the pattern and rest constraints"
			if len(candidates) == 0 {
				reason = "every shift is already assigned on this date"
			}
			g.unassigned = append(g.unassigned, UnassignedShift{EmployeeID: employee.ID, Date: date, Reason: reason})
			continue
		}

		g.assign(employee.ID, shift.ID, date)
	}
	return nil
}

// workingDays returns the binding's rotation working days within the run window, clipped to the
// binding's effective range
func (g *ScheduleGenerator) workingDays(binding model.EmployeePattern, pattern model.ShiftPattern, start, end string) ([]time.Time, error) {
	from, to := start, end
	if binding.EffectiveFrom != "" && binding.EffectiveFrom > from {
		from = binding.EffectiveFrom
	}
	if binding.EffectiveTo != "" && binding.EffectiveTo < to {
		to = binding.EffectiveTo
	}

	fromDate, err := timeutil.ParseDate(from)
	if err != nil {
		return nil, fmt.Errorf("pattern binding %s: %w", binding.ID, err)
	}
	toDate, err := timeutil.ParseDate(to)
	if err != nil {
		return nil, fmt.Errorf("pattern binding %s: %w", binding.ID, err)
	}
	rotationStart, err := timeutil.ParseDate(binding.RotationStartDate)
	if err != nil {
		return nil, fmt.Errorf("pattern binding %s: %w", binding.ID, err)
	}

	return timeutil.CalculateWorkingDays(fromDate, toDate, rotationStart, pattern.DaysOn, pattern.DaysOff), nil
}

// finalize validates the schedule and assembles the result in deterministic order
func (g *ScheduleGenerator) finalize() (*SchedulingResult, error) {
	sortAssignments(g.assignments)
	sort.SliceStable(g.unassigned, func(i, j int) bool {
		if g.unassigned[i].EmployeeID != g.unassigned[j].EmployeeID {
			return g.unassigned[i].EmployeeID < g.unassigned[j].EmployeeID
		}
		return g.unassigned[i].Date < g.unassigned[j].Date
	})

	result, err := validation.ValidateSchedule(
		g.assignments,
		g.employees,
		g.input.EmployeePatterns,
		g.input.Patterns,
		g.input.Shifts,
		g.input.StaffingRequirements,
		validation.Options{
			MinimumRestHours:       g.opts.MinimumRestHours,
			MaximumConsecutiveDays: g.opts.MaximumConsecutiveDays,
			StartDate:              g.opts.StartDate,
			EndDate:                g.opts.EndDate,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate schedule: %w", err)
	}

	gaps, err := g.coverageGaps()
	if err != nil {
		return nil, err
	}

	warnings := append([]string{}, g.warnings...)
	for _, w := range result.Warnings {
		warnings = append(warnings, w.Message)
	}
	errs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, e.Message)
	}

	return &SchedulingResult{
		Success:          result.IsValid,
		Assignments:      g.assignments,
		UnassignedShifts: g.unassigned,
		CoverageGaps:     gaps,
		Warnings:         warnings,
		Errors:           errs,
		Validation:       result,
	}, nil
}

// coverageGaps lists understaffed periods on every date of the run window, including dates nobody works
func (g *ScheduleGenerator) coverageGaps() ([]coverage.Gap, error) {
	var schedules []coverage.Schedule
	for _, a := range g.assignments {
		employee, okEmployee := g.catalog.Employees[a.EmployeeID]
		shift, okShift := g.catalog.Shifts[a.ShiftID]
		if !okEmployee || !okShift {
			continue
		}
		schedules = append(schedules, coverage.Schedule{Assignment: a, Shift: shift, Employee: employee})
	}

	reports, err := coverage.CalculateCoverage(schedules, g.input.StaffingRequirements)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate coverage: %w", err)
	}

	start, _ := timeutil.ParseDate(g.opts.StartDate)
	end, _ := timeutil.ParseDate(g.opts.EndDate)
	var window []string
	for _, d := range timeutil.DateRange(start, end) {
		window = append(window, timeutil.FormatDate(d))
	}
	coverage.EnsureDates(reports, g.input.StaffingRequirements, window)

	var gaps []coverage.Gap
	for _, gap := range coverage.Gaps(reports, g.input.StaffingRequirements) {
		if gap.Date >= g.opts.StartDate && gap.Date <= g.opts.EndDate {
			gaps = append(gaps, gap)
		}
	}
	return gaps, nil
}

func sortAssignments(assignments []model.ScheduleAssignment) {
	sort.SliceStable(assignments, func(i, j int) bool {
		if assignments[i].EmployeeID != assignments[j].EmployeeID {
			return assignments[i].EmployeeID < assignments[j].EmployeeID
		}
		return assignments[i].Date < assignments[j].Date
	})
}
