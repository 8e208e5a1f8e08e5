package generator

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/jakechorley/dispatch-rota/pkg/core/model"
	"github.com/jakechorley/dispatch-rota/pkg/core/timeutil"
	"github.com/jakechorley/dispatch-rota/pkg/core/validation"
)

// repairCoverage adds assignments for understaffed requirement periods. Each attempt revalidates
// staffing and fills every shortfall it can; it stops once nothing is short or nothing could be fixed.
func (g *ScheduleGenerator) repairCoverage(ctx context.Context) error {
	requirements := make(map[string]model.StaffingRequirement, len(g.input.StaffingRequirements))
	for _, req := range g.input.StaffingRequirements {
		requirements[req.ID] = req
	}

	for attempt := 1; attempt <= g.opts.MaxRepairAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := validation.ValidateStaffingWindow(g.assignments, g.employees, g.input.Shifts, g.input.StaffingRequirements, g.opts.StartDate, g.opts.EndDate)
		if err != nil {
			return err
		}
		shortfalls := result.ErrorsWithCode(validation.CodeInsufficientStaffing)
		if len(shortfalls) == 0 {
			return nil
		}

		fixes := 0
		for _, shortfall := range shortfalls {
			req, ok := requirements[shortfall.Details.RequirementID]
			if !ok {
				continue
			}
			fixed, err := g.repairShortfall(req, shortfall.Details.Date)
			if err != nil {
				return err
			}
			if fixed {
				fixes++
			}
		}

		g.logger.Debug("Coverage repair attempt",
			zap.Int("attempt", attempt),
			zap.Int("shortfalls", len(shortfalls)),
			zap.Int("fixes", fixes))

		if fixes == 0 {
			return nil
		}
	}
	return nil
}

// repairShortfall assigns the first available employee whose rotation works the date to the best
// shift overlapping the requirement window
func (g *ScheduleGenerator) repairShortfall(req model.StaffingRequirement, date string) (bool, error) {
	var candidates []model.Shift
	for _, shift := range g.input.Shifts {
		overlaps, err := timeutil.WindowsOverlap(req.StartTime, req.EndTime, shift.StartTime, shift.EndTime)
		if err != nil {
			return false, err
		}
		if overlaps {
			candidates = append(candidates, shift)
		}
	}
	if len(candidates) == 0 {
		return false, nil
	}

	day, err := timeutil.ParseDate(date)
	if err != nil {
		return false, err
	}

	for _, employee := range g.employees {
		if g.hasAssignmentOn(employee.ID, date) {
			continue
		}
		binding, pattern, ok := g.activePattern(employee.ID, date)
		if !ok {
			continue
		}
		rotationStart, err := timeutil.ParseDate(binding.RotationStartDate)
		if err != nil {
			return false, err
		}
		if !timeutil.IsWorkingDay(day, rotationStart, pattern.DaysOn, pattern.DaysOff) {
			continue
		}

		shift, score, err := g.bestShift(candidates, employee, date)
		if err != nil {
			return false, err
		}
		if score <= 0 {
			continue
		}

		g.assign(employee.ID, shift.ID, date)
		g.resolveUnassigned(employee.ID, date)
		g.logger.Debug("Repaired shortfall",
			zap.String("requirement_id", req.ID),
			zap.String("date", date),
			zap.String("employee_id", employee.ID),
			zap.String("shift_id", shift.ID))
		return true, nil
	}
	return false, nil
}

func (g *ScheduleGenerator) hasAssignmentOn(employeeID, date string) bool {
	for _, a := range g.assignments {
		if a.EmployeeID == employeeID && a.Date == date {
			return true
		}
	}
	return false
}

// resolveUnassigned drops the unassigned record of a working day that repair has since filled
func (g *ScheduleGenerator) resolveUnassigned(employeeID, date string) {
	g.unassigned = slices.DeleteFunc(g.unassigned, func(u UnassignedShift) bool {
		return u.EmployeeID == employeeID && u.Date == date
	})
}
