package validation

import (
	"fmt"
	"sort"
	"time"

	"github.com/jakechorley/dispatch-rota/pkg/core/coverage"
	"github.com/jakechorley/dispatch-rota/pkg/core/model"
	"github.com/jakechorley/dispatch-rota/pkg/core/timeutil"
)

// anchoredShift is an assignment resolved to the instants it occupies
type anchoredShift struct {
	assignment model.ScheduleAssignment
	shift      model.Shift
	start      time.Time
	end        time.Time
}

// anchorAssignments resolves an employee's assignments against the catalog, dropping unknown shifts,
// and orders them by start instant
func anchorAssignments(assignments []model.ScheduleAssignment, shifts map[string]model.Shift) ([]anchoredShift, error) {
	anchored := make([]anchoredShift, 0, len(assignments))
	for _, a := range assignments {
		shift, ok := shifts[a.ShiftID]
		if !ok {
			continue
		}
		date, err := timeutil.ParseDate(a.Date)
		if err != nil {
			return nil, fmt.Errorf("assignment for employee %s: %w", a.EmployeeID, err)
		}
		start, end, err := timeutil.ShiftBounds(shift, date)
		if err != nil {
			return nil, fmt.Errorf("shift %s: %w", shift.ID, err)
		}
		anchored = append(anchored, anchoredShift{assignment: a, shift: shift, start: start, end: end})
	}

	sort.SliceStable(anchored, func(i, j int) bool {
		return anchored[i].start.Before(anchored[j].start)
	})
	return anchored, nil
}

// ValidateRestHours checks the rest between each pair of adjacent shifts worked by the same employee.
// Rest below the minimum is an error; rest less than two hours above it is a warning.
func ValidateRestHours(assignments []model.ScheduleAssignment, shifts []model.Shift, minimumRestHours float64) (*Result, error) {
	result := newResult()
	shiftsByID := shiftIndex(shifts)

	ids, byEmployee := groupByEmployee(assignments)
	for _, employeeID := range ids {
		anchored, err := anchorAssignments(byEmployee[employeeID], shiftsByID)
		if err != nil {
			return nil, err
		}

		for i := 1; i < len(anchored); i++ {
			prev, next := anchored[i-1], anchored[i]
			rest := timeutil.GetHoursBetween(prev.end, next.start)
			details := Details{
				EmployeeID: employeeID,
				ShiftID:    next.shift.ID,
				Date:       next.assignment.Date,
				Expected:   minimumRestHours,
				Actual:     rest,
			}

			switch {
			case rest < minimumRestHours:
				result.addError(CodeInsufficientRest,
					fmt.Sprintf("Employee %s has %.1f hours rest between %s and %s (minimum %.1f)",
						employeeID, rest, prev.assignment.Date, next.assignment.Date, minimumRestHours),
					details)
			case rest < minimumRestHours+restWarningMarginHours:
				result.addWarning(CodeRestNearMinimum,
					fmt.Sprintf("Employee %s has only %.1f hours rest between %s and %s",
						employeeID, rest, prev.assignment.Date, next.assignment.Date),
					details)
			}
		}
	}

	return result, nil
}

// ValidateConsecutiveDays checks the longest run of consecutive working dates per employee
func ValidateConsecutiveDays(assignments []model.ScheduleAssignment, maximumConsecutiveDays int) (*Result, error) {
	result := newResult()

	ids, byEmployee := groupByEmployee(assignments)
	for _, employeeID := range ids {
		dates := make([]time.Time, 0, len(byEmployee[employeeID]))
		for _, a := range byEmployee[employeeID] {
			date, err := timeutil.ParseDate(a.Date)
			if err != nil {
				return nil, fmt.Errorf("assignment for employee %s: %w", employeeID, err)
			}
			dates = append(dates, date)
		}

		run := timeutil.GetConsecutiveWorkingDays(dates)
		details := Details{
			EmployeeID: employeeID,
			Expected:   float64(maximumConsecutiveDays),
			Actual:     float64(run),
		}

		switch {
		case run > maximumConsecutiveDays:
			result.addError(CodeMaxConsecutiveDaysExceeded,
				fmt.Sprintf("Employee %s works %d consecutive days (maximum %d)", employeeID, run, maximumConsecutiveDays),
				details)
		case run == maximumConsecutiveDays:
			result.addWarning(CodeAtMaxConsecutiveDays,
				fmt.Sprintf("Employee %s works the maximum of %d consecutive days", employeeID, run),
				details)
		}
	}

	return result, nil
}

// ValidateStaffingRequirements checks headcount and supervisor presence for every requirement
// on every date that has assignments
func ValidateStaffingRequirements(
	assignments []model.ScheduleAssignment,
	employees []model.Employee,
	shifts []model.Shift,
	requirements []model.StaffingRequirement,
) (*Result, error) {
	return ValidateStaffingWindow(assignments, employees, shifts, requirements, "", "")
}

// ValidateStaffingWindow is ValidateStaffingRequirements that also checks every date of
// [startDate, endDate], so a date nobody works is reported as understaffed.
// Empty bounds check only the assignment dates.
func ValidateStaffingWindow(
	assignments []model.ScheduleAssignment,
	employees []model.Employee,
	shifts []model.Shift,
	requirements []model.StaffingRequirement,
	startDate, endDate string,
) (*Result, error) {
	result := newResult()
	employeesByID := employeeIndex(employees)
	shiftsByID := shiftIndex(shifts)

	var schedules []coverage.Schedule
	dateSet := make(map[string]bool)
	for _, a := range assignments {
		employee, okEmployee := employeesByID[a.EmployeeID]
		shift, okShift := shiftsByID[a.ShiftID]
		if !okEmployee || !okShift {
			continue
		}
		schedules = append(schedules, coverage.Schedule{Assignment: a, Shift: shift, Employee: employee})
		dateSet[a.Date] = true
	}

	reports, err := coverage.CalculateCoverage(schedules, requirements)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate coverage: %w", err)
	}

	if startDate != "" && endDate != "" {
		window, err := windowDates(startDate, endDate)
		if err != nil {
			return nil, err
		}
		coverage.EnsureDates(reports, requirements, window)
		for _, date := range window {
			dateSet[date] = true
		}
	}

	dates := make([]string, 0, len(dateSet))
	for date := range dateSet {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		report := reports[date]
		for _, req := range requirements {
			key := req.PeriodKey()
			period := report.Periods[key]
			if period == nil {
				continue
			}

			if period.Actual < period.Required {
				result.addError(CodeInsufficientStaffing,
					fmt.Sprintf("%s on %s has %d of %d required employees", requirementLabel(req), date, period.Actual, period.Required),
					Details{
						Date:          date,
						RequirementID: req.ID,
						Period:        key,
						Expected:      float64(period.Required),
						Actual:        float64(period.Actual),
					})
			}
			if coverage.SupervisorMissing(req, period) {
				result.addError(CodeSupervisorRequired,
					fmt.Sprintf("%s on %s has no shift supervisor", requirementLabel(req), date),
					Details{
						Date:          date,
						RequirementID: req.ID,
						Period:        key,
						Expected:      1,
						Actual:        0,
					})
			}
		}
	}

	return result, nil
}

// windowDates lists every date of [startDate, endDate]
func windowDates(startDate, endDate string) ([]string, error) {
	start, err := timeutil.ParseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := timeutil.ParseDate(endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}

	var dates []string
	for _, d := range timeutil.DateRange(start, end) {
		dates = append(dates, timeutil.FormatDate(d))
	}
	return dates, nil
}

func requirementLabel(req model.StaffingRequirement) string {
	if req.Name != "" {
		return fmt.Sprintf("%s (%s)", req.Name, req.PeriodKey())
	}
	return req.PeriodKey()
}

// ValidateWeeklyHours compares each employee's hours per Sunday-anchored week with their weekly target.
// Employees without a target are skipped.
func ValidateWeeklyHours(assignments []model.ScheduleAssignment, employees []model.Employee, shifts []model.Shift) (*Result, error) {
	result := newResult()
	employeesByID := employeeIndex(employees)
	shiftsByID := shiftIndex(shifts)

	ids, byEmployee := groupByEmployee(assignments)
	for _, employeeID := range ids {
		employee, ok := employeesByID[employeeID]
		if !ok || employee.WeeklyHoursScheduled <= 0 {
			continue
		}

		weekly := make(map[string]float64)
		for _, a := range byEmployee[employeeID] {
			shift, ok := shiftsByID[a.ShiftID]
			if !ok {
				continue
			}
			date, err := timeutil.ParseDate(a.Date)
			if err != nil {
				return nil, fmt.Errorf("assignment for employee %s: %w", employeeID, err)
			}
			weekly[timeutil.FormatDate(timeutil.WeekStart(date))] += shift.DurationHours
		}

		weeks := make([]string, 0, len(weekly))
		for week := range weekly {
			weeks = append(weeks, week)
		}
		sort.Strings(weeks)

		for _, week := range weeks {
			hours := weekly[week]
			details := Details{
				EmployeeID: employeeID,
				Date:       week,
				Expected:   employee.WeeklyHoursScheduled,
				Actual:     hours,
			}

			switch {
			case hours > employee.WeeklyHoursScheduled:
				result.addError(CodeWeeklyHoursExceeded,
					fmt.Sprintf("Employee %s is scheduled %.1f hours in week of %s (target %.1f)",
						employeeID, hours, week, employee.WeeklyHoursScheduled),
					details)
			case hours < employee.WeeklyHoursScheduled:
				result.addWarning(CodeWeeklyHoursUnder,
					fmt.Sprintf("Employee %s is scheduled %.1f hours in week of %s, below target %.1f",
						employeeID, hours, week, employee.WeeklyHoursScheduled),
					details)
			}
		}
	}

	return result, nil
}

// ValidateNoOverlaps reports any two assignments of the same employee whose anchored intervals intersect
func ValidateNoOverlaps(assignments []model.ScheduleAssignment, shifts []model.Shift) (*Result, error) {
	result := newResult()
	shiftsByID := shiftIndex(shifts)

	ids, byEmployee := groupByEmployee(assignments)
	for _, employeeID := range ids {
		anchored, err := anchorAssignments(byEmployee[employeeID], shiftsByID)
		if err != nil {
			return nil, err
		}

		for i := 0; i < len(anchored); i++ {
			for j := i + 1; j < len(anchored); j++ {
				// sorted by start, so nothing later can overlap i either
				if !anchored[j].start.Before(anchored[i].end) {
					break
				}
				result.addError(CodeShiftOverlap,
					fmt.Sprintf("Employee %s has overlapping shifts %s on %s and %s on %s",
						employeeID,
						anchored[i].shift.ID, anchored[i].assignment.Date,
						anchored[j].shift.ID, anchored[j].assignment.Date),
					Details{
						EmployeeID: employeeID,
						ShiftID:    anchored[j].shift.ID,
						Date:       anchored[j].assignment.Date,
					})
			}
		}
	}

	return result, nil
}
