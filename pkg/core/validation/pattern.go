package validation

import (
	"fmt"
	"time"

	"github.com/jakechorley/dispatch-rota/pkg/core/model"
	"github.com/jakechorley/dispatch-rota/pkg/core/timeutil"
)

// resolveWindow returns the explicit window if given, filling any missing bound from the span of assignment dates
func resolveWindow(assignments []model.ScheduleAssignment, startDate, endDate string) (string, string) {
	start, end := startDate, endDate
	for _, a := range assignments {
		if startDate == "" && (start == "" || a.Date < start) {
			start = a.Date
		}
		if endDate == "" && (end == "" || a.Date > end) {
			end = a.Date
		}
	}
	return start, end
}

// clipToBinding narrows [from, to] to the binding's effective range
func clipToBinding(binding model.EmployeePattern, from, to time.Time) (time.Time, time.Time, error) {
	if binding.EffectiveFrom != "" {
		effectiveFrom, err := timeutil.ParseDate(binding.EffectiveFrom)
		if err != nil {
			return from, to, err
		}
		if effectiveFrom.After(from) {
			from = effectiveFrom
		}
	}
	if binding.EffectiveTo != "" {
		effectiveTo, err := timeutil.ParseDate(binding.EffectiveTo)
		if err != nil {
			return from, to, err
		}
		if effectiveTo.Before(to) {
			to = effectiveTo
		}
	}
	return from, to, nil
}

// ValidatePatternCompliance checks that every employee bound to a rotation only works its "on" days,
// works shifts of a duration the pattern allows, and works exactly DaysOn days per cycle.
// A cycle with too few days is only reported when it lies entirely within the window, since a
// partially covered cycle may be completed outside it.
func ValidatePatternCompliance(
	assignments []model.ScheduleAssignment,
	employees []model.Employee,
	employeePatterns []model.EmployeePattern,
	patterns []model.ShiftPattern,
	shifts []model.Shift,
	startDate, endDate string,
) (*Result, error) {
	result := newResult()

	windowStart, windowEnd := resolveWindow(assignments, startDate, endDate)
	if windowStart == "" || windowEnd == "" {
		return result, nil
	}
	ws, err := timeutil.ParseDate(windowStart)
	if err != nil {
		return nil, err
	}
	we, err := timeutil.ParseDate(windowEnd)
	if err != nil {
		return nil, err
	}

	patternsByID := make(map[string]model.ShiftPattern, len(patterns))
	for _, p := range patterns {
		patternsByID[p.ID] = p
	}
	shiftsByID := shiftIndex(shifts)
	_, byEmployee := groupByEmployee(assignments)

	for _, employee := range employees {
		for _, binding := range employeePatterns {
			if binding.EmployeeID != employee.ID || !binding.ActiveBetween(windowStart, windowEnd) {
				continue
			}
			pattern, ok := patternsByID[binding.PatternID]
			if !ok || pattern.CycleLength() <= 0 {
				continue
			}

			rotationStart, err := timeutil.ParseDate(binding.RotationStartDate)
			if err != nil {
				return nil, fmt.Errorf("pattern binding %s: %w", binding.ID, err)
			}
			from, to, err := clipToBinding(binding, ws, we)
			if err != nil {
				return nil, fmt.Errorf("pattern binding %s: %w", binding.ID, err)
			}

			checkBinding(result, employee, pattern, rotationStart, from, to, byEmployee[employee.ID], shiftsByID)
		}
	}

	return result, nil
}

func checkBinding(
	result *Result,
	employee model.Employee,
	pattern model.ShiftPattern,
	rotationStart, from, to time.Time,
	assignments []model.ScheduleAssignment,
	shiftsByID map[string]model.Shift,
) {
	cycleLength := pattern.CycleLength()
	workedByCycle := make(map[int]map[string]bool)

	for _, a := range assignments {
		date, err := timeutil.ParseDate(a.Date)
		if err != nil || date.Before(from) || date.After(to) {
			continue
		}

		if !timeutil.IsWorkingDay(date, rotationStart, pattern.DaysOn, pattern.DaysOff) {
			result.addError(CodePatternOffDay,
				fmt.Sprintf("Employee %s is scheduled on %s, an off day of pattern %s", employee.ID, a.Date, pattern.Name),
				Details{EmployeeID: employee.ID, ShiftID: a.ShiftID, Date: a.Date})
		}

		if shift, ok := shiftsByID[a.ShiftID]; ok && !pattern.AllowsDuration(shift.DurationBucket()) {
			result.addError(CodePatternDurationMismatch,
				fmt.Sprintf("Employee %s is scheduled a %d hour shift on %s, not allowed by pattern %s",
					employee.ID, shift.DurationBucket(), a.Date, pattern.Name),
				Details{EmployeeID: employee.ID, ShiftID: a.ShiftID, Date: a.Date, Actual: float64(shift.DurationBucket())})
		}

		index := timeutil.CycleIndex(date, rotationStart, cycleLength)
		if workedByCycle[index] == nil {
			workedByCycle[index] = make(map[string]bool)
		}
		workedByCycle[index][a.Date] = true
	}

	first := timeutil.CycleIndex(from, rotationStart, cycleLength)
	last := timeutil.CycleIndex(to, rotationStart, cycleLength)
	for index := first; index <= last; index++ {
		worked := len(workedByCycle[index])
		cycleStart := timeutil.CycleStart(rotationStart, cycleLength, index)
		cycleEnd := cycleStart.AddDate(0, 0, cycleLength-1)
		complete := !cycleStart.Before(from) && !cycleEnd.After(to)

		if worked > pattern.DaysOn || (complete && worked < pattern.DaysOn) {
			result.addError(CodePatternDaysMismatch,
				fmt.Sprintf("Employee %s works %d days in the rotation cycle starting %s (pattern %s requires %d)",
					employee.ID, worked, timeutil.FormatDate(cycleStart), pattern.Name, pattern.DaysOn),
				Details{
					EmployeeID: employee.ID,
					Date:       timeutil.FormatDate(cycleStart),
					Expected:   float64(pattern.DaysOn),
					Actual:     float64(worked),
				})
		}
	}
}
