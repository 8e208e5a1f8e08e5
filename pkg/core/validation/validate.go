package validation

import (
	"fmt"

	"github.com/jakechorley/dispatch-rota/pkg/core/model"
)

// validateReferences reports assignments and pattern bindings that point at unknown catalog entries.
// The individual rules skip such references rather than failing.
func validateReferences(
	assignments []model.ScheduleAssignment,
	employees []model.Employee,
	employeePatterns []model.EmployeePattern,
	patterns []model.ShiftPattern,
	shifts []model.Shift,
) *Result {
	result := newResult()
	employeesByID := employeeIndex(employees)
	shiftsByID := shiftIndex(shifts)
	patternIDs := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		patternIDs[p.ID] = true
	}

	for _, a := range assignments {
		if _, ok := employeesByID[a.EmployeeID]; !ok {
			result.addError(CodeUnknownReference,
				fmt.Sprintf("Assignment on %s references unknown employee %s", a.Date, a.EmployeeID),
				Details{EmployeeID: a.EmployeeID, ShiftID: a.ShiftID, Date: a.Date})
		}
		if _, ok := shiftsByID[a.ShiftID]; !ok {
			result.addError(CodeUnknownReference,
				fmt.Sprintf("Assignment on %s references unknown shift %s", a.Date, a.ShiftID),
				Details{EmployeeID: a.EmployeeID, ShiftID: a.ShiftID, Date: a.Date})
		}
	}

	for _, binding := range employeePatterns {
		if _, ok := employeesByID[binding.EmployeeID]; !ok {
			continue
		}
		if !patternIDs[binding.PatternID] {
			result.addError(CodeUnknownReference,
				fmt.Sprintf("Employee %s is bound to unknown pattern %s", binding.EmployeeID, binding.PatternID),
				Details{EmployeeID: binding.EmployeeID})
		}
	}

	return result
}

// ValidateSchedule runs every rule against a set of assignments and merges the outcomes.
// The result is valid only if no rule produced an error. A Go error is returned only for
// malformed input such as unparsable dates or times.
func ValidateSchedule(
	assignments []model.ScheduleAssignment,
	employees []model.Employee,
	employeePatterns []model.EmployeePattern,
	patterns []model.ShiftPattern,
	shifts []model.Shift,
	requirements []model.StaffingRequirement,
	opts Options,
) (*Result, error) {
	if opts.MaximumConsecutiveDays <= 0 {
		opts.MaximumConsecutiveDays = DefaultMaximumConsecutiveDays
	}

	result := newResult()
	result.merge(validateReferences(assignments, employees, employeePatterns, patterns, shifts))

	rules := []struct {
		name string
		run  func() (*Result, error)
	}{
		{"rest hours", func() (*Result, error) {
			return ValidateRestHours(assignments, shifts, opts.MinimumRestHours)
		}},
		{"consecutive days", func() (*Result, error) {
			return ValidateConsecutiveDays(assignments, opts.MaximumConsecutiveDays)
		}},
		{"staffing requirements", func() (*Result, error) {
			return ValidateStaffingWindow(assignments, employees, shifts, requirements, opts.StartDate, opts.EndDate)
		}},
		{"weekly hours", func() (*Result, error) {
			return ValidateWeeklyHours(assignments, employees, shifts)
		}},
		{"pattern compliance", func() (*Result, error) {
			return ValidatePatternCompliance(assignments, employees, employeePatterns, patterns, shifts, opts.StartDate, opts.EndDate)
		}},
		{"shift overlaps", func() (*Result, error) {
			return ValidateNoOverlaps(assignments, shifts)
		}},
	}

	for _, rule := range rules {
		r, err := rule.run()
		if err != nil {
			return nil, fmt.Errorf("failed to validate %s: %w", rule.name, err)
		}
		result.merge(r)
	}

	return result, nil
}
