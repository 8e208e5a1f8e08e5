package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/dispatch-rota/pkg/core/model"
)

var (
	day10   = model.Shift{ID: "day10", StartTime: "07:00", EndTime: "17:00", DurationHours: 10}
	day12   = model.Shift{ID: "day12", StartTime: "07:00", EndTime: "19:00", DurationHours: 12}
	night10 = model.Shift{ID: "night10", StartTime: "19:00", EndTime: "05:00", DurationHours: 10}
	short4  = model.Shift{ID: "short4", StartTime: "08:00", EndTime: "12:00", DurationHours: 4}
	early4  = model.Shift{ID: "early4", StartTime: "04:00", EndTime: "08:00", DurationHours: 4}

	allShifts = []model.Shift{day10, day12, night10, short4, early4}

	fourTens = model.ShiftPattern{ID: "p1", Name: "4x10", PatternType: model.PatternFourTens, DaysOn: 4, DaysOff: 3, ShiftDuration: 10}
	mixed    = model.ShiftPattern{ID: "p2", Name: "3x12 1x4", PatternType: model.PatternThreeTwelvesOneFour, DaysOn: 4, DaysOff: 3}
)

func assign(employeeID string, shift model.Shift, dates ...string) []model.ScheduleAssignment {
	var out []model.ScheduleAssignment
	for _, d := range dates {
		out = append(out, model.ScheduleAssignment{EmployeeID: employeeID, ShiftID: shift.ID, Date: d, Status: model.StatusScheduled})
	}
	return out
}

func codes(list []ValidationError) []Code {
	var out []Code
	for _, e := range list {
		out = append(out, e.Code)
	}
	return out
}

func TestValidateRestHours_Insufficient(t *testing.T) {
	assignments := append(assign("e1", night10, "2024-01-01"), assign("e1", day10, "2024-01-02")...)

	result, err := ValidateRestHours(assignments, allShifts, 10)
	require.NoError(t, err)

	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeInsufficientRest, result.Errors[0].Code)
	assert.Equal(t, "e1", result.Errors[0].Details.EmployeeID)
	assert.Equal(t, "2024-01-02", result.Errors[0].Details.Date)
	assert.Equal(t, 2.0, result.Errors[0].Details.Actual)
}

func TestValidateRestHours_NearMinimumWarns(t *testing.T) {
	// 19:00 to 07:00 is 12 hours, within 2 hours of an 11 hour minimum
	assignments := append(assign("e1", day12, "2024-01-01"), assign("e1", day10, "2024-01-02")...)

	result, err := ValidateRestHours(assignments, allShifts, 11)
	require.NoError(t, err)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, CodeRestNearMinimum, result.Warnings[0].Code)
}

func TestValidateRestHours_Sufficient(t *testing.T) {
	result, err := ValidateRestHours(assign("e1", day10, "2024-01-01", "2024-01-02"), allShifts, 10)
	require.NoError(t, err)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateConsecutiveDays(t *testing.T) {
	assignments := append(
		assign("e1", day10, "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-06", "2024-01-07"),
		assign("e2", day10, "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-06")...,
	)

	result, err := ValidateConsecutiveDays(assignments, 6)
	require.NoError(t, err)

	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeMaxConsecutiveDaysExceeded, result.Errors[0].Code)
	assert.Equal(t, "e1", result.Errors[0].Details.EmployeeID)
	assert.Equal(t, 7.0, result.Errors[0].Details.Actual)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, CodeAtMaxConsecutiveDays, result.Warnings[0].Code)
	assert.Equal(t, "e2", result.Warnings[0].Details.EmployeeID)
}

func TestValidateStaffingRequirements(t *testing.T) {
	employees := []model.Employee{{ID: "e1", Role: model.RoleDispatcher}}
	requirements := []model.StaffingRequirement{
		{ID: "r1", StartTime: "08:00", EndTime: "16:00", MinimumEmployees: 2, ShiftSupervisorRequired: true},
	}

	result, err := ValidateStaffingRequirements(assign("e1", day10, "2024-01-01"), employees, allShifts, requirements)
	require.NoError(t, err)

	assert.False(t, result.IsValid)
	assert.Equal(t, []Code{CodeInsufficientStaffing, CodeSupervisorRequired}, codes(result.Errors))

	staffing := result.Errors[0].Details
	assert.Equal(t, "2024-01-01", staffing.Date)
	assert.Equal(t, "r1", staffing.RequirementID)
	assert.Equal(t, "08:00-16:00", staffing.Period)
	assert.Equal(t, 2.0, staffing.Expected)
	assert.Equal(t, 1.0, staffing.Actual)
}

func TestValidateStaffingRequirements_HonoursOverrides(t *testing.T) {
	employees := []model.Employee{{ID: "e1", Role: model.RoleShiftSupervisor}}
	requirements := []model.StaffingRequirement{{
		ID: "r1", StartTime: "08:00", EndTime: "16:00", MinimumEmployees: 2,
		Overrides: []model.MinimumOverride{{
			AppliesTo:        func(date string) bool { return date == "2024-01-01" },
			MinimumEmployees: 1,
		}},
	}}

	result, err := ValidateStaffingRequirements(assign("e1", day10, "2024-01-01", "2024-01-02"), employees, allShifts, requirements)
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "2024-01-02", result.Errors[0].Details.Date)
}

func TestValidateStaffingWindow_ChecksDatesNobodyWorks(t *testing.T) {
	employees := []model.Employee{{ID: "e1", Role: model.RoleShiftSupervisor}}
	requirements := []model.StaffingRequirement{
		{ID: "r1", StartTime: "08:00", EndTime: "16:00", MinimumEmployees: 1, ShiftSupervisorRequired: true},
	}
	assignments := assign("e1", day10, "2024-01-01", "2024-01-02")

	result, err := ValidateStaffingWindow(assignments, employees, allShifts, requirements, "2024-01-01", "2024-01-03")
	require.NoError(t, err)

	assert.False(t, result.IsValid)
	assert.Equal(t, []Code{CodeInsufficientStaffing, CodeSupervisorRequired}, codes(result.Errors))
	assert.Equal(t, "2024-01-03", result.Errors[0].Details.Date)
	assert.Equal(t, 0.0, result.Errors[0].Details.Actual)

	// Without a window only assignment dates are checked
	result, err = ValidateStaffingRequirements(assignments, employees, allShifts, requirements)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestValidateStaffingWindow_InvalidWindow(t *testing.T) {
	_, err := ValidateStaffingWindow(nil, nil, allShifts, nil, "2024-01-01", "soon")
	assert.Error(t, err)
}

func TestValidateWeeklyHours(t *testing.T) {
	employees := []model.Employee{
		{ID: "e1", WeeklyHoursScheduled: 40},
		{ID: "e2", WeeklyHoursScheduled: 40},
		{ID: "e3", WeeklyHoursScheduled: 0},
	}
	var assignments []model.ScheduleAssignment
	assignments = append(assignments, assign("e1", day10, "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05")...)
	assignments = append(assignments, assign("e2", day10, "2024-01-01")...)
	assignments = append(assignments, assign("e3", day10, "2024-01-01")...)

	result, err := ValidateWeeklyHours(assignments, employees, allShifts)
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeWeeklyHoursExceeded, result.Errors[0].Code)
	assert.Equal(t, "e1", result.Errors[0].Details.EmployeeID)
	assert.Equal(t, "2023-12-31", result.Errors[0].Details.Date)
	assert.Equal(t, 50.0, result.Errors[0].Details.Actual)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, CodeWeeklyHoursUnder, result.Warnings[0].Code)
	assert.Equal(t, "e2", result.Warnings[0].Details.EmployeeID)
}

func TestValidatePatternCompliance_FiveDaysOnFourOnPattern(t *testing.T) {
	employees := []model.Employee{{ID: "e1"}}
	bindings := []model.EmployeePattern{{ID: "b1", EmployeeID: "e1", PatternID: fourTens.ID, RotationStartDate: "2024-01-01"}}
	assignments := assign("e1", day10, "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05")

	result, err := ValidatePatternCompliance(assignments, employees, bindings, []model.ShiftPattern{fourTens}, allShifts, "", "")
	require.NoError(t, err)

	assert.False(t, result.IsValid)
	assert.ElementsMatch(t, []Code{CodePatternOffDay, CodePatternDaysMismatch}, codes(result.Errors))

	offDay := result.ErrorsWithCode(CodePatternOffDay)
	require.Len(t, offDay, 1)
	assert.Equal(t, "2024-01-05", offDay[0].Details.Date)

	mismatch := result.ErrorsWithCode(CodePatternDaysMismatch)
	require.Len(t, mismatch, 1)
	assert.Equal(t, 4.0, mismatch[0].Details.Expected)
	assert.Equal(t, 5.0, mismatch[0].Details.Actual)
}

func TestValidatePatternCompliance_ShortCycle(t *testing.T) {
	employees := []model.Employee{{ID: "e1"}}
	bindings := []model.EmployeePattern{{ID: "b1", EmployeeID: "e1", PatternID: fourTens.ID, RotationStartDate: "2024-01-01"}}
	assignments := assign("e1", day10, "2024-01-01", "2024-01-02", "2024-01-03")
	patterns := []model.ShiftPattern{fourTens}

	// The whole cycle lies in the window, so three days is too few
	result, err := ValidatePatternCompliance(assignments, employees, bindings, patterns, allShifts, "2024-01-01", "2024-01-07")
	require.NoError(t, err)
	assert.Equal(t, []Code{CodePatternDaysMismatch}, codes(result.Errors))

	// Partially covered cycles are not judged short
	result, err = ValidatePatternCompliance(assignments, employees, bindings, patterns, allShifts, "2024-01-01", "2024-01-05")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestValidatePatternCompliance_DurationMismatch(t *testing.T) {
	employees := []model.Employee{{ID: "e1"}, {ID: "e2"}}
	bindings := []model.EmployeePattern{
		{ID: "b1", EmployeeID: "e1", PatternID: fourTens.ID, RotationStartDate: "2024-01-01"},
		{ID: "b2", EmployeeID: "e2", PatternID: mixed.ID, RotationStartDate: "2024-01-01"},
	}
	var assignments []model.ScheduleAssignment
	assignments = append(assignments, assign("e1", day12, "2024-01-01")...)
	assignments = append(assignments, assign("e2", day12, "2024-01-01", "2024-01-02", "2024-01-03")...)
	assignments = append(assignments, assign("e2", short4, "2024-01-04")...)

	result, err := ValidatePatternCompliance(
		assignments, employees, bindings, []model.ShiftPattern{fourTens, mixed}, allShifts, "2024-01-01", "2024-01-04",
	)
	require.NoError(t, err)

	mismatches := result.ErrorsWithCode(CodePatternDurationMismatch)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "e1", mismatches[0].Details.EmployeeID)
	assert.Equal(t, 12.0, mismatches[0].Details.Actual)
}

func TestValidatePatternCompliance_RespectsEffectiveRange(t *testing.T) {
	employees := []model.Employee{{ID: "e1"}}
	bindings := []model.EmployeePattern{{
		ID: "b1", EmployeeID: "e1", PatternID: fourTens.ID, RotationStartDate: "2024-01-01",
		EffectiveTo: "2024-01-04",
	}}
	// 01-05 is an off day, but the binding has ended by then
	assignments := assign("e1", day10, "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05")

	result, err := ValidatePatternCompliance(assignments, employees, bindings, []model.ShiftPattern{fourTens}, allShifts, "", "")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestValidateNoOverlaps(t *testing.T) {
	var assignments []model.ScheduleAssignment
	assignments = append(assignments, assign("e1", day12, "2024-01-01")...)
	assignments = append(assignments, assign("e1", short4, "2024-01-01")...)
	assignments = append(assignments, assign("e2", night10, "2024-01-01")...)
	assignments = append(assignments, assign("e2", early4, "2024-01-02")...)
	assignments = append(assignments, assign("e3", day10, "2024-01-01")...)
	assignments = append(assignments, assign("e3", night10, "2024-01-01")...)

	result, err := ValidateNoOverlaps(assignments, allShifts)
	require.NoError(t, err)

	overlaps := result.ErrorsWithCode(CodeShiftOverlap)
	require.Len(t, overlaps, 2)
	assert.Equal(t, "e1", overlaps[0].Details.EmployeeID)
	assert.Equal(t, "e2", overlaps[1].Details.EmployeeID)
	assert.Equal(t, "2024-01-02", overlaps[1].Details.Date)
}

func TestValidateSchedule_Clean(t *testing.T) {
	employees := []model.Employee{
		{ID: "e1", Role: model.RoleDispatcher, WeeklyHoursScheduled: 40},
		{ID: "e2", Role: model.RoleShiftSupervisor, WeeklyHoursScheduled: 40},
	}
	bindings := []model.EmployeePattern{
		{ID: "b1", EmployeeID: "e1", PatternID: fourTens.ID, RotationStartDate: "2024-01-01"},
		{ID: "b2", EmployeeID: "e2", PatternID: fourTens.ID, RotationStartDate: "2024-01-01"},
	}
	requirements := []model.StaffingRequirement{{
		ID: "r1", StartTime: "08:00", EndTime: "16:00", MinimumEmployees: 2, ShiftSupervisorRequired: true,
		Overrides: []model.MinimumOverride{{
			AppliesTo:        func(date string) bool { return date >= "2024-01-05" },
			MinimumEmployees: 0,
		}},
	}}
	days := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"}
	assignments := append(assign("e1", day10, days...), assign("e2", day10, days...)...)

	opts := DefaultOptions()
	opts.StartDate = "2024-01-01"
	opts.EndDate = "2024-01-07"

	result, err := ValidateSchedule(assignments, employees, bindings, []model.ShiftPattern{fourTens}, allShifts, requirements, opts)
	require.NoError(t, err)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateSchedule_EmptyDayInWindowIsUnderstaffed(t *testing.T) {
	employees := []model.Employee{{ID: "e1", Role: model.RoleShiftSupervisor, WeeklyHoursScheduled: 40}}
	bindings := []model.EmployeePattern{{ID: "b1", EmployeeID: "e1", PatternID: fourTens.ID, RotationStartDate: "2024-01-01"}}
	requirements := []model.StaffingRequirement{{ID: "r1", StartTime: "08:00", EndTime: "16:00", MinimumEmployees: 1}}
	assignments := assign("e1", day10, "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04")

	opts := DefaultOptions()
	opts.StartDate = "2024-01-01"
	opts.EndDate = "2024-01-07"

	result, err := ValidateSchedule(assignments, employees, bindings, []model.ShiftPattern{fourTens}, allShifts, requirements, opts)
	require.NoError(t, err)

	assert.False(t, result.IsValid)
	shortfalls := result.ErrorsWithCode(CodeInsufficientStaffing)
	require.Len(t, shortfalls, 3)
	assert.Equal(t, "2024-01-05", shortfalls[0].Details.Date)
	assert.Equal(t, "2024-01-07", shortfalls[2].Details.Date)
}

func TestValidateSchedule_UnknownReferences(t *testing.T) {
	employees := []model.Employee{{ID: "e1"}}
	bindings := []model.EmployeePattern{{ID: "b1", EmployeeID: "e1", PatternID: "missing", RotationStartDate: "2024-01-01"}}
	assignments := []model.ScheduleAssignment{
		{EmployeeID: "e1", ShiftID: "ghost", Date: "2024-01-01"},
		{EmployeeID: "nobody", ShiftID: day10.ID, Date: "2024-01-01"},
	}

	result, err := ValidateSchedule(assignments, employees, bindings, nil, allShifts, nil, DefaultOptions())
	require.NoError(t, err)

	assert.False(t, result.IsValid)
	assert.Len(t, result.ErrorsWithCode(CodeUnknownReference), 3)
}

func TestValidateSchedule_MalformedDate(t *testing.T) {
	_, err := ValidateSchedule(
		assign("e1", day10, "2024/01/01"),
		[]model.Employee{{ID: "e1"}}, nil, nil, allShifts, nil, DefaultOptions(),
	)
	assert.Error(t, err)
}
