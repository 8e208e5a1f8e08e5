package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShift_DurationBucket(t *testing.T) {
	assert.Equal(t, 10, Shift{DurationHours: 10}.DurationBucket())
	assert.Equal(t, 12, Shift{DurationHours: 11.75}.DurationBucket())
	assert.Equal(t, 4, Shift{DurationHours: 4.5, DurationCategory: 4}.DurationBucket())
}

func TestShiftPattern_AllowsDuration(t *testing.T) {
	fourTens := ShiftPattern{PatternType: PatternFourTens, DaysOn: 4, DaysOff: 3, ShiftDuration: 10}
	assert.True(t, fourTens.AllowsDuration(10))
	assert.False(t, fourTens.AllowsDuration(12))
	assert.Equal(t, 7, fourTens.CycleLength())

	mixed := ShiftPattern{PatternType: PatternThreeTwelvesOneFour, DaysOn: 4, DaysOff: 3, ShiftDuration: 12}
	assert.True(t, mixed.AllowsDuration(12))
	assert.True(t, mixed.AllowsDuration(4))
	assert.False(t, mixed.AllowsDuration(10))

	custom := ShiftPattern{PatternType: PatternCustom, DaysOn: 5, DaysOff: 2}
	assert.True(t, custom.AllowsDuration(8), "custom pattern without a duration accepts anything")
}

func TestFindActivePattern(t *testing.T) {
	bindings := []EmployeePattern{
		{ID: "old", EmployeeID: "e1", EffectiveFrom: "2023-01-01", EffectiveTo: "2023-12-31"},
		{ID: "current", EmployeeID: "e1", EffectiveFrom: "2024-01-01"},
		{ID: "other", EmployeeID: "e2"},
	}

	binding, ok := FindActivePattern(bindings, "e1", "2024-01-01", "2024-01-14")
	assert.True(t, ok)
	assert.Equal(t, "current", binding.ID)

	binding, ok = FindActivePattern(bindings, "e1", "2023-12-25", "2024-01-07")
	assert.True(t, ok)
	assert.Equal(t, "old", binding.ID, "first binding in input order wins when both overlap")

	_, ok = FindActivePattern(bindings, "e3", "2024-01-01", "2024-01-14")
	assert.False(t, ok)
}

func TestActivePatterns(t *testing.T) {
	bindings := []EmployeePattern{
		{ID: "old", EmployeeID: "e1", EffectiveFrom: "2023-01-01", EffectiveTo: "2023-12-31"},
		{ID: "current", EmployeeID: "e1", EffectiveFrom: "2024-01-01"},
		{ID: "other", EmployeeID: "e2"},
	}

	active := ActivePatterns(bindings, "e1", "2023-12-25", "2024-01-07")
	if assert.Len(t, active, 2) {
		assert.Equal(t, "old", active[0].ID)
		assert.Equal(t, "current", active[1].ID)
	}

	active = ActivePatterns(bindings, "e1", "2024-02-01", "2024-02-07")
	if assert.Len(t, active, 1) {
		assert.Equal(t, "current", active[0].ID)
	}

	assert.Empty(t, ActivePatterns(bindings, "e3", "2024-01-01", "2024-01-14"))
}

func TestStaffingRequirement_MinimumFor(t *testing.T) {
	req := StaffingRequirement{
		StartTime:        "07:00",
		EndTime:          "19:00",
		MinimumEmployees: 2,
		Overrides: []MinimumOverride{
			{AppliesTo: func(date string) bool { return date == "2024-01-06" }, MinimumEmployees: 4},
			{AppliesTo: func(date string) bool { return date >= "2024-01-06" }, MinimumEmployees: 3},
		},
	}

	assert.Equal(t, "07:00-19:00", req.PeriodKey())
	assert.Equal(t, 2, req.MinimumFor("2024-01-05"))
	assert.Equal(t, 3, req.MinimumFor("2024-01-06"), "later override takes precedence")
	assert.Equal(t, 3, req.MinimumFor("2024-01-07"))
}

func TestRole(t *testing.T) {
	assert.True(t, RoleShiftSupervisor.IsValid())
	assert.False(t, Role("Volunteer").IsValid())
	assert.True(t, Employee{Role: RoleShiftSupervisor}.IsSupervisor())
	assert.False(t, Employee{Role: RoleManagement}.IsSupervisor())
}
