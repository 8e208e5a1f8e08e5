package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/dispatch-rota/pkg/core/model"
)

func scoringGenerator(requirements ...model.StaffingRequirement) *ScheduleGenerator {
	input := Input{
		Employees:            []model.Employee{{ID: "e1", DefaultShiftTypeID: "day"}, {ID: "e2"}},
		Shifts:               []model.Shift{earlyDay, lateDay, night, evening},
		Patterns:             []model.ShiftPattern{fourTens, twelves},
		EmployeePatterns:     []model.EmployeePattern{bind("e1", fourTens), bind("e2", twelves)},
		StaffingRequirements: requirements,
	}
	return NewScheduleGenerator(input, weekOptions(), nil)
}

func TestScore_BaseAndPreference(t *testing.T) {
	g := scoringGenerator()
	employee := model.Employee{ID: "e1", DefaultShiftTypeID: "day"}

	score, err := g.Score(earlyDay, employee, "2024-01-01", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(WeightBase+WeightPreferenceBonus), score)

	score, err = g.Score(night, employee, "2024-01-01", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(WeightBase), score)
}

func TestScore_DisallowedDurationIsZero(t *testing.T) {
	g := scoringGenerator()

	score, err := g.Score(earlyDay, model.Employee{ID: "e2"}, "2024-01-01", nil)
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestScore_InsufficientRestIsZero(t *testing.T) {
	g := scoringGenerator()
	employee := model.Employee{ID: "e1", DefaultShiftTypeID: "day"}
	existing := []model.ScheduleAssignment{{EmployeeID: "e1", ShiftID: night.ID, Date: "2024-01-01"}}

	// Night ends 05:00 on the 2nd, two hours before the day shift
	score, err := g.Score(earlyDay, employee, "2024-01-02", existing)
	require.NoError(t, err)
	assert.Zero(t, score)

	// Another employee's night shift does not matter
	score, err = g.Score(earlyDay, model.Employee{ID: "e3"}, "2024-01-02", existing)
	require.NoError(t, err)
	assert.Equal(t, float64(WeightBase), score)

	// Only earlier dates count as prior assignments
	score, err = g.Score(earlyDay, employee, "2024-01-01", existing)
	require.NoError(t, err)
	assert.Equal(t, float64(WeightBase+WeightPreferenceBonus), score)
}

func TestScore_LatestPriorAssignmentWins(t *testing.T) {
	g := scoringGenerator()
	employee := model.Employee{ID: "e1"}
	existing := []model.ScheduleAssignment{
		{EmployeeID: "e1", ShiftID: night.ID, Date: "2024-01-01"},
		{EmployeeID: "e1", ShiftID: earlyDay.ID, Date: "2024-01-03"},
	}

	// Rest is measured from the 3rd, not the night shift two days before
	score, err := g.Score(earlyDay, employee, "2024-01-04", existing)
	require.NoError(t, err)
	assert.Equal(t, float64(WeightBase), score)
}

func TestScore_CoverageBonus(t *testing.T) {
	g := scoringGenerator(model.StaffingRequirement{ID: "r1", StartTime: "08:00", EndTime: "16:00", MinimumEmployees: 1})
	employee := model.Employee{ID: "e1"}

	score, err := g.Score(earlyDay, employee, "2024-01-01", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(WeightBase+WeightCoverageBonus), score)

	// Already covered by someone else that day
	existing := []model.ScheduleAssignment{{EmployeeID: "e9", ShiftID: lateDay.ID, Date: "2024-01-01"}}
	score, err = g.Score(earlyDay, employee, "2024-01-01", existing)
	require.NoError(t, err)
	assert.Equal(t, float64(WeightBase), score)

	// The night shift does not touch the requirement window
	score, err = g.Score(night, employee, "2024-01-01", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(WeightBase), score)
}

func TestScore_CoverageBonusHonoursOverrides(t *testing.T) {
	g := scoringGenerator(model.StaffingRequirement{
		ID: "r1", StartTime: "08:00", EndTime: "16:00", MinimumEmployees: 1,
		Overrides: []model.MinimumOverride{{
			AppliesTo:        func(date string) bool { return date == "2024-01-06" },
			MinimumEmployees: 2,
		}},
	})
	employee := model.Employee{ID: "e1"}
	existing := []model.ScheduleAssignment{
		{EmployeeID: "e9", ShiftID: lateDay.ID, Date: "2024-01-05"},
		{EmployeeID: "e9", ShiftID: lateDay.ID, Date: "2024-01-06"},
	}

	score, err := g.Score(earlyDay, employee, "2024-01-05", existing)
	require.NoError(t, err)
	assert.Equal(t, float64(WeightBase), score)

	score, err = g.Score(earlyDay, employee, "2024-01-06", existing)
	require.NoError(t, err)
	assert.Equal(t, float64(WeightBase+WeightCoverageBonus), score)
}

func TestWithWeights(t *testing.T) {
	input := Input{Shifts: []model.Shift{earlyDay}}
	g := NewScheduleGenerator(input, weekOptions(), nil, WithWeights(Weights{PreferenceBonus: 5}))

	score, err := g.Score(earlyDay, model.Employee{ID: "e1", DefaultShiftTypeID: "day"}, "2024-01-01", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(WeightBase+5), score)
}

func TestBestShift_TiesKeepCatalogOrder(t *testing.T) {
	g := scoringGenerator()

	shift, score, err := g.bestShift([]model.Shift{lateDay, earlyDay}, model.Employee{ID: "e1", DefaultShiftTypeID: "day"}, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, lateDay.ID, shift.ID)
	assert.Equal(t, float64(WeightBase+WeightPreferenceBonus), score)
}

func optimizerGenerator(opts Options) *ScheduleGenerator {
	input := Input{
		Employees: []model.Employee{
			{ID: "e1", DefaultShiftTypeID: "late"},
			{ID: "e2", DefaultShiftTypeID: "day"},
		},
		Shifts: []model.Shift{earlyDay, evening},
	}
	return NewScheduleGenerator(input, opts, nil)
}

func TestOptimize_SwapsWhenCombinedScoreImproves(t *testing.T) {
	g := optimizerGenerator(weekOptions())
	g.employees = g.input.Employees
	g.assignments = []model.ScheduleAssignment{
		{EmployeeID: "e1", ShiftID: earlyDay.ID, Date: "2024-01-01"},
		{EmployeeID: "e2", ShiftID: evening.ID, Date: "2024-01-01"},
	}

	require.NoError(t, g.optimize(context.Background()))

	assert.Equal(t, evening.ID, g.assignments[0].ShiftID)
	assert.Equal(t, earlyDay.ID, g.assignments[1].ShiftID)
}

func TestOptimize_RespectsIterationLimit(t *testing.T) {
	opts := weekOptions()
	opts.MaxOptimizationIterations = 1
	g := optimizerGenerator(opts)
	g.employees = g.input.Employees
	g.assignments = []model.ScheduleAssignment{
		{EmployeeID: "e1", ShiftID: earlyDay.ID, Date: "2024-01-01"},
		{EmployeeID: "e2", ShiftID: evening.ID, Date: "2024-01-01"},
		{EmployeeID: "e1", ShiftID: earlyDay.ID, Date: "2024-01-02"},
		{EmployeeID: "e2", ShiftID: evening.ID, Date: "2024-01-02"},
	}

	require.NoError(t, g.optimize(context.Background()))

	// Only the first date's pair is ever evaluated
	assert.Equal(t, evening.ID, g.assignments[0].ShiftID)
	assert.Equal(t, earlyDay.ID, g.assignments[2].ShiftID)
}

func TestOptimize_LeavesPreferredPairAlone(t *testing.T) {
	g := optimizerGenerator(weekOptions())
	g.employees = g.input.Employees
	g.assignments = []model.ScheduleAssignment{
		{EmployeeID: "e1", ShiftID: evening.ID, Date: "2024-01-01"},
		{EmployeeID: "e2", ShiftID: earlyDay.ID, Date: "2024-01-01"},
	}

	require.NoError(t, g.optimize(context.Background()))

	assert.Equal(t, evening.ID, g.assignments[0].ShiftID)
	assert.Equal(t, earlyDay.ID, g.assignments[1].ShiftID)
}
