package generator

import (
	"github.com/jakechorley/dispatch-rota/pkg/core/coverage"
	"github.com/jakechorley/dispatch-rota/pkg/core/model"
	"github.com/jakechorley/dispatch-rota/pkg/core/validation"
)

const (
	DefaultMaxRepairAttempts         = 5
	DefaultMaxOptimizationPasses     = 5
	DefaultMaxOptimizationIterations = 1000
)

// Input is the read-only data a schedule is generated from
type Input struct {
	Employees            []model.Employee
	Shifts               []model.Shift
	Patterns             []model.ShiftPattern
	EmployeePatterns     []model.EmployeePattern
	StaffingRequirements []model.StaffingRequirement
}

// Options configure a single generation run
type Options struct {
	// StartDate and EndDate bound the run, inclusive, as YYYY-MM-DD
	StartDate string
	EndDate   string

	// Zero values take the defaults; a rest minimum of zero cannot be requested
	MinimumRestHours       float64
	MaximumConsecutiveDays int

	// IncludeEmployeeIDs limits the run to these employees. Empty means everyone.
	IncludeEmployeeIDs []string
	// ExcludeEmployeeIDs removes employees from the run
	ExcludeEmployeeIDs []string

	MaxRepairAttempts         int
	MaxOptimizationPasses     int
	MaxOptimizationIterations int
}

func (o Options) withDefaults() Options {
	if o.MinimumRestHours == 0 {
		o.MinimumRestHours = validation.DefaultMinimumRestHours
	}
	if o.MaximumConsecutiveDays == 0 {
		o.MaximumConsecutiveDays = validation.DefaultMaximumConsecutiveDays
	}
	if o.MaxRepairAttempts == 0 {
		o.MaxRepairAttempts = DefaultMaxRepairAttempts
	}
	if o.MaxOptimizationPasses == 0 {
		o.MaxOptimizationPasses = DefaultMaxOptimizationPasses
	}
	if o.MaxOptimizationIterations == 0 {
		o.MaxOptimizationIterations = DefaultMaxOptimizationIterations
	}
	return o
}

// UnassignedShift is a rotation working day for which no shift could be chosen
type UnassignedShift struct {
	EmployeeID string
	Date       string
	Reason     string
}

// SchedulingResult is the outcome of a generation run.
// Success is false when the final schedule has validation errors; it still needs a human to review it.
type SchedulingResult struct {
	Success          bool
	Assignments      []model.ScheduleAssignment
	UnassignedShifts []UnassignedShift
	CoverageGaps     []coverage.Gap
	Warnings         []string
	Errors           []string
	Validation       *validation.Result
}

// GeneratorOption customises a ScheduleGenerator
type GeneratorOption func(*ScheduleGenerator)

// WithWeights overrides the scoring weights
func WithWeights(weights Weights) GeneratorOption {
	return func(g *ScheduleGenerator) {
		g.weights = weights.withDefaults()
	}
}
