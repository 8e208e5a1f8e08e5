package validation

import (
	"sort"

	"github.com/jakechorley/dispatch-rota/pkg/core/model"
)

// Code identifies the rule a validation error or warning came from
type Code string

// Errors
const (
	CodeInsufficientRest           Code = "INSUFFICIENT_REST"
	CodeMaxConsecutiveDaysExceeded Code = "MAX_CONSECUTIVE_DAYS_EXCEEDED"
	CodeInsufficientStaffing       Code = "INSUFFICIENT_STAFFING"
	CodeSupervisorRequired         Code = "SUPERVISOR_REQUIRED"
	CodeWeeklyHoursExceeded        Code = "WEEKLY_HOURS_EXCEEDED"
	CodePatternDaysMismatch        Code = "PATTERN_DAYS_MISMATCH"
	CodePatternDurationMismatch    Code = "PATTERN_DURATION_MISMATCH"
	CodePatternOffDay              Code = "PATTERN_OFF_DAY"
	CodeShiftOverlap               Code = "SHIFT_OVERLAP"
	CodeUnknownReference           Code = "UNKNOWN_REFERENCE"
)

// Warnings
const (
	CodeRestNearMinimum      Code = "REST_NEAR_MINIMUM"
	CodeAtMaxConsecutiveDays Code = "AT_MAX_CONSECUTIVE_DAYS"
	CodeWeeklyHoursUnder     Code = "WEEKLY_HOURS_UNDER"
)

const (
	DefaultMinimumRestHours       = 10
	DefaultMaximumConsecutiveDays = 6

	// restWarningMarginHours is how close to the minimum a rest period can be before it is flagged
	restWarningMarginHours = 2
)

// Details carries the structured context of a validation error.
// Only the fields relevant to the rule are populated.
type Details struct {
	EmployeeID    string  `json:"employeeId,omitempty"`
	ShiftID       string  `json:"shiftId,omitempty"`
	Date          string  `json:"date,omitempty"`
	RequirementID string  `json:"requirementId,omitempty"`
	Period        string  `json:"period,omitempty"`
	Expected      float64 `json:"expected,omitempty"`
	Actual        float64 `json:"actual,omitempty"`
}

// ValidationError is a single rule violation. Violations are data, not Go errors.
type ValidationError struct {
	Code    Code    `json:"code"`
	Message string  `json:"message"`
	Details Details `json:"details"`
}

// Result is the outcome of one rule or of the full aggregate
type Result struct {
	IsValid  bool              `json:"isValid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
}

// Options are the tunable limits used by the rules
type Options struct {
	MinimumRestHours       float64
	MaximumConsecutiveDays int

	// StartDate and EndDate bound the window used to decide which rotation cycles are complete.
	// When empty they default to the span of the assignment dates. When both are set, staffing
	// is also checked on every date of the window.
	StartDate string
	EndDate   string
}

// DefaultOptions returns the standard rest and consecutive-day limits
func DefaultOptions() Options {
	return Options{
		MinimumRestHours:       DefaultMinimumRestHours,
		MaximumConsecutiveDays: DefaultMaximumConsecutiveDays,
	}
}

func newResult() *Result {
	return &Result{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}
}

func (r *Result) addError(code Code, message string, details Details) {
	r.IsValid = false
	r.Errors = append(r.Errors, ValidationError{Code: code, Message: message, Details: details})
}

func (r *Result) addWarning(code Code, message string, details Details) {
	r.Warnings = append(r.Warnings, ValidationError{Code: code, Message: message, Details: details})
}

func (r *Result) merge(other *Result) {
	if other == nil {
		return
	}
	r.IsValid = r.IsValid && other.IsValid
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// HasCode returns true if any error carries the given code
func (r *Result) HasCode(code Code) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// ErrorsWithCode returns the errors carrying the given code
func (r *Result) ErrorsWithCode(code Code) []ValidationError {
	var matched []ValidationError
	for _, e := range r.Errors {
		if e.Code == code {
			matched = append(matched, e)
		}
	}
	return matched
}

// groupByEmployee returns the assignments of each employee sorted by date, and the employee IDs in sorted order
func groupByEmployee(assignments []model.ScheduleAssignment) ([]string, map[string][]model.ScheduleAssignment) {
	byEmployee := make(map[string][]model.ScheduleAssignment)
	for _, a := range assignments {
		byEmployee[a.EmployeeID] = append(byEmployee[a.EmployeeID], a)
	}

	ids := make([]string, 0, len(byEmployee))
	for id, list := range byEmployee {
		ids = append(ids, id)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Date < list[j].Date
		})
	}
	sort.Strings(ids)
	return ids, byEmployee
}

func shiftIndex(shifts []model.Shift) map[string]model.Shift {
	index := make(map[string]model.Shift, len(shifts))
	for _, s := range shifts {
		index[s.ID] = s
	}
	return index
}

func employeeIndex(employees []model.Employee) map[string]model.Employee {
	index := make(map[string]model.Employee, len(employees))
	for _, e := range employees {
		index[e.ID] = e
	}
	return index
}
