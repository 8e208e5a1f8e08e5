package model

import "math"

type Role string

const (
	RoleDispatcher      Role = "Dispatcher"
	RoleShiftSupervisor Role = "Shift Supervisor"
	RoleManagement      Role = "Management"
)

func (r Role) IsValid() bool {
	return r == RoleDispatcher || r == RoleShiftSupervisor || r == RoleManagement
}

type PatternType string

const (
	PatternFourTens            PatternType = "4x10"
	PatternThreeTwelvesOneFour PatternType = "3x12_1x4"
	PatternCustom              PatternType = "Custom"
)

type AssignmentStatus string

const (
	StatusScheduled     AssignmentStatus = "scheduled"
	StatusPendingReview AssignmentStatus = "pending_review"
)

// Employee represents a member of staff who can be scheduled
type Employee struct {
	ID                   string
	Name                 string
	Role                 Role
	WeeklyHoursScheduled float64
	DefaultShiftTypeID   string
}

// IsSupervisor returns true if the employee counts towards supervisor coverage
func (e Employee) IsSupervisor() bool {
	return e.Role == RoleShiftSupervisor
}

// Shift is a catalog entry describing a time of day that can be worked.
// EndTime may be earlier than StartTime, in which case the shift crosses midnight.
type Shift struct {
	ID               string
	Name             string
	ShiftTypeID      string
	StartTime        string // HH:MM
	EndTime          string // HH:MM
	DurationHours    float64
	DurationCategory int
}

// DurationBucket returns the duration category used for pattern matching.
// Falls back to the rounded duration when no category is set.
func (s Shift) DurationBucket() int {
	if s.DurationCategory > 0 {
		return s.DurationCategory
	}
	return int(math.Round(s.DurationHours))
}

// ShiftPattern defines a repeating on/off rotation
type ShiftPattern struct {
	ID            string
	Name          string
	PatternType   PatternType
	DaysOn        int
	DaysOff       int
	ShiftDuration int
}

// CycleLength returns the number of days before the rotation repeats
func (p ShiftPattern) CycleLength() int {
	return p.DaysOn + p.DaysOff
}

// AllowedDurations returns the shift duration buckets an employee on this pattern may work.
// An empty slice means any duration is allowed.
func (p ShiftPattern) AllowedDurations() []int {
	if p.PatternType == PatternThreeTwelvesOneFour {
		return []int{12, 4}
	}
	if p.ShiftDuration > 0 {
		return []int{p.ShiftDuration}
	}
	return nil
}

// AllowsDuration returns true if a shift of the given duration bucket fits the pattern
func (p ShiftPattern) AllowsDuration(bucket int) bool {
	allowed := p.AllowedDurations()
	if len(allowed) == 0 {
		return true
	}
	for _, d := range allowed {
		if d == bucket {
			return true
		}
	}
	return false
}

// EmployeePattern binds an employee to a pattern for an effective date range.
// RotationStartDate fixes the phase of the on/off cycle.
type EmployeePattern struct {
	ID                string
	EmployeeID        string
	PatternID         string
	RotationStartDate string // YYYY-MM-DD
	EffectiveFrom     string // YYYY-MM-DD, empty = unbounded
	EffectiveTo       string // YYYY-MM-DD, empty = open-ended
}

// ActiveBetween returns true if the binding is in effect at any point in [from, to].
// Dates are ISO strings so lexical comparison matches chronological order.
func (ep EmployeePattern) ActiveBetween(from, to string) bool {
	if ep.EffectiveFrom != "" && ep.EffectiveFrom > to {
		return false
	}
	if ep.EffectiveTo != "" && ep.EffectiveTo < from {
		return false
	}
	return true
}

// FindActivePattern returns the first binding for the employee that is in effect within [from, to]
func FindActivePattern(bindings []EmployeePattern, employeeID, from, to string) (EmployeePattern, bool) {
	for _, binding := range bindings {
		if binding.EmployeeID == employeeID && binding.ActiveBetween(from, to) {
			return binding, true
		}
	}
	return EmployeePattern{}, false
}

// ActivePatterns returns every binding for the employee that is in effect within [from, to], in input order
func ActivePatterns(bindings []EmployeePattern, employeeID, from, to string) []EmployeePattern {
	var active []EmployeePattern
	for _, binding := range bindings {
		if binding.EmployeeID == employeeID && binding.ActiveBetween(from, to) {
			active = append(active, binding)
		}
	}
	return active
}

// MinimumOverride replaces a requirement's minimum headcount on matching dates
type MinimumOverride struct {
	AppliesTo        func(date string) bool
	MinimumEmployees int
}

// StaffingRequirement is a time-of-day period with a minimum headcount
type StaffingRequirement struct {
	ID                      string
	Name                    string
	StartTime               string // HH:MM
	EndTime                 string // HH:MM
	MinimumEmployees        int
	ShiftSupervisorRequired bool
	Overrides               []MinimumOverride
}

// PeriodKey identifies the requirement's window in coverage reports
func (r StaffingRequirement) PeriodKey() string {
	return r.StartTime + "-" + r.EndTime
}

// MinimumFor returns the minimum headcount in effect on the given date.
// Later overrides take precedence over earlier ones.
func (r StaffingRequirement) MinimumFor(date string) int {
	minimum := r.MinimumEmployees
	for _, override := range r.Overrides {
		if override.AppliesTo != nil && override.AppliesTo(date) {
			minimum = override.MinimumEmployees
		}
	}
	return minimum
}

// ScheduleAssignment places one employee on one shift on one date
type ScheduleAssignment struct {
	EmployeeID string
	ShiftID    string
	Date       string // YYYY-MM-DD
	Status     AssignmentStatus
}

// PeriodCoverage is the staffing tally for one requirement period on one date
type PeriodCoverage struct {
	Required    int
	Actual      int
	Supervisors int
	Overtime    int
}

// CoverageReport holds the coverage for every requirement period on a date
type CoverageReport struct {
	Date    string
	Periods map[string]*PeriodCoverage
}

// Catalog indexes the read-only inputs of a run by ID
type Catalog struct {
	Employees map[string]Employee
	Shifts    map[string]Shift
	Patterns  map[string]ShiftPattern
}

// NewCatalog builds lookup maps for the given inputs
func NewCatalog(employees []Employee, shifts []Shift, patterns []ShiftPattern) *Catalog {
	c := &Catalog{
		Employees: make(map[string]Employee, len(employees)),
		Shifts:    make(map[string]Shift, len(shifts)),
		Patterns:  make(map[string]ShiftPattern, len(patterns)),
	}
	for _, e := range employees {
		c.Employees[e.ID] = e
	}
	for _, s := range shifts {
		c.Shifts[s.ID] = s
	}
	for _, p := range patterns {
		c.Patterns[p.ID] = p
	}
	return c
}
