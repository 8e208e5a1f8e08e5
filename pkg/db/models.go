package db

import "github.com/jakechorley/dispatch-rota/pkg/core/model"

const (
	RunStatusScheduled     = string(model.StatusScheduled)
	RunStatusPendingReview = string(model.StatusPendingReview)
)

// Run represents a database schedule run record
type Run struct {
	ID          string
	StartDate   string
	EndDate     string
	Success     bool
	Status      string
	GeneratedAt string // RFC3339
}

// Assignment represents a database schedule assignment record
type Assignment struct {
	ID         string
	RunID      string
	EmployeeID string
	ShiftID    string
	Date       string
	Status     string
}

// ToModel converts the record into the engine's assignment type
func (a Assignment) ToModel() model.ScheduleAssignment {
	return model.ScheduleAssignment{
		EmployeeID: a.EmployeeID,
		ShiftID:    a.ShiftID,
		Date:       a.Date,
		Status:     model.AssignmentStatus(a.Status),
	}
}

// ToModelAssignments converts a slice of records
func ToModelAssignments(assignments []Assignment) []model.ScheduleAssignment {
	out := make([]model.ScheduleAssignment, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, a.ToModel())
	}
	return out
}
