package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/dispatch-rota/internal/config"
	"github.com/jakechorley/dispatch-rota/pkg/clients/sheetsclient"
	"github.com/jakechorley/dispatch-rota/pkg/core/model"
	"github.com/jakechorley/dispatch-rota/pkg/db"
)

// mockStore implements db.Database for testing
type mockStore struct {
	employees        []model.Employee
	shifts           []model.Shift
	patterns         []model.ShiftPattern
	employeePatterns []model.EmployeePattern
	requirements     []model.StaffingRequirement

	runs        map[string]*db.Run
	assignments map[string][]db.Assignment

	insertedRuns        []*db.Run
	insertedAssignments []db.Assignment
	statusUpdates       map[string]string

	getShiftsErr         error
	insertRunErr         error
	insertAssignmentsErr error
	setRunStatusErr      error
}

var _ db.Database = (*mockStore)(nil)

func (m *mockStore) GetEmployees(ctx context.Context) ([]model.Employee, error) {
	return m.employees, nil
}

func (m *mockStore) GetShifts(ctx context.Context) ([]model.Shift, error) {
	if m.getShiftsErr != nil {
		return nil, m.getShiftsErr
	}
	return m.shifts, nil
}

func (m *mockStore) GetShiftPatterns(ctx context.Context) ([]model.ShiftPattern, error) {
	return m.patterns, nil
}

func (m *mockStore) GetEmployeePatterns(ctx context.Context) ([]model.EmployeePattern, error) {
	return m.employeePatterns, nil
}

func (m *mockStore) GetStaffingRequirements(ctx context.Context) ([]model.StaffingRequirement, error) {
	return m.requirements, nil
}

func (m *mockStore) GetRun(ctx context.Context, runID string) (*db.Run, error) {
	run, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	copied := *run
	return &copied, nil
}

// InsertRunWithAssignments records nothing when either write fails, like a rolled back transaction
func (m *mockStore) InsertRunWithAssignments(ctx context.Context, run *db.Run, assignments []db.Assignment) error {
	if m.insertRunErr != nil {
		return m.insertRunErr
	}
	if m.insertAssignmentsErr != nil {
		return m.insertAssignmentsErr
	}
	m.insertedRuns = append(m.insertedRuns, run)
	m.insertedAssignments = append(m.insertedAssignments, assignments...)
	return nil
}

func (m *mockStore) SetRunStatus(ctx context.Context, runID string, status string) error {
	if m.setRunStatusErr != nil {
		return m.setRunStatusErr
	}
	if m.statusUpdates == nil {
		m.statusUpdates = make(map[string]string)
	}
	m.statusUpdates[runID] = status
	return nil
}

func (m *mockStore) GetAssignments(ctx context.Context, runID string) ([]db.Assignment, error) {
	return m.assignments[runID], nil
}

// mockPublisher implements SchedulePublisher for testing
type mockPublisher struct {
	spreadsheetID string
	published     *sheetsclient.PublishedSchedule
	err           error
}

func (m *mockPublisher) PublishSchedule(ctx context.Context, spreadsheetID string, schedule *sheetsclient.PublishedSchedule) error {
	if m.err != nil {
		return m.err
	}
	m.spreadsheetID = spreadsheetID
	m.published = schedule
	return nil
}

var (
	alice = model.Employee{ID: "e1", Name: "Alice", Role: model.RoleShiftSupervisor, WeeklyHoursScheduled: 40, DefaultShiftTypeID: "day"}
	bob   = model.Employee{ID: "e2", Name: "Bob", Role: model.RoleDispatcher, WeeklyHoursScheduled: 40, DefaultShiftTypeID: "day"}

	earlyShift = model.Shift{ID: "s-early", Name: "Early", ShiftTypeID: "day", StartTime: "07:00", EndTime: "17:00", DurationHours: 10}
	lateShift  = model.Shift{ID: "s-late", Name: "Late", ShiftTypeID: "day", StartTime: "08:00", EndTime: "18:00", DurationHours: 10}
	nightShift = model.Shift{ID: "s-night", Name: "Night", ShiftTypeID: "night", StartTime: "19:00", EndTime: "05:00", DurationHours: 10}

	fourTens = model.ShiftPattern{ID: "p-4x10", Name: "4x10", PatternType: model.PatternFourTens, DaysOn: 4, DaysOff: 3, ShiftDuration: 10}

	daytime = model.StaffingRequirement{ID: "r-day", Name: "Daytime", StartTime: "08:00", EndTime: "16:00", MinimumEmployees: 2, ShiftSupervisorRequired: true}
)

// weekdayDaytime is the daytime requirement with no minimum from Friday to Sunday, when the
// Monday-anchored 4x10 crew is off
func weekdayDaytime() model.StaffingRequirement {
	req := daytime
	req.Overrides = []model.MinimumOverride{{
		AppliesTo: func(date string) bool {
			d, err := time.Parse("2006-01-02", date)
			if err != nil {
				return false
			}
			return d.Weekday() == time.Friday || d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
		},
		MinimumEmployees: 0,
	}}
	return req
}

func newStore() *mockStore {
	return &mockStore{
		employees: []model.Employee{alice, bob},
		shifts:    []model.Shift{earlyShift, lateShift, nightShift},
		patterns:  []model.ShiftPattern{fourTens},
		employeePatterns: []model.EmployeePattern{
			{ID: "b1", EmployeeID: "e1", PatternID: fourTens.ID, RotationStartDate: "2024-01-01"},
			{ID: "b2", EmployeeID: "e2", PatternID: fourTens.ID, RotationStartDate: "2024-01-01"},
		},
		requirements: []model.StaffingRequirement{weekdayDaytime()},
		runs:         make(map[string]*db.Run),
		assignments:  make(map[string][]db.Assignment),
	}
}

func testConfig() *config.Config {
	return &config.Config{
		DatabaseURL:            "postgres://test",
		MinimumRestHours:       10,
		MaximumConsecutiveDays: 6,
		ScheduleSheetID:        "sheet-1",
	}
}

// withStoredRun adds a week-long run where Alice works early and Bob late, Monday to Thursday
func withStoredRun(store *mockStore, status string) string {
	runID := "run-1"
	store.runs[runID] = &db.Run{ID: runID, StartDate: "2024-01-01", EndDate: "2024-01-07", Success: true, Status: status}

	var records []db.Assignment
	for _, employee := range []struct{ id, shift string }{{"e1", earlyShift.ID}, {"e2", lateShift.ID}} {
		for _, date := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"} {
			records = append(records, db.Assignment{
				ID:         fmt.Sprintf("a-%s-%s", employee.id, date),
				RunID:      runID,
				EmployeeID: employee.id,
				ShiftID:    employee.shift,
				Date:       date,
				Status:     status,
			})
		}
	}
	store.assignments[runID] = records
	return runID
}
