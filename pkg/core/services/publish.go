package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jakechorley/dispatch-rota/internal/config"
	"github.com/jakechorley/dispatch-rota/pkg/clients/sheetsclient"
	"github.com/jakechorley/dispatch-rota/pkg/core/coverage"
	"github.com/jakechorley/dispatch-rota/pkg/core/model"
	"github.com/jakechorley/dispatch-rota/pkg/db"
)

// SchedulePublisher writes a schedule grid to a spreadsheet.
// sheetsclient.Client implements this interface.
type SchedulePublisher interface {
	PublishSchedule(ctx context.Context, spreadsheetID string, schedule *sheetsclient.PublishedSchedule) error
}

// gridRow is one employee's shifts across the run window
type gridRow struct {
	employee   model.Employee
	cells      []string
	totalHours float64
}

// shiftLabel renders a shift for a grid cell, e.g. "Day (07:00-17:00)"
func shiftLabel(shift model.Shift) string {
	name := shift.Name
	if name == "" {
		name = shift.ID
	}
	return fmt.Sprintf("%s (%s-%s)", name, shift.StartTime, shift.EndTime)
}

func displayName(e model.Employee) string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

// grid lays the run out with one row per scheduled employee ordered by name, and one cell per date
func (s *storedRun) grid() []gridRow {
	column := make(map[string]int, len(s.dates))
	for i, date := range s.dates {
		column[date] = i
	}

	rows := make(map[string]*gridRow)
	for _, a := range s.assignments {
		col, inWindow := column[a.Date]
		shift, knownShift := s.catalog.Shifts[a.ShiftID]
		if !inWindow || !knownShift {
			continue
		}

		row, ok := rows[a.EmployeeID]
		if !ok {
			employee, known := s.catalog.Employees[a.EmployeeID]
			if !known {
				employee = model.Employee{ID: a.EmployeeID}
			}
			row = &gridRow{employee: employee, cells: make([]string, len(s.dates))}
			rows[a.EmployeeID] = row
		}

		if row.cells[col] != "" {
			row.cells[col] += ", "
		}
		row.cells[col] += shiftLabel(shift)
		row.totalHours += shift.DurationHours
	}

	ordered := make([]gridRow, 0, len(rows))
	for _, row := range rows {
		ordered = append(ordered, *row)
	}
	sort.Slice(ordered, func(i, j int) bool {
		ni, nj := displayName(ordered[i].employee), displayName(ordered[j].employee)
		if ni != nj {
			return ni < nj
		}
		return ordered[i].employee.ID < ordered[j].employee.ID
	})
	return ordered
}

// PublishRun publishes a stored run to the configured schedule spreadsheet.
// Runs still pending review must be approved first.
func PublishRun(
	ctx context.Context,
	store RunReader,
	publisher SchedulePublisher,
	cfg *config.Config,
	logger *zap.Logger,
	runID string,
) (*sheetsclient.PublishedSchedule, error) {
	if cfg.ScheduleSheetID == "" {
		return nil, fmt.Errorf("scheduleSheetID is not configured")
	}

	stored, err := loadRun(ctx, store, cfg, logger, runID)
	if err != nil {
		return nil, err
	}

	if stored.run.Status == db.RunStatusPendingReview {
		return nil, fmt.Errorf("run %s is pending review and must be approved before publishing", stored.run.ID)
	}

	reports, err := stored.coverage(logger)
	if err != nil {
		return nil, err
	}

	published := &sheetsclient.PublishedSchedule{
		StartDate: stored.run.StartDate,
		EndDate:   stored.run.EndDate,
		Dates:     stored.dates,
	}
	for _, row := range stored.grid() {
		published.Rows = append(published.Rows, sheetsclient.PublishedScheduleRow{
			EmployeeName: displayName(row.employee),
			Role:         string(row.employee.Role),
			Shifts:       row.cells,
			TotalHours:   row.totalHours,
		})
	}
	for _, gap := range coverage.Gaps(reports, stored.input.StaffingRequirements) {
		published.Gaps = append(published.Gaps, sheetsclient.PublishedScheduleGap{
			Date:        gap.Date,
			Period:      gap.Period,
			Required:    gap.Required,
			Actual:      gap.Actual,
			Supervisors: gap.Supervisors,
		})
	}

	logger.Info("Publishing schedule run",
		zap.String("run_id", stored.run.ID),
		zap.Int("employees", len(published.Rows)),
		zap.Int("gaps", len(published.Gaps)))

	if err := publisher.PublishSchedule(ctx, cfg.ScheduleSheetID, published); err != nil {
		return nil, fmt.Errorf("failed to publish schedule: %w", err)
	}

	return published, nil
}
