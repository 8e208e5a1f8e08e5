package services

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jakechorley/dispatch-rota/internal/config"
	"github.com/jakechorley/dispatch-rota/pkg/export"
)

// ExportRun writes a stored run as an XLSX workbook with schedule, assignment and coverage sheets
func ExportRun(ctx context.Context, store RunReader, cfg *config.Config, logger *zap.Logger, runID string, w io.Writer) error {
	stored, err := loadRun(ctx, store, cfg, logger, runID)
	if err != nil {
		return err
	}

	reports, err := stored.coverage(logger)
	if err != nil {
		return err
	}

	wb := &export.Workbook{RunID: stored.run.ID, Dates: stored.dates}

	for _, row := range stored.grid() {
		wb.Grid = append(wb.Grid, export.GridRow{
			EmployeeName: displayName(row.employee),
			Role:         string(row.employee.Role),
			Shifts:       row.cells,
			TotalHours:   row.totalHours,
		})
	}

	for _, a := range stored.assignments {
		employee := stored.catalog.Employees[a.EmployeeID]
		employee.ID = a.EmployeeID
		shift := stored.catalog.Shifts[a.ShiftID]
		shiftName := shift.Name
		if shiftName == "" {
			shiftName = a.ShiftID
		}
		wb.Assignments = append(wb.Assignments, export.AssignmentRow{
			Date:         a.Date,
			EmployeeID:   a.EmployeeID,
			EmployeeName: displayName(employee),
			Role:         string(employee.Role),
			ShiftName:    shiftName,
			StartTime:    shift.StartTime,
			EndTime:      shift.EndTime,
			Hours:        shift.DurationHours,
			Status:       string(a.Status),
		})
	}

	periods := periodKeys(stored.input.StaffingRequirements)
	for _, date := range stored.dates {
		report, ok := reports[date]
		if !ok {
			continue
		}
		for _, period := range periods {
			pc, ok := report.Periods[period]
			if !ok {
				continue
			}
			wb.Coverage = append(wb.Coverage, export.CoverageRow{
				Date:        date,
				Period:      period,
				Required:    pc.Required,
				Actual:      pc.Actual,
				Supervisors: pc.Supervisors,
				Overtime:    pc.Overtime,
			})
		}
	}

	if err := export.Write(w, wb); err != nil {
		return fmt.Errorf("failed to export run %s: %w", stored.run.ID, err)
	}

	logger.Info("Exported schedule run",
		zap.String("run_id", stored.run.ID),
		zap.Int("assignments", len(wb.Assignments)),
		zap.Int("coverage_rows", len(wb.Coverage)))
	return nil
}
