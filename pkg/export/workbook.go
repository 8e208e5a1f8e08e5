// Package export renders a stored schedule run as an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSchedule    = "Schedule"
	SheetAssignments = "Assignments"
	SheetCoverage    = "Coverage"
)

// GridRow is one employee's line on the Schedule sheet
type GridRow struct {
	EmployeeName string
	Role         string
	Shifts       []string // aligned with Workbook.Dates
	TotalHours   float64
}

// AssignmentRow is one assignment on the Assignments sheet
type AssignmentRow struct {
	Date         string
	EmployeeID   string
	EmployeeName string
	Role         string
	ShiftName    string
	StartTime    string
	EndTime      string
	Hours        float64
	Status       string
}

// CoverageRow is one requirement period on one date on the Coverage sheet
type CoverageRow struct {
	Date        string
	Period      string
	Required    int
	Actual      int
	Supervisors int
	Overtime    int
}

// Workbook is everything written for a run
type Workbook struct {
	RunID       string
	Dates       []string
	Grid        []GridRow
	Assignments []AssignmentRow
	Coverage    []CoverageRow
}

// Write renders the workbook as XLSX to w
func Write(w io.Writer, wb *Workbook) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetSchedule); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, name := range []string{SheetAssignments, SheetCoverage} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create %s sheet: %w", name, err)
		}
	}

	if err := writeRows(f, SheetSchedule, header, scheduleRows(wb)); err != nil {
		return err
	}
	if err := f.SetPanes(SheetSchedule, &excelize.Panes{
		Freeze:      true,
		XSplit:      2,
		YSplit:      1,
		TopLeftCell: "C2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return fmt.Errorf("failed to freeze schedule panes: %w", err)
	}
	if err := f.SetColWidth(SheetSchedule, "A", "B", 22); err != nil {
		return fmt.Errorf("failed to size schedule columns: %w", err)
	}

	if err := writeRows(f, SheetAssignments, header, assignmentRows(wb)); err != nil {
		return err
	}
	if err := writeRows(f, SheetCoverage, header, coverageRows(wb)); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, headerStyle int, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return nil
}

func scheduleRows(wb *Workbook) [][]interface{} {
	header := []interface{}{"Employee", "Role"}
	for _, date := range wb.Dates {
		header = append(header, date)
	}
	header = append(header, "Hours")

	rows := [][]interface{}{header}
	for _, g := range wb.Grid {
		row := []interface{}{g.EmployeeName, g.Role}
		for i := range wb.Dates {
			cell := ""
			if i < len(g.Shifts) {
				cell = g.Shifts[i]
			}
			row = append(row, cell)
		}
		rows = append(rows, append(row, g.TotalHours))
	}
	return rows
}

func assignmentRows(wb *Workbook) [][]interface{} {
	rows := [][]interface{}{{"Date", "Employee ID", "Employee", "Role", "Shift", "Start", "End", "Hours", "Status"}}
	for _, a := range wb.Assignments {
		rows = append(rows, []interface{}{a.Date, a.EmployeeID, a.EmployeeName, a.Role, a.ShiftName, a.StartTime, a.EndTime, a.Hours, a.Status})
	}
	return rows
}

func coverageRows(wb *Workbook) [][]interface{} {
	rows := [][]interface{}{{"Date", "Period", "Required", "Actual", "Supervisors", "Overtime"}}
	for _, c := range wb.Coverage {
		rows = append(rows, []interface{}{c.Date, c.Period, c.Required, c.Actual, c.Supervisors, c.Overtime})
	}
	return rows
}
