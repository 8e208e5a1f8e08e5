package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWrite(t *testing.T) {
	wb := &Workbook{
		RunID: "run-1",
		Dates: []string{"2024-01-01", "2024-01-02"},
		Grid: []GridRow{
			{EmployeeName: "Alice", Role: "Shift Supervisor", Shifts: []string{"Day", "Day"}, TotalHours: 20},
			{EmployeeName: "Bob", Role: "Dispatcher", Shifts: []string{"", "Night"}, TotalHours: 10},
		},
		Assignments: []AssignmentRow{
			{Date: "2024-01-01", EmployeeID: "e1", EmployeeName: "Alice", Role: "Shift Supervisor", ShiftName: "Day", StartTime: "07:00", EndTime: "17:00", Hours: 10, Status: "scheduled"},
		},
		Coverage: []CoverageRow{
			{Date: "2024-01-01", Period: "08:00-16:00", Required: 2, Actual: 1, Supervisors: 1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, wb))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetSchedule, SheetAssignments, SheetCoverage}, f.GetSheetList())

	rows, err := f.GetRows(SheetSchedule)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Employee", "Role", "2024-01-01", "2024-01-02", "Hours"}, rows[0])
	assert.Equal(t, []string{"Alice", "Shift Supervisor", "Day", "Day", "20"}, rows[1])
	assert.Equal(t, []string{"Bob", "Dispatcher", "", "Night", "10"}, rows[2])

	rows, err = f.GetRows(SheetAssignments)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-01-01", "e1", "Alice", "Shift Supervisor", "Day", "07:00", "17:00", "10", "scheduled"}, rows[1])

	rows, err = f.GetRows(SheetCoverage)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-01-01", "08:00-16:00", "2", "1", "1", "0"}, rows[1])
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &Workbook{RunID: "empty"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetAssignments)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
