package sheetsclient

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/sheets/v4"
)

const (
	dateLayout       = "2006-01-02"
	tabDateLayout    = "Mon Jan 02 2006"
	columnDateLayout = "Mon 02 Jan"
)

// PublishedScheduleRow is one employee's line in the published schedule
type PublishedScheduleRow struct {
	EmployeeName string
	Role         string
	Shifts       []string // one cell per entry in PublishedSchedule.Dates, empty when off
	TotalHours   float64
}

// PublishedScheduleGap is an understaffed period listed beneath the grid
type PublishedScheduleGap struct {
	Date        string
	Period      string
	Required    int
	Actual      int
	Supervisors int
}

// PublishedSchedule is a run laid out as an employee by date grid
type PublishedSchedule struct {
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Dates     []string
	Rows      []PublishedScheduleRow
	Gaps      []PublishedScheduleGap
}

// PublishSchedule writes the schedule to a tab titled "Sun Jan 07 2024 - Sat Jan 13 2024".
// An existing tab with that title is cleared and rewritten.
func (c *Client) PublishSchedule(ctx context.Context, spreadsheetID string, schedule *PublishedSchedule) error {
	tabTitle, err := generateTabTitle(schedule.StartDate, schedule.EndDate)
	if err != nil {
		return fmt.Errorf("failed to generate tab title: %w", err)
	}

	exists, err := c.hasSheet(ctx, spreadsheetID, tabTitle)
	if err != nil {
		return err
	}

	if exists {
		c.logger.Debug("Clearing existing schedule tab", zap.String("tab", tabTitle))
		_, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, tabTitle, &sheets.ClearValuesRequest{}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to clear existing tab: %w", err)
		}
	} else {
		c.logger.Debug("Creating schedule tab", zap.String("tab", tabTitle))
		if _, err := c.CreateSheet(ctx, spreadsheetID, tabTitle); err != nil {
			return fmt.Errorf("failed to create tab: %w", err)
		}
	}

	values, err := buildValues(schedule)
	if err != nil {
		return err
	}

	_, err = c.service.Spreadsheets.Values.Update(
		spreadsheetID,
		fmt.Sprintf("%s!A1", tabTitle),
		&sheets.ValueRange{Values: values},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write schedule: %w", err)
	}

	c.logger.Info("Published schedule",
		zap.String("tab", tabTitle),
		zap.Int("employees", len(schedule.Rows)),
		zap.Int("gaps", len(schedule.Gaps)))
	return nil
}

// generateTabTitle creates a tab title in the format "Sun Jan 07 2024 - Sat Jan 13 2024"
func generateTabTitle(startDate, endDate string) (string, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return "", fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return "", fmt.Errorf("invalid end date: %w", err)
	}

	return fmt.Sprintf("%s - %s", start.Format(tabDateLayout), end.Format(tabDateLayout)), nil
}

// buildValues lays out the header, one row per employee, and the coverage gaps after a blank row
func buildValues(schedule *PublishedSchedule) ([][]interface{}, error) {
	header := []interface{}{"Employee", "Role"}
	for _, date := range schedule.Dates {
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule date %q: %w", date, err)
		}
		header = append(header, d.Format(columnDateLayout))
	}
	header = append(header, "Hours")

	values := [][]interface{}{header}
	for _, row := range schedule.Rows {
		sheetRow := []interface{}{row.EmployeeName, row.Role}
		for i := range schedule.Dates {
			cell := ""
			if i < len(row.Shifts) {
				cell = row.Shifts[i]
			}
			sheetRow = append(sheetRow, cell)
		}
		sheetRow = append(sheetRow, row.TotalHours)
		values = append(values, sheetRow)
	}

	if len(schedule.Gaps) > 0 {
		values = append(values,
			[]interface{}{},
			[]interface{}{"Coverage gaps"},
			[]interface{}{"Date", "Period", "Required", "Staffed", "Supervisors"},
		)
		for _, gap := range schedule.Gaps {
			values = append(values, []interface{}{gap.Date, gap.Period, gap.Required, gap.Actual, gap.Supervisors})
		}
	}

	return values, nil
}
