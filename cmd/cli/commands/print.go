package commands

import (
	"fmt"

	"github.com/jakechorley/dispatch-rota/pkg/core/coverage"
	"github.com/jakechorley/dispatch-rota/pkg/core/model"
	"github.com/jakechorley/dispatch-rota/pkg/core/validation"
)

func printGaps(gaps []coverage.Gap) {
	if len(gaps) == 0 {
		fmt.Println("✅ No coverage gaps")
		fmt.Println()
		return
	}

	fmt.Printf("📉 Coverage Gaps (%d):\n\n", len(gaps))
	fmt.Printf("%-12s  %-13s  %-8s  %-7s  %-10s\n", "Date", "Period", "Required", "Staffed", "Supervisor")
	fmt.Println("------------  -------------  --------  -------  ----------")
	for _, gap := range gaps {
		supervisor := "ok"
		if gap.SupervisorMissing {
			supervisor = "missing"
		}
		fmt.Printf("%-12s  %-13s  %-8d  %-7d  %-10s\n", gap.Date, gap.Period, gap.Required, gap.Actual, supervisor)
	}
	fmt.Println()
}

func printAssignments(assignments []model.ScheduleAssignment) {
	if len(assignments) == 0 {
		return
	}

	fmt.Printf("📅 Assignments:\n\n")
	fmt.Printf("%-20s  %-12s  %-20s\n", "Employee", "Date", "Shift")
	fmt.Println("--------------------  ------------  --------------------")
	for _, a := range assignments {
		fmt.Printf("%-20s  %-12s  %-20s\n", a.EmployeeID, a.Date, a.ShiftID)
	}
	fmt.Println()
}

func printValidation(result *validation.Result) {
	if result.IsValid {
		fmt.Printf("\n✅ Schedule is valid\n\n")
	} else {
		fmt.Printf("\n❌ Schedule has %d validation errors\n\n", len(result.Errors))
	}

	for _, verr := range result.Errors {
		fmt.Printf("  ✗ [%s] %s\n", verr.Code, verr.Message)
	}
	if len(result.Errors) > 0 {
		fmt.Println()
	}

	for _, w := range result.Warnings {
		fmt.Printf("  ! [%s] %s\n", w.Code, w.Message)
	}
	if len(result.Warnings) > 0 {
		fmt.Println()
	}
}
