package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/dispatch-rota/pkg/core/services"
)

// GenerateCmd creates the generate command
func GenerateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <start_date> <end_date>",
		Short: "Generate a schedule for the given dates (YYYY-MM-DD, inclusive)",
		Long: `Generate a schedule from the employee rotations, shift catalog and staffing requirements.
A schedule that passes validation is saved. Use --force to save one that does not; it is marked
pending_review until approved.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			include, _ := cmd.Flags().GetStringSlice("include")
			exclude, _ := cmd.Flags().GetStringSlice("exclude")
			force, _ := cmd.Flags().GetBool("force")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			app.Logger.Debug("generate command",
				zap.String("start_date", args[0]),
				zap.String("end_date", args[1]),
				zap.Strings("include", include),
				zap.Strings("exclude", exclude),
				zap.Bool("force", force),
				zap.Bool("dry_run", dryRun))

			result, err := services.GenerateSchedule(app.Ctx, app.Database, app.Cfg, app.Logger, services.GenerateRequest{
				StartDate:          args[0],
				EndDate:            args[1],
				IncludeEmployeeIDs: include,
				ExcludeEmployeeIDs: exclude,
				Force:              force,
				DryRun:             dryRun,
			})
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			scheduling := result.Scheduling

			fmt.Printf("\n🎯 Schedule Generation Results\n\n")
			fmt.Printf("Window:      %s to %s\n", args[0], args[1])
			fmt.Printf("Assignments: %d\n", len(scheduling.Assignments))
			switch {
			case dryRun:
				fmt.Printf("Mode:        🧪 DRY RUN (not saved)\n")
			case result.Run == nil:
				fmt.Printf("Status:      ❌ FAILED (not saved)\n")
			case scheduling.Success:
				fmt.Printf("Status:      ✅ SUCCESS (saved)\n")
			default:
				fmt.Printf("Status:      ⚠️  FORCED (saved for review)\n")
			}
			if result.Run != nil {
				fmt.Printf("Run ID:      %s\n", result.Run.ID)
			}
			fmt.Println()

			if len(scheduling.Errors) > 0 {
				fmt.Printf("⚠️  Validation Errors (%d):\n", len(scheduling.Errors))
				for _, msg := range scheduling.Errors {
					fmt.Printf("  • %s\n", msg)
				}
				fmt.Println()
			}

			if len(scheduling.Warnings) > 0 {
				fmt.Printf("Warnings (%d):\n", len(scheduling.Warnings))
				for _, w := range scheduling.Warnings {
					fmt.Printf("  • %s\n", w)
				}
				fmt.Println()
			}

			if len(scheduling.UnassignedShifts) > 0 {
				fmt.Printf("Unassigned working days (%d):\n", len(scheduling.UnassignedShifts))
				for _, u := range scheduling.UnassignedShifts {
					fmt.Printf("  • %s %s: %s\n", u.Date, u.EmployeeID, u.Reason)
				}
				fmt.Println()
			}

			printGaps(scheduling.CoverageGaps)
			printAssignments(scheduling.Assignments)

			return nil
		},
	}

	cmd.Flags().StringSlice("include", nil, "Only schedule these employee IDs")
	cmd.Flags().StringSlice("exclude", nil, "Leave these employee IDs out of the schedule")
	cmd.Flags().Bool("force", false, "Save the schedule even if it fails validation")
	cmd.Flags().Bool("dry-run", false, "Generate without saving to the database")

	return cmd
}
