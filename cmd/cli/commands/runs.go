package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/dispatch-rota/pkg/core/services"
)

// ValidateCmd creates the validate command
func ValidateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <run_id>",
		Short: "Revalidate a saved schedule run against the current catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("validate command", zap.String("run_id", args[0]))

			result, err := services.ValidateRun(app.Ctx, app.Database, app.Cfg, app.Logger, args[0])
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			printValidation(result)
			return nil
		},
	}
}

// CoverageCmd creates the coverage command
func CoverageCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "coverage <run_id>",
		Short: "Show per-date staffing coverage for a saved schedule run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("coverage command", zap.String("run_id", args[0]))

			result, err := services.RunCoverage(app.Ctx, app.Database, app.Cfg, app.Logger, args[0])
			if err != nil {
				return fmt.Errorf("coverage failed: %w", err)
			}

			fmt.Printf("\n📊 Coverage for run %s (%s to %s)\n\n", result.Run.ID, result.Run.StartDate, result.Run.EndDate)
			fmt.Printf("%-12s  %-13s  %-8s  %-7s  %-11s  %-8s\n", "Date", "Period", "Required", "Staffed", "Supervisors", "Overtime")
			fmt.Println("------------  -------------  --------  -------  -----------  --------")
			for _, date := range result.Dates {
				report, ok := result.Reports[date]
				if !ok {
					continue
				}
				for _, period := range result.Periods {
					pc, ok := report.Periods[period]
					if !ok {
						continue
					}
					fmt.Printf("%-12s  %-13s  %-8d  %-7d  %-11d  %-8d\n", date, period, pc.Required, pc.Actual, pc.Supervisors, pc.Overtime)
				}
			}
			fmt.Println()

			printGaps(result.Gaps)
			return nil
		},
	}
}

// ApproveCmd creates the approve command
func ApproveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <run_id>",
		Short: "Approve a schedule run that was saved for review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("approve command", zap.String("run_id", args[0]))

			run, err := services.ApproveRun(app.Ctx, app.Database, app.Logger, args[0])
			if err != nil {
				return fmt.Errorf("approval failed: %w", err)
			}

			fmt.Printf("\n✅ Run %s is %s\n\n", run.ID, run.Status)
			return nil
		},
	}
}

// PublishCmd creates the publish command
func PublishCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <run_id>",
		Short: "Publish a saved schedule run to Google Sheets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("publish command", zap.String("run_id", args[0]))

			client, err := app.SheetsClient()
			if err != nil {
				return err
			}

			published, err := services.PublishRun(app.Ctx, app.Database, client, app.Cfg, app.Logger, args[0])
			if err != nil {
				return fmt.Errorf("failed to publish schedule: %w", err)
			}

			fmt.Printf("\n✅ Schedule Published Successfully\n\n")
			fmt.Printf("Window:    %s to %s\n", published.StartDate, published.EndDate)
			fmt.Printf("Employees: %d\n", len(published.Rows))
			fmt.Printf("Gaps:      %d\n", len(published.Gaps))
			fmt.Printf("Sheet ID:  %s\n\n", app.Cfg.ScheduleSheetID)
			return nil
		},
	}
}

// ExportCmd creates the export command
func ExportCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <run_id> <file.xlsx>",
		Short: "Export a saved schedule run to an Excel workbook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, path := args[0], args[1]
			app.Logger.Debug("export command", zap.String("run_id", runID), zap.String("path", path))

			file, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}

			if err := services.ExportRun(app.Ctx, app.Database, app.Cfg, app.Logger, runID, file); err != nil {
				file.Close()
				os.Remove(path)
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", path, err)
			}

			fmt.Printf("\n✅ Exported run %s to %s\n\n", runID, path)
			return nil
		},
	}
}

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Info("Running database migrations")
			if err := app.Migrator.RunMigrations(app.Ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("\n✅ Database is up to date\n\n")
			return nil
		},
	}
}
