package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/dispatch-rota/cmd/cli/commands"
	"github.com/jakechorley/dispatch-rota/internal/config"
	"github.com/jakechorley/dispatch-rota/pkg/postgres"
	"github.com/jakechorley/dispatch-rota/pkg/utils/logging"
)

var (
	env    string
	app    *commands.AppContext
	pgConn *postgres.DB
)

func main() {
	app = &commands.AppContext{}

	rootCmd := &cobra.Command{
		Use:   "dispatch-rota",
		Short: "Dispatch Rota CLI - Generate and validate dispatch staff schedules",
		Long: `A CLI tool for generating shift schedules from employee rotation patterns,
validating them against labour rules and staffing requirements, and publishing them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
			if pgConn != nil {
				pgConn.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	_ = rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.GenerateCmd(app))
	rootCmd.AddCommand(commands.ValidateCmd(app))
	rootCmd.AddCommand(commands.CoverageCmd(app))
	rootCmd.AddCommand(commands.ApproveCmd(app))
	rootCmd.AddCommand(commands.PublishCmd(app))
	rootCmd.AddCommand(commands.ExportCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up the logger, config and database connection
func initApp() error {
	var err error
	app.Env = env
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger(env, "")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.Float64("minimum_rest_hours", app.Cfg.MinimumRestHours),
		zap.Int("maximum_consecutive_days", app.Cfg.MaximumConsecutiveDays),
		zap.Int("requirement_overrides", len(app.Cfg.RequirementOverrides)))

	app.Logger.Info("Connecting to database")
	pgConn, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Database = pgConn
	app.Migrator = pgConn
	app.Logger.Info("Database connected successfully")

	return nil
}
