package commands

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jakechorley/dispatch-rota/internal/config"
	"github.com/jakechorley/dispatch-rota/pkg/clients/sheetsclient"
	"github.com/jakechorley/dispatch-rota/pkg/db"
)

// Migrator applies the database schema
type Migrator interface {
	RunMigrations(ctx context.Context) error
}

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Database db.Database
	Migrator Migrator
	Logger   *zap.Logger
	Ctx      context.Context

	sheetsOnce   sync.Once
	sheetsClient *sheetsclient.Client
	sheetsErr    error
}

// SheetsClient connects to Google Sheets on first use, so commands that never publish
// don't need OAuth credentials
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	app.sheetsOnce.Do(func() {
		app.Logger.Info("Loading OAuth client configuration")
		oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
		if err != nil {
			app.sheetsErr = fmt.Errorf("failed to load OAuth client config: %w", err)
			return
		}

		app.Logger.Info("Initializing sheets client")
		app.sheetsClient, app.sheetsErr = sheetsclient.NewClient(app.Ctx, oauthCfg, app.Env, app.Logger)
		if app.sheetsErr != nil {
			app.sheetsErr = fmt.Errorf("failed to create sheets client: %w", app.sheetsErr)
		}
	})
	return app.sheetsClient, app.sheetsErr
}
