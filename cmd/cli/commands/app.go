package commands

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/config"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/database"
	"go.uber.org/zap"
)

// AppContext holds what every command needs. The database is opened lazily
// so commands that never touch it work without one.
type AppContext struct {
	Ctx    context.Context
	Cfg    *config.Config
	Logger *zap.Logger

	db *database.DB
}

func (a *AppContext) DB() (*database.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	if a.Cfg.Storage.Driver != "postgres" {
		return nil, fmt.Errorf("command needs STORAGE_DRIVER=postgres, got %q", a.Cfg.Storage.Driver)
	}

	db, err := database.NewPostgreSQLDB(a.Ctx, a.Cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: a.Cfg.Database.MaxConns,
		MinConns: a.Cfg.Database.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db
	return db, nil
}

func (a *AppContext) Close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}
