package bootstrap

import (
	"context"
	"fmt"

	"github.com/go-authgate/authbridge/internal/config"
	"github.com/go-authgate/authbridge/internal/logger"
	"github.com/go-authgate/authbridge/internal/store"
)

// initializeDatabase opens the audit database. Returns nil when audit
// logging is disabled.
func initializeDatabase(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	if !cfg.EnableAuditLogging {
		return nil, nil //nolint:nilnil // database not needed in this configuration
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.DBInitTimeout)
	defer cancel()

	db, err := store.New(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Infof("Audit database initialized (driver: %s)", cfg.DatabaseDriver)
	return db, nil
}
