// Package postgres implements the storage.Backend interface on PostgreSQL
// with PostGIS. Queueing and batch writes come from the GORM backend.
package postgres

import (
	"fmt"

	"github.com/cyborstrike/combatcore/internal/config"
	"github.com/cyborstrike/combatcore/internal/database"
	gormstorage "github.com/cyborstrike/combatcore/internal/storage/gorm"
)

const maxOpenConns = 10

// Backend wraps the GORM backend with connection setup.
type Backend struct {
	*gormstorage.Backend
	cfg  config.DBConfig
	deps gormstorage.Dependencies
}

// New creates a new PostgreSQL storage backend. If deps.DB is set it is
// used as-is, otherwise Init connects using cfg.
func New(cfg config.DBConfig, deps gormstorage.Dependencies) *Backend {
	return &Backend{cfg: cfg, deps: deps}
}

// Init connects, validates the connection, then migrates the schema and
// starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.GetPostgresDBStandalone(b.cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(maxOpenConns)
		b.deps.DB = db
	}

	b.Backend = gormstorage.New(b.deps)
	return b.Backend.Init()
}

// Close flushes and stops the embedded backend. Safe before Init.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	return b.Backend.Close()
}
