package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cyborstrike/combatcore/internal/cache"
	"github.com/cyborstrike/combatcore/internal/config"
	"github.com/cyborstrike/combatcore/internal/storage"
	gormstorage "github.com/cyborstrike/combatcore/internal/storage/gorm"
	"github.com/cyborstrike/combatcore/internal/storage/memory"
	pgstorage "github.com/cyborstrike/combatcore/internal/storage/postgres"
	sqlitestorage "github.com/cyborstrike/combatcore/internal/storage/sqlite"

	"gorm.io/gorm"
)

// ErrUnknownStorage is returned for an unsupported storage.type.
var ErrUnknownStorage = errors.New("unknown storage type")

func createStorageBackend(storageCfg config.StorageConfig, dbCfg config.DBConfig, logger *slog.Logger) (storage.Backend, error) {
	deps := gormstorage.Dependencies{
		EntityCache: cache.NewEntityCache(),
		KillTally:   cache.NewKillTally(),
		Logger:      logger,
	}

	switch storageCfg.Type {
	case "postgres":
		logger.Info("Postgres storage backend initialized", "host", dbCfg.Host, "database", dbCfg.Database)
		return pgstorage.New(dbCfg, deps), nil

	case "sqlite":
		if dir := filepath.Dir(storageCfg.SQLite.Path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create SQLite dump dir: %w", err)
			}
		}
		backend, err := sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: storageCfg.SQLite.DumpInterval,
			DumpPath:     storageCfg.SQLite.Path,
		}, deps)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		logger.Info("SQLite storage backend initialized", "dumpPath", storageCfg.SQLite.Path)
		return backend, nil

	case "memory", "":
		logger.Info("Memory storage backend initialized", "outputDir", storageCfg.Memory.OutputDir)
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStorage, storageCfg.Type)
	}
}

// dbOf returns the connection behind a gorm-based backend.
func dbOf(b storage.Backend) *gorm.DB {
	if d, ok := b.(interface{ DB() *gorm.DB }); ok {
		return d.DB()
	}
	return nil
}
