package main

import (
	"fmt"

	"github.com/mapmarks/overlay/internal/config"
	"github.com/mapmarks/overlay/internal/database"
	"github.com/mapmarks/overlay/internal/storage"
	"github.com/mapmarks/overlay/internal/storage/gormstore"
	"github.com/mapmarks/overlay/internal/storage/memory"
)

func createStorageBackend(storageCfg config.StorageConfig) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		db := database.NewManager(ZLogger)
		if err := db.ConnectPostgres(); err != nil {
			return nil, fmt.Errorf("failed to create Postgres backend: %w", err)
		}
		Logger.Info("Postgres storage backend initialized")
		return gormstore.New(db), nil

	case "sqlite":
		db := database.NewManager(ZLogger)
		if err := db.ConnectSqlite(storageCfg.SQLite.Path); err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		Logger.Info("SQLite storage backend initialized", "path", storageCfg.SQLite.Path)
		return gormstore.New(db), nil

	case "memory", "":
		Logger.Info("Memory storage backend initialized", "path", storageCfg.Memory.Path)
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}
