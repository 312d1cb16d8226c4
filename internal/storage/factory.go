// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gamebuildmode/wallgrid/internal/config"
	"github.com/gamebuildmode/wallgrid/internal/database"
	"github.com/gamebuildmode/wallgrid/internal/logging"
	gormstorage "github.com/gamebuildmode/wallgrid/internal/storage/gorm"
	"github.com/gamebuildmode/wallgrid/internal/storage/memory"
	sqlitestorage "github.com/gamebuildmode/wallgrid/internal/storage/sqlite"
	wsstorage "github.com/gamebuildmode/wallgrid/internal/storage/websocket"
)

// NewBackend creates a storage backend based on configuration. The backend
// is not initialized.
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "memory":
		return memory.New(cfg.Memory), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite, cfg.FlushInterval, log)
	case "gorm", "postgres":
		if cfg.Type == "postgres" {
			cfg.Database.Driver = "postgres"
		}
		db, err := database.Connect(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		return gormstorage.New(gormstorage.Dependencies{
			DB:            db,
			Logger:        log,
			FlushInterval: cfg.FlushInterval,
		}), nil
	case "websocket":
		return wsstorage.New(cfg.WebSocket, logging.NewAdapter(log)), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
