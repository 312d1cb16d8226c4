// internal/storage/storage_test.go
package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamebuildmode/wallgrid/internal/config"
	"github.com/gamebuildmode/wallgrid/internal/database"
	"github.com/gamebuildmode/wallgrid/internal/floor"
	"github.com/gamebuildmode/wallgrid/internal/storage"
	gormstorage "github.com/gamebuildmode/wallgrid/internal/storage/gorm"
	"github.com/gamebuildmode/wallgrid/internal/storage/memory"
	sqlitestorage "github.com/gamebuildmode/wallgrid/internal/storage/sqlite"
	wsstorage "github.com/gamebuildmode/wallgrid/internal/storage/websocket"
)

var (
	_ storage.Backend    = (*memory.Backend)(nil)
	_ storage.Exportable = (*memory.Backend)(nil)
	_ storage.Backend    = (*gormstorage.Backend)(nil)
	_ storage.Backend    = (*sqlitestorage.Backend)(nil)
	_ storage.Backend    = (*wsstorage.Backend)(nil)

	// a backend is what the floor records edits into
	_ floor.Recorder = storage.Backend(nil)
)

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want any
	}{
		{"memory", config.StorageConfig{Type: "memory"}, &memory.Backend{}},
		{"sqlite", config.StorageConfig{Type: "sqlite"}, &sqlitestorage.Backend{}},
		{"gorm", config.StorageConfig{
			Type:     "gorm",
			Database: database.Config{Driver: "sqlite", SqlitePath: filepath.Join(t.TempDir(), "w.db")},
		}, &gormstorage.Backend{}},
		{"websocket", config.StorageConfig{Type: "websocket"}, &wsstorage.Backend{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := storage.NewBackend(tt.cfg, zerolog.Nop())
			require.NoError(t, err)
			assert.IsType(t, tt.want, b)
		})
	}
}

func TestNewBackend_Unknown(t *testing.T) {
	_, err := storage.NewBackend(config.StorageConfig{Type: "s3"}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage type")
}
