package database

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamebuildmode/wallgrid/internal/model"
)

func TestDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", Username: "u", Password: "p", Database: "walls"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=walls sslmode=disable", cfg.DSN())
}

func TestOpenSqliteAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walls.db")
	db, err := Connect(Config{Driver: "sqlite", SqlitePath: path}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, Migrate(db, zerolog.Nop()))

	for _, m := range model.DatabaseModels {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	assert.Error(t, DumpMemoryDBToDisk(nil, "", zerolog.Nop()))

	db, err := OpenSqlite(filepath.Join(t.TempDir(), "src.db"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, Migrate(db, zerolog.Nop()))

	out := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, DumpMemoryDBToDisk(db, out, zerolog.Nop()))
	assert.FileExists(t, out)
}
