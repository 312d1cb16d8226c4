package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/gamebuildmode/wallgrid/internal/coords"
	"github.com/gamebuildmode/wallgrid/internal/database"
	"github.com/gamebuildmode/wallgrid/internal/slicer"
	wsstorage "github.com/gamebuildmode/wallgrid/internal/storage/websocket"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// FileName is the config file looked up in the config directory.
const FileName = "wallgrid.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
	Session        string `json:"session" mapstructure:"session"` // export file prefix
}

// SQLiteConfig holds settings for the in-memory SQLite backend.
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Type          string        `json:"type" mapstructure:"type"` // memory, sqlite, gorm, websocket
	FlushInterval time.Duration `json:"flushInterval" mapstructure:"flushInterval"`
	Memory        MemoryConfig  `json:"memory" mapstructure:"memory"`
	SQLite        SQLiteConfig  `json:"sqlite" mapstructure:"sqlite"`
	Database      database.Config
	WebSocket     wsstorage.Config
}

// InfluxConfig configures placement telemetry.
type InfluxConfig struct {
	Enabled    bool
	URL        string
	Token      string
	Org        string
	Bucket     string
	BackupPath string
}

// LoggingConfig configures the session logger.
type LoggingConfig struct {
	Level       string
	LogsDir     string
	GraylogAddr string // empty when graylog is disabled
}

// APIConfig points at the web frontend exported sessions are published to.
type APIConfig struct {
	URL string // empty disables uploads
	Key string
}

// StatusConfig controls the status file writer.
type StatusConfig struct {
	Path     string // empty disables the status file
	Interval time.Duration
}

// GeoAnchor places a lot by survey coordinates relative to a map anchor.
type GeoAnchor struct {
	AnchorLon float64 `json:"anchorLon" mapstructure:"anchorLon"`
	AnchorLat float64 `json:"anchorLat" mapstructure:"anchorLat"`
	Lon       float64 `json:"lon" mapstructure:"lon"`
	Lat       float64 `json:"lat" mapstructure:"lat"`
}

// LotConfig describes one lot. When Geo is set it replaces Origin's X and Y.
type LotConfig struct {
	Key      string     `json:"key" mapstructure:"key"`
	Origin   core.Vec3  `json:"origin" mapstructure:"origin"`
	Tiles    core.Size  `json:"tiles" mapstructure:"tiles"`
	TileSize float64    `json:"tileSize" mapstructure:"tileSize"`
	Geo      *GeoAnchor `json:"geo" mapstructure:"geo"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./wallgridlogs")
	viper.SetDefault("debug", false)

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	grid := coords.DefaultSettings()
	viper.SetDefault("grid.cellSize", grid.CellSize)
	viper.SetDefault("grid.macroCellSize", grid.MacroCellSize)
	viper.SetDefault("grid.cellsPerEdge", grid.CellsPerEdge)

	cat := slicer.DefaultCatalog()
	viper.SetDefault("catalog.doorHalfSize.w", cat.DoorHalfSize.W)
	viper.SetDefault("catalog.doorHalfSize.h", cat.DoorHalfSize.H)
	viper.SetDefault("catalog.windowHalfSize.w", cat.WindowHalfSize.W)
	viper.SetDefault("catalog.windowHalfSize.h", cat.WindowHalfSize.H)
	viper.SetDefault("catalog.windowSill", cat.WindowSill)

	viper.SetDefault("floorHeight", 300.0)
	// clickBuffer > 0 queues clicks; a full queue blocks, and layout or
	// segment commands wait until queued clicks are handled.
	viper.SetDefault("clickBuffer", 0)
	viper.SetDefault("lots", []map[string]any{{
		"key":      "neighbor1-lot1",
		"tiles":    map[string]any{"w": 10, "h": 10},
		"tileSize": 100.0,
	}})

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.flushInterval", "2s")
	viper.SetDefault("storage.memory.outputDir", "./sessions")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.memory.session", "")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpPath", "./wallgrid.db")

	viper.SetDefault("db.driver", "sqlite")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "wallgrid")
	viper.SetDefault("db.sqlitePath", "")

	viper.SetDefault("websocket.url", "ws://localhost:5000/api/v1/edits")
	viper.SetDefault("websocket.secret", "")
	viper.SetDefault("websocket.session", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "wallgrid")
	viper.SetDefault("influx.bucket", "build_edits")
	viper.SetDefault("influx.backupPath", "./wallgrid_influx_backup.log.gz")

	viper.SetDefault("api.url", "")
	viper.SetDefault("api.key", "")

	viper.SetDefault("status.path", "")
	viper.SetDefault("status.interval", "1s")
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetFloat64 returns a float config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetGridConfig returns the grid resolutions.
func GetGridConfig() coords.Settings {
	return coords.Settings{
		CellSize:      viper.GetFloat64("grid.cellSize"),
		MacroCellSize: viper.GetFloat64("grid.macroCellSize"),
		CellsPerEdge:  viper.GetInt("grid.cellsPerEdge"),
	}
}

// GetCatalogConfig returns the opening footprints.
func GetCatalogConfig() slicer.Catalog {
	return slicer.Catalog{
		DoorHalfSize: core.Size{
			W: viper.GetInt("catalog.doorHalfSize.w"),
			H: viper.GetInt("catalog.doorHalfSize.h"),
		},
		WindowHalfSize: core.Size{
			W: viper.GetInt("catalog.windowHalfSize.w"),
			H: viper.GetInt("catalog.windowHalfSize.h"),
		},
		WindowSill: viper.GetInt("catalog.windowSill"),
	}
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type:          viper.GetString("storage.type"),
		FlushInterval: viper.GetDuration("storage.flushInterval"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
			Session:        viper.GetString("storage.memory.session"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
		},
		Database: database.Config{
			Driver:     viper.GetString("db.driver"),
			Host:       viper.GetString("db.host"),
			Port:       viper.GetString("db.port"),
			Username:   viper.GetString("db.username"),
			Password:   viper.GetString("db.password"),
			Database:   viper.GetString("db.database"),
			SqlitePath: viper.GetString("db.sqlitePath"),
		},
		WebSocket: wsstorage.Config{
			URL:     viper.GetString("websocket.url"),
			Secret:  viper.GetString("websocket.secret"),
			Session: viper.GetString("websocket.session"),
		},
	}
}

// GetInfluxConfig returns the telemetry configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled: viper.GetBool("influx.enabled"),
		URL: fmt.Sprintf("%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port"),
		),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetLoggingConfig returns the logger configuration.
func GetLoggingConfig() LoggingConfig {
	cfg := LoggingConfig{
		Level:   viper.GetString("logLevel"),
		LogsDir: viper.GetString("logsDir"),
	}
	if viper.GetBool("graylog.enabled") {
		cfg.GraylogAddr = viper.GetString("graylog.address")
	}
	return cfg
}

func GetAPIConfig() APIConfig {
	return APIConfig{
		URL: viper.GetString("api.url"),
		Key: viper.GetString("api.key"),
	}
}

func GetStatusConfig() StatusConfig {
	return StatusConfig{
		Path:     viper.GetString("status.path"),
		Interval: viper.GetDuration("status.interval"),
	}
}

// GetLots returns the configured lots.
func GetLots() ([]LotConfig, error) {
	var lots []LotConfig
	if err := viper.UnmarshalKey("lots", &lots); err != nil {
		return nil, fmt.Errorf("error decoding lots: %w", err)
	}
	return lots, nil
}
