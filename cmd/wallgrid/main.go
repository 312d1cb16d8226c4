// Command wallgrid runs a build-mode command script against the wall grid and
// prints one JSON reply per command.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gamebuildmode/wallgrid/internal/api"
	"github.com/gamebuildmode/wallgrid/internal/config"
	"github.com/gamebuildmode/wallgrid/internal/floor"
	"github.com/gamebuildmode/wallgrid/internal/handlers"
	"github.com/gamebuildmode/wallgrid/internal/influx"
	"github.com/gamebuildmode/wallgrid/internal/logging"
	"github.com/gamebuildmode/wallgrid/internal/storage"
)

func main() {
	configDir := pflag.StringP("config", "c", ".", "directory holding "+config.FileName)
	script := pflag.StringP("script", "s", "", "command script to run (default stdin)")
	wkt := pflag.Bool("wkt", false, "attach wall faces as WKT to :SEGMENTS: replies")
	resume := pflag.Bool("resume", false, "restore the walls recorded by the storage backend before running")
	pflag.Parse()

	failed, err := run(*configDir, *script, *wkt, *resume, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "wallgrid:", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(2)
	}
}

func run(configDir, script string, wkt, resume bool, out io.Writer) (int, error) {
	cfgErr := config.Load(configDir)
	if cfgErr != nil && !errors.As(cfgErr, new(viper.ConfigFileNotFoundError)) {
		return 0, cfgErr
	}

	lc := config.GetLoggingConfig()
	log, logCloser, err := logging.Setup(logging.Options{
		Level:       lc.Level,
		LogsDir:     lc.LogsDir,
		Name:        "wallgrid",
		GraylogAddr: lc.GraylogAddr,
		Console:     os.Stderr,
	})
	if err != nil {
		return 0, fmt.Errorf("setting up logging: %w", err)
	}
	defer logCloser.Close()

	if cfgErr != nil {
		log.Warn().Str("dir", configDir).Msg("No config file found, using defaults")
	}

	in := io.Reader(os.Stdin)
	if script != "" {
		f, err := os.Open(script)
		if err != nil {
			return 0, fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		in = f
	}

	backend, err := storage.NewBackend(config.GetStorageConfig(), log)
	if err != nil {
		return 0, err
	}
	if err := backend.Init(); err != nil {
		return 0, fmt.Errorf("initializing %s storage: %w", config.GetStorageConfig().Type, err)
	}
	started := time.Now()
	var a *app
	defer func() {
		meta := api.SessionMeta{Session: config.GetString("storage.memory.session"), Started: started}
		if a != nil {
			meta.Walls = a.monitor.Snapshot().Walls
		}
		publish(config.GetAPIConfig(), closeBackend(backend, log), meta, log)
	}()

	var telemetry floor.Telemetry
	if ic := config.GetInfluxConfig(); ic.Enabled {
		m := influx.NewManager(ic, log)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := m.Connect(ctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("InfluxDB unavailable, placements not recorded")
		} else {
			telemetry = m
			defer closeInflux(m, log)
		}
	}

	lots, err := config.GetLots()
	if err != nil {
		return 0, err
	}

	a, err = newApp(appConfig{
		Grid:        config.GetGridConfig(),
		Catalog:     config.GetCatalogConfig(),
		Lots:        lots,
		ClickBuffer: config.GetInt("clickBuffer"),
		Debug:       config.GetBool("debug"),
		Recorder:    backend,
		Telemetry:   telemetry,
		WKT:         wkt,
		Status:      config.GetStatusConfig(),
	}, log)
	if err != nil {
		return 0, err
	}
	defer a.close()

	if resume {
		archive, ok := backend.(handlers.Archive)
		if !ok {
			return 0, fmt.Errorf("%s storage cannot be resumed from", config.GetStorageConfig().Type)
		}
		if err := restoreLots(a.service, archive, lots, config.GetFloat64("floorHeight"), log); err != nil {
			return 0, err
		}
	}

	log.Info().Str("storage", config.GetStorageConfig().Type).Int("lots", len(lots)).Msg("Wall grid ready")
	return a.runScript(in, out)
}

func restoreLots(svc *handlers.Service, archive handlers.Archive, lots []config.LotConfig, floorHeight float64, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	for _, lot := range lots {
		sum, err := svc.Restore(ctx, archive, lot.Key, floorHeight)
		if err != nil {
			return fmt.Errorf("restoring lot %s: %w", lot.Key, err)
		}
		log.Info().
			Str("lot", lot.Key).
			Int("walls", sum.Walls).
			Int("cuts", sum.Cuts).
			Int("flagged", sum.Flagged).
			Int64("removed", sum.Removed).
			Int("stale", sum.Stale).
			Msg("Lot restored")
	}
	return nil
}

func closeInflux(m *influx.Manager, log zerolog.Logger) {
	if err := m.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close InfluxDB")
	}
}
