package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gamebuildmode/wallgrid/internal/api"
	"github.com/gamebuildmode/wallgrid/internal/cache"
	"github.com/gamebuildmode/wallgrid/internal/config"
	"github.com/gamebuildmode/wallgrid/internal/coords"
	"github.com/gamebuildmode/wallgrid/internal/dispatcher"
	"github.com/gamebuildmode/wallgrid/internal/floor"
	"github.com/gamebuildmode/wallgrid/internal/geo"
	"github.com/gamebuildmode/wallgrid/internal/handlers"
	"github.com/gamebuildmode/wallgrid/internal/logging"
	"github.com/gamebuildmode/wallgrid/internal/monitor"
	"github.com/gamebuildmode/wallgrid/internal/parser"
	"github.com/gamebuildmode/wallgrid/internal/slicer"
	"github.com/gamebuildmode/wallgrid/internal/storage"
	"github.com/gamebuildmode/wallgrid/internal/worker"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// appConfig is everything the app is built from. Recorder and Telemetry may be nil.
type appConfig struct {
	Grid        coords.Settings
	Catalog     slicer.Catalog
	Lots        []config.LotConfig
	ClickBuffer int
	Debug       bool
	Recorder    floor.Recorder
	Telemetry   floor.Telemetry
	WKT         bool
	Status      config.StatusConfig
}

// CmdStatus replies with a monitor snapshot.
const CmdStatus = ":STATUS:"

type app struct {
	dispatcher *dispatcher.Dispatcher
	mesher     *geo.Mesher
	monitor    *monitor.Service
	service    *handlers.Service
	wkt        bool
}

func newApp(cfg appConfig, log zerolog.Logger) (*app, error) {
	kv := logging.NewAdapter(log)

	lots, err := buildLots(cfg.Lots)
	if err != nil {
		return nil, err
	}
	sl, err := slicer.New(kv, cfg.Catalog)
	if err != nil {
		return nil, err
	}
	mesher := geo.NewMesher()

	floorDeps := floor.Dependencies{
		Logger:    kv,
		Lots:      lots,
		Slicer:    sl,
		Settings:  cfg.Grid,
		Generator: mesher,
		Recorder:  cfg.Recorder,
		Telemetry: cfg.Telemetry,
		Debug:     cfg.Debug,
	}
	building := floor.NewBuilding()
	svc, err := handlers.NewService(handlers.Dependencies{
		Building: building,
		Names:    cache.NewNameCache(),
		NewFloor: func(index int) *floor.FloorGrid { return floor.New(index, floorDeps) },
		Logger:   kv,
	})
	if err != nil {
		return nil, err
	}

	manager, err := worker.NewManager(worker.Dependencies{
		ParserService: parser.NewParser(kv),
		Service:       svc,
		ClickBuffer:   cfg.ClickBuffer,
	})
	if err != nil {
		return nil, err
	}
	d, err := dispatcher.New(kv)
	if err != nil {
		return nil, err
	}
	manager.RegisterHandlers(d)

	mon := monitor.NewService(monitor.Dependencies{
		Building:   building,
		Storage:    cfg.Recorder,
		StatusPath: cfg.Status.Path,
		Interval:   cfg.Status.Interval,
		Logger:     log,
	})
	d.Register(CmdStatus, func(dispatcher.Event) (any, error) {
		return mon.Snapshot(), nil
	})
	if err := mon.Start(); err != nil {
		d.Close()
		return nil, err
	}

	return &app{dispatcher: d, mesher: mesher, monitor: mon, service: svc, wkt: cfg.WKT}, nil
}

// reply is one line of script output.
type reply struct {
	Line    int      `json:"line"`
	Command string   `json:"command"`
	Result  any      `json:"result,omitempty"`
	Error   string   `json:"error,omitempty"`
	Faces   []string `json:"faces,omitempty"`
}

// runScript dispatches one command per line and writes one JSON reply per
// command. Blank lines and lines starting with # are skipped. A failing
// command does not stop the script; the number of failures is returned.
func (a *app) runScript(r io.Reader, w io.Writer) (int, error) {
	enc := json.NewEncoder(w)
	scanner := bufio.NewScanner(r)
	failed := 0

	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		out := reply{Line: n, Command: fields[0]}

		res, err := a.dispatcher.Dispatch(dispatcher.Event{Command: fields[0], Args: fields[1:]})
		if err != nil {
			failed++
			out.Error = err.Error()
		} else {
			out.Result = res
			if a.wkt {
				out.Faces = a.faces(res)
			}
		}
		if err := enc.Encode(out); err != nil {
			return failed, fmt.Errorf("writing reply: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return failed, fmt.Errorf("reading script: %w", err)
	}
	return failed, nil
}

func (a *app) faces(res any) []string {
	segs, ok := res.([]core.ProcessedWallSegment)
	if !ok || len(segs) == 0 {
		return nil
	}
	return a.mesher.WKT(segs[0].WallID)
}

// close drains buffered commands, then stops the status writer.
func (a *app) close() {
	a.dispatcher.Close()
	a.monitor.Stop()
}

// closeBackend closes the storage backend and returns the path it exported
// to, if any.
func closeBackend(b storage.Backend, log zerolog.Logger) string {
	if err := b.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close storage backend")
		return ""
	}
	e, ok := b.(storage.Exportable)
	if !ok || e.ExportedFilePath() == "" {
		return ""
	}
	log.Info().Str("path", e.ExportedFilePath()).Msg("Session exported")
	return e.ExportedFilePath()
}

// publish uploads an exported session. Failures are logged, the export stays on disk.
func publish(cfg config.APIConfig, path string, meta api.SessionMeta, log zerolog.Logger) {
	if cfg.URL == "" || path == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c := api.New(cfg.URL, cfg.Key)
	if err := c.Healthcheck(ctx); err != nil {
		log.Warn().Err(err).Msg("Frontend unreachable, session not uploaded")
		return
	}
	if err := c.Upload(ctx, path, meta); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to upload session")
		return
	}
	log.Info().Str("path", path).Msg("Session uploaded")
}
