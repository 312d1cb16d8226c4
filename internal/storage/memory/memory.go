// internal/storage/memory/memory.go
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/gamebuildmode/wallgrid/internal/config"
	v1 "github.com/gamebuildmode/wallgrid/internal/storage/memory/export/v1"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// Backend keeps the session in memory and exports it to JSON on Close.
type Backend struct {
	cfg     config.MemoryConfig
	started time.Time
	walls   map[core.WallKey]*v1.WallData

	lastExportPath string
	mu             sync.RWMutex
}

func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:   cfg,
		walls: make(map[core.WallKey]*v1.WallData),
	}
}

// Init starts a new session and drops anything recorded before.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = time.Now()
	b.walls = make(map[core.WallKey]*v1.WallData)
	b.lastExportPath = ""
	return nil
}

// Close exports the session when an output directory is configured.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cfg.OutputDir == "" {
		return nil
	}
	return b.exportJSON()
}

func (b *Backend) entry(key core.WallKey) *v1.WallData {
	d, ok := b.walls[key]
	if !ok {
		d = &v1.WallData{}
		b.walls[key] = d
	}
	return d
}

func (b *Backend) SaveWall(_ context.Context, w core.WallRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.entry(w.Key())
	d.Record = &w
	d.Deleted = false
	return nil
}

func (b *Backend) RecordCut(_ context.Context, key core.WallKey, cut core.WallCut) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.entry(key)
	d.Cuts = append(d.Cuts, cut)
	return nil
}

// DeleteCut moves the cut from the active list to the removed history.
func (b *Backend) DeleteCut(_ context.Context, key core.WallKey, cut core.WallCut) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.entry(key)
	d.Cuts = dropCut(d.Cuts, cut)
	d.Removed = append(d.Removed, cut)
	return nil
}

// FlagCut records the flag and drops the cut from the active list.
func (b *Backend) FlagCut(_ context.Context, key core.WallKey, f core.FlaggedCut) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.entry(key)
	d.Cuts = dropCut(d.Cuts, f.Cut)
	d.Flagged = append(d.Flagged, f)
	return nil
}

func (b *Backend) RecordSegments(_ context.Context, key core.WallKey, segs []core.ProcessedWallSegment) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entry(key).Segments = slices.Clone(segs)
	return nil
}

// DeleteWall marks the wall deleted and moves its live cuts to the removed
// history. The entry stays so the export keeps the wall's history.
func (b *Backend) DeleteWall(_ context.Context, key core.WallKey) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.entry(key)
	d.Removed = append(d.Removed, d.Cuts...)
	d.Cuts = nil
	d.Segments = nil
	d.Deleted = true
	return nil
}

// dropCut removes the first cut with the same edge and footprint.
func dropCut(cuts []core.WallCut, cut core.WallCut) []core.WallCut {
	i := slices.IndexFunc(cuts, func(c core.WallCut) bool {
		return c.Edge == cut.Edge && c.Start == cut.Start && c.End == cut.End
	})
	if i < 0 {
		return cuts
	}
	return slices.Delete(cuts, i, i+1)
}

// Walls returns the keys of every wall touched this session, ordered.
func (b *Backend) Walls() []core.WallKey {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]core.WallKey, 0, len(b.walls))
	for k := range b.walls {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, core.WallKey.Compare)
	return keys
}

// Wall returns a copy of the recorded state of a wall.
func (b *Backend) Wall(key core.WallKey) (v1.WallData, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.walls[key]
	if !ok {
		return v1.WallData{}, false
	}
	out := v1.WallData{
		Deleted:  d.Deleted,
		Cuts:     slices.Clone(d.Cuts),
		Removed:  slices.Clone(d.Removed),
		Flagged:  slices.Clone(d.Flagged),
		Segments: slices.Clone(d.Segments),
	}
	if d.Record != nil {
		rec := *d.Record
		out.Record = &rec
	}
	return out, true
}
