// Package floor implements the floor coordinator: it owns the walls of one
// floor of a lot, routes clicks to them and reports their edits to optional
// recorders.
package floor

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/gamebuildmode/wallgrid/internal/cache"
	"github.com/gamebuildmode/wallgrid/internal/coords"
	"github.com/gamebuildmode/wallgrid/internal/logging"
	"github.com/gamebuildmode/wallgrid/internal/slicer"
	"github.com/gamebuildmode/wallgrid/internal/wall"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// Placeable is the placement capability a wall exposes to the floor.
type Placeable interface {
	PlaceObject(p core.Vec3, tool core.Tool) core.PlacementResult
	RemoveObject(p core.Vec3) core.PlacementResult
}

// Recorder receives wall edits, typically a storage backend.
type Recorder interface {
	SaveWall(ctx context.Context, w core.WallRecord) error
	RecordCut(ctx context.Context, key core.WallKey, cut core.WallCut) error
	DeleteCut(ctx context.Context, key core.WallKey, cut core.WallCut) error
	FlagCut(ctx context.Context, key core.WallKey, f core.FlaggedCut) error
	RecordSegments(ctx context.Context, key core.WallKey, segs []core.ProcessedWallSegment) error
	DeleteWall(ctx context.Context, key core.WallKey) error
}

// Telemetry receives one call per routed click.
type Telemetry interface {
	RecordPlacement(key core.WallKey, tool core.Tool, res core.PlacementResult)
}

// Dependencies are the collaborators a FloorGrid is constructed with.
// Recorder and Telemetry are optional.
type Dependencies struct {
	Logger    logging.Logger
	Lots      *Registry
	Slicer    *slicer.Slicer
	Settings  coords.Settings
	Generator wall.MeshGenerator
	Recorder  Recorder
	Telemetry Telemetry
	Debug     bool
}

// FloorGrid owns the walls of one floor. Walls are reached by ID; the floor
// never hands out ownership.
type FloorGrid struct {
	mu sync.RWMutex

	deps        Dependencies
	log         logging.Logger
	index       int
	calc        LotCalculator
	floorHeight float64
	initialized bool

	walls  map[uint]*wall.Wall
	data   map[uint]*core.WallSegmentData
	owners *cache.EdgeOwners
	ids    cache.SafeCounter
}

// New creates an uninitialized floor at the given index.
func New(index int, deps Dependencies) *FloorGrid {
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	if !deps.Settings.Valid() {
		deps.Settings = coords.DefaultSettings()
	}
	return &FloorGrid{
		deps:   deps,
		log:    deps.Logger,
		index:  index,
		walls:  make(map[uint]*wall.Wall),
		data:   make(map[uint]*core.WallSegmentData),
		owners: cache.NewEdgeOwners(),
	}
}

// Initialize binds the floor to a lot. A lot without a calculator, or a floor
// without a slicer or mesh generator, is logged and left uninitialized.
func (f *FloorGrid) Initialize(lotKey string, floorHeight float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deps.Debug {
		f.log.Info("starting floor grid", "floor", f.index, "lot", lotKey)
	}

	var calc LotCalculator
	var ok bool
	if f.deps.Lots != nil {
		calc, ok = f.deps.Lots.Lookup(lotKey)
	}
	if !ok {
		err := fmt.Errorf("no grid calculator for lot %q: %w", lotKey, core.ErrMissingDependency)
		f.log.Error("failed to get grid calculator", "floor", f.index, "lot", lotKey, "error", err)
		return err
	}
	if f.deps.Slicer == nil || f.deps.Generator == nil {
		err := fmt.Errorf("floor %d: slicer or mesh generator: %w", f.index, core.ErrMissingDependency)
		f.log.Error("floor left uninitialized", "error", err)
		return err
	}

	if calc.TileSize <= 0 {
		calc.TileSize = f.deps.Settings.MacroCellSize
	}
	f.calc = calc
	f.floorHeight = floorHeight
	f.initialized = true
	return nil
}

func (f *FloorGrid) Index() int { return f.index }

// Lot returns the calculator the floor was initialized with.
func (f *FloorGrid) Lot() LotCalculator {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calc
}

func (f *FloorGrid) Initialized() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.initialized
}

// BaseZ is the world height of this floor's slab.
func (f *FloorGrid) BaseZ() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.baseZLocked()
}

func (f *FloorGrid) baseZLocked() float64 {
	return f.calc.Origin.Z + float64(f.index)*f.floorHeight
}

// anchorLocked lifts flat corners, both at Z 0, onto the floor slab.
func (f *FloorGrid) anchorLocked(c core.Corners) core.Corners {
	if c.Start.Z != 0 || c.End.Z != 0 {
		return c
	}
	z := f.baseZLocked()
	c.Start.Z, c.End.Z = z, z
	return c
}

// AddWall creates a wall from a copy of data and allocates every edge grid.
// A zero data.ID is assigned from the floor's counter. Corners given at Z 0
// are placed on the floor slab.
func (f *FloorGrid) AddWall(data core.WallSegmentData, axis core.Axis, corners core.Corners) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w, owned, corners, err := f.addLocked(data, axis, corners)
	if err != nil {
		return 0, err
	}
	f.record(func(ctx context.Context, r Recorder) error {
		return r.SaveWall(ctx, f.recordLocked(owned, axis, corners))
	})
	f.log.Info("wall added", "floor", f.index, "wall", owned.ID, "edges", w.EdgeCount())
	return owned.ID, nil
}

// RestoreWall re-creates a stored wall under its stored ID and re-applies its
// cuts. The wall and its cuts are not reported again; cuts that no longer fit
// are flagged, recorded as flagged and returned.
func (f *FloorGrid) RestoreWall(rec core.WallRecord, cuts []core.WallCut) ([]core.FlaggedCut, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rec.Data.ID == 0 {
		return nil, fmt.Errorf("restoring wall on floor %d: no ID: %w", f.index, core.ErrMissingDependency)
	}
	w, owned, _, err := f.addLocked(rec.Data, rec.Axis, rec.Corners)
	if err != nil {
		return nil, err
	}

	var flagged []core.FlaggedCut
	for _, cut := range cuts {
		if res := w.PlaceCut(cut); !res.Success {
			flagged = append(flagged, core.FlaggedCut{Cut: cut, Reason: res.Reason})
		}
	}
	if len(flagged) > 0 {
		key := core.WallKey{Lot: f.calc.Key, Floor: f.index, Wall: owned.ID}
		f.record(func(ctx context.Context, r Recorder) error {
			for _, fc := range flagged {
				if err := r.FlagCut(ctx, key, fc); err != nil {
					return err
				}
			}
			return nil
		})
	}
	f.log.Info("wall restored", "floor", f.index, "wall", owned.ID, "cuts", len(cuts)-len(flagged), "flagged", len(flagged))
	return flagged, nil
}

func (f *FloorGrid) addLocked(data core.WallSegmentData, axis core.Axis, corners core.Corners) (*wall.Wall, core.WallSegmentData, core.Corners, error) {
	if !f.initialized {
		return nil, data, corners, core.ErrNotInitialized
	}
	if data.ID == 0 {
		for {
			data.ID = uint(f.ids.Next())
			if _, taken := f.walls[data.ID]; !taken {
				break
			}
		}
	} else if _, taken := f.walls[data.ID]; taken {
		return nil, data, corners, fmt.Errorf("wall %d already exists on floor %d", data.ID, f.index)
	}

	corners = f.anchorLocked(corners)
	owned := data
	w := wall.New(wall.Dependencies{Logger: f.log, Slicer: f.deps.Slicer, Settings: f.deps.Settings})
	if err := w.Initialize(&owned, axis, corners, f.deps.Generator); err != nil {
		return nil, data, corners, err
	}
	if err := w.InitializeAllGrids(); err != nil {
		return nil, data, corners, fmt.Errorf("allocating grids for wall %d: %w", owned.ID, err)
	}

	f.walls[owned.ID] = w
	f.data[owned.ID] = &owned
	f.claimLocked(w, owned.ID, axis)
	return w, owned, corners, nil
}

// key identifies a wall of this floor for recorders and telemetry.
func (f *FloorGrid) key(id uint) core.WallKey {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return core.WallKey{Lot: f.calc.Key, Floor: f.index, Wall: id}
}

func (f *FloorGrid) recordLocked(data core.WallSegmentData, axis core.Axis, corners core.Corners) core.WallRecord {
	return core.WallRecord{Lot: f.calc.Key, Floor: f.index, Data: data, Axis: axis, Corners: corners}
}

// claimLocked registers the macro edges the wall runs along.
func (f *FloorGrid) claimLocked(w *wall.Wall, id uint, axis core.Axis) {
	conv := w.Converter()
	var ids []uint64
	for i := 0; i < conv.MacroCells(); i++ {
		tile, ok := f.calc.EdgeTile(conv.MacroToWorld(i), axis)
		if !ok {
			continue
		}
		ids = append(ids, f.calc.EdgeID(tile, axis))
	}

	conflicts := f.owners.Claim(id, ids)
	if len(conflicts) > 0 {
		f.log.Warn("wall shares edges with another wall", "floor", f.index, "wall", id, "edges", conflicts)
	}
	w.SetContainedIDs(f.owners.Owned(id))
}

// UpdateWall rebinds a wall to new data and corners and re-claims its edges.
// Cuts that no longer fit are flagged and returned.
func (f *FloorGrid) UpdateWall(id uint, data core.WallSegmentData, corners core.Corners) ([]core.FlaggedCut, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w, ok := f.walls[id]
	if !ok {
		return nil, fmt.Errorf("wall %d: %w", id, core.ErrNotInitialized)
	}
	owned := data
	owned.ID = id
	corners = f.anchorLocked(corners)
	flagged, err := w.UpdateWall(&owned, corners)
	if err != nil {
		return nil, err
	}
	f.data[id] = &owned
	f.claimLocked(w, id, w.Axis())

	rec := f.recordLocked(owned, w.Axis(), corners)
	f.record(func(ctx context.Context, r Recorder) error {
		if err := r.SaveWall(ctx, rec); err != nil {
			return err
		}
		for _, fc := range flagged {
			if err := r.FlagCut(ctx, rec.Key(), fc); err != nil {
				return err
			}
		}
		return nil
	})
	return flagged, nil
}

// RemoveWall drops a wall, releases its edges and tells the recorder.
func (f *FloorGrid) RemoveWall(id uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.walls[id]; !ok {
		return false
	}
	delete(f.walls, id)
	delete(f.data, id)
	f.owners.Release(id)

	key := core.WallKey{Lot: f.calc.Key, Floor: f.index, Wall: id}
	f.record(func(ctx context.Context, r Recorder) error {
		return r.DeleteWall(ctx, key)
	})
	f.log.Info("wall removed", "floor", f.index, "wall", id)
	return true
}

// Wall returns a non-owning handle to a wall.
func (f *FloorGrid) Wall(id uint) (*wall.Wall, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	w, ok := f.walls[id]
	return w, ok
}

// WallIDs returns the IDs of every wall on the floor, ascending.
func (f *FloorGrid) WallIDs() []uint {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ids := make([]uint, 0, len(f.walls))
	for id := range f.walls {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// EdgeOwner returns the wall owning a macro edge.
func (f *FloorGrid) EdgeOwner(edgeID uint64) (uint, bool) {
	return f.owners.Owner(edgeID)
}

// Segments returns the processed segments of a wall.
func (f *FloorGrid) Segments(id uint) ([]core.ProcessedWallSegment, error) {
	w, ok := f.Wall(id)
	if !ok {
		return nil, fmt.Errorf("wall %d: %w", id, core.ErrNotInitialized)
	}
	return w.Segments(), nil
}

// Rebuild regenerates the mesh of a wall and records its segments.
func (f *FloorGrid) Rebuild(id uint) ([]core.ProcessedWallSegment, error) {
	w, ok := f.Wall(id)
	if !ok {
		return nil, fmt.Errorf("wall %d: %w", id, core.ErrNotInitialized)
	}
	if err := w.Rebuild(); err != nil {
		return nil, err
	}
	if f.deps.Debug {
		if err := w.Audit(); err != nil {
			f.log.Warn("wall audit failed", "floor", f.index, "wall", id, "error", err)
		}
	}
	segs := w.Segments()
	key := f.key(id)
	f.record(func(ctx context.Context, r Recorder) error {
		return r.RecordSegments(ctx, key, segs)
	})
	return segs, nil
}

// record forwards an edit to the recorder. Storage failures are logged, never
// propagated into grid results.
func (f *FloorGrid) record(fn func(context.Context, Recorder) error) {
	if f.deps.Recorder == nil {
		return
	}
	if err := fn(context.Background(), f.deps.Recorder); err != nil {
		f.log.Error("failed to record wall edit", "floor", f.index, "error", err)
	}
}

// wallAt finds the wall a click belongs to: first through the edge owner
// cache, then by scanning for the closest wall face.
func (f *FloorGrid) wallAt(p core.Vec3) (uint, *wall.Wall) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	best, bestDist := uint(0), math.Inf(1)
	consider := func(id uint) {
		w, ok := f.walls[id]
		if !ok {
			return
		}
		conv := w.Converter()
		if _, _, ok := conv.WorldToEdgeGrid(p); !ok {
			return
		}
		d := math.Abs(conv.NormalDistance(p))
		if d > conv.Thickness()/2+conv.Settings().CellSize {
			return
		}
		if d < bestDist || (d == bestDist && id < best) {
			best, bestDist = id, d
		}
	}

	for _, axis := range []core.Axis{core.AxisX, core.AxisY} {
		if tile, ok := f.calc.EdgeTile(p, axis); ok {
			if id, ok := f.owners.Owner(f.calc.EdgeID(tile, axis)); ok {
				consider(id)
			}
		}
	}
	if math.IsInf(bestDist, 1) {
		for id := range f.walls {
			consider(id)
		}
	}
	if math.IsInf(bestDist, 1) {
		return 0, nil
	}
	return best, f.walls[best]
}
