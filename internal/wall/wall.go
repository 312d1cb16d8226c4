// Package wall implements the wall coordinator: it owns the per-edge
// decoration grids and cut history of one wall run and turns them into
// mesh-ready segments.
package wall

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gamebuildmode/wallgrid/internal/coords"
	"github.com/gamebuildmode/wallgrid/internal/decoration"
	"github.com/gamebuildmode/wallgrid/internal/logging"
	"github.com/gamebuildmode/wallgrid/internal/slicer"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// MeshGenerator triangulates processed segments.
type MeshGenerator interface {
	Generate(wallID uint, segs []core.ProcessedWallSegment) error
}

// Dependencies are the collaborators a Wall is constructed with.
type Dependencies struct {
	Logger   logging.Logger
	Slicer   *slicer.Slicer
	Settings coords.Settings
}

// Wall owns the decoration grids and cut history of one wall run. The
// WallSegmentData it is initialized with stays owned by the caller.
type Wall struct {
	mu sync.Mutex

	log      logging.Logger
	slicer   *slicer.Slicer
	settings coords.Settings

	data        *core.WallSegmentData
	axis        core.Axis
	corners     core.Corners
	generator   MeshGenerator
	conv        coords.Converter
	initialized bool

	grids        map[int]*decoration.Grid
	cuts         *slicer.CutList
	flagged      []core.FlaggedCut
	containedIDs []uint64

	segments []core.ProcessedWallSegment
	dirty    bool
}

// New creates an uninitialized wall.
func New(deps Dependencies) *Wall {
	w := &Wall{
		log:      deps.Logger,
		slicer:   deps.Slicer,
		settings: deps.Settings,
		grids:    make(map[int]*decoration.Grid),
		cuts:     slicer.NewCutList(),
	}
	if w.log == nil {
		w.log = logging.Nop()
	}
	if !w.settings.Valid() {
		w.settings = coords.DefaultSettings()
	}
	return w
}

// Initialize binds the structural data and mesh generator. Grids are not
// allocated until InitializeSlicerGrid. A missing collaborator leaves the wall
// uninitialized and every later operation a no-op.
func (w *Wall) Initialize(data *core.WallSegmentData, axis core.Axis, corners core.Corners, generator MeshGenerator) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var missing string
	switch {
	case data == nil:
		missing = "wall data"
	case generator == nil:
		missing = "mesh generator"
	case w.slicer == nil:
		missing = "slicer"
	}
	if missing != "" {
		err := fmt.Errorf("initializing wall: %s: %w", missing, core.ErrMissingDependency)
		w.log.Error("wall left uninitialized", "error", err)
		return err
	}

	conv := coords.New(w.settings, *data, axis, corners)
	if err := conv.Validate(); err != nil {
		return fmt.Errorf("initializing wall %d: %w", data.ID, err)
	}

	w.data = data
	w.axis = axis
	w.corners = corners
	w.generator = generator
	w.conv = conv
	clear(w.grids)
	w.cuts.Reset()
	w.flagged = nil
	w.segments = nil
	w.dirty = true
	w.initialized = true

	w.log.Info("wall initialized", "wall", data.ID, "axis", axis.String(),
		"length", w.conv.Length(), "edges", w.conv.EdgeCount())
	return nil
}

// InitializeSlicerGrid allocates a Free grid for edge, discarding any cuts
// previously recorded there.
func (w *Wall) InitializeSlicerGrid(edge int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.initGridLocked(edge)
}

// InitializeAllGrids allocates a grid for every edge of the run.
func (w *Wall) InitializeAllGrids() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.initialized {
		return core.ErrNotInitialized
	}
	for e := 0; e < w.conv.EdgeCount(); e++ {
		if err := w.initGridLocked(e); err != nil {
			return err
		}
	}
	return nil
}

func (w *Wall) initGridLocked(edge int) error {
	if !w.initialized {
		return core.ErrNotInitialized
	}
	if edge < 0 || edge >= w.conv.EdgeCount() {
		return fmt.Errorf("edge %d of %d: %w", edge, w.conv.EdgeCount(), core.ErrInvalidEdge)
	}
	for _, cut := range w.cuts.Edge(edge) {
		slicer.RemoveCut(w.cuts, edge, cut.Start)
	}
	grid, err := decoration.New(w.conv.CalculateGridSize(edge))
	if err != nil {
		return fmt.Errorf("edge %d: %w", edge, err)
	}
	w.grids[edge] = grid
	w.dirty = true
	return nil
}

// CalculateGridSize is the decoration grid size the edge would be allocated with.
func (w *Wall) CalculateGridSize(edge int) core.Size {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conv.CalculateGridSize(edge)
}

func (w *Wall) target() slicer.Target {
	return slicer.Target{Converter: w.conv, Grids: w.grids}
}

// PlaceObject validates, marks and records an opening in one step.
func (w *Wall) PlaceObject(p core.Vec3, tool core.Tool) core.PlacementResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.initialized {
		return core.Failed(-1, core.Interior, core.ReasonNotInitialized)
	}
	res := w.slicer.TryPlaceObject(w.target(), p, tool)
	if res.Success {
		slicer.SaveCut(w.cuts, *res.Cut)
		w.dirty = true
	}
	return res
}

// RemoveObject removes the opening under p.
func (w *Wall) RemoveObject(p core.Vec3) core.PlacementResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.initialized {
		return core.Failed(-1, core.Interior, core.ReasonNotInitialized)
	}
	res := w.slicer.TryRemove(w.target(), w.cuts, p)
	if res.Success {
		w.dirty = true
	}
	return res
}

// PlaceCut re-applies a known cut, e.g. one loaded from storage.
func (w *Wall) PlaceCut(cut core.WallCut) core.PlacementResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.initialized {
		return core.Failed(cut.Edge, cut.Side, core.ReasonNotInitialized)
	}
	res := w.slicer.TryPlaceAt(w.target(), cut.Edge, cut.Side, cut.Start, cut.Size(), cut.Kind)
	if res.Success {
		slicer.SaveCut(w.cuts, *res.Cut)
		w.dirty = true
	}
	return res
}

func (w *Wall) ID() uint {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.data == nil {
		return 0
	}
	return w.data.ID
}

func (w *Wall) Initialized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.initialized
}

func (w *Wall) Axis() core.Axis {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.axis
}

func (w *Wall) Corners() core.Corners {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.corners
}

func (w *Wall) Converter() coords.Converter {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conv
}

func (w *Wall) EdgeCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conv.EdgeCount()
}

// Grid returns the decoration grid of an edge. Callers must not mutate it.
func (w *Wall) Grid(edge int) (*decoration.Grid, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	g, ok := w.grids[edge]
	return g, ok
}

// Cuts returns the recorded cuts ordered by edge, then position.
func (w *Wall) Cuts() []core.WallCut {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cuts.All()
}

// CutsByEdge returns the recorded cuts keyed by edge.
func (w *Wall) CutsByEdge() map[int][]core.WallCut {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cuts.ByEdge()
}

// GetContainedIDs returns the macro edge identifiers this wall spans.
func (w *Wall) GetContainedIDs() []uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.containedIDs)
}

// SetContainedIDs replaces the macro edge identifiers this wall spans.
func (w *Wall) SetContainedIDs(ids []uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.containedIDs = slices.Clone(ids)
}
