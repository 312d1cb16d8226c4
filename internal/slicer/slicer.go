// Package slicer turns a click on a wall into a validated cut on one edge's
// decoration grid.
package slicer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/gamebuildmode/wallgrid/internal/coords"
	"github.com/gamebuildmode/wallgrid/internal/decoration"
	"github.com/gamebuildmode/wallgrid/internal/logging"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// Catalog holds the footprints of the placeable openings, in decoration cells.
type Catalog struct {
	DoorHalfSize   core.Size `json:"doorHalfSize" mapstructure:"doorHalfSize"`
	WindowHalfSize core.Size `json:"windowHalfSize" mapstructure:"windowHalfSize"`
	WindowSill     int       `json:"windowSill" mapstructure:"windowSill"` // bottom row of a window
}

// DefaultCatalog returns a 60x200 door and an 80x100 window sitting at 90.
func DefaultCatalog() Catalog {
	return Catalog{
		DoorHalfSize:   core.Size{W: 3, H: 10},
		WindowHalfSize: core.Size{W: 4, H: 5},
		WindowSill:     9,
	}
}

// Target is the wall state a placement runs against. The slicer owns none of it.
type Target struct {
	Converter coords.Converter
	Grids     map[int]*decoration.Grid
}

// Slicer validates footprints and marks grids. It keeps no per-wall state.
type Slicer struct {
	log     logging.Logger
	catalog Catalog

	attempts metric.Int64Counter
	failures metric.Int64Counter
}

// New creates a Slicer. Metrics go to the global OTel meter (no-op if not configured).
func New(log logging.Logger, catalog Catalog) (*Slicer, error) {
	if log == nil {
		log = logging.Nop()
	}
	s := &Slicer{log: log, catalog: catalog}
	m := meter()

	var err error
	s.attempts, err = m.Int64Counter(
		"slicer.placements.attempted",
		metric.WithDescription("Total placement attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating attempts counter: %w", err)
	}

	s.failures, err = m.Int64Counter(
		"slicer.placements.failed",
		metric.WithDescription("Total rejected placements"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}

	return s, nil
}

func (s *Slicer) Catalog() Catalog { return s.catalog }

// TryPlaceObject picks the opening kind from the active tool.
func (s *Slicer) TryPlaceObject(t Target, p core.Vec3, tool core.Tool) core.PlacementResult {
	switch tool {
	case core.ToolPlaceDoor, core.ToolPlaceObject:
		return s.TryPlaceDoor(t, p)
	case core.ToolPlaceWindow:
		return s.TryPlaceWindow(t, p)
	default:
		return s.fail(core.Failed(-1, t.Converter.GetSide(p), core.ReasonUnsupportedTool), core.Free)
	}
}

// TryPlaceDoor places a door standing on row 0, centred on the clicked column.
func (s *Slicer) TryPlaceDoor(t Target, p core.Vec3) core.PlacementResult {
	edge, cell, side, res, ok := s.resolve(t, p)
	if !ok {
		return s.fail(res, core.Door)
	}
	half := s.catalog.DoorHalfSize
	start := core.Cell{X: cell.X - half.W, Y: 0}
	return s.TryPlaceAt(t, edge, side, start, core.Size{W: 2 * half.W, H: 2 * half.H}, core.Door)
}

// TryPlaceWindow places a window on the sill row, centred on the clicked column.
func (s *Slicer) TryPlaceWindow(t Target, p core.Vec3) core.PlacementResult {
	edge, cell, side, res, ok := s.resolve(t, p)
	if !ok {
		return s.fail(res, core.Window)
	}
	half := s.catalog.WindowHalfSize
	start := core.Cell{X: cell.X - half.W, Y: s.catalog.WindowSill}
	return s.TryPlaceAt(t, edge, side, start, core.Size{W: 2 * half.W, H: 2 * half.H}, core.Window)
}

// TryPlaceAt validates and marks an explicit footprint. The grid is untouched
// unless the result is successful.
func (s *Slicer) TryPlaceAt(t Target, edge int, side core.Side, start core.Cell, size core.Size, kind core.Occupation) core.PlacementResult {
	grid, ok := t.Grids[edge]
	if !ok || grid == nil {
		if edge < 0 || edge >= t.Converter.EdgeCount() {
			return s.fail(core.Failed(edge, side, core.ReasonInvalidEdge), kind)
		}
		return s.fail(core.Failed(edge, side, core.ReasonNotInitialized), kind)
	}

	end := core.Cell{X: start.X + size.W - 1, Y: start.Y + size.H - 1}
	if size.W <= 0 || size.H <= 0 || !grid.IsValidCoordinate(start) || !grid.IsValidCoordinate(end) {
		return s.fail(core.Failed(edge, side, core.ReasonInvalidCoordinate), kind)
	}
	if !grid.IsAreaFree(start, size) {
		return s.fail(core.Failed(edge, side, core.ReasonOverlap), kind)
	}

	cut := CalculateCut(grid.Size(), start, end)
	cut.Edge = edge
	cut.Kind = kind
	cut.Side = side
	cut.HalfSize = core.Size{W: size.W / 2, H: size.H / 2}
	grid.MarkAreaOccupied(side, cut.Start, cut.Size(), kind)

	s.count(kind, core.ReasonNone)
	s.log.Debug("cut placed", "edge", edge, "kind", kind.String(), "start", cut.Start, "end", cut.End)
	return core.PlacementResult{Success: true, Cut: &cut, Edge: edge, Side: side}
}

// TryRemove clears the cut under p from the grid and the cut list.
func (s *Slicer) TryRemove(t Target, list *CutList, p core.Vec3) core.PlacementResult {
	edge, cell, side, res, ok := s.resolve(t, p)
	if !ok {
		return res
	}
	grid, ok := t.Grids[edge]
	if !ok || grid == nil {
		return core.Failed(edge, side, core.ReasonNotInitialized)
	}

	cut, ok := RemoveCut(list, edge, cell)
	if !ok {
		return core.Failed(edge, side, core.ReasonNoCut)
	}
	grid.ClearArea(cut.Start, cut.Size())

	s.log.Debug("cut removed", "edge", edge, "kind", cut.Kind.String(), "start", cut.Start)
	return core.PlacementResult{Success: true, Cut: &cut, Edge: edge, Side: cut.Side}
}

func (s *Slicer) resolve(t Target, p core.Vec3) (int, core.Cell, core.Side, core.PlacementResult, bool) {
	side := t.Converter.GetSide(p)
	edge, cell, ok := t.Converter.WorldToEdgeGrid(p)
	if !ok {
		if edge < 0 {
			return edge, cell, side, core.Failed(edge, side, core.ReasonInvalidCoordinate), false
		}
		return edge, cell, side, core.Failed(edge, side, core.ReasonInvalidEdge), false
	}
	return edge, cell, side, core.PlacementResult{}, true
}

func (s *Slicer) fail(res core.PlacementResult, kind core.Occupation) core.PlacementResult {
	s.count(kind, res.Reason)
	s.log.Debug("placement rejected", "edge", res.Edge, "kind", kind.String(), "reason", res.Reason.String())
	return res
}

func (s *Slicer) count(kind core.Occupation, reason core.Reason) {
	ctx := context.Background()
	kindAttr := attribute.String("kind", kind.String())
	s.attempts.Add(ctx, 1, metric.WithAttributes(kindAttr))
	if reason != core.ReasonNone {
		s.failures.Add(ctx, 1, metric.WithAttributes(kindAttr, attribute.String("reason", reason.String())))
	}
}

// CalculateCut returns the bounding box of start and end, clamped to bounds.
func CalculateCut(bounds core.Size, start, end core.Cell) core.WallCut {
	lo := core.Cell{X: min(start.X, end.X), Y: min(start.Y, end.Y)}
	hi := core.Cell{X: max(start.X, end.X), Y: max(start.Y, end.Y)}
	return core.WallCut{
		Start: core.Cell{X: clamp(lo.X, 0, bounds.W-1), Y: clamp(lo.Y, 0, bounds.H-1)},
		End:   core.Cell{X: clamp(hi.X, 0, bounds.W-1), Y: clamp(hi.Y, 0, bounds.H-1)},
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
