// Package coords converts between world space, the macro wall grid, and the
// per-edge decoration grid of a single wall run.
package coords

import (
	"fmt"
	"math"

	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// eps absorbs float noise at cell boundaries so 199.99999999 buckets like 200.
const eps = 1e-9

const (
	// MaxAxisCells bounds an edge grid along either axis.
	MaxAxisCells = 1 << 12
	// MaxEdges bounds the number of edges of one run.
	MaxEdges = 1 << 10
)

// Settings holds the grid resolutions shared by every wall on a lot.
type Settings struct {
	CellSize      float64 `json:"cellSize" mapstructure:"cellSize"`           // decoration cell, world units
	MacroCellSize float64 `json:"macroCellSize" mapstructure:"macroCellSize"` // wall/room layout tile, world units
	CellsPerEdge  int     `json:"cellsPerEdge" mapstructure:"cellsPerEdge"`   // macro cells per edge
}

// DefaultSettings returns 10 unit decoration cells on 100 unit tiles, two tiles per edge.
func DefaultSettings() Settings {
	return Settings{
		CellSize:      10,
		MacroCellSize: 100,
		CellsPerEdge:  2,
	}
}

// EdgeLength is the world length of a full edge.
func (s Settings) EdgeLength() float64 {
	return float64(s.CellsPerEdge) * s.MacroCellSize
}

// Valid reports whether the settings can bucket coordinates at all.
func (s Settings) Valid() bool {
	return s.CellSize > 0 && s.MacroCellSize > 0 && s.CellsPerEdge > 0
}

// Converter is a value type. It is rebuilt whenever the wall geometry changes
// and never mutated afterwards.
type Converter struct {
	settings  Settings
	origin    core.Vec3
	dir       core.Vec3
	normal    core.Vec3
	reversed  bool
	length    float64
	height    float64
	thickness float64
}

// New derives a converter for the run between corners along axis. When the end
// corner lies before the start corner the run direction and normal are flipped.
func New(s Settings, data core.WallSegmentData, axis core.Axis, corners core.Corners) Converter {
	dir := axis.Direction()
	normal := axis.Normal()
	length := corners.End.Sub(corners.Start).Dot(dir)
	reversed := false
	if length < 0 {
		dir = dir.Scale(-1)
		normal = normal.Scale(-1)
		length = -length
		reversed = true
	}

	return Converter{
		settings:  s,
		origin:    corners.Start,
		dir:       dir,
		normal:    normal,
		reversed:  reversed,
		length:    length,
		height:    data.Height,
		thickness: data.Thickness,
	}
}

// Validate rejects runs that are not finite or whose grids would exceed
// MaxEdges or MaxAxisCells.
func (c Converter) Validate() error {
	if math.IsNaN(c.length) || math.IsInf(c.length, 0) || math.IsNaN(c.height) || math.IsInf(c.height, 0) {
		return fmt.Errorf("wall geometry is not finite: %w", core.ErrInvalidCoordinate)
	}
	if !c.settings.Valid() {
		return fmt.Errorf("grid settings %+v: %w", c.settings, core.ErrInvalidCoordinate)
	}
	if edges := c.length / c.settings.EdgeLength(); edges > MaxEdges {
		return fmt.Errorf("run of %g spans %.0f edges, max %d: %w", c.length, math.Ceil(edges), MaxEdges, core.ErrInvalidCoordinate)
	}
	if cells := c.settings.EdgeLength() / c.settings.CellSize; cells > MaxAxisCells {
		return fmt.Errorf("edge of %.0f cells, max %d: %w", cells, MaxAxisCells, core.ErrInvalidCoordinate)
	}
	if cells := c.height / c.settings.CellSize; cells > MaxAxisCells {
		return fmt.Errorf("height of %.0f cells, max %d: %w", cells, MaxAxisCells, core.ErrInvalidCoordinate)
	}
	return nil
}

func (c Converter) Settings() Settings { return c.settings }

func (c Converter) Length() float64 { return c.length }

func (c Converter) Height() float64 { return c.height }

func (c Converter) Thickness() float64 { return c.thickness }

func (c Converter) Reversed() bool { return c.reversed }

func (c Converter) along(p core.Vec3) float64 { return p.Sub(c.origin).Dot(c.dir) }

func (c Converter) up(p core.Vec3) float64 { return p.Z - c.origin.Z }

// NormalDistance is the signed distance from the centerline along the wall normal.
func (c Converter) NormalDistance(p core.Vec3) float64 { return p.Sub(c.origin).Dot(c.normal) }

func floorDiv(v, size float64) int {
	return int(math.Floor(v/size + eps))
}

// WorldToGrid projects p onto the run-wide decoration grid. Cells are truncated
// downwards, so points before the origin give negative coordinates.
func (c Converter) WorldToGrid(p core.Vec3) core.Cell {
	return core.Cell{
		X: floorDiv(c.along(p), c.settings.CellSize),
		Y: floorDiv(c.up(p), c.settings.CellSize),
	}
}

// WorldToMacro projects p onto the macro wall grid.
func (c Converter) WorldToMacro(p core.Vec3) core.Cell {
	return core.Cell{
		X: floorDiv(c.along(p), c.settings.MacroCellSize),
		Y: floorDiv(c.up(p), c.settings.MacroCellSize),
	}
}

// GetEdge buckets a macro X coordinate into an edge index. Negative input is
// rejected rather than truncated toward zero.
func (c Converter) GetEdge(coordX int) (int, bool) {
	if coordX < 0 || c.settings.CellsPerEdge <= 0 {
		return -1, false
	}
	return coordX / c.settings.CellsPerEdge, true
}

// EdgeCount is the number of edges the run is divided into. The last edge may be short.
func (c Converter) EdgeCount() int {
	el := c.settings.EdgeLength()
	if el <= 0 || c.length <= eps {
		return 0
	}
	return int(math.Ceil(c.length/el - eps))
}

// EdgeLength is the world length of the given edge, zero when out of range.
func (c Converter) EdgeLength(edge int) float64 {
	if edge < 0 || edge >= c.EdgeCount() {
		return 0
	}
	el := c.settings.EdgeLength()
	return math.Min(el, c.length-float64(edge)*el)
}

// CalculateGridSize derives the decoration grid dimensions of an edge. It is
// empty for geometry that Validate rejects.
func (c Converter) CalculateGridSize(edge int) core.Size {
	l := c.EdgeLength(edge)
	if l <= 0 || c.settings.CellSize <= 0 {
		return core.Size{}
	}
	if l/c.settings.CellSize > MaxAxisCells || !(c.height/c.settings.CellSize <= MaxAxisCells) {
		return core.Size{}
	}
	return core.Size{
		W: floorDiv(l, c.settings.CellSize),
		H: floorDiv(c.height, c.settings.CellSize),
	}
}

// WorldToEdgeGrid resolves p to an edge index and an edge-local decoration cell.
// ok is false before the run start or past its last edge; in the latter case the
// out-of-range edge index is still returned.
func (c Converter) WorldToEdgeGrid(p core.Vec3) (int, core.Cell, bool) {
	return c.WorldToEdgeGridWindow(p, 0, false)
}

// WorldToEdgeGridWindow is WorldToEdgeGrid with the along-wall position shifted
// by offset and, when invert is set, measured back from the far end of the run.
func (c Converter) WorldToEdgeGridWindow(p core.Vec3, offset float64, invert bool) (int, core.Cell, bool) {
	a := c.along(p) + offset
	if invert {
		a = c.length - a
	}

	edge, ok := c.GetEdge(floorDiv(a, c.settings.MacroCellSize))
	if !ok {
		return -1, core.Cell{}, false
	}
	if edge >= c.EdgeCount() {
		return edge, core.Cell{}, false
	}

	local := core.Cell{
		X: floorDiv(a-float64(edge)*c.settings.EdgeLength(), c.settings.CellSize),
		Y: floorDiv(c.up(p), c.settings.CellSize),
	}
	return edge, local, true
}

func (c Converter) alongUpToWorld(a, u float64) core.Vec3 {
	return c.origin.Add(c.dir.Scale(a)).Add(core.Vec3{Z: u})
}

// MacroCells is the number of macro cells the run touches.
func (c Converter) MacroCells() int {
	if c.settings.MacroCellSize <= 0 || c.length <= eps {
		return 0
	}
	return int(math.Ceil(c.length/c.settings.MacroCellSize - eps))
}

// MacroToWorld returns the floor-level centre of the x-th macro cell on the centerline.
func (c Converter) MacroToWorld(x int) core.Vec3 {
	return c.alongUpToWorld((float64(x)+0.5)*c.settings.MacroCellSize, 0)
}

// GridToWorld returns the centroid of a run-wide cell on the centerline.
func (c Converter) GridToWorld(cell core.Cell) core.Vec3 {
	cs := c.settings.CellSize
	return c.alongUpToWorld((float64(cell.X)+0.5)*cs, (float64(cell.Y)+0.5)*cs)
}

// GridToWorldSide is GridToWorld pushed out to the requested face of the wall.
func (c Converter) GridToWorldSide(cell core.Cell, side core.Side) core.Vec3 {
	half := c.thickness / 2
	if side == core.Interior {
		half = -half
	}
	return c.GridToWorld(cell).Add(c.normal.Scale(half))
}

// EdgeCellToWorld returns the centroid of an edge-local cell on the centerline.
func (c Converter) EdgeCellToWorld(edge int, cell core.Cell) core.Vec3 {
	cs := c.settings.CellSize
	base := float64(edge) * c.settings.EdgeLength()
	return c.alongUpToWorld(base+(float64(cell.X)+0.5)*cs, (float64(cell.Y)+0.5)*cs)
}

// EdgeCornerToWorld returns the world position of an edge-local grid line crossing.
func (c Converter) EdgeCornerToWorld(edge, x, y int) core.Vec3 {
	cs := c.settings.CellSize
	base := float64(edge) * c.settings.EdgeLength()
	return c.alongUpToWorld(base+float64(x)*cs, float64(y)*cs)
}

// EdgeExtentToWorld is EdgeCornerToWorld with the outer grid lines pushed to
// the real edge end and wall top, so the partial last column and row are
// covered.
func (c Converter) EdgeExtentToWorld(edge, x, y int) core.Vec3 {
	cs := c.settings.CellSize
	size := c.CalculateGridSize(edge)
	a := float64(x) * cs
	if x >= size.W {
		a = c.EdgeLength(edge)
	}
	u := float64(y) * cs
	if y >= size.H {
		u = c.height
	}
	return c.alongUpToWorld(float64(edge)*c.settings.EdgeLength()+a, u)
}

// GetSide classifies p by its signed distance from the centerline. Points on the
// centerline count as exterior.
func (c Converter) GetSide(p core.Vec3) core.Side {
	if c.NormalDistance(p) >= 0 {
		return core.Exterior
	}
	return core.Interior
}
