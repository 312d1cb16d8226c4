// Package decoration implements the per-edge occupation grid used to place
// and validate door and window cuts.
package decoration

import (
	"fmt"

	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// MaxCells bounds the number of cells a single grid may allocate.
const MaxCells = 1 << 22

// Grid is a row-major occupation map. Each edge owns its own Grid; writes to
// one never touch another.
type Grid struct {
	size  core.Size
	cells []core.Occupation
	sides []core.Side
}

// New allocates a grid with every cell Free. Negative dimensions give an empty
// grid; more than MaxCells is refused.
func New(size core.Size) (*Grid, error) {
	if size.W < 0 {
		size.W = 0
	}
	if size.H < 0 {
		size.H = 0
	}
	if size.W > MaxCells || size.H > MaxCells || size.W*size.H > MaxCells {
		return nil, fmt.Errorf("grid %dx%d exceeds %d cells: %w", size.W, size.H, MaxCells, core.ErrInvalidCoordinate)
	}
	return &Grid{
		size:  size,
		cells: make([]core.Occupation, size.W*size.H),
		sides: make([]core.Side, size.W*size.H),
	}, nil
}

func (g *Grid) Size() core.Size { return g.size }

func (g *Grid) index(c core.Cell) int { return c.Y*g.size.W + c.X }

// IsValidCoordinate is a plain bounds check; there is no wraparound.
func (g *Grid) IsValidCoordinate(c core.Cell) bool {
	return c.X >= 0 && c.X < g.size.W && c.Y >= 0 && c.Y < g.size.H
}

// At returns the state of a cell, false when the cell is out of bounds.
func (g *Grid) At(c core.Cell) (core.Occupation, bool) {
	if !g.IsValidCoordinate(c) {
		return core.Free, false
	}
	return g.cells[g.index(c)], true
}

// SideAt returns the face an occupied cell was marked from.
func (g *Grid) SideAt(c core.Cell) (core.Side, bool) {
	if !g.IsValidCoordinate(c) {
		return core.Interior, false
	}
	return g.sides[g.index(c)], true
}

// IsAreaFree reports whether every cell of [start, start+size) is in bounds
// and Free. Degenerate sizes are never free.
func (g *Grid) IsAreaFree(start core.Cell, size core.Size) bool {
	if size.W <= 0 || size.H <= 0 {
		return false
	}
	last := core.Cell{X: start.X + size.W - 1, Y: start.Y + size.H - 1}
	if !g.IsValidCoordinate(start) || !g.IsValidCoordinate(last) {
		return false
	}
	for y := start.Y; y <= last.Y; y++ {
		row := y * g.size.W
		for x := start.X; x <= last.X; x++ {
			if g.cells[row+x] != core.Free {
				return false
			}
		}
	}
	return true
}

// MarkAreaOccupied writes kind into every cell of the rectangle. Callers check
// IsAreaFree first; cells outside the grid are skipped, not wrapped.
func (g *Grid) MarkAreaOccupied(side core.Side, start core.Cell, size core.Size, kind core.Occupation) {
	g.fill(start, size, kind, side)
}

// ClearArea resets the rectangle to Free.
func (g *Grid) ClearArea(start core.Cell, size core.Size) {
	g.fill(start, size, core.Free, core.Interior)
}

func (g *Grid) fill(start core.Cell, size core.Size, kind core.Occupation, side core.Side) {
	for y := start.Y; y < start.Y+size.H; y++ {
		for x := start.X; x < start.X+size.W; x++ {
			c := core.Cell{X: x, Y: y}
			if !g.IsValidCoordinate(c) {
				continue
			}
			i := g.index(c)
			g.cells[i] = kind
			g.sides[i] = side
		}
	}
}

// FreeCount returns how many cells are still Free.
func (g *Grid) FreeCount() int {
	n := 0
	for _, c := range g.cells {
		if c == core.Free {
			n++
		}
	}
	return n
}

// Snapshot copies the occupation state, one byte per cell in row-major order.
func (g *Grid) Snapshot() []byte {
	out := make([]byte, len(g.cells))
	for i, c := range g.cells {
		out[i] = byte(c)
	}
	return out
}
