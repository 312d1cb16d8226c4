package wall

import (
	"fmt"
	"slices"

	"github.com/gamebuildmode/wallgrid/internal/coords"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

type span struct{ x0, x1 int }

// GenerateWallSegments subtracts the cuts of every edge from the full edge
// rectangle. Segments come out ordered by edge, then bottom row, then column.
func (w *Wall) GenerateWallSegments(cutsByEdge map[int][]core.WallCut) []core.ProcessedWallSegment {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.initialized {
		return nil
	}
	return w.generateLocked(cutsByEdge)
}

func (w *Wall) generateLocked(cutsByEdge map[int][]core.WallCut) []core.ProcessedWallSegment {
	var out []core.ProcessedWallSegment
	for edge := 0; edge < w.conv.EdgeCount(); edge++ {
		rects := edgeRects(w.conv.CalculateGridSize(edge), cutsByEdge[edge])
		for _, r := range rects {
			out = append(out, segment(w.conv, w.data.ID, edge, r[0], r[1]))
		}
	}
	return out
}

// edgeRects splits the edge into horizontal bands at every cut's top and
// bottom, takes the free column runs of each band and merges runs that repeat
// in the band directly above. Each rect is {min, max} with max exclusive.
func edgeRects(size core.Size, cuts []core.WallCut) [][2]core.Cell {
	if size.W <= 0 || size.H <= 0 {
		return nil
	}

	rows := []int{0, size.H}
	for _, c := range cuts {
		rows = append(rows, clampInt(c.Start.Y, 0, size.H), clampInt(c.End.Y+1, 0, size.H))
	}
	slices.Sort(rows)
	rows = slices.Compact(rows)

	var done [][2]core.Cell
	open := map[span]int{} // run -> bottom row
	for i := 0; i+1 < len(rows); i++ {
		y0, y1 := rows[i], rows[i+1]
		runs := freeRuns(size.W, y0, y1, cuts)

		next := make(map[span]int, len(runs))
		for _, r := range runs {
			if bottom, ok := open[r]; ok {
				next[r] = bottom
				delete(open, r)
			} else {
				next[r] = y0
			}
		}
		for r, bottom := range open {
			done = append(done, [2]core.Cell{{X: r.x0, Y: bottom}, {X: r.x1, Y: y0}})
		}
		open = next
	}
	for r, bottom := range open {
		done = append(done, [2]core.Cell{{X: r.x0, Y: bottom}, {X: r.x1, Y: size.H}})
	}

	slices.SortFunc(done, func(a, b [2]core.Cell) int {
		if a[0].Y != b[0].Y {
			return a[0].Y - b[0].Y
		}
		return a[0].X - b[0].X
	})
	return done
}

// freeRuns returns the column runs of [0, width) not covered by a cut spanning
// rows [y0, y1).
func freeRuns(width, y0, y1 int, cuts []core.WallCut) []span {
	var covered []span
	for _, c := range cuts {
		if c.Start.Y <= y0 && c.End.Y+1 >= y1 {
			covered = append(covered, span{clampInt(c.Start.X, 0, width), clampInt(c.End.X+1, 0, width)})
		}
	}
	slices.SortFunc(covered, func(a, b span) int { return a.x0 - b.x0 })

	var runs []span
	x := 0
	for _, c := range covered {
		if c.x0 > x {
			runs = append(runs, span{x, c.x0})
		}
		x = max(x, c.x1)
	}
	if x < width {
		runs = append(runs, span{x, width})
	}
	return runs
}

func segment(conv coords.Converter, wallID uint, edge int, lo, hi core.Cell) core.ProcessedWallSegment {
	return core.ProcessedWallSegment{
		WallID: wallID,
		Edge:   edge,
		Min:    lo,
		Max:    hi,
		Corners: [4]core.Vec3{
			conv.EdgeExtentToWorld(edge, lo.X, lo.Y),
			conv.EdgeExtentToWorld(edge, hi.X, lo.Y),
			conv.EdgeExtentToWorld(edge, hi.X, hi.Y),
			conv.EdgeExtentToWorld(edge, lo.X, hi.Y),
		},
	}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Segments returns the processed segments for the recorded cuts, regenerating
// them only after the cut history changed.
func (w *Wall) Segments() []core.ProcessedWallSegment {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.initialized {
		return nil
	}
	w.refreshLocked()
	return slices.Clone(w.segments)
}

func (w *Wall) refreshLocked() {
	if w.dirty || w.segments == nil {
		w.segments = w.generateLocked(w.cuts.ByEdge())
		w.dirty = false
	}
}

// Rebuild pushes the current segments to the mesh generator.
func (w *Wall) Rebuild() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.initialized {
		return core.ErrNotInitialized
	}
	w.refreshLocked()
	if err := w.generator.Generate(w.data.ID, slices.Clone(w.segments)); err != nil {
		return fmt.Errorf("generating mesh for wall %d: %w", w.data.ID, err)
	}
	return nil
}
