package wall

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/gamebuildmode/wallgrid/internal/geo"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// Audit cross-checks the cut history against the generated segments: cuts on
// one edge must be disjoint, segments must not overlap each other or any cut,
// and together they must cover the edge exactly.
func (w *Wall) Audit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.initialized {
		return core.ErrNotInitialized
	}
	w.refreshLocked()

	byEdge := w.cuts.ByEdge()
	for edge := 0; edge < w.conv.EdgeCount(); edge++ {
		var shapes []geom.Polygon
		var area float64
		for _, cut := range byEdge[edge] {
			shape, err := geo.CutPolygon(cut)
			if err != nil {
				return fmt.Errorf("auditing edge %d: %w", edge, err)
			}
			shapes = append(shapes, shape)
			area += float64(cut.Size().Area())
		}
		for _, seg := range w.segments {
			if seg.Edge != edge {
				continue
			}
			shape, err := geo.CellRectPolygon(seg.Min, seg.Max)
			if err != nil {
				return fmt.Errorf("auditing edge %d: %w", edge, err)
			}
			shapes = append(shapes, shape)
			area += float64(seg.Size().Area())
		}

		for i := range shapes {
			for j := i + 1; j < len(shapes); j++ {
				shared, err := geo.OverlapArea(shapes[i], shapes[j])
				if err != nil {
					return fmt.Errorf("auditing edge %d: %w", edge, err)
				}
				if shared > 0 {
					return fmt.Errorf("auditing edge %d: shapes %d and %d share %.0f cells: %w", edge, i, j, shared, core.ErrOverlap)
				}
			}
		}

		if want := w.conv.CalculateGridSize(edge).Area(); int(area) != want {
			return fmt.Errorf("auditing edge %d: covered %d of %d cells", edge, int(area), want)
		}
	}
	return nil
}
