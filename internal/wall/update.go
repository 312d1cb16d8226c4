package wall

import (
	"fmt"
	"slices"

	"github.com/gamebuildmode/wallgrid/internal/coords"
	"github.com/gamebuildmode/wallgrid/internal/decoration"
	"github.com/gamebuildmode/wallgrid/internal/slicer"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// UpdateWall rebinds the wall to new structural data and corners. Grids are
// re-derived for every edge that had one and for edges the run grew into.
// Cuts that still fit are re-applied; the rest are flagged, dropped from the
// grid and returned. Flagged cuts accumulate until ClearFlaggedCuts.
func (w *Wall) UpdateWall(data *core.WallSegmentData, corners core.Corners) ([]core.FlaggedCut, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.initialized {
		return nil, core.ErrNotInitialized
	}
	if data == nil {
		return nil, core.ErrMissingDependency
	}

	conv := coords.New(w.settings, *data, w.axis, corners)
	if err := conv.Validate(); err != nil {
		return nil, fmt.Errorf("updating wall %d: %w", data.ID, err)
	}

	grids := make(map[int]*decoration.Grid, len(w.grids))
	for e := 0; e < conv.EdgeCount(); e++ {
		if _, had := w.grids[e]; had || e >= w.conv.EdgeCount() {
			grid, err := decoration.New(conv.CalculateGridSize(e))
			if err != nil {
				return nil, fmt.Errorf("updating wall %d edge %d: %w", data.ID, e, err)
			}
			grids[e] = grid
		}
	}

	oldCuts := w.cuts.All()
	w.data = data
	w.corners = corners
	w.conv = conv
	w.grids = grids
	w.cuts = slicer.NewCutList()

	var flagged []core.FlaggedCut
	for _, cut := range oldCuts {
		if reason := w.refitLocked(cut); reason != core.ReasonNone {
			flagged = append(flagged, core.FlaggedCut{Cut: cut, Reason: reason})
			w.log.Warn("cut no longer fits wall", "wall", data.ID, "edge", cut.Edge,
				"start", cut.Start, "end", cut.End, "reason", reason.String())
		}
	}

	w.flagged = append(w.flagged, flagged...)
	w.dirty = true
	w.log.Info("wall updated", "wall", data.ID, "length", w.conv.Length(),
		"edges", w.conv.EdgeCount(), "kept", w.cuts.Len(), "flagged", len(flagged))
	return flagged, nil
}

func (w *Wall) refitLocked(cut core.WallCut) core.Reason {
	grid, ok := w.grids[cut.Edge]
	if !ok {
		return core.ReasonInvalidEdge
	}
	if !grid.IsValidCoordinate(cut.Start) || !grid.IsValidCoordinate(cut.End) {
		return core.ReasonInvalidCoordinate
	}
	if !grid.IsAreaFree(cut.Start, cut.Size()) {
		return core.ReasonOverlap
	}
	grid.MarkAreaOccupied(cut.Side, cut.Start, cut.Size(), cut.Kind)
	slicer.SaveCut(w.cuts, cut)
	return core.ReasonNone
}

// FlaggedCuts returns the cuts dropped by UpdateWall since the last clear.
func (w *Wall) FlaggedCuts() []core.FlaggedCut {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.flagged)
}

// ClearFlaggedCuts acknowledges the flagged cuts.
func (w *Wall) ClearFlaggedCuts() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flagged = nil
}
