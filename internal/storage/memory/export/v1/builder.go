package v1

import (
	"slices"
	"time"

	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// SessionData contains everything recorded during one session.
type SessionData struct {
	Started time.Time
	Walls   map[core.WallKey]*WallData
}

// WallData groups a wall with its cut history. Record is nil when edits
// arrived for a wall that was never saved.
type WallData struct {
	Record   *core.WallRecord
	Cuts     []core.WallCut
	Removed  []core.WallCut
	Flagged  []core.FlaggedCut
	Segments []core.ProcessedWallSegment
	Deleted  bool
}

// Build creates an Export from the session data. Walls are ordered by key.
func Build(data *SessionData, exported time.Time) Export {
	export := Export{
		Version:  Version,
		Started:  data.Started.UTC().Format(time.RFC3339),
		Exported: exported.UTC().Format(time.RFC3339),
		Walls:    make([]Wall, 0, len(data.Walls)),
	}

	keys := make([]core.WallKey, 0, len(data.Walls))
	for k := range data.Walls {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, core.WallKey.Compare)

	for _, k := range keys {
		export.Walls = append(export.Walls, buildWall(k, data.Walls[k]))
	}
	return export
}

func buildWall(k core.WallKey, d *WallData) Wall {
	w := Wall{
		Lot:      k.Lot,
		Floor:    k.Floor,
		ID:       k.Wall,
		Cuts:     make([][]any, 0, len(d.Cuts)),
		Removed:  make([][]any, 0, len(d.Removed)),
		Flagged:  make([][]any, 0, len(d.Flagged)),
		Segments: make([][]any, 0, len(d.Segments)),
		Deleted:  d.Deleted,
	}
	if r := d.Record; r != nil {
		w.Axis = r.Axis.String()
		w.Height = r.Data.Height
		w.Thickness = r.Data.Thickness
		w.Start = vec(r.Corners.Start)
		w.End = vec(r.Corners.End)
	}

	for _, c := range d.Cuts {
		w.Cuts = append(w.Cuts, cutRow(c, c.Side.String()))
	}
	for _, c := range d.Removed {
		w.Removed = append(w.Removed, cutRow(c, c.Side.String()))
	}
	for _, f := range d.Flagged {
		w.Flagged = append(w.Flagged, cutRow(f.Cut, f.Reason.String()))
	}
	for _, s := range d.Segments {
		w.Segments = append(w.Segments, []any{s.Edge, s.Min.X, s.Min.Y, s.Max.X, s.Max.Y})
		w.SolidCells += s.Size().Area()
	}
	return w
}

func cutRow(c core.WallCut, last string) []any {
	return []any{c.Edge, c.Start.X, c.Start.Y, c.End.X, c.End.Y, c.Kind.String(), last}
}

func vec(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
