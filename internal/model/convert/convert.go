// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"

	"github.com/gamebuildmode/wallgrid/internal/geo"
	"github.com/gamebuildmode/wallgrid/internal/model"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

var kinds = map[string]core.Occupation{
	core.Free.String():     core.Free,
	core.Occupied.String(): core.Occupied,
	core.Door.String():     core.Door,
	core.Window.String():   core.Window,
}

// cornersToLineString converts wall corners to an XYZ geom.LineString
func cornersToLineString(c core.Corners) (geom.LineString, error) {
	seq := geom.NewSequence([]float64{
		c.Start.X, c.Start.Y, c.Start.Z,
		c.End.X, c.End.Y, c.End.Z,
	}, geom.DimXYZ)
	ls, err := geom.NewLineString(seq)
	if err != nil {
		return geom.LineString{}, fmt.Errorf("wall centerline: %w", err)
	}
	return ls, nil
}

// lineStringToCorners is the inverse of cornersToLineString.
func lineStringToCorners(ls geom.LineString) (core.Corners, error) {
	seq := ls.Coordinates()
	if seq.Length() != 2 {
		return core.Corners{}, fmt.Errorf("centerline has %d points, want 2", seq.Length())
	}
	a, b := seq.Get(0), seq.Get(1)
	return core.Corners{
		Start: core.Vec3{X: a.X, Y: a.Y, Z: a.Z},
		End:   core.Vec3{X: b.X, Y: b.Y, Z: b.Z},
	}, nil
}

func keyToGorm(k core.WallKey) model.WallKey {
	return model.WallKey{Lot: k.Lot, Floor: k.Floor, WallID: k.Wall}
}

// CoreToWall converts a core.WallRecord to a GORM model.Wall.
func CoreToWall(r core.WallRecord) (model.Wall, error) {
	centerline, err := cornersToLineString(r.Corners)
	if err != nil {
		return model.Wall{}, err
	}
	return model.Wall{
		Lot:        r.Lot,
		Floor:      r.Floor,
		WallID:     r.Data.ID,
		Axis:       r.Axis.String(),
		Height:     r.Data.Height,
		Thickness:  r.Data.Thickness,
		Centerline: centerline,
	}, nil
}

// WallToCore converts a GORM model.Wall back to a core.WallRecord.
func WallToCore(m model.Wall) (core.WallRecord, error) {
	axis, err := core.ParseAxis(m.Axis)
	if err != nil {
		return core.WallRecord{}, err
	}
	corners, err := lineStringToCorners(m.Centerline)
	if err != nil {
		return core.WallRecord{}, err
	}
	return core.WallRecord{
		Lot:     m.Lot,
		Floor:   m.Floor,
		Data:    core.WallSegmentData{ID: m.WallID, Height: m.Height, Thickness: m.Thickness},
		Axis:    axis,
		Corners: corners,
	}, nil
}

// CoreToCut converts a core.WallCut on the keyed wall to a GORM model.Cut.
func CoreToCut(k core.WallKey, c core.WallCut) (model.Cut, error) {
	footprint, err := geo.CutPolygon(c)
	if err != nil {
		return model.Cut{}, err
	}
	return model.Cut{
		WallKey:   keyToGorm(k),
		Edge:      c.Edge,
		StartX:    c.Start.X,
		StartY:    c.Start.Y,
		EndX:      c.End.X,
		EndY:      c.End.Y,
		Kind:      c.Kind.String(),
		Side:      c.Side.String(),
		HalfW:     c.HalfSize.W,
		HalfH:     c.HalfSize.H,
		Footprint: footprint,
	}, nil
}

// CutToCore converts a GORM model.Cut back to a core.WallCut.
func CutToCore(m model.Cut) (core.WallCut, error) {
	kind, ok := kinds[m.Kind]
	if !ok {
		return core.WallCut{}, fmt.Errorf("unknown cut kind %q", m.Kind)
	}
	side := core.Interior
	if m.Side == core.Exterior.String() {
		side = core.Exterior
	}
	return core.WallCut{
		Edge:     m.Edge,
		Start:    core.Cell{X: m.StartX, Y: m.StartY},
		End:      core.Cell{X: m.EndX, Y: m.EndY},
		Kind:     kind,
		HalfSize: core.Size{W: m.HalfW, H: m.HalfH},
		Side:     side,
	}, nil
}

// CoreToFlaggedCut converts a core.FlaggedCut to a GORM model.FlaggedCut.
func CoreToFlaggedCut(k core.WallKey, f core.FlaggedCut) model.FlaggedCut {
	return model.FlaggedCut{
		WallKey: keyToGorm(k),
		Edge:    f.Cut.Edge,
		StartX:  f.Cut.Start.X,
		StartY:  f.Cut.Start.Y,
		EndX:    f.Cut.End.X,
		EndY:    f.Cut.End.Y,
		Kind:    f.Cut.Kind.String(),
		Reason:  f.Reason.String(),
	}
}

// FlaggedCutToCore converts a GORM model.FlaggedCut back to a core.FlaggedCut.
// Flags do not keep the cut's side or half size.
func FlaggedCutToCore(m model.FlaggedCut) (core.FlaggedCut, error) {
	kind, ok := kinds[m.Kind]
	if !ok {
		return core.FlaggedCut{}, fmt.Errorf("unknown cut kind %q", m.Kind)
	}
	var reason core.Reason
	if err := reason.UnmarshalText([]byte(m.Reason)); err != nil {
		return core.FlaggedCut{}, err
	}
	return core.FlaggedCut{
		Cut: core.WallCut{
			Edge:  m.Edge,
			Start: core.Cell{X: m.StartX, Y: m.StartY},
			End:   core.Cell{X: m.EndX, Y: m.EndY},
			Kind:  kind,
		},
		Reason: reason,
	}, nil
}

// CoreToSegmentSnapshot serializes the processed segments of a wall.
func CoreToSegmentSnapshot(k core.WallKey, segs []core.ProcessedWallSegment) (model.SegmentSnapshot, error) {
	if segs == nil {
		segs = []core.ProcessedWallSegment{}
	}
	data, err := json.Marshal(segs)
	if err != nil {
		return model.SegmentSnapshot{}, fmt.Errorf("marshalling segments: %w", err)
	}
	area := 0
	for _, s := range segs {
		area += s.Size().Area()
	}
	return model.SegmentSnapshot{
		Lot:      k.Lot,
		Floor:    k.Floor,
		WallID:   k.Wall,
		Count:    len(segs),
		CellArea: area,
		Segments: datatypes.JSON(data),
	}, nil
}

// SegmentSnapshotToCore decodes a stored snapshot.
func SegmentSnapshotToCore(m model.SegmentSnapshot) ([]core.ProcessedWallSegment, error) {
	var segs []core.ProcessedWallSegment
	if len(m.Segments) == 0 {
		return segs, nil
	}
	if err := json.Unmarshal(m.Segments, &segs); err != nil {
		return nil, fmt.Errorf("unmarshalling segments: %w", err)
	}
	return segs, nil
}
