// pkg/core/wall.go
package core

import "cmp"

// WallSegmentData is the structural definition of a wall run. It is owned by the
// floor coordinator; walls keep a pointer to it.
type WallSegmentData struct {
	ID        uint    `json:"id"`
	Height    float64 `json:"height"`
	Thickness float64 `json:"thickness"`
}

// Corners are the run endpoints on the wall centerline at floor level.
type Corners struct {
	Start Vec3 `json:"start"`
	End   Vec3 `json:"end"`
}

// WallCut is a validated rectangular opening on one edge's decoration grid.
// Start and End are inclusive.
type WallCut struct {
	Edge     int        `json:"edge"`
	Start    Cell       `json:"start"`
	End      Cell       `json:"end"`
	Kind     Occupation `json:"kind"`
	HalfSize Size       `json:"halfSize"`
	Side     Side       `json:"side"`
}

// Size returns the footprint of the cut in cells.
func (c WallCut) Size() Size {
	return Size{W: c.End.X - c.Start.X + 1, H: c.End.Y - c.Start.Y + 1}
}

// Contains reports whether the cell lies inside the cut footprint.
func (c WallCut) Contains(cell Cell) bool {
	return cell.X >= c.Start.X && cell.X <= c.End.X &&
		cell.Y >= c.Start.Y && cell.Y <= c.End.Y
}

// Overlaps reports whether two cuts on the same edge share at least one cell.
func (c WallCut) Overlaps(o WallCut) bool {
	if c.Edge != o.Edge {
		return false
	}
	return c.Start.X <= o.End.X && o.Start.X <= c.End.X &&
		c.Start.Y <= o.End.Y && o.Start.Y <= c.End.Y
}

// PlacementResult is the outcome of a placement or removal attempt.
type PlacementResult struct {
	Success bool     `json:"success"`
	Cut     *WallCut `json:"cut,omitempty"`
	Edge    int      `json:"edge"`
	Side    Side     `json:"side"`
	Reason  Reason   `json:"reason"`
}

// Err maps a failed result onto its sentinel error. Successful results return nil.
func (r PlacementResult) Err() error {
	if r.Success {
		return nil
	}
	return r.Reason.Err()
}

// Failed builds an unsuccessful result.
func Failed(edge int, side Side, reason Reason) PlacementResult {
	return PlacementResult{Edge: edge, Side: side, Reason: reason}
}

// ProcessedWallSegment is a solid rectangle of wall left after subtracting the
// cuts of one edge. Min and Max are edge-local grid lines (Max exclusive);
// Corners run bottom-left, bottom-right, top-right, top-left on the centerline.
type ProcessedWallSegment struct {
	WallID  uint    `json:"wallId"`
	Edge    int     `json:"edge"`
	Min     Cell    `json:"min"`
	Max     Cell    `json:"max"`
	Corners [4]Vec3 `json:"corners"`
}

// Size returns the segment extent in cells.
func (s ProcessedWallSegment) Size() Size {
	return Size{W: s.Max.X - s.Min.X, H: s.Max.Y - s.Min.Y}
}

// FlaggedCut is a recorded cut that no longer fits after the wall was updated.
type FlaggedCut struct {
	Cut    WallCut `json:"cut"`
	Reason Reason  `json:"reason"`
}

// WallRecord is the persisted definition of a wall on a floor.
type WallRecord struct {
	Lot     string          `json:"lot"`
	Floor   int             `json:"floor"`
	Data    WallSegmentData `json:"data"`
	Axis    Axis            `json:"axis"`
	Corners Corners         `json:"corners"`
}

// WallKey identifies a wall across every floor of every lot.
type WallKey struct {
	Lot   string `json:"lot"`
	Floor int    `json:"floor"`
	Wall  uint   `json:"wall"`
}

// Key returns the identity of the recorded wall.
func (r WallRecord) Key() WallKey {
	return WallKey{Lot: r.Lot, Floor: r.Floor, Wall: r.Data.ID}
}

// Compare orders keys by lot, floor, then wall.
func (k WallKey) Compare(o WallKey) int {
	if c := cmp.Compare(k.Lot, o.Lot); c != 0 {
		return c
	}
	if c := cmp.Compare(k.Floor, o.Floor); c != 0 {
		return c
	}
	return cmp.Compare(k.Wall, o.Wall)
}
