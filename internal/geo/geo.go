// Package geo holds the geometry glue between the wall grid and
// simplefeatures: point parsing, segment polygons and overlap checks.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ParseVec3 parses "x,y" or "x,y,z" into a world point.
func ParseVec3(coords string) (core.Vec3, error) {
	parts := strings.Split(coords, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return core.Vec3{}, ErrInvalidCoordinates
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return core.Vec3{}, ErrInvalidCoordinates
		}
		vals[i] = v
	}
	return core.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// FormatVec3 is the inverse of ParseVec3.
func FormatVec3(v core.Vec3) string {
	return fmt.Sprintf("%g,%g,%g", v.X, v.Y, v.Z)
}

// CellRectPolygon returns the half-open cell rectangle [min, max) as a 2D
// polygon in edge-local grid units.
func CellRectPolygon(minCell, maxCell core.Cell) (geom.Polygon, error) {
	if maxCell.X <= minCell.X || maxCell.Y <= minCell.Y {
		return geom.Polygon{}, fmt.Errorf("empty cell rectangle %v-%v: %w", minCell, maxCell, ErrInvalidCoordinates)
	}
	x0, y0 := float64(minCell.X), float64(minCell.Y)
	x1, y1 := float64(maxCell.X), float64(maxCell.Y)
	seq := geom.NewSequence([]float64{
		x0, y0,
		x1, y0,
		x1, y1,
		x0, y1,
		x0, y0,
	}, geom.DimXY)
	ring, err := geom.NewLineString(seq)
	if err != nil {
		return geom.Polygon{}, err
	}
	return geom.NewPolygon([]geom.LineString{ring})
}

// CutPolygon returns the footprint of an inclusive cut in edge-local grid units.
func CutPolygon(cut core.WallCut) (geom.Polygon, error) {
	return CellRectPolygon(cut.Start, core.Cell{X: cut.End.X + 1, Y: cut.End.Y + 1})
}

// SegmentPolygon returns the world-space ring of a processed segment. The
// rectangle is validated in edge-local cells; the world ring itself is vertical,
// its XY projection is a line, so it is built without validation.
func SegmentPolygon(seg core.ProcessedWallSegment) (geom.Polygon, error) {
	if _, err := CellRectPolygon(seg.Min, seg.Max); err != nil {
		return geom.Polygon{}, fmt.Errorf("segment on edge %d: %w", seg.Edge, err)
	}
	flat := make([]float64, 0, 15)
	for _, c := range seg.Corners {
		flat = append(flat, c.X, c.Y, c.Z)
	}
	first := seg.Corners[0]
	flat = append(flat, first.X, first.Y, first.Z)

	ring, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXYZ), geom.DisableAllValidations)
	if err != nil {
		return geom.Polygon{}, err
	}
	return geom.NewPolygon([]geom.LineString{ring}, geom.DisableAllValidations)
}

// OverlapArea returns the area shared by two planar polygons.
func OverlapArea(a, b geom.Polygon) (float64, error) {
	inter, err := geom.Intersection(a.AsGeometry(), b.AsGeometry())
	if err != nil {
		return 0, fmt.Errorf("intersecting polygons: %w", err)
	}
	if inter.IsEmpty() {
		return 0, nil
	}
	return inter.Area(), nil
}

// LotOffsetFromGeographic returns the world offset, in centimetres, of the
// point (lon, lat) from a lot anchored at (anchorLon, anchorLat). Both are
// projected to web mercator; Z is left at zero.
func LotOffsetFromGeographic(anchorLon, anchorLat, lon, lat float64) core.Vec3 {
	f := wgs84.EPSG().Transform(4326, 3857)
	ax, ay, _ := f(anchorLon, anchorLat, 0)
	x, y, _ := f(lon, lat, 0)
	return core.Vec3{X: (x - ax) * 100, Y: (y - ay) * 100}
}
