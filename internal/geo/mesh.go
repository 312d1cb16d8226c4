package geo

import (
	"fmt"
	"slices"
	"sync"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// Mesher is a wall.MeshGenerator that keeps the world-space face polygons of
// the latest rebuild of each wall.
type Mesher struct {
	mu    sync.RWMutex
	faces map[uint][]geom.Polygon
}

func NewMesher() *Mesher {
	return &Mesher{faces: make(map[uint][]geom.Polygon)}
}

// Generate replaces the faces of wallID. An empty slice clears them. A
// degenerate segment fails the whole call and leaves the previous faces.
func (m *Mesher) Generate(wallID uint, segs []core.ProcessedWallSegment) error {
	faces := make([]geom.Polygon, 0, len(segs))
	for _, s := range segs {
		face, err := SegmentPolygon(s)
		if err != nil {
			return fmt.Errorf("meshing wall %d: %w", wallID, err)
		}
		faces = append(faces, face)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(faces) == 0 {
		delete(m.faces, wallID)
		return nil
	}
	m.faces[wallID] = faces
	return nil
}

// Faces returns the polygons generated for wallID.
func (m *Mesher) Faces(wallID uint) []geom.Polygon {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.faces[wallID])
}

// WKT renders the faces of wallID as well-known text.
func (m *Mesher) WKT(wallID uint) []string {
	faces := m.Faces(wallID)
	out := make([]string, len(faces))
	for i, f := range faces {
		out[i] = f.AsText()
	}
	return out
}

// Walls returns the IDs that currently have faces, ascending.
func (m *Mesher) Walls() []uint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uint, 0, len(m.faces))
	for id := range m.faces {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
