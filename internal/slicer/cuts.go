package slicer

import (
	"slices"

	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// CutList is the authoritative cut history of one wall, kept per edge and
// ordered by position along the edge.
type CutList struct {
	byEdge map[int][]core.WallCut
}

func NewCutList() *CutList {
	return &CutList{byEdge: make(map[int][]core.WallCut)}
}

func compareCuts(a, b core.WallCut) int {
	if a.Start.X != b.Start.X {
		return a.Start.X - b.Start.X
	}
	return a.Start.Y - b.Start.Y
}

// SaveCut records a validated cut. It is the only way cuts enter the history.
func SaveCut(list *CutList, cut core.WallCut) {
	cuts := list.byEdge[cut.Edge]
	i, _ := slices.BinarySearchFunc(cuts, cut, compareCuts)
	list.byEdge[cut.Edge] = slices.Insert(cuts, i, cut)
}

// RemoveCut drops the cut covering cell on edge, returning it.
func RemoveCut(list *CutList, edge int, cell core.Cell) (core.WallCut, bool) {
	cuts := list.byEdge[edge]
	i := slices.IndexFunc(cuts, func(c core.WallCut) bool { return c.Contains(cell) })
	if i < 0 {
		return core.WallCut{}, false
	}
	cut := cuts[i]
	cuts = slices.Delete(cuts, i, i+1)
	if len(cuts) == 0 {
		delete(list.byEdge, edge)
	} else {
		list.byEdge[edge] = cuts
	}
	return cut, true
}

// Edge returns a copy of the cuts on one edge.
func (l *CutList) Edge(edge int) []core.WallCut {
	return slices.Clone(l.byEdge[edge])
}

// Edges returns the edges holding at least one cut, ascending.
func (l *CutList) Edges() []int {
	edges := make([]int, 0, len(l.byEdge))
	for e := range l.byEdge {
		edges = append(edges, e)
	}
	slices.Sort(edges)
	return edges
}

// ByEdge returns a copy of the whole history keyed by edge.
func (l *CutList) ByEdge() map[int][]core.WallCut {
	out := make(map[int][]core.WallCut, len(l.byEdge))
	for e, cuts := range l.byEdge {
		out[e] = slices.Clone(cuts)
	}
	return out
}

// All returns every cut ordered by edge, then position.
func (l *CutList) All() []core.WallCut {
	var out []core.WallCut
	for _, e := range l.Edges() {
		out = append(out, l.byEdge[e]...)
	}
	return out
}

func (l *CutList) Len() int {
	n := 0
	for _, cuts := range l.byEdge {
		n += len(cuts)
	}
	return n
}

// Reset empties the history.
func (l *CutList) Reset() {
	clear(l.byEdge)
}
