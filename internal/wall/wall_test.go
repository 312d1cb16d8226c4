package wall

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamebuildmode/wallgrid/internal/coords"
	"github.com/gamebuildmode/wallgrid/internal/geo"
	"github.com/gamebuildmode/wallgrid/internal/logging"
	"github.com/gamebuildmode/wallgrid/internal/slicer"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

type recordingGenerator struct {
	mu    sync.Mutex
	calls map[uint][]core.ProcessedWallSegment
	err   error
}

func (g *recordingGenerator) Generate(wallID uint, segs []core.ProcessedWallSegment) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.calls == nil {
		g.calls = make(map[uint][]core.ProcessedWallSegment)
	}
	g.calls[wallID] = segs
	return g.err
}

func newDeps(t *testing.T) Dependencies {
	t.Helper()
	s, err := slicer.New(logging.Nop(), slicer.DefaultCatalog())
	require.NoError(t, err)
	return Dependencies{Logger: logging.Nop(), Slicer: s, Settings: coords.DefaultSettings()}
}

// newWall returns an initialized wall along X from the origin with every grid allocated.
func newWall(t *testing.T, length float64) (*Wall, *core.WallSegmentData, *recordingGenerator) {
	t.Helper()
	data := &core.WallSegmentData{ID: 7, Height: 300, Thickness: 20}
	gen := &recordingGenerator{}
	w := New(newDeps(t))
	require.NoError(t, w.Initialize(data, core.AxisX, core.Corners{End: core.Vec3{X: length}}, gen))
	require.NoError(t, w.InitializeAllGrids())
	return w, data, gen
}

func rect(x0, y0, x1, y1 int) [2]core.Cell {
	return [2]core.Cell{{X: x0, Y: y0}, {X: x1, Y: y1}}
}

func rects(segs []core.ProcessedWallSegment) [][2]core.Cell {
	out := make([][2]core.Cell, len(segs))
	for i, s := range segs {
		out[i] = [2]core.Cell{s.Min, s.Max}
	}
	return out
}

func TestInitialize_MissingDependencies(t *testing.T) {
	data := &core.WallSegmentData{ID: 1, Height: 300, Thickness: 20}
	corners := core.Corners{End: core.Vec3{X: 200}}

	tests := []struct {
		name string
		deps Dependencies
		data *core.WallSegmentData
		gen  MeshGenerator
	}{
		{"no data", newDeps(t), nil, &recordingGenerator{}},
		{"no generator", newDeps(t), data, nil},
		{"no slicer", Dependencies{Logger: logging.Nop()}, data, &recordingGenerator{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(tt.deps)
			err := w.Initialize(tt.data, core.AxisX, corners, tt.gen)
			assert.True(t, errors.Is(err, core.ErrMissingDependency))
			assert.False(t, w.Initialized())

			res := w.PlaceObject(core.Vec3{X: 100, Y: 5}, core.ToolPlaceDoor)
			assert.Equal(t, core.ReasonNotInitialized, res.Reason)
			assert.Nil(t, w.Segments())
			assert.ErrorIs(t, w.InitializeSlicerGrid(0), core.ErrNotInitialized)
			assert.ErrorIs(t, w.Rebuild(), core.ErrNotInitialized)
		})
	}
}

func TestInitialize_RejectsOversizedWall(t *testing.T) {
	w := New(newDeps(t))
	err := w.Initialize(&core.WallSegmentData{ID: 3, Height: 1e18, Thickness: 20}, core.AxisX,
		core.Corners{End: core.Vec3{X: 400}}, &recordingGenerator{})
	assert.ErrorIs(t, err, core.ErrInvalidCoordinate)
	assert.ErrorIs(t, w.InitializeAllGrids(), core.ErrNotInitialized)

	w, _, _ = newWall(t, 400)
	_, err = w.UpdateWall(&core.WallSegmentData{ID: 7, Height: 1e18, Thickness: 20}, core.Corners{End: core.Vec3{X: 400}})
	assert.ErrorIs(t, err, core.ErrInvalidCoordinate)
	assert.Equal(t, core.Size{W: 20, H: 30}, w.CalculateGridSize(0))
}

func TestInitializeSlicerGrid(t *testing.T) {
	w := New(newDeps(t))
	require.NoError(t, w.Initialize(&core.WallSegmentData{ID: 1, Height: 300, Thickness: 20},
		core.AxisX, core.Corners{End: core.Vec3{X: 400}}, &recordingGenerator{}))

	assert.Equal(t, core.ReasonNotInitialized, w.PlaceObject(core.Vec3{X: 100, Y: 5}, core.ToolPlaceDoor).Reason)

	require.NoError(t, w.InitializeSlicerGrid(0))
	grid, ok := w.Grid(0)
	require.True(t, ok)
	assert.Equal(t, core.Size{W: 20, H: 30}, grid.Size())
	assert.Equal(t, core.Size{W: 20, H: 30}, w.CalculateGridSize(1))

	assert.ErrorIs(t, w.InitializeSlicerGrid(2), core.ErrInvalidEdge)
	assert.ErrorIs(t, w.InitializeSlicerGrid(-1), core.ErrInvalidEdge)

	require.True(t, w.PlaceObject(core.Vec3{X: 100, Y: 5}, core.ToolPlaceDoor).Success)
	require.Len(t, w.Cuts(), 1)

	// resetting an edge drops its cuts
	require.NoError(t, w.InitializeSlicerGrid(0))
	assert.Empty(t, w.Cuts())
	grid, _ = w.Grid(0)
	assert.Equal(t, 600, grid.FreeCount())
}

func TestGenerateWallSegments_TwoDisjointCuts(t *testing.T) {
	w, _, _ := newWall(t, 200)

	for _, cut := range []core.WallCut{
		{Edge: 0, Start: core.Cell{X: 0, Y: 0}, End: core.Cell{X: 3, Y: 0}, Kind: core.Window},
		{Edge: 0, Start: core.Cell{X: 10, Y: 0}, End: core.Cell{X: 13, Y: 0}, Kind: core.Window},
	} {
		require.True(t, w.PlaceCut(cut).Success)
	}

	segs := w.Segments()
	require.Len(t, segs, 3)
	assert.Equal(t, [][2]core.Cell{
		rect(4, 0, 10, 1),
		rect(14, 0, 20, 1),
		rect(0, 1, 20, 30),
	}, rects(segs))

	assert.Equal(t, [4]core.Vec3{
		{X: 40}, {X: 100}, {X: 100, Z: 10}, {X: 40, Z: 10},
	}, segs[0].Corners)
	assert.Equal(t, uint(7), segs[0].WallID)

	assert.Equal(t, segs, w.GenerateWallSegments(w.CutsByEdge()))
	assert.NoError(t, w.Audit())
}

func TestGenerateWallSegments_Shapes(t *testing.T) {
	tests := []struct {
		name string
		cuts []core.WallCut
		want [][2]core.Cell
	}{
		{
			name: "no cuts",
			want: [][2]core.Cell{rect(0, 0, 20, 30)},
		},
		{
			name: "door",
			cuts: []core.WallCut{{Start: core.Cell{X: 7}, End: core.Cell{X: 12, Y: 19}, Kind: core.Door}},
			want: [][2]core.Cell{rect(0, 0, 7, 20), rect(13, 0, 20, 20), rect(0, 20, 20, 30)},
		},
		{
			name: "window",
			cuts: []core.WallCut{{Start: core.Cell{X: 6, Y: 9}, End: core.Cell{X: 13, Y: 18}, Kind: core.Window}},
			want: [][2]core.Cell{rect(0, 0, 20, 9), rect(0, 9, 6, 19), rect(14, 9, 20, 19), rect(0, 19, 20, 30)},
		},
		{
			name: "runs merge across bands",
			cuts: []core.WallCut{
				{Start: core.Cell{X: 0}, End: core.Cell{X: 3, Y: 4}},
				{Start: core.Cell{X: 10}, End: core.Cell{X: 13, Y: 9}},
			},
			want: [][2]core.Cell{rect(4, 0, 10, 5), rect(14, 0, 20, 10), rect(0, 5, 10, 10), rect(0, 10, 20, 30)},
		},
		{
			name: "full height cut",
			cuts: []core.WallCut{{Start: core.Cell{X: 0}, End: core.Cell{X: 9, Y: 29}}},
			want: [][2]core.Cell{rect(10, 0, 20, 30)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, _ := newWall(t, 200)
			for _, c := range tt.cuts {
				require.True(t, w.PlaceCut(c).Success)
			}
			assert.Equal(t, tt.want, rects(w.Segments()))
			assert.NoError(t, w.Audit())
		})
	}
}

func TestSegments_OrderedByEdge(t *testing.T) {
	w, _, _ := newWall(t, 400)

	require.True(t, w.PlaceObject(core.Vec3{X: 300, Y: 5, Z: 10}, core.ToolPlaceDoor).Success)
	require.True(t, w.PlaceObject(core.Vec3{X: 100, Y: -5, Z: 120}, core.ToolPlaceWindow).Success)

	segs := w.Segments()
	require.NotEmpty(t, segs)
	for i := 1; i < len(segs); i++ {
		prev, cur := segs[i-1], segs[i]
		if prev.Edge != cur.Edge {
			assert.Less(t, prev.Edge, cur.Edge)
			continue
		}
		if prev.Min.Y == cur.Min.Y {
			assert.Less(t, prev.Min.X, cur.Min.X)
		} else {
			assert.Less(t, prev.Min.Y, cur.Min.Y)
		}
	}
	assert.Equal(t, 0, segs[0].Edge)
	assert.Equal(t, 1, segs[len(segs)-1].Edge)
	assert.NoError(t, w.Audit())
}

func TestRemoveObject(t *testing.T) {
	w, _, _ := newWall(t, 200)

	require.True(t, w.PlaceObject(core.Vec3{X: 105, Y: 5, Z: 50}, core.ToolPlaceDoor).Success)
	require.Len(t, w.Segments(), 3)

	res := w.RemoveObject(core.Vec3{X: 120, Y: 5, Z: 10})
	require.True(t, res.Success)
	assert.Equal(t, core.Door, res.Cut.Kind)
	assert.Equal(t, [][2]core.Cell{rect(0, 0, 20, 30)}, rects(w.Segments()))

	res = w.RemoveObject(core.Vec3{X: 120, Y: 5, Z: 10})
	assert.False(t, res.Success)
	assert.Equal(t, core.ReasonNoCut, res.Reason)
}

func TestRebuild(t *testing.T) {
	w, _, gen := newWall(t, 200)
	require.True(t, w.PlaceObject(core.Vec3{X: 105, Y: 5}, core.ToolPlaceDoor).Success)

	require.NoError(t, w.Rebuild())
	assert.Equal(t, w.Segments(), gen.calls[7])

	gen.err = errors.New("mesh backend gone")
	err := w.Rebuild()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wall 7")
}

func TestSegments_CoverPartialCells(t *testing.T) {
	data := &core.WallSegmentData{ID: 9, Height: 305, Thickness: 20}
	mesher := geo.NewMesher()
	w := New(newDeps(t))
	require.NoError(t, w.Initialize(data, core.AxisX, core.Corners{End: core.Vec3{X: 395}}, mesher))

	segs := w.Segments()
	require.Len(t, segs, 2)
	assert.Equal(t, core.Vec3{X: 200, Z: 305}, segs[0].Corners[2])
	assert.Equal(t, core.Vec3{X: 395}, segs[1].Corners[1])
	assert.Equal(t, core.Vec3{X: 395, Z: 305}, segs[1].Corners[2])

	require.NoError(t, w.Rebuild())
	faces := mesher.Faces(9)
	require.Len(t, faces, 2)
	for _, f := range faces {
		assert.False(t, f.IsEmpty())
	}
	wkt := mesher.WKT(9)
	assert.True(t, strings.HasPrefix(wkt[1], "POLYGON Z"), wkt[1])
	assert.Contains(t, wkt[1], "395 0 305")
}

func TestUpdateWall_FlagsCutsThatNoLongerFit(t *testing.T) {
	w, _, _ := newWall(t, 400)

	door := w.PlaceObject(core.Vec3{X: 355, Y: 5}, core.ToolPlaceDoor)
	require.True(t, door.Success)
	require.Equal(t, core.Cell{X: 12, Y: 0}, door.Cut.Start)
	window := w.PlaceObject(core.Vec3{X: 100, Y: 5, Z: 120}, core.ToolPlaceWindow)
	require.True(t, window.Success)

	shorter := &core.WallSegmentData{ID: 7, Height: 300, Thickness: 20}
	flagged, err := w.UpdateWall(shorter, core.Corners{End: core.Vec3{X: 350}})
	require.NoError(t, err)

	require.Len(t, flagged, 1)
	assert.Equal(t, *door.Cut, flagged[0].Cut)
	assert.Equal(t, core.ReasonInvalidCoordinate, flagged[0].Reason)
	assert.Equal(t, flagged, w.FlaggedCuts())

	assert.Equal(t, []core.WallCut{*window.Cut}, w.Cuts())
	grid, ok := w.Grid(1)
	require.True(t, ok)
	assert.Equal(t, core.Size{W: 15, H: 30}, grid.Size())
	assert.Equal(t, 15*30, grid.FreeCount())

	grid, _ = w.Grid(0)
	state, _ := grid.At(window.Cut.Start)
	assert.Equal(t, core.Window, state)
	assert.NoError(t, w.Audit())

	w.ClearFlaggedCuts()
	assert.Empty(t, w.FlaggedCuts())
}

func TestUpdateWall_EdgeRemovedAndAdded(t *testing.T) {
	w, data, _ := newWall(t, 400)
	door := w.PlaceObject(core.Vec3{X: 300, Y: 5}, core.ToolPlaceDoor)
	require.True(t, door.Success)

	flagged, err := w.UpdateWall(data, core.Corners{End: core.Vec3{X: 150}})
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, core.ReasonInvalidEdge, flagged[0].Reason)
	assert.Equal(t, 1, w.EdgeCount())

	flagged, err = w.UpdateWall(data, core.Corners{End: core.Vec3{X: 600}})
	require.NoError(t, err)
	assert.Empty(t, flagged)
	assert.Equal(t, 3, w.EdgeCount())
	for e := 0; e < 3; e++ {
		_, ok := w.Grid(e)
		assert.True(t, ok, "edge %d has a grid", e)
	}
	assert.Len(t, w.FlaggedCuts(), 1)
}

func TestUpdateWall_LowerWall(t *testing.T) {
	w, _, _ := newWall(t, 200)
	require.True(t, w.PlaceObject(core.Vec3{X: 100, Y: 5}, core.ToolPlaceDoor).Success)
	require.True(t, w.PlaceCut(core.WallCut{Start: core.Cell{X: 0, Y: 25}, End: core.Cell{X: 3, Y: 27}, Kind: core.Window}).Success)

	flagged, err := w.UpdateWall(&core.WallSegmentData{ID: 7, Height: 220, Thickness: 20}, core.Corners{End: core.Vec3{X: 200}})
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, 25, flagged[0].Cut.Start.Y)
	assert.Len(t, w.Cuts(), 1)
}

func TestUpdateWall_Errors(t *testing.T) {
	w := New(newDeps(t))
	_, err := w.UpdateWall(&core.WallSegmentData{}, core.Corners{})
	assert.ErrorIs(t, err, core.ErrNotInitialized)

	w, _, _ = newWall(t, 200)
	_, err = w.UpdateWall(nil, core.Corners{})
	assert.ErrorIs(t, err, core.ErrMissingDependency)
}

func TestContainedIDs(t *testing.T) {
	w, _, _ := newWall(t, 200)
	ids := []uint64{4, 6}
	w.SetContainedIDs(ids)
	ids[0] = 99

	got := w.GetContainedIDs()
	assert.Equal(t, []uint64{4, 6}, got)
	got[1] = 42
	assert.Equal(t, []uint64{4, 6}, w.GetContainedIDs())
}

func TestPlaceObject_Concurrent(t *testing.T) {
	w, _, _ := newWall(t, 400)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tool := core.ToolPlaceDoor
			if i%2 == 1 {
				tool = core.ToolPlaceWindow
			}
			w.PlaceObject(core.Vec3{X: float64(i*10 + 5), Y: 5, Z: 100}, tool)
		}(i)
	}
	wg.Wait()

	cuts := w.Cuts()
	require.NotEmpty(t, cuts)
	for i := range cuts {
		for j := i + 1; j < len(cuts); j++ {
			assert.False(t, cuts[i].Overlaps(cuts[j]))
		}
	}
	assert.NoError(t, w.Audit())
}
