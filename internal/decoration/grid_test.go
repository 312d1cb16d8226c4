package decoration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamebuildmode/wallgrid/pkg/core"
)

func mustNew(t *testing.T, size core.Size) *Grid {
	t.Helper()
	g, err := New(size)
	require.NoError(t, err)
	return g
}

func TestNew_AllFree(t *testing.T) {
	g := mustNew(t, core.Size{W: 20, H: 30})

	assert.Equal(t, core.Size{W: 20, H: 30}, g.Size())
	assert.Equal(t, 600, g.FreeCount())

	empty := mustNew(t, core.Size{W: -3, H: 4})
	assert.Equal(t, core.Size{W: 0, H: 4}, empty.Size())
	assert.Equal(t, 0, empty.FreeCount())
}

func TestNew_RefusesOversizedGrid(t *testing.T) {
	for _, size := range []core.Size{
		{W: 20, H: 1e17},
		{W: MaxCells + 1, H: 1},
		{W: 4096, H: 4096},
	} {
		g, err := New(size)
		assert.ErrorIs(t, err, core.ErrInvalidCoordinate, "%+v", size)
		assert.Nil(t, g)
	}
}

func TestIsValidCoordinate_Bounds(t *testing.T) {
	g := mustNew(t, core.Size{W: 20, H: 3})

	for y := -2; y < 5; y++ {
		for x := -2; x < 23; x++ {
			want := x >= 0 && x < 20 && y >= 0 && y < 3
			assert.Equal(t, want, g.IsValidCoordinate(core.Cell{X: x, Y: y}), "cell (%d,%d)", x, y)
		}
	}
}

func TestIsAreaFree(t *testing.T) {
	g := mustNew(t, core.Size{W: 20, H: 3})
	g.MarkAreaOccupied(core.Exterior, core.Cell{X: 5, Y: 0}, core.Size{W: 6, H: 1}, core.Door)

	tests := []struct {
		name  string
		start core.Cell
		size  core.Size
		want  bool
	}{
		{"before occupied", core.Cell{X: 0, Y: 0}, core.Size{W: 5, H: 1}, true},
		{"overlapping", core.Cell{X: 8, Y: 0}, core.Size{W: 6, H: 1}, false},
		{"above occupied", core.Cell{X: 5, Y: 1}, core.Size{W: 6, H: 2}, true},
		{"past width", core.Cell{X: 18, Y: 0}, core.Size{W: 6, H: 1}, false},
		{"negative start", core.Cell{X: -1, Y: 0}, core.Size{W: 2, H: 1}, false},
		{"zero size", core.Cell{X: 0, Y: 0}, core.Size{W: 0, H: 1}, false},
		{"whole grid", core.Cell{X: 0, Y: 0}, core.Size{W: 20, H: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.IsAreaFree(tt.start, tt.size))
			// repeated queries without mutation agree
			assert.Equal(t, tt.want, g.IsAreaFree(tt.start, tt.size))
		})
	}
}

func TestMarkAreaOccupied(t *testing.T) {
	g := mustNew(t, core.Size{W: 10, H: 4})
	g.MarkAreaOccupied(core.Interior, core.Cell{X: 2, Y: 1}, core.Size{W: 3, H: 2}, core.Window)

	state, ok := g.At(core.Cell{X: 4, Y: 2})
	require.True(t, ok)
	assert.Equal(t, core.Window, state)

	side, ok := g.SideAt(core.Cell{X: 2, Y: 1})
	require.True(t, ok)
	assert.Equal(t, core.Interior, side)

	state, _ = g.At(core.Cell{X: 5, Y: 2})
	assert.Equal(t, core.Free, state)
	assert.Equal(t, 40-6, g.FreeCount())

	_, ok = g.At(core.Cell{X: 10, Y: 0})
	assert.False(t, ok)
}

func TestMarkAreaOccupied_SkipsOutOfBounds(t *testing.T) {
	g := mustNew(t, core.Size{W: 4, H: 2})
	g.MarkAreaOccupied(core.Exterior, core.Cell{X: 3, Y: 0}, core.Size{W: 3, H: 1}, core.Door)

	// the write must not wrap onto the next row
	state, _ := g.At(core.Cell{X: 0, Y: 1})
	assert.Equal(t, core.Free, state)
	assert.Equal(t, 7, g.FreeCount())
}

func TestClearArea(t *testing.T) {
	g := mustNew(t, core.Size{W: 10, H: 2})
	before := g.Snapshot()

	g.MarkAreaOccupied(core.Exterior, core.Cell{X: 1, Y: 0}, core.Size{W: 4, H: 2}, core.Door)
	assert.NotEqual(t, before, g.Snapshot())

	g.ClearArea(core.Cell{X: 1, Y: 0}, core.Size{W: 4, H: 2})
	assert.Equal(t, before, g.Snapshot())
}

func TestEdgesAreIndependent(t *testing.T) {
	a := mustNew(t, core.Size{W: 20, H: 3})
	b := mustNew(t, core.Size{W: 20, H: 3})
	snapshot := b.Snapshot()

	a.MarkAreaOccupied(core.Exterior, core.Cell{}, core.Size{W: 20, H: 3}, core.Occupied)

	assert.Equal(t, snapshot, b.Snapshot())
	assert.Equal(t, 0, a.FreeCount())
}
