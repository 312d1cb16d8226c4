package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWallCut_SizeAndContains(t *testing.T) {
	cut := WallCut{Start: Cell{X: 5, Y: 0}, End: Cell{X: 10, Y: 19}}

	assert.Equal(t, Size{W: 6, H: 20}, cut.Size())
	assert.True(t, cut.Contains(Cell{X: 5, Y: 0}))
	assert.True(t, cut.Contains(Cell{X: 10, Y: 19}))
	assert.False(t, cut.Contains(Cell{X: 11, Y: 0}))
	assert.False(t, cut.Contains(Cell{X: 4, Y: 3}))
}

func TestWallCut_Overlaps(t *testing.T) {
	a := WallCut{Edge: 0, Start: Cell{X: 5, Y: 0}, End: Cell{X: 10, Y: 0}}

	tests := []struct {
		name string
		b    WallCut
		want bool
	}{
		{"shared cells", WallCut{Edge: 0, Start: Cell{X: 8, Y: 0}, End: Cell{X: 13, Y: 0}}, true},
		{"adjacent", WallCut{Edge: 0, Start: Cell{X: 11, Y: 0}, End: Cell{X: 13, Y: 0}}, false},
		{"other edge", WallCut{Edge: 1, Start: Cell{X: 5, Y: 0}, End: Cell{X: 10, Y: 0}}, false},
		{"above", WallCut{Edge: 0, Start: Cell{X: 5, Y: 1}, End: Cell{X: 10, Y: 2}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(a))
		})
	}
}

func TestPlacementResult_Err(t *testing.T) {
	ok := PlacementResult{Success: true}
	assert.NoError(t, ok.Err())

	failed := Failed(2, Exterior, ReasonOverlap)
	assert.True(t, errors.Is(failed.Err(), ErrOverlap))
	assert.Equal(t, 2, failed.Edge)
	assert.Equal(t, Exterior, failed.Side)
	assert.Nil(t, failed.Cut)
}

func TestReason_MarshalText(t *testing.T) {
	b, err := ReasonInvalidCoordinate.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "invalid coordinate", string(b))
	assert.Equal(t, "none", ReasonNone.String())

	var r Reason
	require.NoError(t, r.UnmarshalText(b))
	assert.Equal(t, ReasonInvalidCoordinate, r)
	require.NoError(t, r.UnmarshalText([]byte("none")))
	assert.Equal(t, ReasonNone, r)
	assert.Error(t, r.UnmarshalText([]byte("sideways")))
}

func TestParseTool(t *testing.T) {
	tool, err := ParseTool("placedoor")
	require.NoError(t, err)
	assert.Equal(t, ToolPlaceDoor, tool)

	tool, err = ParseTool("Paint")
	assert.Error(t, err)
	assert.Equal(t, ToolUnknown, tool)
	assert.Equal(t, "Unknown", tool.String())

	assert.Equal(t, "Tool(99)", Tool(99).String())
}

func TestAxis(t *testing.T) {
	axis, err := ParseAxis(" Y ")
	require.NoError(t, err)
	assert.Equal(t, AxisY, axis)
	assert.Equal(t, Vec3{X: -1}, axis.Normal())
	assert.Equal(t, Vec3{Y: 1}, AxisX.Normal())

	_, err = ParseAxis("z")
	assert.Error(t, err)
}
