package geo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamebuildmode/wallgrid/pkg/core"
)

func TestMesher(t *testing.T) {
	m := NewMesher()
	seg := core.ProcessedWallSegment{
		WallID: 4,
		Max:    core.Cell{X: 7, Y: 30},
		Corners: [4]core.Vec3{
			{X: 0, Y: 200, Z: 0},
			{X: 70, Y: 200, Z: 0},
			{X: 70, Y: 200, Z: 300},
			{X: 0, Y: 200, Z: 300},
		},
	}

	require.NoError(t, m.Generate(4, []core.ProcessedWallSegment{seg, seg}))
	require.NoError(t, m.Generate(2, []core.ProcessedWallSegment{seg}))
	assert.Equal(t, []uint{2, 4}, m.Walls())
	assert.Len(t, m.Faces(4), 2)

	wkt := m.WKT(2)
	require.Len(t, wkt, 1)
	assert.True(t, strings.HasPrefix(wkt[0], "POLYGON Z"), wkt[0])

	require.NoError(t, m.Generate(4, nil))
	assert.Equal(t, []uint{2}, m.Walls())
	assert.Empty(t, m.Faces(4))
}
