package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamebuildmode/wallgrid/pkg/core"
)

func newTestParser() *Parser {
	return NewParser(nil)
}

func TestNewParser(t *testing.T) {
	require.NotNil(t, newTestParser())
}

// Wall IDs and floor indexes may arrive as "2" or "2.0".
func TestWholeNumbers(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"7", 7, false},
		{"7.00", 7, false},
		{"-1", -1, false},
		{"-2.0", -2, false},
		{"2.5", 0, true},
		{"", 0, true},
		{"ground", 0, true},
	}
	for _, tt := range tests {
		got, err := parseIntFromFloat(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	id, err := parseUintFromFloat("44.0")
	require.NoError(t, err)
	assert.Equal(t, uint64(44), id)
	_, err = parseUintFromFloat("-1")
	assert.Error(t, err)
	_, err = parseUintFromFloat("0.5")
	assert.Error(t, err)
}

func TestParseFloor(t *testing.T) {
	f, err := parseFloor("-1")
	require.NoError(t, err)
	assert.Equal(t, -1, f)

	_, err = parseFloor("basement")
	assert.ErrorContains(t, err, "floor index")
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("start", "10,20.5,-3")
	require.NoError(t, err)
	assert.Equal(t, core.Vec3{X: 10, Y: 20.5, Z: -3}, p)

	flat, err := parsePoint("start", "10,20")
	require.NoError(t, err)
	assert.Equal(t, core.Vec3{X: 10, Y: 20}, flat)

	_, err = parsePoint("end", "10")
	assert.ErrorContains(t, err, "error parsing end")
}

func TestParsePositive(t *testing.T) {
	v, err := parsePositive("height", "300")
	require.NoError(t, err)
	assert.Equal(t, 300.0, v)

	for _, in := range []string{"0", "-20", "tall", "NaN", "Inf", "+Inf", "1e18"} {
		_, err := parsePositive("height", in)
		assert.Error(t, err, in)
	}
}

func TestCleanAndNeed(t *testing.T) {
	assert.Equal(t, []string{"north", `say "hi" now`}, clean([]string{` "north" `, `"say ""hi"" now"`}))

	assert.NoError(t, need([]string{"a", "b"}, 2))
	assert.ErrorContains(t, need([]string{"a"}, 2), "got 1, need 2")
}
