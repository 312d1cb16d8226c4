// internal/storage/memory/memory_test.go
package memory

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamebuildmode/wallgrid/internal/config"
	"github.com/gamebuildmode/wallgrid/internal/floor"
	v1 "github.com/gamebuildmode/wallgrid/internal/storage/memory/export/v1"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

var _ floor.Recorder = (*Backend)(nil)

var (
	testKey = core.WallKey{Lot: "neighbor1-lot1", Floor: 0, Wall: 44}
	door    = core.WallCut{Edge: 0, Start: core.Cell{X: 7}, End: core.Cell{X: 12, Y: 19}, Kind: core.Door, HalfSize: core.Size{W: 3, H: 10}}
	window  = core.WallCut{Edge: 1, Start: core.Cell{X: 6, Y: 9}, End: core.Cell{X: 13, Y: 18}, Kind: core.Window, HalfSize: core.Size{W: 4, H: 5}}
)

func testRecord() core.WallRecord {
	return core.WallRecord{
		Lot:     testKey.Lot,
		Floor:   testKey.Floor,
		Data:    core.WallSegmentData{ID: testKey.Wall, Height: 300, Thickness: 20},
		Axis:    core.AxisX,
		Corners: core.Corners{Start: core.Vec3{Y: 200}, End: core.Vec3{X: 400, Y: 200}},
	}
}

func newTestBackend(t *testing.T, cfg config.MemoryConfig) *Backend {
	t.Helper()
	b := New(cfg)
	require.NoError(t, b.Init())
	return b
}

func TestCutLifecycle(t *testing.T) {
	b := newTestBackend(t, config.MemoryConfig{})
	ctx := context.Background()

	require.NoError(t, b.SaveWall(ctx, testRecord()))
	require.NoError(t, b.RecordCut(ctx, testKey, door))
	require.NoError(t, b.RecordCut(ctx, testKey, window))
	require.NoError(t, b.DeleteCut(ctx, testKey, door))

	d, ok := b.Wall(testKey)
	require.True(t, ok)
	require.NotNil(t, d.Record)
	assert.Equal(t, 400.0, d.Record.Corners.End.X)
	assert.Equal(t, []core.WallCut{window}, d.Cuts)
	assert.Equal(t, []core.WallCut{door}, d.Removed)

	require.NoError(t, b.FlagCut(ctx, testKey, core.FlaggedCut{Cut: window, Reason: core.ReasonInvalidCoordinate}))
	d, _ = b.Wall(testKey)
	assert.Empty(t, d.Cuts)
	require.Len(t, d.Flagged, 1)
	assert.Equal(t, core.ReasonInvalidCoordinate, d.Flagged[0].Reason)
}

func TestDeleteWallKeepsHistory(t *testing.T) {
	b := newTestBackend(t, config.MemoryConfig{})
	ctx := context.Background()

	require.NoError(t, b.SaveWall(ctx, testRecord()))
	require.NoError(t, b.RecordCut(ctx, testKey, door))
	require.NoError(t, b.RecordSegments(ctx, testKey, []core.ProcessedWallSegment{{WallID: 44, Max: core.Cell{X: 7, Y: 30}}}))
	require.NoError(t, b.DeleteWall(ctx, testKey))

	d, ok := b.Wall(testKey)
	require.True(t, ok)
	assert.True(t, d.Deleted)
	assert.Empty(t, d.Cuts)
	assert.Empty(t, d.Segments)
	assert.Equal(t, []core.WallCut{door}, d.Removed)

	require.NoError(t, b.SaveWall(ctx, testRecord()))
	d, _ = b.Wall(testKey)
	assert.False(t, d.Deleted)
}

func TestDeleteUnknownCutKeepsHistory(t *testing.T) {
	b := newTestBackend(t, config.MemoryConfig{})
	require.NoError(t, b.DeleteCut(context.Background(), testKey, door))

	d, ok := b.Wall(testKey)
	require.True(t, ok)
	assert.Nil(t, d.Record)
	assert.Empty(t, d.Cuts)
	assert.Len(t, d.Removed, 1)
}

func TestRecordSegmentsReplaces(t *testing.T) {
	b := newTestBackend(t, config.MemoryConfig{})
	ctx := context.Background()
	segs := []core.ProcessedWallSegment{{WallID: 44, Edge: 0, Max: core.Cell{X: 7, Y: 30}}}

	require.NoError(t, b.RecordSegments(ctx, testKey, segs))
	require.NoError(t, b.RecordSegments(ctx, testKey, segs[:1]))
	segs[0].Edge = 5

	d, _ := b.Wall(testKey)
	require.Len(t, d.Segments, 1)
	assert.Equal(t, 0, d.Segments[0].Edge, "stored segments must not alias the caller's slice")
}

func TestWallsOrderedAndInitResets(t *testing.T) {
	b := newTestBackend(t, config.MemoryConfig{})
	ctx := context.Background()
	keys := []core.WallKey{
		{Lot: "b", Wall: 1},
		{Lot: "a", Floor: 1, Wall: 1},
		{Lot: "a", Wall: 7},
	}
	for _, k := range keys {
		require.NoError(t, b.RecordCut(ctx, k, door))
	}

	assert.Equal(t, []core.WallKey{keys[2], keys[1], keys[0]}, b.Walls())

	require.NoError(t, b.Init())
	assert.Empty(t, b.Walls())
}

func TestConcurrentRecording(t *testing.T) {
	b := newTestBackend(t, config.MemoryConfig{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k := core.WallKey{Lot: "lot", Wall: uint(i % 4)}
			_ = b.RecordCut(ctx, k, door)
			_ = b.RecordSegments(ctx, k, nil)
		}(i)
	}
	wg.Wait()

	total := 0
	for _, k := range b.Walls() {
		d, _ := b.Wall(k)
		total += len(d.Cuts)
	}
	assert.Equal(t, 20, total)
}

func TestCloseWithoutOutputDir(t *testing.T) {
	b := newTestBackend(t, config.MemoryConfig{})
	require.NoError(t, b.Close())
	assert.Empty(t, b.ExportedFilePath())
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	b := newTestBackend(t, config.MemoryConfig{OutputDir: dir, Session: "morning build"})
	ctx := context.Background()
	require.NoError(t, b.SaveWall(ctx, testRecord()))
	require.NoError(t, b.RecordCut(ctx, testKey, door))

	require.NoError(t, b.Close())
	path := b.ExportedFilePath()
	require.NotEmpty(t, path)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "morning_build_"))
	assert.True(t, strings.HasSuffix(path, ".json"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var export v1.Export
	require.NoError(t, json.Unmarshal(raw, &export))
	assert.Equal(t, v1.Version, export.Version)
	require.Len(t, export.Walls, 1)
	assert.Equal(t, uint(44), export.Walls[0].ID)
	assert.Len(t, export.Walls[0].Cuts, 1)
}

func TestExportGzip(t *testing.T) {
	dir := t.TempDir()
	b := newTestBackend(t, config.MemoryConfig{OutputDir: filepath.Join(dir, "nested"), CompressOutput: true})
	require.NoError(t, b.RecordCut(context.Background(), testKey, window))
	require.NoError(t, b.Close())

	path := b.ExportedFilePath()
	assert.True(t, strings.HasPrefix(filepath.Base(path), "wallgrid_"))
	require.True(t, strings.HasSuffix(path, ".json.gz"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var export v1.Export
	require.NoError(t, json.NewDecoder(gz).Decode(&export))
	require.Len(t, export.Walls, 1)
	assert.Equal(t, "window", export.Walls[0].Cuts[0][5])
}
