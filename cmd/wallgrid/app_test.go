package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamebuildmode/wallgrid/internal/api"
	"github.com/gamebuildmode/wallgrid/internal/config"
	"github.com/gamebuildmode/wallgrid/internal/coords"
	"github.com/gamebuildmode/wallgrid/internal/slicer"
	"github.com/gamebuildmode/wallgrid/internal/storage/memory"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

const testScript = `
# one wall, one door
:FLOOR:INIT: 0 lot 300
:WALL:ADD: 0 north x 0,200,0 400,200,0 300 20
:CLICK: 0 PlaceDoor 105,205,50
:CLICK: 0 PlaceDoor 125,195,0
:SEGMENTS: 0 north
:CLICK: 0 Paint 1,2
:CLICK: 0 Remove nowhere
`

func newTestApp(t *testing.T, wkt bool) (*app, *memory.Backend) {
	t.Helper()
	backend := memory.New(config.MemoryConfig{})
	require.NoError(t, backend.Init())

	a, err := newApp(appConfig{
		Grid:     coords.DefaultSettings(),
		Catalog:  slicer.DefaultCatalog(),
		Lots:     []config.LotConfig{{Key: "lot", Tiles: core.Size{W: 10, H: 10}, TileSize: 100}},
		Recorder: backend,
		WKT:      wkt,
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a, backend
}

func readReplies(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	var replies []map[string]any
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		var r map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r), sc.Text())
		replies = append(replies, r)
	}
	return replies
}

func TestRunScript(t *testing.T) {
	a, backend := newTestApp(t, false)

	var out bytes.Buffer
	failed, err := a.runScript(strings.NewReader(testScript), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	replies := readReplies(t, &out)
	require.Len(t, replies, 7)

	assert.Equal(t, float64(3), replies[0]["line"])
	assert.Equal(t, ":FLOOR:INIT:", replies[0]["command"])
	assert.Equal(t, "ok", replies[0]["result"])

	placed := replies[2]["result"].(map[string]any)
	assert.Equal(t, true, placed["success"])

	rejected := replies[3]["result"].(map[string]any)
	assert.Equal(t, false, rejected["success"])

	segs := replies[4]["result"].([]any)
	assert.Len(t, segs, 4)
	assert.NotContains(t, replies[4], "faces")

	// unknown tools are ignored rather than failing the command
	ignored := replies[5]["result"].(map[string]any)
	assert.Equal(t, false, ignored["success"])
	assert.Equal(t, "unsupported tool", ignored["reason"])
	assert.NotContains(t, replies[5], "error")

	assert.Equal(t, ":CLICK:", replies[6]["command"])
	assert.NotEmpty(t, replies[6]["error"])

	keys := backend.Walls()
	require.Len(t, keys, 1)
	assert.Equal(t, core.WallKey{Lot: "lot", Floor: 0, Wall: 1}, keys[0])
	w, ok := backend.Wall(keys[0])
	require.True(t, ok)
	assert.Len(t, w.Cuts, 1)
	assert.Len(t, w.Segments, 4)
}

func TestRunScript_WKT(t *testing.T) {
	a, _ := newTestApp(t, true)

	var out bytes.Buffer
	_, err := a.runScript(strings.NewReader(testScript), &out)
	require.NoError(t, err)

	replies := readReplies(t, &out)
	require.Len(t, replies, 7)
	faces := replies[4]["faces"].([]any)
	require.Len(t, faces, 4)
	assert.True(t, strings.HasPrefix(faces[0].(string), "POLYGON Z"))
}

func TestStatusCommand(t *testing.T) {
	a, _ := newTestApp(t, false)

	var out bytes.Buffer
	_, err := a.runScript(strings.NewReader(testScript+":STATUS:\n"), &out)
	require.NoError(t, err)

	replies := readReplies(t, &out)
	require.Len(t, replies, 8)
	st := replies[7]["result"].(map[string]any)
	assert.Equal(t, float64(1), st["floors"])
	assert.Equal(t, float64(1), st["walls"])
	assert.Equal(t, float64(1), st["cuts"])
}

func TestPublish(t *testing.T) {
	uploads := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/sessions/add" {
			uploads <- r.FormValue("walls")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	publish(config.APIConfig{URL: server.URL}, path, api.SessionMeta{Walls: 2}, zerolog.Nop())
	assert.Equal(t, "2", <-uploads)

	// disabled or nothing exported
	publish(config.APIConfig{}, path, api.SessionMeta{}, zerolog.Nop())
	publish(config.APIConfig{URL: server.URL}, "", api.SessionMeta{}, zerolog.Nop())
	assert.Empty(t, uploads)
}

func TestBuildLots(t *testing.T) {
	reg, err := buildLots([]config.LotConfig{
		{Key: "a", Tiles: core.Size{W: 4, H: 4}, TileSize: 100, Origin: core.Vec3{X: 5, Y: 6, Z: 7}},
		{Key: "b", Tiles: core.Size{W: 4, H: 4}, TileSize: 100, Geo: &config.GeoAnchor{
			AnchorLon: 13.4, AnchorLat: 52.5, Lon: 13.4, Lat: 52.5,
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, reg.Keys())

	a, ok := reg.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, core.Vec3{X: 5, Y: 6, Z: 7}, a.Origin)

	b, ok := reg.Lookup("b")
	require.True(t, ok)
	assert.InDelta(t, 0, b.Origin.X, 1e-6)
	assert.InDelta(t, 0, b.Origin.Y, 1e-6)
}

func TestBuildLots_Invalid(t *testing.T) {
	_, err := buildLots([]config.LotConfig{{Tiles: core.Size{W: 1, H: 1}, TileSize: 1}})
	assert.Error(t, err)

	_, err = buildLots([]config.LotConfig{{Key: "a", TileSize: 100}})
	assert.Error(t, err)
}

func TestRun_ScriptFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	cfg := `{
		"logsDir": "` + filepath.ToSlash(filepath.Join(dir, "logs")) + `",
		"lots": [{"key": "lot", "tiles": {"w": 10, "h": 10}, "tileSize": 100}],
		"storage": {"type": "memory", "memory": {"outputDir": ""}}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o644))
	script := filepath.Join(dir, "build.txt")
	require.NoError(t, os.WriteFile(script, []byte(testScript), 0o644))

	var out bytes.Buffer
	failed, err := run(dir, script, false, false, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	assert.Len(t, readReplies(t, &out), 7)
}

func TestRun_Resume(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	cfg := `{
		"logsDir": "` + filepath.ToSlash(filepath.Join(dir, "logs")) + `",
		"lots": [{"key": "lot", "tiles": {"w": 10, "h": 10}, "tileSize": 100}],
		"storage": {"type": "gorm"},
		"db": {"driver": "sqlite", "sqlitePath": "` + filepath.ToSlash(filepath.Join(dir, "walls.db")) + `"}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o644))
	build := filepath.Join(dir, "build.txt")
	require.NoError(t, os.WriteFile(build, []byte(testScript), 0o644))
	_, err := run(dir, build, false, false, &bytes.Buffer{})
	require.NoError(t, err)

	viper.Reset()
	check := filepath.Join(dir, "check.txt")
	require.NoError(t, os.WriteFile(check, []byte(":SEGMENTS: 0 1\n:STATUS:\n"), 0o644))
	var out bytes.Buffer
	failed, err := run(dir, check, false, true, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, failed)

	replies := readReplies(t, &out)
	require.Len(t, replies, 2)
	assert.NotEmpty(t, replies[0]["result"])
	st := replies[1]["result"].(map[string]any)
	assert.Equal(t, float64(1), st["walls"])
	assert.Equal(t, float64(1), st["cuts"])
}

func TestRun_ResumeUnsupported(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	cfg := `{
		"logsDir": "` + filepath.ToSlash(filepath.Join(dir, "logs")) + `",
		"storage": {"type": "memory", "memory": {"outputDir": ""}}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o644))
	script := filepath.Join(dir, "build.txt")
	require.NoError(t, os.WriteFile(script, []byte(""), 0o644))

	_, err := run(dir, script, false, true, &bytes.Buffer{})
	assert.ErrorContains(t, err, "cannot be resumed")
}

func TestRun_MissingScript(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	cfg := `{"logsDir": "` + filepath.ToSlash(filepath.Join(dir, "logs")) + `"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o644))

	_, err := run(dir, filepath.Join(dir, "nope.txt"), false, false, &bytes.Buffer{})
	assert.ErrorContains(t, err, "opening script")
}
