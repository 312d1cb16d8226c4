package floor

import (
	"math"
	"slices"
	"sync"

	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// LotCalculator describes one lot's macro tile grid: its world origin, size
// in tiles and tile size. Height is not part of it, so one calculator serves
// every floor of the lot.
type LotCalculator struct {
	Key      string    `json:"key" mapstructure:"key"`
	Origin   core.Vec3 `json:"origin" mapstructure:"origin"`
	Tiles    core.Size `json:"tiles" mapstructure:"tiles"`
	TileSize float64   `json:"tileSize" mapstructure:"tileSize"`
}

// WorldToTile returns the tile under p, rounding the given axis to the nearest
// grid line instead of flooring it. ok is false outside the lot.
func (c LotCalculator) WorldToTile(p core.Vec3) (core.Cell, bool) {
	return c.tile(p, -1)
}

// EdgeTile returns the tile whose lower (AxisX) or left (AxisY) edge is the
// grid line nearest to p.
func (c LotCalculator) EdgeTile(p core.Vec3, axis core.Axis) (core.Cell, bool) {
	return c.tile(p, int(axis))
}

func (c LotCalculator) tile(p core.Vec3, roundAxis int) (core.Cell, bool) {
	if c.TileSize <= 0 {
		return core.Cell{}, false
	}
	fx := (p.X - c.Origin.X) / c.TileSize
	fy := (p.Y - c.Origin.Y) / c.TileSize
	x, y := math.Floor(fx+1e-9), math.Floor(fy+1e-9)
	switch roundAxis {
	case int(core.AxisX):
		y = math.Round(fy)
	case int(core.AxisY):
		x = math.Round(fx)
	}
	cell := core.Cell{X: int(x), Y: int(y)}
	return cell, c.Contains(cell)
}

// Contains reports whether the tile, or the edge line on its far side, is in the lot.
func (c LotCalculator) Contains(t core.Cell) bool {
	return t.X >= 0 && t.Y >= 0 && t.X <= c.Tiles.W && t.Y <= c.Tiles.H
}

// EdgeID identifies the lower or left edge of a tile.
func (c LotCalculator) EdgeID(t core.Cell, axis core.Axis) uint64 {
	return uint64((t.Y*(c.Tiles.W+1)+t.X)*2 + int(axis))
}

// Registry holds the lot calculators known to the process.
type Registry struct {
	mu   sync.RWMutex
	lots map[string]LotCalculator
}

func NewRegistry(lots ...LotCalculator) *Registry {
	r := &Registry{lots: make(map[string]LotCalculator, len(lots))}
	for _, l := range lots {
		r.lots[l.Key] = l
	}
	return r
}

func (r *Registry) Register(l LotCalculator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lots[l.Key] = l
}

func (r *Registry) Lookup(key string) (LotCalculator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.lots[key]
	return l, ok
}

// Keys returns the registered lot keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.lots))
	for k := range r.lots {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
