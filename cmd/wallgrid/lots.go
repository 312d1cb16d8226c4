package main

import (
	"errors"
	"fmt"

	"github.com/gamebuildmode/wallgrid/internal/config"
	"github.com/gamebuildmode/wallgrid/internal/floor"
	"github.com/gamebuildmode/wallgrid/internal/geo"
)

// buildLots registers the configured lots. A geo anchor overrides the
// configured origin on X and Y.
func buildLots(cfgs []config.LotConfig) (*floor.Registry, error) {
	reg := floor.NewRegistry()
	for i, c := range cfgs {
		if c.Key == "" {
			return nil, fmt.Errorf("lot %d: %w", i, errors.New("missing key"))
		}
		if c.TileSize <= 0 || c.Tiles.W <= 0 || c.Tiles.H <= 0 {
			return nil, fmt.Errorf("lot %s: tiles and tile size must be positive", c.Key)
		}
		origin := c.Origin
		if g := c.Geo; g != nil {
			off := geo.LotOffsetFromGeographic(g.AnchorLon, g.AnchorLat, g.Lon, g.Lat)
			origin.X, origin.Y = off.X, off.Y
		}
		reg.Register(floor.LotCalculator{
			Key:      c.Key,
			Origin:   origin,
			Tiles:    c.Tiles,
			TileSize: c.TileSize,
		})
	}
	return reg, nil
}
