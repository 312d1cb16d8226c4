package handlers

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/gamebuildmode/wallgrid/internal/parser"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// Archive reads back the walls a storage backend recorded.
type Archive interface {
	LoadWalls(ctx context.Context, lot string) ([]core.WallRecord, error)
	Cuts(ctx context.Context, key core.WallKey) ([]core.WallCut, error)
	FlaggedCuts(ctx context.Context, key core.WallKey) ([]core.FlaggedCut, error)
	RemovedCuts(ctx context.Context, key core.WallKey) (int64, error)
	Segments(ctx context.Context, key core.WallKey) ([]core.ProcessedWallSegment, bool, error)
}

// RestoreSummary counts what a restore brought back.
type RestoreSummary struct {
	Walls   int
	Cuts    int
	Flagged int
	Removed int64
	// Stale counts walls whose recorded segments differ from the restored ones.
	Stale int
}

// Restore rebuilds every archived wall of a lot. Missing floors are
// initialized with floorHeight. Restored walls are named by their ID.
func (s *Service) Restore(ctx context.Context, archive Archive, lot string, floorHeight float64) (RestoreSummary, error) {
	var sum RestoreSummary
	recs, err := archive.LoadWalls(ctx, lot)
	if err != nil {
		return sum, err
	}

	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		f, ok := s.deps.Building.Floor(rec.Floor)
		if !ok || !f.Initialized() {
			if err := s.InitFloor(parser.FloorInit{Floor: rec.Floor, Lot: lot, FloorHeight: floorHeight}); err != nil {
				return sum, err
			}
			f, _ = s.deps.Building.Floor(rec.Floor)
		}

		key := rec.Key()
		cuts, err := archive.Cuts(ctx, key)
		if err != nil {
			return sum, fmt.Errorf("wall %d: %w", key.Wall, err)
		}
		prior, err := archive.FlaggedCuts(ctx, key)
		if err != nil {
			return sum, fmt.Errorf("wall %d: %w", key.Wall, err)
		}
		removed, err := archive.RemovedCuts(ctx, key)
		if err != nil {
			return sum, fmt.Errorf("wall %d: %w", key.Wall, err)
		}

		flagged, err := f.RestoreWall(rec, cuts)
		if err != nil {
			return sum, fmt.Errorf("restoring wall %d: %w", key.Wall, err)
		}
		if len(prior) > 0 {
			s.log.Warn("wall has flagged cuts", "floor", rec.Floor, "wall", key.Wall, "count", len(prior))
		}

		name := nameKey(rec.Floor, strconv.FormatUint(uint64(key.Wall), 10))
		if _, taken := s.deps.Names.Get(name); taken {
			s.log.Warn("restored wall left unnamed", "floor", rec.Floor, "wall", key.Wall)
		} else {
			s.deps.Names.Set(name, key.Wall)
		}

		stored, ok, err := archive.Segments(ctx, key)
		if err != nil {
			return sum, fmt.Errorf("wall %d: %w", key.Wall, err)
		}
		if ok {
			current, err := f.Segments(key.Wall)
			if err != nil {
				return sum, err
			}
			if !slices.Equal(stored, current) {
				sum.Stale++
			}
		}

		sum.Walls++
		sum.Cuts += len(cuts) - len(flagged)
		sum.Flagged += len(flagged)
		sum.Removed += removed
	}
	s.log.Info("lot restored", "lot", lot, "walls", sum.Walls, "cuts", sum.Cuts, "flagged", sum.Flagged, "stale", sum.Stale)
	return sum, nil
}
