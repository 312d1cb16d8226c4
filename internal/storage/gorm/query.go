package gormstorage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gamebuildmode/wallgrid/internal/model"
	"github.com/gamebuildmode/wallgrid/internal/model/convert"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// Queries read flushed rows only; call Flush first to include queued edits.

// LoadWalls returns the walls of a lot ordered by floor and wall ID.
func (b *Backend) LoadWalls(ctx context.Context, lot string) ([]core.WallRecord, error) {
	var rows []model.Wall
	err := b.db.WithContext(ctx).
		Where("lot = ?", lot).
		Order("floor, wall_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading walls of %s: %w", lot, err)
	}

	out := make([]core.WallRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := convert.WallToCore(r)
		if err != nil {
			return nil, fmt.Errorf("wall %d: %w", r.WallID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Cuts returns the live cuts of a wall in placement order.
func (b *Backend) Cuts(ctx context.Context, key core.WallKey) ([]core.WallCut, error) {
	var rows []model.Cut
	if err := whereKey(b.db.WithContext(ctx), key).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading cuts: %w", err)
	}

	out := make([]core.WallCut, 0, len(rows))
	for _, r := range rows {
		c, err := convert.CutToCore(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// RemovedCuts counts the soft-deleted cuts of a wall.
func (b *Backend) RemovedCuts(ctx context.Context, key core.WallKey) (int64, error) {
	var n int64
	err := whereKey(b.db.WithContext(ctx).Unscoped().Model(&model.Cut{}), key).
		Where("deleted_at IS NOT NULL").
		Count(&n).Error
	return n, err
}

// FlaggedCuts returns the flags raised against a wall.
func (b *Backend) FlaggedCuts(ctx context.Context, key core.WallKey) ([]core.FlaggedCut, error) {
	var rows []model.FlaggedCut
	if err := whereKey(b.db.WithContext(ctx), key).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading flagged cuts: %w", err)
	}

	out := make([]core.FlaggedCut, 0, len(rows))
	for _, r := range rows {
		f, err := convert.FlaggedCutToCore(r)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Segments returns the last recorded segments of a wall. ok is false when
// none were recorded.
func (b *Backend) Segments(ctx context.Context, key core.WallKey) ([]core.ProcessedWallSegment, bool, error) {
	var row model.SegmentSnapshot
	err := whereKey(b.db.WithContext(ctx), key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading segments: %w", err)
	}
	segs, err := convert.SegmentSnapshotToCore(row)
	return segs, true, err
}
