// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// Backend is the interface all storage implementations must satisfy.
// Every backend also satisfies floor.Recorder.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Wall definitions, upserted on add and update
	SaveWall(ctx context.Context, w core.WallRecord) error

	// Cut history
	RecordCut(ctx context.Context, key core.WallKey, cut core.WallCut) error
	DeleteCut(ctx context.Context, key core.WallKey, cut core.WallCut) error
	FlagCut(ctx context.Context, key core.WallKey, f core.FlaggedCut) error

	// Latest segment rebuild of a wall
	RecordSegments(ctx context.Context, key core.WallKey, segs []core.ProcessedWallSegment) error

	// Wall removal; cut history is kept
	DeleteWall(ctx context.Context, key core.WallKey) error
}

// Exportable is an optional interface for backends that write a file on Close.
type Exportable interface {
	ExportedFilePath() string
}
