// Package gormstorage implements storage.Backend on a gorm database. Edits
// are queued in arrival order and written in one transaction per flush.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gamebuildmode/wallgrid/internal/database"
	"github.com/gamebuildmode/wallgrid/internal/model"
	"github.com/gamebuildmode/wallgrid/internal/model/convert"
	"github.com/gamebuildmode/wallgrid/internal/queue"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// Dependencies holds everything the backend needs. FlushInterval zero means
// writes wait for an explicit Flush or Close.
type Dependencies struct {
	DB            *gorm.DB
	Logger        zerolog.Logger
	FlushInterval time.Duration
}

// maxFlushAttempts bounds how often a failing edit is retried before it is dropped.
const maxFlushAttempts = 3

type write struct {
	kind     string
	apply    func(tx *gorm.DB) error
	attempts int
}

// Backend writes wall edits to the database.
type Backend struct {
	db       *gorm.DB
	log      zerolog.Logger
	interval time.Duration

	pending   *queue.Queue[write]
	flushMu   sync.Mutex
	stopChan  chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
	running   bool

	lastWrite time.Duration
}

func New(deps Dependencies) *Backend {
	return &Backend{
		db:       deps.DB,
		log:      deps.Logger,
		interval: deps.FlushInterval,
		pending:  queue.New[write](),
		stopChan: make(chan struct{}),
		loopDone: make(chan struct{}),
	}
}

// DB exposes the connection for queries and dumps.
func (b *Backend) DB() *gorm.DB { return b.db }

// Init migrates the schema and starts the flush loop.
func (b *Backend) Init() error {
	if b.db == nil {
		return errors.New("gorm backend: no database")
	}
	if err := database.Migrate(b.db, b.log); err != nil {
		return err
	}
	if b.interval > 0 {
		b.running = true
		go b.flushLoop()
	}
	return nil
}

// Close stops the flush loop and writes whatever is still queued.
func (b *Backend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.stopChan)
		if b.running {
			<-b.loopDone
		}
		if b.db != nil {
			err = b.Flush(context.Background())
		}
	})
	return err
}

func (b *Backend) flushLoop() {
	defer close(b.loopDone)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(context.Background()); err != nil {
				b.log.Error().Err(err).Msg("Failed to flush wall edits")
			}
		}
	}
}

// Flush writes all queued edits in one transaction. When that fails every
// edit is retried in a transaction of its own, so only the edits that fail
// alone go back to the front of the queue. An edit that failed
// maxFlushAttempts times is dropped.
func (b *Backend) Flush(ctx context.Context) error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	batch := b.pending.GetAndEmpty()
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	if err := b.apply(ctx, batch...); err == nil {
		b.lastWrite = time.Since(start)
		b.log.Debug().Int("count", len(batch)).Dur("duration", b.lastWrite).Msg("Flushed wall edits")
		return nil
	}

	var retry []write
	var failed int
	var firstErr error
	for _, w := range batch {
		err := b.apply(ctx, w)
		if err == nil {
			continue
		}
		failed++
		if firstErr == nil {
			firstErr = err
		}
		if w.attempts++; w.attempts < maxFlushAttempts {
			retry = append(retry, w)
			continue
		}
		b.log.Warn().Err(err).Str("kind", w.kind).Msg("Dropping wall edit after repeated flush failures")
	}
	b.pending.Requeue(retry...)
	if firstErr != nil {
		return fmt.Errorf("flushing %d of %d wall edits: %w", failed, len(batch), firstErr)
	}
	b.lastWrite = time.Since(start)
	return nil
}

func (b *Backend) apply(ctx context.Context, writes ...write) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, w := range writes {
			if err := w.apply(tx); err != nil {
				return fmt.Errorf("%s: %w", w.kind, err)
			}
		}
		return nil
	})
}

// Pending returns the number of queued edits.
func (b *Backend) Pending() int { return b.pending.Len() }

// GetLastDBWriteDuration returns how long the last successful flush took.
func (b *Backend) GetLastDBWriteDuration() time.Duration {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()
	return b.lastWrite
}

func (b *Backend) push(kind string, apply func(tx *gorm.DB) error) {
	b.pending.Push(write{kind: kind, apply: apply})
}

// SaveWall upserts the wall definition.
func (b *Backend) SaveWall(_ context.Context, w core.WallRecord) error {
	m, err := convert.CoreToWall(w)
	if err != nil {
		return err
	}
	b.push("save wall", func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
	})
	return nil
}

func (b *Backend) RecordCut(_ context.Context, key core.WallKey, cut core.WallCut) error {
	m, err := convert.CoreToCut(key, cut)
	if err != nil {
		return err
	}
	b.push("record cut", func(tx *gorm.DB) error {
		return tx.Create(&m).Error
	})
	return nil
}

// DeleteCut soft-deletes the live cut with the same edge and footprint.
func (b *Backend) DeleteCut(_ context.Context, key core.WallKey, cut core.WallCut) error {
	b.push("delete cut", func(tx *gorm.DB) error {
		return liveCut(tx, key, cut).Delete(&model.Cut{}).Error
	})
	return nil
}

// FlagCut records the flag and soft-deletes the flagged cut.
func (b *Backend) FlagCut(_ context.Context, key core.WallKey, f core.FlaggedCut) error {
	m := convert.CoreToFlaggedCut(key, f)
	b.push("flag cut", func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		return liveCut(tx, key, f.Cut).Delete(&model.Cut{}).Error
	})
	return nil
}

// RecordSegments replaces the segment snapshot of the wall.
func (b *Backend) RecordSegments(_ context.Context, key core.WallKey, segs []core.ProcessedWallSegment) error {
	m, err := convert.CoreToSegmentSnapshot(key, segs)
	if err != nil {
		return err
	}
	b.push("record segments", func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
	})
	return nil
}

// DeleteWall soft-deletes the wall with its live cuts and drops its segment
// snapshot. Saving the same key again revives the wall row.
func (b *Backend) DeleteWall(_ context.Context, key core.WallKey) error {
	b.push("delete wall", func(tx *gorm.DB) error {
		if err := whereKey(tx, key).Delete(&model.Wall{}).Error; err != nil {
			return err
		}
		if err := whereKey(tx, key).Delete(&model.Cut{}).Error; err != nil {
			return err
		}
		return whereKey(tx, key).Delete(&model.SegmentSnapshot{}).Error
	})
	return nil
}

func whereKey(tx *gorm.DB, key core.WallKey) *gorm.DB {
	return tx.Where("lot = ? AND floor = ? AND wall_id = ?", key.Lot, key.Floor, key.Wall)
}

func liveCut(tx *gorm.DB, key core.WallKey, cut core.WallCut) *gorm.DB {
	return whereKey(tx, key).Where(
		"edge = ? AND start_x = ? AND start_y = ? AND end_x = ? AND end_y = ?",
		cut.Edge, cut.Start.X, cut.Start.Y, cut.End.X, cut.End.Y,
	)
}
