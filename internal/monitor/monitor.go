// Package monitor reports what the session holds and how far storage is
// behind, both on demand and as a periodically rewritten status file.
package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gamebuildmode/wallgrid/internal/floor"
)

// WriteQueue is implemented by storage backends that batch their writes.
type WriteQueue interface {
	Pending() int
	GetLastDBWriteDuration() time.Duration
}

// Dependencies holds all dependencies for the monitor service.
type Dependencies struct {
	Building   *floor.Building
	Storage    any // reported when it implements WriteQueue
	StatusPath string
	Interval   time.Duration
	Logger     zerolog.Logger
}

// Status is a point-in-time snapshot.
type Status struct {
	Time                time.Time `json:"time"`
	Floors              int       `json:"floors"`
	Walls               int       `json:"walls"`
	Cuts                int       `json:"cuts"`
	FlaggedCuts         int       `json:"flaggedCuts"`
	PendingWrites       int       `json:"pendingWrites"`
	LastWriteDurationMs float32   `json:"lastWriteDurationMs"`
}

// Service manages status monitoring.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{deps: deps}
}

func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Snapshot counts the walls and cuts of every floor.
func (s *Service) Snapshot() Status {
	st := Status{Time: time.Now().UTC()}

	if b := s.deps.Building; b != nil {
		for _, idx := range b.Indexes() {
			f, ok := b.Floor(idx)
			if !ok {
				continue
			}
			st.Floors++
			for _, id := range f.WallIDs() {
				w, ok := f.Wall(id)
				if !ok {
					continue
				}
				st.Walls++
				st.Cuts += len(w.Cuts())
				st.FlaggedCuts += len(w.FlaggedCuts())
			}
		}
	}

	if q, ok := s.deps.Storage.(WriteQueue); ok {
		st.PendingWrites = q.Pending()
		st.LastWriteDurationMs = float32(q.GetLastDBWriteDuration().Microseconds()) / 1000
	}
	return st
}

// WriteStatus replaces the status file with the current snapshot.
func (s *Service) WriteStatus() error {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	tmp := s.deps.StatusPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing status file: %w", err)
	}
	return os.Rename(tmp, s.deps.StatusPath)
}

// Start runs the status file writer. It is a no-op without a status path.
func (s *Service) Start() error {
	if s.deps.StatusPath == "" {
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		s.deps.Logger.Debug().Str("path", s.deps.StatusPath).Msg("Starting status monitor")
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := s.WriteStatus(); err != nil {
					s.deps.Logger.Error().Err(err).Msg("Error writing status file")
				}
			}
		}
	}()
	return nil
}

// Stop stops the writer and leaves a final snapshot behind.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()

	<-done
	if err := s.WriteStatus(); err != nil {
		s.deps.Logger.Error().Err(err).Msg("Error writing status file")
	}
}
