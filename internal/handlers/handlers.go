// Package handlers executes parsed wall commands against the floors of a
// building. Walls are addressed by script-level names that resolve to IDs
// through a name cache.
package handlers

import (
	"errors"
	"fmt"

	"github.com/gamebuildmode/wallgrid/internal/cache"
	"github.com/gamebuildmode/wallgrid/internal/floor"
	"github.com/gamebuildmode/wallgrid/internal/logging"
	"github.com/gamebuildmode/wallgrid/internal/parser"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

var (
	// ErrUnknownFloor is returned for commands on a floor that was never initialized.
	ErrUnknownFloor = errors.New("unknown floor")
	// ErrUnknownWall is returned when a wall name does not resolve.
	ErrUnknownWall = errors.New("unknown wall")
	// ErrDuplicateWall is returned when a wall name is already in use on a floor.
	ErrDuplicateWall = errors.New("wall name already in use")
)

// FloorFactory builds an uninitialized floor for an index.
type FloorFactory func(index int) *floor.FloorGrid

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Building *floor.Building
	Names    *cache.NameCache
	NewFloor FloorFactory
	Logger   logging.Logger
}

// Service provides handler methods for wall commands.
type Service struct {
	deps Dependencies
	log  logging.Logger
}

// NewService creates a new handler service
func NewService(deps Dependencies) (*Service, error) {
	if deps.Building == nil || deps.NewFloor == nil {
		return nil, fmt.Errorf("handlers: building and floor factory: %w", core.ErrMissingDependency)
	}
	if deps.Names == nil {
		deps.Names = cache.NewNameCache()
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	return &Service{deps: deps, log: deps.Logger}, nil
}

// Building returns the building the service operates on.
func (s *Service) Building() *floor.Building {
	return s.deps.Building
}

func nameKey(floorIndex int, name string) string {
	return fmt.Sprintf("%d:%s", floorIndex, name)
}

func (s *Service) floor(index int) (*floor.FloorGrid, error) {
	f, ok := s.deps.Building.Floor(index)
	if !ok {
		return nil, fmt.Errorf("floor %d: %w", index, ErrUnknownFloor)
	}
	return f, nil
}

func (s *Service) resolve(ref parser.WallRef) (*floor.FloorGrid, uint, error) {
	f, err := s.floor(ref.Floor)
	if err != nil {
		return nil, 0, err
	}
	id, ok := s.deps.Names.Get(nameKey(ref.Floor, ref.Name))
	if !ok {
		return nil, 0, fmt.Errorf("wall %q on floor %d: %w", ref.Name, ref.Floor, ErrUnknownWall)
	}
	return f, id, nil
}

// InitFloor binds a floor to a lot, creating the floor on first use. A floor
// that fails to initialize is not added to the building.
func (s *Service) InitFloor(cmd parser.FloorInit) error {
	f, existed := s.deps.Building.Floor(cmd.Floor)
	if !existed {
		f = s.deps.NewFloor(cmd.Floor)
	}
	if err := f.Initialize(cmd.Lot, cmd.FloorHeight); err != nil {
		return fmt.Errorf("initializing floor %d: %w", cmd.Floor, err)
	}
	if !existed {
		s.deps.Building.Add(f)
	}
	s.log.Info("floor ready", "floor", cmd.Floor, "lot", cmd.Lot, "baseZ", f.BaseZ())
	return nil
}

// AddWall creates a named wall and returns its ID.
func (s *Service) AddWall(cmd parser.WallAdd) (uint, error) {
	f, err := s.floor(cmd.Floor)
	if err != nil {
		return 0, err
	}
	key := nameKey(cmd.Floor, cmd.Name)
	if _, taken := s.deps.Names.Get(key); taken {
		return 0, fmt.Errorf("wall %q on floor %d: %w", cmd.Name, cmd.Floor, ErrDuplicateWall)
	}

	id, err := f.AddWall(cmd.Data, cmd.Axis, cmd.Corners)
	if err != nil {
		return 0, fmt.Errorf("adding wall %q: %w", cmd.Name, err)
	}
	s.deps.Names.Set(key, id)
	return id, nil
}

// UpdateWall applies new geometry to a named wall and returns the cuts that
// no longer fit.
func (s *Service) UpdateWall(cmd parser.WallUpdate) ([]core.FlaggedCut, error) {
	f, id, err := s.resolve(parser.WallRef{Floor: cmd.Floor, Name: cmd.Name})
	if err != nil {
		return nil, err
	}
	flagged, err := f.UpdateWall(id, cmd.Data, cmd.Corners)
	if err != nil {
		return nil, fmt.Errorf("updating wall %q: %w", cmd.Name, err)
	}
	if len(flagged) > 0 {
		s.log.Warn("wall update flagged cuts", "floor", cmd.Floor, "wall", cmd.Name, "count", len(flagged))
	}
	return flagged, nil
}

// RemoveWall drops a named wall.
func (s *Service) RemoveWall(ref parser.WallRef) error {
	f, id, err := s.resolve(ref)
	if err != nil {
		return err
	}
	f.RemoveWall(id)
	s.deps.Names.Delete(nameKey(ref.Floor, ref.Name))
	return nil
}

// Click routes a click to its floor. Grid failures come back inside the
// result; only an unknown floor is an error.
func (s *Service) Click(cmd parser.Click) (core.PlacementResult, error) {
	f, err := s.floor(cmd.Floor)
	if err != nil {
		return core.Failed(-1, core.Interior, core.ReasonNotInitialized), err
	}
	return f.HandleClick(cmd.Tool, cmd.Point, cmd.Pressed), nil
}

// Segments rebuilds a named wall and returns its processed segments.
func (s *Service) Segments(ref parser.WallRef) ([]core.ProcessedWallSegment, error) {
	f, id, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	return f.Rebuild(id)
}
