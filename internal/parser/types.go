package parser

import "github.com/gamebuildmode/wallgrid/pkg/core"

// FloorInit binds a floor index to a lot.
type FloorInit struct {
	Floor       int
	Lot         string
	FloorHeight float64
}

// WallAdd describes a new wall. ID is zero unless the caller pins it.
type WallAdd struct {
	Floor   int
	Name    string
	Axis    core.Axis
	Corners core.Corners
	Data    core.WallSegmentData
}

// WallUpdate carries the new geometry of an existing wall.
type WallUpdate struct {
	Floor   int
	Name    string
	Corners core.Corners
	Data    core.WallSegmentData
}

// WallRef names a wall on a floor.
type WallRef struct {
	Floor int
	Name  string
}

// Click is one build-mode input event.
type Click struct {
	Floor   int
	Tool    core.Tool
	Point   core.Vec3
	Pressed bool
}
