// pkg/core/types.go
package core

import (
	"fmt"
	"strings"
)

// Vec3 is a world-space position or direction, in world units (cm).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z} }

func (v Vec3) Scale(f float64) Vec3 { return Vec3{X: v.X * f, Y: v.Y * f, Z: v.Z * f} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cell is an integer grid coordinate. X runs along the wall, Y runs up.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Cell) Add(o Cell) Cell { return Cell{X: c.X + o.X, Y: c.Y + o.Y} }

// Size is a width/height pair measured in cells.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Area returns the number of cells covered, zero for degenerate sizes.
func (s Size) Area() int {
	if s.W <= 0 || s.H <= 0 {
		return 0
	}
	return s.W * s.H
}

// Axis is the fixed orientation of a wall run in the XY plane.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return fmt.Sprintf("axis(%d)", uint8(a))
	}
}

// Direction returns the unit vector the axis points along.
func (a Axis) Direction() Vec3 {
	if a == AxisY {
		return Vec3{Y: 1}
	}
	return Vec3{X: 1}
}

// Normal returns the direction rotated 90 degrees counter-clockwise.
func (a Axis) Normal() Vec3 {
	if a == AxisY {
		return Vec3{X: -1}
	}
	return Vec3{Y: 1}
}

// ParseAxis accepts "x" or "y" in any case.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	default:
		return 0, fmt.Errorf("unknown axis: %q", s)
	}
}

// Side is the face of a wall a point lies on.
type Side uint8

const (
	Interior Side = iota
	Exterior
)

func (s Side) String() string {
	if s == Exterior {
		return "exterior"
	}
	return "interior"
}

// Occupation is the state of a single decoration cell. It is stored as one byte.
type Occupation uint8

const (
	Free Occupation = iota
	Occupied
	Door
	Window
)

func (o Occupation) String() string {
	switch o {
	case Free:
		return "free"
	case Occupied:
		return "occupied"
	case Door:
		return "door"
	case Window:
		return "window"
	default:
		return fmt.Sprintf("occupation(%d)", uint8(o))
	}
}

// Tool is the active build-mode tool. The set is closed.
type Tool uint8

const (
	ToolNone Tool = iota
	ToolPlaceWall
	ToolPlaceObject
	ToolPlaceDoor
	ToolPlaceWindow
	ToolRemove

	// ToolUnknown stands in for a tool name ParseTool did not recognise.
	ToolUnknown Tool = 255
)

var toolNames = map[Tool]string{
	ToolNone:        "None",
	ToolPlaceWall:   "PlaceWall",
	ToolPlaceObject: "PlaceObject",
	ToolPlaceDoor:   "PlaceDoor",
	ToolPlaceWindow: "PlaceWindow",
	ToolRemove:      "Remove",
}

func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	if t == ToolUnknown {
		return "Unknown"
	}
	return fmt.Sprintf("Tool(%d)", uint8(t))
}

// ParseTool resolves a tool by its name, case-insensitively. Unrecognised
// names give ToolUnknown and an error.
func ParseTool(s string) (Tool, error) {
	s = strings.TrimSpace(s)
	for t, name := range toolNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return ToolUnknown, fmt.Errorf("unknown tool: %q", s)
}
