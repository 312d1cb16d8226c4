package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCoordinate is returned for grid access outside the grid bounds.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrOverlap is returned when a footprint intersects non-free cells.
	ErrOverlap = errors.New("area is not free")
	// ErrInvalidEdge is returned for an edge index outside the wall run.
	ErrInvalidEdge = errors.New("edge index out of range")
	// ErrNotInitialized is returned when a wall or edge grid was never set up.
	ErrNotInitialized = errors.New("not initialized")
	// ErrUnsupportedTool is returned for tools that do not place or remove openings.
	ErrUnsupportedTool = errors.New("unsupported tool")
	// ErrNoCut is returned when a removal hits no recorded cut.
	ErrNoCut = errors.New("no cut at position")
	// ErrMissingDependency is returned when a required collaborator is absent.
	ErrMissingDependency = errors.New("missing dependency")
)

// Reason classifies why a placement did not succeed.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonInvalidCoordinate
	ReasonOverlap
	ReasonInvalidEdge
	ReasonNotInitialized
	ReasonUnsupportedTool
	ReasonNoCut
)

var reasonErrors = map[Reason]error{
	ReasonInvalidCoordinate: ErrInvalidCoordinate,
	ReasonOverlap:           ErrOverlap,
	ReasonInvalidEdge:       ErrInvalidEdge,
	ReasonNotInitialized:    ErrNotInitialized,
	ReasonUnsupportedTool:   ErrUnsupportedTool,
	ReasonNoCut:             ErrNoCut,
}

// Err returns the sentinel error for the reason, nil for ReasonNone.
func (r Reason) Err() error {
	return reasonErrors[r]
}

func (r Reason) String() string {
	if r == ReasonNone {
		return "none"
	}
	if err, ok := reasonErrors[r]; ok {
		return err.Error()
	}
	return fmt.Sprintf("reason(%d)", uint8(r))
}

// MarshalText renders the reason by name in JSON output.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (r *Reason) UnmarshalText(text []byte) error {
	s := string(text)
	if s == ReasonNone.String() {
		*r = ReasonNone
		return nil
	}
	for reason, err := range reasonErrors {
		if err.Error() == s {
			*r = reason
			return nil
		}
	}
	return fmt.Errorf("unknown reason %q", s)
}
