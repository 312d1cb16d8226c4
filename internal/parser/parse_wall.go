package parser

import (
	"fmt"

	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// ParseWallAdd parses a new wall definition.
// Args: [floor, name, axis, "sx,sy,sz", "ex,ey,ez", height, thickness, (id)]
func (p *Parser) ParseWallAdd(data []string) (WallAdd, error) {
	var result WallAdd

	if err := need(data, 7); err != nil {
		return result, err
	}
	data = clean(data)

	ref, err := parseRef(data)
	if err != nil {
		return result, err
	}
	result.Floor, result.Name = ref.Floor, ref.Name

	axis, err := core.ParseAxis(data[2])
	if err != nil {
		return result, fmt.Errorf("error parsing axis: %w", err)
	}
	result.Axis = axis

	if result.Corners, err = parseCorners(data[3], data[4]); err != nil {
		return result, err
	}
	if result.Data, err = parseDims(data[5], data[6]); err != nil {
		return result, err
	}

	// [7] optional pinned wall id
	if len(data) > 7 && data[7] != "" {
		id, err := parseUintFromFloat(data[7])
		if err != nil {
			return result, fmt.Errorf("error parsing wall id: %w", err)
		}
		result.Data.ID = uint(id)
	}

	return result, nil
}

// ParseWallUpdate parses new geometry for an existing wall.
// Args: [floor, name, "sx,sy,sz", "ex,ey,ez", height, thickness]
func (p *Parser) ParseWallUpdate(data []string) (WallUpdate, error) {
	var result WallUpdate

	if err := need(data, 6); err != nil {
		return result, err
	}
	data = clean(data)

	ref, err := parseRef(data)
	if err != nil {
		return result, err
	}
	result.Floor, result.Name = ref.Floor, ref.Name

	if result.Corners, err = parseCorners(data[2], data[3]); err != nil {
		return result, err
	}
	if result.Data, err = parseDims(data[4], data[5]); err != nil {
		return result, err
	}
	return result, nil
}

// ParseWallRef parses a wall reference.
// Args: [floor, name]
func (p *Parser) ParseWallRef(data []string) (WallRef, error) {
	if err := need(data, 2); err != nil {
		return WallRef{}, err
	}
	return parseRef(clean(data))
}

func parseRef(data []string) (WallRef, error) {
	floor, err := parseFloor(data[0])
	if err != nil {
		return WallRef{}, err
	}
	if data[1] == "" {
		return WallRef{}, fmt.Errorf("empty wall name")
	}
	return WallRef{Floor: floor, Name: data[1]}, nil
}

func parseCorners(start, end string) (core.Corners, error) {
	s, err := parsePoint("start corner", start)
	if err != nil {
		return core.Corners{}, err
	}
	e, err := parsePoint("end corner", end)
	if err != nil {
		return core.Corners{}, err
	}
	return core.Corners{Start: s, End: e}, nil
}

func parseDims(height, thickness string) (core.WallSegmentData, error) {
	h, err := parsePositive("height", height)
	if err != nil {
		return core.WallSegmentData{}, err
	}
	th, err := parsePositive("thickness", thickness)
	if err != nil {
		return core.WallSegmentData{}, err
	}
	return core.WallSegmentData{Height: h, Thickness: th}, nil
}
