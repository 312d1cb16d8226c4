package parser

import (
	"fmt"
	"strconv"
)

// ParseFloorInit parses floor initialization data.
// Args: [floor, lotKey, floorHeight]
func (p *Parser) ParseFloorInit(data []string) (FloorInit, error) {
	var result FloorInit

	if err := need(data, 3); err != nil {
		return result, err
	}
	data = clean(data)

	floor, err := parseFloor(data[0])
	if err != nil {
		return result, err
	}
	result.Floor = floor

	if data[1] == "" {
		return result, fmt.Errorf("empty lot key")
	}
	result.Lot = data[1]

	height, err := strconv.ParseFloat(data[2], 64)
	if err != nil {
		return result, fmt.Errorf("error parsing floorHeight: %w", err)
	}
	result.FloorHeight = height

	p.logger.Debug("parsed floor init", "floor", floor, "lot", result.Lot)
	return result, nil
}
