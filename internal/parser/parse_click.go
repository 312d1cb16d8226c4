package parser

import (
	"fmt"
	"strconv"

	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// ParseClick parses a build-mode click.
// Args: [floor, tool, "x,y,z", (pressed)]
// A missing pressed flag counts as a press. An unrecognised tool name parses
// as core.ToolUnknown and is left for the floor to ignore.
func (p *Parser) ParseClick(data []string) (Click, error) {
	var result Click

	if err := need(data, 3); err != nil {
		return result, err
	}
	data = clean(data)

	floor, err := parseFloor(data[0])
	if err != nil {
		return result, err
	}
	result.Floor = floor

	tool, err := core.ParseTool(data[1])
	if err != nil {
		p.logger.Debug("click with unknown tool", "tool", data[1])
	}
	result.Tool = tool

	if result.Point, err = parsePoint("click point", data[2]); err != nil {
		return result, err
	}

	result.Pressed = true
	if len(data) > 3 && data[3] != "" {
		pressed, err := strconv.ParseBool(data[3])
		if err != nil {
			return result, fmt.Errorf("error parsing pressed: %w", err)
		}
		result.Pressed = pressed
	}

	return result, nil
}
