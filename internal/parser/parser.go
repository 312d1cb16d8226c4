// Package parser turns raw command arguments into typed wall and floor
// commands. It performs no grid or storage operations.
package parser

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gamebuildmode/wallgrid/internal/geo"
	"github.com/gamebuildmode/wallgrid/internal/logging"
	"github.com/gamebuildmode/wallgrid/internal/util"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// parseUintFromFloat parses a string that may be an integer ("32") or float ("32.00") into uint64.
// Scripted callers may serialize whole numbers as floats.
func parseUintFromFloat(s string) (uint64, error) {
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != float64(uint64(f)) {
		return 0, fmt.Errorf("parseUintFromFloat: %q is not a valid uint64", s)
	}
	return uint64(f), nil
}

// parseIntFromFloat parses a string that may be an integer or float into int64.
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a valid int64", s)
	}
	return int64(f), nil
}

// Parser provides pure []string -> command conversion.
type Parser struct {
	logger logging.Logger
}

// NewParser creates a parser. A nil logger discards output.
func NewParser(logger logging.Logger) *Parser {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Parser{logger: logger}
}

// clean strips the quoting scripted callers wrap arguments in.
func clean(data []string) []string {
	return util.CleanArgs(data)
}

func need(data []string, n int) error {
	if len(data) < n {
		return fmt.Errorf("insufficient data fields: got %d, need %d", len(data), n)
	}
	return nil
}

func parseFloor(s string) (int, error) {
	v, err := parseIntFromFloat(s)
	if err != nil {
		return 0, fmt.Errorf("error parsing floor index: %w", err)
	}
	return int(v), nil
}

func parsePoint(field, s string) (core.Vec3, error) {
	v, err := geo.ParseVec3(s)
	if err != nil {
		return core.Vec3{}, fmt.Errorf("error parsing %s: %w", field, err)
	}
	return v, nil
}

// maxDimension caps wall heights and thicknesses, in world units.
const maxDimension = 1e5

func parsePositive(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing %s: %w", field, err)
	}
	if math.IsNaN(v) || v <= 0 {
		return 0, fmt.Errorf("error parsing %s: %g is not positive", field, v)
	}
	if v > maxDimension {
		return 0, fmt.Errorf("error parsing %s: %g exceeds %g", field, v, float64(maxDimension))
	}
	return v, nil
}
