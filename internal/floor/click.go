package floor

import (
	"context"

	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// HandleClick routes a build-mode click. Only presses act; releases and the
// None tool are ignored. Unknown tools are reported back and, in debug mode,
// logged as warnings.
func (f *FloorGrid) HandleClick(tool core.Tool, p core.Vec3, pressed bool) core.PlacementResult {
	if !f.Initialized() {
		return core.Failed(-1, core.Interior, core.ReasonNotInitialized)
	}
	if !pressed {
		return core.Failed(-1, core.Interior, core.ReasonNone)
	}

	switch tool {
	case core.ToolPlaceDoor, core.ToolPlaceWindow, core.ToolPlaceObject:
		return f.handlePlace(tool, p)
	case core.ToolRemove:
		return f.handleRemove(p)
	case core.ToolPlaceWall:
		// walls are laid out through AddWall, the click only confirms the tool
		f.log.Debug("wall tool click", "floor", f.index, "point", p)
		return core.Failed(-1, core.Interior, core.ReasonNone)
	case core.ToolNone:
		return core.Failed(-1, core.Interior, core.ReasonNone)
	default:
		if f.deps.Debug {
			f.log.Warn("unhandled tool type", "tool", tool.String())
		}
		return core.Failed(-1, core.Interior, core.ReasonUnsupportedTool)
	}
}

func (f *FloorGrid) handlePlace(tool core.Tool, p core.Vec3) core.PlacementResult {
	id, w := f.wallAt(p)
	key := f.key(id)
	if w == nil {
		return f.observe(key, tool, core.Failed(-1, core.Interior, core.ReasonInvalidCoordinate))
	}
	var target Placeable = w
	res := target.PlaceObject(p, tool)
	if res.Success {
		f.record(func(ctx context.Context, r Recorder) error {
			return r.RecordCut(ctx, key, *res.Cut)
		})
	}
	return f.observe(key, tool, res)
}

func (f *FloorGrid) handleRemove(p core.Vec3) core.PlacementResult {
	id, w := f.wallAt(p)
	key := f.key(id)
	if w == nil {
		return f.observe(key, core.ToolRemove, core.Failed(-1, core.Interior, core.ReasonNoCut))
	}
	var target Placeable = w
	res := target.RemoveObject(p)
	if res.Success {
		f.record(func(ctx context.Context, r Recorder) error {
			return r.DeleteCut(ctx, key, *res.Cut)
		})
	}
	return f.observe(key, core.ToolRemove, res)
}

func (f *FloorGrid) observe(key core.WallKey, tool core.Tool, res core.PlacementResult) core.PlacementResult {
	if f.deps.Telemetry != nil {
		f.deps.Telemetry.RecordPlacement(key, tool, res)
	}
	if !res.Success {
		f.log.Debug("click rejected", "floor", f.index, "wall", key.Wall, "tool", tool.String(), "reason", res.Reason.String())
	}
	return res
}
