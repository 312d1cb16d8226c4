package worker

import (
	"fmt"

	"github.com/gamebuildmode/wallgrid/internal/dispatcher"
)

// Commands handled by the manager.
const (
	CmdFloorInit  = ":FLOOR:INIT:"
	CmdWallAdd    = ":WALL:ADD:"
	CmdWallUpdate = ":WALL:UPDATE:"
	CmdWallRemove = ":WALL:REMOVE:"
	CmdClick      = ":CLICK:"
	CmdSegments   = ":SEGMENTS:"
)

// RegisterHandlers registers all wall command handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Layout changes - sync, and wait for clicks queued before them
	afterClicks := dispatcher.After(CmdClick)
	d.Register(CmdFloorInit, m.handleFloorInit, dispatcher.Logged(), afterClicks)
	d.Register(CmdWallAdd, m.handleWallAdd, dispatcher.Logged(), afterClicks)
	d.Register(CmdWallUpdate, m.handleWallUpdate, dispatcher.Logged(), afterClicks)
	d.Register(CmdWallRemove, m.handleWallRemove, dispatcher.Logged(), afterClicks)

	// Clicks - buffered only when configured; a full queue blocks the caller
	if m.deps.ClickBuffer > 0 {
		d.Register(CmdClick, m.handleClick, dispatcher.Buffered(m.deps.ClickBuffer), dispatcher.Blocking(), dispatcher.Logged())
	} else {
		d.Register(CmdClick, m.handleClick, dispatcher.Logged())
	}

	d.Register(CmdSegments, m.handleSegments, dispatcher.Logged(), afterClicks)
}

func (m *Manager) handleFloorInit(e dispatcher.Event) (any, error) {
	cmd, err := m.deps.ParserService.ParseFloorInit(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse floor init: %w", err)
	}
	if err := m.deps.Service.InitFloor(cmd); err != nil {
		return nil, err
	}
	return "ok", nil
}

func (m *Manager) handleWallAdd(e dispatcher.Event) (any, error) {
	cmd, err := m.deps.ParserService.ParseWallAdd(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse new wall: %w", err)
	}
	id, err := m.deps.Service.AddWall(cmd)
	if err != nil {
		return nil, err
	}
	return WallAdded{ID: id, Name: cmd.Name}, nil
}

func (m *Manager) handleWallUpdate(e dispatcher.Event) (any, error) {
	cmd, err := m.deps.ParserService.ParseWallUpdate(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse wall update: %w", err)
	}
	return m.deps.Service.UpdateWall(cmd)
}

func (m *Manager) handleWallRemove(e dispatcher.Event) (any, error) {
	ref, err := m.deps.ParserService.ParseWallRef(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse wall reference: %w", err)
	}
	if err := m.deps.Service.RemoveWall(ref); err != nil {
		return nil, err
	}
	return "ok", nil
}

// handleClick reports grid rejections through the result, not the error, so
// a rejected placement is not logged as a failed command.
func (m *Manager) handleClick(e dispatcher.Event) (any, error) {
	cmd, err := m.deps.ParserService.ParseClick(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse click: %w", err)
	}
	res, err := m.deps.Service.Click(cmd)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (m *Manager) handleSegments(e dispatcher.Event) (any, error) {
	ref, err := m.deps.ParserService.ParseWallRef(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse wall reference: %w", err)
	}
	return m.deps.Service.Segments(ref)
}
