// Package worker binds the wall command set to the dispatcher.
package worker

import (
	"fmt"

	"github.com/gamebuildmode/wallgrid/internal/handlers"
	"github.com/gamebuildmode/wallgrid/internal/parser"
	"github.com/gamebuildmode/wallgrid/pkg/core"
)

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	ParserService *parser.Parser
	Service       *handlers.Service
	// ClickBuffer queues clicks on a worker goroutine when positive. Queued
	// clicks report "queued" instead of their placement result; a full queue
	// blocks the caller. Layout and segment commands wait for queued clicks.
	ClickBuffer int
}

// Manager turns dispatcher events into handler calls.
type Manager struct {
	deps Dependencies
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies) (*Manager, error) {
	if deps.ParserService == nil || deps.Service == nil {
		return nil, fmt.Errorf("worker: parser and handler service: %w", core.ErrMissingDependency)
	}
	return &Manager{deps: deps}, nil
}

// WallAdded is the result of a :WALL:ADD: command.
type WallAdded struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
