// Package cache holds the in-memory lookup tables the floor coordinator uses
// to route clicks without scanning every wall.
package cache

import (
	"slices"
	"sync"
)

// EdgeOwners maps macro edge identifiers to the wall that spans them. A wall
// may own many edges; an edge has at most one owner.
type EdgeOwners struct {
	m      sync.Mutex
	owners map[uint64]uint
	byWall map[uint][]uint64
}

func NewEdgeOwners() *EdgeOwners {
	return &EdgeOwners{
		owners: make(map[uint64]uint),
		byWall: make(map[uint][]uint64),
	}
}

func (c *EdgeOwners) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.owners = make(map[uint64]uint)
	c.byWall = make(map[uint][]uint64)
}

// Claim replaces the edges owned by wallID. Edges held by another wall are
// left alone and returned as conflicts.
func (c *EdgeOwners) Claim(wallID uint, ids []uint64) (conflicts []uint64) {
	c.m.Lock()
	defer c.m.Unlock()

	c.releaseLocked(wallID)
	var claimed []uint64
	for _, id := range ids {
		if owner, ok := c.owners[id]; ok && owner != wallID {
			conflicts = append(conflicts, id)
			continue
		}
		c.owners[id] = wallID
		claimed = append(claimed, id)
	}
	if len(claimed) > 0 {
		c.byWall[wallID] = claimed
	}
	return conflicts
}

// Release drops every edge owned by wallID.
func (c *EdgeOwners) Release(wallID uint) {
	c.m.Lock()
	defer c.m.Unlock()
	c.releaseLocked(wallID)
}

func (c *EdgeOwners) releaseLocked(wallID uint) {
	for _, id := range c.byWall[wallID] {
		delete(c.owners, id)
	}
	delete(c.byWall, wallID)
}

func (c *EdgeOwners) Owner(id uint64) (uint, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	w, ok := c.owners[id]
	return w, ok
}

// Owned returns the edges owned by wallID in claim order.
func (c *EdgeOwners) Owned(wallID uint) []uint64 {
	c.m.Lock()
	defer c.m.Unlock()
	return slices.Clone(c.byWall[wallID])
}

func (c *EdgeOwners) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.owners)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}

// Next increments the counter and returns the new value.
func (c *SafeCounter) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v++
	return c.v
}
