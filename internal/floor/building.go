package floor

import (
	"slices"
	"sync"
)

// Building indexes the floors of one lot. Floors refer to their neighbours by
// index only and resolve them here.
type Building struct {
	mu     sync.RWMutex
	floors map[int]*FloorGrid
}

func NewBuilding() *Building {
	return &Building{floors: make(map[int]*FloorGrid)}
}

// Add registers a floor under its index, replacing any previous one.
func (b *Building) Add(f *FloorGrid) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.floors[f.Index()] = f
}

func (b *Building) Floor(index int) (*FloorGrid, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	f, ok := b.floors[index]
	return f, ok
}

// Above returns the floor directly above index.
func (b *Building) Above(index int) (*FloorGrid, bool) {
	return b.Floor(index + 1)
}

// Below returns the floor directly below index.
func (b *Building) Below(index int) (*FloorGrid, bool) {
	return b.Floor(index - 1)
}

// Indexes returns the registered floor indexes, ascending.
func (b *Building) Indexes() []int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]int, 0, len(b.floors))
	for i := range b.floors {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}
