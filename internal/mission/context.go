package mission

import (
	"sort"
	"sync"

	"github.com/OCAP2/objectives/pkg/core"
)

// NoMap is reported before the host has loaded any map.
const NoMap = ""

// Context holds the current map, skill level and connected participants
type Context struct {
	mu           sync.RWMutex
	mapName      string
	previousMap  string
	skill        int
	restored     bool
	participants map[int]core.Position3D
	cursors      map[int]int
}

// NewContext creates a new Context with no map loaded
func NewContext() *Context {
	return &Context{
		participants: make(map[int]core.Position3D),
		cursors:      make(map[int]int),
	}
}

// Map returns the current map identifier
func (mc *Context) Map() string {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.mapName
}

// PreviousMap returns the map that was current before the last SetMap
func (mc *Context) PreviousMap() string {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.previousMap
}

// Skill returns the current skill level
func (mc *Context) Skill() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.skill
}

// Restored reports whether the current map came from a restored session
func (mc *Context) Restored() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.restored
}

// SetMap makes name the current map and returns the one it replaced
func (mc *Context) SetMap(name string, skill int, restored bool) string {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	prev := mc.mapName
	mc.previousMap = prev
	mc.mapName = name
	mc.skill = skill
	mc.restored = restored
	return prev
}

// Join registers a participant slot
func (mc *Context) Join(slot int) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if _, ok := mc.participants[slot]; !ok {
		mc.participants[slot] = core.Position3D{}
	}
}

// Leave removes a participant slot and its UI state
func (mc *Context) Leave(slot int) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	delete(mc.participants, slot)
	delete(mc.cursors, slot)
}

// UpdatePosition records a participant's position, joining it if needed
func (mc *Context) UpdatePosition(slot int, pos core.Position3D) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.participants[slot] = pos
}

// Participants returns the connected slots in ascending order
func (mc *Context) Participants() []int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	slots := make([]int, 0, len(mc.participants))
	for slot := range mc.participants {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	return slots
}

// Position returns the last known position of a participant
func (mc *Context) Position(slot int) (core.Position3D, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	pos, ok := mc.participants[slot]
	return pos, ok
}

// Cursor returns the journal cursor of a participant
func (mc *Context) Cursor(slot int) int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.cursors[slot]
}

// MoveCursor moves a participant's journal cursor by delta, clamped to [0, count).
func (mc *Context) MoveCursor(slot, delta, count int) int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	c := mc.cursors[slot] + delta
	if c >= count {
		c = count - 1
	}
	if c < 0 {
		c = 0
	}
	mc.cursors[slot] = c
	return c
}
