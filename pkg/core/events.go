package core

import "time"

// Tick is the per-simulation-step callback payload.
type Tick struct {
	Number       uint64
	Participants []Participant
}

// EntityEvent is raised when a world entity dies or is destroyed.
type EntityEvent struct {
	EntityID int
	Class    string
}

// LineActivated is raised when a participant triggers a line special.
type LineActivated struct {
	Special int
	Slot    int
	Line    int
}

// LevelLoaded is raised after the host loads a map.
type LevelLoaded struct {
	Map      string
	Restored bool
	Skill    int
}

// NetEvent is a named command sent by a participant.
type NetEvent struct {
	Name string
	Slot int
	Args []string
}

// Frame is the per-render-frame payload for one participant.
type Frame struct {
	Slot     int
	Camera   CameraPose
	Viewport Viewport
}

// Transition records one objective reaching a new lifecycle state.
type Transition struct {
	Description string    `json:"description"`
	Map         string    `json:"map"`
	Category    string    `json:"category"`
	State       string    `json:"state"`
	Current     int       `json:"current"`
	Target      int       `json:"target"`
	Required    bool      `json:"required"`
	Time        time.Time `json:"time"`
}

// TransitionOf describes o's current lifecycle state at the given time.
func TransitionOf(o Objective, at time.Time) Transition {
	return Transition{
		Description: o.Description,
		Map:         o.Map,
		Category:    o.Category.String(),
		State:       o.State.String(),
		Current:     o.Current,
		Target:      o.Target,
		Required:    o.Required,
		Time:        at,
	}
}
