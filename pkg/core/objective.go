package core

import (
	"fmt"
	"strings"
)

// Skill bounds used when an objective does not restrict its skill band.
const (
	SkillLowest  = 0
	SkillHighest = 255
)

// Category classifies how an objective accumulates progress.
type Category int

const (
	CategoryCustom Category = iota
	CategoryKill
	CategoryDestroy
	CategoryCollect
)

func (c Category) String() string {
	switch c {
	case CategoryKill:
		return "kill"
	case CategoryDestroy:
		return "destroy"
	case CategoryCollect:
		return "collect"
	default:
		return "custom"
	}
}

// ParseCategory maps a category name (or its numeric form) to a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kill", "1":
		return CategoryKill, nil
	case "destroy", "2":
		return CategoryDestroy, nil
	case "collect", "3":
		return CategoryCollect, nil
	case "custom", "0", "":
		return CategoryCustom, nil
	}
	return CategoryCustom, fmt.Errorf("unknown objective category %q", s)
}

// State is the lifecycle state of an objective. Completed and failed are terminal.
type State int

const (
	StateActive State = iota
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "active"
	}
}

// Objective is one mission objective: its configuration plus mutable progress.
// Description is the primary key, matched case-insensitively.
type Objective struct {
	Seq         uint64   `json:"seq"`
	Description string   `json:"description"`
	TargetClass string   `json:"targetClass,omitempty"`
	Category    Category `json:"category"`

	Primary  bool `json:"primary"`
	Inverse  bool `json:"inverse"`
	Required bool `json:"required"`

	Current int   `json:"current"`
	Target  int   `json:"target"`
	State   State `json:"state"`

	Hidden   bool `json:"hidden"`
	Tracked  bool `json:"tracked"`
	MinSkill int  `json:"minSkill"`
	MaxSkill int  `json:"maxSkill"`

	Map     string `json:"map"`
	Persist bool   `json:"persist"`

	// TimeLimit and TimeLeft are counted in simulation ticks; zero limit means untimed.
	TimeLimit int `json:"timeLimit,omitempty"`
	TimeLeft  int `json:"timeLeft,omitempty"`

	// FadeLeft is the remaining notification highlight after a transition, in ticks.
	FadeLeft int `json:"fadeLeft,omitempty"`

	Waypoint  *Position3D  `json:"waypoint,omitempty"`
	Waypoints []Position3D `json:"waypoints,omitempty"`
	// Owners holds the originating entity of each entry in Waypoints.
	Owners []int `json:"owners,omitempty"`

	AutoGenerated bool `json:"autoGenerated,omitempty"`

	// Distances caches the last computed distance per participant slot.
	Distances map[int]float64 `json:"-"`
}

// Key returns the lookup key for a description.
func Key(description string) string {
	return strings.ToLower(description)
}

// IsActive reports whether the objective is still accumulating progress.
func (o *Objective) IsActive() bool { return o.State == StateActive }

// IsTerminal reports whether the objective has completed or failed.
func (o *Objective) IsTerminal() bool { return o.State != StateActive }

// IsTimed reports whether a time limit is configured.
func (o *Objective) IsTimed() bool { return o.TimeLimit > 0 }

// HasWaypoint reports whether any waypoint position is set.
func (o *Objective) HasWaypoint() bool {
	return o.Waypoint != nil || len(o.Waypoints) > 0
}

// ValidForSkill reports whether skill lies within the objective's inclusive skill band.
func (o *Objective) ValidForSkill(skill int) bool {
	return skill >= o.MinSkill && skill <= o.MaxSkill
}

// Points returns every candidate position of the objective.
func (o *Objective) Points() []Position3D {
	if o.Waypoint != nil {
		return []Position3D{*o.Waypoint}
	}
	return o.Waypoints
}

// Nearest returns the candidate position closest to from.
func (o *Objective) Nearest(from Position3D) (Position3D, float64, bool) {
	points := o.Points()
	if len(points) == 0 {
		return Position3D{}, 0, false
	}
	best, bestDist := points[0], from.DistanceTo(points[0])
	for _, p := range points[1:] {
		if d := from.DistanceTo(p); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, bestDist, true
}

// Clone returns a deep copy safe to hand out of the store.
func (o *Objective) Clone() Objective {
	c := *o
	if o.Waypoint != nil {
		wp := *o.Waypoint
		c.Waypoint = &wp
	}
	if o.Waypoints != nil {
		c.Waypoints = append([]Position3D(nil), o.Waypoints...)
	}
	if o.Owners != nil {
		c.Owners = append([]int(nil), o.Owners...)
	}
	if o.Distances != nil {
		c.Distances = make(map[int]float64, len(o.Distances))
		for k, v := range o.Distances {
			c.Distances[k] = v
		}
	}
	return c
}
