package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Models lists every table of the save-state schema, in migration order.
var Models = []any{
	&Session{},
	&Objective{},
	&Transition{},
}

// Session is one saved snapshot of the objective collection.
type Session struct {
	gorm.Model
	UUID       string      `json:"uuid" gorm:"size:36;uniqueIndex"`
	Map        string      `json:"map" gorm:"size:127;index:idx_session_map_saved"`
	Skill      int         `json:"skill"`
	NextSeq    uint64      `json:"nextSeq"`
	SavedAt    time.Time   `json:"savedAt" gorm:"index:idx_session_map_saved"`
	Objectives []Objective `json:"objectives" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:SessionID;references:ID"`
}

func (*Session) TableName() string {
	return "sessions"
}

// Objective is one saved objective record.
type Objective struct {
	ID          uint   `json:"id" gorm:"primarykey;autoIncrement"`
	SessionID   uint   `json:"sessionId" gorm:"index:idx_objective_session_id"`
	Seq         uint64 `json:"seq"`
	Description string `json:"description" gorm:"size:255"`
	TargetClass string `json:"targetClass" gorm:"size:127"`
	Category    string `json:"category" gorm:"size:16"`

	Primary  bool `json:"primary"`
	Inverse  bool `json:"inverse"`
	Required bool `json:"required"`

	Current int    `json:"current"`
	Target  int    `json:"target"`
	State   string `json:"state" gorm:"size:16"`

	Hidden   bool `json:"hidden"`
	Tracked  bool `json:"tracked"`
	MinSkill int  `json:"minSkill"`
	MaxSkill int  `json:"maxSkill"`

	Map     string `json:"map" gorm:"size:127"`
	Persist bool   `json:"persist"`

	TimeLimit int `json:"timeLimit"`
	TimeLeft  int `json:"timeLeft"`
	FadeLeft  int `json:"fadeLeft"`

	// Waypoint is a WKT POINT Z, empty when unset.
	Waypoint  string         `json:"waypoint" gorm:"size:255"`
	Waypoints datatypes.JSON `json:"waypoints"`
	Owners    datatypes.JSON `json:"owners"`

	AutoGenerated bool `json:"autoGenerated"`
}

func (*Objective) TableName() string {
	return "objectives"
}

// Transition is an append-only history row written whenever an objective
// changes lifecycle state.
type Transition struct {
	ID          uint      `json:"id" gorm:"primarykey;autoIncrement"`
	Time        time.Time `json:"time" gorm:"index:idx_transition_time"`
	Map         string    `json:"map" gorm:"size:127;index:idx_transition_map"`
	Description string    `json:"description" gorm:"size:255"`
	Category    string    `json:"category" gorm:"size:16"`
	State       string    `json:"state" gorm:"size:16"`
	Current     int       `json:"current"`
	Target      int       `json:"target"`
	Required    bool      `json:"required"`
}

func (*Transition) TableName() string {
	return "transitions"
}
