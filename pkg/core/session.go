package core

import "time"

// Session is the serializable owning object of the objective collection.
type Session struct {
	ID         string      `json:"id"`
	Map        string      `json:"map"`
	Skill      int         `json:"skill"`
	NextSeq    uint64      `json:"nextSeq"`
	SavedAt    time.Time   `json:"savedAt"`
	Objectives []Objective `json:"objectives"`
}
