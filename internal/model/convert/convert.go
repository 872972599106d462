// Package convert maps save-state rows to and from core types.
package convert

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/OCAP2/objectives/internal/geo"
	"github.com/OCAP2/objectives/internal/model"
	"github.com/OCAP2/objectives/pkg/core"
	"gorm.io/datatypes"
)

// SessionToModel converts a snapshot into a row tree ready to insert.
func SessionToModel(s core.Session) (model.Session, error) {
	row := model.Session{
		UUID:       s.ID,
		Map:        s.Map,
		Skill:      s.Skill,
		NextSeq:    s.NextSeq,
		SavedAt:    s.SavedAt,
		Objectives: make([]model.Objective, 0, len(s.Objectives)),
	}
	for _, o := range s.Objectives {
		obj, err := ObjectiveToModel(o)
		if err != nil {
			return model.Session{}, fmt.Errorf("objective %q: %w", o.Description, err)
		}
		row.Objectives = append(row.Objectives, obj)
	}
	return row, nil
}

// SessionToCore converts a loaded row tree back to a snapshot.
func SessionToCore(row model.Session) (core.Session, error) {
	s := core.Session{
		ID:         row.UUID,
		Map:        row.Map,
		Skill:      row.Skill,
		NextSeq:    row.NextSeq,
		SavedAt:    row.SavedAt,
		Objectives: make([]core.Objective, 0, len(row.Objectives)),
	}
	for _, obj := range row.Objectives {
		o, err := ObjectiveToCore(obj)
		if err != nil {
			return core.Session{}, fmt.Errorf("objective %q: %w", obj.Description, err)
		}
		s.Objectives = append(s.Objectives, o)
	}
	return s, nil
}

// ObjectiveToModel converts one objective. Distance caches are not persisted.
func ObjectiveToModel(o core.Objective) (model.Objective, error) {
	row := model.Objective{
		Seq:           o.Seq,
		Description:   o.Description,
		TargetClass:   o.TargetClass,
		Category:      o.Category.String(),
		Primary:       o.Primary,
		Inverse:       o.Inverse,
		Required:      o.Required,
		Current:       o.Current,
		Target:        o.Target,
		State:         o.State.String(),
		Hidden:        o.Hidden,
		Tracked:       o.Tracked,
		MinSkill:      o.MinSkill,
		MaxSkill:      o.MaxSkill,
		Map:           o.Map,
		Persist:       o.Persist,
		TimeLimit:     o.TimeLimit,
		TimeLeft:      o.TimeLeft,
		FadeLeft:      o.FadeLeft,
		AutoGenerated: o.AutoGenerated,
	}
	if o.Waypoint != nil {
		pt, err := geo.ToPoint(*o.Waypoint)
		if err != nil {
			return model.Objective{}, fmt.Errorf("objective %d waypoint: %w", o.Seq, err)
		}
		row.Waypoint = pt.AsText()
	}
	var err error
	if row.Waypoints, err = toJSON(o.Waypoints); err != nil {
		return model.Objective{}, err
	}
	if row.Owners, err = toJSON(o.Owners); err != nil {
		return model.Objective{}, err
	}
	return row, nil
}

// ObjectiveToCore converts one row back to an objective.
func ObjectiveToCore(row model.Objective) (core.Objective, error) {
	category, err := core.ParseCategory(row.Category)
	if err != nil {
		return core.Objective{}, err
	}
	state, err := parseState(row.State)
	if err != nil {
		return core.Objective{}, err
	}
	o := core.Objective{
		Seq:           row.Seq,
		Description:   row.Description,
		TargetClass:   row.TargetClass,
		Category:      category,
		Primary:       row.Primary,
		Inverse:       row.Inverse,
		Required:      row.Required,
		Current:       row.Current,
		Target:        row.Target,
		State:         state,
		Hidden:        row.Hidden,
		Tracked:       row.Tracked,
		MinSkill:      row.MinSkill,
		MaxSkill:      row.MaxSkill,
		Map:           row.Map,
		Persist:       row.Persist,
		TimeLimit:     row.TimeLimit,
		TimeLeft:      row.TimeLeft,
		FadeLeft:      row.FadeLeft,
		AutoGenerated: row.AutoGenerated,
	}
	if row.Waypoint != "" {
		points, err := geo.ParseWKT(row.Waypoint)
		if err != nil {
			return core.Objective{}, err
		}
		wp := points[0]
		o.Waypoint = &wp
	}
	if len(row.Waypoints) > 0 {
		if err := json.Unmarshal(row.Waypoints, &o.Waypoints); err != nil {
			return core.Objective{}, fmt.Errorf("failed to decode waypoints: %w", err)
		}
	}
	if len(row.Owners) > 0 {
		if err := json.Unmarshal(row.Owners, &o.Owners); err != nil {
			return core.Objective{}, fmt.Errorf("failed to decode owners: %w", err)
		}
	}
	return o, nil
}

// TransitionToModel converts a transition to its history row.
func TransitionToModel(t core.Transition) model.Transition {
	return model.Transition{
		Time:        t.Time,
		Map:         t.Map,
		Description: t.Description,
		Category:    t.Category,
		State:       t.State,
		Current:     t.Current,
		Target:      t.Target,
		Required:    t.Required,
	}
}

func parseState(s string) (core.State, error) {
	switch strings.ToLower(s) {
	case "active", "":
		return core.StateActive, nil
	case "completed":
		return core.StateCompleted, nil
	case "failed":
		return core.StateFailed, nil
	}
	return core.StateActive, fmt.Errorf("unknown objective state %q", s)
}

// toJSON encodes non-empty slices; empty ones stay NULL.
func toJSON[T any](v []T) (datatypes.JSON, error) {
	if len(v) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
