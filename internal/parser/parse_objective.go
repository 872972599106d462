package parser

import (
	"fmt"
	"time"

	"github.com/OCAP2/objectives/internal/geo"
	"github.com/OCAP2/objectives/internal/objective"
	"github.com/OCAP2/objectives/internal/util"
	"github.com/OCAP2/objectives/pkg/core"
)

// AddObjective is a parsed :OBJ:ADD: request. Multi-point waypoints are
// carried in Points/Owners and applied after the objective exists.
type AddObjective struct {
	Definition objective.Definition
	Points     []core.Position3D
	Owners     []int
}

// Waypoint is a parsed waypoint assignment. Clear is set when the request
// removes the waypoint.
type Waypoint struct {
	Description string
	Points      []core.Position3D
	Owners      []int
	Clear       bool
}

// ParseAddObjective parses
// [description, class, count, category, hidden, persist, inverse,
// timeLimitSeconds, primary, required, minSkill, maxSkill, waypoint, tracked].
// Only the description is mandatory. required is tri-state: empty leaves it
// to follow primary. tracked defaults to true.
func (p *Parser) ParseAddObjective(data []string) (AddObjective, error) {
	var result AddObjective
	data, err := clean(data, 1)
	if err != nil {
		return result, err
	}
	def := objective.Definition{
		Description: data[0],
		TargetClass: arg(data, 1),
		Tracked:     true,
	}
	if def.Description == "" {
		return result, fmt.Errorf("%w: empty description", ErrMissingArgs)
	}

	if def.Target, err = intOr(arg(data, 2), 0); err != nil {
		return result, fmt.Errorf("error parsing count: %w", err)
	}
	if c := arg(data, 3); c != "" {
		if def.Category, err = core.ParseCategory(c); err != nil {
			return result, err
		}
	}

	flags := []struct {
		name string
		idx  int
		dst  *bool
	}{
		{"hidden", 4, &def.Hidden},
		{"persist", 5, &def.Persist},
		{"inverse", 6, &def.Inverse},
		{"primary", 8, &def.Primary},
	}
	for _, f := range flags {
		if *f.dst, err = util.ParseBool(arg(data, f.idx)); err != nil {
			return result, fmt.Errorf("error parsing %s: %w", f.name, err)
		}
	}

	if s := arg(data, 7); s != "" {
		secs, err := parseFloat(s)
		if err != nil {
			return result, fmt.Errorf("error parsing timeLimit: %w", err)
		}
		def.TimeLimit = time.Duration(secs * float64(time.Second))
	}

	if r := arg(data, 9); r != "" {
		required, err := util.ParseBool(r)
		if err != nil {
			return result, fmt.Errorf("error parsing required: %w", err)
		}
		def.Required = &required
	}

	minRaw, maxRaw := arg(data, 10), arg(data, 11)
	if minRaw != "" || maxRaw != "" {
		band := objective.SkillBand{}
		if band.Min, err = intOr(minRaw, core.SkillLowest); err != nil {
			return result, fmt.Errorf("error parsing minSkill: %w", err)
		}
		if band.Max, err = intOr(maxRaw, core.SkillHighest); err != nil {
			return result, fmt.Errorf("error parsing maxSkill: %w", err)
		}
		def.Skill = &band
	}

	if w := arg(data, 12); w != "" {
		points, owners, err := parseWaypointArg(w)
		if err != nil {
			return result, err
		}
		if len(points) == 1 && owners == nil {
			def.Waypoint = &points[0]
		} else {
			result.Points, result.Owners = points, owners
		}
	}

	if t := arg(data, 13); t != "" {
		if def.Tracked, err = util.ParseBool(t); err != nil {
			return result, fmt.Errorf("error parsing tracked: %w", err)
		}
	}

	result.Definition = def
	return result, nil
}

// ParseWaypoint parses [description, waypoint]. A missing waypoint, or one at
// exactly 0,0,0, clears it.
func (p *Parser) ParseWaypoint(data []string) (Waypoint, error) {
	var result Waypoint
	data, err := clean(data, 1)
	if err != nil {
		return result, err
	}
	result.Description = data[0]
	w := arg(data, 1)
	if w == "" {
		result.Clear = true
		return result, nil
	}
	result.Points, result.Owners, err = parseWaypointArg(w)
	if err != nil {
		return result, err
	}
	result.Clear = len(result.Points) == 0
	return result, nil
}

// ParseProgress parses [description, value]. value defaults to def.
func (p *Parser) ParseProgress(data []string, def int) (string, int, error) {
	data, err := clean(data, 1)
	if err != nil {
		return "", 0, err
	}
	v, err := intOr(arg(data, 1), def)
	if err != nil {
		return "", 0, fmt.Errorf("error parsing progress: %w", err)
	}
	return data[0], v, nil
}

// ParseDescription parses [description].
func (p *Parser) ParseDescription(data []string) (string, error) {
	data, err := clean(data, 1)
	if err != nil {
		return "", err
	}
	if data[0] == "" {
		return "", fmt.Errorf("%w: empty description", ErrMissingArgs)
	}
	return data[0], nil
}

// parseWaypointArg parses a waypoint and drops a lone origin point, which the
// scripting layer uses to mean "no waypoint".
func parseWaypointArg(w string) ([]core.Position3D, []int, error) {
	points, owners, err := geo.ParseWaypoints(w)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing waypoint: %w", err)
	}
	if len(points) == 1 && owners == nil && points[0].IsZero() {
		return nil, nil, nil
	}
	return points, owners, nil
}
