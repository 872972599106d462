package bridge

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/OCAP2/objectives/internal/geo"
	"github.com/OCAP2/objectives/internal/objective"
	"github.com/OCAP2/objectives/pkg/core"
)

// AnyMap keys definitions added on every map.
const AnyMap = "*"

// DefinitionFile is a YAML file of objective definitions keyed by map.
type DefinitionFile struct {
	Maps map[string][]DefinitionSpec `yaml:"maps"`
}

// DefinitionSpec is one objective in a definition file.
type DefinitionSpec struct {
	Description string `yaml:"description"`
	Class       string `yaml:"class"`
	Count       int    `yaml:"count"`
	Category    string `yaml:"category"`
	Hidden      bool   `yaml:"hidden"`
	Persist     bool   `yaml:"persist"`
	Inverse     bool   `yaml:"inverse"`
	// TimeLimit is a Go duration string such as "90s".
	TimeLimit string `yaml:"time_limit"`
	Primary   bool   `yaml:"primary"`
	Required  *bool  `yaml:"required"`
	MinSkill  *int   `yaml:"min_skill"`
	MaxSkill  *int   `yaml:"max_skill"`
	Tracked   *bool  `yaml:"tracked"`
	// Waypoint accepts every form geo.ParseWaypoints does.
	Waypoint string `yaml:"waypoint"`
}

// ReadDefinitions parses a definition file.
func ReadDefinitions(path string) (*DefinitionFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f DefinitionFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("error parsing definitions %s: %w", path, err)
	}
	return &f, nil
}

// For returns the definitions that apply to mapName: the map's own list
// followed by the AnyMap list. Map names match case-insensitively; when
// several keys match, their lists follow in sorted key order.
func (f *DefinitionFile) For(mapName string) []DefinitionSpec {
	var names []string
	for name := range f.Maps {
		if name != AnyMap && strings.EqualFold(name, mapName) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var out []DefinitionSpec
	for _, name := range names {
		out = append(out, f.Maps[name]...)
	}
	return append(out, f.Maps[AnyMap]...)
}

// Definition converts a spec into a store definition plus any multi-point
// waypoint to apply after the objective is added.
func (d DefinitionSpec) Definition() (objective.Definition, []core.Position3D, []int, error) {
	def := objective.Definition{
		Description: d.Description,
		TargetClass: d.Class,
		Target:      d.Count,
		Hidden:      d.Hidden,
		Persist:     d.Persist,
		Inverse:     d.Inverse,
		Primary:     d.Primary,
		Required:    d.Required,
		Tracked:     true,
	}
	if d.Tracked != nil {
		def.Tracked = *d.Tracked
	}

	var err error
	if def.Category, err = core.ParseCategory(d.Category); err != nil {
		return def, nil, nil, err
	}
	if d.TimeLimit != "" {
		if def.TimeLimit, err = time.ParseDuration(d.TimeLimit); err != nil {
			return def, nil, nil, fmt.Errorf("error parsing time_limit: %w", err)
		}
	}
	if d.MinSkill != nil || d.MaxSkill != nil {
		band := objective.SkillBand{Min: core.SkillLowest, Max: core.SkillHighest}
		if d.MinSkill != nil {
			band.Min = *d.MinSkill
		}
		if d.MaxSkill != nil {
			band.Max = *d.MaxSkill
		}
		def.Skill = &band
	}

	if d.Waypoint == "" {
		return def, nil, nil, nil
	}
	points, owners, err := geo.ParseWaypoints(d.Waypoint)
	if err != nil {
		return def, nil, nil, fmt.Errorf("error parsing waypoint: %w", err)
	}
	if len(points) == 1 && owners == nil {
		if !points[0].IsZero() {
			def.Waypoint = &points[0]
		}
		return def, nil, nil, nil
	}
	return def, points, owners, nil
}
