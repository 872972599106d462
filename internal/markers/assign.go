// Package markers keeps the overlay map markers in step with the objective
// store and owns the numbering shared with the legend.
package markers

import (
	"sort"

	"github.com/OCAP2/objectives/pkg/core"
)

// Options control which markers exist and how they are labelled.
type Options struct {
	Numbered     bool
	ShowTerminal bool
}

// Assign derives the marker list for a set of visible objectives. Active
// waypointed objectives come first, primaries before secondaries, each group
// in creation order, numbered from 1 while numbering is on and the number
// fits. Terminal waypointed objectives follow as plain markers when
// ShowTerminal is set. The legend uses the same list, so numbers match.
func Assign(visible []core.Objective, opts Options) []core.MarkerSpec {
	ordered := make([]core.Objective, len(visible))
	copy(ordered, visible)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Seq < ordered[j].Seq })

	var primary, secondary, terminal []core.Objective
	for _, o := range ordered {
		if !o.HasWaypoint() {
			continue
		}
		switch {
		case o.IsTerminal():
			if opts.ShowTerminal {
				terminal = append(terminal, o)
			}
		case o.Primary:
			primary = append(primary, o)
		default:
			secondary = append(secondary, o)
		}
	}

	specs := make([]core.MarkerSpec, 0, len(primary)+len(secondary)+len(terminal))
	n := 0
	for _, group := range [][]core.Objective{primary, secondary} {
		for _, o := range group {
			n++
			spec := core.MarkerSpec{
				Description: o.Description,
				Kind:        core.MarkerPlain,
				Variant:     activeVariant(o),
				Position:    anchor(o),
			}
			if opts.Numbered && n <= core.MaxMarkerNumber {
				spec.Kind = core.MarkerNumbered
				spec.Number = n
			}
			specs = append(specs, spec)
		}
	}
	for _, o := range terminal {
		variant := core.VariantCompleted
		if o.State == core.StateFailed {
			variant = core.VariantFailed
		}
		specs = append(specs, core.MarkerSpec{
			Description: o.Description,
			Kind:        core.MarkerPlain,
			Variant:     variant,
			Position:    anchor(o),
		})
	}
	return specs
}

// Numbers maps objective keys to their legend number. Objectives without a
// number are absent.
func Numbers(specs []core.MarkerSpec) map[string]int {
	out := make(map[string]int, len(specs))
	for _, s := range specs {
		if s.Kind == core.MarkerNumbered {
			out[core.Key(s.Description)] = s.Number
		}
	}
	return out
}

func activeVariant(o core.Objective) core.MarkerVariant {
	switch {
	case !o.Tracked:
		return core.VariantUntracked
	case o.Primary:
		return core.VariantPrimary
	default:
		return core.VariantSecondary
	}
}

// anchor is where the single marker of an objective sits: its waypoint, or
// the first point of a multi-point set.
func anchor(o core.Objective) core.Position3D {
	points := o.Points()
	if len(points) == 0 {
		return core.Position3D{}
	}
	return points[0]
}
