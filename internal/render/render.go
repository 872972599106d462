// Package render turns the objective store and a participant's camera into
// draw lists for the compass ribbon, the in-world indicators and the legend.
// The host draws them; nothing here mutates the store.
package render

import (
	"github.com/OCAP2/objectives/internal/host"
	"github.com/OCAP2/objectives/internal/markers"
	"github.com/OCAP2/objectives/internal/notify"
	"github.com/OCAP2/objectives/internal/objective"
	"github.com/OCAP2/objectives/internal/projection"
	"github.com/OCAP2/objectives/pkg/core"
)

// CompassMark is one objective on the compass ribbon.
type CompassMark struct {
	Description string  `json:"description"`
	X           float64 `json:"x"`
	Lift        float64 `json:"lift"`
	Alpha       float64 `json:"alpha"`
	Scale       float64 `json:"scale"`
	InView      bool    `json:"inView"`
	Turn        string  `json:"turn,omitempty"`
	Distance    float64 `json:"distance"`
	Variant     string  `json:"variant"`
	Number      int     `json:"number,omitempty"`
}

// Indicator is one objective drawn in screen space.
type Indicator struct {
	Description string  `json:"description"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Kind        string  `json:"kind"`
	Angle       float64 `json:"angle"`
	Alpha       float64 `json:"alpha"`
	Scale       float64 `json:"scale"`
	Distance    float64 `json:"distance"`
	Variant     string  `json:"variant"`
	Number      int     `json:"number,omitempty"`
}

// LegendEntry is one line of the overlay legend.
type LegendEntry struct {
	Number      int    `json:"number,omitempty"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
	State       string `json:"state"`
	Current     int    `json:"current"`
	Target      int    `json:"target"`
	Selected    bool   `json:"selected,omitempty"`
}

// Frame is everything a participant's HUD shows for one rendered frame.
type Frame struct {
	Slot       int             `json:"slot"`
	Compass    []CompassMark   `json:"compass"`
	Indicators []Indicator     `json:"indicators"`
	Legend     []LegendEntry   `json:"legend"`
	Notices    []notify.Notice `json:"notices"`
	Cues       []string        `json:"cues,omitempty"`
}

// Renderer builds frames. Only Store is required.
type Renderer struct {
	Store    *objective.Store
	Settings host.Settings
	Markers  *markers.Synchronizer
	Notices  *notify.Center
}

// Draw builds the frame for one participant.
func (r *Renderer) Draw(req core.Frame) Frame {
	var settings host.Settings = host.Defaults{}
	if r.Settings != nil {
		settings = r.Settings
	}
	cfg := LoadSettings(settings, req.Slot)
	if req.Camera.FOV <= 0 {
		req.Camera.FOV = cfg.IndicatorFOV
	}

	var opts markers.Options
	if r.Markers != nil {
		opts = r.Markers.Options()
	}

	visible := r.Store.Visible()
	specs := markers.Assign(visible, opts)
	numbers := markers.Numbers(specs)

	out := Frame{
		Slot:       req.Slot,
		Compass:    []CompassMark{},
		Indicators: []Indicator{},
		Legend:     legend(visible, specs, r.cursor(req.Slot, len(visible))),
		Notices:    []notify.Notice{},
	}
	if r.Notices != nil {
		if n := r.Notices.Pending(req.Slot); n != nil {
			out.Notices = n
		}
		out.Cues = r.Notices.TakeCues(req.Slot)
	}

	for i := range visible {
		o := &visible[i]
		if !o.IsActive() || !o.Tracked || !o.HasWaypoint() {
			continue
		}
		target, dist, _ := o.Nearest(req.Camera.Position)
		if cached, ok := o.Distances[req.Slot]; ok {
			dist = cached
		}
		delta := target.Sub(req.Camera.Position)
		variant := variantName(*o)
		number := numbers[core.Key(o.Description)]

		if cfg.Compass {
			out.Compass = append(out.Compass, compassMark(o.Description, delta, dist, req.Camera, cfg, variant, number))
		}
		if cfg.Indicators {
			out.Indicators = append(out.Indicators, indicator(o.Description, delta, dist, req, cfg, variant, number))
		}
	}
	return out
}

func (r *Renderer) cursor(slot, entries int) int {
	if entries == 0 {
		return -1
	}
	ctx := r.Store.Context()
	if ctx == nil {
		return -1
	}
	c := ctx.Cursor(slot)
	if c >= entries {
		c = entries - 1
	}
	return c
}

func compassMark(desc string, delta core.Position3D, dist float64, cam core.CameraPose, cfg Settings, variant string, number int) CompassMark {
	b := projection.CompassBearing(projection.YawDelta(cam.Yaw, delta), cfg.CompassFOV)
	alpha := cfg.Alpha.At(dist)
	if !b.InView {
		alpha *= cfg.OutOfViewAlpha
	}
	return CompassMark{
		Description: desc,
		X:           projection.RibbonX(b, cfg.CompassWidth, cfg.CompassInset),
		Lift:        projection.RibbonOffset(dist, cfg.CompassLift),
		Alpha:       alpha,
		Scale:       cfg.Scale.At(dist),
		InView:      b.InView,
		Turn:        turnName(b.Turn),
		Distance:    dist,
		Variant:     variant,
		Number:      number,
	}
}

func indicator(desc string, delta core.Position3D, dist float64, req core.Frame, cfg Settings, variant string, number int) Indicator {
	p := projection.Project(delta, req.Camera, req.Viewport, cfg.EdgeMargin)
	return Indicator{
		Description: desc,
		X:           p.X,
		Y:           p.Y,
		Kind:        indicatorName(p.Indicator),
		Angle:       p.Angle,
		Alpha:       cfg.Alpha.At(dist),
		Scale:       cfg.Scale.At(dist),
		Distance:    dist,
		Variant:     variant,
		Number:      number,
	}
}

// legend lists the marker specs in order, so numbers line up with the map
// overlay, followed by the visible objectives that have no marker.
func legend(visible []core.Objective, specs []core.MarkerSpec, cursor int) []LegendEntry {
	byKey := make(map[string]core.Objective, len(visible))
	for _, o := range visible {
		byKey[core.Key(o.Description)] = o
	}

	entries := make([]LegendEntry, 0, len(visible))
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		key := core.Key(s.Description)
		seen[key] = struct{}{}
		o := byKey[key]
		entries = append(entries, LegendEntry{
			Number:      s.Number,
			Description: o.Description,
			Variant:     s.Variant.String(),
			State:       o.State.String(),
			Current:     o.Current,
			Target:      o.Target,
		})
	}
	for _, o := range visible {
		if _, ok := seen[core.Key(o.Description)]; ok {
			continue
		}
		entries = append(entries, LegendEntry{
			Description: o.Description,
			Variant:     variantName(o),
			State:       o.State.String(),
			Current:     o.Current,
			Target:      o.Target,
		})
	}
	if cursor >= 0 && cursor < len(entries) {
		entries[cursor].Selected = true
	}
	return entries
}

func variantName(o core.Objective) string {
	switch {
	case o.State == core.StateCompleted:
		return core.VariantCompleted.String()
	case o.State == core.StateFailed:
		return core.VariantFailed.String()
	case !o.Tracked:
		return core.VariantUntracked.String()
	case o.Primary:
		return core.VariantPrimary.String()
	default:
		return core.VariantSecondary.String()
	}
}

func turnName(s projection.Side) string {
	switch s {
	case projection.SideLeft:
		return "left"
	case projection.SideRight:
		return "right"
	default:
		return ""
	}
}

func indicatorName(i projection.Indicator) string {
	switch i {
	case projection.IndicatorArrow:
		return "arrow"
	case projection.IndicatorTurnAround:
		return "turn_around"
	default:
		return "marker"
	}
}

// MoveCursor moves a participant's legend selection by delta entries and
// returns the new position.
func MoveCursor(store *objective.Store, slot, delta int) int {
	ctx := store.Context()
	if ctx == nil {
		return 0
	}
	return ctx.MoveCursor(slot, delta, len(store.Visible()))
}
