// Package objective owns the objective collection for a session and runs its
// lifecycle: progress, completion and failure, timers, visibility and
// map-scoped cleanup.
package objective

import (
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/OCAP2/objectives/internal/mission"
	"github.com/OCAP2/objectives/pkg/core"
)

// MinFadeSeconds is the floor applied to the configured notification fade.
const MinFadeSeconds = 0.5

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Config tunes the store.
type Config struct {
	// TickRate is the number of simulation ticks per second.
	TickRate int
	// FadeSeconds is how long a transition stays highlighted.
	FadeSeconds float64
	// Debug logs operations that reference unknown objectives.
	Debug bool
}

func (c Config) ticks(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds() * float64(c.tickRate())))
}

func (c Config) tickRate() int {
	if c.TickRate <= 0 {
		return 35
	}
	return c.TickRate
}

func (c Config) fadeTicks() int {
	fade := c.FadeSeconds
	if fade < MinFadeSeconds {
		fade = MinFadeSeconds
	}
	return int(math.Ceil(fade * float64(c.tickRate())))
}

// SkillBand is an inclusive skill-level range.
type SkillBand struct {
	Min int
	Max int
}

// Definition describes an objective to create.
type Definition struct {
	Description string
	TargetClass string
	Target      int
	Category    core.Category
	Hidden      bool
	Persist     bool
	Inverse     bool
	TimeLimit   time.Duration
	Primary     bool
	// Required overrides the default of required = Primary when set.
	Required *bool
	// Skill restricts the objective to a skill band; nil means every skill.
	Skill    *SkillBand
	Tracked  bool
	Waypoint *core.Position3D

	AutoGenerated bool
}

// Store is the authoritative objective collection of a session. A nil *Store
// behaves as a host that is not ready yet: mutations are no-ops and queries
// report nothing.
type Store struct {
	mu       sync.Mutex
	cfg      Config
	ctx      *mission.Context
	log      Logger
	listener Listener
	metrics  *metrics

	records []*core.Objective
	index   map[string]*core.Objective
	nextSeq uint64
	dirty   bool
}

// New creates an empty store bound to a session context. A nil log discards
// output and a nil ctx gets a fresh context.
func New(ctx *mission.Context, cfg Config, log Logger) *Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if ctx == nil {
		ctx = mission.NewContext()
	}
	s := &Store{
		cfg:      cfg,
		ctx:      ctx,
		log:      log,
		listener: NopListener{},
		index:    make(map[string]*core.Objective),
	}
	m, err := newMetrics()
	if err != nil {
		log.Error("creating objective metrics", "error", err)
	}
	s.metrics = m
	return s
}

// SetListener registers the listener receiving lifecycle notifications.
func (s *Store) SetListener(l Listener) {
	if s == nil {
		return
	}
	if l == nil {
		l = NopListener{}
	}
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

// Context returns the session context the store is bound to.
func (s *Store) Context() *mission.Context {
	if s == nil {
		return nil
	}
	return s.ctx
}

// do runs fn under the lock and delivers the notifications it raised afterwards.
func (s *Store) do(fn func(n *notices)) {
	var n notices
	s.mu.Lock()
	fn(&n)
	l := s.listener
	s.mu.Unlock()
	n.deliver(l)
}

// withRecord runs fn on the record matching desc, logging misses in debug mode.
func (s *Store) withRecord(op, desc string, fn func(o *core.Objective, n *notices)) {
	if s == nil {
		return
	}
	s.do(func(n *notices) {
		o, ok := s.index[core.Key(desc)]
		if !ok {
			s.missing(op, desc)
			return
		}
		fn(o, n)
	})
}

func (s *Store) missing(op, desc string) {
	if s.cfg.Debug {
		s.log.Debug("objective not found", "op", op, "description", desc)
	}
}

// IsVisible is the single visibility predicate: the objective belongs to
// mapName, is not hidden and allows skill.
func IsVisible(o *core.Objective, mapName string, skill int) bool {
	return o.Map == mapName && !o.Hidden && o.ValidForSkill(skill)
}

func (s *Store) visible(o *core.Objective) bool {
	return IsVisible(o, s.ctx.Map(), s.ctx.Skill())
}

// Add creates a new active objective on the current map. It returns false when
// the definition is rejected: empty or duplicate description, or an inverted
// skill band.
func (s *Store) Add(def Definition) bool {
	if s == nil {
		return false
	}
	band := SkillBand{Min: core.SkillLowest, Max: core.SkillHighest}
	if def.Skill != nil {
		band = *def.Skill
	}
	if strings.TrimSpace(def.Description) == "" {
		s.log.Error("objective rejected: empty description")
		return false
	}
	if band.Min > band.Max {
		s.log.Error("objective rejected: invalid skill band",
			"description", def.Description, "minSkill", band.Min, "maxSkill", band.Max)
		return false
	}

	added := false
	s.do(func(n *notices) {
		key := core.Key(def.Description)
		if _, exists := s.index[key]; exists {
			s.log.Error("objective rejected: duplicate description", "description", def.Description)
			return
		}

		required := def.Primary
		if def.Required != nil {
			required = *def.Required
		}

		s.nextSeq++
		o := &core.Objective{
			Seq:           s.nextSeq,
			Description:   def.Description,
			TargetClass:   def.TargetClass,
			Category:      def.Category,
			Primary:       def.Primary,
			Inverse:       def.Inverse,
			Required:      required,
			Target:        def.Target,
			State:         core.StateActive,
			Hidden:        def.Hidden,
			Tracked:       def.Tracked,
			MinSkill:      band.Min,
			MaxSkill:      band.Max,
			Map:           s.ctx.Map(),
			Persist:       def.Persist,
			TimeLimit:     s.cfg.ticks(def.TimeLimit),
			AutoGenerated: def.AutoGenerated,
			Distances:     make(map[int]float64),
		}
		o.TimeLeft = o.TimeLimit
		if def.Waypoint != nil {
			wp := *def.Waypoint
			o.Waypoint = &wp
		}

		s.records = append(s.records, o)
		s.index[key] = o
		s.dirty = true
		s.metrics.recordAdd(o)
		added = true

		if o.ValidForSkill(s.ctx.Skill()) {
			n.add(noticeActivated, o)
		}
	})
	return added
}

// Remove deletes an objective.
func (s *Store) Remove(desc string) {
	s.withRecord("remove", desc, func(o *core.Objective, _ *notices) {
		s.removeWhere(func(r *core.Objective) bool { return r == o })
	})
}

// ClearAuto removes every auto-generated objective.
func (s *Store) ClearAuto() {
	if s == nil {
		return
	}
	s.do(func(*notices) {
		s.removeWhere(func(o *core.Objective) bool { return o.AutoGenerated })
	})
}

// ClearAll removes every objective.
func (s *Store) ClearAll() {
	if s == nil {
		return
	}
	s.do(func(*notices) {
		s.removeWhere(func(*core.Objective) bool { return true })
	})
}

// removeWhere drops matching records, preserving creation order. Caller holds the lock.
func (s *Store) removeWhere(match func(o *core.Objective) bool) int {
	kept := s.records[:0]
	removed := 0
	for _, o := range s.records {
		if match(o) {
			delete(s.index, core.Key(o.Description))
			removed++
			continue
		}
		kept = append(kept, o)
	}
	for i := len(kept); i < len(s.records); i++ {
		s.records[i] = nil
	}
	s.records = kept
	if removed > 0 {
		s.dirty = true
	}
	return removed
}

// SetHidden hides or reveals an objective.
func (s *Store) SetHidden(desc string, hidden bool) {
	s.withRecord("hide", desc, func(o *core.Objective, _ *notices) {
		if o.Hidden != hidden {
			o.Hidden = hidden
			s.dirty = true
		}
	})
}

// SetTracked opts an objective in or out of spatial indicators.
func (s *Store) SetTracked(desc string, tracked bool) {
	s.withRecord("track", desc, func(o *core.Objective, _ *notices) {
		if o.Tracked != tracked {
			o.Tracked = tracked
			s.dirty = true
		}
	})
}

// ToggleTracked flips the tracked flag and returns the new value.
func (s *Store) ToggleTracked(desc string) bool {
	tracked := false
	s.withRecord("track", desc, func(o *core.Objective, _ *notices) {
		o.Tracked = !o.Tracked
		tracked = o.Tracked
		s.dirty = true
	})
	return tracked
}

// SetWaypoint sets a single waypoint, replacing any multi-point set.
func (s *Store) SetWaypoint(desc string, pos core.Position3D) {
	s.withRecord("waypoint", desc, func(o *core.Objective, _ *notices) {
		wp := pos
		o.Waypoint = &wp
		o.Waypoints = nil
		o.Owners = nil
		s.dirty = true
	})
}

// SetWaypoints sets a multi-point waypoint. owners, when given, must be
// parallel to points and names the entity each point belongs to.
func (s *Store) SetWaypoints(desc string, points []core.Position3D, owners []int) {
	s.withRecord("waypoints", desc, func(o *core.Objective, _ *notices) {
		o.Waypoint = nil
		o.Waypoints = append([]core.Position3D(nil), points...)
		o.Owners = nil
		if len(owners) == len(points) {
			o.Owners = append([]int(nil), owners...)
		}
		if len(o.Waypoints) == 0 {
			o.Waypoints = nil
		}
		s.dirty = true
	})
}

// ClearWaypoint removes every waypoint of an objective.
func (s *Store) ClearWaypoint(desc string) {
	s.withRecord("clearWaypoint", desc, func(o *core.Objective, _ *notices) {
		o.Waypoint = nil
		o.Waypoints = nil
		o.Owners = nil
		for slot := range o.Distances {
			delete(o.Distances, slot)
		}
		s.dirty = true
	})
}

// RemoveOwner drops waypoint points that belong to a removed world entity.
func (s *Store) RemoveOwner(entityID int) {
	if s == nil {
		return
	}
	s.do(func(*notices) {
		for _, o := range s.records {
			if len(o.Owners) == 0 {
				continue
			}
			points := o.Waypoints[:0]
			owners := o.Owners[:0]
			for i, owner := range o.Owners {
				if owner == entityID {
					continue
				}
				points = append(points, o.Waypoints[i])
				owners = append(owners, owner)
			}
			if len(owners) == len(o.Owners) {
				continue
			}
			o.Waypoints, o.Owners = points, owners
			if len(o.Waypoints) == 0 {
				o.Waypoints, o.Owners = nil, nil
			}
			s.dirty = true
		}
	})
}

// Exists reports whether an objective with the description exists.
func (s *Store) Exists(desc string) bool {
	_, ok := s.Find(desc)
	return ok
}

// IsActive reports whether the objective exists and is still active.
func (s *Store) IsActive(desc string) bool {
	o, ok := s.Find(desc)
	return ok && o.IsActive()
}

// IsComplete reports whether the objective has completed.
func (s *Store) IsComplete(desc string) bool {
	o, ok := s.Find(desc)
	return ok && o.State == core.StateCompleted
}

// HasFailed reports whether the objective has failed.
func (s *Store) HasFailed(desc string) bool {
	o, ok := s.Find(desc)
	return ok && o.State == core.StateFailed
}

// Progress returns the current count of an objective, or 0 when unknown.
func (s *Store) Progress(desc string) int {
	o, _ := s.Find(desc)
	return o.Current
}

// Find returns a copy of the objective matching desc case-insensitively.
func (s *Store) Find(desc string) (core.Objective, bool) {
	if s == nil {
		return core.Objective{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.index[core.Key(desc)]
	if !ok {
		s.missing("find", desc)
		return core.Objective{}, false
	}
	return o.Clone(), true
}

// FindByTargetClass returns the visible objectives tracking class.
func (s *Store) FindByTargetClass(class string) []core.Objective {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Objective
	for _, o := range s.records {
		if s.visible(o) && strings.EqualFold(o.TargetClass, class) {
			out = append(out, o.Clone())
		}
	}
	return out
}

// Records returns copies of every objective in creation order.
func (s *Store) Records() []core.Objective {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Objective, 0, len(s.records))
	for _, o := range s.records {
		out = append(out, o.Clone())
	}
	return out
}

// Visible returns copies of the objectives visible for the current map and
// skill, in creation order.
func (s *Store) Visible() []core.Objective {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Objective
	for _, o := range s.records {
		if s.visible(o) {
			out = append(out, o.Clone())
		}
	}
	return out
}

// Len returns the number of live objectives.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// TakeDirty reports whether a marker resync was requested and clears the request.
func (s *Store) TakeDirty() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.dirty
	s.dirty = false
	return d
}
