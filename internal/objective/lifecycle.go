package objective

import (
	"strings"

	"github.com/OCAP2/objectives/pkg/core"
)

// SetProgress sets the current count. Terminal objectives are left untouched.
func (s *Store) SetProgress(desc string, value int) {
	s.withRecord("setProgress", desc, func(o *core.Objective, n *notices) {
		s.setProgress(o, value, n)
	})
}

// IncrementProgress adds delta to the current count.
func (s *Store) IncrementProgress(desc string, delta int) {
	s.withRecord("incrementProgress", desc, func(o *core.Objective, n *notices) {
		s.setProgress(o, o.Current+delta, n)
	})
}

func (s *Store) setProgress(o *core.Objective, value int, n *notices) {
	if o.IsTerminal() {
		return
	}
	if value < 0 {
		value = 0
	}
	o.Current = value
	if o.Target > 0 && o.Current >= o.Target {
		if o.Inverse {
			s.fail(o, n)
		} else {
			s.complete(o, n)
		}
	}
}

// Complete marks an objective completed. No-op when already terminal.
func (s *Store) Complete(desc string) {
	s.withRecord("complete", desc, s.complete)
}

// Fail marks an objective failed. No-op when already terminal.
func (s *Store) Fail(desc string) {
	s.withRecord("fail", desc, s.fail)
}

func (s *Store) complete(o *core.Objective, n *notices) {
	if o.IsTerminal() {
		return
	}
	o.State = core.StateCompleted
	s.transitioned(o)
	n.add(noticeCompleted, o)

	if o.Required && !s.incompleteRequired() {
		n.allRequired(s.ctx.Map())
	}
}

func (s *Store) fail(o *core.Objective, n *notices) {
	if o.IsTerminal() {
		return
	}
	o.State = core.StateFailed
	s.transitioned(o)
	n.add(noticeFailed, o)
}

func (s *Store) transitioned(o *core.Objective) {
	o.FadeLeft = s.cfg.fadeTicks()
	s.dirty = true
	s.metrics.recordTransition(o)
}

// Reset returns an objective to active with zero progress and a re-armed timer.
func (s *Store) Reset(desc string) {
	s.withRecord("reset", desc, func(o *core.Objective, n *notices) {
		o.State = core.StateActive
		o.Current = 0
		o.TimeLeft = o.TimeLimit
		o.FadeLeft = 0
		s.dirty = true
		n.add(noticeReset, o)
	})
}

// HasIncompleteRequired reports whether any visible required objective is
// still active. Failed objectives never block.
func (s *Store) HasIncompleteRequired() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incompleteRequired()
}

func (s *Store) incompleteRequired() bool {
	for _, o := range s.records {
		if o.Required && o.IsActive() && s.visible(o) {
			return true
		}
	}
	return false
}

// Tick advances one simulation step: highlight fades age and visible timed
// objectives count down, failing when they reach zero.
func (s *Store) Tick() {
	if s == nil {
		return
	}
	s.do(func(n *notices) {
		for _, o := range s.records {
			if o.FadeLeft > 0 {
				o.FadeLeft--
			}
			if !o.IsTimed() || !o.IsActive() || !s.visible(o) {
				continue
			}
			o.TimeLeft--
			if o.TimeLeft <= 0 {
				o.TimeLeft = 0
				s.fail(o, n)
			}
		}
	})
}

// RefreshDistances recomputes the cached distance from pos to every visible
// waypointed objective for one participant slot.
func (s *Store) RefreshDistances(slot int, pos core.Position3D) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.records {
		if !s.visible(o) {
			continue
		}
		if _, d, ok := o.Nearest(pos); ok {
			o.Distances[slot] = d
		} else {
			delete(o.Distances, slot)
		}
	}
}

// Distance returns the cached distance of an objective for a participant slot.
func (s *Store) Distance(desc string, slot int) (float64, bool) {
	o, ok := s.Find(desc)
	if !ok {
		return 0, false
	}
	d, ok := o.Distances[slot]
	return d, ok
}

// EntityRemoved advances the visible active objectives of category whose target
// class matches class.
func (s *Store) EntityRemoved(class string, category core.Category) {
	if s == nil || class == "" {
		return
	}
	s.do(func(n *notices) {
		for _, o := range s.records {
			if o.Category != category || !o.IsActive() || !s.visible(o) {
				continue
			}
			if strings.EqualFold(o.TargetClass, class) {
				s.setProgress(o, o.Current+1, n)
			}
		}
	})
}

// LoadMap switches the session to a new map. Unless the session was restored,
// non-persistent objectives of the previous map are deleted when it differs
// from the new one. It must run before any objective of the new map is added.
func (s *Store) LoadMap(name string, skill int, restored bool) int {
	if s == nil {
		return 0
	}
	removed := 0
	s.do(func(*notices) {
		prev := s.ctx.SetMap(name, skill, restored)
		s.dirty = true
		if restored || prev == "" || prev == name {
			return
		}
		removed = s.removeWhere(func(o *core.Objective) bool {
			return o.Map == prev && !o.Persist
		})
	})
	if removed > 0 {
		s.log.Info("cleared objectives of previous map", "map", name, "removed", removed)
	}
	return removed
}
