package objective

import (
	"time"

	"github.com/OCAP2/objectives/pkg/core"
	"github.com/google/uuid"
)

// Snapshot captures the whole collection for the host's save mechanism.
func (s *Store) Snapshot() core.Session {
	if s == nil {
		return core.Session{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := core.Session{
		ID:         uuid.NewString(),
		Map:        s.ctx.Map(),
		Skill:      s.ctx.Skill(),
		NextSeq:    s.nextSeq,
		SavedAt:    time.Now().UTC(),
		Objectives: make([]core.Objective, 0, len(s.records)),
	}
	for _, o := range s.records {
		sess.Objectives = append(sess.Objectives, o.Clone())
	}
	return sess
}

// Restore replaces the collection with a saved session. Distance caches are
// not saved and start empty.
func (s *Store) Restore(sess core.Session) {
	if s == nil {
		return
	}
	s.do(func(*notices) {
		s.records = make([]*core.Objective, 0, len(sess.Objectives))
		s.index = make(map[string]*core.Objective, len(sess.Objectives))
		s.nextSeq = sess.NextSeq
		for i := range sess.Objectives {
			o := sess.Objectives[i].Clone()
			o.Distances = make(map[int]float64)
			key := core.Key(o.Description)
			if _, dup := s.index[key]; dup {
				continue
			}
			if o.Seq > s.nextSeq {
				s.nextSeq = o.Seq
			}
			s.records = append(s.records, &o)
			s.index[key] = &o
		}
		s.ctx.SetMap(sess.Map, sess.Skill, true)
		s.dirty = true
	})
}
