package storage

import (
	"time"

	"github.com/OCAP2/objectives/internal/objective"
	"github.com/OCAP2/objectives/pkg/core"
)

// TransitionListener forwards every lifecycle change of the store to a
// TransitionRecorder.
type TransitionListener struct {
	rec TransitionRecorder
	log objective.Logger
	now func() time.Time
}

// NewTransitionListener returns nil when b does not record transitions.
func NewTransitionListener(b Backend, log objective.Logger) *TransitionListener {
	rec, ok := b.(TransitionRecorder)
	if !ok {
		return nil
	}
	return &TransitionListener{rec: rec, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (l *TransitionListener) record(o core.Objective) {
	t := core.TransitionOf(o, l.now())
	if err := l.rec.RecordTransition(&t); err != nil {
		l.log.Error("Failed to record transition", "description", o.Description, "state", t.State, "error", err)
	}
}

func (l *TransitionListener) Activated(o core.Objective) { l.record(o) }
func (l *TransitionListener) Completed(o core.Objective) { l.record(o) }
func (l *TransitionListener) Failed(o core.Objective)    { l.record(o) }
func (l *TransitionListener) Reset(o core.Objective)     { l.record(o) }

func (l *TransitionListener) AllRequiredComplete(string) {}
