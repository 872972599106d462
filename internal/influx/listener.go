package influx

import (
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/OCAP2/objectives/internal/objective"
	"github.com/OCAP2/objectives/pkg/core"
)

// PointWriter accepts points; *Manager is the production implementation.
type PointWriter interface {
	WritePoint(point *influxdb2_write.Point) error
}

// Listener writes a point for every lifecycle transition of the store.
type Listener struct {
	objective.NopListener
	w   PointWriter
	log objective.Logger
	now func() time.Time
}

func NewListener(w PointWriter, log objective.Logger) *Listener {
	return &Listener{w: w, log: log, now: time.Now}
}

func (l *Listener) write(o core.Objective) {
	p := TransitionPoint(core.TransitionOf(o, l.now()))
	if err := l.w.WritePoint(p); err != nil {
		l.log.Error("Failed to write transition point", "description", o.Description, "error", err)
	}
}

func (l *Listener) Activated(o core.Objective) { l.write(o) }
func (l *Listener) Completed(o core.Objective) { l.write(o) }
func (l *Listener) Failed(o core.Objective)    { l.write(o) }
func (l *Listener) Reset(o core.Objective)     { l.write(o) }
