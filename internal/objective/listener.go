package objective

import "github.com/OCAP2/objectives/pkg/core"

// Listener receives objective lifecycle notifications. Callbacks run after the
// store lock is released, so implementations may call back into the store.
type Listener interface {
	Activated(o core.Objective)
	Completed(o core.Objective)
	Failed(o core.Objective)
	Reset(o core.Objective)
	// AllRequiredComplete fires once when the last pending required objective
	// visible on mapName completes.
	AllRequiredComplete(mapName string)
}

// NopListener implements Listener with no-op methods. Embed it to override
// only the callbacks you need.
type NopListener struct{}

func (NopListener) Activated(core.Objective)   {}
func (NopListener) Completed(core.Objective)   {}
func (NopListener) Failed(core.Objective)      {}
func (NopListener) Reset(core.Objective)       {}
func (NopListener) AllRequiredComplete(string) {}

// Listeners fans each notification out to every listener in order.
type Listeners []Listener

func (ls Listeners) Activated(o core.Objective) {
	for _, l := range ls {
		l.Activated(o)
	}
}

func (ls Listeners) Completed(o core.Objective) {
	for _, l := range ls {
		l.Completed(o)
	}
}

func (ls Listeners) Failed(o core.Objective) {
	for _, l := range ls {
		l.Failed(o)
	}
}

func (ls Listeners) Reset(o core.Objective) {
	for _, l := range ls {
		l.Reset(o)
	}
}

func (ls Listeners) AllRequiredComplete(mapName string) {
	for _, l := range ls {
		l.AllRequiredComplete(mapName)
	}
}

type noticeKind int

const (
	noticeActivated noticeKind = iota
	noticeCompleted
	noticeFailed
	noticeReset
	noticeAllRequired
)

type notice struct {
	kind    noticeKind
	obj     core.Objective
	mapName string
}

// notices collects notifications raised while the store lock is held.
type notices []notice

func (n *notices) add(kind noticeKind, o *core.Objective) {
	*n = append(*n, notice{kind: kind, obj: o.Clone(), mapName: o.Map})
}

func (n *notices) allRequired(mapName string) {
	*n = append(*n, notice{kind: noticeAllRequired, mapName: mapName})
}

func (n notices) deliver(l Listener) {
	for _, e := range n {
		switch e.kind {
		case noticeActivated:
			l.Activated(e.obj)
		case noticeCompleted:
			l.Completed(e.obj)
		case noticeFailed:
			l.Failed(e.obj)
		case noticeReset:
			l.Reset(e.obj)
		case noticeAllRequired:
			l.AllRequiredComplete(e.mapName)
		}
	}
}
