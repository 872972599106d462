package storage

import (
	"errors"

	"github.com/OCAP2/objectives/pkg/core"
)

// ErrNoSession is returned by Load when nothing was saved for the map.
var ErrNoSession = errors.New("no saved session")

// Backend is the interface all save-state implementations must satisfy
type Backend interface {
	Init() error
	Close() error

	// Save stores a snapshot of the objective collection.
	Save(s *core.Session) error
	// Load returns the most recent snapshot saved on mapName, or the most
	// recent overall when mapName is empty.
	Load(mapName string) (*core.Session, error)
}

// TransitionRecorder is an optional interface for backends that keep a
// history of objective state changes.
type TransitionRecorder interface {
	RecordTransition(t *core.Transition) error
}
