package host

import (
	"errors"

	"github.com/google/uuid"

	"github.com/OCAP2/objectives/internal/queue"
	"github.com/OCAP2/objectives/pkg/core"
)

// ErrUnknownHandle is returned when destroying a marker the buffer never spawned.
var ErrUnknownHandle = errors.New("unknown marker handle")

// MarkerBuffer is a Spawner for hosts that cannot be called back synchronously.
// Spawn assigns a handle immediately and queues the command; the host pulls
// pending commands in order and applies them on its side.
type MarkerBuffer struct {
	pending *queue.Queue[core.MarkerCommand]
	live    map[string]struct{}
}

func NewMarkerBuffer() *MarkerBuffer {
	return &MarkerBuffer{
		pending: queue.New[core.MarkerCommand](),
		live:    make(map[string]struct{}),
	}
}

func (b *MarkerBuffer) Spawn(spec core.MarkerSpec) (string, error) {
	handle := uuid.NewString()
	b.live[handle] = struct{}{}
	s := spec
	b.pending.Push(core.MarkerCommand{Op: core.MarkerSpawn, Handle: handle, Spec: &s})
	return handle, nil
}

func (b *MarkerBuffer) Destroy(handle string) error {
	if _, ok := b.live[handle]; !ok {
		return ErrUnknownHandle
	}
	delete(b.live, handle)
	b.pending.Push(core.MarkerCommand{Op: core.MarkerDestroy, Handle: handle})
	return nil
}

// Pull removes up to n pending commands. n <= 0 returns everything.
func (b *MarkerBuffer) Pull(n int) []core.MarkerCommand {
	return b.pending.PopN(n)
}

// Pending is the number of commands not yet pulled.
func (b *MarkerBuffer) Pending() int {
	return b.pending.Len()
}

// Live is the number of markers spawned and not yet destroyed.
func (b *MarkerBuffer) Live() int {
	return len(b.live)
}
