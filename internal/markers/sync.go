package markers

import (
	"sync"

	"github.com/OCAP2/objectives/internal/cache"
	"github.com/OCAP2/objectives/internal/host"
	"github.com/OCAP2/objectives/internal/objective"
	"github.com/OCAP2/objectives/pkg/core"
)

// Synchronizer rebuilds the spawned marker set from the store whenever the
// store reports it dirty. Every rebuild destroys and respawns all candidate
// markers; there is no in-place diffing.
type Synchronizer struct {
	mu      sync.Mutex
	store   *objective.Store
	spawner host.Spawner
	cache   *cache.MarkerCache
	log     objective.Logger
	opts    Options
}

// New creates a Synchronizer spawning through spawner.
func New(store *objective.Store, spawner host.Spawner, log objective.Logger, opts Options) *Synchronizer {
	return &Synchronizer{
		store:   store,
		spawner: spawner,
		cache:   cache.NewMarkerCache(),
		log:     log,
		opts:    opts,
	}
}

func (s *Synchronizer) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// SetOptions applies new options and resyncs immediately when they changed.
func (s *Synchronizer) SetOptions(opts Options) {
	s.mu.Lock()
	changed := s.opts != opts
	s.opts = opts
	s.mu.Unlock()
	if changed {
		s.Sync(true)
	}
}

// Handle returns the host handle of the marker spawned for an objective.
func (s *Synchronizer) Handle(desc string) (string, bool) {
	return s.cache.Get(core.Key(desc))
}

// Len is the number of spawned markers.
func (s *Synchronizer) Len() int {
	return s.cache.Len()
}

// Sync rebuilds the marker set when force is set or the store is dirty, and
// reports whether a rebuild ran.
func (s *Synchronizer) Sync(force bool) bool {
	dirty := s.store.TakeDirty()
	if !force && !dirty {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	specs := Assign(s.store.Visible(), s.opts)
	wanted := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		wanted[core.Key(spec.Description)] = struct{}{}
	}

	for _, key := range s.cache.Keys() {
		if _, ok := wanted[key]; !ok {
			s.destroy(key)
		}
	}

	for _, spec := range specs {
		key := core.Key(spec.Description)
		s.destroy(key)
		handle, err := s.spawner.Spawn(spec)
		if err != nil {
			s.log.Error("spawning objective marker", "description", spec.Description, "error", err)
			continue
		}
		s.cache.Set(key, handle)
	}

	s.log.Debug("objective markers synced", "markers", s.cache.Len())
	return true
}

// Clear destroys every spawned marker.
func (s *Synchronizer) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, handle := range s.cache.Reset() {
		s.despawn(handle)
	}
}

// destroy removes the marker of key, if any. Caller holds the lock.
func (s *Synchronizer) destroy(key string) {
	if handle, ok := s.cache.Delete(key); ok {
		s.despawn(handle)
	}
}

func (s *Synchronizer) despawn(handle string) {
	if err := s.spawner.Destroy(handle); err != nil {
		s.log.Error("destroying objective marker", "handle", handle, "error", err)
	}
}
