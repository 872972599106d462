// Package host declares what the objective engine consumes from the simulation
// host and provides the buffered marker spawner used across the extension
// boundary.
package host

import "github.com/OCAP2/objectives/pkg/core"

// Settings returns typed per-participant settings. Implementations fall back
// to def when the setting is unset or of the wrong type.
type Settings interface {
	Int(slot int, name string, def int) int
	Bool(slot int, name string, def bool) bool
	Float(slot int, name string, def float64) float64
	String(slot int, name string, def string) string
}

// Spawner creates and removes overlay markers on the host map.
type Spawner interface {
	Spawn(spec core.MarkerSpec) (handle string, err error)
	Destroy(handle string) error
}

// Defaults is a Settings that always returns the caller's default.
type Defaults struct{}

func (Defaults) Int(_ int, _ string, def int) int { return def }

func (Defaults) Bool(_ int, _ string, def bool) bool { return def }

func (Defaults) Float(_ int, _ string, def float64) float64 { return def }

func (Defaults) String(_ int, _ string, def string) string { return def }
