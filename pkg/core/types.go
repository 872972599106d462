package core

import "math"

// Position3D represents a world-space coordinate. Z is the vertical axis.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sub returns p - o.
func (p Position3D) Sub(o Position3D) Position3D {
	return Position3D{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

// Len returns the euclidean length of p treated as a vector.
func (p Position3D) Len() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// DistanceTo returns the straight-line distance between p and o.
func (p Position3D) DistanceTo(o Position3D) float64 {
	return o.Sub(p).Len()
}

// IsZero reports whether p is the degenerate origin vector.
func (p Position3D) IsZero() bool {
	return p.X == 0 && p.Y == 0 && p.Z == 0
}

// Participant is a connected player slot and its current view position.
type Participant struct {
	Slot     int        `json:"slot"`
	Position Position3D `json:"position"`
}

// CameraPose is the per-frame camera state. Angles are in degrees; yaw 0
// faces +X and increases counter-clockwise, positive pitch looks up.
type CameraPose struct {
	Position Position3D `json:"position"`
	Yaw      float64    `json:"yaw"`
	Pitch    float64    `json:"pitch"`
	Roll     float64    `json:"roll"`
	FOV      float64    `json:"fov"`
}

// Viewport is the drawable screen area in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
