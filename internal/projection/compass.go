// Package projection converts world-relative vectors and a camera pose into
// compass-ribbon fractions and screen-space indicator positions.
package projection

import (
	"math"

	"github.com/OCAP2/objectives/pkg/core"
)

// Epsilon guards divisions against near-zero depths and offsets.
const Epsilon = 1e-6

// Side is the direction a participant has to turn toward an off-view target.
type Side int

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

// NormalizeAngle wraps degrees into [-180, 180].
func NormalizeAngle(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg < -180 {
		deg += 360
	}
	return deg
}

// YawDelta returns the signed shortest-path angle in degrees from the camera
// facing to the horizontal direction of delta. Positive values lie to the left.
func YawDelta(cameraYaw float64, delta core.Position3D) float64 {
	if math.Abs(delta.X) < Epsilon && math.Abs(delta.Y) < Epsilon {
		return 0
	}
	bearing := math.Atan2(delta.Y, delta.X) * 180 / math.Pi
	return NormalizeAngle(bearing - cameraYaw)
}

// Bearing is a target's placement on the compass ribbon.
type Bearing struct {
	// Fraction is the unclamped ribbon position; 0 is the left edge.
	Fraction float64
	InView   bool
	// Turn is set for targets outside the field of view.
	Turn Side
}

// CompassBearing places a yaw delta on a ribbon spanning fov degrees.
func CompassBearing(delta, fov float64) Bearing {
	if fov < Epsilon {
		fov = Epsilon
	}
	b := Bearing{
		Fraction: (-delta + fov/2) / fov,
		InView:   math.Abs(delta) <= fov/2,
	}
	if !b.InView {
		if delta > 0 {
			b.Turn = SideLeft
		} else {
			b.Turn = SideRight
		}
	}
	return b
}

// RibbonX maps a bearing to a pixel offset on a ribbon of the given width.
// Out-of-view bearings are clamped to inset pixels from the nearer edge.
func RibbonX(b Bearing, width, inset float64) float64 {
	x := b.Fraction * width
	if b.InView {
		return clamp(x, 0, width)
	}
	if inset > width/2 {
		inset = width / 2
	}
	return clamp(x, inset, width-inset)
}

// RibbonOffset is the vertical lift of a ribbon mark: maxOffset at distance
// zero, shrinking logarithmically with distance and never above maxOffset.
func RibbonOffset(distance, maxOffset float64) float64 {
	if distance < 0 || math.IsNaN(distance) {
		distance = 0
	}
	if math.IsInf(distance, 1) {
		return 0
	}
	return maxOffset / (1 + math.Log2(1+distance/256))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
