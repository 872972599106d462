package projection

import (
	"math"

	"github.com/OCAP2/objectives/pkg/core"
)

// BehindDepth is the depth at or below which a target counts as behind the camera.
const BehindDepth = 0.1

// referenceAspect is the aspect ratio the configured horizontal fov refers to.
// The vertical fov derived from it stays fixed on wider screens.
const referenceAspect = 4.0 / 3.0

// Indicator is how a projected target should be drawn.
type Indicator int

const (
	// IndicatorMarker draws the target icon at its projected position.
	IndicatorMarker Indicator = iota
	// IndicatorArrow draws an edge arrow pointing along Angle.
	IndicatorArrow
	// IndicatorTurnAround draws a bottom-edge arrow for targets behind the camera.
	IndicatorTurnAround
)

// ScreenPoint is the result of projecting a target onto the viewport.
type ScreenPoint struct {
	X, Y      float64
	Depth     float64
	OnScreen  bool
	Behind    bool
	Indicator Indicator
	// Angle is the arrow direction in radians, screen space, 0 pointing right
	// and increasing clockwise (screen Y grows downward).
	Angle float64
}

// CameraSpace rotates a world delta into camera space: depth along the view
// direction, right and up in the screen plane.
func CameraSpace(delta core.Position3D, cam core.CameraPose) (depth, right, up float64) {
	yaw := cam.Yaw * math.Pi / 180
	pitch := cam.Pitch * math.Pi / 180
	roll := cam.Roll * math.Pi / 180

	// negative yaw around the vertical axis
	forward := delta.X*math.Cos(yaw) + delta.Y*math.Sin(yaw)
	left := -delta.X*math.Sin(yaw) + delta.Y*math.Cos(yaw)

	// pitch around the lateral axis
	depth = forward*math.Cos(pitch) + delta.Z*math.Sin(pitch)
	vert := -forward*math.Sin(pitch) + delta.Z*math.Cos(pitch)

	// negative roll in the screen plane
	r := -left
	right = r*math.Cos(roll) + vert*math.Sin(roll)
	up = -r*math.Sin(roll) + vert*math.Cos(roll)
	return depth, right, up
}

// HalfTangents returns tan(hfov/2) and tan(vfov/2) for a viewport. fov is the
// horizontal field of view in degrees at the 4:3 reference aspect.
func HalfTangents(fov float64, vp core.Viewport) (tanH, tanV float64) {
	fov = clamp(fov, 1, 179)
	tanRef := math.Tan(fov * math.Pi / 360)
	tanV = tanRef / referenceAspect
	aspect := referenceAspect
	if vp.Height > Epsilon && vp.Width > Epsilon {
		aspect = vp.Width / vp.Height
	}
	tanH = tanV * aspect
	return tanH, tanV
}

// Project maps a world delta (target minus camera) to viewport pixels. Targets
// off screen or behind are clamped inside margin pixels of the viewport edge.
func Project(delta core.Position3D, cam core.CameraPose, vp core.Viewport, margin float64) ScreenPoint {
	w, h := math.Max(vp.Width, 1), math.Max(vp.Height, 1)
	margin = clamp(margin, 0, math.Min(w, h)/2)
	cx, cy := w/2, h/2

	depth, right, up := CameraSpace(delta, cam)
	p := ScreenPoint{Depth: depth}

	if depth <= BehindDepth {
		p.Behind = true
		p.Indicator = IndicatorTurnAround
		p.Angle = math.Pi / 2
		lateral := right / (math.Abs(right) + math.Abs(depth) + Epsilon)
		p.X = clamp(cx+lateral*(cx-margin), margin, w-margin)
		p.Y = h - margin
		return sanitize(p, cx, h-margin)
	}

	tanH, tanV := HalfTangents(cam.FOV, vp)
	ndcX := right / (depth * tanH)
	ndcY := up / (depth * tanV)

	x := (ndcX + 1) / 2 * w
	y := (1 - ndcY) / 2 * h

	if x >= margin && x <= w-margin {
		p.OnScreen = true
		p.Indicator = IndicatorMarker
		p.X = x
		p.Y = clamp(y, margin, h-margin)
		return sanitize(p, cx, cy)
	}

	p.Indicator = IndicatorArrow
	p.X, p.Y = edgeIntersect(x-cx, y-cy, cx-margin, cy-margin)
	p.X += cx
	p.Y += cy
	p.Angle = math.Atan2(y-cy, x-cx)
	return sanitize(p, cx, cy)
}

// edgeIntersect scales the ray (dx, dy) from the viewport center so it ends on
// the rectangle with half extents (hw, hh).
func edgeIntersect(dx, dy, hw, hh float64) (float64, float64) {
	ax, ay := math.Abs(dx), math.Abs(dy)
	if ax < Epsilon && ay < Epsilon {
		return 0, hh
	}
	t := math.Inf(1)
	if ax >= Epsilon {
		t = hw / ax
	}
	if ay >= Epsilon {
		t = math.Min(t, hh/ay)
	}
	return dx * t, dy * t
}

func sanitize(p ScreenPoint, fx, fy float64) ScreenPoint {
	if !finite(p.X) || !finite(p.Y) {
		p.X, p.Y = fx, fy
	}
	if !finite(p.Angle) {
		p.Angle = 0
	}
	if !finite(p.Depth) {
		p.Depth = 0
	}
	return p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
