package projection

// Falloff is a two-breakpoint piecewise-linear curve over distance: 1 up to
// Start, falling linearly to Floor over Range, and Floor beyond.
type Falloff struct {
	Start float64
	Range float64
	Floor float64
}

// DefaultAlpha and DefaultScale are shared by the compass and the in-world
// indicators.
var (
	DefaultAlpha = Falloff{Start: 512, Range: 2048, Floor: 0.35}
	DefaultScale = Falloff{Start: 256, Range: 1536, Floor: 0.5}
)

// At evaluates the curve at distance d.
func (f Falloff) At(d float64) float64 {
	floor := clamp(f.Floor, 0, 1)
	if d <= f.Start {
		return 1
	}
	if f.Range < Epsilon {
		return floor
	}
	t := (d - f.Start) / f.Range
	v := 1 - (1-floor)*t
	if v < floor {
		return floor
	}
	return v
}
