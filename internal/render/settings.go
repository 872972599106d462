package render

import (
	"github.com/OCAP2/objectives/internal/host"
	"github.com/OCAP2/objectives/internal/projection"
)

// Settings is the per-participant snapshot a frame is drawn with.
type Settings struct {
	Compass        bool
	CompassFOV     float64
	CompassWidth   float64
	CompassInset   float64
	CompassLift    float64
	Indicators     bool
	IndicatorFOV   float64 // used when the camera reports no FOV
	EdgeMargin     float64
	Alpha          projection.Falloff
	Scale          projection.Falloff
	OutOfViewAlpha float64
}

// DefaultSettings are used for any setting the host does not override.
var DefaultSettings = Settings{
	Compass:        true,
	CompassFOV:     180,
	CompassWidth:   512,
	CompassInset:   8,
	CompassLift:    12,
	Indicators:     true,
	IndicatorFOV:   90,
	EdgeMargin:     32,
	Alpha:          projection.DefaultAlpha,
	Scale:          projection.DefaultScale,
	OutOfViewAlpha: 0.5,
}

// LoadSettings reads the snapshot for slot from the host settings store.
func LoadSettings(s host.Settings, slot int) Settings {
	d := DefaultSettings
	return Settings{
		Compass:      s.Bool(slot, "compass.enabled", d.Compass),
		CompassFOV:   s.Float(slot, "compass.fov", d.CompassFOV),
		CompassWidth: s.Float(slot, "compass.width", d.CompassWidth),
		CompassInset: s.Float(slot, "compass.inset", d.CompassInset),
		CompassLift:  s.Float(slot, "compass.height", d.CompassLift),
		Indicators:   s.Bool(slot, "indicator.enabled", d.Indicators),
		IndicatorFOV: s.Float(slot, "indicator.fov", d.IndicatorFOV),
		EdgeMargin:   s.Float(slot, "indicator.edgeMargin", d.EdgeMargin),
		Alpha: projection.Falloff{
			Start: s.Float(slot, "falloff.alphaStart", d.Alpha.Start),
			Range: s.Float(slot, "falloff.alphaRange", d.Alpha.Range),
			Floor: s.Float(slot, "falloff.alphaFloor", d.Alpha.Floor),
		},
		Scale: projection.Falloff{
			Start: s.Float(slot, "falloff.scaleStart", d.Scale.Start),
			Range: s.Float(slot, "falloff.scaleRange", d.Scale.Range),
			Floor: s.Float(slot, "falloff.scaleFloor", d.Scale.Floor),
		},
		OutOfViewAlpha: s.Float(slot, "compass.outOfViewAlpha", d.OutOfViewAlpha),
	}
}
