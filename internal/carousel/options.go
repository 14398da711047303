package carousel

import (
	"github.com/Faultbox/pulpcarousel/internal/atlas"
	"github.com/Faultbox/pulpcarousel/internal/geometry"
)

// Options tunes the carousel.
type Options struct {
	// Scale multiplies the resting camera distance.
	Scale float32

	SphereRadius float32
	Subdivisions int
	DiscSteps    int
	CellSize     int

	MaxDeltaMS    float32
	TargetFrameMS float32

	// MovingThreshold is the smoothed rotation velocity above which the
	// sphere counts as moving.
	MovingThreshold float32
}

// DefaultOptions returns the stock carousel.
func DefaultOptions() Options {
	return Options{
		Scale:           1,
		SphereRadius:    2,
		Subdivisions:    1,
		DiscSteps:       56,
		CellSize:        atlas.DefaultCellSize,
		MaxDeltaMS:      32,
		TargetFrameMS:   1000.0 / 60.0,
		MovingThreshold: 0.01,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Scale <= 0 {
		o.Scale = d.Scale
	}
	if o.SphereRadius <= 0 {
		o.SphereRadius = d.SphereRadius
	}
	if o.Subdivisions < 0 {
		o.Subdivisions = d.Subdivisions
	}
	o.Subdivisions = min(o.Subdivisions, geometry.MaxSubdivisions)
	if o.DiscSteps <= 0 {
		o.DiscSteps = d.DiscSteps
	}
	o.DiscSteps = min(o.DiscSteps, geometry.MaxDiscSteps)
	if o.CellSize <= 0 {
		o.CellSize = d.CellSize
	}
	if o.MaxDeltaMS <= 0 {
		o.MaxDeltaMS = d.MaxDeltaMS
	}
	if o.TargetFrameMS <= 0 {
		o.TargetFrameMS = d.TargetFrameMS
	}
	if o.MovingThreshold <= 0 {
		o.MovingThreshold = d.MovingThreshold
	}
	return o
}
