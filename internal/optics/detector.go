package optics

import (
	"github.com/lumabench/lumabench/backend-go/internal/geom"
)

// Detector is a terminal absorber. It spawns no children and accumulates the
// intensity and phase of every ray that strikes it; the engine resets the
// accumulator before each trace pass.
type Detector struct {
	flatBody
	reading Reading
}

// Reading is the accumulated measurement of a detector over one trace pass.
type Reading struct {
	TotalIntensity float64 `json:"totalIntensity"`
	RayCount       int     `json:"rayCount"`
	// LastPhase is the phase of the most recent absorbed ray; scalar phase
	// bookkeeping only, no interference model.
	LastPhase float64 `json:"lastPhase"`
}

// NewDetector creates a detector segment.
func NewDetector(id, label string, pos geom.Vec2, angle, length float64) *Detector {
	return &Detector{
		flatBody: newFlatBody(id, KindDetector, label, pos, angle, length),
	}
}

func (d *Detector) Interact(r *Ray, hit SurfaceHit) []*Ray {
	d.reading.TotalIntensity += r.Intensity
	d.reading.RayCount++
	d.reading.LastPhase = r.Phase
	r.Terminate(ReasonAbsorbed)
	return nil
}

// Reading returns the accumulated measurement.
func (d *Detector) Reading() Reading {
	return d.reading
}

// ResetReading clears the accumulator ahead of a trace pass.
func (d *Detector) ResetReading() {
	d.reading = Reading{}
}

func (d *Detector) Properties() []Property {
	return []Property{
		{Name: "length", Label: "Length", Value: d.length, Min: minFeatureSize, Max: 10000},
	}
}

func (d *Detector) SetProperty(name string, value float64) error {
	switch name {
	case "length":
		d.setLength(value)
	default:
		return errUnknownProperty(KindDetector, name)
	}
	return nil
}
