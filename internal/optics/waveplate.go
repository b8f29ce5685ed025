package optics

import (
	"math"

	"github.com/lumabench/lumabench/backend-go/internal/geom"
)

// Waveplate applies a linear retardance between its fast and slow axes
// without attenuating the beam. Retardance pi gives a half-wave plate,
// pi/2 a quarter-wave plate.
type Waveplate struct {
	flatBody
	fastAxis   float64 // radians
	retardance float64 // radians
}

// NewWaveplate creates a retarder segment.
func NewWaveplate(id, label string, pos geom.Vec2, angle, length, fastAxis, retardance float64) *Waveplate {
	return &Waveplate{
		flatBody:   newFlatBody(id, KindWaveplate, label, pos, angle, length),
		fastAxis:   fastAxis,
		retardance: retardance,
	}
}

// NewHalfWavePlate creates a waveplate with pi retardance.
func NewHalfWavePlate(id, label string, pos geom.Vec2, angle, length, fastAxis float64) *Waveplate {
	return NewWaveplate(id, label, pos, angle, length, fastAxis, math.Pi)
}

// NewQuarterWavePlate creates a waveplate with pi/2 retardance.
func NewQuarterWavePlate(id, label string, pos geom.Vec2, angle, length, fastAxis float64) *Waveplate {
	return NewWaveplate(id, label, pos, angle, length, fastAxis, math.Pi/2)
}

func (w *Waveplate) Interact(r *Ray, hit SurfaceHit) []*Ray {
	defer r.Terminate(ReasonPassWaveplate)

	if !r.ShouldSpawn(r.Intensity) {
		return nil
	}

	r.EnsureJones(0)
	jones := RetarderMat(w.fastAxis, w.retardance).Apply(*r.Jones)

	child := r.Spawn(
		hit.Point.Add(r.Dir.Scale(spawnOffset)),
		r.Dir,
		r.Intensity,
		r.Phase,
		&jones,
		r.MediumIndex,
	)
	return []*Ray{child}
}

func (w *Waveplate) Properties() []Property {
	return []Property{
		{Name: "length", Label: "Length", Value: w.length, Min: minFeatureSize, Max: 10000},
		{Name: "fastAxis", Label: "Fast axis (rad)", Value: w.fastAxis, Min: -math.Pi, Max: math.Pi},
		{Name: "retardance", Label: "Retardance (rad)", Value: w.retardance, Min: 0, Max: 2 * math.Pi},
	}
}

func (w *Waveplate) SetProperty(name string, value float64) error {
	switch name {
	case "length":
		w.setLength(value)
	case "fastAxis":
		w.fastAxis = clamp(value, -math.Pi, math.Pi)
	case "retardance":
		w.retardance = clamp(value, 0, 2*math.Pi)
	default:
		return errUnknownProperty(KindWaveplate, name)
	}
	return nil
}
