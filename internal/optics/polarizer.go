package optics

import (
	"math"

	"github.com/lumabench/lumabench/backend-go/internal/geom"
)

// Polarizer projects the beam's Jones state onto its transmission axis and
// attenuates the scalar intensity by the projected energy fraction. An
// unpolarized parent first receives a definite horizontal state.
type Polarizer struct {
	flatBody
	axis float64 // transmission axis angle in radians
}

// NewPolarizer creates a linear polarizer segment.
func NewPolarizer(id, label string, pos geom.Vec2, angle, length, axis float64) *Polarizer {
	return &Polarizer{
		flatBody: newFlatBody(id, KindPolarizer, label, pos, angle, length),
		axis:     axis,
	}
}

func (p *Polarizer) Interact(r *Ray, hit SurfaceHit) []*Ray {
	defer r.Terminate(ReasonPassPolarizer)

	r.EnsureJones(0)

	pre := r.Jones.Intensity()
	projected := ProjectorMat(p.axis).Apply(*r.Jones)

	scale := 0.0
	if pre > jonesEnergyFloor {
		scale = projected.Intensity() / pre
	}
	intensity := r.Intensity * scale

	if !r.ShouldSpawn(intensity) {
		return nil
	}

	child := r.Spawn(
		hit.Point.Add(r.Dir.Scale(spawnOffset)),
		r.Dir,
		intensity,
		r.Phase,
		&projected,
		r.MediumIndex,
	)
	return []*Ray{child}
}

func (p *Polarizer) Properties() []Property {
	return []Property{
		{Name: "length", Label: "Length", Value: p.length, Min: minFeatureSize, Max: 10000},
		{Name: "transmissionAxis", Label: "Transmission axis (rad)", Value: p.axis, Min: -math.Pi, Max: math.Pi},
	}
}

func (p *Polarizer) SetProperty(name string, value float64) error {
	switch name {
	case "length":
		p.setLength(value)
	case "transmissionAxis":
		p.axis = clamp(value, -math.Pi, math.Pi)
	default:
		return errUnknownProperty(KindPolarizer, name)
	}
	return nil
}
