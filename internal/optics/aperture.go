package optics

import (
	"math"

	"github.com/lumabench/lumabench/backend-go/internal/geom"
)

// Aperture is an opaque plate with a centered slit. Rays striking within the
// slit pass through unchanged; rays striking the plate are absorbed.
type Aperture struct {
	flatBody
	slitWidth float64
}

// NewAperture creates an aperture plate. The slit width is clamped to the
// plate length.
func NewAperture(id, label string, pos geom.Vec2, angle, length, slitWidth float64) *Aperture {
	a := &Aperture{
		flatBody: newFlatBody(id, KindAperture, label, pos, angle, length),
	}
	a.slitWidth = clamp(slitWidth, 0, a.length)
	return a
}

func (a *Aperture) Interact(r *Ray, hit SurfaceHit) []*Ray {
	offset := math.Abs(a.axisOffset(hit.Point))
	if offset > a.slitWidth/2 {
		r.Terminate(ReasonHitAperture)
		return nil
	}

	r.Terminate(ReasonPassAperture)
	if !r.ShouldSpawn(r.Intensity) {
		return nil
	}

	child := r.Spawn(
		hit.Point.Add(r.Dir.Scale(spawnOffset)),
		r.Dir,
		r.Intensity,
		r.Phase,
		r.CloneJones(),
		r.MediumIndex,
	)
	return []*Ray{child}
}

func (a *Aperture) Properties() []Property {
	return []Property{
		{Name: "length", Label: "Length", Value: a.length, Min: minFeatureSize, Max: 10000},
		{Name: "slitWidth", Label: "Slit width", Value: a.slitWidth, Min: 0, Max: 10000},
	}
}

func (a *Aperture) SetProperty(name string, value float64) error {
	switch name {
	case "length":
		a.setLength(value)
		a.slitWidth = clamp(a.slitWidth, 0, a.length)
	case "slitWidth":
		a.slitWidth = clamp(value, 0, a.length)
	default:
		return errUnknownProperty(KindAperture, name)
	}
	return nil
}
