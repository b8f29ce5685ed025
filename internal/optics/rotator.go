package optics

import (
	"math"

	"github.com/lumabench/lumabench/backend-go/internal/geom"
)

// rotatorMediumIndex is the fixed refractive index inside the rotator block,
// carried on rays only to track medium transitions.
const rotatorMediumIndex = 1.5

// FaradayRotator is a rectangular block that rotates the polarization state
// of light passing through it. Each of the four edges is a thin boundary: a
// ray entering the block picks up the internal refractive index, a ray
// exiting returns to vacuum index and has its Jones state rotated by the
// configured angle.
//
// The rotation is applied with the same fixed angle regardless of propagation
// direction, so a round trip through the block cancels instead of doubling.
// A physical Faraday rotator is non-reciprocal; this direction-independent
// model is intentional and must not change without revisiting the scenes that
// rely on it.
type FaradayRotator struct {
	boxBody
	rotation float64 // radians applied on exit
}

// NewFaradayRotator creates a rotator block.
func NewFaradayRotator(id, label string, pos geom.Vec2, angle, width, height, rotation float64) *FaradayRotator {
	return &FaradayRotator{
		boxBody:  newBoxBody(id, KindFaradayRotator, label, pos, angle, width, height),
		rotation: rotation,
	}
}

// RotationAngle returns the configured polarization rotation in radians.
func (fr *FaradayRotator) RotationAngle() float64 { return fr.rotation }

// Interact spawns exactly one child per boundary crossing; the rotator never
// splits the beam.
func (fr *FaradayRotator) Interact(r *Ray, hit SurfaceHit) []*Ray {
	defer r.Terminate(ReasonPassRotator)

	if !r.ShouldSpawn(r.Intensity) {
		return nil
	}

	entering := r.Dir.Dot(hit.Outward) < 0

	jones := r.CloneJones()
	medium := rotatorMediumIndex
	if !entering {
		medium = 1.0
		if jones != nil {
			rotated := RotationMat(fr.rotation).Apply(*jones)
			jones = &rotated
		}
	}

	child := r.Spawn(
		hit.Point.Add(r.Dir.Scale(spawnOffset)),
		r.Dir,
		r.Intensity,
		r.Phase,
		jones,
		medium,
	)
	return []*Ray{child}
}

func (fr *FaradayRotator) Properties() []Property {
	return []Property{
		{Name: "width", Label: "Width", Value: fr.width, Min: minFeatureSize, Max: 10000},
		{Name: "height", Label: "Height", Value: fr.height, Min: minFeatureSize, Max: 10000},
		{Name: "rotationAngle", Label: "Rotation angle (rad)", Value: fr.rotation, Min: -2 * math.Pi, Max: 2 * math.Pi},
	}
}

func (fr *FaradayRotator) SetProperty(name string, value float64) error {
	switch name {
	case "width":
		fr.setWidth(value)
	case "height":
		fr.setHeight(value)
	case "rotationAngle":
		fr.rotation = clamp(value, -2*math.Pi, 2*math.Pi)
	default:
		return errUnknownProperty(KindFaradayRotator, name)
	}
	return nil
}
