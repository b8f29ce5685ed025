package optics

import (
	"math"

	"github.com/lumabench/lumabench/backend-go/internal/geom"
)

// Lens is an ideal thin lens: in the paraxial model the slope of a ray
// relative to the optical axis changes by -h/f at the lens plane, where h is
// the signed hit offset from the lens center and f the focal length. A
// negative focal length gives a diverging lens.
type Lens struct {
	flatBody
	focalLength float64
}

// NewLens creates a thin lens segment. A zero focal length is replaced by the
// minimum positive value to keep the deflection finite.
func NewLens(id, label string, pos geom.Vec2, angle, length, focalLength float64) *Lens {
	return &Lens{
		flatBody:    newFlatBody(id, KindLens, label, pos, angle, length),
		focalLength: sanitizeFocal(focalLength),
	}
}

func sanitizeFocal(f float64) float64 {
	if math.Abs(f) < minFeatureSize {
		if f < 0 {
			return -minFeatureSize
		}
		return minFeatureSize
	}
	return f
}

func (l *Lens) Interact(r *Ray, hit SurfaceHit) []*Ray {
	defer r.Terminate(ReasonPassLens)

	if !r.ShouldSpawn(r.Intensity) {
		return nil
	}

	// Optical axis points through the lens in the direction of travel.
	axis := hit.Normal.Scale(-1)
	along := geom.FromAngle(l.angle)

	forward := r.Dir.Dot(axis)
	dir := r.Dir
	if forward > hitEpsilon {
		h := l.axisOffset(hit.Point)
		slope := r.Dir.Dot(along)/forward - h/l.focalLength
		dir = axis.Add(along.Scale(slope)).Normalize()
	}

	child := r.Spawn(
		hit.Point.Add(dir.Scale(spawnOffset)),
		dir,
		r.Intensity,
		r.Phase,
		r.CloneJones(),
		r.MediumIndex,
	)
	return []*Ray{child}
}

func (l *Lens) Properties() []Property {
	return []Property{
		{Name: "length", Label: "Length", Value: l.length, Min: minFeatureSize, Max: 10000},
		{Name: "focalLength", Label: "Focal length", Value: l.focalLength, Min: -100000, Max: 100000},
	}
}

func (l *Lens) SetProperty(name string, value float64) error {
	switch name {
	case "length":
		l.setLength(value)
	case "focalLength":
		l.focalLength = sanitizeFocal(clamp(value, -100000, 100000))
	default:
		return errUnknownProperty(KindLens, name)
	}
	return nil
}
