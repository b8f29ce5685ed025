package optics

import (
	"math"

	"github.com/lumabench/lumabench/backend-go/internal/geom"
)

// Mirror reflects the full beam (minus a configurable loss) about its surface
// normal and terminates the parent.
type Mirror struct {
	flatBody
	reflectivity float64 // fraction of intensity kept on reflection
}

// NewMirror creates a mirror segment. Reflectivity is clamped to [0, 1].
func NewMirror(id, label string, pos geom.Vec2, angle, length, reflectivity float64) *Mirror {
	return &Mirror{
		flatBody:     newFlatBody(id, KindMirror, label, pos, angle, length),
		reflectivity: clamp(reflectivity, 0, 1),
	}
}

func (m *Mirror) Interact(r *Ray, hit SurfaceHit) []*Ray {
	defer r.Terminate(ReasonReflectMirror)

	intensity := r.Intensity * m.reflectivity
	if !r.ShouldSpawn(intensity) {
		return nil
	}

	dir := r.Dir.Reflect(hit.Normal)
	child := r.Spawn(
		hit.Point.Add(dir.Scale(spawnOffset)),
		dir,
		intensity,
		r.Phase+math.Pi,
		r.CloneJones(),
		r.MediumIndex,
	)
	return []*Ray{child}
}

func (m *Mirror) Properties() []Property {
	return []Property{
		{Name: "length", Label: "Length", Value: m.length, Min: minFeatureSize, Max: 10000},
		{Name: "reflectivity", Label: "Reflectivity", Value: m.reflectivity, Min: 0, Max: 1},
	}
}

func (m *Mirror) SetProperty(name string, value float64) error {
	switch name {
	case "length":
		m.setLength(value)
	case "reflectivity":
		m.reflectivity = clamp(value, 0, 1)
	default:
		return errUnknownProperty(KindMirror, name)
	}
	return nil
}
