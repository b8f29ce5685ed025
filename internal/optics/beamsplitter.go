package optics

import (
	"math"

	"github.com/lumabench/lumabench/backend-go/internal/geom"
)

// BeamSplitter splits an incoming beam by a fixed intensity ratio: splitRatio
// of the intensity is reflected, the rest transmitted. It does not resolve
// polarization; a Jones state on the parent is inherited unchanged by both
// children. This is a deliberate simplification, not a general dielectric
// interface model.
type BeamSplitter struct {
	flatBody
	splitRatio float64 // fraction reflected, in [0, 1]
}

// NewBeamSplitter creates a non-polarizing beam splitter segment.
func NewBeamSplitter(id, label string, pos geom.Vec2, angle, length, splitRatio float64) *BeamSplitter {
	return &BeamSplitter{
		flatBody:   newFlatBody(id, KindBeamSplitter, label, pos, angle, length),
		splitRatio: clamp(splitRatio, 0, 1),
	}
}

// SplitRatio returns the reflected intensity fraction.
func (bs *BeamSplitter) SplitRatio() float64 { return bs.splitRatio }

// Interact spawns up to two children. The reflected branch accumulates a +pi
// phase (half-wave loss convention); the transmitted branch keeps the parent
// phase. The parent terminates regardless of how many branches cleared the
// spawn gate.
func (bs *BeamSplitter) Interact(r *Ray, hit SurfaceHit) []*Ray {
	defer r.Terminate(ReasonSplitBS)

	reflected := r.Intensity * bs.splitRatio
	transmitted := r.Intensity * (1 - bs.splitRatio)

	var out []*Ray
	if r.ShouldSpawn(reflected) {
		dir := r.Dir.Reflect(hit.Normal)
		out = append(out, r.Spawn(
			hit.Point.Add(dir.Scale(spawnOffset)),
			dir,
			reflected,
			r.Phase+math.Pi,
			r.CloneJones(),
			r.MediumIndex,
		))
	}
	if r.ShouldSpawn(transmitted) {
		out = append(out, r.Spawn(
			hit.Point.Add(r.Dir.Scale(spawnOffset)),
			r.Dir,
			transmitted,
			r.Phase,
			r.CloneJones(),
			r.MediumIndex,
		))
	}
	return out
}

func (bs *BeamSplitter) Properties() []Property {
	return []Property{
		{Name: "length", Label: "Length", Value: bs.length, Min: minFeatureSize, Max: 10000},
		{Name: "splitRatio", Label: "Split ratio (reflected)", Value: bs.splitRatio, Min: 0, Max: 1},
	}
}

func (bs *BeamSplitter) SetProperty(name string, value float64) error {
	switch name {
	case "length":
		bs.setLength(value)
	case "splitRatio":
		bs.splitRatio = clamp(value, 0, 1)
	default:
		return errUnknownProperty(KindBeamSplitter, name)
	}
	return nil
}
