package optics

import (
	"math"

	"github.com/lumabench/lumabench/backend-go/internal/geom"
)

// jonesEnergyFloor guards the polarized-split scale factor against a
// near-zero pre-projection Jones energy.
const jonesEnergyFloor = 1e-12

// PolarizingBeamSplitter is a cube splitter whose optical surface is the
// diagonal between two opposite corners. The splitting axis angle is the
// direction of that diagonal: light polarized along it transmits, the
// orthogonal component reflects off the diagonal.
type PolarizingBeamSplitter struct {
	boxBody
	// reflectivity applies only when the incoming ray carries no
	// polarization state.
	reflectivity float64
}

// NewPolarizingBeamSplitter creates a PBS cube. The unpolarized reflectivity
// is clamped to [0, 1].
func NewPolarizingBeamSplitter(id, label string, pos geom.Vec2, angle, width, height, reflectivity float64) *PolarizingBeamSplitter {
	return &PolarizingBeamSplitter{
		boxBody:      newBoxBody(id, KindPBS, label, pos, angle, width, height),
		reflectivity: clamp(reflectivity, 0, 1),
	}
}

// diagonal returns the two characteristic corner points spanning the optical
// surface.
func (p *PolarizingBeamSplitter) diagonal() (geom.Vec2, geom.Vec2) {
	return p.corners[0], p.corners[2]
}

// axisAngle derives the splitting axis from the component's own edge
// geometry: the angle of the line between the two characteristic corners.
func (p *PolarizingBeamSplitter) axisAngle() float64 {
	a, b := p.diagonal()
	return b.Sub(a).Angle()
}

// Intersect tests the diagonal surface only; the cube faces are drawn but
// optically inert in this thin-interface model.
func (p *PolarizingBeamSplitter) Intersect(origin, dir geom.Vec2) []SurfaceHit {
	a, b := p.diagonal()
	t, _, ok := intersectSegment(origin, dir, a, b)
	if !ok {
		return nil
	}

	natural := b.Sub(a).Perp().Normalize()
	return []SurfaceHit{{
		Distance: t,
		Point:    origin.Add(dir.Scale(t)),
		Normal:   opposing(natural, dir),
		Outward:  natural,
		Surface:  0,
	}}
}

// Interact splits the beam by polarization. An unpolarized parent is divided
// by the configured reflectivity and each branch is assigned a freshly
// manufactured linear state along its own axis. A polarized parent is
// projected onto the transmission axis and its orthogonal complement, with
// the scalar intensity scaled by the projected-to-incident Jones energy ratio
// so the two representations stay consistent.
func (p *PolarizingBeamSplitter) Interact(r *Ray, hit SurfaceHit) []*Ray {
	defer r.Terminate(ReasonSplitPBS)

	axis := p.axisAngle()

	var transmitted, reflected float64
	var jT, jR Jones

	if !r.HasJones() {
		reflected = r.Intensity * p.reflectivity
		transmitted = r.Intensity * (1 - p.reflectivity)
		jT = NewLinearJones(axis)
		jR = NewLinearJones(axis + math.Pi/2)
		if transmitted > 0 {
			jT = jT.Scale(complex(math.Sqrt(transmitted), 0))
		}
		if reflected > 0 {
			jR = jR.Scale(complex(math.Sqrt(reflected), 0))
		}
	} else {
		pre := r.Jones.Intensity()
		jT = ProjectorMat(axis).Apply(*r.Jones)
		jR = ProjectorMat(axis + math.Pi/2).Apply(*r.Jones)

		var scaleT, scaleR float64
		if pre > jonesEnergyFloor {
			scaleT = jT.Intensity() / pre
			scaleR = jR.Intensity() / pre
		}
		transmitted = r.Intensity * scaleT
		reflected = r.Intensity * scaleR
	}

	var out []*Ray
	if r.ShouldSpawn(reflected) {
		dir := r.Dir.Reflect(hit.Normal)
		j := jR
		out = append(out, r.Spawn(
			hit.Point.Add(dir.Scale(spawnOffset)),
			dir,
			reflected,
			r.Phase+math.Pi,
			&j,
			r.MediumIndex,
		))
	}
	if r.ShouldSpawn(transmitted) {
		j := jT
		out = append(out, r.Spawn(
			hit.Point.Add(r.Dir.Scale(spawnOffset)),
			r.Dir,
			transmitted,
			r.Phase,
			&j,
			r.MediumIndex,
		))
	}
	return out
}

func (p *PolarizingBeamSplitter) Properties() []Property {
	return []Property{
		{Name: "width", Label: "Width", Value: p.width, Min: minFeatureSize, Max: 10000},
		{Name: "height", Label: "Height", Value: p.height, Min: minFeatureSize, Max: 10000},
		{Name: "reflectivity", Label: "Unpolarized reflectivity", Value: p.reflectivity, Min: 0, Max: 1},
	}
}

func (p *PolarizingBeamSplitter) SetProperty(name string, value float64) error {
	switch name {
	case "width":
		p.setWidth(value)
	case "height":
		p.setHeight(value)
	case "reflectivity":
		p.reflectivity = clamp(value, 0, 1)
	default:
		return errUnknownProperty(KindPBS, name)
	}
	return nil
}
