package optics

import (
	"fmt"
	"math"

	"github.com/lumabench/lumabench/backend-go/internal/geom"
)

const (
	// hitEpsilon is the minimum forward distance for an intersection,
	// rejecting re-hits of the surface a ray was just spawned on.
	hitEpsilon = 1e-6

	// spawnOffset nudges a child ray's origin along its outgoing direction
	// so it does not immediately re-intersect the surface it left.
	spawnOffset = 1e-4

	// minDeterminant guards the line-intersection solve against parallel or
	// degenerate (near-zero-length) edges.
	minDeterminant = 1e-12

	// minFeatureSize is the smallest accepted length/width/height of a
	// component; setters clamp below it.
	minFeatureSize = 1.0
)

// Kind identifies a concrete component type.
type Kind string

const (
	KindMirror         Kind = "mirror"
	KindBeamSplitter   Kind = "beam_splitter"
	KindPBS            Kind = "polarizing_beam_splitter"
	KindFaradayRotator Kind = "faraday_rotator"
	KindPolarizer      Kind = "polarizer"
	KindWaveplate      Kind = "waveplate"
	KindLens           Kind = "lens"
	KindAperture       Kind = "aperture"
	KindDetector       Kind = "detector"
)

// SurfaceHit describes one forward intersection of a ray with a component
// surface. Normal always opposes the incoming ray direction; Outward is the
// geometrically natural surface normal, kept for components that distinguish
// entering from exiting.
type SurfaceHit struct {
	Distance float64
	Point    geom.Vec2
	Normal   geom.Vec2
	Outward  geom.Vec2
	Surface  int
}

// Property describes one editable physical parameter, consumed by the
// property-inspector UI. Setters clamp to [Min, Max].
type Property struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Component is a placed optical element. Every concrete component encodes one
// physical interaction law through the Intersect/Interact pair.
type Component interface {
	ID() string
	Kind() Kind
	Label() string

	Position() geom.Vec2
	Angle() float64
	SetPosition(p geom.Vec2)
	SetAngle(radians float64)

	// Intersect returns all forward intersections (t > epsilon) of the ray
	// origin + t*dir with the component's surfaces, nearest first.
	Intersect(origin, dir geom.Vec2) []SurfaceHit

	// Interact consumes the striking ray, terminating it exactly once, and
	// returns the newly spawned child rays (possibly none).
	Interact(r *Ray, hit SurfaceHit) []*Ray

	// BoundingBox returns the axis-aligned box of the component's geometry,
	// used by selection, export and minimap layers.
	BoundingBox() geom.Rect

	Properties() []Property
	SetProperty(name string, value float64) error
}

// intersectSegment solves origin + t*dir = a + u*(b-a) for the ray parameter t
// and the edge parameter u in [0, 1]. Parallel or degenerate configurations
// return ok=false instead of dividing by a near-zero determinant.
func intersectSegment(origin, dir, a, b geom.Vec2) (t float64, u float64, ok bool) {
	edge := b.Sub(a)
	det := dir.Cross(edge)
	if math.Abs(det) < minDeterminant {
		return 0, 0, false
	}

	w := a.Sub(origin)
	t = w.Cross(edge) / det
	u = w.Cross(dir) / det
	if t <= hitEpsilon || u < 0 || u > 1 {
		return 0, 0, false
	}
	return t, u, true
}

// opposing flips n if it points along dir, so the returned normal always
// opposes the incoming ray.
func opposing(n, dir geom.Vec2) geom.Vec2 {
	if n.Dot(dir) > 0 {
		return n.Scale(-1)
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// flatBody is the shared geometry lifecycle for single-surface components: a
// line segment of the given length, centered on the position, oriented along
// the angle. World-space endpoints and normal are cached and recomputed
// whenever placement or size changes.
type flatBody struct {
	id    string
	kind  Kind
	label string

	pos    geom.Vec2
	angle  float64 // radians
	length float64

	a, b   geom.Vec2 // cached endpoints
	normal geom.Vec2 // cached unit normal (natural orientation)
}

func newFlatBody(id string, kind Kind, label string, pos geom.Vec2, angle, length float64) flatBody {
	f := flatBody{id: id, kind: kind, label: label, pos: pos, angle: angle, length: math.Max(length, minFeatureSize)}
	f.recompute()
	return f
}

func (f *flatBody) recompute() {
	along := geom.FromAngle(f.angle)
	half := along.Scale(f.length / 2)
	f.a = f.pos.Sub(half)
	f.b = f.pos.Add(half)
	f.normal = along.Perp()
}

func (f *flatBody) ID() string    { return f.id }
func (f *flatBody) Kind() Kind    { return f.kind }
func (f *flatBody) Label() string { return f.label }

func (f *flatBody) Position() geom.Vec2 { return f.pos }
func (f *flatBody) Angle() float64      { return f.angle }

func (f *flatBody) SetPosition(p geom.Vec2) {
	f.pos = p
	f.recompute()
}

func (f *flatBody) SetAngle(radians float64) {
	f.angle = radians
	f.recompute()
}

// Endpoints returns the cached world-space segment.
func (f *flatBody) Endpoints() (geom.Vec2, geom.Vec2) {
	return f.a, f.b
}

func (f *flatBody) Intersect(origin, dir geom.Vec2) []SurfaceHit {
	t, _, ok := intersectSegment(origin, dir, f.a, f.b)
	if !ok {
		return nil
	}

	return []SurfaceHit{{
		Distance: t,
		Point:    origin.Add(dir.Scale(t)),
		Normal:   opposing(f.normal, dir),
		Outward:  f.normal,
		Surface:  0,
	}}
}

func (f *flatBody) BoundingBox() geom.Rect {
	return geom.RectFromPoints(f.a, f.b)
}

// axisOffset returns the signed offset of a point from the segment center,
// measured along the segment direction.
func (f *flatBody) axisOffset(p geom.Vec2) float64 {
	return p.Sub(f.pos).Dot(geom.FromAngle(f.angle))
}

func (f *flatBody) setLength(v float64) {
	f.length = math.Max(v, minFeatureSize)
	f.recompute()
}

// boxBody is the shared geometry lifecycle for rectangular components: four
// world-space edges, each independently intersectable, with cached corners
// and outward edge normals.
type boxBody struct {
	id    string
	kind  Kind
	label string

	pos    geom.Vec2
	angle  float64
	width  float64
	height float64

	corners [4]geom.Vec2
	normals [4]geom.Vec2 // outward normal of edge i (corner i -> corner i+1)
}

func newBoxBody(id string, kind Kind, label string, pos geom.Vec2, angle, width, height float64) boxBody {
	b := boxBody{
		id: id, kind: kind, label: label,
		pos: pos, angle: angle,
		width:  math.Max(width, minFeatureSize),
		height: math.Max(height, minFeatureSize),
	}
	b.recompute()
	return b
}

func (b *boxBody) recompute() {
	hw, hh := b.width/2, b.height/2
	local := [4]geom.Vec2{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	}
	for i, c := range local {
		b.corners[i] = c.Rotate(b.angle).Add(b.pos)
	}
	for i := range b.corners {
		a := b.corners[i]
		c := b.corners[(i+1)%4]
		n := c.Sub(a).Perp().Normalize()
		mid := a.Add(c).Scale(0.5)
		if n.Dot(mid.Sub(b.pos)) < 0 {
			n = n.Scale(-1)
		}
		b.normals[i] = n
	}
}

func (b *boxBody) ID() string    { return b.id }
func (b *boxBody) Kind() Kind    { return b.kind }
func (b *boxBody) Label() string { return b.label }

func (b *boxBody) Position() geom.Vec2 { return b.pos }
func (b *boxBody) Angle() float64      { return b.angle }

func (b *boxBody) SetPosition(p geom.Vec2) {
	b.pos = p
	b.recompute()
}

func (b *boxBody) SetAngle(radians float64) {
	b.angle = radians
	b.recompute()
}

// Corners returns the cached world-space corners in winding order.
func (b *boxBody) Corners() [4]geom.Vec2 {
	return b.corners
}

// Intersect tests all four edges and returns only the nearest forward hit.
func (b *boxBody) Intersect(origin, dir geom.Vec2) []SurfaceHit {
	best := SurfaceHit{Distance: math.Inf(1)}
	found := false

	for i := 0; i < 4; i++ {
		a := b.corners[i]
		c := b.corners[(i+1)%4]
		t, _, ok := intersectSegment(origin, dir, a, c)
		if !ok || t >= best.Distance {
			continue
		}
		best = SurfaceHit{
			Distance: t,
			Point:    origin.Add(dir.Scale(t)),
			Normal:   opposing(b.normals[i], dir),
			Outward:  b.normals[i],
			Surface:  i,
		}
		found = true
	}

	if !found {
		return nil
	}
	return []SurfaceHit{best}
}

func (b *boxBody) BoundingBox() geom.Rect {
	return geom.RectFromPoints(b.corners[0], b.corners[1], b.corners[2], b.corners[3])
}

func (b *boxBody) setWidth(v float64) {
	b.width = math.Max(v, minFeatureSize)
	b.recompute()
}

func (b *boxBody) setHeight(v float64) {
	b.height = math.Max(v, minFeatureSize)
	b.recompute()
}

func errUnknownProperty(kind Kind, name string) error {
	return fmt.Errorf("%s has no property %q", kind, name)
}
