package optics

import (
	"github.com/lumabench/lumabench/backend-go/internal/geom"
)

// Config bounds one trace pass. Branching scenes grow exponentially, so both
// the per-ray bounce count and the total ray budget are capped here rather
// than inside individual components.
type Config struct {
	MaxBounces   int
	MaxRays      int
	MaxDistance  float64 // draw length for rays that leave the bench
	MinIntensity float64 // spawn-gating floor stamped on emitted rays
	IgnoreDecay  bool    // disable pruning for always-trace diagnostic mode
}

// DefaultConfig returns the standard trace bounds.
func DefaultConfig() Config {
	return Config{
		MaxBounces:   64,
		MaxRays:      4096,
		MaxDistance:  10000,
		MinIntensity: 1e-4,
	}
}

// Segment is one straight run of a ray, used by rendering and export.
type Segment struct {
	From         geom.Vec2 `json:"from"`
	To           geom.Vec2 `json:"to"`
	Intensity    float64   `json:"intensity"`
	WavelengthNm float64   `json:"wavelengthNm"`
	SourceID     string    `json:"sourceId"`
	Bounces      int       `json:"bounces"`
	HitID        string    `json:"hitId,omitempty"` // component struck at To, empty if the ray escaped
}

// Result is the outcome of one trace pass. For a fixed scene and emitted ray
// set it is deterministic: components are visited in the caller's order and
// sibling branches never observe each other.
type Result struct {
	Segments  []Segment
	Rays      []*Ray // every ray processed, all terminated
	Truncated bool   // the ray budget cut the tree short
}

// Trace propagates the emitted rays through the scene with an explicit
// breadth-first work queue until every ray terminates or a bound is hit.
func Trace(components []Component, emitted []*Ray, cfg Config) *Result {
	res := &Result{}

	queue := make([]*Ray, 0, len(emitted))
	for _, r := range emitted {
		r.MinIntensity = cfg.MinIntensity
		r.IgnoreDecay = cfg.IgnoreDecay
		queue = append(queue, r)
	}
	total := len(queue)

	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]

		// A terminated ray must never re-enter the intersection search.
		if r.Terminated() {
			res.Rays = append(res.Rays, r)
			continue
		}

		comp, hit, found := nearestHit(components, r.Origin, r.Dir)
		if !found {
			res.Segments = append(res.Segments, segmentFor(r, r.At(cfg.MaxDistance), ""))
			r.Terminate(ReasonEscaped)
			res.Rays = append(res.Rays, r)
			continue
		}

		res.Segments = append(res.Segments, segmentFor(r, hit.Point, comp.ID()))

		if r.Bounces >= cfg.MaxBounces {
			r.Terminate(ReasonMaxBounces)
			res.Rays = append(res.Rays, r)
			continue
		}

		children := comp.Interact(r, hit)
		res.Rays = append(res.Rays, r)

		for _, child := range children {
			if total >= cfg.MaxRays {
				res.Truncated = true
				child.Terminate(ReasonRayBudget)
				res.Rays = append(res.Rays, child)
				continue
			}
			total++
			queue = append(queue, child)
		}
	}

	return res
}

// nearestHit searches all components for the closest forward intersection.
// Component order breaks exact distance ties, which keeps traces reproducible
// for a fixed scene.
func nearestHit(components []Component, origin, dir geom.Vec2) (Component, SurfaceHit, bool) {
	var bestComp Component
	var best SurfaceHit
	found := false

	for _, c := range components {
		for _, hit := range c.Intersect(origin, dir) {
			if !found || hit.Distance < best.Distance {
				best = hit
				bestComp = c
				found = true
			}
		}
	}

	return bestComp, best, found
}

func segmentFor(r *Ray, to geom.Vec2, hitID string) Segment {
	return Segment{
		From:         r.Origin,
		To:           to,
		Intensity:    r.Intensity,
		WavelengthNm: r.WavelengthNm,
		SourceID:     r.SourceID,
		Bounces:      r.Bounces,
		HitID:        hitID,
	}
}
