package optics

import (
	"math"

	"github.com/lumabench/lumabench/backend-go/internal/geom"
)

// TerminationReason records why a ray stopped propagating.
type TerminationReason string

const (
	ReasonSplitBS       TerminationReason = "split_bs"
	ReasonSplitPBS      TerminationReason = "split_pbs"
	ReasonPassRotator   TerminationReason = "pass_rotator_surface"
	ReasonReflectMirror TerminationReason = "reflect_mirror"
	ReasonPassPolarizer TerminationReason = "pass_polarizer"
	ReasonPassWaveplate TerminationReason = "pass_waveplate"
	ReasonPassLens      TerminationReason = "pass_lens"
	ReasonPassAperture  TerminationReason = "pass_aperture"
	ReasonHitAperture   TerminationReason = "hit_aperture"
	ReasonAbsorbed      TerminationReason = "absorbed_detector"
	ReasonMaxBounces    TerminationReason = "max_bounces"
	ReasonEscaped       TerminationReason = "escaped"
	ReasonRayBudget     TerminationReason = "ray_budget"
)

// Ray is the unit of propagating light. A ray is either active (eligible for
// intersection search) or terminated (frozen); a terminated ray never spawns
// further children.
type Ray struct {
	Origin geom.Vec2
	Dir    geom.Vec2 // unit direction

	Intensity    float64 // relative units, >= 0
	WavelengthNm float64
	Phase        float64 // radians, not reduced mod 2pi
	MediumIndex  float64 // refractive index of the medium the ray travels in

	// Jones is the optional polarization state. A nil Jones means the ray is
	// treated as unpolarized by splitting components.
	Jones *Jones

	Bounces  int
	SourceID string

	// History is the ordered list of points the lineage has visited, used
	// only for rendering and export, never by the physics.
	History []geom.Vec2

	// MinIntensity is the spawn-gating floor: a child branch below it is not
	// created unless IgnoreDecay is set.
	MinIntensity float64
	IgnoreDecay  bool

	terminated bool
	Reason     TerminationReason
}

// NewRay creates an active ray. The direction is normalized; a degenerate
// direction yields a ray that will never intersect anything.
func NewRay(origin, dir geom.Vec2, wavelengthNm, intensity, phase float64, mediumIndex float64, sourceID string) *Ray {
	return &Ray{
		Origin:       origin,
		Dir:          dir.Normalize(),
		Intensity:    intensity,
		WavelengthNm: wavelengthNm,
		Phase:        phase,
		MediumIndex:  mediumIndex,
		SourceID:     sourceID,
		History:      []geom.Vec2{origin},
	}
}

// At returns the point at parameter t along the ray.
func (r *Ray) At(t float64) geom.Vec2 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// HasJones reports whether the ray carries a definite polarization state.
func (r *Ray) HasJones() bool {
	return r.Jones != nil
}

// EnsureJones lazily constructs a linear polarization state at the given
// reference angle if the ray has none, scaled so the Jones energy matches the
// ray's scalar intensity. Polarization-sensitive components call this before
// consuming the state.
func (r *Ray) EnsureJones(angle float64) {
	if r.Jones != nil {
		return
	}
	j := NewLinearJones(angle)
	if r.Intensity > 0 {
		j = j.Scale(complex(math.Sqrt(r.Intensity), 0))
	}
	r.Jones = &j
}

// CloneJones returns a copy of the ray's polarization state, or nil.
func (r *Ray) CloneJones() *Jones {
	if r.Jones == nil {
		return nil
	}
	j := *r.Jones
	return &j
}

// ShouldSpawn applies the universal spawn-gating rule: a child branch is
// instantiated only if its intensity clears the floor, unless decay pruning
// is disabled.
func (r *Ray) ShouldSpawn(intensity float64) bool {
	return r.IgnoreDecay || intensity >= r.MinIntensity
}

// Spawn creates a child ray seeded at the given origin, inheriting the
// parent's wavelength, lineage, policy flags and visit history. The bounce
// counter is incremented once per spawn.
func (r *Ray) Spawn(origin, dir geom.Vec2, intensity, phase float64, jones *Jones, mediumIndex float64) *Ray {
	history := make([]geom.Vec2, len(r.History), len(r.History)+1)
	copy(history, r.History)
	history = append(history, origin)

	return &Ray{
		Origin:       origin,
		Dir:          dir.Normalize(),
		Intensity:    intensity,
		WavelengthNm: r.WavelengthNm,
		Phase:        phase,
		MediumIndex:  mediumIndex,
		Jones:        jones,
		Bounces:      r.Bounces + 1,
		SourceID:     r.SourceID,
		History:      history,
		MinIntensity: r.MinIntensity,
		IgnoreDecay:  r.IgnoreDecay,
	}
}

// Terminate marks the ray non-propagating. Only the first call records a
// reason; repeated calls are no-ops and return false.
func (r *Ray) Terminate(reason TerminationReason) bool {
	if r.terminated {
		return false
	}
	r.terminated = true
	r.Reason = reason
	return true
}

// Terminated reports whether the ray has stopped propagating.
func (r *Ray) Terminated() bool {
	return r.terminated
}
