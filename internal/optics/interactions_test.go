package optics

import (
	"math"
	"testing"

	"github.com/lumabench/lumabench/backend-go/internal/geom"
)

func vecApproxEqual(a, b geom.Vec2) bool {
	return approxEqual(a.X, b.X) && approxEqual(a.Y, b.Y)
}

// testRay emits a ray along +x from the left of the bench with the tracer's
// default gating floor stamped on, as Trace would.
func testRay(jones *Jones) *Ray {
	r := NewRay(geom.NewVec2(-50, 0), geom.NewVec2(1, 0), 633, 1.0, 0, 1.0, "src_test")
	r.Jones = jones
	r.MinIntensity = 1e-4
	return r
}

func hitOn(t *testing.T, c Component, r *Ray) SurfaceHit {
	t.Helper()
	hits := c.Intersect(r.Origin, r.Dir)
	if len(hits) == 0 {
		t.Fatalf("ray %v -> %v missed %s", r.Origin, r.Dir, c.ID())
	}
	return hits[0]
}

func TestMirrorReflects(t *testing.T) {
	tests := []struct {
		name    string
		angle   float64
		wantDir geom.Vec2
	}{
		{"normal incidence reverses", math.Pi / 2, geom.NewVec2(-1, 0)},
		{"45 degrees deflects up", math.Pi / 4, geom.NewVec2(0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMirror("comp_m", "Mirror", geom.NewVec2(10, 0), tt.angle, 60, 1.0)
			r := testRay(nil)
			hit := hitOn(t, m, r)

			children := m.Interact(r, hit)
			if !r.Terminated() || r.Reason != ReasonReflectMirror {
				t.Fatalf("parent not terminated with reflect_mirror: %v %q", r.Terminated(), r.Reason)
			}
			if len(children) != 1 {
				t.Fatalf("got %d children, want 1", len(children))
			}

			child := children[0]
			if !vecApproxEqual(child.Dir, tt.wantDir) {
				t.Errorf("reflected dir = %v, want %v", child.Dir, tt.wantDir)
			}
			if !approxEqual(child.Intensity, 1.0) {
				t.Errorf("intensity = %v, want 1", child.Intensity)
			}
			if !approxEqual(child.Phase, math.Pi) {
				t.Errorf("phase = %v, want pi", child.Phase)
			}
			if child.Bounces != 1 {
				t.Errorf("bounces = %d, want 1", child.Bounces)
			}
		})
	}
}

func TestMirrorReflectivityGatesSpawn(t *testing.T) {
	m := NewMirror("comp_m", "Mirror", geom.NewVec2(10, 0), math.Pi/2, 60, 1e-6)
	r := testRay(nil)
	hit := hitOn(t, m, r)

	children := m.Interact(r, hit)
	if len(children) != 0 {
		t.Fatalf("child below gating floor spawned anyway, intensity %v", children[0].Intensity)
	}
	if !r.Terminated() {
		t.Error("parent should terminate even when the branch is pruned")
	}
}

func TestBeamSplitterConservesEnergy(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
	}{
		{"balanced", 0.5},
		{"30/70", 0.3},
		{"90/10", 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs := NewBeamSplitter("comp_bs", "BS", geom.NewVec2(10, 0), math.Pi/4, 60, tt.ratio)
			r := testRay(nil)
			hit := hitOn(t, bs, r)

			children := bs.Interact(r, hit)
			if r.Reason != ReasonSplitBS {
				t.Fatalf("reason = %q, want split_bs", r.Reason)
			}
			if len(children) != 2 {
				t.Fatalf("got %d children, want 2", len(children))
			}

			reflected, transmitted := children[0], children[1]
			if !approxEqual(reflected.Intensity, tt.ratio) {
				t.Errorf("reflected intensity = %v, want %v", reflected.Intensity, tt.ratio)
			}
			if !approxEqual(transmitted.Intensity, 1-tt.ratio) {
				t.Errorf("transmitted intensity = %v, want %v", transmitted.Intensity, 1-tt.ratio)
			}
			if sum := reflected.Intensity + transmitted.Intensity; !approxEqual(sum, 1.0) {
				t.Errorf("energy not conserved: %v", sum)
			}
			if !approxEqual(reflected.Phase, math.Pi) {
				t.Errorf("reflected phase = %v, want pi", reflected.Phase)
			}
			if !approxEqual(transmitted.Phase, 0) {
				t.Errorf("transmitted phase = %v, want 0", transmitted.Phase)
			}
			if !vecApproxEqual(transmitted.Dir, geom.NewVec2(1, 0)) {
				t.Errorf("transmitted dir changed: %v", transmitted.Dir)
			}
		})
	}
}

func TestBeamSplitterInheritsJones(t *testing.T) {
	j := NewLinearJones(0.3)
	bs := NewBeamSplitter("comp_bs", "BS", geom.NewVec2(10, 0), math.Pi/4, 60, 0.5)
	r := testRay(&j)
	hit := hitOn(t, bs, r)

	for _, child := range bs.Interact(r, hit) {
		if child.Jones == nil {
			t.Fatal("child lost the polarization state")
		}
		if !jonesApproxEqual(*child.Jones, j) {
			t.Errorf("child Jones = %+v, want %+v", *child.Jones, j)
		}
	}
}

func TestPBSPolarizedSplit(t *testing.T) {
	// Cube at angle 0 has its diagonal at 45 degrees, so horizontal input
	// splits evenly between the transmission axis and its complement.
	pbs := NewPolarizingBeamSplitter("comp_pbs", "PBS", geom.NewVec2(10, 0), 0, 40, 40, 0.5)

	axis := pbs.axisAngle()
	if !approxEqual(axis, math.Pi/4) {
		t.Fatalf("axis angle = %v, want pi/4", axis)
	}

	j := NewLinearJones(0)
	r := testRay(&j)
	hit := hitOn(t, pbs, r)

	children := pbs.Interact(r, hit)
	if r.Reason != ReasonSplitPBS {
		t.Fatalf("reason = %q, want split_pbs", r.Reason)
	}
	if len(children) != 2 {
		t.Fatalf("got %d children, want 2", len(children))
	}

	reflected, transmitted := children[0], children[1]
	if !approxEqual(reflected.Intensity, 0.5) || !approxEqual(transmitted.Intensity, 0.5) {
		t.Errorf("split = %v / %v, want 0.5 / 0.5", reflected.Intensity, transmitted.Intensity)
	}
	if !vecApproxEqual(reflected.Dir, geom.NewVec2(0, 1)) {
		t.Errorf("reflected dir = %v, want up", reflected.Dir)
	}
	if !vecApproxEqual(transmitted.Dir, geom.NewVec2(1, 0)) {
		t.Errorf("transmitted dir = %v, want forward", transmitted.Dir)
	}
	if !approxEqual(reflected.Phase, math.Pi) {
		t.Errorf("reflected phase = %v, want pi", reflected.Phase)
	}
}

func TestPBSAlignedInputTransmitsFully(t *testing.T) {
	pbs := NewPolarizingBeamSplitter("comp_pbs", "PBS", geom.NewVec2(10, 0), 0, 40, 40, 0.5)

	j := NewLinearJones(math.Pi / 4) // along the transmission axis
	r := testRay(&j)
	hit := hitOn(t, pbs, r)

	children := pbs.Interact(r, hit)
	if len(children) != 1 {
		t.Fatalf("got %d children, want only the transmitted branch", len(children))
	}
	if !approxEqual(children[0].Intensity, 1.0) {
		t.Errorf("transmitted intensity = %v, want 1", children[0].Intensity)
	}
	if !vecApproxEqual(children[0].Dir, geom.NewVec2(1, 0)) {
		t.Errorf("transmitted dir = %v, want forward", children[0].Dir)
	}
}

func TestPBSUnpolarizedManufacturesStates(t *testing.T) {
	pbs := NewPolarizingBeamSplitter("comp_pbs", "PBS", geom.NewVec2(10, 0), 0, 40, 40, 0.3)

	r := testRay(nil)
	hit := hitOn(t, pbs, r)

	children := pbs.Interact(r, hit)
	if len(children) != 2 {
		t.Fatalf("got %d children, want 2", len(children))
	}

	reflected, transmitted := children[0], children[1]
	if !approxEqual(reflected.Intensity, 0.3) || !approxEqual(transmitted.Intensity, 0.7) {
		t.Errorf("split = %v / %v, want 0.3 / 0.7", reflected.Intensity, transmitted.Intensity)
	}

	// Both branches leave with definite states whose Jones energy matches
	// the scalar intensity.
	for i, child := range children {
		if child.Jones == nil {
			t.Fatalf("child %d has no polarization state", i)
		}
		if !approxEqual(child.Jones.Intensity(), child.Intensity) {
			t.Errorf("child %d Jones energy %v != intensity %v", i, child.Jones.Intensity(), child.Intensity)
		}
	}
}

func TestPBSCubeFacesAreInert(t *testing.T) {
	// A ray aimed below the diagonal's span must miss entirely even though
	// it would cross the cube footprint.
	pbs := NewPolarizingBeamSplitter("comp_pbs", "PBS", geom.NewVec2(10, 0), 0, 40, 40, 0.5)

	origin := geom.NewVec2(-50, -30)
	if hits := pbs.Intersect(origin, geom.NewVec2(1, 0)); len(hits) != 0 {
		t.Fatalf("expected miss below the diagonal, got %d hits", len(hits))
	}
}

func TestFaradayRotatorRotatesOnExitOnly(t *testing.T) {
	fr := NewFaradayRotator("comp_fr", "Rotator", geom.NewVec2(10, 0), 0, 60, 30, math.Pi/4)

	j := NewLinearJones(0)
	r := testRay(&j)
	entry := hitOn(t, fr, r)

	entered := fr.Interact(r, entry)
	if r.Reason != ReasonPassRotator {
		t.Fatalf("reason = %q, want pass_rotator_surface", r.Reason)
	}
	if len(entered) != 1 {
		t.Fatalf("entry produced %d children, want 1", len(entered))
	}

	inside := entered[0]
	if !approxEqual(inside.MediumIndex, 1.5) {
		t.Errorf("medium inside = %v, want 1.5", inside.MediumIndex)
	}
	if !jonesApproxEqual(*inside.Jones, j) {
		t.Errorf("entry rotated the state early: %+v", *inside.Jones)
	}

	exit := hitOn(t, fr, inside)
	exited := fr.Interact(inside, exit)
	if len(exited) != 1 {
		t.Fatalf("exit produced %d children, want 1", len(exited))
	}

	out := exited[0]
	if !approxEqual(out.MediumIndex, 1.0) {
		t.Errorf("medium after exit = %v, want 1", out.MediumIndex)
	}
	want := RotationMat(math.Pi / 4).Apply(j)
	if !jonesApproxEqual(*out.Jones, want) {
		t.Errorf("exit state = %+v, want %+v", *out.Jones, want)
	}
}

func TestPolarizerMalusLaw(t *testing.T) {
	tests := []struct {
		name          string
		inputAngle    float64
		axis          float64
		wantIntensity float64
	}{
		{"aligned", 0, 0, 1},
		{"crossed", 0, math.Pi / 2, 0},
		{"thirty degrees", 0, math.Pi / 6, 0.75},
		{"sixty degrees", 0, math.Pi / 3, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPolarizer("comp_p", "Polarizer", geom.NewVec2(10, 0), math.Pi/2, 60, tt.axis)
			j := NewLinearJones(tt.inputAngle)
			r := testRay(&j)
			hit := hitOn(t, p, r)

			children := p.Interact(r, hit)
			if tt.wantIntensity < 1e-4 {
				if len(children) != 0 {
					t.Fatalf("crossed polarizer leaked %v", children[0].Intensity)
				}
				return
			}
			if len(children) != 1 {
				t.Fatalf("got %d children, want 1", len(children))
			}
			if !approxEqual(children[0].Intensity, tt.wantIntensity) {
				t.Errorf("intensity = %v, want %v", children[0].Intensity, tt.wantIntensity)
			}
		})
	}
}

func TestPolarizerAssignsStateToUnpolarized(t *testing.T) {
	// An unpolarized ray first receives a horizontal state, so a polarizer
	// at 45 degrees passes half.
	p := NewPolarizer("comp_p", "Polarizer", geom.NewVec2(10, 0), math.Pi/2, 60, math.Pi/4)
	r := testRay(nil)
	hit := hitOn(t, p, r)

	children := p.Interact(r, hit)
	if len(children) != 1 {
		t.Fatalf("got %d children, want 1", len(children))
	}
	if !approxEqual(children[0].Intensity, 0.5) {
		t.Errorf("intensity = %v, want 0.5", children[0].Intensity)
	}
	if children[0].Jones == nil {
		t.Fatal("child should carry a definite state")
	}
}

func TestWaveplatePreservesIntensity(t *testing.T) {
	w := NewHalfWavePlate("comp_w", "HWP", geom.NewVec2(10, 0), math.Pi/2, 60, math.Pi/8)
	j := NewLinearJones(0)
	r := testRay(&j)
	hit := hitOn(t, w, r)

	children := w.Interact(r, hit)
	if r.Reason != ReasonPassWaveplate {
		t.Fatalf("reason = %q, want pass_waveplate", r.Reason)
	}
	if len(children) != 1 {
		t.Fatalf("got %d children, want 1", len(children))
	}

	child := children[0]
	if !approxEqual(child.Intensity, 1.0) {
		t.Errorf("intensity = %v, want 1", child.Intensity)
	}
	// Fast axis at pi/8 maps horizontal to 45 degrees.
	through := ProjectorMat(math.Pi / 4).Apply(*child.Jones).Intensity()
	if !approxEqual(through, child.Jones.Intensity()) {
		t.Errorf("output not along 45 degrees: %v of %v", through, child.Jones.Intensity())
	}
}

func TestLensParaxialDeflection(t *testing.T) {
	// A ray parallel to the optical axis at height h leaves with slope -h/f.
	lens := NewLens("comp_l", "Lens", geom.NewVec2(0, 0), math.Pi/2, 100, 100)

	r := NewRay(geom.NewVec2(-50, 20), geom.NewVec2(1, 0), 633, 1.0, 0, 1.0, "src_test")
	hit := hitOn(t, lens, r)

	children := lens.Interact(r, hit)
	if r.Reason != ReasonPassLens {
		t.Fatalf("reason = %q, want pass_lens", r.Reason)
	}
	if len(children) != 1 {
		t.Fatalf("got %d children, want 1", len(children))
	}

	dir := children[0].Dir
	slope := dir.Y / dir.X
	if !approxEqual(slope, -0.2) {
		t.Errorf("slope = %v, want -0.2", slope)
	}
}

func TestLensCentralRayUndeflected(t *testing.T) {
	lens := NewLens("comp_l", "Lens", geom.NewVec2(0, 0), math.Pi/2, 100, 100)
	r := testRay(nil)
	r.Origin = geom.NewVec2(-50, 0)
	hit := hitOn(t, lens, r)

	children := lens.Interact(r, hit)
	if len(children) != 1 {
		t.Fatalf("got %d children, want 1", len(children))
	}
	if !vecApproxEqual(children[0].Dir, geom.NewVec2(1, 0)) {
		t.Errorf("central ray deflected: %v", children[0].Dir)
	}
}

func TestApertureSlitGate(t *testing.T) {
	tests := []struct {
		name     string
		y        float64
		wantPass bool
	}{
		{"through slit center", 0, true},
		{"inside slit edge", 9, true},
		{"hits plate", 15, false},
		{"hits plate edge", 25, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAperture("comp_a", "Slit", geom.NewVec2(10, 0), math.Pi/2, 60, 20)
			r := NewRay(geom.NewVec2(-50, tt.y), geom.NewVec2(1, 0), 633, 1.0, 0, 1.0, "src_test")
			hit := hitOn(t, a, r)

			children := a.Interact(r, hit)
			if tt.wantPass {
				if r.Reason != ReasonPassAperture {
					t.Fatalf("reason = %q, want pass_aperture", r.Reason)
				}
				if len(children) != 1 {
					t.Fatalf("got %d children, want 1", len(children))
				}
				if !vecApproxEqual(children[0].Dir, r.Dir) {
					t.Errorf("slit changed direction: %v", children[0].Dir)
				}
			} else {
				if r.Reason != ReasonHitAperture {
					t.Fatalf("reason = %q, want hit_aperture", r.Reason)
				}
				if len(children) != 0 {
					t.Fatalf("absorbed ray spawned %d children", len(children))
				}
			}
		})
	}
}

func TestDetectorAccumulates(t *testing.T) {
	d := NewDetector("comp_d", "Detector", geom.NewVec2(10, 0), math.Pi/2, 60)

	first := testRay(nil)
	first.Intensity = 0.6
	first.Phase = 1.5
	d.Interact(first, hitOn(t, d, first))

	second := testRay(nil)
	second.Intensity = 0.25
	second.Phase = 2.5
	d.Interact(second, hitOn(t, d, second))

	reading := d.Reading()
	if !approxEqual(reading.TotalIntensity, 0.85) {
		t.Errorf("total intensity = %v, want 0.85", reading.TotalIntensity)
	}
	if reading.RayCount != 2 {
		t.Errorf("ray count = %d, want 2", reading.RayCount)
	}
	if !approxEqual(reading.LastPhase, 2.5) {
		t.Errorf("last phase = %v, want 2.5", reading.LastPhase)
	}
	if first.Reason != ReasonAbsorbed || second.Reason != ReasonAbsorbed {
		t.Error("detector must terminate absorbed rays")
	}

	d.ResetReading()
	if d.Reading() != (Reading{}) {
		t.Errorf("reset left %+v", d.Reading())
	}
}
