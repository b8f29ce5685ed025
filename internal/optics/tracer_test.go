package optics

import (
	"math"
	"testing"

	"github.com/lumabench/lumabench/backend-go/internal/geom"
)

func emit(origin, dir geom.Vec2, intensity float64) *Ray {
	return NewRay(origin, dir, 633, intensity, 0, 1.0, "src_test")
}

func findRay(rays []*Ray, reason TerminationReason) *Ray {
	for _, r := range rays {
		if r.Reason == reason {
			return r
		}
	}
	return nil
}

func TestTraceMirrorToDetector(t *testing.T) {
	// Source -> 45 degree mirror at (100, 0) -> detector above at (100, 80).
	mirror := NewMirror("comp_m", "Mirror", geom.NewVec2(100, 0), math.Pi/4, 60, 1.0)
	det := NewDetector("comp_d", "Detector", geom.NewVec2(100, 80), 0, 60)
	components := []Component{det, mirror}

	res := Trace(components, []*Ray{emit(geom.NewVec2(0, 0), geom.NewVec2(1, 0), 1.0)}, DefaultConfig())

	if len(res.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(res.Segments))
	}
	if res.Segments[0].HitID != "comp_m" {
		t.Errorf("first segment hit %q, want comp_m", res.Segments[0].HitID)
	}
	if res.Segments[1].HitID != "comp_d" {
		t.Errorf("second segment hit %q, want comp_d", res.Segments[1].HitID)
	}

	reading := det.Reading()
	if !approxEqual(reading.TotalIntensity, 1.0) {
		t.Errorf("detector reading = %v, want 1", reading.TotalIntensity)
	}
	if reading.RayCount != 1 {
		t.Errorf("detector ray count = %d, want 1", reading.RayCount)
	}

	for _, r := range res.Rays {
		if !r.Terminated() {
			t.Errorf("ray left active with reason %q", r.Reason)
		}
	}
}

func TestTraceEscapedRayDrawsToMaxDistance(t *testing.T) {
	cfg := DefaultConfig()
	res := Trace(nil, []*Ray{emit(geom.NewVec2(5, 5), geom.NewVec2(0, 1), 1.0)}, cfg)

	if len(res.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(res.Segments))
	}
	seg := res.Segments[0]
	if seg.HitID != "" {
		t.Errorf("escaped segment has hit id %q", seg.HitID)
	}
	if !approxEqual(seg.To.Y, 5+cfg.MaxDistance) {
		t.Errorf("escaped segment ends at %v, want y=%v", seg.To, 5+cfg.MaxDistance)
	}
	if res.Rays[0].Reason != ReasonEscaped {
		t.Errorf("reason = %q, want escaped", res.Rays[0].Reason)
	}
}

func TestTraceMaxBounces(t *testing.T) {
	// Two facing mirrors bounce the ray until the cap trips.
	left := NewMirror("comp_l", "Left", geom.NewVec2(0, 0), math.Pi/2, 60, 1.0)
	right := NewMirror("comp_r", "Right", geom.NewVec2(100, 0), math.Pi/2, 60, 1.0)
	components := []Component{left, right}

	cfg := DefaultConfig()
	cfg.MaxBounces = 5

	res := Trace(components, []*Ray{emit(geom.NewVec2(50, 0), geom.NewVec2(1, 0), 1.0)}, cfg)

	capped := findRay(res.Rays, ReasonMaxBounces)
	if capped == nil {
		t.Fatal("no ray terminated by the bounce cap")
	}
	if capped.Bounces != cfg.MaxBounces {
		t.Errorf("capped ray bounces = %d, want %d", capped.Bounces, cfg.MaxBounces)
	}
	// One segment per processed ray: the emitted ray plus one per bounce.
	if len(res.Segments) != cfg.MaxBounces+1 {
		t.Errorf("got %d segments, want %d", len(res.Segments), cfg.MaxBounces+1)
	}
}

func TestTraceRayBudget(t *testing.T) {
	// A chain of beam splitters doubles the ray count at each depth.
	var components []Component
	for i := 0; i < 6; i++ {
		components = append(components, NewBeamSplitter(
			"comp_bs"+string(rune('a'+i)), "BS",
			geom.NewVec2(float64(100+i*100), 0), math.Pi/4, 60, 0.5))
	}

	cfg := DefaultConfig()
	cfg.MaxRays = 8

	res := Trace(components, []*Ray{emit(geom.NewVec2(0, 0), geom.NewVec2(1, 0), 1.0)}, cfg)

	if !res.Truncated {
		t.Fatal("budget overflow not reported")
	}
	if findRay(res.Rays, ReasonRayBudget) == nil {
		t.Fatal("no ray terminated by the budget")
	}
	for _, r := range res.Rays {
		if !r.Terminated() {
			t.Error("active ray left after budget stop")
		}
	}
}

func TestTraceIntensityGating(t *testing.T) {
	// 10% splitter: after a few reflections the weak branch falls below the
	// gating floor and the tree stays small.
	bs := NewBeamSplitter("comp_bs", "BS", geom.NewVec2(100, 0), math.Pi/4, 60, 1e-5)

	cfg := DefaultConfig()
	res := Trace([]Component{bs}, []*Ray{emit(geom.NewVec2(0, 0), geom.NewVec2(1, 0), 1.0)}, cfg)

	// Reflected branch (1e-5) is below the 1e-4 floor: only the transmitted
	// child survives.
	if len(res.Rays) != 2 {
		t.Fatalf("got %d rays, want 2 (parent + transmitted)", len(res.Rays))
	}

	cfg.IgnoreDecay = true
	bs2 := NewBeamSplitter("comp_bs", "BS", geom.NewVec2(100, 0), math.Pi/4, 60, 1e-5)
	res2 := Trace([]Component{bs2}, []*Ray{emit(geom.NewVec2(0, 0), geom.NewVec2(1, 0), 1.0)}, cfg)
	if len(res2.Rays) != 3 {
		t.Fatalf("ignoreDecay trace got %d rays, want 3", len(res2.Rays))
	}
}

func TestTraceDeterministic(t *testing.T) {
	build := func() []Component {
		return []Component{
			NewBeamSplitter("comp_bs", "BS", geom.NewVec2(100, 0), math.Pi/4, 60, 0.5),
			NewMirror("comp_m", "Mirror", geom.NewVec2(100, 100), math.Pi/4, 60, 1.0),
			NewDetector("comp_d", "Detector", geom.NewVec2(250, 0), math.Pi/2, 60),
		}
	}

	run := func() *Result {
		return Trace(build(), []*Ray{emit(geom.NewVec2(0, 0), geom.NewVec2(1, 0), 1.0)}, DefaultConfig())
	}

	a, b := run(), run()
	if len(a.Segments) != len(b.Segments) {
		t.Fatalf("segment counts differ: %d vs %d", len(a.Segments), len(b.Segments))
	}
	for i := range a.Segments {
		sa, sb := a.Segments[i], b.Segments[i]
		if sa.From != sb.From || sa.To != sb.To || sa.HitID != sb.HitID || sa.Intensity != sb.Intensity {
			t.Errorf("segment %d differs: %+v vs %+v", i, sa, sb)
		}
	}
}

func TestTracePolarizationPipeline(t *testing.T) {
	// Horizontal light through a rotator (+45 degrees) then a PBS splits
	// fully into the transmission branch, since the rotated state lands on
	// the axis.
	fr := NewFaradayRotator("comp_fr", "Rotator", geom.NewVec2(100, 0), 0, 60, 30, math.Pi/4)
	pbs := NewPolarizingBeamSplitter("comp_pbs", "PBS", geom.NewVec2(300, 0), 0, 40, 40, 0.5)
	det := NewDetector("comp_d", "Detector", geom.NewVec2(450, 0), math.Pi/2, 60)
	components := []Component{fr, pbs, det}

	j := NewLinearJones(0)
	src := emit(geom.NewVec2(0, 0), geom.NewVec2(1, 0), 1.0)
	src.Jones = &j

	Trace(components, []*Ray{src}, DefaultConfig())

	reading := det.Reading()
	if !approxEqual(reading.TotalIntensity, 1.0) {
		t.Errorf("detector intensity = %v, want 1 (all transmitted)", reading.TotalIntensity)
	}
	if reading.RayCount != 1 {
		t.Errorf("detector ray count = %d, want 1", reading.RayCount)
	}
}
