package collab

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/lumabench/lumabench/backend-go/internal/document"
	"github.com/lumabench/lumabench/backend-go/internal/optics"
)

func newTestState() *DocumentState {
	doc := document.NewEmptyDocument("proj_collab", "Shared bench")
	doc.Components["comp_pol"] = optics.Blueprint{
		ID: "comp_pol", Type: optics.KindPolarizer, Label: "Polarizer",
		X: 100, Y: 200, Angle: 0,
		Params: map[string]float64{"length": 60, "transmissionAxis": 0},
	}
	vertical := math.Pi / 2
	doc.Sources["src_laser"] = document.Source{
		ID: "src_laser", Label: "Laser", X: 20, Y: 200,
		WavelengthNm: 633, Intensity: 1, PolarizationAngle: &vertical,
	}
	return NewDocumentState(doc)
}

func f64(v float64) *float64 { return &v }

func TestApplyOperationIncrementsServerSeq(t *testing.T) {
	ds := newTestState()
	if ds.ServerSeq() != 0 {
		t.Fatalf("initial serverSeq = %d, want 0", ds.ServerSeq())
	}

	seq, err := ds.ApplyOperation(Operation{
		Type: "component.move", ObjectID: "comp_pol", X: f64(150), Y: f64(250),
	})
	if err != nil {
		t.Fatalf("ApplyOperation: %v", err)
	}
	if seq != 1 {
		t.Errorf("seq = %d, want 1", seq)
	}

	seq, err = ds.ApplyOperation(Operation{
		Type: "component.rotate", ObjectID: "comp_pol", Angle: f64(math.Pi / 4),
	})
	if err != nil {
		t.Fatalf("ApplyOperation: %v", err)
	}
	if seq != 2 {
		t.Errorf("seq = %d, want 2", seq)
	}
}

func TestFailedOperationDoesNotAdvanceSeq(t *testing.T) {
	ds := newTestState()
	if _, err := ds.ApplyOperation(Operation{Type: "component.move", ObjectID: "comp_missing", X: f64(0)}); err == nil {
		t.Fatal("expected error for missing component")
	}
	if ds.ServerSeq() != 0 {
		t.Errorf("serverSeq advanced to %d after failed op", ds.ServerSeq())
	}
}

func TestComponentOperations(t *testing.T) {
	t.Run("move", func(t *testing.T) {
		ds := newTestState()
		if _, err := ds.ApplyOperation(Operation{
			Type: "component.move", ObjectID: "comp_pol", X: f64(300), Y: f64(400),
		}); err != nil {
			t.Fatal(err)
		}
		bp := ds.GetDocument().Components["comp_pol"]
		if bp.X != 300 || bp.Y != 400 {
			t.Errorf("position = (%v, %v), want (300, 400)", bp.X, bp.Y)
		}
	})

	t.Run("rotate", func(t *testing.T) {
		ds := newTestState()
		if _, err := ds.ApplyOperation(Operation{
			Type: "component.rotate", ObjectID: "comp_pol", Angle: f64(1.25),
		}); err != nil {
			t.Fatal(err)
		}
		if got := ds.GetDocument().Components["comp_pol"].Angle; got != 1.25 {
			t.Errorf("angle = %v, want 1.25", got)
		}
	})

	t.Run("rotate without angle", func(t *testing.T) {
		ds := newTestState()
		if _, err := ds.ApplyOperation(Operation{
			Type: "component.rotate", ObjectID: "comp_pol",
		}); err == nil {
			t.Error("expected error for missing angle")
		}
	})

	t.Run("param", func(t *testing.T) {
		ds := newTestState()
		if _, err := ds.ApplyOperation(Operation{
			Type: "component.param", ObjectID: "comp_pol", Param: "transmissionAxis", Value: f64(0.5),
		}); err != nil {
			t.Fatal(err)
		}
		if got := ds.GetDocument().Components["comp_pol"].Params["transmissionAxis"]; got != 0.5 {
			t.Errorf("transmissionAxis = %v, want 0.5", got)
		}
	})

	t.Run("create", func(t *testing.T) {
		ds := newTestState()
		bp := optics.Blueprint{
			ID: "comp_mirror", Type: optics.KindMirror,
			X: 500, Y: 200,
			Params: map[string]float64{"length": 60, "reflectivity": 1},
		}
		raw, _ := json.Marshal(bp)
		if _, err := ds.ApplyOperation(Operation{
			Type: "component.create", Component: raw,
		}); err != nil {
			t.Fatal(err)
		}
		if _, ok := ds.GetDocument().Components["comp_mirror"]; !ok {
			t.Error("created component not in document")
		}
	})

	t.Run("create rejects unknown type", func(t *testing.T) {
		ds := newTestState()
		raw, _ := json.Marshal(optics.Blueprint{ID: "comp_x", Type: "prism"})
		if _, err := ds.ApplyOperation(Operation{
			Type: "component.create", Component: raw,
		}); err == nil {
			t.Error("expected error for non-compilable component")
		}
	})

	t.Run("create rejects missing id", func(t *testing.T) {
		ds := newTestState()
		raw, _ := json.Marshal(optics.Blueprint{Type: optics.KindMirror})
		if _, err := ds.ApplyOperation(Operation{
			Type: "component.create", Component: raw,
		}); err == nil {
			t.Error("expected error for blank id")
		}
	})

	t.Run("delete", func(t *testing.T) {
		ds := newTestState()
		if _, err := ds.ApplyOperation(Operation{
			Type: "component.delete", ObjectID: "comp_pol",
		}); err != nil {
			t.Fatal(err)
		}
		if _, ok := ds.GetDocument().Components["comp_pol"]; ok {
			t.Error("deleted component still in document")
		}
	})
}

func TestSourceOperations(t *testing.T) {
	t.Run("move", func(t *testing.T) {
		ds := newTestState()
		if _, err := ds.ApplyOperation(Operation{
			Type: "source.move", ObjectID: "src_laser", X: f64(40), Y: f64(60),
		}); err != nil {
			t.Fatal(err)
		}
		src := ds.GetDocument().Sources["src_laser"]
		if src.X != 40 || src.Y != 60 {
			t.Errorf("position = (%v, %v), want (40, 60)", src.X, src.Y)
		}
	})

	t.Run("rotate", func(t *testing.T) {
		ds := newTestState()
		if _, err := ds.ApplyOperation(Operation{
			Type: "source.rotate", ObjectID: "src_laser", Angle: f64(math.Pi),
		}); err != nil {
			t.Fatal(err)
		}
		if got := ds.GetDocument().Sources["src_laser"].Angle; got != math.Pi {
			t.Errorf("angle = %v, want pi", got)
		}
	})

	t.Run("update fields", func(t *testing.T) {
		ds := newTestState()
		if _, err := ds.ApplyOperation(Operation{
			Type: "source.update", ObjectID: "src_laser",
			Source: json.RawMessage(`{"wavelengthNm": 532, "intensity": 0.8}`),
		}); err != nil {
			t.Fatal(err)
		}
		src := ds.GetDocument().Sources["src_laser"]
		if src.WavelengthNm != 532 || src.Intensity != 0.8 {
			t.Errorf("got wavelength %v intensity %v", src.WavelengthNm, src.Intensity)
		}
		if src.PolarizationAngle == nil {
			t.Error("polarization cleared by unrelated update")
		}
	})

	t.Run("update clears polarization with explicit null", func(t *testing.T) {
		ds := newTestState()
		if _, err := ds.ApplyOperation(Operation{
			Type: "source.update", ObjectID: "src_laser",
			Source: json.RawMessage(`{"polarizationAngle": null}`),
		}); err != nil {
			t.Fatal(err)
		}
		if ds.GetDocument().Sources["src_laser"].PolarizationAngle != nil {
			t.Error("explicit null did not clear polarization")
		}
	})

	t.Run("create and delete", func(t *testing.T) {
		ds := newTestState()
		raw, _ := json.Marshal(document.Source{
			ID: "src_b", Label: "Second laser", X: 10, Y: 10,
			WavelengthNm: 450, Intensity: 1,
		})
		if _, err := ds.ApplyOperation(Operation{Type: "source.create", Source: raw}); err != nil {
			t.Fatal(err)
		}
		if _, ok := ds.GetDocument().Sources["src_b"]; !ok {
			t.Fatal("created source not in document")
		}
		if _, err := ds.ApplyOperation(Operation{Type: "source.delete", ObjectID: "src_b"}); err != nil {
			t.Fatal(err)
		}
		if _, ok := ds.GetDocument().Sources["src_b"]; ok {
			t.Error("deleted source still in document")
		}
	})
}

func TestBenchUpdate(t *testing.T) {
	ds := newTestState()
	if _, err := ds.ApplyOperation(Operation{
		Type:    "bench.update",
		Changes: json.RawMessage(`{"width": 1920, "height": 1080, "background": "#000000"}`),
	}); err != nil {
		t.Fatal(err)
	}
	bench := ds.GetDocument().Bench
	if bench.Width != 1920 || bench.Height != 1080 || bench.Background != "#000000" {
		t.Errorf("bench = %+v", bench)
	}
}

func TestProjectRename(t *testing.T) {
	ds := newTestState()
	if _, err := ds.ApplyOperation(Operation{
		Type: "project.rename", Name: "Michelson setup",
	}); err != nil {
		t.Fatal(err)
	}
	if got := ds.GetDocument().Project.Name; got != "Michelson setup" {
		t.Errorf("project name = %q", got)
	}
}

func TestUnknownOperationType(t *testing.T) {
	ds := newTestState()
	if _, err := ds.ApplyOperation(Operation{Type: "component.explode", ObjectID: "comp_pol"}); err == nil {
		t.Error("expected error for unknown operation type")
	}
}
