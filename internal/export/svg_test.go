package export

import (
	"strings"
	"testing"

	"github.com/lumabench/lumabench/backend-go/internal/engine"
)

func TestRenderSVGStructure(t *testing.T) {
	commands := []engine.DrawCommand{
		{Op: "bench", Fill: "#10101a"},
		{Op: "ray", Points: []float64{0, 100, 400, 100}, Stroke: "#ff0000", Opacity: 1, Width: 1.5},
		{Op: "component", ObjectID: "comp_mirror", Points: []float64{380, 80, 420, 120}, Stroke: "#d8d8e8", Width: 2},
		{Op: "component", ObjectID: "comp_bs", Points: []float64{0, 0, 40, 0, 40, 40, 0, 40}, Closed: true, Stroke: "#d8d8e8", Width: 2},
	}

	svg := RenderSVG(commands, 1280, 720)

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" width="1280" height="720" viewBox="0 0 1280 720">`,
		`<rect x="0" y="0" width="1280" height="720" fill="#10101a"/>`,
		`<polyline points="0,100 400,100" fill="none" stroke="#ff0000" stroke-width="1.5" stroke-opacity="1"/>`,
		`<polyline points="380,80 420,120" fill="none" stroke="#d8d8e8" stroke-width="2"/>`,
		`<polygon points="0,0 40,0 40,40 0,40" fill="none" stroke="#d8d8e8" stroke-width="2"/>`,
		"</svg>",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("missing %s in output:\n%s", want, svg)
		}
	}
}

func TestRenderSVGSkipsDegenerateShapes(t *testing.T) {
	commands := []engine.DrawCommand{
		{Op: "ray", Points: []float64{10, 10}, Stroke: "#ff0000"},
		{Op: "component", ObjectID: "comp_x", Points: nil},
	}

	svg := RenderSVG(commands, 100, 100)
	if strings.Contains(svg, "polyline") || strings.Contains(svg, "polygon") {
		t.Errorf("degenerate shapes emitted:\n%s", svg)
	}
}

func TestFtoa(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1280, "1280"},
		{1.5, "1.5"},
		{0.125, "0.125"},
		{0.1234, "0.123"},
		{0, "0"},
		{-3.25, "-3.25"},
	}

	for _, tt := range tests {
		if got := ftoa(tt.in); got != tt.want {
			t.Errorf("ftoa(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
