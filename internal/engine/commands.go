package engine

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/lumabench/lumabench/backend-go/internal/document"
	"github.com/lumabench/lumabench/backend-go/internal/geom"
	"github.com/lumabench/lumabench/backend-go/internal/optics"
)

// DrawCommand represents a single drawing operation for the frontend to
// execute on a Canvas2D context. Commands arrive in painter's order: bench
// background, ray segments, then component outlines on top.
type DrawCommand struct {
	Op       string    `json:"op"`                 // "bench", "ray", "component"
	ObjectID string    `json:"objectId,omitempty"` // for hit correlation
	Kind     string    `json:"kind,omitempty"`     // component kind for icon styling
	Points   []float64 `json:"points,omitempty"`   // flattened x,y pairs
	Closed   bool      `json:"closed,omitempty"`   // close the outline path
	Stroke   string    `json:"stroke,omitempty"`
	Fill     string    `json:"fill,omitempty"`
	Opacity  float64   `json:"opacity,omitempty"`
	Width    float64   `json:"width,omitempty"`
}

// CompileDrawCommands generates a draw command buffer from the document and
// the latest trace.
func CompileDrawCommands(doc *document.BenchDocument, components []optics.Component, trace *optics.Result) []DrawCommand {
	if doc == nil {
		return nil
	}

	commands := []DrawCommand{{
		Op:     "bench",
		Points: []float64{0, 0, float64(doc.Bench.Width), float64(doc.Bench.Height)},
		Fill:   doc.Bench.Background,
	}}

	if trace != nil {
		for _, seg := range trace.Segments {
			commands = append(commands, DrawCommand{
				Op:       "ray",
				ObjectID: seg.SourceID,
				Points:   []float64{seg.From.X, seg.From.Y, seg.To.X, seg.To.Y},
				Stroke:   wavelengthToColor(seg.WavelengthNm),
				Opacity:  rayOpacity(seg.Intensity),
				Width:    1.5,
			})
		}
	}

	for _, c := range components {
		commands = append(commands, componentCommand(c))
	}

	return commands
}

func componentCommand(c optics.Component) DrawCommand {
	cmd := DrawCommand{
		Op:       "component",
		ObjectID: c.ID(),
		Kind:     string(c.Kind()),
		Stroke:   "#d8d8e8",
		Width:    2,
		Opacity:  1,
	}

	switch body := c.(type) {
	case interface{ Corners() [4]geom.Vec2 }:
		// Box-shaped components expose their corners.
		for _, p := range body.Corners() {
			cmd.Points = append(cmd.Points, p.X, p.Y)
		}
		cmd.Closed = true
	case interface{ Endpoints() (geom.Vec2, geom.Vec2) }:
		a, b := body.Endpoints()
		cmd.Points = []float64{a.X, a.Y, b.X, b.Y}
	default:
		// Fall back to the bounding box outline.
		box := c.BoundingBox()
		cmd.Points = []float64{
			box.X, box.Y,
			box.X + box.Width, box.Y,
			box.X + box.Width, box.Y + box.Height,
			box.X, box.Y + box.Height,
		}
		cmd.Closed = true
	}

	return cmd
}

// rayOpacity maps intensity to a visible stroke alpha. Weak branches stay
// faintly visible instead of disappearing entirely.
func rayOpacity(intensity float64) float64 {
	if intensity <= 0 {
		return 0.05
	}
	return math.Min(1, 0.15+0.85*intensity)
}

// wavelengthToColor approximates the visible spectrum as an RGB hex color.
// Out-of-range wavelengths render as gray.
func wavelengthToColor(nm float64) string {
	var r, g, b float64

	switch {
	case nm >= 380 && nm < 440:
		r, g, b = -(nm-440)/(440-380), 0, 1
	case nm >= 440 && nm < 490:
		r, g, b = 0, (nm-440)/(490-440), 1
	case nm >= 490 && nm < 510:
		r, g, b = 0, 1, -(nm-510)/(510-490)
	case nm >= 510 && nm < 580:
		r, g, b = (nm-510)/(580-510), 1, 0
	case nm >= 580 && nm < 645:
		r, g, b = 1, -(nm-645)/(645-580), 0
	case nm >= 645 && nm <= 780:
		r, g, b = 1, 0, 0
	default:
		r, g, b = 0.7, 0.7, 0.7
	}

	return fmt.Sprintf("#%02x%02x%02x", int(r*255), int(g*255), int(b*255))
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
