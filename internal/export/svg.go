package export

import (
	"fmt"
	"strings"

	"github.com/lumabench/lumabench/backend-go/internal/engine"
)

// RenderSVG serializes a draw command buffer into a standalone SVG document.
// Command order is painter's order, so bench first, then rays, then
// component outlines on top.
func RenderSVG(commands []engine.DrawCommand, width, height float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		ftoa(width), ftoa(height), ftoa(width), ftoa(height))
	b.WriteByte('\n')

	for _, cmd := range commands {
		switch cmd.Op {
		case "bench":
			writeBench(&b, cmd, width, height)
		case "ray":
			writePolyline(&b, cmd)
		case "component":
			writeOutline(&b, cmd)
		}
	}

	b.WriteString("</svg>\n")
	return b.String()
}

func writeBench(b *strings.Builder, cmd engine.DrawCommand, width, height float64) {
	fill := cmd.Fill
	if fill == "" {
		fill = "#ffffff"
	}
	fmt.Fprintf(b, `<rect x="0" y="0" width="%s" height="%s" fill="%s"/>`,
		ftoa(width), ftoa(height), fill)
	b.WriteByte('\n')
}

func writePolyline(b *strings.Builder, cmd engine.DrawCommand) {
	if len(cmd.Points) < 4 {
		return
	}
	width := cmd.Width
	if width <= 0 {
		width = 1.5
	}
	fmt.Fprintf(b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="%s" stroke-opacity="%s"/>`,
		pointsAttr(cmd.Points), cmd.Stroke, ftoa(width), ftoa(cmd.Opacity))
	b.WriteByte('\n')
}

func writeOutline(b *strings.Builder, cmd engine.DrawCommand) {
	if len(cmd.Points) < 4 {
		return
	}
	stroke := cmd.Stroke
	if stroke == "" {
		stroke = "#333333"
	}
	fill := cmd.Fill
	if fill == "" {
		fill = "none"
	}
	width := cmd.Width
	if width <= 0 {
		width = 2
	}

	if cmd.Closed {
		fmt.Fprintf(b, `<polygon points="%s" fill="%s" stroke="%s" stroke-width="%s"/>`,
			pointsAttr(cmd.Points), fill, stroke, ftoa(width))
	} else {
		fmt.Fprintf(b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="%s"/>`,
			pointsAttr(cmd.Points), stroke, ftoa(width))
	}
	b.WriteByte('\n')
}

func pointsAttr(points []float64) string {
	var b strings.Builder
	for i := 0; i+1 < len(points); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(ftoa(points[i]))
		b.WriteByte(',')
		b.WriteString(ftoa(points[i+1]))
	}
	return b.String()
}

// ftoa formats coordinates compactly, trimming trailing zeros.
func ftoa(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
