package geom

import "math"

// Rect represents an axis-aligned bounding box in world coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromPoints returns the smallest axis-aligned rect covering the given points.
func RectFromPoints(points ...Vec2) Rect {
	if len(points) == 0 {
		return Rect{}
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Contains checks if a point is inside the rect.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// EmptyRect returns the identity element for Union: a rect covering nothing.
// A zero-area rect is not empty; it is the valid extent of a point or of an
// axis-aligned segment.
func EmptyRect() Rect {
	return Rect{Width: -1, Height: -1}
}

// IsEmpty checks if the rect covers nothing at all.
func (r Rect) IsEmpty() bool {
	return r.Width < 0 || r.Height < 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.X+r.Width, other.X+other.Width)
	maxY := math.Max(r.Y+r.Height, other.Y+other.Height)

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Expand returns the rect grown by the given margin on every side.
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// Center returns the center point of the rect.
func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}
