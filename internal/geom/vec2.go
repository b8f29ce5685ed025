package geom

import "math"

// Vec2 represents a 2D vector or point on the bench plane.
// Operations return new values, receivers are never mutated.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewVec2 creates a new Vec2.
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// FromAngle returns the unit vector pointing at the given angle in radians.
func FromAngle(radians float64) Vec2 {
	return Vec2{X: math.Cos(radians), Y: math.Sin(radians)}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns the difference of two vectors.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns the vector scaled by a scalar.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product of two vectors.
func (v Vec2) Dot(other Vec2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the scalar (z) component of the 2D cross product.
func (v Vec2) Cross(other Vec2) float64 {
	return v.X*other.Y - v.Y*other.X
}

// LengthSquared returns the squared magnitude, avoiding the sqrt.
func (v Vec2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Length returns the magnitude of the vector.
func (v Vec2) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// Normalize returns a unit vector in the same direction.
// A near-zero vector normalizes to the zero vector rather than NaN.
func (v Vec2) Normalize() Vec2 {
	length := v.Length()
	if length < 1e-12 {
		return Vec2{}
	}
	return Vec2{v.X / length, v.Y / length}
}

// Rotate returns the vector rotated counter-clockwise by the given angle in radians.
func (v Vec2) Rotate(radians float64) Vec2 {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Perp returns the vector rotated 90 degrees counter-clockwise.
func (v Vec2) Perp() Vec2 {
	return Vec2{-v.Y, v.X}
}

// Reflect returns the mirror reflection of v about the given unit normal:
// r = v - 2*dot(v,n)*n.
func (v Vec2) Reflect(normal Vec2) Vec2 {
	return v.Sub(normal.Scale(2 * v.Dot(normal)))
}

// Angle returns the direction of the vector in radians.
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// DistanceTo returns the distance between two points.
func (v Vec2) DistanceTo(other Vec2) float64 {
	return v.Sub(other).Length()
}
