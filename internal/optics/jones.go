package optics

import (
	"math"
	"math/cmplx"
)

// Jones represents a transverse polarization state as a pair of complex
// field amplitudes along two orthogonal reference axes.
type Jones struct {
	Ex complex128
	Ey complex128
}

// NewLinearJones creates a unit-amplitude linear polarization state at the
// given angle (radians) from the reference x axis.
func NewLinearJones(angle float64) Jones {
	return Jones{
		Ex: complex(math.Cos(angle), 0),
		Ey: complex(math.Sin(angle), 0),
	}
}

// Intensity returns the total field energy |Ex|^2 + |Ey|^2.
func (j Jones) Intensity() float64 {
	ax := cmplx.Abs(j.Ex)
	ay := cmplx.Abs(j.Ey)
	return ax*ax + ay*ay
}

// Scale returns the state with both components multiplied by a complex factor.
func (j Jones) Scale(s complex128) Jones {
	return Jones{Ex: j.Ex * s, Ey: j.Ey * s}
}

// JonesMat is a 2x2 complex operator acting on Jones vectors.
// Layout: [[A, B], [C, D]].
type JonesMat struct {
	A, B complex128
	C, D complex128
}

// Apply transforms a Jones vector by the matrix.
func (m JonesMat) Apply(j Jones) Jones {
	return Jones{
		Ex: m.A*j.Ex + m.B*j.Ey,
		Ey: m.C*j.Ex + m.D*j.Ey,
	}
}

// Mul returns the matrix product m * other (other is applied first).
func (m JonesMat) Mul(other JonesMat) JonesMat {
	return JonesMat{
		A: m.A*other.A + m.B*other.C,
		B: m.A*other.B + m.B*other.D,
		C: m.C*other.A + m.D*other.C,
		D: m.C*other.B + m.D*other.D,
	}
}

// RotationMat returns the real rotation operator R(theta) that rotates a
// polarization state counter-clockwise by theta radians.
func RotationMat(theta float64) JonesMat {
	c := complex(math.Cos(theta), 0)
	s := complex(math.Sin(theta), 0)
	return JonesMat{A: c, B: -s, C: s, D: c}
}

// ProjectorMat returns the real projection operator onto the linear
// polarization axis at the given angle: [[c^2, cs], [cs, s^2]].
func ProjectorMat(angle float64) JonesMat {
	c := math.Cos(angle)
	s := math.Sin(angle)
	return JonesMat{
		A: complex(c*c, 0), B: complex(c*s, 0),
		C: complex(c*s, 0), D: complex(s*s, 0),
	}
}

// RetarderMat returns the operator of a linear retarder with its fast axis at
// the given angle and the given phase retardance between the axes:
// R(angle) * diag(1, e^{i*retardance}) * R(-angle).
func RetarderMat(angle, retardance float64) JonesMat {
	diag := JonesMat{A: 1, D: cmplx.Exp(complex(0, retardance))}
	return RotationMat(angle).Mul(diag).Mul(RotationMat(-angle))
}
