package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Transform represents an affine 3D transformation
//
//	p' = A*p + t
//
// The zero value of Transform is the identity transform.
type Transform struct {
	// in order to make the zero value of Transform represent the identity
	// transform the linear part is stored with the identity subtracted,
	// that is d[i][i] = A[i][i]-1 and d[i][j] = A[i][j] otherwise.
	d [3][3]float64
	t r3.Vec
}

// collapse is returned as the inverse of a singular Transform.
// It maps every point to the origin.
var collapse = Transform{d: [3][3]float64{{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}}}

// NewTransform returns a Transform with a linear part populated with the
// 9 values of lin in row-major form followed by a translation.
func NewTransform(lin []float64, translation r3.Vec) Transform {
	if len(lin) != 9 {
		panic("Transform linear part is initialized with 9 values")
	}
	var t Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t.set(i, j, lin[3*i+j])
		}
	}
	t.t = translation
	return t
}

// ComposeTransform creates a new transform for a given translation to
// positon, scaling vector scale and quaternion rotation.
// The identity Transform is constructed with
//
//	ComposeTransform(Vec{}, Vec{1,1,1}, Rotation{})
func ComposeTransform(position, scale r3.Vec, q r3.Rotation) Transform {
	x2 := q.Imag + q.Imag
	y2 := q.Jmag + q.Jmag
	z2 := q.Kmag + q.Kmag
	xx, yy, zz := q.Imag*x2, q.Jmag*y2, q.Kmag*z2
	xy, xz, yz := q.Imag*y2, q.Imag*z2, q.Jmag*z2
	wx, wy, wz := q.Real*x2, q.Real*y2, q.Real*z2
	return NewTransform([]float64{
		(1 - (yy + zz)) * scale.X, (xy - wz) * scale.Y, (xz + wy) * scale.Z,
		(xy + wz) * scale.X, (1 - (xx + zz)) * scale.Y, (yz - wx) * scale.Z,
		(xz - wy) * scale.X, (yz + wx) * scale.Y, (1 - (xx + yy)) * scale.Z,
	}, position)
}

func (t Transform) at(i, j int) float64 {
	if i == j {
		return t.d[i][j] + 1
	}
	return t.d[i][j]
}

func (t *Transform) set(i, j int, v float64) {
	if i == j {
		v--
	}
	t.d[i][j] = v
}

// Transform applies the Transform to the argument vector
// and returns the result.
func (t Transform) Transform(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: (t.d[0][0]+1)*v.X + t.d[0][1]*v.Y + t.d[0][2]*v.Z + t.t.X,
		Y: t.d[1][0]*v.X + (t.d[1][1]+1)*v.Y + t.d[1][2]*v.Z + t.t.Y,
		Z: t.d[2][0]*v.X + t.d[2][1]*v.Y + (t.d[2][2]+1)*v.Z + t.t.Z,
	}
}

// Translation returns the translation component of t.
func (t Transform) Translation() r3.Vec { return t.t }

// Translate adds v to the translation of the Transform.
func (t Transform) Translate(v r3.Vec) Transform {
	t.t = r3.Add(t.t, v)
	return t
}

// Mul returns the Transform equivalent to applying b first and t second.
func (t Transform) Mul(b Transform) Transform {
	if t == (Transform{}) {
		return b
	}
	if b == (Transform{}) {
		return t
	}
	var m Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += t.at(i, k) * b.at(k, j)
			}
			m.set(i, j, sum)
		}
	}
	m.t = r3.Add(t.linear(b.t), t.t)
	return m
}

// linear applies only the linear part of t to v.
func (t Transform) linear(v r3.Vec) r3.Vec {
	return r3.Sub(t.Transform(v), t.t)
}

// Det returns the determinant of the Transform's linear part.
func (t Transform) Det() float64 {
	return t.at(0, 0)*(t.at(1, 1)*t.at(2, 2)-t.at(1, 2)*t.at(2, 1)) -
		t.at(0, 1)*(t.at(1, 0)*t.at(2, 2)-t.at(1, 2)*t.at(2, 0)) +
		t.at(0, 2)*(t.at(1, 0)*t.at(2, 1)-t.at(1, 1)*t.at(2, 0))
}

// Inv returns the inverse of the transform such that
// t.Inv().Mul(t) is the identity Transform.
// If the linear part is singular Inv returns a Transform that
// maps every point to the origin.
func (t Transform) Inv() Transform {
	if t == (Transform{}) {
		return t
	}
	det := t.Det()
	if math.Abs(det) < 1e-16 {
		return collapse
	}
	d := 1 / det
	var m Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			// Adjugate is the transpose of the cofactor matrix.
			r0, r1 := (j+1)%3, (j+2)%3
			c0, c1 := (i+1)%3, (i+2)%3
			cof := t.at(r0, c0)*t.at(r1, c1) - t.at(r0, c1)*t.at(r1, c0)
			m.set(i, j, cof*d)
		}
	}
	m.t = r3.Scale(-1, m.linear(t.t))
	return m
}

// Equals tests the equality of the Transforms to within a tolerance.
func (t Transform) Equals(b Transform, tol float64) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(t.d[i][j]-b.d[i][j]) > tol {
				return false
			}
		}
	}
	return EqualWithin(t.t, b.t, tol)
}
