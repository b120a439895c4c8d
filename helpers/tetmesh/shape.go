package tetmesh

import (
	"errors"
	"math"

	"github.com/soypat/softbody/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// SDF3 is a signed distance function. Evaluate is negative inside the
// shape and positive outside. Bounds contains the whole shape.
type SDF3 interface {
	Evaluate(p r3.Vec) float64
	Bounds() r3.Box
}

type box struct {
	size  r3.Vec
	round float64
	bb    r3.Box
}

// Box returns an SDF3 for a box centered at the origin with rounded edges if round > 0.
func Box(size r3.Vec, round float64) (SDF3, error) {
	if d3.LTEZero(size) {
		return nil, errors.New("box size <= 0")
	}
	if round < 0 {
		return nil, errors.New("box round < 0")
	}
	size = r3.Scale(0.5, size)
	if round > math.Min(size.X, math.Min(size.Y, size.Z)) {
		return nil, errors.New("box round larger than half its smallest side")
	}
	return &box{
		size:  r3.Sub(size, d3.Elem(round)),
		round: round,
		bb:    r3.Box{Min: r3.Scale(-1, size), Max: size},
	}, nil
}

// Evaluate returns the minimum distance to the box.
func (s *box) Evaluate(p r3.Vec) float64 {
	return sdfBox3d(p, s.size) - s.round
}

func (s *box) Bounds() r3.Box { return s.bb }

type sphere struct {
	radius float64
	bb     r3.Box
}

// Sphere returns an SDF3 for a sphere centered at the origin.
func Sphere(radius float64) (SDF3, error) {
	if radius <= 0 {
		return nil, errors.New("sphere radius <= 0")
	}
	d := d3.Elem(radius)
	return &sphere{
		radius: radius,
		bb:     r3.Box{Min: r3.Scale(-1, d), Max: d},
	}, nil
}

// Evaluate returns the minimum distance to the sphere.
func (s *sphere) Evaluate(p r3.Vec) float64 {
	return r3.Norm(p) - s.radius
}

func (s *sphere) Bounds() r3.Box { return s.bb }

type cylinder struct {
	height float64
	radius float64
	round  float64
	bb     r3.Box
}

// Cylinder returns an SDF3 for a cylinder along the Y axis centered at
// the origin with rounded edges if round > 0.
func Cylinder(height, radius, round float64) (SDF3, error) {
	switch {
	case radius <= 0:
		return nil, errors.New("cylinder radius <= 0")
	case round < 0:
		return nil, errors.New("cylinder round < 0")
	case round > radius:
		return nil, errors.New("cylinder round > radius")
	case height < 2*round:
		return nil, errors.New("cylinder height < 2 * round")
	}
	d := r3.Vec{X: radius, Y: height / 2, Z: radius}
	return &cylinder{
		height: height/2 - round,
		radius: radius - round,
		round:  round,
		bb:     r3.Box{Min: r3.Scale(-1, d), Max: d},
	}, nil
}

// Evaluate returns the minimum distance to the cylinder.
func (s *cylinder) Evaluate(p r3.Vec) float64 {
	return sdfBox2d(math.Hypot(p.X, p.Z), p.Y, s.radius, s.height) - s.round
}

func (s *cylinder) Bounds() r3.Box { return s.bb }

// sdfBox2d is the distance to a 2d box of half size (sx, sy).
func sdfBox2d(px, py, sx, sy float64) float64 {
	dx, dy := math.Abs(px)-sx, math.Abs(py)-sy
	if dx > 0 && dy > 0 {
		return math.Hypot(dx, dy)
	}
	return math.Max(dx, dy)
}

// sdfBox3d is the distance to a 3d box of half size s.
func sdfBox3d(p, s r3.Vec) float64 {
	d := r3.Sub(d3.AbsElem(p), s)
	if d.X > 0 && d.Y > 0 && d.Z > 0 {
		return r3.Norm(d)
	}
	if d.X > 0 && d.Y > 0 {
		return math.Hypot(d.X, d.Y)
	}
	if d.X > 0 && d.Z > 0 {
		return math.Hypot(d.X, d.Z)
	}
	if d.Y > 0 && d.Z > 0 {
		return math.Hypot(d.Y, d.Z)
	}
	if d.X > 0 {
		return d.X
	}
	if d.Y > 0 {
		return d.Y
	}
	if d.Z > 0 {
		return d.Z
	}
	return d3.Max(d)
}

// gradient returns a vector parallel to the gradient of f at p using
// central differences of step h.
func gradient(p r3.Vec, h float64, f func(r3.Vec) float64) r3.Vec {
	return r3.Vec{
		X: f(r3.Add(p, r3.Vec{X: h})) - f(r3.Sub(p, r3.Vec{X: h})),
		Y: f(r3.Add(p, r3.Vec{Y: h})) - f(r3.Sub(p, r3.Vec{Y: h})),
		Z: f(r3.Add(p, r3.Vec{Z: h})) - f(r3.Sub(p, r3.Vec{Z: h})),
	}
}
