// Package render handles the visual surface mesh bound to a simulated solid:
// triangle and indexed mesh types, STL and glTF files, PNG snapshots of a
// mesh and line plots of simulation diagnostics.
package render

import (
	"github.com/soypat/softbody/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a 3D triangle. Vertices wind counter-clockwise when seen
// from the side its normal points to.
type Triangle3 [3]r3.Vec

// TriangleReader reads triangles into t and returns the number read.
// It returns io.EOF once no triangles remain.
type TriangleReader interface {
	ReadTriangles(t []Triangle3) (int, error)
}

// Normal returns the unit normal of the triangle.
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t[1], t[0])
	e2 := r3.Sub(t[2], t[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Centroid returns the mean of the triangle's vertices.
func (t Triangle3) Centroid() r3.Vec {
	return r3.Scale(1./3, r3.Add(r3.Add(t[0], t[1]), t[2]))
}

// Degenerate returns true if two vertices of the triangle are within tol
// of each other or the triangle has no area.
func (t Triangle3) Degenerate(tol float64) bool {
	if d3.EqualWithin(t[0], t[1], tol) || d3.EqualWithin(t[1], t[2], tol) || d3.EqualWithin(t[2], t[0], tol) {
		return true
	}
	n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
	return r3.Norm(n) <= tol*tol
}

// finite reports whether all vertices are free of NaN and Inf values.
func (t Triangle3) finite() bool {
	return d3.IsFinite(t[0]) && d3.IsFinite(t[1]) && d3.IsFinite(t[2])
}
