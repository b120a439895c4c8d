package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/softbody/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle surface. Its Vertices are what a solid
// embeds and deforms while Faces stay fixed.
type Mesh struct {
	Vertices []r3.Vec
	// Faces index into Vertices, counter-clockwise seen from outside.
	Faces [][3]int
}

// NewMesh builds an indexed Mesh from a triangle soup, merging vertices
// closer than tol. A tol of zero picks a tolerance from the smallest edge.
func NewMesh(model []Triangle3, tol float64) (Mesh, error) {
	if len(model) == 0 {
		return Mesh{}, errors.New("empty triangle slice")
	}
	bb := d3.EmptyBox()
	minDist2 := math.MaxFloat64
	for i, tri := range model {
		if !tri.finite() {
			return Mesh{}, fmt.Errorf("triangle %d: inf/NaN vertex", i)
		}
		for j, vert := range tri {
			bb = bb.Include(vert)
			side2 := r3.Norm2(r3.Sub(tri[(j+1)%3], vert))
			if side2 > 0 {
				minDist2 = math.Min(minDist2, side2)
			}
		}
	}
	if tol == 0 {
		tol = math.Sqrt(minDist2) / 256
	}
	if tol <= 0 || math.IsInf(tol, 0) {
		return Mesh{}, errors.New("could not infer vertex tolerance")
	}
	if d3.Max(bb.Size())/tol > math.MaxInt64/2 {
		return Mesh{}, errors.New("tolerance too small. overflowed int64")
	}
	m := Mesh{Faces: make([][3]int, 0, len(model))}
	// vertex index cache keyed by position in tolerance-space.
	cache := make(map[[3]int64]int)
	ri := 1 / tol
	for _, tri := range model {
		var face [3]int
		for j, vert := range tri {
			v := r3.Scale(ri, r3.Sub(vert, bb.Min))
			vi := [3]int64{int64(math.Round(v.X)), int64(math.Round(v.Y)), int64(math.Round(v.Z))}
			idx, ok := cache[vi]
			if !ok {
				idx = len(m.Vertices)
				cache[vi] = idx
				m.Vertices = append(m.Vertices, vert)
			}
			face[j] = idx
		}
		if face[0] == face[1] || face[1] == face[2] || face[2] == face[0] {
			continue // collapsed by merging.
		}
		m.Faces = append(m.Faces, face)
	}
	return m, nil
}

// Triangles returns the faces of the mesh as a triangle soup.
func (m Mesh) Triangles() []Triangle3 {
	tris := make([]Triangle3, len(m.Faces))
	for i, f := range m.Faces {
		tris[i] = Triangle3{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
	}
	return tris
}

// Reader returns a TriangleReader over the faces of the mesh.
func (m Mesh) Reader() TriangleReader {
	return NewTriangleReader(m.Triangles())
}

// Bounds returns the axis aligned bounding box of the vertices.
func (m Mesh) Bounds() r3.Box {
	bb := d3.EmptyBox()
	for _, v := range m.Vertices {
		bb = bb.Include(v)
	}
	return r3.Box(bb)
}

// WithVertices returns a mesh sharing the faces of m with the vertices
// replaced, as when applying the output of a deformation pass.
func (m Mesh) WithVertices(vertices []r3.Vec) (Mesh, error) {
	if len(vertices) != len(m.Vertices) {
		return Mesh{}, fmt.Errorf("got %d vertices, mesh has %d", len(vertices), len(m.Vertices))
	}
	return Mesh{Vertices: vertices, Faces: m.Faces}, nil
}

// Validate checks that every face references existing distinct vertices.
func (m Mesh) Validate() error {
	for i, f := range m.Faces {
		for j, vi := range f {
			if vi < 0 || vi >= len(m.Vertices) {
				return fmt.Errorf("face %d: vertex index %d out of range [0,%d)", i, vi, len(m.Vertices))
			}
			if f[(j+1)%3] == vi {
				return fmt.Errorf("face %d: repeated vertex %d", i, vi)
			}
		}
	}
	return nil
}
