// Package tetmesh generates tetrahedral meshes of shapes given by signed
// distance functions and extracts their boundary surface.
package tetmesh

import (
	"errors"
	"fmt"
	"sort"

	"github.com/soypat/softbody/internal/d3"
	"github.com/soypat/softbody/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// smoothingPasses is the number of compress and smooth iterations,
// each compressing boundary nodes further towards the surface.
const smoothingPasses = 6

// UniformTetrahedronMesh assembles a volumetric tetrahedron mesh that tries its
// very best to encapsulate the sdf model. Tetrahedra of a body centered cubic
// lattice of cell size resolution touching the inside of s are kept and the
// nodes outside s are pulled onto its surface.
// Returned tetrahedra index into nodes with zero based indices.
func UniformTetrahedronMesh(resolution float64, s SDF3) (nodes []r3.Vec, tetras [][4]int, err error) {
	if !(resolution > 0) {
		return nil, nil, fmt.Errorf("resolution %g must be positive", resolution)
	}
	bb := d3.Box(s.Bounds())
	if d3.Min(bb.Size())/resolution < 2 {
		return nil, nil, fmt.Errorf("resolution %g too coarse for shape of size %v", resolution, bb.Size())
	}
	// The lattice extends a cell past the shape so that tetrahedra
	// straddle its surface.
	bcc, err := newBCCMesh(r3.Box(bb.Enlarge(d3.Elem(2*resolution))), resolution)
	if err != nil {
		return nil, nil, err
	}
	nodes, tetras = bcc.tetrahedralize()
	kept := make([][4]int, 0, len(tetras))
	for _, tetra := range tetras {
		for _, n := range tetra {
			if s.Evaluate(nodes[n]) < 0 {
				kept = append(kept, tetra)
				break
			}
		}
	}
	if len(kept) == 0 {
		return nil, nil, errors.New("no tetrahedra inside shape, try a finer resolution")
	}
	om := newOmesh(nodes, kept)
	for iter := 1; iter <= smoothingPasses; iter++ {
		om.compressAndSmooth(float64(iter)/smoothingPasses, s)
	}
	nodes, tetras = om.compact()
	return nodes, tetras, nil
}

// BoundarySurface returns the triangles of the tetrahedral mesh that belong
// to a single tetrahedron, wound so their normals point out of it. Only
// nodes on the boundary become vertices of the returned mesh.
func BoundarySurface(nodes []r3.Vec, tetras [][4]int) render.Mesh {
	type faceRecord struct {
		face  [3]int // oriented outward.
		count int
	}
	faces := make(map[[3]int]*faceRecord)
	var order [][3]int
	for _, t := range tetras {
		for k := range t {
			a, b, c := t[(k+1)%4], t[(k+2)%4], t[(k+3)%4]
			opposite := nodes[t[k]]
			n := r3.Cross(r3.Sub(nodes[b], nodes[a]), r3.Sub(nodes[c], nodes[a]))
			if r3.Dot(n, r3.Sub(opposite, nodes[a])) > 0 {
				b, c = c, b
			}
			key := [3]int{a, b, c}
			sort.Ints(key[:])
			rec, ok := faces[key]
			if !ok {
				rec = &faceRecord{face: [3]int{a, b, c}}
				faces[key] = rec
				order = append(order, key)
			}
			rec.count++
		}
	}
	var m render.Mesh
	vertexIdx := make(map[int]int)
	for _, key := range order {
		rec := faces[key]
		if rec.count != 1 {
			continue
		}
		var f [3]int
		for i, n := range rec.face {
			vi, ok := vertexIdx[n]
			if !ok {
				vi = len(m.Vertices)
				vertexIdx[n] = vi
				m.Vertices = append(m.Vertices, nodes[n])
			}
			f[i] = vi
		}
		m.Faces = append(m.Faces, f)
	}
	return m
}
