package softbody

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-12

func unitTetraNodes() []Node {
	return []Node{
		{Pos: r3.Vec{}},
		{Pos: r3.Vec{X: 1}},
		{Pos: r3.Vec{Y: 1}},
		{Pos: r3.Vec{Z: 1}},
	}
}

func TestTetrahedronVolume(t *testing.T) {
	nodes := unitTetraNodes()
	tetra, err := NewTetrahedron(0, [4]int{0, 1, 2, 3}, nodes)
	require.NoError(t, err)
	assert.InDelta(t, 1./6, tetra.Volume, tol)
	tetra.CalculateMass(4)
	assert.InDelta(t, 4./6, tetra.Mass, tol)
}

func TestTetrahedronOutwardNormals(t *testing.T) {
	nodes := unitTetraNodes()
	for _, order := range [][4]int{
		{0, 1, 2, 3},
		{1, 0, 2, 3}, // negative orientation.
		{3, 2, 0, 1},
	} {
		tetra, err := NewTetrahedron(0, order, nodes)
		require.NoError(t, err)
		c := tetra.Centroid(nodes)
		for k, n := range tetra.Normals {
			assert.InDelta(t, 1, r3.Norm(n), tol)
			// centroid lies behind every face plane.
			d := r3.Dot(n, r3.Sub(c, nodes[tetra.Nodes[k]].Pos))
			if d >= 0 {
				t.Errorf("order %v: normal %d points inward: %v", order, k, n)
			}
		}
	}
}

func TestTetrahedronContainsAndWeights(t *testing.T) {
	nodes := unitTetraNodes()
	tetra, err := NewTetrahedron(0, [4]int{0, 1, 2, 3}, nodes)
	require.NoError(t, err)
	p := r3.Vec{X: 0.2, Y: 0.2, Z: 0.2}
	if !tetra.ContainsVertex(nodes, 7, p) {
		t.Fatal("point inside unit tetrahedron not contained")
	}
	w := tetra.CalculateBarycentricCoords(nodes, p)
	want := [4]float64{0.4, 0.2, 0.2, 0.2}
	for k := range w {
		assert.InDelta(t, want[k], w[k], tol, "weight %d", k)
	}
	assert.InDelta(t, 1, w[0]+w[1]+w[2]+w[3], tol)

	got, ok := tetra.UpdateVertex(nodes, 7)
	require.True(t, ok)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(got, p)), tol)

	_, ok = tetra.UpdateVertex(nodes, 8)
	assert.False(t, ok, "vertex never embedded must not be found")
}

func TestTetrahedronContainsBoundary(t *testing.T) {
	nodes := unitTetraNodes()
	tetra, err := NewTetrahedron(0, [4]int{0, 1, 2, 3}, nodes)
	require.NoError(t, err)
	for _, p := range []r3.Vec{
		{},                         // vertex
		{X: 0.5, Y: 0.5},           // edge
		{X: 0.25, Y: 0.25},         // face z=0
		{X: 0.5, Y: 0.25, Z: 0.25}, // slanted face
	} {
		if !tetra.Contains(nodes, p) {
			t.Errorf("boundary point %v not contained", p)
		}
	}
	for _, p := range []r3.Vec{
		{X: -0.01, Y: 0.2, Z: 0.2},
		{X: 0.5, Y: 0.5, Z: 0.5},
		{X: 2},
	} {
		if tetra.Contains(nodes, p) {
			t.Errorf("outside point %v contained", p)
		}
	}
	if len(tetra.Vertices) != 0 {
		t.Error("Contains must not register vertices")
	}
}

func TestTetrahedronFollowsNodes(t *testing.T) {
	nodes := unitTetraNodes()
	tetra, err := NewTetrahedron(0, [4]int{0, 1, 2, 3}, nodes)
	require.NoError(t, err)
	p := r3.Vec{X: 0.1, Y: 0.3, Z: 0.2}
	require.True(t, tetra.ContainsVertex(nodes, 0, p))
	tetra.CalculateBarycentricCoords(nodes, p)

	// Stretch the tetrahedron along X by 2: embedded point scales with it.
	for i := range nodes {
		nodes[i].Pos.X *= 2
	}
	got, ok := tetra.UpdateVertex(nodes, 0)
	require.True(t, ok)
	want := r3.Vec{X: 0.2, Y: 0.3, Z: 0.2}
	assert.InDelta(t, 0, r3.Norm(r3.Sub(got, want)), tol)
}

func TestNewTetrahedronErrors(t *testing.T) {
	nodes := unitTetraNodes()
	_, err := NewTetrahedron(0, [4]int{0, 1, 2, 4}, nodes)
	assert.Error(t, err, "out of range node")
	_, err = NewTetrahedron(0, [4]int{0, 1, 1, 2}, nodes)
	assert.Error(t, err, "repeated node")
	nodes[3].Pos = r3.Vec{X: 1, Y: 1} // coplanar
	_, err = NewTetrahedron(0, [4]int{0, 1, 2, 3}, nodes)
	if !errors.Is(err, errDegenerateTetra) {
		t.Errorf("got error %v. want %v", err, errDegenerateTetra)
	}
}

func TestBarycentricWithoutVertexPanics(t *testing.T) {
	nodes := unitTetraNodes()
	tetra, err := NewTetrahedron(0, [4]int{0, 1, 2, 3}, nodes)
	require.NoError(t, err)
	assert.Panics(t, func() {
		tetra.CalculateBarycentricCoords(nodes, r3.Vec{X: 0.1, Y: 0.1, Z: 0.1})
	})
}
