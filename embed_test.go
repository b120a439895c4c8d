package softbody

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestEmbedReconstructsRestMesh(t *testing.T) {
	pos, tetras := kuhnCube(r3.Vec{X: -1, Y: -1, Z: -1}, 2)
	s, err := NewSolidFromMesh(DefaultConfig(), DefaultParams(), pos, tetras)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	verts := make([]r3.Vec, 200)
	for i := range verts {
		verts[i] = r3.Vec{X: 2*rng.Float64() - 1, Y: 2*rng.Float64() - 1, Z: 2*rng.Float64() - 1}
	}
	n := s.Embed(verts)
	assert.Equal(t, len(verts), n)
	assert.Equal(t, n, s.Embedded())

	registered := 0
	for _, tet := range s.Tetrahedra {
		require.Equal(t, len(tet.Vertices), len(tet.Weights))
		registered += len(tet.Vertices)
		for _, w := range tet.Weights {
			assert.InDelta(t, 1, w[0]+w[1]+w[2]+w[3], 1e-9)
		}
	}
	assert.Equal(t, len(verts), registered, "every vertex owned by exactly one tetrahedron")

	got := s.Deform()
	for i := range verts {
		assert.InDelta(t, 0, r3.Norm(r3.Sub(got[i], verts[i])), 1e-9, "vertex %d", i)
	}
}

func TestEmbedFirstTetrahedronWins(t *testing.T) {
	pos, tetras := kuhnCube(r3.Vec{}, 1)
	s, err := NewSolidFromMesh(DefaultConfig(), DefaultParams(), pos, tetras)
	require.NoError(t, err)
	// Points on the main diagonal lie in all six tetrahedra,
	// corner 0 is a node of all of them.
	verts := []r3.Vec{{X: 0.5, Y: 0.5, Z: 0.5}, {}}
	require.Equal(t, 2, s.Embed(verts))
	for i := range verts {
		assert.Equal(t, 0, s.Owner(i))
	}
	assert.Len(t, s.Tetrahedra[0].Vertices, 2)
	for _, tet := range s.Tetrahedra[1:] {
		assert.Empty(t, tet.Vertices)
	}
}

func TestEmbedOutsideVertex(t *testing.T) {
	pos, tetras := kuhnCube(r3.Vec{}, 1)
	s, err := NewSolidFromMesh(DefaultConfig(), DefaultParams(), pos, tetras)
	require.NoError(t, err)
	outside := r3.Vec{X: 3, Y: -2, Z: 0.5}
	inside := r3.Vec{X: 0.25, Y: 0.5, Z: 0.75}
	require.Equal(t, 1, s.Embed([]r3.Vec{outside, inside}))
	assert.Equal(t, -1, s.Owner(0))
	assert.Equal(t, -1, s.Owner(5))

	d := r3.Vec{X: 0.5, Y: -1, Z: 2}
	for i := range s.Nodes {
		s.Nodes[i].Pos = r3.Add(s.Nodes[i].Pos, d)
	}
	got := s.Deform()
	assert.Equal(t, outside, got[0], "unembedded vertex keeps its rest position")
	assert.InDelta(t, 0, r3.Norm(r3.Sub(got[1], r3.Add(inside, d))), 1e-9)
	assert.Equal(t, []r3.Vec{outside, inside}, s.RestVertices())
}

func TestEmbedWithTransform(t *testing.T) {
	offset := r3.Vec{X: 10, Y: 0, Z: -4}
	pos, tetras := kuhnCube(offset, 1)
	s, err := NewSolidFromMesh(DefaultConfig(), DefaultParams(), pos, tetras)
	require.NoError(t, err)
	s.Transform = Translation(offset)
	local := r3.Vec{X: 0.2, Y: 0.6, Z: 0.3}
	require.Equal(t, 1, s.Embed([]r3.Vec{local}))
	got := s.Deform()
	assert.InDelta(t, 0, r3.Norm(r3.Sub(got[0], local)), 1e-9, "deformed vertex is returned in local space")

	// Scaled visual mesh: local unit cube maps onto a cube of side 2.
	pos, tetras = kuhnCube(r3.Vec{}, 2)
	s, err = NewSolidFromMesh(DefaultConfig(), DefaultParams(), pos, tetras)
	require.NoError(t, err)
	s.Transform = ComposeTransform(r3.Vec{}, r3.Vec{X: 2, Y: 2, Z: 2}, r3.Rotation{Real: 1})
	require.Equal(t, 1, s.Embed([]r3.Vec{local}))
	for i := range s.Nodes {
		s.Nodes[i].Pos.Y += 1
	}
	got = s.Deform()
	want := r3.Add(local, r3.Vec{Y: 0.5})
	assert.InDelta(t, 0, r3.Norm(r3.Sub(got[0], want)), 1e-9)
}

func TestEmbedEmptySolid(t *testing.T) {
	s, err := NewSolid(DefaultConfig(), DefaultParams())
	require.NoError(t, err)
	verts := []r3.Vec{{X: 1}}
	assert.Zero(t, s.Embed(verts))
	assert.Equal(t, verts, s.Deform())
}

func TestReembedForgetsPreviousVertices(t *testing.T) {
	pos, tetras := kuhnCube(r3.Vec{}, 1)
	s, err := NewSolidFromMesh(DefaultConfig(), DefaultParams(), pos, tetras)
	require.NoError(t, err)
	s.Embed([]r3.Vec{{X: 0.5, Y: 0.5, Z: 0.5}, {X: 0.1, Y: 0.1, Z: 0.1}})
	s.Embed([]r3.Vec{{X: 0.9, Y: 0.1, Z: 0.1}})
	registered := 0
	for _, tet := range s.Tetrahedra {
		registered += len(tet.Vertices)
	}
	assert.Equal(t, 1, registered)
	assert.Len(t, s.Deform(), 1)
}

func TestRestVerticesSurviveReembed(t *testing.T) {
	pos, tetras := kuhnCube(r3.Vec{}, 1)
	s, err := NewSolidFromMesh(DefaultConfig(), DefaultParams(), pos, tetras)
	require.NoError(t, err)
	first := []r3.Vec{{X: 0.5, Y: 0.5, Z: 0.5}, {X: 0.1, Y: 0.1, Z: 0.1}}
	s.Embed(first)
	rest := s.RestVertices()
	s.Embed([]r3.Vec{{X: 0.9, Y: 0.1, Z: 0.1}, {X: 0.2, Y: 0.2, Z: 0.2}})
	assert.Equal(t, first, rest)
	assert.Equal(t, r3.Vec{X: 0.9, Y: 0.1, Z: 0.1}, s.RestVertices()[0])
}
