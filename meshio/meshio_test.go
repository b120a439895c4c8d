package meshio

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/soypat/softbody"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestReadParams(t *testing.T) {
	const file = `4 2
Stiffness 1000.5
Gravity 3
Damping 0.1
MassDensity 2e3
`
	p, err := ReadParams(strings.NewReader(file), softbody.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, softbody.Params{Stiffness: 1000.5, Damping: 0.1, MassDensity: 2000}, p)
}

func TestReadParamsKeepsDefaults(t *testing.T) {
	def := softbody.DefaultParams()
	p, err := ReadParams(strings.NewReader("1 2\nDamping 0.75"), def)
	require.NoError(t, err)
	assert.Equal(t, def.Stiffness, p.Stiffness)
	assert.Equal(t, def.MassDensity, p.MassDensity)
	assert.Equal(t, 0.75, p.Damping)
}

func TestReadParamsErrors(t *testing.T) {
	for _, file := range []string{
		"",
		"2 2\nStiffness 10\n",
		"1 2\nStiffness 1,5\n",
		"x 2\n",
		"-1 2\n",
	} {
		_, err := ReadParams(strings.NewReader(file), softbody.DefaultParams())
		if err == nil {
			t.Errorf("expected error for %q", file)
		}
	}
	_, err := ReadParams(strings.NewReader("2 2\nStiffness 10\n"), softbody.DefaultParams())
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short file. got %v. want %v", err, io.ErrUnexpectedEOF)
	}
}

func TestReadRejectsNonFinite(t *testing.T) {
	for _, tok := range []string{"NaN", "nan", "Inf", "-inf", "+Inf"} {
		_, err := ReadNodes(strings.NewReader("1 3 0 0\n1 0 " + tok + " 0\n"))
		if !errors.Is(err, errNotFinite) {
			t.Errorf("node coordinate %s. got %v. want %v", tok, err, errNotFinite)
		}
		_, err = ReadParams(strings.NewReader("1 2\nStiffness "+tok+"\n"), softbody.DefaultParams())
		if !errors.Is(err, errNotFinite) {
			t.Errorf("parameter %s. got %v. want %v", tok, err, errNotFinite)
		}
	}
}

func TestReadHugeCountShortFile(t *testing.T) {
	_, err := ReadNodes(strings.NewReader("999999999999999 3 0 0\n1 0 0 0\n"))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("nodes. got %v. want %v", err, io.ErrUnexpectedEOF)
	}
	_, err = ReadTetrahedra(strings.NewReader("999999999999999 4 0\n1 1 2 3 4\n"))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("tetrahedra. got %v. want %v", err, io.ErrUnexpectedEOF)
	}
}

func TestReadNodes(t *testing.T) {
	const file = `# ignored by position
3 3 0 0
1 0 0 0
2 1.5 0 -2
3 0 1e-1 4
`
	// Comments are not supported: the first token must be the count.
	_, err := ReadNodes(strings.NewReader(file))
	assert.Error(t, err)

	pos, err := ReadNodes(strings.NewReader(file[strings.IndexByte(file, '\n')+1:]))
	require.NoError(t, err)
	assert.Equal(t, []r3.Vec{{}, {X: 1.5, Z: -2}, {Y: 0.1, Z: 4}}, pos)
}

func TestReadNodesAttributes(t *testing.T) {
	const file = "2 3 2 1\n1 0 0 0 7 8 1\n2 1 2 3 7 8 0\n"
	pos, err := ReadNodes(strings.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, []r3.Vec{{}, {X: 1, Y: 2, Z: 3}}, pos)

	_, err = ReadNodes(strings.NewReader("1 2 0 0\n1 0 0\n"))
	assert.Error(t, err, "two dimensional nodes")
	_, err = ReadNodes(strings.NewReader("2 3 0 0\n1 0 0 0\n"))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadTetrahedra(t *testing.T) {
	const file = `2 4 1
1 1 2 3 4 9
2 2 3 4 5 9
`
	elems, err := ReadTetrahedra(strings.NewReader(file))
	require.NoError(t, err)
	want := []Element{
		{ID: 0, Nodes: [4]int{0, 1, 2, 3}},
		{ID: 1, Nodes: [4]int{1, 2, 3, 4}},
	}
	assert.Equal(t, want, elems)
	assert.Equal(t, [][4]int{{0, 1, 2, 3}, {1, 2, 3, 4}}, Indices(elems))

	_, err = ReadTetrahedra(strings.NewReader("1 4 0\n1 0 1 2 3\n"))
	assert.Error(t, err, "zero node index")
	_, err = ReadTetrahedra(strings.NewReader("1 3 0\n1 1 2 3\n"))
	assert.Error(t, err, "triangles")
}

func TestReadMeshOutOfRange(t *testing.T) {
	nodes := "4 3 0 0\n1 0 0 0\n2 1 0 0\n3 0 1 0\n4 0 0 1\n"
	_, _, err := ReadMesh(strings.NewReader(nodes), strings.NewReader("1 4 0\n1 1 2 3 5\n"))
	assert.Error(t, err)

	pos, tetras, err := ReadMesh(strings.NewReader(nodes), strings.NewReader("1 4 0\n1 1 2 3 4\n"))
	require.NoError(t, err)
	s, err := softbody.NewSolidFromMesh(softbody.DefaultConfig(), softbody.DefaultParams(), pos, tetras)
	require.NoError(t, err)
	assert.InDelta(t, 1./6, s.Tetrahedra[0].Volume, 1e-12)
}

func TestWriteRead(t *testing.T) {
	pos := []r3.Vec{{X: 0.1, Y: -3, Z: 1e9}, {X: 1. / 3}, {Y: 2}, {Z: -0.5}, {X: 1, Y: 1, Z: 1}}
	tetras := [][4]int{{0, 1, 2, 3}, {1, 2, 3, 4}}
	p := softbody.Params{Stiffness: 123.25, Damping: 1. / 7, MassDensity: 1}

	var nb, eb, pb bytes.Buffer
	require.NoError(t, WriteNodes(&nb, pos))
	require.NoError(t, WriteTetrahedra(&eb, tetras))
	require.NoError(t, WriteParams(&pb, p))

	gotPos, gotTetras, err := ReadMesh(&nb, &eb)
	require.NoError(t, err)
	assert.Equal(t, pos, gotPos)
	assert.Equal(t, tetras, gotTetras)
	gotP, err := ReadParams(&pb, softbody.Params{})
	require.NoError(t, err)
	assert.Equal(t, p, gotP)
}
