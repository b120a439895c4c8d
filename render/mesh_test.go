package render

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/softbody/internal/d3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewMeshMergesVertices(t *testing.T) {
	box := d3.Box{Min: r3.Vec{X: -1, Y: -1, Z: -1}, Max: r3.Vec{X: 1, Y: 2, Z: 3}}
	model := boxTriangles(box)
	m, err := NewMesh(model, 0)
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 8)
	assert.Len(t, m.Faces, 12)
	require.NoError(t, m.Validate())
	assert.Equal(t, model, m.Triangles())
	assert.Equal(t, r3.Box(box), m.Bounds())

	// Perturbations below tolerance merge onto the first vertex seen.
	model[5][1].X += 1e-9
	m, err = NewMesh(model, 1e-6)
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 8)

	_, err = NewMesh(nil, 0)
	assert.Error(t, err)
}

func TestMeshWithVertices(t *testing.T) {
	m, err := NewMesh(boxTriangles(d3.Box{Max: d3.Elem(1)}), 0)
	require.NoError(t, err)
	moved := make([]r3.Vec, len(m.Vertices))
	for i, v := range m.Vertices {
		moved[i] = r3.Add(v, r3.Vec{Y: 1})
	}
	d, err := m.WithVertices(moved)
	require.NoError(t, err)
	assert.Equal(t, m.Faces, d.Faces)
	assert.Equal(t, 1., d.Bounds().Min.Y)
	_, err = m.WithVertices(moved[1:])
	assert.Error(t, err)
}

func TestMeshValidate(t *testing.T) {
	m := Mesh{Vertices: make([]r3.Vec, 3), Faces: [][3]int{{0, 1, 3}}}
	assert.Error(t, m.Validate())
	m.Faces[0] = [3]int{0, 1, 1}
	assert.Error(t, m.Validate())
	m.Faces[0] = [3]int{0, 1, 2}
	assert.NoError(t, m.Validate())
}

func TestGLTFRoundTrip(t *testing.T) {
	m, err := NewMesh(boxTriangles(d3.Box{Min: r3.Vec{X: -0.5}, Max: r3.Vec{X: 0.5, Y: 1, Z: 2}}), 0)
	require.NoError(t, err)
	dir := t.TempDir()
	for _, name := range []string{"box.gltf", "box.glb"} {
		path := filepath.Join(dir, name)
		require.NoError(t, SaveGLTF(path, m))
		got, err := LoadGLTF(path)
		require.NoError(t, err, name)
		assert.Equal(t, m.Faces, got.Faces, name)
		require.Len(t, got.Vertices, len(m.Vertices), name)
		for i := range m.Vertices {
			assert.True(t, d3.EqualWithin(m.Vertices[i], got.Vertices[i], 1e-6), "%s vertex %d", name, i)
		}
	}
	assert.Error(t, SaveGLTF(filepath.Join(dir, "empty.gltf"), Mesh{}))
}

func TestSnapshot(t *testing.T) {
	m, err := NewMesh(boxTriangles(d3.Box{Max: r3.Vec{X: 1, Y: 2, Z: 1}}), 0)
	require.NoError(t, err)
	view := DefaultView()
	view.Width, view.Height = 64, 48
	img, err := Snapshot(m, view)
	require.NoError(t, err)
	require.Equal(t, 64, img.Bounds().Dx())
	require.Equal(t, 48, img.Bounds().Dy())

	// corner pixel shows the background.
	bg := color.RGBAModel.Convert(img.At(0, 0))
	var drawn int
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			if color.RGBAModel.Convert(img.At(x, y)) != bg {
				drawn++
			}
		}
	}
	if drawn == 0 {
		t.Fatal("snapshot has no mesh pixels")
	}
	if drawn == 64*48 {
		t.Fatal("snapshot has no background pixels")
	}

	path := filepath.Join(t.TempDir(), "box.png")
	require.NoError(t, SnapshotPNG(path, m, view))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	_, err = Snapshot(Mesh{}, view)
	assert.Error(t, err)
}

func TestPlotSeries(t *testing.T) {
	var kinetic, elastic Series
	kinetic.Name, elastic.Name = "kinetic", "elastic"
	for i := 0; i < 50; i++ {
		x := float64(i) * 0.1
		kinetic.Add(x, x*x)
		elastic.Add(x, 25-x*x)
	}
	path := filepath.Join(t.TempDir(), "energy.png")
	err := PlotSeries(path, PlotConfig{Title: "Energy", XLabel: "t [s]", YLabel: "E [J]"}, kinetic, elastic)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, PlotSeries(path, PlotConfig{}))
	bad := Series{Name: "bad", X: []float64{1, 2}, Y: []float64{1}}
	assert.Error(t, PlotSeries(path, PlotConfig{}, bad))
}
