package render

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/softbody/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ViewConfig describes the camera and image of a snapshot.
type ViewConfig struct {
	// Width and Height of the output image in pixels.
	Width, Height int
	// Supersample renders at a multiple of the output size and
	// downsamples for antialiasing.
	Supersample int
	// LookAt is the point looked at, Eye the camera position and Up
	// the up direction. Coordinates are in the normalized frame where
	// Frame maps onto the bi-unit cube.
	LookAt, Eye, Up r3.Vec
	// FovY is the vertical field of view in degrees.
	FovY      float64
	Near, Far float64
	// Frame is the region scaled to fit the bi-unit cube. An empty
	// Frame uses the bounds of the mesh drawn, which changes framing
	// between frames of a deforming mesh.
	Frame r3.Box
	// Color of the mesh and Background, as hex strings.
	Color, Background string
}

// DefaultView returns a 3/4 view with Y up.
func DefaultView() ViewConfig {
	return ViewConfig{
		Width:       960,
		Height:      540,
		Supersample: 2,
		Eye:         r3.Vec{X: 2.5, Y: 1.5, Z: 3},
		Up:          r3.Vec{Y: 1},
		FovY:        30,
		Near:        1,
		Far:         10,
		Color:       "#468966",
		Background:  "#FFF8E3",
	}
}

// Snapshot rasterizes the mesh with a phong shader.
func Snapshot(m Mesh, view ViewConfig) (image.Image, error) {
	if len(m.Faces) == 0 {
		return nil, errors.New("empty mesh")
	}
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("snapshot size must be positive")
	}
	scale := view.Supersample
	if scale < 1 {
		scale = 1
	}
	frame := view.Frame
	if frame == (r3.Box{}) {
		frame = m.Bounds()
	}
	fmesh := fauxglMesh(m)
	fmesh.Transform(frameMatrix(d3.Box(frame)))

	var (
		eye    = fauxglVec(view.Eye)
		center = fauxglVec(view.LookAt)
		up     = fauxglVec(view.Up)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
	)
	context := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor(view.Background))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(view.FovY, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor(view.Color)
	context.Shader = shader
	context.DrawMesh(fmesh)
	img := context.Image()
	if scale > 1 {
		img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	}
	return img, nil
}

// SnapshotPNG writes a Snapshot of the mesh to a PNG file at path.
func SnapshotPNG(path string, m Mesh, view ViewConfig) error {
	img, err := Snapshot(m, view)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}

// frameMatrix maps frame onto the bi-unit cube keeping proportions.
func frameMatrix(frame d3.Box) fauxgl.Matrix {
	size := d3.Max(frame.Size())
	s := 1.
	if size > 0 {
		s = 2 / size
	}
	c := fauxglVec(frame.Center())
	return fauxgl.Translate(c.Negate()).Scale(fauxgl.V(s, s, s))
}

func fauxglMesh(m Mesh) *fauxgl.Mesh {
	tris := make([]*fauxgl.Triangle, len(m.Faces))
	for i, f := range m.Faces {
		tris[i] = fauxgl.NewTriangleForPoints(
			fauxglVec(m.Vertices[f[0]]),
			fauxglVec(m.Vertices[f[1]]),
			fauxglVec(m.Vertices[f[2]]),
		)
	}
	return fauxgl.NewTriangleMesh(tris)
}

func fauxglVec(v r3.Vec) fauxgl.Vector { return fauxgl.V(v.X, v.Y, v.Z) }
