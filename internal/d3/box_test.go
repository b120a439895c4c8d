package d3

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestBoxVertices(t *testing.T) {
	b := Box{Min: r3.Vec{X: -1, Y: -2, Z: -3}, Max: r3.Vec{X: 1, Y: 2, Z: 3}}
	verts := b.Vertices()
	for i, v := range verts {
		// Corner i has bits (x, y, z) following a counter-clockwise walk on each z plane.
		xbit := i&1 ^ i>>1&1
		ybit := i >> 1 & 1
		zbit := i >> 2 & 1
		want := r3.Vec{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z}
		if xbit == 1 {
			want.X = b.Max.X
		}
		if ybit == 1 {
			want.Y = b.Max.Y
		}
		if zbit == 1 {
			want.Z = b.Max.Z
		}
		if v != want {
			t.Errorf("vertex %d. got %v. want %v", i, v, want)
		}
		if !b.Contains(v) {
			t.Errorf("box must contain its vertex %v", v)
		}
	}
}

func TestBoxInclude(t *testing.T) {
	b := EmptyBox()
	pts := []r3.Vec{{X: 1, Y: 5, Z: -1}, {X: -2, Y: 0, Z: 4}, {X: 0, Y: 1, Z: 0}}
	for _, p := range pts {
		b = b.Include(p)
	}
	want := Box{Min: r3.Vec{X: -2, Y: 0, Z: -1}, Max: r3.Vec{X: 1, Y: 5, Z: 4}}
	if b != want {
		t.Errorf("got %v. want %v", b, want)
	}
	if b.Center() != (r3.Vec{X: -0.5, Y: 2.5, Z: 1.5}) {
		t.Errorf("center %v", b.Center())
	}
	if b.Contains(r3.Vec{X: 2}) {
		t.Error("point outside box contained")
	}
	c := CenteredBox(r3.Vec{}, r3.Vec{X: 2, Y: -2, Z: 4})
	if c.Size() != (r3.Vec{X: 2, Y: 0, Z: 4}) {
		t.Errorf("negative size not clamped: %v", c.Size())
	}
	if c.Enlarge(Elem(2)).Size() != (r3.Vec{X: 4, Y: 2, Z: 6}) {
		t.Errorf("enlarge %v", c.Enlarge(Elem(2)).Size())
	}
}
