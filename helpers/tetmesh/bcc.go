package tetmesh

import (
	"fmt"
	"math"

	"github.com/soypat/softbody/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// bccMesh constructs a body centered cubic lattice for isotropic tetrahedron generation.
// Inspired by Tetrahedral Mesh Generation for Deformable Bodies
// Molino, Bridson, Fedkiw.
type bccMesh struct {
	cells      []bccCell
	div        [3]int
	resolution float64
}

type bccidx int

// Lattice node slots of a cell. Corners follow the ordering of d3.Box.Vertices.
const (
	i000 bccidx = iota
	ix00
	ixy0
	i0y0
	i00z
	ix0z
	ixyz
	i0yz
	ictr // cell center.
	nBCC
)

var unmeshed = [nBCC]int{-1, -1, -1, -1, -1, -1, -1, -1, -1}

// bccCell is a cubic cell of the lattice. node holds the global node
// index of each of its slots once meshed.
type bccCell struct {
	node   [nBCC]int
	center r3.Vec
	// face neighbors, nil on the lattice boundary.
	xp, xm, yp, ym, zp, zm *bccCell
}

func (c *bccCell) nodeAt(idx bccidx) int {
	if c == nil {
		return -1
	}
	return c.node[idx]
}

// sharedCorner returns the global index of corner idx if an already meshed
// face neighbor owns it, or -1.
func (c *bccCell) sharedCorner(idx bccidx) int {
	var nx, ny, nz int
	switch idx {
	case i000:
		nx, ny, nz = c.xm.nodeAt(ix00), c.ym.nodeAt(i0y0), c.zm.nodeAt(i00z)
	case ix00:
		nx, ny, nz = c.xp.nodeAt(i000), c.ym.nodeAt(ixy0), c.zm.nodeAt(ix0z)
	case ixy0:
		nx, ny, nz = c.xp.nodeAt(i0y0), c.yp.nodeAt(ix00), c.zm.nodeAt(ixyz)
	case i0y0:
		nx, ny, nz = c.xm.nodeAt(ixy0), c.yp.nodeAt(i000), c.zm.nodeAt(i0yz)
	case i00z:
		nx, ny, nz = c.xm.nodeAt(ix0z), c.ym.nodeAt(i0yz), c.zp.nodeAt(i000)
	case ix0z:
		nx, ny, nz = c.xp.nodeAt(i00z), c.ym.nodeAt(ixyz), c.zp.nodeAt(ix00)
	case ixyz:
		nx, ny, nz = c.xp.nodeAt(i0yz), c.yp.nodeAt(ix0z), c.zp.nodeAt(ixy0)
	case i0yz:
		nx, ny, nz = c.xm.nodeAt(ixyz), c.yp.nodeAt(i00z), c.zp.nodeAt(i0y0)
	default:
		panic("bad bcc corner index")
	}
	bad := nx >= 0 && ny >= 0 && nx != ny ||
		nx >= 0 && nz >= 0 && nx != nz ||
		nz >= 0 && ny >= 0 && nz != ny
	if bad {
		panic("bad mesh operation detected")
	}
	return max(nx, max(ny, nz))
}

func newBCCMesh(b r3.Box, resolution float64) (*bccMesh, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("resolution %g must be positive", resolution)
	}
	sz := d3.Box(b).Size()
	div := [3]int{
		int(math.Ceil(sz.X / resolution)),
		int(math.Ceil(sz.Y / resolution)),
		int(math.Ceil(sz.Z / resolution)),
	}
	if div[0] < 3 || div[1] < 3 || div[2] < 3 {
		return nil, fmt.Errorf("resolution %g too coarse for bounds of size %v", resolution, sz)
	}
	m := &bccMesh{
		cells:      make([]bccCell, div[0]*div[1]*div[2]),
		div:        div,
		resolution: resolution,
	}
	m.foreach(func(i, j, k int, c *bccCell) {
		*c = bccCell{
			node: unmeshed,
			center: r3.Vec{
				X: (float64(i)+0.5)*resolution + b.Min.X,
				Y: (float64(j)+0.5)*resolution + b.Min.Y,
				Z: (float64(k)+0.5)*resolution + b.Min.Z,
			},
			xm: m.at(i-1, j, k), xp: m.at(i+1, j, k),
			ym: m.at(i, j-1, k), yp: m.at(i, j+1, k),
			zm: m.at(i, j, k-1), zp: m.at(i, j, k+1),
		}
	})
	return m, nil
}

// tetrahedralize numbers the lattice nodes and returns the tetrahedra
// joining the centers of face adjacent cells.
func (m *bccMesh) tetrahedralize() (nodes []r3.Vec, tetras [][4]int) {
	tetras = make([][4]int, 0, 12*len(m.cells))
	m.foreach(func(_, _, _ int, c *bccCell) {
		res := m.resolution
		vert := d3.CenteredBox(c.center, d3.Elem(res)).Vertices()
		c.node[ictr] = len(nodes)
		nodes = append(nodes, c.center)
		for in := i000; in < ictr; in++ {
			if v := c.sharedCorner(in); v >= 0 {
				c.node[in] = v
				continue
			}
			c.node[in] = len(nodes)
			nodes = append(nodes, vert[in])
		}
		tetras = append(tetras, c.tetras()...)
	})
	return nodes, tetras
}

func (m *bccMesh) at(i, j, k int) *bccCell {
	if i < 0 || j < 0 || k < 0 || i >= m.div[0] || j >= m.div[1] || k >= m.div[2] {
		return nil
	}
	return &m.cells[i*m.div[1]*m.div[2]+j*m.div[2]+k]
}

func (m *bccMesh) foreach(f func(i, j, k int, c *bccCell)) {
	for i := 0; i < m.div[0]; i++ {
		for j := 0; j < m.div[1]; j++ {
			for k := 0; k < m.div[2]; k++ {
				f(i, j, k, m.at(i, j, k))
			}
		}
	}
}

// tetras returns the 4 tetrahedra around each face shared with an already
// meshed neighbor. Each joins both cell centers with an edge of the face.
func (c *bccCell) tetras() (tetras [][4]int) {
	ctr := c.node[ictr]
	face := func(nb *bccCell, a, b, cc, d bccidx) {
		if nb == nil || nb.node[ictr] < 0 {
			return
		}
		nctr := nb.node[ictr]
		n := c.node
		tetras = append(tetras,
			[4]int{ctr, n[a], n[b], nctr},
			[4]int{ctr, n[b], n[cc], nctr},
			[4]int{ctr, n[cc], n[d], nctr},
			[4]int{ctr, n[d], n[a], nctr},
		)
	}
	face(c.zm, i000, ix00, ixy0, i0y0)
	face(c.ym, ix00, i000, i00z, ix0z)
	face(c.xm, i000, i0y0, i0yz, i00z)
	return tetras
}
