package tetmesh

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// onode is a mesh node with its connectivity.
type onode struct {
	pos r3.Vec
	// conn contains unique incident node indices.
	conn []int
}

// omesh is a tetrahedral mesh prepared for node relocation.
type omesh struct {
	nodes  []onode
	tetras [][4]int
	// surface marks nodes on faces belonging to a single tetrahedron.
	surface []bool
}

func newOmesh(nodes []r3.Vec, tetras [][4]int) *omesh {
	onodes := make([]onode, len(nodes))
	for i := range onodes {
		onodes[i].pos = nodes[i]
	}
	for _, tetra := range tetras {
		for i, n := range tetra {
			on := &onodes[n]
			for j := 1; j < 4; j++ {
				on.addConn(tetra[(i+j)%4])
			}
		}
	}
	return &omesh{nodes: onodes, tetras: tetras, surface: surfaceNodes(len(nodes), tetras)}
}

func surfaceNodes(n int, tetras [][4]int) []bool {
	count := make(map[[3]int]int)
	for _, t := range tetras {
		for k := range t {
			f := [3]int{t[(k+1)%4], t[(k+2)%4], t[(k+3)%4]}
			sort.Ints(f[:])
			count[f]++
		}
	}
	surface := make([]bool, n)
	for f, c := range count {
		if c == 1 {
			surface[f[0]], surface[f[1]], surface[f[2]] = true, true, true
		}
	}
	return surface
}

func (on *onode) addConn(c int) {
	for _, existing := range on.conn {
		if c == existing {
			return
		}
	}
	on.conn = append(on.conn, c)
}

// compressAndSmooth moves mesh surface nodes and nodes outside s towards the
// surface of s by a fraction compress of their distance and then applies
// laplacian smoothing to the remaining nodes.
func (om *omesh) compressAndSmooth(compress float64, s SDF3) {
	if compress > 1 || compress < 0 {
		panic("compress must be in [0,1]")
	}
	boundary := make(map[int]struct{})
	for i, nod := range om.nodes {
		if len(nod.conn) == 0 {
			continue
		}
		d := s.Evaluate(nod.pos)
		if d <= 0 && !om.surface[i] {
			continue
		}
		boundary[i] = struct{}{}
		if d == 0 {
			continue
		}
		g := gradient(nod.pos, 1e-6, s.Evaluate)
		if g == (r3.Vec{}) {
			continue
		}
		om.nodes[i].pos = r3.Sub(nod.pos, r3.Scale(compress*d, r3.Unit(g)))
	}
	for i, nod := range om.nodes {
		if _, ok := boundary[i]; ok || len(nod.conn) == 0 {
			continue // boundary nodes keep their compressed position.
		}
		var sum r3.Vec
		for _, conn := range nod.conn {
			sum = r3.Add(sum, om.nodes[conn].pos)
		}
		om.nodes[i].pos = r3.Scale(1/float64(len(nod.conn)), sum)
	}
}

// compact drops nodes not referenced by any tetrahedron and renumbers
// the tetrahedra.
func (om *omesh) compact() (nodes []r3.Vec, tetras [][4]int) {
	newIdx := make([]int, len(om.nodes))
	for i, nod := range om.nodes {
		newIdx[i] = -1
		if len(nod.conn) > 0 {
			newIdx[i] = len(nodes)
			nodes = append(nodes, nod.pos)
		}
	}
	tetras = make([][4]int, len(om.tetras))
	for i, t := range om.tetras {
		for k, n := range t {
			tetras[i][k] = newIdx[n]
		}
	}
	return nodes, tetras
}
