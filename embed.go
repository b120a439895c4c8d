package softbody

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// Embed binds the vertices of a visual mesh, given in local space, to the
// simulation. Each vertex is transformed to world space with s.Transform and
// assigned to the first tetrahedron in s.Tetrahedra containing it, which
// stores the vertex's barycentric weights. Vertices outside every
// tetrahedron are left unembedded and keep their rest position.
//
// Embed must be called before Step moves the nodes since weights are
// computed against current node positions and the rest volume.
// It returns the number of embedded vertices.
func (s *Solid) Embed(local []r3.Vec) int {
	s.rest = append([]r3.Vec(nil), local...)
	s.deformed = make([]r3.Vec, len(local))
	s.owner = make([]int, len(local))
	for i := range s.Tetrahedra {
		s.Tetrahedra[i].clearEmbedding()
	}
	index := newTetraIndex(s.Nodes, s.Tetrahedra)
	var (
		embedded   int
		candidates []int
	)
	for i, v := range local {
		s.owner[i] = -1
		p := s.Transform.Transform(v)
		candidates = index.candidates(candidates[:0], p)
		for _, ti := range candidates {
			t := &s.Tetrahedra[ti]
			if !t.ContainsVertex(s.Nodes, i, p) {
				continue
			}
			t.CalculateBarycentricCoords(s.Nodes, p)
			s.owner[i] = ti
			embedded++
			break
		}
	}
	s.Deform()
	return embedded
}

// Deform recomputes every embedded vertex from the current node positions
// and returns the deformed vertex buffer in local space, in the order the
// vertices were passed to Embed. The returned slice is reused by later calls.
func (s *Solid) Deform() []r3.Vec {
	inv := s.Transform.Inv()
	for i, v := range s.rest {
		ti := s.owner[i]
		if ti < 0 {
			s.deformed[i] = v
			continue
		}
		world, ok := s.Tetrahedra[ti].UpdateVertex(s.Nodes, i)
		if !ok {
			panic("bug: embedded vertex not found in its tetrahedron")
		}
		s.deformed[i] = inv.Transform(world)
	}
	return s.deformed
}

// Embedded returns the number of visual vertices bound to a tetrahedron.
func (s *Solid) Embedded() (n int) {
	for _, ti := range s.owner {
		if ti >= 0 {
			n++
		}
	}
	return n
}

// Owner returns the index in s.Tetrahedra of the tetrahedron embedding the
// visual vertex, or -1 if the vertex is not embedded.
func (s *Solid) Owner(vertex int) int {
	if vertex < 0 || vertex >= len(s.owner) {
		return -1
	}
	return s.owner[vertex]
}

// RestVertices returns the visual vertices as passed to the last call
// to Embed. The slice must not be modified.
func (s *Solid) RestVertices() []r3.Vec { return s.rest }

// tetraIndex finds tetrahedra that may contain a point by searching
// a kd-tree of tetrahedron centroids. Every point of a tetrahedron lies
// within radius of its centroid.
type tetraIndex struct {
	tree    *kdtree.Tree
	radius2 float64
}

var (
	_ kdtree.Interface  = centroids{}
	_ kdtree.Comparable = centroid{}
)

func newTetraIndex(nodes []Node, tetras []Tetrahedron) *tetraIndex {
	if len(tetras) == 0 {
		return &tetraIndex{}
	}
	cs := make(centroids, len(tetras))
	var r2 float64
	for i := range tetras {
		t := &tetras[i]
		c := t.Centroid(nodes)
		cs[i] = centroid{C: c, idx: i}
		for _, n := range t.Nodes {
			if d2 := r3.Norm2(r3.Sub(nodes[n].Pos, c)); d2 > r2 {
				r2 = d2
			}
		}
	}
	return &tetraIndex{
		tree: kdtree.New(cs, false),
		// Slack for points lying on a tetrahedron vertex.
		radius2: r2 * (1 + 1e-6),
	}
}

// candidates appends to dst the indices of tetrahedra whose centroid is
// close enough to p, in ascending order.
func (ti *tetraIndex) candidates(dst []int, p r3.Vec) []int {
	if ti.tree == nil {
		return dst
	}
	keep := kdtree.NewDistKeeper(ti.radius2)
	ti.tree.NearestSet(keep, centroid{C: p, idx: -1})
	for _, cd := range keep.Heap {
		if cd.Comparable == nil {
			continue // distance sentinel.
		}
		dst = append(dst, cd.Comparable.(centroid).idx)
	}
	sort.Ints(dst)
	return dst
}

type centroid struct {
	C   r3.Vec
	idx int
}

func (c centroid) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	q := b.(centroid)
	switch d {
	case 0:
		return c.C.X - q.C.X
	case 1:
		return c.C.Y - q.C.Y
	case 2:
		return c.C.Z - q.C.Z
	}
	panic("unreachable")
}

func (c centroid) Dims() int { return 3 }

// Distance returns the squared euclidean distance between centroids.
func (c centroid) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(c.C, b.(centroid).C))
}

type centroids []centroid

func (cs centroids) Index(i int) kdtree.Comparable { return cs[i] }
func (cs centroids) Len() int                      { return len(cs) }
func (cs centroids) Slice(start, end int) kdtree.Interface {
	return cs[start:end]
}

func (cs centroids) Pivot(d kdtree.Dim) int {
	p := centroidPlane{dim: d, cs: cs}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

type centroidPlane struct {
	dim kdtree.Dim
	cs  centroids
}

func (p centroidPlane) Less(i, j int) bool {
	return p.cs[i].Compare(p.cs[j], p.dim) < 0
}
func (p centroidPlane) Swap(i, j int) { p.cs[i], p.cs[j] = p.cs[j], p.cs[i] }
func (p centroidPlane) Len() int      { return len(p.cs) }
func (p centroidPlane) Slice(start, end int) kdtree.SortSlicer {
	p.cs = p.cs[start:end]
	return p
}
