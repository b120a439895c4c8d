package softbody

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/softbody/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// faceWinding holds, for each tetrahedron node k, the two other nodes
// whose edges from k span the face plane anchored at k:
//
//	normal[k] = (x[w0]-x[k]) × (x[w1]-x[k])
//
// For a positively oriented tetrahedron all four normals point outward.
var faceWinding = [4][2]int{
	{3, 2}, // plane x0 x3 x2
	{2, 3}, // plane x1 x2 x3
	{1, 0}, // plane x2 x1 x0
	{0, 1}, // plane x3 x0 x1
}

var errDegenerateTetra = errors.New("degenerate tetrahedron")

// Tetrahedron is a four node simplex of the simulation mesh. It
// distributes mass to its nodes and embeds visual mesh vertices by
// barycentric coordinates.
type Tetrahedron struct {
	ID    int
	Nodes [4]int
	// Normals holds the outward unit normal of the face plane anchored at Nodes[k].
	Normals [4]r3.Vec
	Volume  float64
	Mass    float64

	// Vertices are indices of embedded visual mesh vertices. Weights[i]
	// holds the barycentric weights of Vertices[i].
	Vertices []int
	Weights  [][4]float64
	// slot maps a visual vertex index to its position in Vertices.
	slot map[int]int
}

// NewTetrahedron creates a tetrahedron over the four node indices and
// computes its face normals and volume from the current node positions.
func NewTetrahedron(id int, nodeIdx [4]int, nodes []Node) (*Tetrahedron, error) {
	for i, n := range nodeIdx {
		if n < 0 || n >= len(nodes) {
			return nil, fmt.Errorf("tetrahedron %d: node index %d out of range [0,%d)", id, n, len(nodes))
		}
		for j := 0; j < i; j++ {
			if nodeIdx[j] == n {
				return nil, fmt.Errorf("tetrahedron %d: repeated node %d", id, n)
			}
		}
	}
	t := &Tetrahedron{ID: id, Nodes: nodeIdx}
	t.CalculateVolume(nodes)
	if !(t.Volume > 0) || math.IsInf(t.Volume, 0) {
		return nil, fmt.Errorf("tetrahedron %d: volume %g: %w", id, t.Volume, errDegenerateTetra)
	}
	t.UpdateNormals(nodes)
	return t, nil
}

func (t *Tetrahedron) pos(nodes []Node, k int) r3.Vec {
	return nodes[t.Nodes[k]].Pos
}

// signedVolume returns the volume of the tetrahedron with the sign of its orientation.
func (t *Tetrahedron) signedVolume(nodes []Node) float64 {
	x0 := t.pos(nodes, 0)
	return d3.TripleProduct(
		r3.Sub(t.pos(nodes, 1), x0),
		r3.Sub(t.pos(nodes, 2), x0),
		r3.Sub(t.pos(nodes, 3), x0),
	) / 6
}

// UpdateNormals recomputes the face normals from current node positions.
// Normals of negatively oriented tetrahedra are flipped to point outward.
func (t *Tetrahedron) UpdateNormals(nodes []Node) {
	sign := 1.0
	if t.signedVolume(nodes) < 0 {
		sign = -1
	}
	for k, w := range faceWinding {
		xk := t.pos(nodes, k)
		n := r3.Cross(r3.Sub(t.pos(nodes, w[0]), xk), r3.Sub(t.pos(nodes, w[1]), xk))
		t.Normals[k] = r3.Scale(sign, r3.Unit(n))
	}
}

// CalculateVolume sets the tetrahedron's volume from current node positions.
func (t *Tetrahedron) CalculateVolume(nodes []Node) {
	t.Volume = math.Abs(t.signedVolume(nodes))
}

// CalculateMass sets the tetrahedron's mass given a mass density.
func (t *Tetrahedron) CalculateMass(density float64) {
	t.Mass = density * t.Volume
}

// DistributeMass hands a quarter of the tetrahedron's mass to each of its nodes.
func (t *Tetrahedron) DistributeMass(nodes []Node, policy MassPolicy) {
	share := t.Mass / 4
	for _, n := range t.Nodes {
		switch policy {
		case MassAccumulate:
			nodes[n].Mass += share
		case MassOverwrite:
			nodes[n].Mass = share
		default:
			panic("unreachable: invalid mass policy " + policy.String())
		}
	}
}

// Centroid returns the mean of the four node positions.
func (t *Tetrahedron) Centroid(nodes []Node) r3.Vec {
	var sum r3.Vec
	for k := range t.Nodes {
		sum = r3.Add(sum, t.pos(nodes, k))
	}
	return r3.Scale(0.25, sum)
}

// onFaceTol is the distance outside a face, relative to the cube root of the
// volume, at which a point is still considered on the face.
const onFaceTol = 1e-9

// Contains reports whether p lies inside or on the boundary of the tetrahedron.
// It does not modify the tetrahedron.
func (t *Tetrahedron) Contains(nodes []Node, p r3.Vec) bool {
	tol := onFaceTol * math.Cbrt(t.Volume)
	for k := range t.Nodes {
		if r3.Dot(t.Normals[k], r3.Sub(p, t.pos(nodes, k))) > tol {
			return false
		}
	}
	return true
}

// ContainsVertex tests whether the visual vertex at index vertex with
// position p lies in the tetrahedron. On success the vertex is registered as
// embedded and a matching call to CalculateBarycentricCoords must follow.
// Callers should test each vertex against a tetrahedron only once.
func (t *Tetrahedron) ContainsVertex(nodes []Node, vertex int, p r3.Vec) bool {
	if !t.Contains(nodes, p) {
		return false
	}
	if t.slot == nil {
		t.slot = make(map[int]int)
	}
	t.slot[vertex] = len(t.Vertices)
	t.Vertices = append(t.Vertices, vertex)
	return true
}

// SubVolume returns the volume of the tetrahedron obtained by replacing
// node excluded with p.
func (t *Tetrahedron) SubVolume(nodes []Node, excluded int, p r3.Vec) float64 {
	var x [4]r3.Vec
	for k := range x {
		x[k] = t.pos(nodes, k)
	}
	x[excluded] = p
	v := d3.TripleProduct(r3.Sub(x[1], x[0]), r3.Sub(x[2], x[0]), r3.Sub(x[3], x[0]))
	return math.Abs(v) / 6
}

// CalculateBarycentricCoords computes the weights of p relative to the
// current node positions and appends them as the record of the most
// recently registered vertex.
func (t *Tetrahedron) CalculateBarycentricCoords(nodes []Node, p r3.Vec) [4]float64 {
	if len(t.Weights) >= len(t.Vertices) {
		panic("barycentric coordinates computed without a registered vertex")
	}
	var w [4]float64
	for k := range w {
		w[k] = t.SubVolume(nodes, k, p) / t.Volume
	}
	t.Weights = append(t.Weights, w)
	return w
}

// UpdateVertex reconstructs the position of the embedded vertex as the
// weighted sum of the current node positions. It returns false if the
// vertex is not embedded in t.
func (t *Tetrahedron) UpdateVertex(nodes []Node, vertex int) (r3.Vec, bool) {
	i, ok := t.slot[vertex]
	if !ok {
		return r3.Vec{}, false
	}
	var v r3.Vec
	for k, w := range t.Weights[i] {
		v = r3.Add(v, r3.Scale(w, t.pos(nodes, k)))
	}
	return v, true
}

// clearEmbedding forgets every embedded vertex.
func (t *Tetrahedron) clearEmbedding() {
	t.Vertices = t.Vertices[:0]
	t.Weights = t.Weights[:0]
	t.slot = nil
}
