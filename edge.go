package softbody

import "fmt"

// Edge is an unordered pair of node indices. NewEdge stores
// the lower index first so equal edges compare equal.
type Edge [2]int

// NewEdge returns the edge joining nodes a and b.
func NewEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{a, b}
}

func (e Edge) String() string {
	return fmt.Sprintf("%d-%d", e[0], e[1])
}

// tetraEdges lists the 6 node pairs of a tetrahedron in local indices.
var tetraEdges = [6][2]int{
	{0, 1}, {0, 2}, {0, 3},
	{1, 2}, {1, 3},
	{2, 3},
}
