package softbody

import (
	"github.com/soypat/softbody/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Anchor pins the nodes of a Solid that lie inside a box and moves them
// rigidly with an external transform. The anchor only writes the Pos and
// Fixed fields of the nodes it pins; it never owns them.
type Anchor struct {
	solid *Solid
	nodes []int
	last  r3.Vec
}

// NewAnchor fixes every node of s inside bounds, bounds included.
// origin is the position of the external transform the anchor follows.
func NewAnchor(s *Solid, bounds r3.Box, origin r3.Vec) *Anchor {
	a := &Anchor{solid: s, last: origin}
	box := d3.Box(bounds)
	for i := range s.Nodes {
		if box.Contains(s.Nodes[i].Pos) {
			s.Nodes[i].Fixed = true
			a.nodes = append(a.nodes, i)
		}
	}
	return a
}

// Nodes returns the indices of the pinned nodes.
func (a *Anchor) Nodes() []int { return a.nodes }

// Follow translates the pinned nodes by the displacement of the external
// transform since the previous call to Follow or since creation and
// refreshes spring lengths so the next Step sees the moved nodes.
func (a *Anchor) Follow(position r3.Vec) {
	delta := r3.Sub(position, a.last)
	a.last = position
	if delta == (r3.Vec{}) {
		return
	}
	for _, i := range a.nodes {
		n := &a.solid.Nodes[i]
		n.Pos = r3.Add(n.Pos, delta)
	}
	a.solid.UpdateSpringLengths()
}

// Release unfixes the pinned nodes so they are integrated again.
// The anchor is empty afterwards.
func (a *Anchor) Release() {
	for _, i := range a.nodes {
		a.solid.Nodes[i].Fixed = false
	}
	a.nodes = nil
}
