package softbody

import "gonum.org/v1/gonum/spatial/r3"

// Spring is a damped elastic connector between nodes A and B.
type Spring struct {
	A, B int
	// Length is the current length, refreshed after every integration.
	Length float64
	// RestLength is the distance between the nodes at construction.
	RestLength float64
	Stiffness  float64
	Damping    float64
}

func newSpring(nodes []Node, a, b int, k, d float64) Spring {
	s := Spring{A: a, B: b, Stiffness: k, Damping: d}
	s.UpdateLength(nodes)
	s.RestLength = s.Length
	return s
}

// UpdateLength recomputes the spring's current length.
func (s *Spring) UpdateLength(nodes []Node) {
	s.Length = r3.Norm(r3.Sub(nodes[s.B].Pos, nodes[s.A].Pos))
}

// Edge returns the unordered node pair joined by the spring.
func (s *Spring) Edge() Edge { return NewEdge(s.A, s.B) }

// ComputeForces adds the elastic and damping forces of the spring to both nodes.
// The force on A is -k*(L-L0)*u with u the unit vector from B to A, B receives the opposite.
func (s *Spring) ComputeForces(nodes []Node) {
	na, nb := &nodes[s.A], &nodes[s.B]
	ab := r3.Sub(na.Pos, nb.Pos)
	if s.Length == 0 || ab == (r3.Vec{}) {
		// Coincident nodes have no defined axis.
		return
	}
	u := r3.Unit(ab)
	fA := r3.Scale(-s.Stiffness*(s.Length-s.RestLength), u)
	// Damping acts on the relative velocity projected onto the axis.
	vrel := r3.Dot(r3.Sub(na.Vel, nb.Vel), u)
	fA = r3.Sub(fA, r3.Scale(s.Damping*vrel, u))
	na.Force = r3.Add(na.Force, fA)
	nb.Force = r3.Sub(nb.Force, fA)
}

// elasticEnergy returns the potential energy stored in the spring.
func (s *Spring) elasticEnergy() float64 {
	dl := s.Length - s.RestLength
	return 0.5 * s.Stiffness * dl * dl
}
