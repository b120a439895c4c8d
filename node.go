package softbody

import "gonum.org/v1/gonum/spatial/r3"

// Node is a point mass of the simulation. Nodes are stored contiguously
// in a Solid and referenced everywhere else by their index.
type Node struct {
	Pos   r3.Vec
	Vel   r3.Vec
	Force r3.Vec
	// Mass is derived from the tetrahedra incident to the node.
	Mass float64
	// Fixed nodes are skipped by the integrator. Their position is
	// owned by whoever fixed them.
	Fixed   bool
	Damping float64
}

// computeForces adds gravity and velocity damping to the node's force.
func (n *Node) computeForces(gravity r3.Vec) {
	n.Force = r3.Add(n.Force, r3.Scale(n.Mass, gravity))
	n.Force = r3.Sub(n.Force, r3.Scale(n.Damping, n.Vel))
}

// integrate advances the node by h. Fixed and massless nodes do not move.
func (n *Node) integrate(method Integration, h float64) {
	if n.Fixed || n.Mass <= 0 {
		return
	}
	accel := r3.Scale(1/n.Mass, n.Force)
	switch method {
	case Explicit:
		n.Pos = r3.Add(n.Pos, r3.Scale(h, n.Vel))
		n.Vel = r3.Add(n.Vel, r3.Scale(h, accel))
	case Symplectic:
		n.Vel = r3.Add(n.Vel, r3.Scale(h, accel))
		n.Pos = r3.Add(n.Pos, r3.Scale(h, n.Vel))
	default:
		panic("unreachable: invalid integration " + method.String())
	}
}
