package softbody

import "gonum.org/v1/gonum/spatial/r3"

// KineticEnergy returns the sum of ½mv² over all nodes.
func (s *Solid) KineticEnergy() (e float64) {
	for i := range s.Nodes {
		n := &s.Nodes[i]
		e += 0.5 * n.Mass * r3.Norm2(n.Vel)
	}
	return e
}

// ElasticEnergy returns the potential energy stored in all springs
// using their last computed lengths.
func (s *Solid) ElasticEnergy() (e float64) {
	for i := range s.Springs {
		e += s.Springs[i].elasticEnergy()
	}
	return e
}

// GravitationalEnergy returns the potential energy of the nodes in the
// gravity field relative to the world origin.
func (s *Solid) GravitationalEnergy() (e float64) {
	for i := range s.Nodes {
		n := &s.Nodes[i]
		e -= n.Mass * r3.Dot(s.cfg.Gravity, n.Pos)
	}
	return e
}

// TotalEnergy is the sum of kinetic, elastic and gravitational energy.
func (s *Solid) TotalEnergy() float64 {
	return s.KineticEnergy() + s.ElasticEnergy() + s.GravitationalEnergy()
}
