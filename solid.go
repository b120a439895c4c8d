// Package softbody simulates deformable volumetric solids as tetrahedral
// mass-spring systems and deforms a separate visual mesh by embedding its
// vertices in the simulated tetrahedra.
package softbody

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Solid is a deformable volumetric body simulated as a tetrahedral
// mass-spring system. It owns all nodes; springs and tetrahedra refer
// to nodes by their index in Nodes, which is stable for the
// lifetime of the Solid.
//
// A host calls Step at a fixed rate to advance the physics and Deform
// once per rendered frame to obtain the deformed visual mesh.
// Solid is not safe for concurrent use.
type Solid struct {
	Nodes      []Node
	Springs    []Spring
	Tetrahedra []Tetrahedron
	// Transform maps visual mesh coordinates to the world
	// coordinates the simulation runs in.
	Transform Transform

	cfg    Config
	params Params
	// h is the substep duration.
	h      float64
	paused bool
	// edges maps an edge to its spring when springs are deduplicated.
	edges map[Edge]int

	// Visual mesh embedding state, see Embed.
	rest     []r3.Vec
	deformed []r3.Vec
	owner    []int
}

// NewSolid returns an empty Solid. Nodes, springs and tetrahedra
// are added with AddNode, AddSpring and AddTetrahedron.
func NewSolid(cfg Config, p Params) (*Solid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Solid{
		cfg:    cfg,
		params: p,
		h:      cfg.TimeStep / float64(cfg.Substeps),
		paused: cfg.Paused,
	}
	if cfg.DedupSprings {
		s.edges = make(map[Edge]int)
	}
	return s, nil
}

// NewSolidFromMesh builds a Solid from node positions and tetrahedra given
// as zero based node index quadruples. Each tetrahedron contributes its
// 6 edges as springs and a quarter of its mass to each of its nodes.
// The tetrahedron id is its position in tetras.
func NewSolidFromMesh(cfg Config, p Params, positions []r3.Vec, tetras [][4]int) (*Solid, error) {
	s, err := NewSolid(cfg, p)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, errors.New("no nodes in mesh")
	}
	s.Nodes = make([]Node, 0, len(positions))
	for _, pos := range positions {
		s.AddNode(pos)
	}
	s.Tetrahedra = make([]Tetrahedron, 0, len(tetras))
	s.Springs = make([]Spring, 0, 6*len(tetras))
	for i, tetra := range tetras {
		if _, err := s.AddTetrahedron(i, tetra); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddNode appends a massless node at pos and returns its index.
func (s *Solid) AddNode(pos r3.Vec) int {
	s.Nodes = append(s.Nodes, Node{Pos: pos, Damping: s.params.Damping})
	return len(s.Nodes) - 1
}

// AddSpring joins nodes a and b with a spring at rest at their current
// distance and returns the spring's index. If springs are deduplicated
// and the edge already has a spring that spring's index is returned.
func (s *Solid) AddSpring(a, b int) (int, error) {
	if a < 0 || b < 0 || a >= len(s.Nodes) || b >= len(s.Nodes) {
		return -1, fmt.Errorf("spring %d-%d: node index out of range [0,%d)", a, b, len(s.Nodes))
	}
	if a == b {
		return -1, fmt.Errorf("spring %d-%d joins a node to itself", a, b)
	}
	e := NewEdge(a, b)
	if s.edges != nil {
		if idx, ok := s.edges[e]; ok {
			return idx, nil
		}
		s.edges[e] = len(s.Springs)
	}
	s.Springs = append(s.Springs, newSpring(s.Nodes, a, b, s.params.Stiffness, s.params.Damping))
	return len(s.Springs) - 1, nil
}

// AddTetrahedron adds the tetrahedron over the four node indices, hands its
// mass to the nodes and adds springs along its 6 edges.
func (s *Solid) AddTetrahedron(id int, nodes [4]int) (int, error) {
	t, err := NewTetrahedron(id, nodes, s.Nodes)
	if err != nil {
		return -1, err
	}
	t.CalculateMass(s.params.MassDensity)
	t.DistributeMass(s.Nodes, s.cfg.MassPolicy)
	s.Tetrahedra = append(s.Tetrahedra, *t)
	for _, e := range tetraEdges {
		if _, err := s.AddSpring(nodes[e[0]], nodes[e[1]]); err != nil {
			return -1, err // unreachable after NewTetrahedron validation.
		}
	}
	return len(s.Tetrahedra) - 1, nil
}

// Config returns the configuration the Solid was created with,
// reflecting later calls to SetIntegration and SetGravity.
func (s *Solid) Config() Config {
	cfg := s.cfg
	cfg.Paused = s.paused
	return cfg
}

// Params returns the material parameters of the Solid.
func (s *Solid) Params() Params { return s.params }

// SubstepDuration returns the time advanced by a single substep.
func (s *Solid) SubstepDuration() float64 { return s.h }

// SetIntegration changes the integration method starting with the next tick.
func (s *Solid) SetIntegration(method Integration) error {
	if method != Explicit && method != Symplectic {
		return fmt.Errorf("invalid integration %v", method)
	}
	s.cfg.Integration = method
	return nil
}

// SetGravity sets the gravity acceleration applied to every node.
func (s *Solid) SetGravity(g r3.Vec) { s.cfg.Gravity = g }

// SetStiffness overrides the stiffness of every spring.
func (s *Solid) SetStiffness(k float64) {
	s.params.Stiffness = k
	for i := range s.Springs {
		s.Springs[i].Stiffness = k
	}
}

// SetDamping overrides the damping of every spring and node.
func (s *Solid) SetDamping(d float64) {
	s.params.Damping = d
	for i := range s.Springs {
		s.Springs[i].Damping = d
	}
	for i := range s.Nodes {
		s.Nodes[i].Damping = d
	}
}

// Paused reports whether Step is currently a no-op.
func (s *Solid) Paused() bool { return s.paused }

// TogglePause pauses a running simulation or resumes a paused one.
func (s *Solid) TogglePause() { s.paused = !s.paused }

// Step advances the simulation by one fixed tick split in the configured
// number of substeps. Step does nothing while the Solid is paused.
func (s *Solid) Step() {
	if s.paused {
		return
	}
	for i := 0; i < s.cfg.Substeps; i++ {
		s.substep()
	}
}

func (s *Solid) substep() {
	method := s.cfg.Integration
	if method != Explicit && method != Symplectic {
		panic("unreachable: invalid integration " + method.String())
	}
	for i := range s.Nodes {
		s.Nodes[i].Force = r3.Vec{}
	}
	for i := range s.Nodes {
		s.Nodes[i].computeForces(s.cfg.Gravity)
	}
	for i := range s.Springs {
		s.Springs[i].ComputeForces(s.Nodes)
	}
	for i := range s.Nodes {
		s.Nodes[i].integrate(method, s.h)
	}
	s.UpdateSpringLengths()
}

// UpdateSpringLengths refreshes every spring's current length from
// node positions. Call it after moving nodes outside of Step.
func (s *Solid) UpdateSpringLengths() {
	for i := range s.Springs {
		s.Springs[i].UpdateLength(s.Nodes)
	}
}

// TotalMass returns the sum of node masses.
func (s *Solid) TotalMass() (m float64) {
	for i := range s.Nodes {
		m += s.Nodes[i].Mass
	}
	return m
}
