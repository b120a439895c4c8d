package softbody

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Integration selects the ordering of the velocity and position updates
// performed during a substep.
type Integration int

const (
	// Explicit updates position with the velocity at the start of the step
	// and then updates velocity with the accumulated force:
	//  x(t+h) = x(t) + h*v(t)
	//  v(t+h) = v(t) + h*F/m
	Explicit Integration = iota
	// Symplectic updates velocity first and then advances position
	// using the new velocity:
	//  v(t+h) = v(t) + h*F/m
	//  x(t+h) = x(t) + h*v(t+h)
	Symplectic
)

func (i Integration) String() string {
	switch i {
	case Explicit:
		return "explicit"
	case Symplectic:
		return "symplectic"
	}
	return fmt.Sprintf("Integration(%d)", int(i))
}

// ParseIntegration returns the Integration named by s.
func ParseIntegration(s string) (Integration, error) {
	switch s {
	case "explicit":
		return Explicit, nil
	case "symplectic":
		return Symplectic, nil
	}
	return 0, fmt.Errorf("unknown integration method %q", s)
}

// MassPolicy decides how tetrahedron mass is handed to shared nodes.
type MassPolicy int

const (
	// MassAccumulate adds a quarter of every incident tetrahedron's mass to a node.
	MassAccumulate MassPolicy = iota
	// MassOverwrite assigns a quarter of the last processed incident
	// tetrahedron's mass, discarding earlier contributions.
	MassOverwrite
)

func (m MassPolicy) String() string {
	switch m {
	case MassAccumulate:
		return "accumulate"
	case MassOverwrite:
		return "overwrite"
	}
	return fmt.Sprintf("MassPolicy(%d)", int(m))
}

// Params are the material parameters read from a parameters file.
type Params struct {
	// Stiffness of every spring.
	Stiffness float64
	// Damping is used both as spring damping and as node damping.
	Damping float64
	// MassDensity multiplies tetrahedron volume to obtain its mass.
	MassDensity float64
}

// DefaultParams returns the material used when the parameters file
// does not name a value.
func DefaultParams() Params {
	return Params{
		Stiffness:   500,
		Damping:     0.5,
		MassDensity: 4,
	}
}

// Config holds simulation parameters that are not a property of the material.
type Config struct {
	// TimeStep is the duration of one fixed tick. Every tick is
	// divided into Substeps substeps of equal duration.
	TimeStep float64
	Substeps int
	Gravity  r3.Vec
	// Integration may be changed between ticks.
	Integration Integration
	MassPolicy  MassPolicy
	// DedupSprings creates a single spring per tetrahedron edge
	// instead of one per tetrahedron incident to the edge.
	DedupSprings bool
	// Paused is the initial state of the pause gate.
	Paused bool
}

// DefaultConfig returns a Config stepping 50 ticks per second with 5 substeps each.
func DefaultConfig() Config {
	return Config{
		TimeStep:    0.02,
		Substeps:    5,
		Gravity:     r3.Vec{Y: -9.81},
		Integration: Symplectic,
		MassPolicy:  MassAccumulate,
	}
}

// Validate returns a non-nil error if the Config cannot drive a simulation.
func (c Config) Validate() error {
	switch {
	case c.TimeStep <= 0:
		return errors.New("time step must be positive")
	case c.Substeps < 1:
		return errors.New("substeps must be at least 1")
	case c.Integration != Explicit && c.Integration != Symplectic:
		return fmt.Errorf("invalid integration %v", c.Integration)
	case c.MassPolicy != MassAccumulate && c.MassPolicy != MassOverwrite:
		return fmt.Errorf("invalid mass policy %v", c.MassPolicy)
	}
	return nil
}
