// Command softbody simulates a tetrahedral mass-spring solid and deforms a
// visual mesh embedded in it.
//
// The simulation mesh is read from TetGen style .node and .ele files or
// generated from a primitive shape. The visual mesh is read from an STL or
// glTF file, or taken as the boundary of the simulation mesh. Nodes in the
// top slab of the solid are pinned to an anchor that travels an eased path.
//
//	softbody -shape sphere -res 0.2 -move 0,1,0 -out deformed.glb -png final.png -plot energy.png
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/soypat/softbody"
	"github.com/soypat/softbody/helpers/motion"
	"gonum.org/v1/gonum/spatial/r3"
)

type config struct {
	// Simulation mesh input.
	ParamsFile, NodeFile, EleFile string
	Shape                         string
	Size                          float64
	Resolution                    float64
	// Visual mesh input and placement.
	MeshFile string
	Offset   r3.Vec

	Sim    softbody.Config
	Params softbody.Params

	Ticks    int
	PauseAt  int // tick at which the pause gate toggles, negative disables.
	Pin      float64
	Move     r3.Vec
	MoveTime float64
	Ease     string

	// Outputs.
	Out, PNG, Plot, WriteMesh string
	FramesDir                 string
	FrameEvery                int
	Width, Height             int
	Verbose                   bool
}

func main() {
	log.SetFlags(0)
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func parseFlags(args []string) (config, error) {
	cfg := config{
		Sim:    softbody.DefaultConfig(),
		Params: softbody.DefaultParams(),
	}
	var (
		integration = cfg.Sim.Integration.String()
		gravity     = vecFlag{&cfg.Sim.Gravity}
		overwrite   bool
	)
	fs := flag.NewFlagSet("softbody", flag.ContinueOnError)
	fs.StringVar(&cfg.ParamsFile, "params", "", "material parameters file")
	fs.StringVar(&cfg.NodeFile, "node", "", "TetGen .node file of the simulation mesh")
	fs.StringVar(&cfg.EleFile, "ele", "", "TetGen .ele file of the simulation mesh")
	fs.StringVar(&cfg.Shape, "shape", "box", "generated simulation mesh shape when no .node/.ele given (box, sphere, cylinder)")
	fs.Float64Var(&cfg.Size, "size", 1, "characteristic size of the generated shape")
	fs.Float64Var(&cfg.Resolution, "res", 0.2, "lattice cell size of the generated mesh")
	fs.StringVar(&cfg.MeshFile, "mesh", "", "visual mesh file (.stl, .gltf, .glb), defaults to the simulation mesh boundary")
	fs.Var(vecFlag{&cfg.Offset}, "offset", "world position of the visual mesh origin as x,y,z")

	fs.Float64Var(&cfg.Sim.TimeStep, "dt", cfg.Sim.TimeStep, "fixed tick duration in seconds")
	fs.IntVar(&cfg.Sim.Substeps, "substeps", cfg.Sim.Substeps, "substeps per tick")
	fs.Var(gravity, "gravity", "gravity as x,y,z")
	fs.StringVar(&integration, "integration", integration, "integration method (explicit, symplectic)")
	fs.BoolVar(&cfg.Sim.DedupSprings, "dedup", false, "create a single spring per tetrahedron edge")
	fs.BoolVar(&overwrite, "overwrite-mass", false, "node mass from its last tetrahedron only")
	fs.BoolVar(&cfg.Sim.Paused, "paused", false, "start with the simulation paused")
	fs.Float64Var(&cfg.Params.Stiffness, "stiffness", cfg.Params.Stiffness, "spring stiffness, overridden by -params")
	fs.Float64Var(&cfg.Params.Damping, "damping", cfg.Params.Damping, "spring and node damping, overridden by -params")
	fs.Float64Var(&cfg.Params.MassDensity, "density", cfg.Params.MassDensity, "mass density, overridden by -params")

	fs.IntVar(&cfg.Ticks, "ticks", 250, "number of fixed ticks to simulate")
	fs.IntVar(&cfg.PauseAt, "pause-at", -1, "tick at which the pause gate is toggled")
	fs.Float64Var(&cfg.Pin, "pin", 0.1, "fraction of the solid height pinned to the anchor from the top, 0 disables")
	fs.Var(vecFlag{&cfg.Move}, "move", "anchor displacement as x,y,z")
	fs.Float64Var(&cfg.MoveTime, "move-time", 2, "seconds the anchor takes to complete its displacement")
	fs.StringVar(&cfg.Ease, "ease", "inoutquad", "anchor easing, one of "+strings.Join(motion.EasingNames(), ", "))

	fs.StringVar(&cfg.Out, "out", "", "deformed visual mesh output (.stl, .gltf, .glb)")
	fs.StringVar(&cfg.PNG, "png", "", "snapshot of the final deformed mesh")
	fs.StringVar(&cfg.Plot, "plot", "", "energy over time plot (.png, .svg, .pdf)")
	fs.StringVar(&cfg.WriteMesh, "write-mesh", "", "write the simulation mesh as <prefix>.params, .node and .ele")
	fs.StringVar(&cfg.FramesDir, "frames", "", "directory to write snapshots every -frame-every ticks")
	fs.IntVar(&cfg.FrameEvery, "frame-every", 5, "ticks between frame snapshots")
	fs.IntVar(&cfg.Width, "width", 640, "snapshot width in pixels")
	fs.IntVar(&cfg.Height, "height", 360, "snapshot height in pixels")
	fs.BoolVar(&cfg.Verbose, "v", false, "log energy every tick")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments %q", fs.Args())
	}
	var err error
	cfg.Sim.Integration, err = softbody.ParseIntegration(integration)
	if err != nil {
		return cfg, err
	}
	if overwrite {
		cfg.Sim.MassPolicy = softbody.MassOverwrite
	}
	if (cfg.NodeFile == "") != (cfg.EleFile == "") {
		return cfg, fmt.Errorf("-node and -ele must be given together")
	}
	if cfg.FrameEvery < 1 {
		return cfg, fmt.Errorf("-frame-every must be at least 1")
	}
	return cfg, cfg.Sim.Validate()
}

// vecFlag is a flag.Value of a comma separated 3D vector.
type vecFlag struct{ v *r3.Vec }

func (f vecFlag) String() string {
	if f.v == nil {
		return ""
	}
	return formatVec(*f.v)
}

func (f vecFlag) Set(s string) error {
	v, err := parseVec(s)
	if err != nil {
		return err
	}
	*f.v = v
	return nil
}

func parseVec(s string) (r3.Vec, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return r3.Vec{}, fmt.Errorf("vector %q: want 3 comma separated components", s)
	}
	var c [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("vector %q: %w", s, err)
		}
		c[i] = v
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

func formatVec(v r3.Vec) string {
	return strconv.FormatFloat(v.X, 'g', -1, 64) + "," +
		strconv.FormatFloat(v.Y, 'g', -1, 64) + "," +
		strconv.FormatFloat(v.Z, 'g', -1, 64)
}
