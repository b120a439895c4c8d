package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/soypat/softbody"
	"github.com/soypat/softbody/helpers/motion"
	"github.com/soypat/softbody/helpers/tetmesh"
	"github.com/soypat/softbody/internal/d3"
	"github.com/soypat/softbody/meshio"
	"github.com/soypat/softbody/render"
	"gonum.org/v1/gonum/spatial/r3"
)

func run(cfg config) error {
	params, err := loadParams(cfg)
	if err != nil {
		return err
	}
	positions, tetras, err := simulationMesh(cfg)
	if err != nil {
		return err
	}
	if cfg.WriteMesh != "" {
		if err := writeMesh(cfg.WriteMesh, params, positions, tetras); err != nil {
			return err
		}
	}
	solid, err := softbody.NewSolidFromMesh(cfg.Sim, params, positions, tetras)
	if err != nil {
		return err
	}
	log.Printf("solid: %d nodes, %d springs, %d tetrahedra, mass %.4g",
		len(solid.Nodes), len(solid.Springs), len(solid.Tetrahedra), solid.TotalMass())

	visual, err := visualMesh(cfg, positions, tetras)
	if err != nil {
		return err
	}
	solid.Transform = softbody.Translation(cfg.Offset)
	embedded := solid.Embed(visual.Vertices)
	log.Printf("visual mesh: %d vertices, %d faces, %d embedded", len(visual.Vertices), len(visual.Faces), embedded)

	anchor, path, err := newAnchor(cfg, solid)
	if err != nil {
		return err
	}
	view := render.DefaultView()
	view.Width, view.Height = cfg.Width, cfg.Height
	// Fixed framing so motion is visible between frames.
	frame := d3.Box(visual.Bounds())
	view.Frame = r3.Box(frame.Enlarge(r3.Scale(0.5, frame.Size())).Translate(anchorReach(cfg)))
	if cfg.FramesDir != "" {
		if err := os.MkdirAll(cfg.FramesDir, 0o777); err != nil {
			return err
		}
	}

	var kinetic, elastic, gravitational, total render.Series
	kinetic.Name, elastic.Name = "kinetic", "elastic"
	gravitational.Name, total.Name = "gravitational", "total"
	var t float64
	for tick := 0; tick < cfg.Ticks; tick++ {
		if tick == cfg.PauseAt {
			solid.TogglePause()
			log.Printf("tick %d: paused=%v", tick, solid.Paused())
		}
		if !solid.Paused() {
			t += cfg.Sim.TimeStep
			if anchor != nil {
				pos, _ := path.Update(cfg.Sim.TimeStep)
				anchor.Follow(pos)
			}
		}
		solid.Step()
		deformed := solid.Deform()

		ek, ee, eg := solid.KineticEnergy(), solid.ElasticEnergy(), solid.GravitationalEnergy()
		kinetic.Add(t, ek)
		elastic.Add(t, ee)
		gravitational.Add(t, eg)
		total.Add(t, ek+ee+eg)
		if cfg.Verbose {
			log.Printf("tick %d t=%.3fs: kinetic %.4g elastic %.4g gravitational %.4g", tick, t, ek, ee, eg)
		}
		if cfg.FramesDir != "" && (tick+1)%cfg.FrameEvery == 0 {
			m, err := visual.WithVertices(deformed)
			if err != nil {
				return err
			}
			name := filepath.Join(cfg.FramesDir, fmt.Sprintf("frame%04d.png", tick+1))
			if err := render.SnapshotPNG(name, m, view); err != nil {
				return fmt.Errorf("tick %d: %w", tick, err)
			}
		}
	}
	log.Printf("simulated %d ticks, %.3gs", cfg.Ticks, t)

	final, err := visual.WithVertices(solid.Deform())
	if err != nil {
		return err
	}
	if cfg.Out != "" {
		if err := saveMesh(cfg.Out, final); err != nil {
			return err
		}
		log.Printf("wrote %s", cfg.Out)
	}
	if cfg.PNG != "" {
		if err := render.SnapshotPNG(cfg.PNG, final, view); err != nil {
			return err
		}
		log.Printf("wrote %s", cfg.PNG)
	}
	if cfg.Plot != "" && cfg.Ticks > 0 {
		err := render.PlotSeries(cfg.Plot, render.PlotConfig{
			Title:  "Energy",
			XLabel: "time [s]",
			YLabel: "energy [J]",
		}, kinetic, elastic, gravitational, total)
		if err != nil {
			return err
		}
		log.Printf("wrote %s", cfg.Plot)
	}
	return nil
}

func loadParams(cfg config) (softbody.Params, error) {
	if cfg.ParamsFile == "" {
		return cfg.Params, nil
	}
	fp, err := os.Open(cfg.ParamsFile)
	if err != nil {
		return softbody.Params{}, err
	}
	defer fp.Close()
	return meshio.ReadParams(fp, cfg.Params)
}

// simulationMesh reads the .node/.ele pair or generates a mesh of the shape.
func simulationMesh(cfg config) ([]r3.Vec, [][4]int, error) {
	if cfg.NodeFile != "" {
		nodeFile, err := os.Open(cfg.NodeFile)
		if err != nil {
			return nil, nil, err
		}
		defer nodeFile.Close()
		eleFile, err := os.Open(cfg.EleFile)
		if err != nil {
			return nil, nil, err
		}
		defer eleFile.Close()
		return meshio.ReadMesh(nodeFile, eleFile)
	}
	var (
		s   tetmesh.SDF3
		err error
	)
	switch strings.ToLower(cfg.Shape) {
	case "box":
		s, err = tetmesh.Box(d3.Elem(cfg.Size), 0)
	case "sphere":
		s, err = tetmesh.Sphere(cfg.Size / 2)
	case "cylinder":
		s, err = tetmesh.Cylinder(cfg.Size, cfg.Size/4, 0)
	default:
		err = fmt.Errorf("unknown shape %q", cfg.Shape)
	}
	if err != nil {
		return nil, nil, err
	}
	return tetmesh.UniformTetrahedronMesh(cfg.Resolution, s)
}

// visualMesh loads the visual mesh in local coordinates. Without a mesh
// file the boundary of the simulation mesh is used.
func visualMesh(cfg config, positions []r3.Vec, tetras [][4]int) (render.Mesh, error) {
	if cfg.MeshFile == "" {
		m := tetmesh.BoundarySurface(positions, tetras)
		for i := range m.Vertices {
			m.Vertices[i] = r3.Sub(m.Vertices[i], cfg.Offset)
		}
		return m, nil
	}
	switch strings.ToLower(filepath.Ext(cfg.MeshFile)) {
	case ".stl":
		model, err := render.LoadSTL(cfg.MeshFile)
		if err != nil {
			return render.Mesh{}, err
		}
		return render.NewMesh(model, 0)
	case ".gltf", ".glb":
		return render.LoadGLTF(cfg.MeshFile)
	}
	return render.Mesh{}, fmt.Errorf("unsupported mesh file %q", cfg.MeshFile)
}

func saveMesh(path string, m render.Mesh) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		return render.CreateSTL(path, m.Reader())
	case ".gltf", ".glb":
		return render.SaveGLTF(path, m)
	}
	return fmt.Errorf("unsupported mesh file %q", path)
}

func writeMesh(prefix string, p softbody.Params, positions []r3.Vec, tetras [][4]int) error {
	write := func(ext string, f func(*os.File) error) error {
		fp, err := os.Create(prefix + ext)
		if err != nil {
			return err
		}
		defer fp.Close()
		if err := f(fp); err != nil {
			return err
		}
		return fp.Close()
	}
	return errors.Join(
		write(".params", func(fp *os.File) error { return meshio.WriteParams(fp, p) }),
		write(".node", func(fp *os.File) error { return meshio.WriteNodes(fp, positions) }),
		write(".ele", func(fp *os.File) error { return meshio.WriteTetrahedra(fp, tetras) }),
	)
}

// newAnchor pins the top slab of the solid to an eased path. It returns a
// nil anchor when pinning is disabled or no node lies in the slab.
func newAnchor(cfg config, s *softbody.Solid) (*softbody.Anchor, *motion.Path, error) {
	if cfg.Pin <= 0 {
		return nil, nil, nil
	}
	bb := d3.EmptyBox()
	for _, n := range s.Nodes {
		bb = bb.Include(n.Pos)
	}
	slab := r3.Box(bb)
	slab.Min.Y = bb.Max.Y - cfg.Pin*bb.Size().Y
	anchor := softbody.NewAnchor(s, slab, r3.Vec{})
	if len(anchor.Nodes()) == 0 {
		return nil, nil, nil
	}
	easing, err := motion.Easing(cfg.Ease)
	if err != nil {
		return nil, nil, err
	}
	path, err := motion.NewPath(easing, r3.Vec{}, motion.Leg{To: cfg.Move, Duration: cfg.MoveTime})
	if err != nil {
		return nil, nil, err
	}
	log.Printf("anchor: %d nodes pinned", len(anchor.Nodes()))
	return anchor, path, nil
}

// anchorReach shifts the snapshot frame halfway along the anchor motion.
func anchorReach(cfg config) r3.Vec {
	if cfg.Pin <= 0 {
		return r3.Vec{}
	}
	return r3.Scale(0.5, cfg.Move)
}
