package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadGLTF reads every triangle primitive of every mesh in a .gltf or .glb
// file into a single Mesh. Vertex positions are taken as stored, node
// transforms of the scene are not applied.
func LoadGLTF(path string) (Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return Mesh{}, err
	}
	return meshFromDocument(doc)
}

func meshFromDocument(doc *gltf.Document) (Mesh, error) {
	var m Mesh
	for _, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				return Mesh{}, fmt.Errorf("mesh %q primitive %d: missing POSITION attribute", gm.Name, pi)
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return Mesh{}, fmt.Errorf("mesh %q primitive %d: %w", gm.Name, pi, err)
			}
			var indices []uint32
			if prim.Indices != nil {
				indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
				if err != nil {
					return Mesh{}, fmt.Errorf("mesh %q primitive %d: %w", gm.Name, pi, err)
				}
			} else {
				indices = make([]uint32, len(positions))
				for i := range indices {
					indices[i] = uint32(i)
				}
			}
			if len(indices)%3 != 0 {
				return Mesh{}, fmt.Errorf("mesh %q primitive %d: %d indices do not form triangles", gm.Name, pi, len(indices))
			}
			offset := len(m.Vertices)
			for _, p := range positions {
				m.Vertices = append(m.Vertices, r3From3F32(p))
			}
			for i := 0; i < len(indices); i += 3 {
				m.Faces = append(m.Faces, [3]int{
					offset + int(indices[i]),
					offset + int(indices[i+1]),
					offset + int(indices[i+2]),
				})
			}
		}
	}
	if len(m.Faces) == 0 {
		return Mesh{}, errors.New("no triangle primitives in glTF document")
	}
	return m, m.Validate()
}

// SaveGLTF writes m as a single mesh scene to path. Paths ending in .glb
// are written in binary form.
func SaveGLTF(path string, m Mesh) error {
	doc, err := m.gltfDocument()
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		return gltf.SaveBinary(doc, path)
	}
	return gltf.Save(doc, path)
}

func (m Mesh) gltfDocument() (*gltf.Document, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if len(m.Faces) == 0 {
		return nil, errors.New("empty mesh")
	}
	positions := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = to3F32(v)
	}
	indices := make([]uint32, 0, 3*len(m.Faces))
	for _, f := range m.Faces {
		indices = append(indices, uint32(f[0]), uint32(f[1]), uint32(f[2]))
	}
	doc := gltf.NewDocument()
	posAccessor := modeler.WritePosition(doc, positions)
	idxAccessor := modeler.WriteIndices(doc, indices)
	doc.Meshes = []*gltf.Mesh{{
		Name: "deformed",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idxAccessor),
			Attributes: map[string]int{gltf.POSITION: posAccessor},
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "deformed", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}
