// Package meshio reads and writes the whitespace delimited text files
// describing a tetrahedral solid: a parameters file, a node file and a
// tetrahedron (element) file. The node and element files follow the
// TetGen .node and .ele layout with one based indices.
package meshio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/soypat/softbody"
	"gonum.org/v1/gonum/spatial/r3"
)

// Parameter names recognized by ReadParams.
const (
	ParamStiffness   = "Stiffness"
	ParamDamping     = "Damping"
	ParamMassDensity = "MassDensity"
)

// Element is a tetrahedron record of an element file with zero based node indices.
type Element struct {
	// ID is the record index minus one.
	ID    int
	Nodes [4]int
}

// ReadParams parses a parameters file starting from defaults. The file
// starts with the header "N C" followed by N name-value pairs. Names
// other than Stiffness, Damping and MassDensity are ignored.
func ReadParams(r io.Reader, defaults softbody.Params) (softbody.Params, error) {
	tk := newTokens(r, "parameters")
	p := defaults
	n, err := tk.count()
	if err != nil {
		return p, err
	}
	if _, err = tk.next(); err != nil { // column count, unused.
		return p, err
	}
	for i := 0; i < n; i++ {
		name, err := tk.next()
		if err != nil {
			return p, err
		}
		v, err := tk.float()
		if err != nil {
			return p, err
		}
		switch name {
		case ParamStiffness:
			p.Stiffness = v
		case ParamDamping:
			p.Damping = v
		case ParamMassDensity:
			p.MassDensity = v
		}
	}
	return p, nil
}

// ReadNodes parses a node file with header "N dim nattr nmarker" where dim
// must be 3. Each record is "index x y z" followed by nattr attributes and
// nmarker boundary markers which are skipped.
func ReadNodes(r io.Reader) ([]r3.Vec, error) {
	tk := newTokens(r, "nodes")
	n, err := tk.count()
	if err != nil {
		return nil, err
	}
	var hdr [3]int
	for i := range hdr {
		if hdr[i], err = tk.count(); err != nil {
			return nil, err
		}
	}
	dim, nattr, nmarker := hdr[0], hdr[1], hdr[2]
	if dim != 3 {
		return nil, fmt.Errorf("nodes: want dimension 3, got %d", dim)
	}
	pos := make([]r3.Vec, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		if _, err = tk.int(); err != nil { // node index, implied by order.
			return nil, err
		}
		var xyz [3]float64
		for j := range xyz {
			if xyz[j], err = tk.float(); err != nil {
				return nil, err
			}
		}
		pos = append(pos, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		if err = tk.skip(nattr + nmarker); err != nil {
			return nil, err
		}
	}
	return pos, nil
}

// ReadTetrahedra parses an element file with header "N 4 nattr". Each
// record is "index n0 n1 n2 n3" with one based node indices followed by
// nattr attributes which are skipped. Returned node indices are zero based.
func ReadTetrahedra(r io.Reader) ([]Element, error) {
	tk := newTokens(r, "tetrahedra")
	n, err := tk.count()
	if err != nil {
		return nil, err
	}
	perTetra, err := tk.count()
	if err != nil {
		return nil, err
	}
	if perTetra != 4 {
		return nil, fmt.Errorf("tetrahedra: want 4 nodes per tetrahedron, got %d", perTetra)
	}
	nattr, err := tk.count()
	if err != nil {
		return nil, err
	}
	elems := make([]Element, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		idx, err := tk.int()
		if err != nil {
			return nil, err
		}
		elems = append(elems, Element{ID: idx - 1})
		for j := range elems[i].Nodes {
			ni, err := tk.int()
			if err != nil {
				return nil, err
			}
			if ni < 1 {
				return nil, fmt.Errorf("tetrahedra: record %d: node index %d is not one based", i+1, ni)
			}
			elems[i].Nodes[j] = ni - 1
		}
		if err = tk.skip(nattr); err != nil {
			return nil, err
		}
	}
	return elems, nil
}

// Indices returns the node quadruples of elems.
func Indices(elems []Element) [][4]int {
	tetras := make([][4]int, len(elems))
	for i := range elems {
		tetras[i] = elems[i].Nodes
	}
	return tetras
}

// ReadMesh reads a node file and an element file and checks that every
// element references an existing node.
func ReadMesh(nodes, elements io.Reader) ([]r3.Vec, [][4]int, error) {
	pos, err := ReadNodes(nodes)
	if err != nil {
		return nil, nil, err
	}
	elems, err := ReadTetrahedra(elements)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range elems {
		for _, ni := range e.Nodes {
			if ni >= len(pos) {
				return nil, nil, fmt.Errorf("tetrahedron %d: node %d out of range, have %d nodes", e.ID, ni+1, len(pos))
			}
		}
	}
	return pos, Indices(elems), nil
}

// WriteParams writes p in the format read by ReadParams.
func WriteParams(w io.Writer, p softbody.Params) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "3 2\n")
	for _, kv := range []struct {
		name string
		v    float64
	}{
		{ParamStiffness, p.Stiffness},
		{ParamDamping, p.Damping},
		{ParamMassDensity, p.MassDensity},
	} {
		fmt.Fprintf(bw, "%s %s\n", kv.name, formatFloat(kv.v))
	}
	return bw.Flush()
}

// WriteNodes writes positions as a node file without attributes or markers.
func WriteNodes(w io.Writer, positions []r3.Vec) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d 3 0 0\n", len(positions))
	for i, p := range positions {
		fmt.Fprintf(bw, "%d %s %s %s\n", i+1, formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
	}
	return bw.Flush()
}

// WriteTetrahedra writes zero based node quadruples as a one based element file.
func WriteTetrahedra(w io.Writer, tetras [][4]int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d 4 0\n", len(tetras))
	for i, t := range tetras {
		fmt.Fprintf(bw, "%d %d %d %d %d\n", i+1, t[0]+1, t[1]+1, t[2]+1, t[3]+1)
	}
	return bw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// tokens splits a file into whitespace separated words and keeps track of
// the position for error messages.
type tokens struct {
	sc   *bufio.Scanner
	file string
	n    int
}

func newTokens(r io.Reader, file string) *tokens {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	return &tokens{sc: sc, file: file}
}

func (t *tokens) next() (string, error) {
	if !t.sc.Scan() {
		err := t.sc.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return "", fmt.Errorf("%s: token %d: %w", t.file, t.n, err)
	}
	t.n++
	return t.sc.Text(), nil
}

func (t *tokens) skip(n int) error {
	for i := 0; i < n; i++ {
		if _, err := t.next(); err != nil {
			return err
		}
	}
	return nil
}

func (t *tokens) int() (int, error) {
	s, err := t.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: token %d: %w", t.file, t.n-1, err)
	}
	return v, nil
}

// count parses a non-negative integer.
func (t *tokens) count() (int, error) {
	v, err := t.int()
	if err == nil && v < 0 {
		err = fmt.Errorf("%s: token %d: %w", t.file, t.n-1, errNegativeCount)
	}
	return v, err
}

func (t *tokens) float() (float64, error) {
	s, err := t.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: token %d: %w", t.file, t.n-1, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: token %d: %q: %w", t.file, t.n-1, s, errNotFinite)
	}
	return v, nil
}

var (
	errNegativeCount = errors.New("negative count")
	errNotFinite     = errors.New("number is not finite")
)

// maxPrealloc bounds allocations sized by header counts before the
// records backing them have been read.
const maxPrealloc = 1 << 16
