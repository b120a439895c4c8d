package render

import "io"

// ReadAll reads the full contents of a TriangleReader and returns the slice read.
// It does not return error on io.EOF, like io.ReadAll.
func ReadAll(r TriangleReader) ([]Triangle3, error) {
	var err error
	var nt int
	result := make([]Triangle3, 0, 1<<12)
	buf := make([]Triangle3, 1024)
	for {
		nt, err = r.ReadTriangles(buf)
		result = append(result, buf[:nt]...)
		if err != nil {
			break
		}
	}
	if err == io.EOF {
		return result, nil
	}
	return result, err
}

// triangleBuffer is a TriangleReader over a slice of triangles.
type triangleBuffer struct {
	buf []Triangle3
}

// ReadTriangles reads from this buffer.
func (b *triangleBuffer) ReadTriangles(t []Triangle3) (int, error) {
	if len(b.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(t, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}

// Len returns the number of triangles left to read.
func (b *triangleBuffer) Len() int { return len(b.buf) }

// NewTriangleReader returns a TriangleReader that reads model.
func NewTriangleReader(model []Triangle3) TriangleReader {
	return &triangleBuffer{buf: model}
}
