// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Binary matrix layout, all little-endian:
//
//	magic   [4]byte "CSIM"
//	version uint32  (2)
//	n       uint32
//	values  [n*n]float64, row-major
//
// Version 1 files carry float32 values and are still read.
const (
	matrixMagic   = "CSIM"
	matrixVersion = 2

	matrixVersionFloat32 = 1

	// maxMatrixDim caps n so a corrupt header cannot request a huge allocation.
	maxMatrixDim = 1 << 16

	// initialMatrixValues bounds the up-front allocation in ReadMatrix. The
	// slice grows only as rows are actually read.
	initialMatrixValues = 1 << 20
)

var (
	errBadMagic   = errors.New("not a similarity matrix (bad magic)")
	errBadVersion = errors.New("unsupported similarity matrix version")
	errNotSquare  = errors.New("similarity matrix is not square")
	errNaN        = errors.New("similarity matrix contains NaN")
)

// Matrix is a square, read-only matrix of similarity scores. Entry (i, j)
// is the similarity between catalog positions i and j. Symmetry is not
// required.
type Matrix struct {
	n    int
	data []float64
}

// NewMatrix copies rows into a Matrix. Every row must have len(rows)
// entries and no entry may be NaN.
func NewMatrix(rows [][]float64) (*Matrix, error) {
	n := len(rows)
	m := &Matrix{n: n, data: make([]float64, n*n)}
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", errNotSquare, i, len(row), n)
		}
		for j, v := range row {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("%w at (%d,%d)", errNaN, i, j)
			}
			m.data[i*n+j] = v
		}
	}
	return m, nil
}

// Dim returns n for an n×n matrix.
func (m *Matrix) Dim() int {
	return m.n
}

// Row returns row i. Callers must not modify the returned slice.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.n : (i+1)*m.n : (i+1)*m.n]
}

// At returns entry (i, j).
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

// WriteTo encodes m in the binary layout.
func (m *Matrix) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	cw := &countingWriter{w: bw}

	if _, err := cw.Write([]byte(matrixMagic)); err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, binary.LittleEndian, [2]uint32{matrixVersion, uint32(m.n)}); err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, binary.LittleEndian, m.data); err != nil {
		return cw.n, err
	}
	return cw.n, bw.Flush()
}

// ReadMatrix decodes a matrix written by WriteTo. Values are read a row at
// a time, so a header that overstates n fails on the short payload before
// the full n*n slice is allocated.
func ReadMatrix(r io.Reader) (*Matrix, error) {
	br := bufio.NewReader(r)

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(magic[:]) != matrixMagic {
		return nil, errBadMagic
	}

	var hdr [2]uint32
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	version := hdr[0]
	if version != matrixVersion && version != matrixVersionFloat32 {
		return nil, fmt.Errorf("%w: %d", errBadVersion, version)
	}
	n := int(hdr[1])
	if n > maxMatrixDim {
		return nil, fmt.Errorf("similarity matrix dimension %d exceeds limit %d", n, maxMatrixDim)
	}

	data := make([]float64, 0, min(n*n, initialMatrixValues))
	row := make([]float64, n)
	var row32 []float32
	if version == matrixVersionFloat32 {
		row32 = make([]float32, n)
	}
	for i := 0; i < n; i++ {
		if err := readMatrixRow(br, row, row32); err != nil {
			return nil, fmt.Errorf("read row %d of %dx%d values: %w", i, n, n, err)
		}
		for j, v := range row {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("%w at (%d,%d)", errNaN, i, j)
			}
		}
		data = append(data, row...)
	}

	// Trailing bytes mean the header and payload disagree.
	if _, err := br.ReadByte(); err == nil {
		return nil, fmt.Errorf("%w: trailing data after %dx%d values", errNotSquare, n, n)
	}
	return &Matrix{n: n, data: data}, nil
}

// readMatrixRow fills row from r. A non-nil row32 selects the float32
// encoding, widened into row.
func readMatrixRow(r io.Reader, row []float64, row32 []float32) error {
	if row32 == nil {
		return binary.Read(r, binary.LittleEndian, row)
	}
	if err := binary.Read(r, binary.LittleEndian, row32); err != nil {
		return err
	}
	for j, v := range row32 {
		row[j] = float64(v)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
