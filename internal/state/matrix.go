package state

import "fmt"

// Matrix is a dense rows x types x cols table of boxed values stored in one
// flat row-major buffer at offset (row*types+typ)*cols+col. Plain matrices
// use a single type plane. A nil cell is unset.
type Matrix struct {
	name  string
	rows  int
	types int
	cols  int
	data  []any
}

// NewMatrix allocates a matrix with every cell unset. Dimensions below one
// are raised to one.
func NewMatrix(name string, rows, types, cols int) *Matrix {
	rows, types, cols = max(rows, 1), max(types, 1), max(cols, 1)
	return &Matrix{
		name:  name,
		rows:  rows,
		types: types,
		cols:  cols,
		data:  make([]any, rows*types*cols),
	}
}

// Name identifies the matrix in logs and metrics.
func (m *Matrix) Name() string { return m.name }

// Dims returns rows, types and cols.
func (m *Matrix) Dims() (rows, types, cols int) { return m.rows, m.types, m.cols }

func (m *Matrix) inRange(row, typ, col int) bool {
	return row >= 0 && row < m.rows && typ >= 0 && typ < m.types && col >= 0 && col < m.cols
}

func (m *Matrix) offset(row, typ, col int) int {
	return (row*m.types+typ)*m.cols + col
}

// At returns the value at (row, typ, col), or nil when the cell is unset or
// lies outside the current shape.
func (m *Matrix) At(row, typ, col int) any {
	if !m.inRange(row, typ, col) {
		return nil
	}
	return m.data[m.offset(row, typ, col)]
}

// Set stores v at (row, typ, col), growing the row or type dimension when the
// coordinates exceed the current shape. It reports whether the matrix was
// reallocated. Negative coordinates and columns beyond the slot dimension
// are rejected.
func (m *Matrix) Set(row, typ, col int, v any) (bool, error) {
	if row < 0 || typ < 0 || col < 0 || col >= m.cols {
		return false, fmt.Errorf("matrix %s: cell (%d,%d,%d) outside %dx%dx%d", m.name, row, typ, col, m.rows, m.types, m.cols)
	}
	grew := false
	if row >= m.rows || typ >= m.types {
		rows, types := m.rows, m.types
		if row >= rows {
			rows = max(row+1, rows+rows/2)
		}
		if typ >= types {
			types = typ + 1
		}
		m.Resize(rows, types, m.cols)
		grew = true
	}
	m.data[m.offset(row, typ, col)] = v
	return grew, nil
}

// Resize reallocates the matrix to at least the given shape and copies every
// cell to the same coordinates. Dimensions never shrink.
func (m *Matrix) Resize(rows, types, cols int) {
	rows, types, cols = max(rows, m.rows), max(types, m.types), max(cols, m.cols)
	if rows == m.rows && types == m.types && cols == m.cols {
		return
	}
	data := make([]any, rows*types*cols)
	for i := 0; i < m.rows; i++ {
		for t := 0; t < m.types; t++ {
			src := (i*m.types + t) * m.cols
			dst := (i*types + t) * cols
			copy(data[dst:dst+m.cols], m.data[src:src+m.cols])
		}
	}
	m.rows, m.types, m.cols = rows, types, cols
	m.data = data
}

// Clear unsets every cell without changing the shape.
func (m *Matrix) Clear() {
	clear(m.data)
}

// Count returns the number of set cells.
func (m *Matrix) Count() int {
	n := 0
	for _, v := range m.data {
		if v != nil {
			n++
		}
	}
	return n
}
