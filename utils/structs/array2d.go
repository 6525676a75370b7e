// Package structs implements generic containers shared across the
// library, most importantly the dense row-major 2D buffer that backs
// polynomial coefficients across RNS limbs.
package structs

import (
	"fmt"
	"runtime"

	"golang.org/x/exp/constraints"
)

// Array2d is a dense row-major 2D buffer. For polynomial storage rows
// are RNS limbs and columns are ring coefficients.
type Array2d[T constraints.Unsigned] struct {
	Data []T
	Rows int
	Cols int
}

// NewArray2d allocates a zero-filled rows x cols buffer.
func NewArray2d[T constraints.Unsigned](rows, cols int) Array2d[T] {
	if rows < 0 || cols < 0 {
		panic(fmt.Errorf("structs: negative shape %dx%d", rows, cols))
	}
	return Array2d[T]{Data: make([]T, rows*cols), Rows: rows, Cols: cols}
}

// NewArray2dFromRows builds a buffer from nested rows, validating that
// all rows have equal length.
func NewArray2dFromRows[T constraints.Unsigned](rows [][]T) (Array2d[T], error) {
	if len(rows) == 0 {
		return Array2d[T]{}, nil
	}
	cols := len(rows[0])
	a := NewArray2d[T](len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			return Array2d[T]{}, fmt.Errorf("structs: row %d has %d columns, want %d", i, len(r), cols)
		}
		copy(a.Row(i), r)
	}
	return a, nil
}

// NewArray2dFromData builds a buffer over flat data.
// len(data) must equal rows*cols.
func NewArray2dFromData[T constraints.Unsigned](data []T, rows, cols int) (Array2d[T], error) {
	if len(data) != rows*cols {
		return Array2d[T]{}, fmt.Errorf("structs: data length %d does not match shape %dx%d", len(data), rows, cols)
	}
	return Array2d[T]{Data: data, Rows: rows, Cols: cols}, nil
}

// At returns the element at (row, col).
func (a Array2d[T]) At(row, col int) T {
	return a.Data[row*a.Cols+col]
}

// Set writes the element at (row, col).
func (a Array2d[T]) Set(row, col int, v T) {
	a.Data[row*a.Cols+col] = v
}

// Row returns a mutable view of row i.
func (a Array2d[T]) Row(i int) []T {
	return a.Data[i*a.Cols : (i+1)*a.Cols]
}

// Column returns a copy of column j.
func (a Array2d[T]) Column(j int) []T {
	col := make([]T, a.Rows)
	for i := range col {
		col[i] = a.Data[i*a.Cols+j]
	}
	return col
}

// CopyNew returns a deep copy of the buffer.
func (a Array2d[T]) CopyNew() Array2d[T] {
	data := make([]T, len(a.Data))
	copy(data, a.Data)
	return Array2d[T]{Data: data, Rows: a.Rows, Cols: a.Cols}
}

// Equal returns true if both buffers have the same shape and content.
func (a Array2d[T]) Equal(b Array2d[T]) bool {
	if a.Rows != b.Rows || a.Cols != b.Cols {
		return false
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			return false
		}
	}
	return true
}

// IsZero returns true if every element is zero.
func (a Array2d[T]) IsZero() bool {
	for _, v := range a.Data {
		if v != 0 {
			return false
		}
	}
	return true
}

// Transposed returns the cols x rows transpose.
func (a Array2d[T]) Transposed() Array2d[T] {
	t := NewArray2d[T](a.Cols, a.Rows)
	for i := 0; i < a.Rows; i++ {
		row := a.Row(i)
		for j, v := range row {
			t.Data[j*a.Rows+i] = v
		}
	}
	return t
}

// RotateColumns cyclically rotates each row left by rot columns
// (negative rot rotates right). The rotation amount is public: the
// running time depends on it.
func (a Array2d[T]) RotateColumns(rot int) {
	if a.Cols == 0 {
		return
	}
	rot %= a.Cols
	if rot < 0 {
		rot += a.Cols
	}
	if rot == 0 {
		return
	}
	buf := make([]T, rot)
	for i := 0; i < a.Rows; i++ {
		row := a.Row(i)
		copy(buf, row[:rot])
		copy(row, row[rot:])
		copy(row[a.Cols-rot:], buf)
	}
}

// ResizeColumns grows or shrinks the column count, preserving existing
// data and filling new columns with def.
func (a *Array2d[T]) ResizeColumns(cols int, def T) {
	if cols == a.Cols {
		return
	}
	b := NewArray2d[T](a.Rows, cols)
	keep := a.Cols
	if cols < keep {
		keep = cols
	}
	for i := 0; i < a.Rows; i++ {
		dst := b.Row(i)
		copy(dst, a.Row(i)[:keep])
		for j := keep; j < cols; j++ {
			dst[j] = def
		}
	}
	*a = b
}

// DropLastRows removes the last k rows.
func (a *Array2d[T]) DropLastRows(k int) {
	if k < 0 || k > a.Rows {
		panic(fmt.Errorf("structs: cannot drop %d of %d rows", k, a.Rows))
	}
	a.Rows -= k
	a.Data = a.Data[:a.Rows*a.Cols]
}

// AppendRows appends zero-filled rows.
func (a *Array2d[T]) AppendRows(k int) {
	if k < 0 {
		panic(fmt.Errorf("structs: cannot append %d rows", k))
	}
	a.Data = append(a.Data, make([]T, k*a.Cols)...)
	a.Rows += k
}

// Zeroize overwrites the underlying storage with zeros. The buffer is
// pinned afterwards so the writes cannot be elided as dead stores.
func (a Array2d[T]) Zeroize() {
	for i := range a.Data {
		a.Data[i] = 0
	}
	runtime.KeepAlive(a.Data)
}

// Map returns a new buffer of the same shape with f applied to every
// element.
func Map[T, U constraints.Unsigned](a Array2d[T], f func(T) U) Array2d[U] {
	b := NewArray2d[U](a.Rows, a.Cols)
	for i, v := range a.Data {
		b.Data[i] = f(v)
	}
	return b
}
