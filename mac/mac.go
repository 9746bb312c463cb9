// Package mac implements the Modal Assurance Criterion (MAC), a [0, 1] measure of
// similarity between two (possibly complex) mode shape vectors.
package mac

import (
	"fmt"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/mat"
)

// Value returns the MAC between mode shapes a and b:
//
//	|a^H*b|^2 / ((a^H*a)*(b^H*b))
//
// The result is 1 for shapes which are equal up to a complex scale and 0 for orthogonal shapes.
// It returns NaN if either of the shapes is a zero vector. It panics if the lengths of a and b differ.
func Value(a, b []complex128) float64 {
	ab := cmplxs.Dot(a, b)
	aa := real(cmplxs.Dot(a, a))
	bb := real(cmplxs.Dot(b, b))

	return (real(ab)*real(ab) + imag(ab)*imag(ab)) / (aa * bb)
}

// Matrix returns MAC matrix of the mode shapes stored in the columns of a and b.
// Element (i, j) of the returned matrix is the MAC between column i of a and column j of b.
// It returns error if the shapes in a and b have different lengths.
func Matrix(a, b mat.CMatrix) (*mat.Dense, error) {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ra != rb {
		return nil, fmt.Errorf("mode shape length mismatch: %d != %d", ra, rb)
	}

	cols := make([][]complex128, cb)
	for j := range cols {
		cols[j] = Col(b, j)
	}

	m := mat.NewDense(ca, cb, nil)
	for i := 0; i < ca; i++ {
		shape := Col(a, i)
		for j := 0; j < cb; j++ {
			m.Set(i, j, Value(shape, cols[j]))
		}
	}

	return m, nil
}

// Auto returns the symmetric MAC matrix between all pairs of shapes.
// It returns error if the shapes have different lengths.
func Auto(shapes [][]complex128) (*mat.Dense, error) {
	n := len(shapes)
	if n == 0 {
		return nil, fmt.Errorf("no mode shapes supplied")
	}

	for i := range shapes {
		if len(shapes[i]) != len(shapes[0]) {
			return nil, fmt.Errorf("mode shape length mismatch: %d != %d", len(shapes[i]), len(shapes[0]))
		}
	}

	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := Value(shapes[i], shapes[j])
			m.Set(i, j, v)
			m.Set(j, i, v)
		}
	}

	return m, nil
}

// Col copies column j of m into a new slice and returns it.
func Col(m mat.CMatrix, j int) []complex128 {
	r, _ := m.Dims()
	col := make([]complex128, r)
	for i := range col {
		col[i] = m.At(i, j)
	}

	return col
}
