package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// eps is the float64 machine epsilon
const eps = 0x1p-52

// RowSums returns a slice containing m row sums.
// It panics if m is nil.
func RowSums(m *mat.Dense) []float64 {
	rows, _ := m.Dims()
	sum := make([]float64, rows)

	for i := 0; i < rows; i++ {
		sum[i] = floats.Sum(m.RawRowView(i))
	}

	return sum
}

// ColSums returns a slice containing m column sums.
// It panics if m is nil.
func ColSums(m *mat.Dense) []float64 {
	_, cols := m.Dims()
	sum := make([]float64, cols)

	for i := 0; i < cols; i++ {
		sum[i] = mat.Sum(m.ColView(i))
	}

	return sum
}

// Pinv returns Moore-Penrose pseudo-inverse of m computed from its thin SVD.
// Singular values smaller than max(rows, cols)*eps*s[0] are treated as zero,
// so rank deficient matrices are inverted in the least squares sense.
// It returns error if m has zero size or if the SVD factorization fails.
func Pinv(m mat.Matrix) (*mat.Dense, error) {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("invalid matrix dimensions: [%d x %d]", r, c)
	}

	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	vals := svd.Values(nil)
	tol := float64(max(r, c)) * eps * vals[0]
	inv := make([]float64, len(vals))
	for i, s := range vals {
		if s > tol {
			inv[i] = 1 / s
		}
	}

	u, v := &mat.Dense{}, &mat.Dense{}
	svd.UTo(u)
	svd.VTo(v)

	// V * S^-1 * U'
	v.Mul(v, mat.NewDiagDense(len(inv), inv))
	out := mat.NewDense(c, r, nil)
	out.Mul(v, u.T())

	return out, nil
}

// HasNaNOrInf returns true if m contains any NaN or infinite element.
func HasNaNOrInf(m mat.Matrix) bool {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}

	return false
}
