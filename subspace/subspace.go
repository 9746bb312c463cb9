// Package subspace computes the subspace decompositions shared by all model orders
// of a stochastic subspace identification run.
package subspace

import (
	"fmt"
	"math"

	oma "github.com/milosgajdos/go-oma"
	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

// Basis is a rank ordered basis obtained from a single singular value decomposition.
// Model orders are realized by truncating the basis to its leading singular triplets.
type Basis struct {
	// U stores left singular vectors in its columns
	U *mat.Dense
	// S stores singular values in descending order
	S []float64
	// SqrtS stores element-wise square roots of S
	SqrtS []float64
	// V stores right singular vectors in its columns
	V *mat.Dense
}

// NewBasis computes the thin SVD of m and returns it as Basis.
// It returns error if the SVD factorization fails.
func NewBasis(m mat.Matrix) (*Basis, error) {
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	s := svd.Values(nil)
	sqrtS := make([]float64, len(s))
	for i, v := range s {
		sqrtS[i] = math.Sqrt(v)
	}

	u, v := &mat.Dense{}, &mat.Dense{}
	svd.UTo(u)
	svd.VTo(v)

	return &Basis{
		U:     u,
		S:     s,
		SqrtS: sqrtS,
		V:     v,
	}, nil
}

// Rank returns the number of singular triplets stored in the basis.
func (b *Basis) Rank() int {
	return len(b.S)
}

// Truncate returns views of the leading order left singular vectors, the order x order
// square root singular value matrix and the leading order right singular vectors.
// It panics if order is not in the range [1, Rank()].
func (b *Basis) Truncate(order int) (u mat.Matrix, sqrtS *mat.DiagDense, v mat.Matrix) {
	if order <= 0 || order > b.Rank() {
		panic(fmt.Sprintf("subspace: order %d out of range [1, %d]", order, b.Rank()))
	}

	rows, _ := b.U.Dims()
	vrows, _ := b.V.Dims()

	return b.U.Slice(0, rows, 0, order), mat.NewDiagDense(order, b.SqrtS[:order]), b.V.Slice(0, vrows, 0, order)
}

// Observability returns the extended observability matrix of the given order: O = U_k * sqrt(S_k).
// The first order columns of the observability matrix of order k+2 equal the observability matrix of order k.
// It panics if order is not in the range [1, Rank()].
func (b *Basis) Observability(order int) *mat.Dense {
	u, sqrtS, _ := b.Truncate(order)

	o := &mat.Dense{}
	o.Mul(u, sqrtS)

	return o
}

// Projections stores the projections of the data-driven SSI.
type Projections struct {
	// Pi is the orthogonal projection of future outputs onto past outputs
	Pi *mat.Dense
	// Pim1 is the projection with the past/future boundary shifted by one block row
	Pim1 *mat.Dense
	// Yi is the output block row at the past/future boundary
	Yi *mat.Dense
}

// Project computes the data-driven SSI projections from the block Hankel matrix h with br block rows
// and nch channels. It factorizes h = L*Q, where L is lower triangular and Q has orthonormal rows,
// and partitions the factors into blocks of br*nch, nch and br*nch-nch rows.
// It returns error if h dimensions do not match br and nch or if h has more rows than columns.
func Project(h *mat.Dense, br, nch int) (*Projections, error) {
	m, n := h.Dims()
	if br < 2 || nch < 1 || m != 2*br*nch {
		return nil, fmt.Errorf("%w: invalid Hankel matrix rows %d for %d block rows and %d channels", oma.ErrInvalidInput, m, br, nch)
	}

	if m > n {
		return nil, fmt.Errorf("%w: Hankel matrix has fewer columns than rows: [%d x %d]", oma.ErrInvalidInput, m, n)
	}

	l, q := lq(h)

	a, b := br*nch, nch

	pi := &mat.Dense{}
	pi.Mul(l.Slice(a, m, 0, a), q.Slice(0, a, 0, n))

	pim1 := &mat.Dense{}
	pim1.Mul(l.Slice(a+b, m, 0, a+b), q.Slice(0, a+b, 0, n))

	yi := &mat.Dense{}
	yi.Mul(l.Slice(a, a+b, 0, a+b), q.Slice(0, a+b, 0, n))

	return &Projections{
		Pi:   pi,
		Pim1: pim1,
		Yi:   yi,
	}, nil
}

// lq computes the LQ factorization of m x n matrix h with m <= n.
// It returns the m x m lower triangular factor L and the m x n factor Q with orthonormal rows.
func lq(h *mat.Dense) (l, q *mat.Dense) {
	m, _ := h.Dims()

	q = mat.DenseCopyOf(h)
	raw := q.RawMatrix()
	tau := make([]float64, m)

	work := []float64{0}
	lapack64.Gelqf(raw, tau, work, -1)
	work = make([]float64, int(work[0]))
	lapack64.Gelqf(raw, tau, work, len(work))

	l = mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j <= i; j++ {
			l.Set(i, j, q.At(i, j))
		}
	}

	work = []float64{0}
	lapack64.Orglq(raw, tau, work, -1)
	work = make([]float64, int(work[0]))
	lapack64.Orglq(raw, tau, work, len(work))

	return l, q
}
