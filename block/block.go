// Package block assembles the block matrices stochastic subspace identification
// operates on: the block Hankel matrix of raw time histories (data-driven SSI) and
// the block Toeplitz matrix of lagged output covariances (covariance-driven SSI).
//
// Time histories are stored with samples in rows and channels in columns.
package block

import (
	"fmt"
	"math"

	oma "github.com/milosgajdos/go-oma"
	"gonum.org/v1/gonum/mat"
)

// Hankel returns the (2*br*nch) x j block Hankel matrix of data, where j = N - 2*br + 1.
// Block row k stores channels of samples k..k+j-1 scaled by 1/sqrt(j).
// It returns error if br is not positive or if data does not contain enough samples.
func Hankel(data mat.Matrix, br int) (*mat.Dense, error) {
	n, nch := data.Dims()
	if br <= 0 {
		return nil, fmt.Errorf("%w: invalid block rows: %d", oma.ErrInvalidInput, br)
	}

	j := n - 2*br + 1
	if j < 1 {
		return nil, fmt.Errorf("%w: not enough samples for %d block rows: %d", oma.ErrInvalidInput, br, n)
	}

	h := mat.NewDense(2*br*nch, j, nil)
	scale := 1 / math.Sqrt(float64(j))
	for k := 0; k < 2*br; k++ {
		for c := 0; c < nch; c++ {
			row := h.RawRowView(k*nch + c)
			for t := range row {
				row[t] = scale * data.At(k+t, c)
			}
		}
	}

	return h, nil
}

// Covariances returns lagged output covariance matrices R[0..lags] of data:
//
//	R[i] = Y[:, :N-i] * Y[:, i:]' / (N-i)
//
// where Y is the transposed data matrix. Each R[i] is an nch x nch matrix.
// It returns error if lags is negative or not smaller than the number of samples.
func Covariances(data mat.Matrix, lags int) ([]*mat.Dense, error) {
	n, nch := data.Dims()
	if lags < 0 || lags >= n {
		return nil, fmt.Errorf("%w: invalid covariance lags %d for %d samples", oma.ErrInvalidInput, lags, n)
	}

	y := mat.DenseCopyOf(data)
	r := make([]*mat.Dense, lags+1)
	for i := range r {
		ri := mat.NewDense(nch, nch, nil)
		ri.Mul(y.Slice(0, n-i, 0, nch).T(), y.Slice(i, n, 0, nch))
		ri.Scale(1/float64(n-i), ri)
		r[i] = ri
	}

	return r, nil
}

// Toeplitz assembles a (br*nch) x (br*nch) block Toeplitz matrix from covariances r.
// Block row l, counted from shift, holds R[br+l], R[br+l-1], ..., R[l+1].
// Shift 0 yields the Toeplitz matrix used for the SVD; shift 1 yields its one-lag shifted counterpart.
// It returns error if r does not hold enough lags for br and shift.
func Toeplitz(r []*mat.Dense, br, shift int) (*mat.Dense, error) {
	if br <= 0 || shift < 0 {
		return nil, fmt.Errorf("%w: invalid block rows %d or shift %d", oma.ErrInvalidInput, br, shift)
	}

	if maxLag := 2*br - 1 + shift; len(r) <= maxLag {
		return nil, fmt.Errorf("%w: need %d covariance lags, got %d", oma.ErrInvalidInput, maxLag+1, len(r))
	}

	nch, _ := r[0].Dims()
	t := mat.NewDense(br*nch, br*nch, nil)
	for bi := 0; bi < br; bi++ {
		l := bi + shift
		for bc := 0; bc < br; bc++ {
			blk := t.Slice(bi*nch, (bi+1)*nch, bc*nch, (bc+1)*nch).(*mat.Dense)
			blk.Copy(r[br+l-bc])
		}
	}

	return t, nil
}
