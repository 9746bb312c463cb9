// Package dat implements data-driven stochastic subspace identification.
//
// The block Hankel matrix of the measured outputs is projected using its LQ factorization
// and the projection of future outputs onto past outputs is decomposed with a single SVD
// which is reused by all realized model orders.
package dat

import (
	"fmt"

	oma "github.com/milosgajdos/go-oma"
	"github.com/milosgajdos/go-oma/block"
	"github.com/milosgajdos/go-oma/matrix"
	"github.com/milosgajdos/go-oma/model"
	"github.com/milosgajdos/go-oma/ssi"
	"github.com/milosgajdos/go-oma/subspace"
	"gonum.org/v1/gonum/mat"
)

// Realizer is data-driven SSI realizer.
// Realizer is immutable once created and safe for concurrent use.
type Realizer struct {
	// br is number of block rows
	br int
	// nch is number of channels
	nch int
	// method is state matrix estimator
	method ssi.Method
	// proj stores the Hankel matrix projections
	proj *subspace.Projections
	// basis is SVD of the projection of future outputs onto past outputs
	basis *subspace.Basis
}

// New creates new data-driven SSI realizer from data with samples in rows and channels in columns
// using br block rows and returns it. The number of samples must be large enough for the block
// Hankel matrix to have at least as many columns as rows.
// It returns error if the input is invalid or if any of the decompositions fails.
func New(data mat.Matrix, br int, method ssi.Method) (*Realizer, error) {
	if err := ssi.ValidateData(data, br); err != nil {
		return nil, err
	}

	if err := method.Validate(); err != nil {
		return nil, err
	}

	n, nch := data.Dims()
	if j := n - 2*br + 1; j < 2*br*nch {
		return nil, fmt.Errorf("%w: not enough samples for %d block rows and %d channels: %d", oma.ErrInvalidInput, br, nch, n)
	}

	h, err := block.Hankel(data, br)
	if err != nil {
		return nil, err
	}

	proj, err := subspace.Project(h, br, nch)
	if err != nil {
		return nil, err
	}

	basis, err := subspace.NewBasis(proj.Pi)
	if err != nil {
		return nil, fmt.Errorf("projection decomposition: %w", err)
	}

	return &Realizer{
		br:     br,
		nch:    nch,
		method: method,
		proj:   proj,
		basis:  basis,
	}, nil
}

// MaxOrder returns maximum model order: br*nch
func (r *Realizer) MaxOrder() int {
	return r.br * r.nch
}

// Channels returns the number of channels
func (r *Realizer) Channels() int {
	return r.nch
}

// BlockRows returns the number of block rows
func (r *Realizer) BlockRows() int {
	return r.br
}

// Variant returns ssi.Data
func (r *Realizer) Variant() ssi.Variant {
	return ssi.Data
}

// Method returns estimator method
func (r *Realizer) Method() ssi.Method {
	return r.method
}

// SingularValues returns a copy of the singular values of the projection matrix
func (r *Realizer) SingularValues() []float64 {
	return append([]float64(nil), r.basis.S...)
}

// Realize estimates the state-space model of the given order.
// It returns error if order is out of range or if the estimation fails numerically.
func (r *Realizer) Realize(order int) (oma.StateSpace, error) {
	if err := ssi.ValidateOrder(order, r.MaxOrder()); err != nil {
		return nil, err
	}

	o := r.basis.Observability(order)

	var (
		A, C *mat.Dense
		err  error
	)

	switch r.method {
	case ssi.Method1:
		A, C, err = r.kalman(o, order)
	case ssi.Method2:
		A, C, err = ssi.ShiftEstimate(o, r.nch)
	}

	if err != nil {
		return nil, fmt.Errorf("order %d: %w", order, err)
	}

	if err := ssi.Finite(A, C); err != nil {
		return nil, fmt.Errorf("order %d: %w", order, err)
	}

	m, err := model.New(A, C)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// kalman estimates A and C by least squares from the Kalman filter state sequences
//
//	S   = pinv(O)*Pi
//	Sp1 = pinv(O1)*Pim1
//	[A; C] = [Sp1; Yi]*pinv(S)
//
// The least squares C differs from the first block row of O only by the least squares residual.
func (r *Realizer) kalman(o *mat.Dense, order int) (A, C *mat.Dense, err error) {
	oinv, err := matrix.Pinv(o)
	if err != nil {
		return nil, nil, fmt.Errorf("pseudo-inverse of O: %w", err)
	}

	o1, _ := ssi.Shift(o, r.nch)
	o1inv, err := matrix.Pinv(o1)
	if err != nil {
		return nil, nil, fmt.Errorf("pseudo-inverse of O1: %w", err)
	}

	s := &mat.Dense{}
	s.Mul(oinv, r.proj.Pi)

	_, cols := r.proj.Pi.Dims()
	sy := mat.NewDense(order+r.nch, cols, nil)
	sp1 := sy.Slice(0, order, 0, cols).(*mat.Dense)
	sp1.Mul(o1inv, r.proj.Pim1)
	sy.Slice(order, order+r.nch, 0, cols).(*mat.Dense).Copy(r.proj.Yi)

	sinv, err := matrix.Pinv(s)
	if err != nil {
		return nil, nil, fmt.Errorf("pseudo-inverse of state sequence: %w", err)
	}

	ac := &mat.Dense{}
	ac.Mul(sy, sinv)

	A = mat.DenseCopyOf(ac.Slice(0, order, 0, order))
	C = mat.DenseCopyOf(ac.Slice(order, order+r.nch, 0, order))

	return A, C, nil
}
