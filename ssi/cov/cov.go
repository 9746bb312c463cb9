// Package cov implements covariance-driven stochastic subspace identification.
//
// Lagged output covariances are assembled into a block Toeplitz matrix whose single SVD
// is reused by all realized model orders.
package cov

import (
	"fmt"

	oma "github.com/milosgajdos/go-oma"
	"github.com/milosgajdos/go-oma/block"
	"github.com/milosgajdos/go-oma/model"
	"github.com/milosgajdos/go-oma/ssi"
	"github.com/milosgajdos/go-oma/subspace"
	"gonum.org/v1/gonum/mat"
)

// Realizer is covariance-driven SSI realizer.
// Realizer is immutable once created and safe for concurrent use.
type Realizer struct {
	// br is number of block rows
	br int
	// nch is number of channels
	nch int
	// method is state matrix estimator
	method ssi.Method
	// tb2 is one-lag shifted block Toeplitz matrix
	tb2 *mat.Dense
	// basis is SVD of block Toeplitz matrix
	basis *subspace.Basis
}

// New creates new covariance-driven SSI realizer from data with samples in rows and channels
// in columns using br block rows and returns it.
// It returns error if the input is invalid or if the Toeplitz matrix decomposition fails.
func New(data mat.Matrix, br int, method ssi.Method) (*Realizer, error) {
	if err := ssi.ValidateData(data, br); err != nil {
		return nil, err
	}

	if err := method.Validate(); err != nil {
		return nil, err
	}

	_, nch := data.Dims()

	r, err := block.Covariances(data, 2*br)
	if err != nil {
		return nil, err
	}

	tb, err := block.Toeplitz(r, br, 0)
	if err != nil {
		return nil, err
	}

	tb2, err := block.Toeplitz(r, br, 1)
	if err != nil {
		return nil, err
	}

	basis, err := subspace.NewBasis(tb)
	if err != nil {
		return nil, fmt.Errorf("toeplitz decomposition: %w", err)
	}

	return &Realizer{
		br:     br,
		nch:    nch,
		method: method,
		tb2:    tb2,
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

// Variant returns ssi.Cov
func (r *Realizer) Variant() ssi.Variant {
	return ssi.Cov
}

// Method returns estimator method
func (r *Realizer) Method() ssi.Method {
	return r.method
}

// SingularValues returns a copy of the singular values of the block Toeplitz matrix
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
		A, C, err = ssi.ShiftEstimate(o, r.nch)
	case ssi.Method2:
		A, C = r.era(o, order)
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

// era estimates A from the shifted Toeplitz matrix (NExT-ERA)
//
//	A = S^-1/2 * U' * Tb2 * V * S^-1/2
//
// and C as the first nch rows of the observability matrix o.
func (r *Realizer) era(o *mat.Dense, order int) (A, C *mat.Dense) {
	u, sqrtS, v := r.basis.Truncate(order)

	inv := make([]float64, order)
	for i := range inv {
		inv[i] = 1 / sqrtS.At(i, i)
	}
	sinv := mat.NewDiagDense(order, inv)

	A = &mat.Dense{}
	A.Product(sinv, u.T(), r.tb2, v, sinv)

	_, cols := o.Dims()
	C = mat.DenseCopyOf(o.Slice(0, r.nch, 0, cols))

	return A, C
}
