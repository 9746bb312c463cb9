package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Discrete is a model of a linear, discrete-time, dynamical system
type Discrete struct {
	System
}

// NewDiscrete creates a linear discrete-time model based on the control theory equations.
//
//	x[n+1] = A*x[n] + B*u[n]
//	y[n] = C*x[n] + D*u[n]
func NewDiscrete(A, B, C, D *mat.Dense) (*Discrete, error) {
	if A == nil {
		return nil, fmt.Errorf("system matrix must be defined for a model")
	}

	if r, c := A.Dims(); r != c {
		return nil, fmt.Errorf("invalid system matrix dimensions: [%d x %d]", r, c)
	}

	return &Discrete{System: newSystem(A, nilIfEmpty(B), nilIfEmpty(C), nilIfEmpty(D))}, nil
}

// Propagate returns the next internal state x of a linear, discrete-time system
// given an input vector u.
func (dt *Discrete) Propagate(x, u mat.Vector) (mat.Vector, error) {
	nx, nu, _ := dt.SystemDims()
	if err := checkVectors(x, u, nx, nu); err != nil {
		return nil, err
	}

	next := mat.NewVecDense(nx, nil)
	next.MulVec(dt.A, x)

	if u != nil && dt.B != nil {
		xu := mat.NewVecDense(nx, nil)
		xu.MulVec(dt.B, u)
		next.AddVec(next, xu)
	}

	return next, nil
}
