package sim

import (
	"fmt"

	"github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// Continuous is a model of a linear, continuous-time, dynamical system
type Continuous struct {
	System
}

// NewContinuous creates a linear continuous-time model based on the control theory equations
//
//	dx/dt = A*x + B*u
//	y = C*x + D*u
func NewContinuous(A, B, C, D *mat.Dense) (*Continuous, error) {
	if A == nil {
		return nil, fmt.Errorf("system matrix must be defined for a model")
	}

	if r, c := A.Dims(); r != c {
		return nil, fmt.Errorf("invalid system matrix dimensions: [%d x %d]", r, c)
	}

	sys := newSystem(A, nilIfEmpty(B), nilIfEmpty(C), nilIfEmpty(D))
	return &Continuous{System: sys}, nil
}

// ToDiscrete creates a discrete-time model from a continuous time model
// using Ts as the sampling time. Inputs are held constant over the sampling
// period (zero-order hold), so the discrete poles are exp(lambda*Ts).
func (ct *Continuous) ToDiscrete(Ts float64) (*Discrete, error) {
	if !(Ts > 0) {
		return nil, fmt.Errorf("invalid sampling time: %g", Ts)
	}

	nx, _, _ := ct.SystemDims()
	dsys := newSystem(ct.A, nilIfEmpty(ct.B), nilIfEmpty(ct.C), nilIfEmpty(ct.D))
	// continuous -> discrete time conversion
	// See Discrete-Time Control Systems by Katsuhiko Ogata
	// Eq. (5-73) p. 315  Second Edition (Spanish)
	dsys.A.Scale(Ts, dsys.A)
	dsys.A.Exp(dsys.A)

	if ct.B == nil {
		return &Discrete{dsys}, nil
	}

	// shorthand name for discrete B matrix
	Bd := dsys.B
	Aaux := mat.NewDense(nx, nx, nil)
	// Given A is not singular, the following is valid
	// Bd(Ts) = (exp(A*Ts) - I)*inv(A)*B  Eq. (5-74 bis) Ogata
	eye, err := matrix.NewDenseValIdentity(nx, 1.0)
	if err != nil {
		return nil, err
	}

	Aaux.Sub(dsys.A, eye)
	Ainv := mat.NewDense(nx, nx, nil)
	if err := Ainv.Inverse(ct.A); err == nil {
		Aaux.Mul(Aaux, Ainv)
		Bd.Mul(Aaux, ct.B)
		return &Discrete{dsys}, nil
	}

	Asum := Ainv
	Asum.Zero()
	// if A matrix is singular we integrate exp(A*t) over [0, Ts]
	// with the trapezoidal rule
	// Bd = integrate( exp(A*t)dt, 0, Ts ) * B   Eq. (5-74) Ogata
	const n = 100
	dt := Ts / float64(n-1)
	for i := 0; i < n; i++ {
		Aaux.Scale(dt*float64(i), ct.A)
		Aaux.Exp(Aaux)
		w := dt
		if i == 0 || i == n-1 {
			w = dt / 2
		}
		Aaux.Scale(w, Aaux)
		Asum.Add(Asum, Aaux)
	}
	Bd.Mul(Asum, ct.B)
	return &Discrete{dsys}, nil
}

func nilIfEmpty(m *mat.Dense) mat.Matrix {
	if m == nil || m.IsEmpty() {
		return nil
	}
	return m
}
