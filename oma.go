package oma

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidInput is returned when identification input or configuration is malformed.
// Use errors.Is to check for it.
var ErrInvalidInput = errors.New("invalid input")

// StateSpace is a discrete-time stochastic state-space model
//
//	x[k+1] = A*x[k] + w[k]
//	y[k]   = C*x[k] + v[k]
type StateSpace interface {
	// StateMatrix returns discrete state matrix A
	StateMatrix() mat.Matrix
	// OutputMatrix returns output matrix C
	OutputMatrix() mat.Matrix
}

// Realizer realizes state-space models of a given order from output-only measurements.
type Realizer interface {
	// Realize estimates state and output matrices of the model of given order
	Realize(order int) (StateSpace, error)
	// MaxOrder returns the maximum model order the realizer can estimate
	MaxOrder() int
	// Channels returns the number of measured output channels
	Channels() int
}
