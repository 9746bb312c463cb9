// Package noise provides random noise sources used to excite simulated structures
// and to corrupt their measured responses.
package noise

import "gonum.org/v1/gonum/mat"

// Noise is a source of random noise samples
type Noise interface {
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Cov returns noise covariance matrix
	Cov() mat.Symmetric
	// Mean returns noise mean
	Mean() []float64
	// Reset resets the noise source to its initial state
	Reset() error
}
