package noise

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Zero is noise-free source: every sample is zero.
// It stands in for measurement noise of noise-free simulations.
type Zero struct {
	size int
}

// NewZero creates zero noise of given size.
func NewZero(size int) (*Zero, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid noise dimension: %d", size)
	}

	return &Zero{size: size}, nil
}

// Sample returns zero vector.
func (z *Zero) Sample() mat.Vector {
	return mat.NewVecDense(z.size, nil)
}

// Cov returns zero covariance matrix.
func (z *Zero) Cov() mat.Symmetric {
	return mat.NewSymDense(z.size, nil)
}

// Mean returns zero mean.
func (z *Zero) Mean() []float64 {
	return make([]float64, z.size)
}

// Reset is a no-op.
func (z *Zero) Reset() error { return nil }

// String implements fmt.Stringer
func (z *Zero) String() string {
	return fmt.Sprintf("Zero{Size=%d}", z.size)
}
