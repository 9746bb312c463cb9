package model

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Pole is a single eigenvalue of an identified discrete-time state-space model
// decoded to continuous-time modal parameters.
type Pole struct {
	// Eigenvalue is the discrete-time eigenvalue of the state matrix
	Eigenvalue complex128
	// Lambda is the continuous-time eigenvalue ln(Eigenvalue)*fs
	Lambda complex128
	// Frequency is natural frequency in Hz
	Frequency float64
	// Damping is damping ratio
	Damping float64
	// Shape is complex mode shape: output matrix times the eigenvector
	Shape []complex128
}

// Model is a stochastic discrete-time state-space model
//
//	x[k+1] = A*x[k] + w[k]
//	y[k]   = C*x[k] + v[k]
type Model struct {
	// A is internal state matrix
	A *mat.Dense
	// C is output state matrix
	C *mat.Dense
}

// New creates new Model and returns it.
// It returns error if A is not square or if C columns don't match A dimensions.
func New(A, C *mat.Dense) (*Model, error) {
	if A == nil || C == nil {
		return nil, fmt.Errorf("state and output matrices must be defined")
	}

	ra, ca := A.Dims()
	if ra != ca {
		return nil, fmt.Errorf("invalid state matrix dimensions: [%d x %d]", ra, ca)
	}

	if _, cc := C.Dims(); cc != ca {
		return nil, fmt.Errorf("invalid output matrix columns: %d, expected %d", cc, ca)
	}

	return &Model{A: A, C: C}, nil
}

// Dims returns model state and output dimensions
func (m *Model) Dims() (int, int) {
	_, states := m.A.Dims()
	outputs, _ := m.C.Dims()

	return states, outputs
}

// StateMatrix returns state propagation matrix
func (m *Model) StateMatrix() mat.Matrix {
	s := &mat.Dense{}
	s.CloneFrom(m.A)

	return s
}

// OutputMatrix returns observation matrix
func (m *Model) OutputMatrix() mat.Matrix {
	o := &mat.Dense{}
	o.CloneFrom(m.C)

	return o
}

// Poles eigendecomposes the state matrix and decodes its eigenvalues to continuous-time poles
// given sampling frequency fs. Complex conjugate eigenvalues are returned next to each other
// with the positive imaginary part first. Pole at index i corresponds to the i-th eigenvalue.
// It returns error if the eigendecomposition fails.
func (m *Model) Poles(fs float64) ([]Pole, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(m.A, mat.EigenRight); !ok {
		return nil, fmt.Errorf("eigendecomposition failed")
	}

	vals := eig.Values(nil)
	vecs := mat.NewCDense(len(vals), len(vals), nil)
	eig.VectorsTo(vecs)

	outputs, states := m.C.Dims()
	poles := make([]Pole, len(vals))
	for i, ev := range vals {
		lambda, f, xi := Decode(ev, fs)

		// C * v_i
		shape := make([]complex128, outputs)
		for r := 0; r < outputs; r++ {
			var sum complex128
			for k := 0; k < states; k++ {
				sum += complex(m.C.At(r, k), 0) * vecs.At(k, i)
			}
			shape[r] = sum
		}

		poles[i] = Pole{
			Eigenvalue: ev,
			Lambda:     lambda,
			Frequency:  f,
			Damping:    xi,
			Shape:      shape,
		}
	}

	return poles, nil
}

// Decode converts discrete eigenvalue ev of a system sampled at fs Hz to continuous-time eigenvalue,
// natural frequency in Hz and damping ratio. Frequency which evaluates to NaN is returned as 0.
func Decode(ev complex128, fs float64) (lambda complex128, freq, damping float64) {
	l := cmplx.Log(ev)
	lambda = complex(real(l)*fs, imag(l)*fs)

	abs := cmplx.Abs(lambda)
	freq = abs / (2 * math.Pi)
	if math.IsNaN(freq) {
		freq = 0
	}
	damping = -real(lambda) / abs

	return lambda, freq, damping
}
