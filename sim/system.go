package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// System is a linear state-space model of a structure:
// state matrix A, input matrix B, output matrix C and feedthrough matrix D.
// B, C and D may be nil.
type System struct {
	A *mat.Dense
	B *mat.Dense
	C *mat.Dense
	D *mat.Dense
}

func newSystem(A, B, C, D mat.Matrix) System {
	copyOf := func(m mat.Matrix) *mat.Dense {
		if m == nil {
			return nil
		}
		return mat.DenseCopyOf(m)
	}

	return System{A: mat.DenseCopyOf(A), B: copyOf(B), C: copyOf(C), D: copyOf(D)}
}

// SystemDims returns number of states (nx), inputs (nu) and outputs (ny).
func (s System) SystemDims() (nx, nu, ny int) {
	nx, _ = s.A.Dims()
	if s.B != nil {
		_, nu = s.B.Dims()
	}
	if s.C != nil {
		ny, _ = s.C.Dims()
	}
	return nx, nu, ny
}

// Observe returns outputs y = C*x + D*u of state x and input u; u may be nil.
func (s System) Observe(x, u mat.Vector) (mat.Vector, error) {
	nx, nu, ny := s.SystemDims()
	if ny == 0 {
		return nil, fmt.Errorf("undefined output matrix")
	}

	if err := checkVectors(x, u, nx, nu); err != nil {
		return nil, err
	}

	y := mat.NewVecDense(ny, nil)
	y.MulVec(s.C, x)

	if u != nil && s.D != nil {
		yu := mat.NewVecDense(ny, nil)
		yu.MulVec(s.D, u)
		y.AddVec(y, yu)
	}

	return y, nil
}

func checkVectors(x, u mat.Vector, nx, nu int) error {
	if x.Len() != nx {
		return fmt.Errorf("invalid state vector length: %d, expected: %d", x.Len(), nx)
	}

	if u != nil && u.Len() != nu {
		return fmt.Errorf("invalid input vector length: %d, expected: %d", u.Len(), nu)
	}

	return nil
}
