package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Chain is a shear-type chain of lumped masses connected by springs, the first mass
// being connected to the ground. The chain is proportionally damped with the same
// damping ratio in every mode. It is excited by forces acting on every mass and
// its outputs are mass accelerations.
type Chain struct {
	*Continuous
	// M is mass matrix
	M *mat.Dense
	// K is stiffness matrix
	K *mat.Dense
	// C is damping matrix
	C *mat.Dense
	// Frequencies stores natural frequencies in Hz in ascending order
	Frequencies []float64
	// Shapes stores mode shapes in its columns, each normalized to unit maximum displacement
	Shapes *mat.Dense
	// Damping is modal damping ratio
	Damping float64
}

// NewChain creates a chain of len(m) masses m connected by springs of stiffness k
// with modal damping ratio xi and returns it. Spring k[i] connects mass i to mass i-1
// or to the ground for i = 0.
// It returns error if m and k have different lengths or contain non-positive values,
// or if xi is not in the range [0, 1).
func NewChain(m, k []float64, xi float64) (*Chain, error) {
	n := len(m)
	if n == 0 || len(k) != n {
		return nil, fmt.Errorf("invalid chain dimensions. Masses: %d, springs: %d", n, len(k))
	}

	for i := range m {
		if !(m[i] > 0) || !(k[i] > 0) {
			return nil, fmt.Errorf("invalid mass %g or stiffness %g at DOF %d", m[i], k[i], i)
		}
	}

	if !(xi >= 0 && xi < 1) {
		return nil, fmt.Errorf("invalid damping ratio: %g", xi)
	}

	M := mat.NewDense(n, n, nil)
	K := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		M.Set(i, i, m[i])
		K.Set(i, i, k[i])
		if i+1 < n {
			K.Set(i, i, k[i]+k[i+1])
			K.Set(i, i+1, -k[i+1])
			K.Set(i+1, i, -k[i+1])
		}
	}

	// mass normalized stiffness M^-1/2 * K * M^-1/2 is symmetric
	ks := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			ks.SetSym(i, j, K.At(i, j)/math.Sqrt(m[i]*m[j]))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(ks, true); !ok {
		return nil, fmt.Errorf("eigendecomposition of stiffness matrix failed")
	}

	// eigenvalues are returned in ascending order
	lambda := eig.Values(nil)
	phi := &mat.Dense{}
	eig.VectorsTo(phi)

	omega := make([]float64, n)
	freqs := make([]float64, n)
	for i, l := range lambda {
		omega[i] = math.Sqrt(l)
		freqs[i] = omega[i] / (2 * math.Pi)
	}

	// C = M^1/2 * phi * diag(2*xi*omega) * phi' * M^1/2
	sqrtM := make([]float64, n)
	modal := make([]float64, n)
	for i := range m {
		sqrtM[i] = math.Sqrt(m[i])
		modal[i] = 2 * xi * omega[i]
	}
	mh := mat.NewDiagDense(n, sqrtM)
	C := &mat.Dense{}
	C.Product(mh, phi, mat.NewDiagDense(n, modal), phi.T(), mh)

	// physical mode shapes M^-1/2 * phi normalized to unit maximum displacement
	shapes := mat.NewDense(n, n, nil)
	col := make([]float64, n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			col[i] = phi.At(i, j) / sqrtM[i]
		}
		scale := col[maxAbsIdx(col)]
		floats.Scale(1/scale, col)
		shapes.SetCol(j, col)
	}

	ct, err := chainModel(M, K, C)
	if err != nil {
		return nil, err
	}

	return &Chain{
		Continuous:  ct,
		M:           M,
		K:           K,
		C:           C,
		Frequencies: freqs,
		Shapes:      shapes,
		Damping:     xi,
	}, nil
}

// DOF returns number of degrees of freedom of the chain
func (c *Chain) DOF() int {
	return len(c.Frequencies)
}

// chainModel builds the continuous-time state-space model with the state x = [q; dq/dt],
// forces on all masses as inputs and mass accelerations as outputs:
//
//	A = [0, I; -M^-1*K, -M^-1*C]  B = [0; M^-1]
//	C = [-M^-1*K, -M^-1*C]        D = M^-1
func chainModel(M, K, C *mat.Dense) (*Continuous, error) {
	n, _ := M.Dims()

	minv := &mat.Dense{}
	if err := minv.Inverse(M); err != nil {
		return nil, fmt.Errorf("mass matrix inverse: %w", err)
	}

	mk := &mat.Dense{}
	mk.Mul(minv, K)
	mk.Scale(-1, mk)

	mc := &mat.Dense{}
	mc.Mul(minv, C)
	mc.Scale(-1, mc)

	A := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		A.Set(i, n+i, 1)
	}
	A.Slice(n, 2*n, 0, n).(*mat.Dense).Copy(mk)
	A.Slice(n, 2*n, n, 2*n).(*mat.Dense).Copy(mc)

	B := mat.NewDense(2*n, n, nil)
	B.Slice(n, 2*n, 0, n).(*mat.Dense).Copy(minv)

	Cout := mat.NewDense(n, 2*n, nil)
	Cout.Slice(0, n, 0, n).(*mat.Dense).Copy(mk)
	Cout.Slice(0, n, n, 2*n).(*mat.Dense).Copy(mc)

	return NewContinuous(A, B, Cout, minv)
}

func maxAbsIdx(s []float64) int {
	idx := 0
	for i, v := range s {
		if math.Abs(v) > math.Abs(s[idx]) {
			idx = i
		}
	}
	return idx
}
