package model

import (
	"math"
	"math/cmplx"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

const fs = 100.0

var (
	A, C *mat.Dense
	// rotation radius and angle of the two modes of A
	radius = []float64{0.99, 0.95}
	angle  = []float64{0.2, 0.6}
)

// rot returns r * rotation matrix by angle theta, its eigenvalues are r*exp(±i*theta)
func rot(r, theta float64) []float64 {
	return []float64{
		r * math.Cos(theta), -r * math.Sin(theta),
		r * math.Sin(theta), r * math.Cos(theta),
	}
}

func setup() {
	r1, r2 := rot(radius[0], angle[0]), rot(radius[1], angle[1])
	A = mat.NewDense(4, 4, []float64{
		r1[0], r1[1], 0, 0,
		r1[2], r1[3], 0, 0,
		0, 0, r2[0], r2[1],
		0, 0, r2[2], r2[3],
	})

	C = mat.NewDense(2, 4, []float64{
		1.0, 0.0, 1.0, 0.0,
		0.0, 1.0, 0.0, -1.0,
	})
}

func TestMain(m *testing.M) {
	// set up tests
	setup()
	// run the tests
	retCode := m.Run()
	// call with result of m.Run()
	os.Exit(retCode)
}

func TestNew(t *testing.T) {
	assert := assert.New(t)

	m, err := New(A, C)
	assert.NotNil(m)
	assert.NoError(err)

	states, outputs := m.Dims()
	assert.Equal(4, states)
	assert.Equal(2, outputs)

	testCases := []struct {
		A, C *mat.Dense
	}{
		{nil, C},
		{A, nil},
		{mat.NewDense(4, 3, nil), mat.NewDense(2, 3, nil)},
		{A, mat.NewDense(2, 3, nil)},
	}

	for _, tc := range testCases {
		m, err := New(tc.A, tc.C)
		assert.Nil(m)
		assert.Error(err)
	}
}

func TestMatrices(t *testing.T) {
	assert := assert.New(t)

	m, err := New(A, C)
	assert.NoError(err)

	assert.True(mat.Equal(A, m.StateMatrix()))
	assert.True(mat.Equal(C, m.OutputMatrix()))

	// returned matrices are copies
	s := m.StateMatrix().(*mat.Dense)
	s.Set(0, 0, 100.0)
	assert.NotEqual(100.0, m.A.At(0, 0))
}

func TestPoles(t *testing.T) {
	assert := assert.New(t)

	m, err := New(A, C)
	assert.NoError(err)

	poles, err := m.Poles(fs)
	assert.NoError(err)
	assert.Len(poles, 4)

	for k := 0; k < 2; k++ {
		// conjugate pair with positive imaginary part first
		p, q := poles[2*k], poles[2*k+1]

		// mode 0 has the smaller rotation angle and thus the lower frequency
		i := 0
		if imag(cmplx.Log(p.Eigenvalue)) > 0.4 {
			i = 1
		}

		lr, th := math.Log(radius[i]), angle[i]
		wn := fs * math.Hypot(lr, th)
		f := wn / (2 * math.Pi)
		xi := -lr / math.Hypot(lr, th)

		assert.Greater(imag(p.Eigenvalue), 0.0)
		assert.InDelta(real(p.Eigenvalue), real(q.Eigenvalue), 1e-12)
		assert.InDelta(imag(p.Eigenvalue), -imag(q.Eigenvalue), 1e-12)

		for _, pole := range []Pole{p, q} {
			assert.InDelta(f, pole.Frequency, 1e-9)
			assert.InDelta(xi, pole.Damping, 1e-9)
			assert.InDelta(cmplx.Abs(pole.Lambda), wn, 1e-9)
			assert.Len(pole.Shape, 2)
		}

		// shapes of conjugate poles are conjugate
		for j := range p.Shape {
			assert.InDelta(real(p.Shape[j]), real(q.Shape[j]), 1e-9)
			assert.InDelta(imag(p.Shape[j]), -imag(q.Shape[j]), 1e-9)
		}
	}
}

func TestPolesShapes(t *testing.T) {
	assert := assert.New(t)

	a := mat.NewDense(2, 2, []float64{0.5, 0, 0, 0.9})
	c := mat.NewDense(3, 2, []float64{
		1, 2,
		0, 1,
		3, 0,
	})

	m, err := New(a, c)
	assert.NoError(err)

	poles, err := m.Poles(fs)
	assert.NoError(err)
	assert.Len(poles, 2)

	// real eigenvalues have zero frequency imaginary part and critical damping
	for _, p := range poles {
		assert.InDelta(0.0, imag(p.Lambda), 1e-12)
		assert.InDelta(1.0, p.Damping, 1e-12)
	}

	// eigenvectors of a diagonal matrix are unit vectors
	want := map[float64][]float64{
		0.5: {1, 0, 3},
		0.9: {2, 1, 0},
	}
	for _, p := range poles {
		w := want[math.Round(real(p.Eigenvalue)*10)/10]
		assert.NotNil(w)
		for j := range w {
			assert.InDelta(w[j], cmplx.Abs(p.Shape[j]), 1e-12)
		}
	}
}

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	// exp(-0.1 + 2i) sampled at fs
	ev := cmplx.Exp(complex(-0.1, 2.0))
	lambda, f, xi := Decode(ev, fs)
	assert.InDelta(-0.1*fs, real(lambda), 1e-9)
	assert.InDelta(2.0*fs, imag(lambda), 1e-9)
	assert.InDelta(fs*math.Hypot(0.1, 2.0)/(2*math.Pi), f, 1e-9)
	assert.InDelta(0.1/math.Hypot(0.1, 2.0), xi, 1e-12)

	// NaN frequency is replaced by zero
	_, f, _ = Decode(cmplx.NaN(), fs)
	assert.Equal(0.0, f)

	// negative real eigenvalue lies on the branch cut
	_, f, xi = Decode(complex(-0.5, 0), fs)
	assert.False(math.IsNaN(f))
	assert.Greater(f, 0.0)
	assert.Less(xi, 1.0)
}
