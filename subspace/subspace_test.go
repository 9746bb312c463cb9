package subspace

import (
	"errors"
	"testing"

	oma "github.com/milosgajdos/go-oma"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNewBasis(t *testing.T) {
	assert := assert.New(t)

	m := mat.NewDense(4, 3, []float64{
		4, 0, 0,
		0, 9, 0,
		0, 0, 1,
		0, 0, 0,
	})

	b, err := NewBasis(m)
	assert.NoError(err)
	assert.Equal(3, b.Rank())
	assert.InDeltaSlice([]float64{9, 4, 1}, b.S, 1e-12)
	assert.InDeltaSlice([]float64{3, 2, 1}, b.SqrtS, 1e-12)

	// U*S*Vᵀ reproduces the factorized matrix
	us := &mat.Dense{}
	us.Mul(b.U, mat.NewDiagDense(3, b.S))
	usv := &mat.Dense{}
	usv.Mul(us, b.V.T())
	assert.True(mat.EqualApprox(m, usv, 1e-12))
}

func TestTruncate(t *testing.T) {
	assert := assert.New(t)

	m := mat.NewDense(3, 3, []float64{
		2, 1, 0,
		1, 3, 1,
		0, 1, 4,
	})

	b, err := NewBasis(m)
	assert.NoError(err)

	u, s, v := b.Truncate(2)
	r, c := u.Dims()
	assert.Equal(3, r)
	assert.Equal(2, c)
	r, c = s.Dims()
	assert.Equal(2, r)
	assert.Equal(2, c)
	r, c = v.Dims()
	assert.Equal(3, r)
	assert.Equal(2, c)

	assert.Panics(func() { b.Truncate(0) })
	assert.Panics(func() { b.Truncate(4) })
}

func TestObservabilityPrefix(t *testing.T) {
	assert := assert.New(t)

	data := make([]float64, 8*6)
	for i := range data {
		data[i] = float64((i*7)%11) - 5.0
	}
	m := mat.NewDense(8, 6, data)

	b, err := NewBasis(m)
	assert.NoError(err)

	o2 := b.Observability(2)
	o4 := b.Observability(4)

	r, c := o4.Dims()
	assert.Equal(8, r)
	assert.Equal(4, c)
	assert.True(mat.EqualApprox(o2, o4.Slice(0, 8, 0, 2), 1e-12))
}

func TestProject(t *testing.T) {
	assert := assert.New(t)

	br, nch := 2, 2
	rows, cols := 2*br*nch, 20

	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = float64((i*13)%17) - 8.0
	}
	h := mat.NewDense(rows, cols, data)

	l, q := lq(h)

	// L*Q reproduces H
	lqm := &mat.Dense{}
	lqm.Mul(l, q)
	assert.True(mat.EqualApprox(h, lqm, 1e-10))

	// L is lower triangular
	for i := 0; i < rows; i++ {
		for j := i + 1; j < rows; j++ {
			assert.Equal(0.0, l.At(i, j))
		}
	}

	// Q has orthonormal rows
	qqt := &mat.Dense{}
	qqt.Mul(q, q.T())
	eye := mat.NewDiagDense(rows, nil)
	for i := 0; i < rows; i++ {
		eye.SetDiag(i, 1)
	}
	assert.True(mat.EqualApprox(eye, qqt, 1e-10))

	p, err := Project(h, br, nch)
	assert.NoError(err)

	r, c := p.Pi.Dims()
	assert.Equal(br*nch, r)
	assert.Equal(cols, c)

	r, c = p.Pim1.Dims()
	assert.Equal(br*nch-nch, r)
	assert.Equal(cols, c)

	r, c = p.Yi.Dims()
	assert.Equal(nch, r)
	assert.Equal(cols, c)

	// Yi is the projection of the first future block row onto
	// the row space of past outputs and itself, i.e. the row itself.
	assert.True(mat.EqualApprox(h.Slice(br*nch, br*nch+nch, 0, cols), p.Yi, 1e-10))
}

func TestProjectErrors(t *testing.T) {
	assert := assert.New(t)

	testCases := []struct {
		rows, cols, br, nch int
	}{
		{8, 20, 1, 4},
		{8, 20, 2, 0},
		{6, 20, 2, 2},
		{8, 6, 2, 2},
	}

	for _, tc := range testCases {
		h := mat.NewDense(tc.rows, tc.cols, nil)
		p, err := Project(h, tc.br, tc.nch)
		assert.Nil(p)
		assert.True(errors.Is(err, oma.ErrInvalidInput))
	}
}
