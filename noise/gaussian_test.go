package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestNewGaussian(t *testing.T) {
	assert := assert.New(t)

	for _, test := range []struct {
		mean []float64
		cov  *mat.SymDense
		ok   bool
	}{
		{
			mean: []float64{2, 3},
			cov:  mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1}),
			ok:   true,
		},
		{
			mean: []float64{2},
			cov:  mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1}),
			ok:   false,
		},
		{
			// not positive definite
			mean: []float64{0, 0},
			cov:  mat.NewSymDense(2, []float64{1, 2, 2, 1}),
			ok:   false,
		},
	} {
		g, err := NewGaussian(test.mean, test.cov, 1)
		if test.ok {
			assert.NotNil(g)
			assert.NoError(err)
			continue
		}
		assert.Nil(g)
		assert.Error(err)
	}
}

func TestNewWhite(t *testing.T) {
	assert := assert.New(t)

	g, err := NewWhite(3, 0.5, 1)
	assert.NotNil(g)
	assert.NoError(err)
	assert.EqualValues([]float64{0, 0, 0}, g.Mean())
	for i := 0; i < 3; i++ {
		assert.Equal(0.25, g.Cov().At(i, i))
	}

	for _, test := range []struct {
		size int
		std  float64
	}{
		{0, 1.0},
		{2, 0.0},
		{2, -1.0},
	} {
		g, err := NewWhite(test.size, test.std, 1)
		assert.Nil(g)
		assert.Error(err)
	}
}

func TestMeanCov(t *testing.T) {
	assert := assert.New(t)

	mean := []float64{2, 3}
	cov := mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1})

	g, err := NewGaussian(mean, cov, 1)
	assert.NotNil(g)
	assert.NoError(err)

	gCov := g.Cov()
	assert.Equal(cov.SymmetricDim(), gCov.SymmetricDim())
	assert.True(mat.Equal(cov, gCov))
	assert.EqualValues(mean, g.Mean())

	// Gaussian keeps its own copy of the parameters
	mean[0] = 100
	cov.SetSym(0, 0, 100)
	assert.Equal(2.0, g.Mean()[0])
	assert.Equal(1.0, g.Cov().At(0, 0))
}

func TestSample(t *testing.T) {
	assert := assert.New(t)

	mean := []float64{2, -3}
	cov := mat.NewSymDense(2, []float64{1, 0, 0, 4})

	g, err := NewGaussian(mean, cov, 42)
	assert.NoError(err)

	n := 20000
	x0, x1 := make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		s := g.Sample()
		assert.Equal(2, s.Len())
		x0[i], x1[i] = s.AtVec(0), s.AtVec(1)
	}

	assert.InDelta(2.0, stat.Mean(x0, nil), 0.05)
	assert.InDelta(-3.0, stat.Mean(x1, nil), 0.1)
	assert.InDelta(1.0, stat.StdDev(x0, nil), 0.05)
	assert.InDelta(2.0, stat.StdDev(x1, nil), 0.1)
}

func TestReset(t *testing.T) {
	assert := assert.New(t)

	mean := []float64{2, 3}
	cov := mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1})

	g, err := NewGaussian(mean, cov, 7)
	assert.NotNil(g)
	assert.NoError(err)
	assert.Equal(uint64(7), g.Seed())

	sample1 := g.Sample()
	sample2 := g.Sample()
	assert.NotEqual(sample1, sample2)

	err = g.Reset()
	assert.NoError(err)

	assert.Equal(sample1, g.Sample())
	assert.Equal(sample2, g.Sample())

	// same seed yields the same samples
	h, err := NewGaussian(mean, cov, 7)
	assert.NoError(err)
	assert.Equal(sample1, h.Sample())
}

func TestString(t *testing.T) {
	assert := assert.New(t)

	str := `Gaussian{
Mean=[2 3]
Cov=⎡  1  0.1⎤
    ⎣0.1    1⎦
}`
	mean := []float64{2, 3}
	cov := mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1})

	g, err := NewGaussian(mean, cov, 1)
	assert.NotNil(g)
	assert.NoError(err)
	assert.Equal(str, g.String())
}
