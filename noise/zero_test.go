package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestZero(t *testing.T) {
	assert := assert.New(t)

	for _, size := range []int{1, 3} {
		z, err := NewZero(size)
		assert.NoError(err)

		s := z.Sample()
		assert.Equal(size, s.Len())
		assert.Equal(0.0, mat.Norm(s, 2))

		cov := z.Cov()
		assert.Equal(size, cov.SymmetricDim())
		assert.True(mat.Equal(cov, mat.NewSymDense(size, nil)))

		assert.Equal(make([]float64, size), z.Mean())
		assert.NoError(z.Reset())
	}

	for _, size := range []int{0, -1} {
		z, err := NewZero(size)
		assert.Nil(z)
		assert.Error(err)
	}
}

func TestZeroString(t *testing.T) {
	assert := assert.New(t)

	z, err := NewZero(2)
	assert.NoError(err)
	assert.Equal("Zero{Size=2}", z.String())
}
