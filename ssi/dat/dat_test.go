package dat

import (
	"errors"
	"math"
	"os"
	"testing"

	oma "github.com/milosgajdos/go-oma"
	"github.com/milosgajdos/go-oma/model"
	"github.com/milosgajdos/go-oma/sim"
	"github.com/milosgajdos/go-oma/ssi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var dataset *sim.Dataset

func setup() {
	c := sim.DefaultConfig()
	c.Samples = 6000
	c.SNR = 20

	var err error
	dataset, err = sim.Generate(c)
	if err != nil {
		panic(err)
	}
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

	r, err := New(dataset.Data, 10, ssi.Method1)
	assert.NoError(err)
	assert.NotNil(r)

	assert.Equal(50, r.MaxOrder())
	assert.Equal(5, r.Channels())
	assert.Equal(10, r.BlockRows())
	assert.Equal(ssi.Method1, r.Method())
	assert.Equal(ssi.Data, r.Variant())

	sv := r.SingularValues()
	assert.Len(sv, 50)
	for i := 1; i < len(sv); i++ {
		assert.LessOrEqual(sv[i], sv[i-1])
	}

	testCases := []struct {
		data   mat.Matrix
		br     int
		method ssi.Method
	}{
		{nil, 10, ssi.Method1},
		{dataset.Data, 1, ssi.Method1},
		{dataset.Data, 10, ssi.Method(3)},
		// Hankel matrix would have fewer columns than rows
		{dataset.Data.Slice(0, 100, 0, 5), 10, ssi.Method1},
	}

	for _, tc := range testCases {
		r, err := New(tc.data, tc.br, tc.method)
		assert.Nil(r)
		assert.True(errors.Is(err, oma.ErrInvalidInput))
	}
}

func TestRealize(t *testing.T) {
	for _, method := range []ssi.Method{ssi.Method1, ssi.Method2} {
		t.Run("method "+method.String(), func(t *testing.T) {
			assert := assert.New(t)

			r, err := New(dataset.Data, 10, method)
			require.NoError(t, err)

			ss, err := r.Realize(20)
			require.NoError(t, err)

			rows, cols := ss.StateMatrix().Dims()
			assert.Equal(20, rows)
			assert.Equal(20, cols)
			rows, cols = ss.OutputMatrix().Dims()
			assert.Equal(5, rows)
			assert.Equal(20, cols)

			m, ok := ss.(*model.Model)
			require.True(t, ok)

			poles, err := m.Poles(dataset.SampleRate)
			require.NoError(t, err)

			for _, fn := range dataset.Frequencies {
				best := math.Inf(1)
				for _, p := range poles {
					best = math.Min(best, math.Abs(p.Frequency-fn)/fn)
				}
				assert.Less(best, 0.02, "%.3f Hz", fn)
			}

			for _, order := range []int{0, 51} {
				ss, err := r.Realize(order)
				assert.Nil(ss)
				assert.True(errors.Is(err, oma.ErrInvalidInput))
			}
		})
	}
}
