// Package sim simulates output-only vibration measurements of linear structures.
//
// It provides continuous and discrete-time state-space models, a shear-type chain
// structure with analytically known modal parameters and a generator of its
// noisy acceleration responses to white noise forces.
package sim

import (
	"fmt"
	"math"

	"github.com/milosgajdos/go-oma/noise"
	"gonum.org/v1/gonum/mat"
)

// Simulate propagates discrete-time system d from zero initial state for n steps driven
// by input samples drawn from u and returns n x ny matrix of system outputs.
// It returns error if n is not positive or if the input does not match the system.
func Simulate(d *Discrete, u noise.Noise, n int) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid number of samples: %d", n)
	}

	nx, _, ny := d.SystemDims()
	if ny == 0 {
		return nil, fmt.Errorf("output matrix must be defined to simulate the system")
	}

	out := mat.NewDense(n, ny, nil)
	var x mat.Vector = mat.NewVecDense(nx, nil)
	for k := 0; k < n; k++ {
		uk := u.Sample()

		y, err := d.Observe(x, uk)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", k, err)
		}
		out.SetRow(k, mat.Col(nil, 0, y))

		x, err = d.Propagate(x, uk)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", k, err)
		}
	}

	return out, nil
}

// Corrupt returns a copy of data with a noise sample drawn from n added to each of its rows.
// It returns error if the noise dimension does not match the number of data columns.
func Corrupt(data mat.Matrix, n noise.Noise) (*mat.Dense, error) {
	rows, cols := data.Dims()
	if size := len(n.Mean()); size != cols {
		return nil, fmt.Errorf("invalid noise dimension %d for %d channels", size, cols)
	}

	out := mat.DenseCopyOf(data)
	for i := 0; i < rows; i++ {
		row := out.RowView(i).(*mat.VecDense)
		row.AddVec(row, n.Sample())
	}

	return out, nil
}

// Amplitude returns measurement noise amplitude for a signal of amplitude a
// and signal-to-noise ratio snr in decibels.
func Amplitude(a, snr float64) float64 {
	return a / math.Pow(10, snr/10)
}

// Config configures the synthetic chain measurements.
type Config struct {
	// DOF is number of degrees of freedom
	DOF int `yaml:"dof"`
	// Mass is mass of every DOF
	Mass float64 `yaml:"mass"`
	// Stiffness is stiffness of every spring
	Stiffness float64 `yaml:"stiffness"`
	// Damping is modal damping ratio
	Damping float64 `yaml:"damping"`
	// SampleRate is sampling frequency in Hz
	SampleRate float64 `yaml:"sample_rate"`
	// Samples is number of samples
	Samples int `yaml:"samples"`
	// Force is standard deviation of the white noise forces
	Force float64 `yaml:"force"`
	// SNR is signal-to-noise ratio in decibels, +Inf disables measurement noise
	SNR float64 `yaml:"snr"`
	// Seed seeds the random forces; measurement noise uses Seed+1
	Seed uint64 `yaml:"seed"`
}

// DefaultConfig returns the default 5 DOF chain configuration
func DefaultConfig() Config {
	return Config{
		DOF:        5,
		Mass:       25.91,
		Stiffness:  10000.0,
		Damping:    0.02,
		SampleRate: 20.0,
		Samples:    36000,
		Force:      1.0,
		SNR:        10.0,
		Seed:       12345,
	}
}

// Dataset is a synthetic measurement with known modal parameters.
type Dataset struct {
	// Data stores accelerations with samples in rows and DOFs in columns
	Data *mat.Dense
	// SampleRate is sampling frequency in Hz
	SampleRate float64
	// Frequencies stores natural frequencies in Hz
	Frequencies []float64
	// Shapes stores unit displacement normalized mode shapes in its columns
	Shapes *mat.Dense
	// Damping is modal damping ratio
	Damping float64
}

// Generate simulates accelerations of the chain configured by c excited by white noise
// forces at every DOF and corrupts them with white measurement noise.
// It returns error if the configuration is invalid.
func Generate(c Config) (*Dataset, error) {
	if c.DOF <= 0 || c.Samples <= 0 || !(c.SampleRate > 0) || !(c.Force > 0) {
		return nil, fmt.Errorf("invalid simulation config: %+v", c)
	}

	m, k := make([]float64, c.DOF), make([]float64, c.DOF)
	for i := range m {
		m[i], k[i] = c.Mass, c.Stiffness
	}

	chain, err := NewChain(m, k, c.Damping)
	if err != nil {
		return nil, err
	}

	d, err := chain.ToDiscrete(1 / c.SampleRate)
	if err != nil {
		return nil, err
	}

	forces, err := noise.NewWhite(c.DOF, c.Force, c.Seed)
	if err != nil {
		return nil, err
	}

	acc, err := Simulate(d, forces, c.Samples)
	if err != nil {
		return nil, err
	}

	var meas noise.Noise
	if math.IsInf(c.SNR, 1) {
		meas, err = noise.NewZero(c.DOF)
	} else {
		meas, err = noise.NewWhite(c.DOF, Amplitude(c.Force, c.SNR), c.Seed+1)
	}
	if err != nil {
		return nil, err
	}

	data, err := Corrupt(acc, meas)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		Data:        data,
		SampleRate:  c.SampleRate,
		Frequencies: chain.Frequencies,
		Shapes:      chain.Shapes,
		Damping:     chain.Damping,
	}, nil
}
