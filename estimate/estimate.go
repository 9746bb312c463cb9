// Package estimate extracts modal parameter estimates from the reduced pole
// catalogue of a stabilization diagram.
package estimate

import (
	"fmt"
	"math"

	oma "github.com/milosgajdos/go-oma"
	"github.com/milosgajdos/go-oma/mac"
	"github.com/milosgajdos/go-oma/matrix"
	"github.com/milosgajdos/go-oma/stabdiag"
	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Config configures modal extraction.
type Config struct {
	// DeltaF is half width of the frequency window around target frequencies in Hz
	DeltaF float64 `yaml:"delta_f"`
	// MACLimit is minimum MAC between reference shape and shapes of retained poles
	MACLimit float64 `yaml:"mac_limit"`
}

// DefaultConfig returns default extraction config
func DefaultConfig() Config {
	return Config{
		DeltaF:   0.05,
		MACLimit: 0.95,
	}
}

// Validate returns error if DeltaF is negative or not finite or if MACLimit is outside [0, 1].
func (c Config) Validate() error {
	if !(c.DeltaF >= 0) || math.IsInf(c.DeltaF, 1) {
		return fmt.Errorf("%w: invalid frequency window: %g", oma.ErrInvalidInput, c.DeltaF)
	}

	if !(c.MACLimit >= 0 && c.MACLimit <= 1) {
		return fmt.Errorf("%w: invalid MAC limit: %g", oma.ErrInvalidInput, c.MACLimit)
	}

	return nil
}

// Modal is modal parameter estimate.
type Modal struct {
	// Target is requested target frequency in Hz
	Target float64
	// Frequency is mean natural frequency of retained poles in Hz
	Frequency float64
	// Damping is mean damping ratio of retained poles
	Damping float64
	// Shape is reference mode shape normalized to unit value at its largest component
	Shape []complex128
	// Order is model order of the reference pole
	Order int
	// Index is slot index of the reference pole
	Index int
	// Poles is number of retained poles
	Poles int
}

// Extract estimates modal parameters of the modes closest to target frequencies from the reduced
// pole catalogue of d. For every target it selects the catalogue poles whose frequency falls into
// the open window (target-DeltaF, target+DeltaF), picks the pole whose shape is most similar to the
// shapes of all the selected poles as reference and averages frequency and damping of the selected
// poles whose MAC with the reference exceeds MACLimit.
// Targets without any selected pole yield no estimate.
// It returns error if d is nil, if cfg is invalid or if any of the targets is not finite.
func Extract(d *stabdiag.Diagram, targets []float64, cfg Config) ([]Modal, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil stabilization diagram", oma.ErrInvalidInput)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for _, t := range targets {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("%w: invalid target frequency: %g", oma.ErrInvalidInput, t)
		}
	}

	var out []Modal
	for _, t := range targets {
		m, ok, err := extract(d, t, cfg)
		if err != nil {
			return nil, fmt.Errorf("target %g Hz: %w", t, err)
		}

		if ok {
			out = append(out, m)
		}
	}

	return out, nil
}

func extract(d *stabdiag.Diagram, target float64, cfg Config) (Modal, bool, error) {
	var (
		recs   []stabdiag.Record
		shapes [][]complex128
	)

	for _, r := range d.Reduced {
		if r.Frequency <= target-cfg.DeltaF || r.Frequency >= target+cfg.DeltaF {
			continue
		}

		shape, err := d.Shape(r)
		if err != nil {
			return Modal{}, false, err
		}

		recs = append(recs, r)
		shapes = append(shapes, shape)
	}

	if len(recs) == 0 {
		return Modal{}, false, nil
	}

	auto, err := mac.Auto(shapes)
	if err != nil {
		return Modal{}, false, err
	}

	ref := floats.MaxIdx(matrix.RowSums(auto))

	shape := shapes[ref]
	scale := shape[cmplxs.MaxAbsIdx(shape)]
	if scale != 0 {
		cmplxs.Scale(1/scale, shape)
	}

	var freqs, damps []float64
	for i, r := range recs {
		if mac.Value(shape, shapes[i]) > cfg.MACLimit {
			freqs = append(freqs, r.Frequency)
			damps = append(damps, r.Damping)
		}
	}

	if len(freqs) == 0 {
		return Modal{}, false, nil
	}

	return Modal{
		Target:    target,
		Frequency: stat.Mean(freqs, nil),
		Damping:   stat.Mean(damps, nil),
		Shape:     shape,
		Order:     recs[ref].Order,
		Index:     recs[ref].Index,
		Poles:     len(freqs),
	}, true, nil
}
