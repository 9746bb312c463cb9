package stabdiag

import (
	"fmt"
	"math"

	oma "github.com/milosgajdos/go-oma"
	"github.com/milosgajdos/go-oma/mac"
	"github.com/milosgajdos/go-oma/model"
	"gonum.org/v1/gonum/floats"
)

// Label is pole stability label.
// Higher labels denote poles which are stable in more of the compared modal parameters.
type Label int

const (
	// New is a new or unstable pole
	New Label = iota
	// StableFreq is a pole stable in frequency
	StableFreq
	// StableFreqDamp is a pole stable in frequency and damping
	StableFreqDamp
	// StableFreqShape is a pole stable in frequency and mode shape
	StableFreqShape
	// Stable is a pole stable in frequency, damping and mode shape
	Stable
)

// String implements fmt.Stringer
func (l Label) String() string {
	switch l {
	case New:
		return "new"
	case StableFreq:
		return "stable frequency"
	case StableFreqDamp:
		return "stable frequency and damping"
	case StableFreqShape:
		return "stable frequency and mode shape"
	case Stable:
		return "stable"
	}

	return fmt.Sprintf("Label(%d)", int(l))
}

// Limits are pole stability limits.
type Limits struct {
	// Freq is relative frequency difference limit
	Freq float64 `yaml:"freq"`
	// Damping is relative damping difference limit
	Damping float64 `yaml:"damping"`
	// Shape is 1-MAC limit
	Shape float64 `yaml:"shape"`
	// MaxDamping is maximum damping ratio of poles kept in the reduced catalogue
	MaxDamping float64 `yaml:"max_damping"`
}

// DefaultLimits returns default stability limits
func DefaultLimits() Limits {
	return Limits{
		Freq:       0.01,
		Damping:    0.05,
		Shape:      0.02,
		MaxDamping: 0.1,
	}
}

// Validate returns error if any of the limits is negative or not finite.
func (l Limits) Validate() error {
	for _, v := range []float64{l.Freq, l.Damping, l.Shape, l.MaxDamping} {
		if !(v >= 0) || math.IsInf(v, 1) {
			return fmt.Errorf("%w: invalid stability limits: %+v", oma.ErrInvalidInput, l)
		}
	}

	return nil
}

// LabeledPole is a pole labeled by comparing it against the poles of the previous model order.
type LabeledPole struct {
	model.Pole
	// Index is the slot index of the pole within its model order
	Index int
	// Label is stability label
	Label Label
}

// Classify labels poles cur of a model order by comparing each of them against the pole
// of the previous model order prev closest in frequency. All poles are labeled New if prev is empty.
// Comparisons involving NaN values never pass, so such poles are labeled New.
func Classify(cur []model.Pole, prev []LabeledPole, lim Limits) []LabeledPole {
	out := make([]LabeledPole, len(cur))

	freqs := make([]float64, len(prev))
	for i := range prev {
		freqs[i] = prev[i].Frequency
	}

	for i, p := range cur {
		out[i] = LabeledPole{Pole: p, Index: i, Label: New}
		if len(prev) == 0 {
			continue
		}

		q := prev[floats.NearestIdx(freqs, p.Frequency)]

		cond1 := math.Abs(p.Frequency-q.Frequency) / p.Frequency
		cond2 := math.Abs(p.Damping-q.Damping) / p.Damping
		cond3 := 1 - mac.Value(p.Shape, q.Shape)

		out[i].Label = label(cond1 < lim.Freq, cond2 < lim.Damping, cond3 < lim.Shape)
	}

	return out
}

func label(freq, damp, shape bool) Label {
	switch {
	case freq && damp && shape:
		return Stable
	case freq && shape:
		return StableFreqShape
	case freq && damp:
		return StableFreqDamp
	case freq:
		return StableFreq
	}

	return New
}
