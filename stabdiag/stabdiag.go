// Package stabdiag builds stabilization diagrams: it realizes state-space models over
// a range of model orders, labels the stability of their poles across consecutive
// orders and reduces them to a catalogue of physical poles.
package stabdiag

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"

	oma "github.com/milosgajdos/go-oma"
	"github.com/milosgajdos/go-oma/model"
	"github.com/milosgajdos/go-oma/ssi"
	"github.com/milosgajdos/matrix"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// pairTol is relative frequency tolerance of complex conjugate poles
const pairTol = 1e-8

// Config configures the order sweep.
type Config struct {
	// MinOrder is minimum model order; it must be even
	MinOrder int
	// MaxOrder is maximum model order; zero means the maximum order of the realizer
	MaxOrder int
	// Limits are pole stability limits
	Limits Limits
	// Workers limits the number of concurrently realized orders; zero means GOMAXPROCS
	Workers int
	// Data optionally references the identified time history
	Data mat.Matrix
	// Logger logs sweep progress; nil disables logging
	Logger *slog.Logger
}

// DefaultConfig returns default sweep configuration
func DefaultConfig() *Config {
	return &Config{
		Limits: DefaultLimits(),
	}
}

// OrderResult stores poles realized at a single model order.
type OrderResult struct {
	// Order is model order
	Order int
	// Step is index of the order in the sweep
	Step int
	// Model is realized model; nil if the order has no model
	Model *model.Model
	// Poles stores labeled poles, one per state
	Poles []LabeledPole
}

// Record is a row of the pole table.
type Record struct {
	// Frequency is natural frequency in Hz
	Frequency float64
	// Order is model order
	Order int
	// Step is index of the order in the sweep
	Step int
	// Label is stability label
	Label Label
	// Damping is damping ratio
	Damping float64
	// Index is slot index of the pole within its order
	Index int
}

// Diagram is stabilization diagram.
type Diagram struct {
	// SampleRate is sampling frequency in Hz
	SampleRate float64
	// Channels is number of measured channels
	Channels int
	// Variant is SSI variant if known
	Variant ssi.Variant
	// Method is estimator method if known
	Method ssi.Method
	// BlockRows is number of block rows if known
	BlockRows int
	// MinOrder is minimum model order
	MinOrder int
	// MaxOrder is maximum model order
	MaxOrder int
	// Limits are stability limits used to label poles
	Limits Limits
	// Data references the identified time history if supplied
	Data mat.Matrix
	// Orders stores results of all swept orders in ascending order
	Orders []OrderResult
	// All stores all poles of all orders
	All []Record
	// Reduced stores the reduced pole catalogue
	Reduced []Record
}

// Shape returns mode shape of pole r.
// It returns error if r does not reference a pole of the diagram.
func (d *Diagram) Shape(r Record) ([]complex128, error) {
	if r.Step < 0 || r.Step >= len(d.Orders) {
		return nil, fmt.Errorf("invalid order step: %d", r.Step)
	}

	poles := d.Orders[r.Step].Poles
	if r.Index < 0 || r.Index >= len(poles) {
		return nil, fmt.Errorf("invalid pole index %d at order %d", r.Index, d.Orders[r.Step].Order)
	}

	shape := make([]complex128, len(poles[r.Index].Shape))
	copy(shape, poles[r.Index].Shape)

	return shape, nil
}

// Sweep realizes models of all even orders between cfg.MinOrder and cfg.MaxOrder using r,
// decodes their poles given sampling frequency fs, labels the poles of each order against the
// previous order and reduces them to the stable pole catalogue.
// Orders which fail to be realized numerically are logged and contribute no poles.
// It returns error if the configuration is invalid.
func Sweep(r oma.Realizer, fs float64, cfg *Config) (*Diagram, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := ssi.ValidateRate(fs); err != nil {
		return nil, err
	}

	if err := cfg.Limits.Validate(); err != nil {
		return nil, err
	}

	maxOrder := cfg.MaxOrder
	if maxOrder == 0 {
		maxOrder = r.MaxOrder()
	}

	if cfg.MinOrder < 0 || cfg.MinOrder%2 != 0 || cfg.MinOrder > maxOrder || maxOrder > r.MaxOrder() {
		return nil, fmt.Errorf("%w: invalid order range [%d, %d], maximum order: %d",
			oma.ErrInvalidInput, cfg.MinOrder, maxOrder, r.MaxOrder())
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	orders := make([]OrderResult, 0, (maxOrder-cfg.MinOrder)/2+1)
	for order := cfg.MinOrder; order <= maxOrder; order += 2 {
		orders = append(orders, OrderResult{Order: order, Step: len(orders)})
	}

	poles := make([][]model.Pole, len(orders))

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range orders {
		i := i
		g.Go(func() error {
			m, p := realize(r, orders[i].Order, fs, logger)
			orders[i].Model, poles[i] = m, p
			return nil
		})
	}
	// realize never returns error
	_ = g.Wait()

	for i := range orders {
		var prev []LabeledPole
		if i >= 2 {
			prev = orders[i-1].Poles
		}
		orders[i].Poles = Classify(poles[i], prev, cfg.Limits)
	}

	d := &Diagram{
		SampleRate: fs,
		Channels:   r.Channels(),
		MinOrder:   cfg.MinOrder,
		MaxOrder:   maxOrder,
		Limits:     cfg.Limits,
		Data:       cfg.Data,
		Orders:     orders,
		All:        Flatten(orders),
		Reduced:    Reduce(orders, cfg.Limits.MaxDamping),
	}

	if desc, ok := r.(ssi.Descriptor); ok {
		d.Variant = desc.Variant()
		d.Method = desc.Method()
		d.BlockRows = desc.BlockRows()
	}

	logger.Info("stabilization diagram built", "orders", len(orders), "poles", len(d.All), "reduced", len(d.Reduced))

	return d, nil
}

// realize realizes the model of the given order and decodes its poles.
// Numerical failures are logged and yield no poles.
func realize(r oma.Realizer, order int, fs float64, logger *slog.Logger) (*model.Model, []model.Pole) {
	if order == 0 {
		return nil, nil
	}

	ss, err := r.Realize(order)
	if err != nil {
		logger.Warn("failed to realize model", "order", order, "error", err)
		return nil, nil
	}

	m, ok := ss.(*model.Model)
	if !ok {
		m, err = model.New(mat.DenseCopyOf(ss.StateMatrix()), mat.DenseCopyOf(ss.OutputMatrix()))
		if err != nil {
			logger.Warn("invalid model", "order", order, "error", err)
			return nil, nil
		}
	}

	if logger.Enabled(context.Background(), slog.LevelDebug) {
		logger.Debug("realized model", "order", order, "A", fmt.Sprintf("%v", matrix.Format(m.A)))
	}

	p, err := m.Poles(fs)
	if err != nil {
		logger.Warn("failed to decode poles", "order", order, "error", err)
		return m, nil
	}

	logger.Debug("decoded poles", "order", order, "poles", len(p))

	return m, p
}

// Flatten returns the table of all poles of all orders.
func Flatten(orders []OrderResult) []Record {
	var out []Record
	for _, o := range orders {
		for _, p := range o.Poles {
			out = append(out, record(o, p))
		}
	}

	return out
}

// Reduce returns the catalogue of physical poles: poles with finite frequency and damping
// in the range (0, maxDamping) which form complex conjugate pairs. Each pair is represented
// by the pole with the lower slot index. Unpaired poles are discarded.
func Reduce(orders []OrderResult, maxDamping float64) []Record {
	var out []Record
	for _, o := range orders {
		kept := make([]LabeledPole, 0, len(o.Poles))
		for _, p := range o.Poles {
			if math.IsNaN(p.Frequency) || math.IsInf(p.Frequency, 0) {
				continue
			}
			if !(p.Damping > 0 && p.Damping < maxDamping) {
				continue
			}
			kept = append(kept, p)
		}

		paired := make([]bool, len(kept))
		for i := range kept {
			if paired[i] {
				continue
			}
			for j := i + 1; j < len(kept); j++ {
				if !paired[j] && conjugate(kept[i].Frequency, kept[j].Frequency) {
					paired[i], paired[j] = true, true
					out = append(out, record(o, kept[i]))
					break
				}
			}
		}
	}

	return out
}

func conjugate(f1, f2 float64) bool {
	return math.Abs(f1-f2) <= pairTol*math.Max(f1, f2)
}

func record(o OrderResult, p LabeledPole) Record {
	return Record{
		Frequency: p.Frequency,
		Order:     o.Order,
		Step:      o.Step,
		Label:     p.Label,
		Damping:   p.Damping,
		Index:     p.Index,
	}
}
