package dataio

import (
	"fmt"
	"io"

	"github.com/milosgajdos/go-oma/estimate"
	"github.com/milosgajdos/go-oma/stabdiag"
	"gopkg.in/yaml.v3"
)

// Results are exported identification results.
type Results struct {
	SampleRate float64         `yaml:"sample_rate"`
	Channels   int             `yaml:"channels"`
	Variant    string          `yaml:"variant,omitempty"`
	Method     string          `yaml:"method,omitempty"`
	BlockRows  int             `yaml:"block_rows,omitempty"`
	MinOrder   int             `yaml:"min_order"`
	MaxOrder   int             `yaml:"max_order"`
	Limits     stabdiag.Limits `yaml:"limits"`
	Modes      []Mode          `yaml:"modes"`
	Catalogue  []Pole          `yaml:"catalogue"`
}

// Mode is exported modal estimate.
type Mode struct {
	Target    float64 `yaml:"target"`
	Frequency float64 `yaml:"frequency"`
	Damping   float64 `yaml:"damping"`
	Order     int     `yaml:"order"`
	Index     int     `yaml:"index"`
	Poles     int     `yaml:"poles"`
	Shape     Shape   `yaml:"shape"`
}

// Shape is complex mode shape split into real and imaginary parts.
type Shape struct {
	Re []float64 `yaml:"re,flow"`
	Im []float64 `yaml:"im,flow"`
}

// Pole is exported catalogue pole.
type Pole struct {
	Frequency float64 `yaml:"frequency"`
	Damping   float64 `yaml:"damping"`
	Order     int     `yaml:"order"`
	Label     string  `yaml:"label"`
}

// NewResults creates results from diagram d and modal estimates.
func NewResults(d *stabdiag.Diagram, modes []estimate.Modal) (*Results, error) {
	if d == nil {
		return nil, fmt.Errorf("nil stabilization diagram")
	}

	r := &Results{
		SampleRate: d.SampleRate,
		Channels:   d.Channels,
		Variant:    string(d.Variant),
		BlockRows:  d.BlockRows,
		MinOrder:   d.MinOrder,
		MaxOrder:   d.MaxOrder,
		Limits:     d.Limits,
		Modes:      make([]Mode, len(modes)),
		Catalogue:  make([]Pole, len(d.Reduced)),
	}

	if d.Method != 0 {
		r.Method = d.Method.String()
	}

	for i, m := range modes {
		r.Modes[i] = Mode{
			Target:    m.Target,
			Frequency: m.Frequency,
			Damping:   m.Damping,
			Order:     m.Order,
			Index:     m.Index,
			Poles:     m.Poles,
			Shape:     split(m.Shape),
		}
	}

	for i, rec := range d.Reduced {
		r.Catalogue[i] = Pole{
			Frequency: rec.Frequency,
			Damping:   rec.Damping,
			Order:     rec.Order,
			Label:     rec.Label.String(),
		}
	}

	return r, nil
}

// WriteResults writes r to w as YAML.
func WriteResults(w io.Writer, r *Results) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	return enc.Close()
}

// ReadResults reads YAML results from r.
func ReadResults(r io.Reader) (*Results, error) {
	res := new(Results)
	if err := yaml.NewDecoder(r).Decode(res); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}

	return res, nil
}

// Complex returns the shape as complex vector.
func (s Shape) Complex() []complex128 {
	c := make([]complex128, len(s.Re))
	for i := range c {
		var im float64
		if i < len(s.Im) {
			im = s.Im[i]
		}
		c[i] = complex(s.Re[i], im)
	}

	return c
}

func split(c []complex128) Shape {
	s := Shape{
		Re: make([]float64, len(c)),
		Im: make([]float64, len(c)),
	}

	for i, v := range c {
		s.Re[i] = real(v)
		s.Im[i] = imag(v)
	}

	return s
}
