package stabdiag

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var labelColors = map[Label]color.Color{
	New:             color.RGBA{R: 255, A: 255},
	StableFreq:      color.RGBA{R: 255, G: 140, A: 255},
	StableFreqDamp:  color.RGBA{R: 255, G: 215, A: 255},
	StableFreqShape: color.RGBA{R: 255, G: 255, A: 255},
	Stable:          color.RGBA{G: 128, A: 255},
}

// NewPlot creates stabilization diagram plot of the reduced pole catalogue of d:
// pole frequencies are plotted against model orders, colored by stability label.
// It returns error if d is nil or if the plot fails to be created.
func NewPlot(d *Diagram) (*plot.Plot, error) {
	if d == nil {
		return nil, fmt.Errorf("invalid diagram supplied")
	}

	p := plot.New()

	p.Title.Text = "Stabilization diagram"
	if d.BlockRows > 0 {
		p.Title.Text = fmt.Sprintf("Stabilization diagram (%d block rows)", d.BlockRows)
	}
	p.X.Label.Text = "Frequency [Hz]"
	p.Y.Label.Text = "Model order"
	p.X.Min = 0
	p.X.Max = d.SampleRate / 2
	p.Y.Min = float64(d.MinOrder)
	p.Y.Max = float64(d.MaxOrder)
	p.Add(plotter.NewGrid())

	legend := plot.NewLegend()
	legend.Top = true
	p.Legend = legend

	for l := New; l <= Stable; l++ {
		pts := makePoints(d.Reduced, l)
		if len(pts) == 0 {
			continue
		}

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create scatter: %w", err)
		}
		scatter.GlyphStyle.Color = labelColors[l]
		scatter.GlyphStyle.Radius = vg.Points(2)
		scatter.Shape = draw.CircleGlyph{}
		if l == Stable {
			scatter.Shape = draw.PyramidGlyph{}
		}

		p.Add(scatter)
		p.Legend.Add(l.String(), scatter)
	}

	return p, nil
}

func makePoints(recs []Record, l Label) plotter.XYs {
	var pts plotter.XYs
	for _, r := range recs {
		if r.Label != l {
			continue
		}
		pts = append(pts, plotter.XY{X: r.Frequency, Y: float64(r.Order)})
	}

	return pts
}
