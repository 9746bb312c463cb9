package cli

import (
	"fmt"
	"os"

	oma "github.com/milosgajdos/go-oma"
	"github.com/milosgajdos/go-oma/estimate"
	"github.com/milosgajdos/go-oma/internal/config"
	"github.com/milosgajdos/go-oma/internal/dataio"
	"github.com/milosgajdos/go-oma/ssi"
	"github.com/milosgajdos/go-oma/ssi/cov"
	"github.com/milosgajdos/go-oma/ssi/dat"
	"github.com/milosgajdos/go-oma/stabdiag"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/vg"
)

var (
	idFs       float64
	idBr       int
	idVariant  string
	idMethod   string
	idMinOrder int
	idMaxOrder int
	idWorkers  int
	idTargets  []float64
	idOut      string
	idPlot     string
)

var identifyCmd = &cobra.Command{
	Use:   "identify <data.csv>",
	Short: "Identify modal parameters from a time history",
	Long: `Identify modal parameters from an output-only time history stored in a CSV
file with one row per sample and one column per channel.

The command sweeps model orders of the selected SSI variant, builds the
stabilization diagram and extracts modal estimates closest to the target
frequencies. Flags override the run configuration.

Examples:
  ssi identify chain.csv --fs 20
  ssi identify chain.csv --fs 20 --variant dat --method 2 --br 30
  ssi identify chain.csv --fs 20 --targets 0.89,2.6,4.1 --out modes.yaml
  ssi identify chain.csv -c run.yaml --plot diagram.png`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func init() {
	identifyCmd.Flags().Float64Var(&idFs, "fs", 0, "sampling frequency in Hz")
	identifyCmd.Flags().IntVar(&idBr, "br", 0, "number of block rows")
	identifyCmd.Flags().StringVar(&idVariant, "variant", "", "SSI variant: cov or dat")
	identifyCmd.Flags().StringVar(&idMethod, "method", "", "estimator method: 1 or 2")
	identifyCmd.Flags().IntVar(&idMinOrder, "min-order", 0, "minimum model order")
	identifyCmd.Flags().IntVar(&idMaxOrder, "max-order", 0, "maximum model order")
	identifyCmd.Flags().IntVar(&idWorkers, "workers", 0, "number of concurrently realized orders")
	identifyCmd.Flags().Float64SliceVarP(&idTargets, "targets", "t", nil, "target frequencies in Hz")
	identifyCmd.Flags().StringVarP(&idOut, "out", "o", "", "write results YAML to file")
	identifyCmd.Flags().StringVar(&idPlot, "plot", "", "save stabilization diagram to image file")
}

func runIdentify(cmd *cobra.Command, args []string) error {
	c := cfg
	applyIdentifyFlags(cmd, &c)

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := readData(args[0])
	if err != nil {
		return err
	}

	n, nch := data.Dims()
	logger.Info("time history loaded", "file", args[0], "samples", n, "channels", nch)

	r, err := newRealizer(data, c.Variant, c.Method, c.BlockRows)
	if err != nil {
		return err
	}

	d, err := stabdiag.Sweep(r, c.SampleRate, &stabdiag.Config{
		MinOrder: c.MinOrder,
		MaxOrder: c.MaxOrder,
		Limits:   c.Limits,
		Workers:  c.Workers,
		Data:     data,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	var modes []estimate.Modal
	if len(c.Extract.Targets) > 0 {
		modes, err = estimate.Extract(d, c.Extract.Targets, c.Extract.Config)
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}
	}

	printModes(cmd, d, modes)

	if idOut != "" {
		if err := writeResults(idOut, d, modes); err != nil {
			return err
		}
		logger.Info("results written", "file", idOut)
	}

	if idPlot != "" {
		p, err := stabdiag.NewPlot(d)
		if err != nil {
			return fmt.Errorf("plot: %w", err)
		}
		if err := p.Save(8*vg.Inch, 6*vg.Inch, idPlot); err != nil {
			return fmt.Errorf("save plot: %w", err)
		}
		logger.Info("stabilization diagram saved", "file", idPlot)
	}

	return nil
}

func applyIdentifyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("fs") {
		c.SampleRate = idFs
	}
	if flags.Changed("br") {
		c.BlockRows = idBr
	}
	if flags.Changed("variant") {
		c.Variant = idVariant
	}
	if flags.Changed("method") {
		c.Method = idMethod
	}
	if flags.Changed("min-order") {
		c.MinOrder = idMinOrder
	}
	if flags.Changed("max-order") {
		c.MaxOrder = idMaxOrder
	}
	if flags.Changed("workers") {
		c.Workers = idWorkers
	}
	if flags.Changed("targets") {
		c.Extract.Targets = idTargets
	}
}

func readData(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data: %w", err)
	}
	defer f.Close()

	data, err := dataio.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return data, nil
}

func newRealizer(data mat.Matrix, variant, method string, br int) (oma.Realizer, error) {
	v, err := ssi.ParseVariant(variant)
	if err != nil {
		return nil, err
	}

	m, err := ssi.ParseMethod(method)
	if err != nil {
		return nil, err
	}

	switch v {
	case ssi.Data:
		r, err := dat.New(data, br, m)
		if err != nil {
			return nil, fmt.Errorf("data-driven SSI: %w", err)
		}
		return r, nil
	default:
		r, err := cov.New(data, br, m)
		if err != nil {
			return nil, fmt.Errorf("covariance-driven SSI: %w", err)
		}
		return r, nil
	}
}

func printModes(cmd *cobra.Command, d *stabdiag.Diagram, modes []estimate.Modal) {
	out := cmd.OutOrStdout()

	stable := 0
	for _, rec := range d.Reduced {
		if rec.Label == stabdiag.Stable {
			stable++
		}
	}

	fmt.Fprintf(out, "Orders %d-%d: %d poles, %d in catalogue, %d stable\n",
		d.MinOrder, d.MaxOrder, len(d.All), len(d.Reduced), stable)

	if verbose {
		for _, rec := range d.Reduced {
			fmt.Fprintf(out, "  order %3d: %8.4f Hz, damping %.4f [%s]\n", rec.Order, rec.Frequency, rec.Damping, rec.Label)
		}
	}

	if len(modes) == 0 {
		return
	}

	fmt.Fprintf(out, "\nModes (%d):\n\n", len(modes))
	for _, m := range modes {
		fmt.Fprintf(out, "- %.4f Hz (target %.4f): damping %.4f, order %d, %d poles\n",
			m.Frequency, m.Target, m.Damping, m.Order, m.Poles)
	}
}

func writeResults(path string, d *stabdiag.Diagram, modes []estimate.Modal) error {
	res, err := dataio.NewResults(d, modes)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results: %w", err)
	}
	defer f.Close()

	if err := dataio.WriteResults(f, res); err != nil {
		return err
	}

	return f.Close()
}
