package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/hmaputil/pkg/errors"
	"github.com/matzehuels/hmaputil/pkg/heightmap"
	"github.com/matzehuels/hmaputil/pkg/imageio"
	"github.com/matzehuels/hmaputil/pkg/pipeline"
	"github.com/matzehuels/hmaputil/pkg/stats"
)

type statsOpts struct {
	multiplier float64
	histogram  string  // optional PNG path for the slope histogram
	bins       int     // histogram bins
	lowFrac    float64 // fraction of pixels below the suggested lower bound
	highFrac   float64 // fraction of pixels below the suggested upper bound
}

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	opts := statsOpts{
		multiplier: pipeline.DefaultMultiplier,
		lowFrac:    pipeline.DefaultLowerBound,
		highFrac:   pipeline.DefaultUpperBound,
	}

	cmd := &cobra.Command{
		Use:   "stats <heightmap>",
		Short: "Summarize the normalized slope of a heightmap",
		Long: `Stats computes the normalized gradient magnitude of a heightmap (the
relief product) and prints its distribution together with mask bounds
that put the requested fractions of pixels below --lower and --upper.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().Float64VarP(&opts.multiplier, "multiplier", "m", opts.multiplier, "slope multiplier (> 0)")
	cmd.Flags().StringVar(&opts.histogram, "histogram", "", "write a histogram PNG to this path")
	cmd.Flags().IntVar(&opts.bins, "bins", 64, "histogram bins")
	cmd.Flags().Float64Var(&opts.lowFrac, "low-fraction", opts.lowFrac, "pixel fraction below the suggested lower bound")
	cmd.Flags().Float64Var(&opts.highFrac, "high-fraction", opts.highFrac, "pixel fraction below the suggested upper bound")

	return cmd
}

// computeMagnitude loads input and returns its normalized gradient magnitude.
func computeMagnitude(input string, multiplier float64) (*heightmap.Magnitude, error) {
	if err := pipeline.ValidateMultiplier(multiplier); err != nil {
		return nil, err
	}
	data, err := imageio.ReadInput(input)
	if err != nil {
		return nil, err
	}
	field, err := imageio.DecodeHeightmapBytes(data)
	if err != nil {
		return nil, err
	}
	return heightmap.NormalizeMagnitude(heightmap.ComputeGradients(field), multiplier), nil
}

func (c *CLI) runStats(ctx context.Context, input string, opts *statsOpts) error {
	prog := newProgress(c.Logger)
	stop := c.startSpinner(ctx, "Computing slope")
	mag, err := computeMagnitude(input, opts.multiplier)
	stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Computed slope of %s", filepath.Base(input)))

	summary, err := stats.Compute(mag)
	if err != nil {
		return err
	}
	lower, upper, err := stats.SuggestBounds(mag, opts.lowFrac, opts.highFrac)
	if err != nil {
		return err
	}

	printKeyValue(c.Out, "size", fmt.Sprintf("%d×%d", mag.Width, mag.Height))
	printKeyValue(c.Out, "multiplier", fmt.Sprintf("%g", opts.multiplier))
	printKeyValue(c.Out, "mean", fmt.Sprintf("%.4f", summary.Mean))
	printKeyValue(c.Out, "stddev", fmt.Sprintf("%.4f", summary.StdDev))
	printKeyValue(c.Out, "range", fmt.Sprintf("%.4f – %.4f", summary.Min, summary.Max))

	rows := make([][]string, 0, len(summary.Quantiles))
	for _, q := range summary.Quantiles {
		rows = append(rows, []string{fmt.Sprintf("p%.0f", q.P*100), fmt.Sprintf("%.4f", q.Value)})
	}
	printTable(c.Out, []string{"Quantile", "Slope"}, rows)

	if opts.histogram != "" {
		if err := stats.SaveHistogram(opts.histogram, mag, opts.bins); err != nil {
			return errs.Wrap(errs.ErrCodeOutputWriteFailed, err, "Unable to write %s", opts.histogram)
		}
		printFile(c.Out, opts.histogram)
	}

	printNextStep(c.Out, "Render a mask with these bounds",
		fmt.Sprintf("%s render %s --mask --multiplier %g --lower %.3f --upper %.3f",
			appName, input, opts.multiplier, lower, upper))
	return nil
}
