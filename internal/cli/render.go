package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	errs "github.com/matzehuels/hmaputil/pkg/errors"
	"github.com/matzehuels/hmaputil/pkg/heightmap"
	"github.com/matzehuels/hmaputil/pkg/pipeline"
	"github.com/matzehuels/hmaputil/pkg/prefs"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	rg         bool    // emit heightmap_rg.png
	relief     bool    // emit heightmap_relief.png
	mask       bool    // emit rgb_mask.png
	custom     bool    // emit custom_color_map.png
	multiplier float64 // slope multiplier for relief and mask
	lower      float64 // lower classification bound
	upper      float64 // upper classification bound
	trackMask  string  // optional track mask path
	red        string  // recolor targets as hex
	green      string
	blue       string
	black      string
	outDir     string // output directory (default: beside the input)
	noCache    bool   // disable the bundle cache
	refresh    bool   // recompute even on a cache hit
	noSave     bool   // do not remember the parameters
	plain      bool   // log progress instead of drawing it
}

// renderCommand creates the render command.
//
// Parameters that are not given on the command line are taken from the
// preferences file, which is rewritten after every successful run.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [heightmap]",
		Short: "Render image products from a 16-bit heightmap",
		Long: `Render reads a 16-bit grayscale PNG or TIFF heightmap and writes the
selected products next to it (or into --out):

  --rg      heightmap_rg.png      elevation packed into red/green
  --relief  heightmap_relief.png  normalized gradient magnitude
  --mask    rgb_mask.png          slope classes (red/green/blue)
  --custom  custom_color_map.png  the mask recolored with --red/--green/--blue/--black

--custom implies --mask, and --mask implies --relief. Without a heightmap
argument the last rendered heightmap is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd.Flags(), args, &opts)
		},
	}

	defaults := pipeline.DefaultRequest()
	hex := defaults.Colors.Hex()

	f := cmd.Flags()
	f.BoolVar(&opts.rg, "rg", false, "write the RG-encoded heightmap")
	f.BoolVar(&opts.relief, "relief", false, "write the normalized relief")
	f.BoolVar(&opts.mask, "mask", false, "write the RGB slope mask")
	f.BoolVar(&opts.custom, "custom", false, "write the recolored mask")
	f.Float64VarP(&opts.multiplier, "multiplier", "m", defaults.Multiplier, "slope multiplier (> 0)")
	f.Float64Var(&opts.lower, "lower", defaults.LowerBound, "lower mask bound in [0, 1]")
	f.Float64Var(&opts.upper, "upper", defaults.UpperBound, "upper mask bound in [0, 1]")
	f.StringVar(&opts.trackMask, "track-mask", "", "track mask image overlaid on the RGB mask")
	f.StringVar(&opts.red, "red", hex[0], "custom color for red mask pixels")
	f.StringVar(&opts.green, "green", hex[1], "custom color for green mask pixels")
	f.StringVar(&opts.blue, "blue", hex[2], "custom color for blue mask pixels")
	f.StringVar(&opts.black, "black", hex[3], "custom color for black mask pixels")
	f.StringVarP(&opts.outDir, "out", "o", "", "output directory (default: beside the heightmap)")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the bundle cache")
	f.BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached bundle exists")
	f.BoolVar(&opts.noSave, "no-save", false, "do not remember these parameters")
	f.BoolVar(&opts.plain, "plain", false, "log progress instead of drawing a progress bar")

	return cmd
}

// applyPrefs fills every parameter flag the user did not set from p.
// Product toggles are never remembered.
func applyPrefs(flags *pflag.FlagSet, opts *renderOpts, p prefs.Prefs) {
	set := func(name string, apply func()) {
		if !flags.Changed(name) {
			apply()
		}
	}
	set("multiplier", func() { opts.multiplier = p.Multiplier })
	set("lower", func() { opts.lower = p.LowerBound })
	set("upper", func() { opts.upper = p.UpperBound })
	set("track-mask", func() { opts.trackMask = p.TrackMask })
	set("red", func() { opts.red = p.Colors.Red })
	set("green", func() { opts.green = p.Colors.Green })
	set("blue", func() { opts.blue = p.Colors.Blue })
	set("black", func() { opts.black = p.Colors.Black })
}

// request converts the flags into a pipeline request. Without any product
// flag the relief is rendered.
func (o *renderOpts) request() (pipeline.Request, error) {
	colors, err := heightmap.ParseColorQuad(o.red, o.green, o.blue, o.black)
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		RG:            o.rg,
		Relief:        o.relief || !(o.rg || o.mask || o.custom),
		Multiplier:    o.multiplier,
		RGBMask:       o.mask,
		LowerBound:    o.lower,
		UpperBound:    o.upper,
		TrackMaskPath: o.trackMask,
		Custom:        o.custom,
		Colors:        colors,
	}, nil
}

// resolveInput picks the heightmap argument or the remembered source.
func resolveInput(args []string, p prefs.Prefs) (string, error) {
	input := p.Source
	if len(args) > 0 {
		input = args[0]
	}
	if input == "" {
		return "", errs.New(errs.ErrCodeInputMissing, "No input file.")
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return input, nil
	}
	return abs, nil
}

func (c *CLI) runRender(ctx context.Context, flags *pflag.FlagSet, args []string, opts *renderOpts) error {
	store, err := c.prefsStore()
	if err != nil {
		return err
	}
	p, err := store.Load()
	if err != nil {
		c.Logger.Warn("ignoring unreadable preferences", "path", store.Path(), "error", err)
		p = prefs.Default()
	}
	applyPrefs(flags, opts, p)
	if opts.trackMask != "" {
		if abs, err := filepath.Abs(opts.trackMask); err == nil {
			opts.trackMask = abs
		}
	}

	input, err := resolveInput(args, p)
	if err != nil {
		return err
	}
	req, err := opts.request()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	c.Logger.Infof("Rendering %s", input)
	prog := newProgress(c.Logger)

	run := func(ctx context.Context, progress pipeline.ProgressFunc) (*pipeline.Result, error) {
		return runner.Execute(ctx, pipeline.Options{
			Input:     input,
			Request:   req,
			OutputDir: opts.outDir,
			Progress:  progress,
			Refresh:   opts.refresh,
		})
	}

	var res *pipeline.Result
	if c.interactive && !opts.plain {
		res, err = c.runWithProgress(ctx, c.Err, "Rendering "+filepath.Base(input), run)
	} else {
		res, err = run(ctx, func(done, total int) {
			c.Logger.Debugf("Progress %d/%d", done, total)
		})
	}
	if res != nil {
		c.printResult(input, res, prog, err != nil)
	}
	if err != nil {
		return err
	}

	if !opts.noSave {
		if err := store.Save(prefs.FromRequest(input, req)); err != nil {
			c.Logger.Warn("could not save preferences", "error", err)
		} else {
			c.Logger.Debugf("Saved preferences to %s", store.Path())
		}
	}
	return nil
}

// printResult summarizes the run on c.Out. Partial results of a failed
// run list the artifacts that were written before the failure.
func (c *CLI) printResult(input string, res *pipeline.Result, prog *progress, failed bool) {
	names := res.Names()
	if len(names) == 0 && len(res.Warnings) == 0 {
		return
	}
	if failed {
		printWarning(c.Out, "Partially rendered %s", filepath.Base(input))
	} else {
		printSuccess(c.Out, "Rendered %s", filepath.Base(input))
	}
	printRunStats(c.Out, res.Stats.Width, res.Stats.Height, prog.elapsed(), res.CacheHit)
	for _, name := range names {
		printFile(c.Out, name)
	}
	for _, w := range res.Warnings {
		printWarning(c.Out, "%s", w)
	}
}

// describeRequest formats the parameters the way they are passed on the
// command line.
func describeRequest(req pipeline.Request) string {
	hex := req.Colors.Hex()
	return fmt.Sprintf("--multiplier %g --lower %g --upper %g --red %s --green %s --blue %s --black %s",
		req.Multiplier, req.LowerBound, req.UpperBound, hex[0], hex[1], hex[2], hex[3])
}
