// Package pipeline provides the heightmap processing pipeline for hmaputil.
//
// This package orchestrates the numeric core in pkg/heightmap according to a
// [Request] describing which products are wanted. It is shared by the CLI and
// the HTTP API so both entry points resolve flags, validate, order steps and
// report progress identically.
//
// # Architecture
//
// A run consists of up to six steps, always in this order:
//
//  1. Load: the heightmap has been decoded into a [heightmap.Field]
//  2. RG: two-channel 8-bit encoding of the raw samples
//  3. Gradient: gradients, normalized magnitude, optional relief map
//  4. Mask: classification into red/green/blue slope bands
//  5. Overlay: track mask applied to the classified mask
//  6. Custom: recolored mask
//
// The mask artifact is written at the end of the last mask step, so it
// carries the overlay when one is applied.
//
// Each completed step reports one progress tick. The tick total is computed
// up front from the request, so progress is deterministic.
//
// # Usage
//
// Run the orchestrator on an already decoded field:
//
//	req := pipeline.DefaultRequest()
//	req.RGBMask = true
//	res, err := pipeline.Run(ctx, field, req, pipeline.Env{Emit: emit})
//
// Or let a [Runner] handle decoding, caching and artifact files:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), logger)
//	res, err := runner.Execute(ctx, pipeline.Options{Input: "map.png", Request: req})
package pipeline

import (
	"fmt"
	"math"

	errs "github.com/matzehuels/hmaputil/pkg/errors"
	"github.com/matzehuels/hmaputil/pkg/heightmap"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Preferences
// =============================================================================

const (
	// DefaultMultiplier is the relief brightness multiplier.
	DefaultMultiplier = 1.0

	// DefaultLowerBound separates flat (green) from medium (red) slopes.
	DefaultLowerBound = 0.3

	// DefaultUpperBound separates medium (red) from steep (blue) slopes.
	DefaultUpperBound = 0.6
)

// =============================================================================
// Products
// =============================================================================

// Product identifies one output artifact.
type Product int

const (
	ProductRG Product = iota
	ProductRelief
	ProductRGBMask
	ProductCustom

	numProducts
)

// Products lists every product in emission order.
var Products = [numProducts]Product{ProductRG, ProductRelief, ProductRGBMask, ProductCustom}

var productNames = [numProducts]string{"rg", "relief", "mask", "custom"}

var productFiles = [numProducts]string{
	"heightmap_rg.png",
	"heightmap_relief.png",
	"rgb_mask.png",
	"custom_color_map.png",
}

// String returns the short product name used by flags and the HTTP API.
func (p Product) String() string {
	if p < 0 || p >= numProducts {
		return fmt.Sprintf("product(%d)", int(p))
	}
	return productNames[p]
}

// FileName returns the artifact file name written beside the input.
func (p Product) FileName() string {
	if p < 0 || p >= numProducts {
		return ""
	}
	return productFiles[p]
}

// ParseProduct resolves a short product name.
func ParseProduct(s string) (Product, error) {
	for i, name := range productNames {
		if name == s {
			return Product(i), nil
		}
	}
	return 0, errs.New(errs.ErrCodeInvalidInput, "unknown product %q (must be one of: rg, relief, mask, custom)", s)
}

// =============================================================================
// Request - Pipeline Configuration
// =============================================================================

// Request describes which products a run computes and their parameters.
// This struct supports JSON serialization for cache keys and API requests.
type Request struct {
	RG bool `json:"rg"`

	Relief     bool    `json:"relief"`
	Multiplier float64 `json:"multiplier"`

	RGBMask       bool    `json:"rgb_mask"`
	LowerBound    float64 `json:"lower_bound"`
	UpperBound    float64 `json:"upper_bound"`
	TrackMaskPath string  `json:"track_mask,omitempty"`

	Custom bool                `json:"custom"`
	Colors heightmap.ColorQuad `json:"colors"`
}

// DefaultRequest returns a relief-only request carrying the default
// parameters for every product. Callers start from it; the pipeline never
// substitutes defaults for zero values.
func DefaultRequest() Request {
	return Request{
		Relief:     true,
		Multiplier: DefaultMultiplier,
		LowerBound: DefaultLowerBound,
		UpperBound: DefaultUpperBound,
		Colors:     heightmap.DefaultColorQuad,
	}
}

// Normalize resolves product dependencies: custom needs the mask, the mask
// needs the normalized magnitude. A track mask without a mask is dropped.
// Normalize is idempotent.
func (r Request) Normalize() Request {
	if r.Custom {
		r.RGBMask = true
	}
	if r.RGBMask {
		r.Relief = true
	} else {
		r.TrackMaskPath = ""
	}
	return r
}

// Validate checks the parameters of every requested product. It runs before
// any step, so an invalid request produces no artifacts.
func (r Request) Validate() error {
	if !r.RG && !r.Relief && !r.RGBMask && !r.Custom {
		return errs.New(errs.ErrCodeInvalidInput, "No output selected.")
	}
	if r.Relief || r.RGBMask {
		if err := ValidateMultiplier(r.Multiplier); err != nil {
			return err
		}
	}
	if r.RGBMask {
		if err := validateBounds(r.LowerBound, r.UpperBound); err != nil {
			return err
		}
	}
	if r.Custom {
		if err := r.Colors.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMultiplier checks that m is a finite value greater than 0.
func ValidateMultiplier(m float64) error {
	if !(m > 0) || math.IsInf(m, 0) {
		return errs.New(errs.ErrCodeMultiplierInvalid, "Relief multiplier must be a finite value greater than 0 (got %g).", m)
	}
	return nil
}

func validateBounds(lower, upper float64) error {
	if !(lower >= 0 && lower <= 1) || !(upper >= 0 && upper <= 1) {
		return errs.New(errs.ErrCodeBoundsInvalid, "Bounds must lie within [0, 1] (got %g, %g).", lower, upper)
	}
	if upper < lower {
		return errs.New(errs.ErrCodeBoundsInvalid, "Upper bound must be greater or equal than lower bound.")
	}
	return nil
}

// Wants reports whether the request produces p. It assumes a normalized
// request.
func (r Request) Wants(p Product) bool {
	switch p {
	case ProductRG:
		return r.RG
	case ProductRelief:
		return r.Relief
	case ProductRGBMask:
		return r.RGBMask
	case ProductCustom:
		return r.Custom
	}
	return false
}

// =============================================================================
// Plan - Resolved Steps
// =============================================================================

// Step is one unit of progress.
type Step int

const (
	StepLoad Step = iota
	StepRG
	StepGradient
	StepMask
	StepOverlay
	StepCustom
)

var stepNames = [...]string{"load", "rg", "gradient", "mask", "overlay", "custom"}

// String returns the step name used in logs and observability hooks.
func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// Plan is the ordered list of steps a request executes.
type Plan []Step

// Plan resolves the steps of a normalized request.
func (r Request) Plan() Plan {
	p := Plan{StepLoad}
	if r.RG {
		p = append(p, StepRG)
	}
	if r.Relief || r.RGBMask {
		p = append(p, StepGradient)
	}
	if r.RGBMask {
		p = append(p, StepMask)
		if r.TrackMaskPath != "" {
			p = append(p, StepOverlay)
		}
	}
	if r.Custom {
		p = append(p, StepCustom)
	}
	return p
}

// Total returns the number of progress ticks of the plan.
func (p Plan) Total() int { return len(p) }

// Has reports whether the plan contains s.
func (p Plan) Has(s Step) bool {
	for _, step := range p {
		if step == s {
			return true
		}
	}
	return false
}
