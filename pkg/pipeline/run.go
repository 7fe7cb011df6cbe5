package pipeline

import (
	"context"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	errs "github.com/matzehuels/hmaputil/pkg/errors"
	"github.com/matzehuels/hmaputil/pkg/heightmap"
	"github.com/matzehuels/hmaputil/pkg/observability"
)

// EmitFunc writes one product and returns the artifact's name or location.
type EmitFunc func(ctx context.Context, p Product, img image.Image) (string, error)

// TrackMaskLoader decodes the track mask named by Request.TrackMaskPath.
type TrackMaskLoader func(ctx context.Context, path string) (image.Image, error)

// ProgressFunc receives (completed, total) after every step.
type ProgressFunc func(done, total int)

// Env holds the collaborators of a run. Only Emit is required.
type Env struct {
	Emit          EmitFunc
	LoadTrackMask TrackMaskLoader
	Progress      ProgressFunc
	Logger        *log.Logger

	// RunID identifies the run in logs and hooks. A random ID is used when
	// zero.
	RunID uuid.UUID
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ID identifies the run.
	ID uuid.UUID

	// Artifacts holds the emitted artifact names indexed by Product; skipped
	// products are empty.
	Artifacts [numProducts]string

	// Warnings collects non-fatal problems (an unreadable track mask).
	Warnings []string

	// Stats contains timing information.
	Stats Stats

	// CacheHit reports whether the artifacts were replayed from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Width  int
	Height int
	Steps  map[string]time.Duration
	Total  time.Duration
}

// Names returns the non-empty artifact names in product order.
func (r *Result) Names() []string {
	var names []string
	for _, a := range r.Artifacts {
		if a != "" {
			names = append(names, a)
		}
	}
	return names
}

// Artifact returns the artifact name of p, or "" when it was not produced.
func (r *Result) Artifact(p Product) string {
	if p < 0 || p >= numProducts {
		return ""
	}
	return r.Artifacts[p]
}

// run carries the state of one orchestrator invocation.
type run struct {
	env    Env
	id     string
	total  int
	done   int
	logger *log.Logger
	result *Result
}

// Run executes the request on field. The request is normalized and validated before any step runs. Cancellation is observed between
// steps only.
//
// On a fatal error after the first step the partial Result is returned
// together with the error; artifacts already emitted stay where they are.
func Run(ctx context.Context, field *heightmap.Field, req Request, env Env) (*Result, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if field == nil || field.Width <= 0 || field.Height <= 0 {
		return nil, errs.New(errs.ErrCodeInputMissing, "No heightmap loaded.")
	}
	if env.Emit == nil {
		return nil, errs.New(errs.ErrCodeInternal, "pipeline: no emitter configured")
	}
	if req.TrackMaskPath != "" && env.LoadTrackMask == nil {
		return nil, errs.New(errs.ErrCodeInternal, "pipeline: no track mask loader configured")
	}
	if env.Logger == nil {
		env.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if env.Progress == nil {
		env.Progress = func(int, int) {}
	}
	if env.RunID == uuid.Nil {
		env.RunID = uuid.New()
	}

	plan := req.Plan()
	r := &run{
		env:    env,
		id:     env.RunID.String(),
		total:  plan.Total(),
		logger: env.Logger.With("run", env.RunID.String()[:8]),
		result: &Result{
			ID: env.RunID,
			Stats: Stats{
				Width:  field.Width,
				Height: field.Height,
				Steps:  make(map[string]time.Duration, len(plan)),
			},
		},
	}

	start := time.Now()
	observability.Pipeline().OnRunStart(ctx, r.id, field.Width, field.Height)
	err := r.execute(ctx, field, req, plan)
	r.result.Stats.Total = time.Since(start)
	observability.Pipeline().OnRunComplete(ctx, r.id, len(r.result.Names()), r.result.Stats.Total, err)
	return r.result, err
}

func (r *run) execute(ctx context.Context, field *heightmap.Field, req Request, plan Plan) error {
	var (
		magnitude *heightmap.Magnitude
		mask      *heightmap.Mask
	)
	lastMaskStep := StepMask
	if plan.Has(StepOverlay) {
		lastMaskStep = StepOverlay
	}
	emitMask := func(ctx context.Context) error {
		return r.emit(ctx, ProductRGBMask, mask.ToNRGBA())
	}

	for _, step := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		var fn func(context.Context) error
		switch step {
		case StepLoad:
			fn = func(context.Context) error {
				r.logger.Debug("heightmap loaded", "width", field.Width, "height", field.Height)
				return nil
			}
		case StepRG:
			fn = func(ctx context.Context) error {
				return r.emit(ctx, ProductRG, heightmap.EncodeRG(field))
			}
		case StepGradient:
			fn = func(ctx context.Context) error {
				magnitude = heightmap.NormalizeMagnitude(heightmap.ComputeGradients(field), req.Multiplier)
				if !req.Relief {
					return nil
				}
				return r.emit(ctx, ProductRelief, magnitude.ToGray16())
			}
		case StepMask:
			fn = func(ctx context.Context) error {
				mask = heightmap.Classify(magnitude, req.LowerBound, req.UpperBound)
				magnitude = nil
				if lastMaskStep == StepMask {
					return emitMask(ctx)
				}
				return nil
			}
		case StepOverlay:
			fn = func(ctx context.Context) error {
				if err := r.overlay(ctx, mask, req.TrackMaskPath); err != nil {
					return err
				}
				return emitMask(ctx)
			}
		case StepCustom:
			fn = func(ctx context.Context) error {
				custom := mask.Clone()
				heightmap.Recolor(custom, req.Colors)
				return r.emit(ctx, ProductCustom, custom.ToRGB())
			}
		}
		if err := r.step(ctx, step, fn); err != nil {
			return err
		}
	}
	return nil
}

// overlay applies the track mask. An unreadable mask is logged and recorded
// as a warning; a size mismatch aborts the run.
func (r *run) overlay(ctx context.Context, mask *heightmap.Mask, path string) error {
	track, err := r.env.LoadTrackMask(ctx, path)
	if err != nil {
		if errs.IsFatal(err) {
			return err
		}
		r.logger.Warn("track mask skipped", "path", path, "error", errs.UserMessage(err))
		r.result.Warnings = append(r.result.Warnings, errs.UserMessage(err))
		return nil
	}
	return heightmap.ApplyTrackMask(mask, track)
}

func (r *run) step(ctx context.Context, step Step, fn func(context.Context) error) error {
	name := step.String()
	start := time.Now()
	observability.Pipeline().OnStepStart(ctx, r.id, name)

	err := fn(ctx)

	elapsed := time.Since(start)
	observability.Pipeline().OnStepComplete(ctx, r.id, name, elapsed, err)
	if err != nil {
		r.logger.Debug("step failed", "step", name, "error", err)
		return err
	}
	r.result.Stats.Steps[name] = elapsed
	r.done++
	r.logger.Debug("step done", "step", name, "progress", r.done, "total", r.total, "duration", elapsed)
	r.env.Progress(r.done, r.total)
	return nil
}

func (r *run) emit(ctx context.Context, p Product, img image.Image) error {
	name, err := r.env.Emit(ctx, p, img)
	if err != nil {
		if errs.GetCode(err) != "" || ctx.Err() != nil {
			return err
		}
		return errs.Wrap(errs.ErrCodeOutputWriteFailed, err, "Unable to write %s", p.FileName())
	}
	r.result.Artifacts[p] = name
	return nil
}
