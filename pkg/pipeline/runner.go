package pipeline

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/hmaputil/pkg/cache"
	errs "github.com/matzehuels/hmaputil/pkg/errors"
	"github.com/matzehuels/hmaputil/pkg/imageio"
	"github.com/matzehuels/hmaputil/pkg/observability"
)

// cacheKeyType labels bundle entries in cache hooks.
const cacheKeyType = "bundle"

// Runner encapsulates pipeline execution with decoding, caching and
// artifact output. Both CLI and API use it.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner; every run owns its buffers.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  cache.NewDefaultKeyer(),
		Logger: logger,
	}
}

// Options configures a file-based run.
type Options struct {
	// Input is the heightmap path.
	Input string

	// Request selects the products.
	Request Request

	// OutputDir receives the artifacts. Defaults to the input's directory.
	OutputDir string

	// Progress receives (completed, total) ticks.
	Progress ProgressFunc

	// Refresh bypasses cached bundles.
	Refresh bool
}

// job is one run's inputs, independent of where they came from.
type job struct {
	heightmap []byte
	track     []byte
	trackErr  error
	request   Request
	sink      imageio.Sink
	progress  ProgressFunc
	refresh   bool
}

// Execute reads the heightmap (and track mask) from disk, runs the pipeline
// and writes the artifacts beside the input or into opts.OutputDir.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	req := opts.Request
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	data, err := imageio.ReadInput(opts.Input)
	if err != nil {
		return nil, err
	}

	j := job{
		heightmap: data,
		request:   req,
		progress:  opts.Progress,
		refresh:   opts.Refresh,
	}
	if req.TrackMaskPath != "" {
		j.track, j.trackErr = os.ReadFile(req.TrackMaskPath)
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(opts.Input)
	}
	j.sink = imageio.NewDirSink(dir)

	return r.execute(ctx, j)
}

// ExecuteBytes runs the pipeline on in-memory inputs. trackMask may be nil;
// when it is set, req.TrackMaskPath only names it in logs and defaults to
// "trackmask".
func (r *Runner) ExecuteBytes(ctx context.Context, heightmap, trackMask []byte, req Request, sink imageio.Sink, progress ProgressFunc) (*Result, error) {
	if trackMask != nil && req.TrackMaskPath == "" {
		req.TrackMaskPath = "trackmask"
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(heightmap) == 0 {
		return nil, errs.New(errs.ErrCodeInputMissing, "No input file.")
	}
	return r.execute(ctx, job{
		heightmap: heightmap,
		track:     trackMask,
		request:   req,
		sink:      sink,
		progress:  progress,
	})
}

func (r *Runner) execute(ctx context.Context, j job) (*Result, error) {
	if j.progress == nil {
		j.progress = func(int, int) {}
	}

	trackHash := ""
	if j.track != nil {
		trackHash = cache.Hash(j.track)
	}
	keyReq := j.request
	keyReq.TrackMaskPath = ""
	key := r.Keyer.BundleKey(cache.Hash(j.heightmap), trackHash, keyReq)

	if !j.refresh {
		if res, ok := r.replay(ctx, key, j); ok {
			return res, nil
		}
	}

	field, err := imageio.DecodeHeightmapBytes(j.heightmap)
	if err != nil {
		return nil, err
	}

	rec := &recorder{}
	env := Env{
		Emit: func(ctx context.Context, p Product, img image.Image) (string, error) {
			data, err := imageio.EncodePNG(img)
			if err != nil {
				return "", errs.Wrap(errs.ErrCodeOutputWriteFailed, err, "Unable to encode %s", p.FileName())
			}
			name, err := j.sink.Write(ctx, p.FileName(), data)
			if err != nil {
				return "", err
			}
			rec.add(p, data)
			return name, nil
		},
		LoadTrackMask: func(ctx context.Context, path string) (image.Image, error) {
			if j.trackErr != nil {
				return nil, errs.Wrap(errs.ErrCodeTrackMaskUnreadable, j.trackErr, "Unable to read track mask %s", path)
			}
			return imageio.DecodeTrackMaskBytes(j.track)
		},
		Progress: j.progress,
		Logger:   r.Logger,
	}

	res, err := Run(ctx, field, j.request, env)
	if err != nil {
		return res, err
	}

	r.Logger.Info("rendered heightmap",
		"size", field.Bounds().Size(),
		"artifacts", len(res.Names()),
		"duration", res.Stats.Total)

	if len(res.Warnings) == 0 {
		r.store(ctx, key, bundle{Width: field.Width, Height: field.Height, Artifacts: rec.artifacts})
	}
	return res, nil
}

// replay writes a cached bundle through the sink. Any cache or decode
// problem is treated as a miss.
func (r *Runner) replay(ctx context.Context, key string, j job) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	b, err := unmarshalBundle(data)
	if err != nil {
		r.Logger.Debug("discarding corrupt cache entry", "error", err)
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)

	start := time.Now()
	res := &Result{
		ID:       uuid.New(),
		CacheHit: true,
		Stats:    Stats{Width: b.Width, Height: b.Height},
	}
	for _, a := range b.Artifacts {
		name, err := j.sink.Write(ctx, a.Product.FileName(), a.Data)
		if err != nil {
			r.Logger.Warn("cache replay failed, recomputing", "error", err)
			return nil, false
		}
		res.Artifacts[a.Product] = name
	}
	total := j.request.Plan().Total()
	for done := 1; done <= total; done++ {
		j.progress(done, total)
	}
	res.Stats.Total = time.Since(start)

	r.Logger.Info("replayed cached heightmap",
		"artifacts", len(res.Names()),
		"duration", res.Stats.Total)
	return res, true
}

func (r *Runner) store(ctx context.Context, key string, b bundle) {
	data, err := marshalBundle(b)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLBundle); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
