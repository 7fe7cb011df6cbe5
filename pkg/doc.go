// Package pkg provides the core libraries for hmaputil heightmap processing.
//
// # Overview
//
// hmaputil derives image products from a 16-bit grayscale heightmap. The pkg
// directory is organized into three areas:
//
//  1. [heightmap] - Numeric core (RG encoding, gradients, classification,
//     track masks, recoloring)
//  2. [imageio] - Decoding inputs and writing artifacts
//  3. [pipeline] - Orchestration (load → rg → gradient → mask → overlay → custom)
//
// # Architecture
//
// The typical data flow:
//
//	16-bit PNG/TIFF heightmap
//	         ↓
//	    [imageio] package (decode + validate)
//	         ↓
//	    [heightmap] package (per-pixel kernels)
//	         ↓
//	    [pipeline] package (plan, progress, error kinds)
//	         ↓
//	    PNG artifacts via an [imageio.Sink]
//
// # Quick Start
//
// Compute a slope mask directly:
//
//	import (
//	    "github.com/matzehuels/hmaputil/pkg/heightmap"
//	    "github.com/matzehuels/hmaputil/pkg/imageio"
//	)
//
//	field, _ := imageio.DecodeHeightmap(f)
//	mag := heightmap.NormalizeMagnitude(heightmap.ComputeGradients(field), 1.0)
//	mask := heightmap.Classify(mag, 0.3, 0.6)
//	png, _ := imageio.EncodePNG(mask.ToNRGBA())
//
// Or run the whole pipeline with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "heightmap.png",
//	    Request: pipeline.Request{RGBMask: true, Multiplier: 1, LowerBound: 0.3, UpperBound: 0.6},
//	})
//
// # Main Packages
//
// [heightmap] - Field, Gradients, Magnitude and Mask types plus the kernels
// operating on them. Row bands are processed in parallel.
//
// [imageio] - Heightmap and track mask decoding (PNG, TIFF, BMP, WebP), PNG
// encoding, and the DirSink/MemorySink artifact writers.
//
// [pipeline] - Request normalization and validation, the step plan, the Run
// orchestrator and the Runner that adds decoding and bundle caching.
//
// ## Infrastructure
//
// [cache] - Bundle cache backends: FileCache (CLI, zstd compressed),
// RedisCache (shared by API instances) and NullCache.
//
// [prefs] - Remembered CLI parameters stored as TOML.
//
// [stats] - Slope distribution summaries, bound suggestions and histograms.
//
// [observability] - Hooks for metrics and tracing of runs, cache and HTTP.
//
// [errors] - Coded errors shared by all entry points.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/heightmap/...          # Specific package
//	HMAPUTIL_TEST_REDIS_URL=redis://localhost:6379/15 go test ./pkg/cache
//
// [heightmap]: https://pkg.go.dev/github.com/matzehuels/hmaputil/pkg/heightmap
// [imageio]: https://pkg.go.dev/github.com/matzehuels/hmaputil/pkg/imageio
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/hmaputil/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/hmaputil/pkg/cache
// [prefs]: https://pkg.go.dev/github.com/matzehuels/hmaputil/pkg/prefs
// [stats]: https://pkg.go.dev/github.com/matzehuels/hmaputil/pkg/stats
// [observability]: https://pkg.go.dev/github.com/matzehuels/hmaputil/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/hmaputil/pkg/errors
package pkg
