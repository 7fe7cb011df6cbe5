package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/hmaputil/pkg/cache"
	errs "github.com/matzehuels/hmaputil/pkg/errors"
	"github.com/matzehuels/hmaputil/pkg/imageio"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func slopePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(x*x*200 + y*150)})
		}
	}
	data, err := imageio.EncodePNG(img)
	require.NoError(t, err)
	return data
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func fullRequest() Request {
	req := DefaultRequest()
	req.RG = true
	req.Custom = true
	return req
}

func TestRunnerExecuteWritesBesideInput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "map.png", slopePNG(t, 16, 12))

	var ticks [][2]int
	runner := NewRunner(nil, quietLogger())
	res, err := runner.Execute(context.Background(), Options{
		Input:    input,
		Request:  fullRequest(),
		Progress: func(done, total int) { ticks = append(ticks, [2]int{done, total}) },
	})
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assertProgress(t, ticks, 5)

	want := []string{
		filepath.Join(dir, "heightmap_rg.png"),
		filepath.Join(dir, "heightmap_relief.png"),
		filepath.Join(dir, "rgb_mask.png"),
		filepath.Join(dir, "custom_color_map.png"),
	}
	if diff := cmp.Diff(want, res.Names()); diff != "" {
		t.Errorf("artifacts mismatch (-want +got):\n%s", diff)
	}

	f, err := os.Open(want[1])
	require.NoError(t, err)
	defer f.Close()
	relief, err := png.Decode(f)
	require.NoError(t, err)
	assert.IsType(t, &image.Gray16{}, relief)
	assert.Equal(t, image.Rect(0, 0, 16, 12), relief.Bounds())
}

func TestRunnerExecuteOutputDir(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	input := writeFile(t, dir, "map.png", slopePNG(t, 4, 4))

	res, err := NewRunner(nil, quietLogger()).Execute(context.Background(), Options{
		Input:     input,
		Request:   Request{RG: true},
		OutputDir: out,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(out, "heightmap_rg.png")}, res.Names())
}

func TestRunnerExecuteInputErrors(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(nil, quietLogger())

	_, err := runner.Execute(context.Background(), Options{Input: filepath.Join(dir, "nope.png"), Request: Request{RG: true}})
	assert.True(t, errs.Is(err, errs.ErrCodeInputMissing), "got %v", err)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	rgba := writeFile(t, dir, "rgba.png", buf.Bytes())
	_, err = runner.Execute(context.Background(), Options{Input: rgba, Request: Request{RG: true}})
	assert.True(t, errs.Is(err, errs.ErrCodeInputWrongFormat), "got %v", err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no artifacts written")
}

func TestRunnerExecuteInvalidRequestReadsNothing(t *testing.T) {
	req := DefaultRequest()
	req.RGBMask = true
	req.LowerBound, req.UpperBound = 0.5, 0.2

	_, err := NewRunner(nil, quietLogger()).Execute(context.Background(), Options{Input: "/does/not/exist.png", Request: req})
	assert.True(t, errs.Is(err, errs.ErrCodeBoundsInvalid))
}

func TestRunnerCachesBundles(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "map.png", slopePNG(t, 8, 8))

	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	runner := NewRunner(fc, quietLogger())
	defer runner.Close()

	out1 := filepath.Join(dir, "first")
	first, err := runner.Execute(context.Background(), Options{Input: input, Request: fullRequest(), OutputDir: out1})
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	out2 := filepath.Join(dir, "second")
	var ticks [][2]int
	second, err := runner.Execute(context.Background(), Options{
		Input:     input,
		Request:   fullRequest(),
		OutputDir: out2,
		Progress:  func(done, total int) { ticks = append(ticks, [2]int{done, total}) },
	})
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assertProgress(t, ticks, 5)

	for _, p := range Products {
		a, err := os.ReadFile(filepath.Join(out1, p.FileName()))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(out2, p.FileName()))
		require.NoError(t, err)
		assert.Equal(t, a, b, p.String())
	}

	refreshed, err := runner.Execute(context.Background(), Options{Input: input, Request: fullRequest(), OutputDir: out2, Refresh: true})
	require.NoError(t, err)
	assert.False(t, refreshed.CacheHit)

	// Different parameters miss.
	other := fullRequest()
	other.Multiplier = 2
	third, err := runner.Execute(context.Background(), Options{Input: input, Request: other, OutputDir: out2})
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
}

func TestRunnerDoesNotCacheDegradedRuns(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "map.png", slopePNG(t, 4, 4))
	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	runner := NewRunner(fc, quietLogger())
	defer runner.Close()

	req := DefaultRequest()
	req.RGBMask = true
	req.TrackMaskPath = filepath.Join(dir, "missing-track.png")

	for i := 0; i < 2; i++ {
		res, err := runner.Execute(context.Background(), Options{Input: input, Request: req})
		require.NoError(t, err)
		assert.False(t, res.CacheHit, "run %d", i)
		assert.Len(t, res.Warnings, 1)
		assert.NotEmpty(t, res.Artifact(ProductRGBMask))
	}
}

func TestRunnerExecuteBytes(t *testing.T) {
	track := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	track.SetNRGBA(2, 2, color.NRGBA{R: 255, A: 255})
	trackData, err := imageio.EncodePNG(track)
	require.NoError(t, err)

	req := DefaultRequest()
	req.RGBMask = true

	sink := imageio.NewMemorySink()
	res, err := NewRunner(nil, quietLogger()).ExecuteBytes(context.Background(), slopePNG(t, 6, 6), trackData, req, sink, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, []string{"heightmap_relief.png", "rgb_mask.png"}, sink.Names())

	data, ok := sink.Get("rgb_mask.png")
	require.True(t, ok)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "classified pixels carry no alpha")
}

func TestRunnerExecuteBytesErrors(t *testing.T) {
	runner := NewRunner(nil, quietLogger())
	sink := imageio.NewMemorySink()

	_, err := runner.ExecuteBytes(context.Background(), nil, nil, Request{RG: true}, sink, nil)
	assert.True(t, errs.Is(err, errs.ErrCodeInputMissing))

	track, err := imageio.EncodePNG(image.NewNRGBA(image.Rect(0, 0, 3, 3)))
	require.NoError(t, err)
	req := DefaultRequest()
	req.RGBMask = true
	_, err = runner.ExecuteBytes(context.Background(), slopePNG(t, 4, 4), track, req, sink, nil)
	assert.True(t, errs.Is(err, errs.ErrCodeTrackMaskSizeMismatch))
	assert.Equal(t, []string{"heightmap_relief.png"}, sink.Names())
}

func TestRunnerCorruptCacheEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	require.NoError(t, err)
	runner := NewRunner(fc, quietLogger())
	defer runner.Close()

	data := slopePNG(t, 4, 4)
	req := Request{RG: true}
	key := runner.Keyer.BundleKey(cache.Hash(data), "", req.Normalize())
	require.NoError(t, fc.Set(ctx, key, []byte("{not json"), 0))

	res, err := runner.ExecuteBytes(ctx, data, nil, Request{RG: true}, imageio.NewMemorySink(), nil)
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
}
