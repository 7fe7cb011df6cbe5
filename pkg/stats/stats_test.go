package stats

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/hmaputil/pkg/errors"
	"github.com/matzehuels/hmaputil/pkg/heightmap"
)

func magnitude(w, h int, vals ...uint16) *heightmap.Magnitude {
	return &heightmap.Magnitude{Width: w, Height: h, Stride: w, Values: vals}
}

// ramp holds 0, 1/9 ... 1 scaled to 16 bits.
func ramp() *heightmap.Magnitude {
	vals := make([]uint16, 10)
	for i := range vals {
		vals[i] = uint16(i * heightmap.MaxValue / 9)
	}
	return magnitude(10, 1, vals...)
}

func TestCompute(t *testing.T) {
	s, err := Compute(magnitude(2, 2, 0, 0, heightmap.MaxValue, heightmap.MaxValue))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 0.5, s.Mean, 1e-12)
	assert.Equal(t, 0.0, s.Min)
	assert.Equal(t, 1.0, s.Max)
	assert.Greater(t, s.StdDev, 0.5)
	require.Len(t, s.Quantiles, len(ReportedQuantiles))
	assert.Equal(t, 0.5, s.Quantiles[2].P)
}

func TestComputeFlat(t *testing.T) {
	s, err := Compute(magnitude(3, 1, 0, 0, 0))
	require.NoError(t, err)
	assert.Zero(t, s.Mean)
	assert.Zero(t, s.StdDev)
	for _, q := range s.Quantiles {
		assert.Zero(t, q.Value)
	}
}

func TestComputeSinglePixel(t *testing.T) {
	s, err := Compute(magnitude(1, 1, 100))
	require.NoError(t, err)
	assert.Zero(t, s.StdDev)
}

func TestComputeEmpty(t *testing.T) {
	_, err := Compute(nil)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput))
}

func TestSuggestBounds(t *testing.T) {
	lower, upper, err := SuggestBounds(ramp(), 0.3, 0.6)
	require.NoError(t, err)
	assert.LessOrEqual(t, lower, upper)
	assert.InDelta(t, 2.0/9, lower, 1e-4)
	assert.InDelta(t, 5.0/9, upper, 1e-4)

	lower, upper, err = SuggestBounds(ramp(), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, lower)
	assert.Equal(t, 1.0, upper)

	_, _, err = SuggestBounds(ramp(), 0.7, 0.2)
	assert.True(t, errs.Is(err, errs.ErrCodeBoundsInvalid))
}

func TestWriteHistogram(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistogram(&buf, ramp(), 8))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), img.Bounds().Dy())
}

func TestSaveHistogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist.png")
	require.NoError(t, SaveHistogram(path, ramp(), 0))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
