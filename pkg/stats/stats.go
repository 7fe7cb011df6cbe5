// Package stats summarizes normalized slope magnitudes.
//
// Values are reported in the same [0, 1] domain as the classification
// bounds, so a quantile can be passed straight to --lower or --upper.
package stats

import (
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	errs "github.com/matzehuels/hmaputil/pkg/errors"
	"github.com/matzehuels/hmaputil/pkg/heightmap"
)

// ReportedQuantiles are the quantiles included in every Summary.
var ReportedQuantiles = []float64{0.1, 0.25, 0.5, 0.75, 0.9}

// Quantile is one point of the empirical distribution.
type Quantile struct {
	P     float64 `json:"p"`
	Value float64 `json:"value"`
}

// Summary describes a magnitude map.
type Summary struct {
	Count     int        `json:"count"`
	Mean      float64    `json:"mean"`
	StdDev    float64    `json:"stddev"`
	Min       float64    `json:"min"`
	Max       float64    `json:"max"`
	Quantiles []Quantile `json:"quantiles"`
}

// values returns the magnitudes scaled to [0, 1], sorted ascending.
func values(m *heightmap.Magnitude) ([]float64, error) {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "empty magnitude map")
	}
	out := make([]float64, 0, m.Width*m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			out = append(out, float64(m.At(x, y))/heightmap.MaxValue)
		}
	}
	sort.Float64s(out)
	return out, nil
}

// Compute returns the summary statistics of m.
func Compute(m *heightmap.Magnitude) (Summary, error) {
	x, err := values(m)
	if err != nil {
		return Summary{}, err
	}
	mean, std := stat.MeanStdDev(x, nil)
	if len(x) == 1 {
		std = 0
	}
	s := Summary{
		Count:  len(x),
		Mean:   mean,
		StdDev: std,
		Min:    x[0],
		Max:    x[len(x)-1],
	}
	for _, p := range ReportedQuantiles {
		s.Quantiles = append(s.Quantiles, Quantile{P: p, Value: stat.Quantile(p, stat.Empirical, x, nil)})
	}
	return s, nil
}

// SuggestBounds returns classification bounds such that roughly lowFrac of
// the pixels fall below the lower bound (green) and highFrac below the upper
// bound (green or red).
func SuggestBounds(m *heightmap.Magnitude, lowFrac, highFrac float64) (lower, upper float64, err error) {
	if !(lowFrac >= 0 && highFrac <= 1 && lowFrac <= highFrac) {
		return 0, 0, errs.New(errs.ErrCodeBoundsInvalid, "fractions must satisfy 0 <= low <= high <= 1 (got %g, %g)", lowFrac, highFrac)
	}
	x, err := values(m)
	if err != nil {
		return 0, 0, err
	}
	return quantile(lowFrac, x), quantile(highFrac, x), nil
}

// quantile treats p == 0 as the minimum; stat.Quantile requires p > 0 for
// the empirical estimator to be meaningful.
func quantile(p float64, sorted []float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// HistogramPlot builds a slope histogram with the given number of bins.
func HistogramPlot(m *heightmap.Magnitude, bins int) (*plot.Plot, error) {
	x, err := values(m)
	if err != nil {
		return nil, err
	}
	if bins <= 0 {
		bins = 64
	}

	p := plot.New()
	p.Title.Text = "Slope distribution"
	p.X.Label.Text = "normalized slope"
	p.Y.Label.Text = "pixels"
	p.X.Min, p.X.Max = 0, 1

	h, err := plotter.NewHist(plotter.Values(x), bins)
	if err != nil {
		return nil, err
	}
	p.Add(h)
	return p, nil
}

// WriteHistogram renders the slope histogram as PNG into w.
func WriteHistogram(w io.Writer, m *heightmap.Magnitude, bins int) error {
	p, err := HistogramPlot(m, bins)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// SaveHistogram renders the slope histogram into path; the format follows
// the file extension (png, svg, pdf).
func SaveHistogram(path string, m *heightmap.Magnitude, bins int) error {
	p, err := HistogramPlot(m, bins)
	if err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
