package heightmap

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// MaxValue is the largest unsigned 16-bit sample.
const MaxValue = 0xffff

// magnitudeFloor is the fixed lower end of the normalization scale.
// Gradient norms are never negative, so the minimum is not tracked.
const magnitudeFloor = 0.0

// Gradients holds the partial derivatives of a Field. Both matrices have
// Height rows and Width columns. GX is the (negated) derivative along rows,
// GY the derivative along columns.
type Gradients struct {
	GX *mat.Dense
	GY *mat.Dense
}

// ComputeGradients estimates the partial derivatives of f using central
// differences in the interior and one-sided differences on the borders.
func ComputeGradients(f *Field) *Gradients {
	w, h := f.Width, f.Height
	gx := mat.NewDense(h, w, nil)
	gy := mat.NewDense(h, w, nil)
	rx, ry := gx.RawMatrix(), gy.RawMatrix()

	if h > 1 {
		for x := 0; x < w; x++ {
			rx.Data[x] = -float64(f.At(x, 1) - f.At(x, 0))
			rx.Data[(h-1)*rx.Stride+x] = -float64(f.At(x, h-1) - f.At(x, h-2))
		}
	}

	if h > 2 {
		forEachRowBand(h-2, func(b0, b1 int) {
			for y := b0 + 1; y < b1+1; y++ {
				row := rx.Data[y*rx.Stride:]
				for x := 0; x < w; x++ {
					row[x] = -float64(f.At(x, y+1)-f.At(x, y-1)) / 2
				}
			}
		})
	}

	if w > 1 {
		forEachRowBand(h, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				row := ry.Data[y*ry.Stride:]
				row[0] = float64(f.At(1, y) - f.At(0, y))
				row[w-1] = float64(f.At(w-1, y) - f.At(w-2, y))
				for x := 1; x < w-1; x++ {
					row[x] = float64(f.At(x+1, y)-f.At(x-1, y)) / 2
				}
			}
		})
	}

	return &Gradients{GX: gx, GY: gy}
}

// Magnitude is a normalized gradient norm, one value per pixel, laid out
// like a Field.
type Magnitude struct {
	Width  int
	Height int
	Stride int
	Values []uint16
}

// At returns the value at (x, y).
func (m *Magnitude) At(x, y int) int {
	return int(m.Values[y*m.Stride+x])
}

// NormalizeMagnitude computes hypot(GY, GX) per pixel and scales the result
// into [0, 65535]:
//
//	out = min(65535, round((m - 0) / (max - 0) * 65535 * multiplier))
//
// The multiplier brightens the map; values above 1 push more pixels onto the
// 65535 clamp. A flat field (max == 0) yields all zeros.
func NormalizeMagnitude(g *Gradients, multiplier float64) *Magnitude {
	h, w := g.GX.Dims()
	rx, ry := g.GX.RawMatrix(), g.GY.RawMatrix()
	norms := make([]float64, w*h)

	var (
		mu   sync.Mutex
		peak = magnitudeFloor
	)
	forEachRowBand(h, func(y0, y1 int) {
		bandMax := magnitudeFloor
		for y := y0; y < y1; y++ {
			gxRow, gyRow := rx.Data[y*rx.Stride:], ry.Data[y*ry.Stride:]
			for x := 0; x < w; x++ {
				n := math.Hypot(gyRow[x], gxRow[x])
				norms[y*w+x] = n
				if n > bandMax {
					bandMax = n
				}
			}
		}
		mu.Lock()
		if bandMax > peak {
			peak = bandMax
		}
		mu.Unlock()
	})

	out := &Magnitude{Width: w, Height: h, Stride: w, Values: make([]uint16, w*h)}
	span := peak - magnitudeFloor
	if span == 0 {
		return out
	}

	forEachRowBand(h, func(y0, y1 int) {
		for i := y0 * w; i < y1*w; i++ {
			v := math.Round((norms[i] - magnitudeFloor) / span * MaxValue * multiplier)
			out.Values[i] = uint16(math.Min(math.Max(v, 0), MaxValue))
		}
	})
	return out
}
