package heightmap

import (
	"image"

	errs "github.com/matzehuels/hmaputil/pkg/errors"
)

// Field is an immutable view over 16-bit height samples.
// The sample at column x, row y is Samples[y*Stride+x].
type Field struct {
	Width   int
	Height  int
	Stride  int
	Samples []uint16
}

// NewField validates the geometry and returns a Field over samples.
// The slice is not copied; callers must not modify it afterwards.
func NewField(width, height, stride int, samples []uint16) (*Field, error) {
	if width <= 0 || height <= 0 {
		return nil, errs.New(errs.ErrCodeInputWrongFormat, "heightmap must have positive dimensions, got %dx%d", width, height)
	}
	if stride < width {
		return nil, errs.New(errs.ErrCodeInputWrongFormat, "stride %d is smaller than width %d", stride, width)
	}
	if len(samples) < height*stride {
		return nil, errs.New(errs.ErrCodeInputWrongFormat, "heightmap holds %d samples, need %d", len(samples), height*stride)
	}
	return &Field{Width: width, Height: height, Stride: stride, Samples: samples}, nil
}

// FieldFromGray16 copies a decoded 16-bit grayscale image into a Field.
// image.Gray16 stores big-endian byte pairs, so the samples are widened into
// a dedicated slice with Stride equal to Width.
func FieldFromGray16(img *image.Gray16) *Field {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	samples := make([]uint16, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			samples[y*w+x] = uint16(row[2*x])<<8 | uint16(row[2*x+1])
		}
	}
	return &Field{Width: w, Height: h, Stride: w, Samples: samples}
}

// At returns the sample at (x, y) widened to int, so differences between
// samples never wrap or sign-extend.
func (f *Field) At(x, y int) int {
	return int(f.Samples[y*f.Stride+x])
}

// Bounds returns the field's rectangle anchored at the origin.
func (f *Field) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}
