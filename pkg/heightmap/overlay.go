package heightmap

import (
	"image"
	"image/color"

	errs "github.com/matzehuels/hmaputil/pkg/errors"
)

// ApplyTrackMask punches track information into a freshly classified mask.
//
// For every pixel the track mask's red and green channels are read as 8-bit
// non-premultiplied values:
//   - red > 0: the pixel becomes (255 - red) in the channel that is currently
//     pure, with every other channel (alpha included) zeroed. Full red in the
//     track mask therefore blacks the pixel out.
//   - otherwise green > 0: green is OR-ed into the alpha byte (wetness) and
//     the color is left untouched.
//
// The track mask must have exactly the mask's dimensions.
func ApplyTrackMask(m *Mask, track image.Image) error {
	b := track.Bounds()
	if b.Dx() != m.Width || b.Dy() != m.Height {
		return errs.New(errs.ErrCodeTrackMaskSizeMismatch,
			"Track mask size must be same as heightmap (%dx%d, got %dx%d).", m.Width, m.Height, b.Dx(), b.Dy())
	}

	read := trackReader(track)
	forEachRowBand(m.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < m.Width; x++ {
				red, green := read(b.Min.X+x, b.Min.Y+y)
				i := y*m.Stride + x
				switch {
				case red > 0:
					m.Pix[i] = darken(m.Pix[i], 255-uint32(red))
				case green > 0:
					m.Pix[i] |= uint32(green) << 24
				}
			}
		}
	})
	return nil
}

// darken confines v to the channel that is pure in p. Pixels that are not a
// canonical color are returned unchanged.
func darken(p, v uint32) uint32 {
	switch p & 0x00ffffff {
	case MaskRed:
		return v << 16
	case MaskGreen:
		return v << 8
	case MaskBlue:
		return v
	}
	return p
}

// trackReader returns a function yielding the non-premultiplied red and green
// channels at (x, y).
func trackReader(img image.Image) func(x, y int) (uint8, uint8) {
	switch t := img.(type) {
	case *image.NRGBA:
		return func(x, y int) (uint8, uint8) {
			i := t.PixOffset(x, y)
			return t.Pix[i], t.Pix[i+1]
		}
	case *image.Gray:
		return func(x, y int) (uint8, uint8) {
			v := t.Pix[t.PixOffset(x, y)]
			return v, v
		}
	}
	return func(x, y int) (uint8, uint8) {
		c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		return c.R, c.G
	}
}
