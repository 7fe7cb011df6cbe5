package heightmap

import (
	"image"
	"math"
)

// Canonical mask colors, packed as 0xAARRGGBB with a zero alpha byte.
const (
	MaskRed   uint32 = 0x00ff0000
	MaskGreen uint32 = 0x0000ff00
	MaskBlue  uint32 = 0x000000ff
)

// Mask is a classified slope mask. Each pixel is packed as 0xAARRGGBB.
// Before an overlay every pixel holds exactly one of MaskRed, MaskGreen or
// MaskBlue.
type Mask struct {
	Width  int
	Height int
	Stride int
	Pix    []uint32
}

// NewMask allocates a zeroed mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Stride: width, Pix: make([]uint32, width*height)}
}

// At returns the packed pixel at (x, y).
func (m *Mask) At(x, y int) uint32 {
	return m.Pix[y*m.Stride+x]
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	c := *m
	c.Pix = append([]uint32(nil), m.Pix...)
	return &c
}

// Threshold converts a bound in [0, 1] into the 16-bit magnitude domain.
func Threshold(bound float64) int {
	return int(math.Round(MaxValue * bound))
}

// Classify buckets every magnitude value into one of three pure colors:
// green below the lower threshold, red from the lower threshold up to (but
// excluding) the upper one, blue at or above the upper threshold. The caller
// guarantees 0 <= lower <= upper <= 1.
func Classify(m *Magnitude, lower, upper float64) *Mask {
	low, up := Threshold(lower), Threshold(upper)
	mask := NewMask(m.Width, m.Height)
	forEachRowBand(m.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < m.Width; x++ {
				v := m.At(x, y)
				switch {
				case v < low:
					mask.Pix[y*mask.Stride+x] = MaskGreen
				case v < up:
					mask.Pix[y*mask.Stride+x] = MaskRed
				default:
					mask.Pix[y*mask.Stride+x] = MaskBlue
				}
			}
		}
	})
	return mask
}

// ToNRGBA converts the mask into a non-premultiplied 32-bit image, keeping
// the alpha byte (0 unless a track mask set it).
func (m *Mask) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < m.Width; x++ {
			p := m.At(x, y)
			i := 4 * x
			row[i] = uint8(p >> 16)
			row[i+1] = uint8(p >> 8)
			row[i+2] = uint8(p)
			row[i+3] = uint8(p >> 24)
		}
	}
	return img
}

// ToRGB converts the mask into an opaque image, dropping the alpha byte.
func (m *Mask) ToRGB() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < m.Width; x++ {
			p := m.At(x, y)
			i := 4 * x
			row[i] = uint8(p >> 16)
			row[i+1] = uint8(p >> 8)
			row[i+2] = uint8(p)
			row[i+3] = 0xff
		}
	}
	return img
}
