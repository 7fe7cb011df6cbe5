package heightmap

import (
	"image"
)

// EncodeRG packs each 16-bit sample into the red (high byte) and green (low
// byte) channels of an opaque RGB image, doubling the height resolution of an
// 8-bit map. Blue is always 0.
//
// Column 0 of every row is never encoded and stays black (height 0).
func EncodeRG(f *Field) *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	forEachRowBand(f.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := img.Pix[y*img.Stride:]
			row[3] = 0xff
			for x := 1; x < f.Width; x++ {
				v := f.At(x, y)
				i := 4 * x
				row[i] = uint8(v >> 8)
				row[i+1] = uint8(v)
				row[i+2] = 0
				row[i+3] = 0xff
			}
		}
	})
	return img
}

// DecodeRG reverses EncodeRG for a single pixel.
func DecodeRG(r, g uint8) uint16 {
	return uint16(r)<<8 | uint16(g)
}

// ToGray16 converts the normalized magnitude into a 16-bit grayscale image,
// the relief map.
func (m *Magnitude) ToGray16() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < m.Width; x++ {
			v := m.Values[y*m.Stride+x]
			row[2*x] = uint8(v >> 8)
			row[2*x+1] = uint8(v)
		}
	}
	return img
}
