package imageio

import (
	"bytes"
	"image"
	"image/png"
)

// encoder is shared; png.Encoder is safe for concurrent use without a
// BufferPool.
var encoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// EncodePNG encodes img as PNG. *image.RGBA images whose pixels are all
// opaque are written as 24-bit RGB, *image.NRGBA with transparency as 32-bit
// RGBA and *image.Gray16 as 16-bit gray.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := encoder.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
