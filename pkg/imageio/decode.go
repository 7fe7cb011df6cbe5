package imageio

import (
	"bytes"
	"image"
	"io"
	"os"

	// Registered decoders.
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	errs "github.com/matzehuels/hmaputil/pkg/errors"
	"github.com/matzehuels/hmaputil/pkg/heightmap"
)

// heightmapFormats are the container formats able to carry 16-bit gray.
var heightmapFormats = map[string]bool{
	"png":  true,
	"tiff": true,
}

// DecodeHeightmap decodes a 16-bit grayscale PNG or TIFF into a Field.
func DecodeHeightmap(r io.Reader) (*heightmap.Field, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInputUnreadable, err, "Unable to decode heightmap.")
	}
	gray, ok := img.(*image.Gray16)
	if !ok || !heightmapFormats[format] {
		return nil, errs.New(errs.ErrCodeInputWrongFormat, "Input image must be a 16bit grayscaled no-alpha png (got %s %T).", format, img)
	}
	if gray.Bounds().Empty() {
		return nil, errs.New(errs.ErrCodeInputWrongFormat, "Input image has no pixels.")
	}
	return heightmap.FieldFromGray16(gray), nil
}

// DecodeHeightmapBytes is DecodeHeightmap over an in-memory buffer.
func DecodeHeightmapBytes(data []byte) (*heightmap.Field, error) {
	return DecodeHeightmap(bytes.NewReader(data))
}

// ReadInput reads the source heightmap file. A missing file is reported as
// INPUT_MISSING, any other failure as INPUT_UNREADABLE.
func ReadInput(path string) ([]byte, error) {
	if path == "" {
		return nil, errs.New(errs.ErrCodeInputMissing, "No input file.")
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeInputMissing, err, "Input file %s does not exist.", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInputUnreadable, err, "Unable to read %s", path)
	}
	return data, nil
}

// DecodeTrackMask decodes a track mask of any supported format.
func DecodeTrackMask(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeTrackMaskUnreadable, err, "Unable to decode track mask.")
	}
	return img, nil
}

// DecodeTrackMaskBytes is DecodeTrackMask over an in-memory buffer.
func DecodeTrackMaskBytes(data []byte) (image.Image, error) {
	return DecodeTrackMask(bytes.NewReader(data))
}
