package heightmap

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/matzehuels/hmaputil/pkg/errors"
)

// maxColor is the largest 24-bit RGB value.
const maxColor = 0xffffff

// ColorQuad holds the replacement colors used by Recolor, each a 24-bit
// 0xRRGGBB value.
type ColorQuad struct {
	Red   uint32
	Green uint32
	Blue  uint32
	Black uint32
}

// DefaultColorQuad maps every canonical color onto itself.
var DefaultColorQuad = ColorQuad{
	Red:   0xff0000,
	Green: 0x00ff00,
	Blue:  0x0000ff,
	Black: 0x000000,
}

// Validate checks that every color fits in 24 bits.
func (q ColorQuad) Validate() error {
	names := [4]string{"red", "green", "blue", "black"}
	for i, c := range [4]uint32{q.Red, q.Green, q.Blue, q.Black} {
		if c > maxColor {
			return errs.New(errs.ErrCodeInvalidInput, "%s replacement color %#x exceeds 24 bits", names[i], c)
		}
	}
	return nil
}

// ParseHexColor parses "rrggbb" or "#rrggbb" into a 24-bit color.
func ParseHexColor(s string) (uint32, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 0 || len(h) > 6 {
		return 0, errs.New(errs.ErrCodeInvalidInput, "invalid hex color %q: want up to 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid hex color %q", s)
	}
	return uint32(v), nil
}

// FormatHexColor renders c as six zero-padded lowercase hex digits.
func FormatHexColor(c uint32) string {
	return fmt.Sprintf("%06x", c&maxColor)
}

// ParseColorQuad parses four hex colors in red, green, blue, black order.
func ParseColorQuad(red, green, blue, black string) (ColorQuad, error) {
	var q ColorQuad
	for _, p := range []struct {
		dst *uint32
		src string
	}{{&q.Red, red}, {&q.Green, green}, {&q.Blue, blue}, {&q.Black, black}} {
		c, err := ParseHexColor(p.src)
		if err != nil {
			return ColorQuad{}, err
		}
		*p.dst = c
	}
	return q, nil
}

// Hex returns the quad as hex strings in red, green, blue, black order.
func (q ColorQuad) Hex() [4]string {
	return [4]string{FormatHexColor(q.Red), FormatHexColor(q.Green), FormatHexColor(q.Blue), FormatHexColor(q.Black)}
}
