package heightmap

// Recolor replaces the three canonical mask colors with the quad's colors.
// The comparison is on the full packed pixel, so any pixel an overlay
// touched (darkened or given alpha) becomes q.Black. This is an overwrite,
// not a blend: alpha is discarded.
func Recolor(m *Mask, q ColorQuad) {
	forEachRowBand(m.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := m.Pix[y*m.Stride : y*m.Stride+m.Width]
			for x, p := range row {
				switch p {
				case MaskRed:
					row[x] = q.Red
				case MaskGreen:
					row[x] = q.Green
				case MaskBlue:
					row[x] = q.Blue
				default:
					row[x] = q.Black
				}
			}
		}
	})
}
