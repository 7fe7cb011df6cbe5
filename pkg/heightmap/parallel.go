package heightmap

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minBandRows keeps tiny images on a single goroutine.
const minBandRows = 64

// forEachRowBand calls fn over [y0, y1) bands covering [0, rows). Bands are
// disjoint, so fn may write to its rows without synchronization.
func forEachRowBand(rows int, fn func(y0, y1 int)) {
	workers := runtime.GOMAXPROCS(0)
	if rows < 2*minBandRows || workers < 2 {
		fn(0, rows)
		return
	}
	band := (rows + workers - 1) / workers
	if band < minBandRows {
		band = minBandRows
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < rows; y0 += band {
		y1 := min(y0+band, rows)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
