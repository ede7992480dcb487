package ditherfx

import (
	"golang.org/x/sync/errgroup"
)

// forEachRowBand splits rows [0, height) into at most workers contiguous
// bands and calls fn for each band. With workers <= 1 fn runs once on the
// calling goroutine. Bands never overlap, so fn may write its own rows
// without locking.
func forEachRowBand(height, workers int, fn func(y0, y1 int)) {
	if workers <= 1 || height < 2 {
		fn(0, height)
		return
	}
	workers = min(workers, height)
	band := (height + workers - 1) / workers

	var g errgroup.Group
	for y0 := 0; y0 < height; y0 += band {
		y1 := min(y0+band, height)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
