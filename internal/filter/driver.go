package filter

import "github.com/deepteams/loopfilter/internal/picture"

// FilterCTB deblocks CTB (ctbX, ctbY) and applies SAO to the CTBs whose
// surroundings are now fully deblocked: the upper-left neighbour, plus the
// left, upper and current CTB at the bottom and right picture borders.
// progress receives the luma rows that are final afterwards.
func (f *Filter[T]) FilterCTB(ctbX, ctbY picture.CTB, progress ProgressFunc) {
	g := &f.geom
	f.grid.addr(ctbX, ctbY) // bounds check
	xEnd := int(ctbX) == f.grid.width-1
	yEnd := int(ctbY) == f.grid.height-1
	y := int(g.LumaOfCTB(ctbY))
	ctb := int(g.CTBSize())

	f.Deblock(ctbX, ctbY)
	if !f.cfg.SAOEnabled {
		if xEnd {
			f.report(progress, y+ctb-4)
			if yEnd {
				f.report(progress, int(g.Height))
			}
		}
		return
	}
	if ctbX > 0 && ctbY > 0 {
		f.SAO(ctbX-1, ctbY-1)
	}
	if ctbX > 0 && yEnd {
		f.SAO(ctbX-1, ctbY)
	}
	if ctbY > 0 && xEnd {
		f.SAO(ctbX, ctbY-1)
		f.report(progress, y)
	}
	if xEnd && yEnd {
		f.SAO(ctbX, ctbY)
		f.report(progress, int(g.Height))
	}
}

// CTBDecoded is the entry point for a decoder that has just reconstructed
// CTB (ctbX, ctbY) in raster order. Filtering runs one CTB diagonal behind
// the reconstruction front, so later intra prediction still reads
// unfiltered neighbours; the picture edges and the final CTB are caught up
// as soon as they become available.
func (f *Filter[T]) CTBDecoded(ctbX, ctbY picture.CTB, progress ProgressFunc) {
	f.grid.addr(ctbX, ctbY)
	xEnd := int(ctbX) == f.grid.width-1
	yEnd := int(ctbY) == f.grid.height-1
	if ctbX > 0 && ctbY > 0 {
		f.FilterCTB(ctbX-1, ctbY-1, progress)
	}
	if ctbY > 0 && xEnd {
		f.FilterCTB(ctbX, ctbY-1, progress)
	}
	if ctbX > 0 && yEnd {
		f.FilterCTB(ctbX-1, ctbY, progress)
	}
	if xEnd && yEnd {
		f.FilterCTB(ctbX, ctbY, progress)
	}
}

// FilterRegion runs FilterCTB over CTB rows [rowStart, rowEnd) in raster
// order.
func (f *Filter[T]) FilterRegion(rowStart, rowEnd picture.CTB, progress ProgressFunc) {
	rowEnd = min(rowEnd, picture.CTB(f.grid.height))
	for y := max(rowStart, 0); y < rowEnd; y++ {
		for x := picture.CTB(0); int(x) < f.grid.width; x++ {
			f.FilterCTB(x, y, progress)
		}
	}
}

// FilterPicture filters the whole picture.
func (f *Filter[T]) FilterPicture(progress ProgressFunc) {
	f.FilterRegion(0, picture.CTB(f.grid.height), progress)
}
