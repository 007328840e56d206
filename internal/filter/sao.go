package filter

import (
	"github.com/deepteams/loopfilter/internal/dsp"
	"github.com/deepteams/loopfilter/internal/picture"
	"github.com/deepteams/loopfilter/internal/pool"
)

// saoBorders describes which sides of a CTB may not be corrected against
// their neighbours. edges are the picture borders (left, top, right,
// bottom). vert, horiz and diag are the slice or tile borders that must not
// be crossed: left/right, top/bottom, and the corners in the order
// upper-left, upper-right, lower-right, lower-left.
type saoBorders struct {
	edges [4]bool
	vert  [2]bool
	horiz [2]bool
	diag  [4]bool
}

func (f *Filter[T]) saoBorders(x, y picture.CTB) saoBorders {
	grid := f.grid
	var b saoBorders
	b.edges = [4]bool{
		x == 0,
		y == 0,
		int(x) == grid.width-1,
		int(y) == grid.height-1,
	}
	lfase := grid.Slice(x, y).LoopFilterAcrossSlices
	noTile := f.cfg.tileEdgesClosed()
	if lfase && !noTile {
		return b
	}
	slice := func(nx, ny picture.CTB) bool { return !lfase && grid.sliceEdge(x, y, nx, ny) }
	tile := func(nx, ny picture.CTB) bool { return noTile && grid.tileEdge(x, y, nx, ny) }

	var leftTile, rightTile, upTile, downTile bool
	if !b.edges[0] {
		leftTile = tile(x-1, y)
		b.vert[0] = slice(x-1, y) || leftTile
	}
	if !b.edges[2] {
		rightTile = tile(x+1, y)
		b.vert[1] = slice(x+1, y) || rightTile
	}
	if !b.edges[1] {
		upTile = tile(x, y-1)
		b.horiz[0] = slice(x, y-1) || upTile
	}
	if !b.edges[3] {
		downTile = tile(x, y+1)
		b.horiz[1] = slice(x, y+1) || downTile
	}
	if !b.edges[0] && !b.edges[1] {
		b.diag[0] = slice(x-1, y-1) || leftTile || upTile
	}
	if !b.edges[1] && !b.edges[2] {
		b.diag[1] = slice(x+1, y-1) || rightTile || upTile
	}
	if !b.edges[2] && !b.edges[3] {
		b.diag[2] = slice(x+1, y+1) || rightTile || downTile
	}
	if !b.edges[0] && !b.edges[3] {
		b.diag[3] = slice(x-1, y+1) || leftTile || downTile
	}
	return b
}

// SAO applies sample adaptive offset to every component of CTB
// (ctbX, ctbY) and marks it Applied. Components already Applied are left
// alone. All deblocking that touches the CTB or the one-sample ring around
// it must have been done.
func (f *Filter[T]) SAO(ctbX, ctbY picture.CTB) {
	params := &f.sao[f.grid.addr(ctbX, ctbY)]
	var b saoBorders
	computed := false
	for c := 0; c < f.cfg.ChromaFormat.NumComponents(); c++ {
		params.validate(c)
		if params.Type[c] == SAOApplied {
			continue
		}
		plane, x0, y0, w, h := f.ctbBlock(c, ctbX, ctbY)
		switch params.Type[c] {
		case SAOOff:
			f.cache.store(plane, c, int(ctbX), int(ctbY), x0, y0, w, h)
		case SAOBand:
			f.saoBand(c, params, ctbX, ctbY, plane, x0, y0, w, h)
		case SAOEdge:
			if !computed {
				b = f.saoBorders(ctbX, ctbY)
				computed = true
			}
			f.saoEdge(c, params, &b, ctbX, ctbY, plane, x0, y0, w, h)
		}
		params.markApplied(c)
	}
}

// ctbBlock returns the plane of component c and the CTB's block in it,
// clipped at the picture border.
func (f *Filter[T]) ctbBlock(c int, ctbX, ctbY picture.CTB) (p *picture.Plane[T], x0, y0, w, h int) {
	g := &f.geom
	p = f.frame.Plane(c)
	hs, vs := g.HShift(c), g.VShift(c)
	x0 = int(g.LumaOfCTB(ctbX)) >> hs
	y0 = int(g.LumaOfCTB(ctbY)) >> vs
	w = min(int(g.CTBSize())>>hs, p.Width-x0)
	h = min(int(g.CTBSize())>>vs, p.Height-y0)
	return p, x0, y0, w, h
}

func (f *Filter[T]) saoBand(c int, params *SAOParams, ctbX, ctbY picture.CTB, plane *picture.Plane[T], x0, y0, w, h int) {
	f.cache.store(plane, c, int(ctbX), int(ctbY), x0, y0, w, h)
	off := plane.Offset(x0, y0)
	if !f.meta.anyBypass {
		f.k.SAOBand(plane.Pix, off, plane.Stride, plane.Pix, off, plane.Stride,
			&params.Offsets[c], params.BandPosition[c], w, h, f.cfg.BitDepth)
		return
	}
	scratchPool := pool.ForSamples[T]()
	scratch := scratchPool.Get(w * h)
	defer scratchPool.Put(scratch)
	plane.CopyBlock(scratch, w, x0, y0, w, h)
	f.k.SAOBand(plane.Pix, off, plane.Stride, scratch, 0, w,
		&params.Offsets[c], params.BandPosition[c], w, h, f.cfg.BitDepth)
	f.restoreBypass(c, ctbX, ctbY, plane, x0, y0, w, h, scratch, 0, w)
}

func (f *Filter[T]) saoEdge(c int, params *SAOParams, b *saoBorders, ctbX, ctbY picture.CTB, plane *picture.Plane[T], x0, y0, w, h int) {
	sw := w + 2
	scratchPool := pool.ForSamples[T]()
	buf := scratchPool.Get(sw * (h + 2))
	defer scratchPool.Put(buf)
	o := sw + 1 // (x0, y0) in buf

	applied := func(x, y picture.CTB) bool { return f.sao[f.grid.addr(x, y)].Applied(c) }
	cx, cy := int(ctbX), int(ctbY)
	left, right := !b.edges[0], !b.edges[2]

	// Rows above and below, corners included, come from the cache when the
	// neighbour holding them has already been corrected.
	ring := func(dst []T, ny picture.CTB, cacheRow, planeRow []T) {
		src := func(nx picture.CTB) []T {
			if applied(nx, ny) {
				return cacheRow
			}
			return planeRow
		}
		if left {
			dst[0] = src(ctbX - 1)[x0-1]
		}
		copy(dst[1:1+w], src(ctbX)[x0:x0+w])
		if right {
			dst[1+w] = src(ctbX + 1)[x0+w]
		}
	}
	if !b.edges[1] {
		ring(buf[:sw], ctbY-1, f.cache.row(c, 2*cy-1), plane.Row(y0-1))
	}
	if !b.edges[3] {
		ring(buf[(h+1)*sw:(h+2)*sw], ctbY+1, f.cache.row(c, 2*cy+2), plane.Row(y0+h))
	}

	leftPixels, rightPixels := 0, 0
	if left {
		if applied(ctbX-1, ctbY) {
			col := f.cache.col(c, 2*cx-1)
			for j := 0; j < h; j++ {
				buf[o+j*sw-1] = col[y0+j]
			}
		} else {
			leftPixels = 1
		}
	}
	if right {
		if applied(ctbX+1, ctbY) {
			col := f.cache.col(c, 2*cx+2)
			for j := 0; j < h; j++ {
				buf[o+j*sw+w] = col[y0+j]
			}
		} else {
			rightPixels = 1
		}
	}
	plane.CopyBlock(buf[o-leftPixels:], sw, x0-leftPixels, y0, w+leftPixels+rightPixels, h)

	f.cache.store(plane, c, cx, cy, x0, y0, w, h)
	eo := params.EOClass[c]
	f.k.SAOEdge(plane.Pix, plane.Offset(x0, y0), plane.Stride, buf, o, sw,
		&params.Offsets[c], eo, w, h, f.cfg.BitDepth)
	restoreEdge(plane, plane.Offset(x0, y0), buf, o, sw, eo, b, w, h)
	if f.meta.anyBypass {
		f.restoreBypass(c, ctbX, ctbY, plane, x0, y0, w, h, buf, o, sw)
	}
}

// restoreEdge puts back the samples whose edge class reads across a
// picture border or a border that must not be crossed. src holds the
// pre-SAO block at srcOff with stride srcStride.
func restoreEdge[T dsp.Sample](plane *picture.Plane[T], dstOff int, src []T, srcOff, srcStride int,
	eo int, b *saoBorders, width, height int) {
	dst, ds := plane.Pix, plane.Stride
	restore := func(x, y int) { dst[dstOff+y*ds+x] = src[srcOff+y*srcStride+x] }
	initX, initY := 0, 0

	if eo != dsp.EOVertical {
		if b.edges[0] {
			for y := 0; y < height; y++ {
				restore(0, y)
			}
			initX = 1
		}
		if b.edges[2] {
			for y := 0; y < height; y++ {
				restore(width-1, y)
			}
			width--
		}
	}
	if eo != dsp.EOHorizontal {
		if b.edges[1] {
			for x := initX; x < width; x++ {
				restore(x, 0)
			}
			initY = 1
		}
		if b.edges[3] {
			for x := initX; x < width; x++ {
				restore(x, height-1)
			}
			height--
		}
	}

	// A corner of a suppressed straight edge stays filterable when the
	// class reads along a diagonal that is not suppressed.
	saveUL := b2i(!b.diag[0] && eo == dsp.EODiag135 && !b.edges[0] && !b.edges[1])
	saveUR := b2i(!b.diag[1] && eo == dsp.EODiag45 && !b.edges[1] && !b.edges[2])
	saveLR := b2i(!b.diag[2] && eo == dsp.EODiag135 && !b.edges[2] && !b.edges[3])
	saveLL := b2i(!b.diag[3] && eo == dsp.EODiag45 && !b.edges[0] && !b.edges[3])

	if b.vert[0] && eo != dsp.EOVertical {
		for y := initY + saveUL; y < height-saveLL; y++ {
			restore(0, y)
		}
	}
	if b.vert[1] && eo != dsp.EOVertical {
		for y := initY + saveUR; y < height-saveLR; y++ {
			restore(width-1, y)
		}
	}
	if b.horiz[0] && eo != dsp.EOHorizontal {
		for x := initX + saveUL; x < width-saveUR; x++ {
			restore(x, 0)
		}
	}
	if b.horiz[1] && eo != dsp.EOHorizontal {
		for x := initX + saveLL; x < width-saveLR; x++ {
			restore(x, height-1)
		}
	}
	if b.diag[0] && eo == dsp.EODiag135 {
		restore(0, 0)
	}
	if b.diag[1] && eo == dsp.EODiag45 {
		restore(width-1, 0)
	}
	if b.diag[2] && eo == dsp.EODiag135 {
		restore(width-1, height-1)
	}
	if b.diag[3] && eo == dsp.EODiag45 {
		restore(0, height-1)
	}
}

// restoreBypass copies the pre-SAO samples of bypass blocks inside the
// CTB's w x h block (component units, at x0, y0) back into the plane.
func (f *Filter[T]) restoreBypass(c int, ctbX, ctbY picture.CTB, plane *picture.Plane[T], x0, y0, w, h int,
	src []T, srcOff, srcStride int) {
	g := &f.geom
	hs, vs := g.HShift(c), g.VShift(c)
	lx0, ly0 := int(g.LumaOfCTB(ctbX)), int(g.LumaOfCTB(ctbY))
	log2PU := g.Log2MinPUSize
	puW, puH := (1<<log2PU)>>hs, (1<<log2PU)>>vs
	xMax := (lx0 + w<<hs) >> log2PU
	yMax := (ly0 + h<<vs) >> log2PU
	for py := ly0 >> log2PU; py < yMax; py++ {
		for px := lx0 >> log2PU; px < xMax; px++ {
			if !f.meta.bypassPU(px, py) {
				continue
			}
			bx := ((px << log2PU) - lx0) >> hs
			by := ((py << log2PU) - ly0) >> vs
			for j := 0; j < puH; j++ {
				s := srcOff + (by+j)*srcStride + bx
				d := plane.Offset(x0+bx, y0+by+j)
				copy(plane.Pix[d:d+puW], src[s:s+puW])
			}
		}
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
