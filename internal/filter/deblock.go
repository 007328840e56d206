package filter

import (
	"fmt"

	"github.com/deepteams/loopfilter/internal/dsp"
	"github.com/deepteams/loopfilter/internal/picture"
)

// Deblock filters the edges owned by CTB (ctbX, ctbY): every vertical edge
// inside it, and the horizontal edges from 8 samples left of the CTB up to
// 8 samples before its right border. The last 8 columns are left to the
// next CTB because their vertical edge is not filtered yet.
func (f *Filter[T]) Deblock(ctbX, ctbY picture.CTB) {
	if f.cfg.DeblockingDisabled {
		return
	}
	g := &f.geom
	addr := f.grid.addr(ctbX, ctbY)
	x0, y0 := g.LumaOfCTB(ctbX), g.LumaOfCTB(ctbY)
	xEnd := min(x0+g.CTBSize(), g.Width)
	yEnd := min(y0+g.CTBSize(), g.Height)

	cur := f.grid.slices[addr]
	curTc, curBeta := cur.TcOffset, cur.BetaOffset
	leftTc, leftBeta := 0, 0
	if x0 > 0 {
		left := f.grid.slices[addr-1]
		leftTc, leftBeta = left.TcOffset, left.BetaOffset
	}
	xEnd2 := xEnd
	if xEnd2 != g.Width {
		xEnd2 -= 8
	}

	luma := f.frame.Plane(0)
	bd := f.cfg.BitDepth
	var e dsp.LumaEdge
	for y := y0; y < yEnd; y += 8 {
		for x := max(x0, 8); x < xEnd; x += 8 {
			bs0, bs1 := f.vbs.At(x, y), f.vbs.At(x, y+4)
			if bs0 == 0 && bs1 == 0 {
				continue
			}
			qp := f.edgeQP(x-1, y, x, y)
			e.Beta = dsp.Beta(qp, curBeta)
			e.Tc = [2]int{tcFor(qp, bs0, curTc), tcFor(qp, bs1, curTc)}
			e.NoP = [2]bool{f.meta.Bypass(x-1, y), f.meta.Bypass(x-1, y+4)}
			e.NoQ = [2]bool{f.meta.Bypass(x, y), f.meta.Bypass(x, y+4)}
			f.k.LumaEdge(luma.Pix, luma.Offset(int(x), int(y)), 1, luma.Stride, &e, bd)
		}
		if y == 0 {
			continue
		}
		for x := max(x0-8, 0); x < xEnd2; x += 8 {
			bs0, bs1 := f.hbs.At(x, y), f.hbs.At(x+4, y)
			if bs0 == 0 && bs1 == 0 {
				continue
			}
			tcOff, betaOff := curTc, curBeta
			if x < x0 {
				tcOff, betaOff = leftTc, leftBeta
			}
			qp := f.edgeQP(x, y-1, x, y)
			e.Beta = dsp.Beta(qp, betaOff)
			e.Tc = [2]int{tcFor(qp, bs0, tcOff), tcFor(qp, bs1, tcOff)}
			e.NoP = [2]bool{f.meta.Bypass(x, y-1), f.meta.Bypass(x+4, y-1)}
			e.NoQ = [2]bool{f.meta.Bypass(x, y), f.meta.Bypass(x+4, y)}
			f.k.LumaEdge(luma.Pix, luma.Offset(int(x), int(y)), luma.Stride, 1, &e, bd)
		}
	}

	if f.cfg.ChromaFormat == picture.Monochrome {
		return
	}
	for c := 1; c <= 2; c++ {
		f.deblockChroma(c, x0, y0, xEnd, yEnd, curTc, leftTc)
	}
}

func (f *Filter[T]) deblockChroma(c int, x0, y0, xEnd, yEnd picture.Luma, curTc, leftTc int) {
	g := &f.geom
	hs, vs := g.HShift(c), g.VShift(c)
	stepX, stepY := picture.Luma(8<<hs), picture.Luma(8<<vs)
	halfX, halfY := picture.Luma(4<<hs), picture.Luma(4<<vs)
	plane := f.frame.Plane(c)
	qpOffset := f.cfg.CbQPOffset
	if c == 2 {
		qpOffset = f.cfg.CrQPOffset
	}
	is420 := f.cfg.ChromaFormat == picture.Chroma420
	bd := f.cfg.BitDepth

	xEnd2 := xEnd
	if xEnd2 != g.Width {
		xEnd2 -= stepX
	}
	var e dsp.ChromaEdge
	for y := y0; y < yEnd; y += stepY {
		for x := max(x0, stepX); x < xEnd; x += stepX {
			bs0, bs1 := f.vbs.At(x, y), f.vbs.At(x, y+halfY)
			if bs0 != 2 && bs1 != 2 {
				continue
			}
			e.Tc = [2]int{}
			if bs0 == 2 {
				e.Tc[0] = dsp.ChromaTc(f.edgeQP(x-1, y, x, y), qpOffset, curTc, is420)
			}
			if bs1 == 2 {
				e.Tc[1] = dsp.ChromaTc(f.edgeQP(x-1, y+halfY, x, y+halfY), qpOffset, curTc, is420)
			}
			e.NoP = [2]bool{f.meta.Bypass(x-1, y), f.meta.Bypass(x-1, y+halfY)}
			e.NoQ = [2]bool{f.meta.Bypass(x, y), f.meta.Bypass(x, y+halfY)}
			off := plane.Offset(int(x)>>hs, int(y)>>vs)
			f.k.ChromaEdge(plane.Pix, off, 1, plane.Stride, &e, bd)
		}
		if y == 0 {
			continue
		}
		for x := max(x0-stepX, 0); x < xEnd2; x += stepX {
			bs0, bs1 := f.hbs.At(x, y), f.hbs.At(x+halfX, y)
			if bs0 != 2 && bs1 != 2 {
				continue
			}
			tcOff := curTc
			if x < x0 {
				tcOff = leftTc
			}
			e.Tc = [2]int{}
			if bs0 == 2 {
				e.Tc[0] = dsp.ChromaTc(f.edgeQP(x, y-1, x, y), qpOffset, tcOff, is420)
			}
			if bs1 == 2 {
				e.Tc[1] = dsp.ChromaTc(f.edgeQP(x+halfX, y-1, x+halfX, y), qpOffset, tcOff, is420)
			}
			e.NoP = [2]bool{f.meta.Bypass(x, y-1), f.meta.Bypass(x+halfX, y-1)}
			e.NoQ = [2]bool{f.meta.Bypass(x, y), f.meta.Bypass(x+halfX, y)}
			off := plane.Offset(int(x)>>hs, int(y)>>vs)
			f.k.ChromaEdge(plane.Pix, off, plane.Stride, 1, &e, bd)
		}
	}
}

// edgeQP returns the rounded average QpY of the blocks holding the P and Q
// samples of an edge.
func (f *Filter[T]) edgeQP(px, py, qx, qy picture.Luma) int {
	qpP, qpQ := f.meta.QP(px, py), f.meta.QP(qx, qy)
	lo := -f.cfg.QpBdOffset()
	if qpP < lo || qpP > dsp.MaxQP || qpQ < lo || qpQ > dsp.MaxQP {
		panic(fmt.Sprintf("filter: QpY %d/%d outside [%d, %d] at (%d, %d)", qpP, qpQ, lo, dsp.MaxQP, qx, qy))
	}
	return (qpP + qpQ + 1) >> 1
}

func tcFor(qp int, bs uint8, tcOffset int) int {
	if bs == 0 {
		return 0
	}
	return dsp.Tc(qp, int(bs), tcOffset)
}
