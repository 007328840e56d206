package dsp

// 8-bit table backend. Bit-exact with the scalar reference; replaces range
// clipping and absolute differences with lookups in the clip tables and
// folds band offsets into a 256-entry sample map.

func tableKernels() *Kernels[uint8] {
	return &Kernels[uint8]{
		Level:      LevelTable,
		LumaEdge:   lumaEdge8,
		ChromaEdge: chromaEdge8,
		SAOBand:    saoBand8,
		SAOEdge:    saoEdge8,
	}
}

func lumaEdge8(pix []uint8, off, xs, ys int, e *LumaEdge, _ int) {
	beta := e.Beta
	for j := 0; j < 2; j++ {
		o := off + j*4*ys
		o3 := o + 3*ys
		dp0 := iabs(int(pix[o-3*xs]) - 2*int(pix[o-2*xs]) + int(pix[o-xs]))
		dq0 := iabs(int(pix[o+2*xs]) - 2*int(pix[o+xs]) + int(pix[o]))
		dp3 := iabs(int(pix[o3-3*xs]) - 2*int(pix[o3-2*xs]) + int(pix[o3-xs]))
		dq3 := iabs(int(pix[o3+2*xs]) - 2*int(pix[o3+xs]) + int(pix[o3]))
		d0 := dp0 + dq0
		d3 := dp3 + dq3
		tc := e.Tc[j]
		if d0+d3 >= beta {
			continue
		}
		if strong8(pix, o, xs, beta, tc, d0) && strong8(pix, o3, xs, beta, tc, d3) {
			lumaStrong(pix, o, xs, ys, 2*tc, e.NoP[j], e.NoQ[j])
			continue
		}
		side := (beta + (beta >> 1)) >> 3
		weak8(pix, o, xs, ys, tc, e.NoP[j], e.NoQ[j], dp0+dp3 < side, dq0+dq3 < side)
	}
}

func strong8(pix []uint8, o, xs, beta, tc, d int) bool {
	p3, p0 := int(pix[o-4*xs]), int(pix[o-xs])
	q0, q3 := int(pix[o]), int(pix[o+3*xs])
	return int(Kabs0(p3-p0))+int(Kabs0(q3-q0)) < beta>>3 &&
		int(Kabs0(p0-q0)) < (tc*5+1)>>1 &&
		d<<1 < beta>>2
}

func weak8(pix []uint8, off, xs, ys, tc int, noP, noQ, ndP, ndQ bool) {
	tcHalf := tc >> 1
	for d := 0; d < 4; d++ {
		o := off + d*ys
		p2, p1, p0 := int(pix[o-3*xs]), int(pix[o-2*xs]), int(pix[o-xs])
		q0, q1, q2 := int(pix[o]), int(pix[o+xs]), int(pix[o+2*xs])
		delta0 := (9*(q0-p0) - 3*(q1-p1) + 8) >> 4
		if iabs(delta0) >= 10*tc {
			continue
		}
		delta0 = clip3(-tc, tc, delta0)
		if !noP {
			pix[o-xs] = Kclip1(p0 + delta0)
		}
		if !noQ {
			pix[o] = Kclip1(q0 - delta0)
		}
		if !noP && ndP {
			pix[o-2*xs] = Kclip1(p1 + clip3(-tcHalf, tcHalf, (((p2+p0+1)>>1)-p1+delta0)>>1))
		}
		if !noQ && ndQ {
			pix[o+xs] = Kclip1(q1 + clip3(-tcHalf, tcHalf, (((q2+q0+1)>>1)-q1-delta0)>>1))
		}
	}
}

func chromaEdge8(pix []uint8, off, xs, ys int, e *ChromaEdge, _ int) {
	for j := 0; j < 2; j++ {
		tc := e.Tc[j]
		if tc <= 0 {
			continue
		}
		for d := 0; d < 4; d++ {
			o := off + (j*4+d)*ys
			p1, p0 := int(pix[o-2*xs]), int(pix[o-xs])
			q0, q1 := int(pix[o]), int(pix[o+xs])
			delta0 := clip3(-tc, tc, (((q0-p0)*4)+p1-q1+4)>>3)
			if !e.NoP[j] {
				pix[o-xs] = Kclip1(p0 + delta0)
			}
			if !e.NoQ[j] {
				pix[o] = Kclip1(q0 - delta0)
			}
		}
	}
}

func saoBand8(dst []uint8, dstOff, dstStride int, src []uint8, srcOff, srcStride int,
	offsets *[5]int16, bandPos, width, height, _ int) {
	var band [32]int
	for k := 0; k < 4; k++ {
		band[(k+bandPos)&31] = int(offsets[k+1])
	}
	var lut [256]uint8
	for v := range lut {
		lut[v] = Clip8b(v + band[v>>3])
	}
	for y := 0; y < height; y++ {
		s := src[srcOff+y*srcStride : srcOff+y*srcStride+width]
		d := dst[dstOff+y*dstStride : dstOff+y*dstStride+width]
		for x, v := range s {
			d[x] = lut[v]
		}
	}
}

func saoEdge8(dst []uint8, dstOff, dstStride int, src []uint8, srcOff, srcStride int,
	offsets *[5]int16, eoClass, width, height, _ int) {
	dx0, dy0, dx1, dy1 := EONeighbours(eoClass)
	a := dx0 + dy0*srcStride
	b := dx1 + dy1*srcStride
	var off [5]int
	for i := range off {
		off[i] = int(offsets[edgeIdx[i]])
	}
	for y := 0; y < height; y++ {
		so := srcOff + y*srcStride
		do := dstOff + y*dstStride
		for x := 0; x < width; x++ {
			v := int(src[so+x])
			dst[do+x] = Clip8b(v + off[2+sign(v, int(src[so+x+a]))+sign(v, int(src[so+x+b]))])
		}
	}
}
