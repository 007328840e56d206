package dsp

// HEVC deblocking kernels, reference implementation.
//
// An edge is eight lines long and split into two 4-line segments, each with
// its own tc and bypass flags. Samples across the edge are named p3..p0 on
// the P side and q0..q3 on the Q side; off addresses q0 of line zero.

func iabs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// clipPixel clips v to [0, (1<<bitDepth)-1].
func clipPixel[T Sample](v, bitDepth int) T {
	return T(clip3(0, (1<<bitDepth)-1, v))
}

// lumaEdge implements the luma filter decision and the strong/weak filters.
func lumaEdge[T Sample](pix []T, off, xs, ys int, e *LumaEdge, bitDepth int) {
	beta := e.Beta << (bitDepth - 8)
	for j := 0; j < 2; j++ {
		o := off + j*4*ys
		o3 := o + 3*ys
		dp0 := iabs(int(pix[o-3*xs]) - 2*int(pix[o-2*xs]) + int(pix[o-xs]))
		dq0 := iabs(int(pix[o+2*xs]) - 2*int(pix[o+xs]) + int(pix[o]))
		dp3 := iabs(int(pix[o3-3*xs]) - 2*int(pix[o3-2*xs]) + int(pix[o3-xs]))
		dq3 := iabs(int(pix[o3+2*xs]) - 2*int(pix[o3+xs]) + int(pix[o3]))
		d0 := dp0 + dq0
		d3 := dp3 + dq3
		tc := e.Tc[j] << (bitDepth - 8)
		if d0+d3 >= beta {
			continue
		}
		if strongDecision(pix, o, xs, beta, tc, d0) && strongDecision(pix, o3, xs, beta, tc, d3) {
			lumaStrong(pix, o, xs, ys, 2*tc, e.NoP[j], e.NoQ[j])
			continue
		}
		side := (beta + (beta >> 1)) >> 3
		ndP := dp0+dp3 < side
		ndQ := dq0+dq3 < side
		lumaWeak[T](pix, o, xs, ys, tc, e.NoP[j], e.NoQ[j], ndP, ndQ, bitDepth)
	}
}

// strongDecision evaluates the strong-filter condition on one line.
func strongDecision[T Sample](pix []T, o, xs, beta, tc, d int) bool {
	p3, p0 := int(pix[o-4*xs]), int(pix[o-xs])
	q0, q3 := int(pix[o]), int(pix[o+3*xs])
	tc25 := (tc*5 + 1) >> 1
	return iabs(p3-p0)+iabs(q3-q0) < beta>>3 &&
		iabs(p0-q0) < tc25 &&
		d<<1 < beta>>2
}

// lumaStrong modifies up to three samples per side. The clipped deltas
// keep every result between the input sample and a local average, so no
// range clip is needed.
func lumaStrong[T Sample](pix []T, off, xs, ys, tc2 int, noP, noQ bool) {
	for d := 0; d < 4; d++ {
		o := off + d*ys
		p3, p2, p1, p0 := int(pix[o-4*xs]), int(pix[o-3*xs]), int(pix[o-2*xs]), int(pix[o-xs])
		q0, q1, q2, q3 := int(pix[o]), int(pix[o+xs]), int(pix[o+2*xs]), int(pix[o+3*xs])
		if !noP {
			pix[o-xs] = T(p0 + clip3(-tc2, tc2, ((p2+2*p1+2*p0+2*q0+q1+4)>>3)-p0))
			pix[o-2*xs] = T(p1 + clip3(-tc2, tc2, ((p2+p1+p0+q0+2)>>2)-p1))
			pix[o-3*xs] = T(p2 + clip3(-tc2, tc2, ((2*p3+3*p2+p1+p0+q0+4)>>3)-p2))
		}
		if !noQ {
			pix[o] = T(q0 + clip3(-tc2, tc2, ((p1+2*p0+2*q0+2*q1+q2+4)>>3)-q0))
			pix[o+xs] = T(q1 + clip3(-tc2, tc2, ((p0+q0+q1+q2+2)>>2)-q1))
			pix[o+2*xs] = T(q2 + clip3(-tc2, tc2, ((2*q3+3*q2+q1+q0+p0+4)>>3)-q2))
		}
	}
}

// lumaWeak modifies at most two samples per side.
func lumaWeak[T Sample](pix []T, off, xs, ys, tc int, noP, noQ, ndP, ndQ bool, bitDepth int) {
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
			pix[o-xs] = clipPixel[T](p0+delta0, bitDepth)
		}
		if !noQ {
			pix[o] = clipPixel[T](q0-delta0, bitDepth)
		}
		if !noP && ndP {
			dp := clip3(-tcHalf, tcHalf, (((p2+p0+1)>>1)-p1+delta0)>>1)
			pix[o-2*xs] = clipPixel[T](p1+dp, bitDepth)
		}
		if !noQ && ndQ {
			dq := clip3(-tcHalf, tcHalf, (((q2+q0+1)>>1)-q1-delta0)>>1)
			pix[o+xs] = clipPixel[T](q1+dq, bitDepth)
		}
	}
}

// chromaEdge applies the chroma weak filter to both 4-line segments.
func chromaEdge[T Sample](pix []T, off, xs, ys int, e *ChromaEdge, bitDepth int) {
	for j := 0; j < 2; j++ {
		tc := e.Tc[j] << (bitDepth - 8)
		if tc <= 0 {
			continue
		}
		for d := 0; d < 4; d++ {
			o := off + (j*4+d)*ys
			p1, p0 := int(pix[o-2*xs]), int(pix[o-xs])
			q0, q1 := int(pix[o]), int(pix[o+xs])
			delta0 := clip3(-tc, tc, (((q0-p0)*4)+p1-q1+4)>>3)
			if !e.NoP[j] {
				pix[o-xs] = clipPixel[T](p0+delta0, bitDepth)
			}
			if !e.NoQ[j] {
				pix[o] = clipPixel[T](q0-delta0, bitDepth)
			}
		}
	}
}
