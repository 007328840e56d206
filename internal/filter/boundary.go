package filter

import "github.com/deepteams/loopfilter/internal/picture"

// DeriveBoundaryStrengths computes the strengths of the top and left edges
// of the transform block of size 1<<log2TrafoSize at (x0, y0), and of the
// prediction-block edges inside it. The decoder calls it once per
// transform block (or once per coding block for skipped and PCM blocks)
// after writing that block's metadata.
func (f *Filter[T]) DeriveBoundaryStrengths(x0, y0 picture.Luma, log2TrafoSize int) {
	g := &f.geom
	ctbX, ctbY := g.CTBOf(x0), g.CTBOf(y0)
	cur := f.grid.Slice(ctbX, ctbY)
	if f.cfg.DeblockingDisabled || cur.DeblockingDisabled {
		return
	}
	size := picture.Luma(1) << log2TrafoSize
	ctbMask := g.CTBSize() - 1
	m := f.meta

	upper := y0 > 0 && y0&7 == 0
	if upper && y0&ctbMask == 0 {
		upper = !f.edgeSuppressed(cur, ctbX, ctbY, ctbX, ctbY-1)
	}
	if upper {
		top := f.grid.Slice(ctbX, g.CTBOf(y0-1))
		for i := picture.Luma(0); i < size; i += 4 {
			x := x0 + i
			bs := f.strength(x, y0, x, y0-1, cur, top)
			f.hbs.Set(x, y0, bs)
		}
	}

	left := x0 > 0 && x0&7 == 0
	if left && x0&ctbMask == 0 {
		left = !f.edgeSuppressed(cur, ctbX, ctbY, ctbX-1, ctbY)
	}
	if left {
		nb := f.grid.Slice(g.CTBOf(x0-1), ctbY)
		for i := picture.Luma(0); i < size; i += 4 {
			y := y0 + i
			bs := f.strength(x0, y, x0-1, y, cur, nb)
			f.vbs.Set(x0, y, bs)
		}
	}

	if log2TrafoSize <= g.Log2MinPUSize || m.Motion(x0, y0).Pred == PredIntra {
		return
	}
	// Prediction-block edges inside the transform block.
	for j := picture.Luma(8); j < size; j += 8 {
		for i := picture.Luma(0); i < size; i += 4 {
			x, y := x0+i, y0+j
			f.hbs.Set(x, y, boundaryStrength(m.Motion(x, y), m.Motion(x, y-1), cur, cur))
		}
	}
	for j := picture.Luma(0); j < size; j += 4 {
		for i := picture.Luma(8); i < size; i += 8 {
			x, y := x0+i, y0+j
			f.vbs.Set(x, y, boundaryStrength(m.Motion(x, y), m.Motion(x-1, y), cur, cur))
		}
	}
}

// edgeSuppressed reports whether the CTB edge between (x, y) and its
// neighbour must not be filtered.
func (f *Filter[T]) edgeSuppressed(cur *Slice, x, y, nx, ny picture.CTB) bool {
	if !cur.LoopFilterAcrossSlices && f.grid.sliceEdge(x, y, nx, ny) {
		return true
	}
	return f.cfg.tileEdgesClosed() && f.grid.tileEdge(x, y, nx, ny)
}

// strength derives the strength of a transform edge between the Q sample
// (qx, qy) and the P sample (px, py).
func (f *Filter[T]) strength(qx, qy, px, py picture.Luma, qs, ps *Slice) uint8 {
	m := f.meta
	q, p := m.Motion(qx, qy), m.Motion(px, py)
	switch {
	case q.Pred == PredIntra || p.Pred == PredIntra:
		return 2
	case m.CBF(qx, qy) || m.CBF(px, py):
		return 1
	}
	return boundaryStrength(q, p, qs, ps)
}

// boundaryStrength compares the motion of the current block q and its
// neighbour p, both inter predicted. Reference indices resolve through the
// lists of each block's own slice.
func boundaryStrength(q, p *Motion, qs, ps *Slice) uint8 {
	switch {
	case q.Pred == PredBi && p.Pred == PredBi:
		q0, q1 := qs.ref(0, q.RefIdx[0]), qs.ref(1, q.RefIdx[1])
		p0, p1 := ps.ref(0, p.RefIdx[0]), ps.ref(1, p.RefIdx[1])
		same := !p.MV[0].far(q.MV[0]) && !p.MV[1].far(q.MV[1])
		swapped := !p.MV[1].far(q.MV[0]) && !p.MV[0].far(q.MV[1])
		switch {
		case p0 == q0 && q0 == q1 && p0 == p1:
			// Both blocks use one picture twice: either pairing may match.
			if same || swapped {
				return 0
			}
			return 1
		case p0 == q0 && p1 == q1:
			if same {
				return 0
			}
			return 1
		case p1 == q0 && p0 == q1:
			if swapped {
				return 0
			}
			return 1
		default:
			return 1
		}

	case q.Pred != PredBi && p.Pred != PredBi:
		qmv, qref := q.effective(qs)
		pmv, pref := p.effective(ps)
		if qref == pref && !qmv.far(pmv) {
			return 0
		}
		return 1

	default:
		return 1
	}
}

// effective returns the single motion vector and reference of a
// uni-predicted block.
func (m *Motion) effective(s *Slice) (MV, int32) {
	if m.Pred&PredL0 != 0 {
		return m.MV[0], s.ref(0, m.RefIdx[0])
	}
	return m.MV[1], s.ref(1, m.RefIdx[1])
}
