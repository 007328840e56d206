package filter

import (
	"github.com/deepteams/loopfilter/internal/dsp"
	"github.com/deepteams/loopfilter/internal/picture"
)

// edgeCache keeps the pre-SAO border samples of every CTB that has been
// through SAO, so that neighbours filtered later still classify against
// unmodified samples. Per component, h holds two rows per CTB row (its top
// and bottom row) and v two columns per CTB column (left and right).
type edgeCache[T dsp.Sample] struct {
	h, v  [3][]T
	w, ht [3]int // plane size per component
}

func newEdgeCache[T dsp.Sample](frame *picture.Frame[T], ctbW, ctbH int) *edgeCache[T] {
	c := &edgeCache[T]{}
	for i, p := range frame.Planes {
		if p == nil {
			continue
		}
		c.w[i], c.ht[i] = p.Width, p.Height
		c.h[i] = make([]T, 2*ctbH*p.Width)
		c.v[i] = make([]T, 2*ctbW*p.Height)
	}
	return c
}

// row returns cache row r (2*ctbY for a top row, 2*ctbY+1 for a bottom row)
// of component c.
func (c *edgeCache[T]) row(comp, r int) []T {
	w := c.w[comp]
	return c.h[comp][r*w : (r+1)*w]
}

// col returns cache column k (2*ctbX for a left column, 2*ctbX+1 for a
// right column) of component c.
func (c *edgeCache[T]) col(comp, k int) []T {
	h := c.ht[comp]
	return c.v[comp][k*h : (k+1)*h]
}

// store saves the border samples of the width x height block at (x0, y0)
// of plane p, component comp, belonging to CTB (ctbX, ctbY).
func (c *edgeCache[T]) store(p *picture.Plane[T], comp, ctbX, ctbY, x0, y0, width, height int) {
	copy(c.row(comp, 2*ctbY)[x0:x0+width], p.Row(y0)[x0:x0+width])
	copy(c.row(comp, 2*ctbY+1)[x0:x0+width], p.Row(y0 + height - 1)[x0:x0+width])
	left, right := c.col(comp, 2*ctbX), c.col(comp, 2*ctbX+1)
	for y := y0; y < y0+height; y++ {
		r := p.Row(y)
		left[y] = r[x0]
		right[y] = r[x0+width-1]
	}
}
