package picture

// Distinct integer types keep the three coordinate systems of the filter
// apart: luma samples, coding-tree blocks and minimum prediction units.
type (
	Luma  int
	CTB   int
	MinPU int
)

// Geometry describes the block layout of a picture.
type Geometry struct {
	Width, Height Luma // picture size in luma samples
	Format        ChromaFormat

	Log2CTBSize   int
	Log2MinCBSize int
	Log2MinTBSize int
	Log2MinPUSize int
}

// CTBSize returns the CTB edge length in luma samples.
func (g *Geometry) CTBSize() Luma { return 1 << g.Log2CTBSize }

// WidthCTBs returns the number of CTB columns.
func (g *Geometry) WidthCTBs() CTB {
	return CTB((int(g.Width) + int(g.CTBSize()) - 1) >> g.Log2CTBSize)
}

// HeightCTBs returns the number of CTB rows.
func (g *Geometry) HeightCTBs() CTB {
	return CTB((int(g.Height) + int(g.CTBSize()) - 1) >> g.Log2CTBSize)
}

// NumCTBs returns the number of CTBs in the picture.
func (g *Geometry) NumCTBs() int { return int(g.WidthCTBs()) * int(g.HeightCTBs()) }

// CTBOf returns the CTB coordinate containing luma coordinate v.
func (g *Geometry) CTBOf(v Luma) CTB { return CTB(v >> g.Log2CTBSize) }

// LumaOfCTB returns the first luma coordinate of CTB coordinate c.
func (g *Geometry) LumaOfCTB(c CTB) Luma { return Luma(c) << g.Log2CTBSize }

// CTBAddr returns the raster address of CTB (x, y).
func (g *Geometry) CTBAddr(x, y CTB) int { return int(y)*int(g.WidthCTBs()) + int(x) }

// CTBExtent returns the width and height of CTB (x, y) in luma samples,
// clipped at the picture border.
func (g *Geometry) CTBExtent(x, y CTB) (w, h Luma) {
	x0, y0 := g.LumaOfCTB(x), g.LumaOfCTB(y)
	return min(g.CTBSize(), g.Width-x0), min(g.CTBSize(), g.Height-y0)
}

// MinPUOf returns the minimum-PU coordinate containing luma coordinate v.
func (g *Geometry) MinPUOf(v Luma) MinPU { return MinPU(v >> g.Log2MinPUSize) }

// MinPUWidth returns the number of minimum PUs per row.
func (g *Geometry) MinPUWidth() int { return int(g.Width) >> g.Log2MinPUSize }

// MinPUHeight returns the number of minimum-PU rows.
func (g *Geometry) MinPUHeight() int { return int(g.Height) >> g.Log2MinPUSize }

// MinPUIndex returns the index of the minimum PU covering luma (x, y).
func (g *Geometry) MinPUIndex(x, y Luma) int {
	return int(g.MinPUOf(y))*g.MinPUWidth() + int(g.MinPUOf(x))
}

// MinTBWidth returns the number of minimum TBs per row.
func (g *Geometry) MinTBWidth() int { return int(g.Width) >> g.Log2MinTBSize }

// MinTBHeight returns the number of minimum-TB rows.
func (g *Geometry) MinTBHeight() int { return int(g.Height) >> g.Log2MinTBSize }

// MinTUIndex returns the index of the minimum TB covering luma (x, y).
func (g *Geometry) MinTUIndex(x, y Luma) int {
	return int(y>>g.Log2MinTBSize)*g.MinTBWidth() + int(x>>g.Log2MinTBSize)
}

// MinCBWidth returns the number of minimum CBs per row.
func (g *Geometry) MinCBWidth() int { return int(g.Width) >> g.Log2MinCBSize }

// MinCBHeight returns the number of minimum-CB rows.
func (g *Geometry) MinCBHeight() int { return int(g.Height) >> g.Log2MinCBSize }

// MinCBIndex returns the index of the minimum CB covering luma (x, y).
func (g *Geometry) MinCBIndex(x, y Luma) int {
	return int(y>>g.Log2MinCBSize)*g.MinCBWidth() + int(x>>g.Log2MinCBSize)
}

// HShift returns the horizontal subsampling shift of component c.
func (g *Geometry) HShift(c int) int { return g.Format.HShift(c) }

// VShift returns the vertical subsampling shift of component c.
func (g *Geometry) VShift(c int) int { return g.Format.VShift(c) }

// Contains reports whether luma (x, y) lies inside the picture.
func (g *Geometry) Contains(x, y Luma) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}
