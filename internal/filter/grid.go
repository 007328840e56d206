package filter

import (
	"fmt"

	"github.com/deepteams/loopfilter/internal/picture"
)

// RefPicLists holds the two reference picture lists of a slice. Entries
// identify pictures, typically by POC; two references are the same picture
// exactly when their identities are equal.
type RefPicLists [2][]int32

// Slice carries the slice-header values the filters read per CTB.
type Slice struct {
	Addr int // slice segment address; CTBs of one slice share it

	TcOffset   int // slice_tc_offset_div2 * 2
	BetaOffset int // slice_beta_offset_div2 * 2

	LoopFilterAcrossSlices bool
	DeblockingDisabled     bool

	RefPicLists RefPicLists
}

// ref returns the identity of reference idx in list l. A negative index or
// one past the list end yields -1, which matches no picture but itself.
func (s *Slice) ref(l int, idx int8) int32 {
	if idx < 0 || int(idx) >= len(s.RefPicLists[l]) {
		return -1
	}
	return s.RefPicLists[l][idx]
}

// Grid maps every CTB to its slice and tile. It is written by the decoder
// before the CTB is filtered and read-only during filtering.
type Grid struct {
	geom   *picture.Geometry
	width  int // in CTBs
	height int

	slices []*Slice
	tileID []int // per raster address
	rsToTs []int
	tsToRs []int
	colBd  []int // tile column boundaries in CTBs, len = columns+1
	rowBd  []int
}

func newGrid(geom *picture.Geometry) *Grid {
	g := &Grid{
		geom:   geom,
		width:  int(geom.WidthCTBs()),
		height: int(geom.HeightCTBs()),
	}
	n := g.width * g.height
	g.slices = make([]*Slice, n)
	g.tileID = make([]int, n)
	g.rsToTs = make([]int, n)
	g.tsToRs = make([]int, n)
	def := &Slice{LoopFilterAcrossSlices: true}
	for i := range g.slices {
		g.slices[i] = def
	}
	if err := g.SetTiles([]int{g.width}, []int{g.height}); err != nil {
		panic(err)
	}
	return g
}

// Width returns the number of CTB columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of CTB rows.
func (g *Grid) Height() int { return g.height }

func (g *Grid) addr(x, y picture.CTB) int {
	if x < 0 || y < 0 || int(x) >= g.width || int(y) >= g.height {
		panic(fmt.Sprintf("filter: CTB (%d, %d) outside %dx%d grid", x, y, g.width, g.height))
	}
	return int(y)*g.width + int(x)
}

// SetSlice assigns s to the CTB at raster address addr.
func (g *Grid) SetSlice(addr int, s *Slice) {
	g.slices[addr] = s
}

// SetSliceRange assigns s to count CTBs in tile-scan order starting at the
// CTB with raster address first, the way slice segments cover a picture.
func (g *Grid) SetSliceRange(first, count int, s *Slice) {
	ts := g.rsToTs[first]
	for i := 0; i < count && ts+i < len(g.tsToRs); i++ {
		g.slices[g.tsToRs[ts+i]] = s
	}
}

// Slice returns the slice of CTB (x, y).
func (g *Grid) Slice(x, y picture.CTB) *Slice {
	return g.slices[g.addr(x, y)]
}

// SliceAddr returns the slice address of CTB (x, y).
func (g *Grid) SliceAddr(x, y picture.CTB) int {
	return g.slices[g.addr(x, y)].Addr
}

// TileID returns the tile index of CTB (x, y) in tile raster order.
func (g *Grid) TileID(x, y picture.CTB) int {
	return g.tileID[g.addr(x, y)]
}

// SetTiles partitions the grid into tiles. cols and rows give the tile
// widths and heights in CTBs and must sum to the grid size.
func (g *Grid) SetTiles(cols, rows []int) error {
	colBd, err := boundaries(cols, g.width)
	if err != nil {
		return fmt.Errorf("tile columns: %w", err)
	}
	rowBd, err := boundaries(rows, g.height)
	if err != nil {
		return fmt.Errorf("tile rows: %w", err)
	}
	g.colBd, g.rowBd = colBd, rowBd

	for rs := range g.rsToTs {
		x, y := rs%g.width, rs/g.width
		tx, ty := tileIndex(colBd, x), tileIndex(rowBd, y)
		ts := 0
		for i := 0; i < tx; i++ {
			ts += rows[ty] * cols[i]
		}
		for j := 0; j < ty; j++ {
			ts += g.width * rows[j]
		}
		ts += (y-rowBd[ty])*cols[tx] + x - colBd[tx]
		g.rsToTs[rs] = ts
		g.tsToRs[ts] = rs
		g.tileID[rs] = ty*len(cols) + tx
	}
	return nil
}

// DecodeOrder returns the raster addresses of all CTBs in tile-scan order.
func (g *Grid) DecodeOrder() []int {
	out := make([]int, len(g.tsToRs))
	copy(out, g.tsToRs)
	return out
}

func boundaries(sizes []int, total int) ([]int, error) {
	bd := make([]int, len(sizes)+1)
	for i, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("%w: tile size %d", ErrInvalidConfig, s)
		}
		bd[i+1] = bd[i] + s
	}
	if bd[len(sizes)] != total {
		return nil, fmt.Errorf("%w: tile sizes sum to %d, want %d", ErrInvalidConfig, bd[len(sizes)], total)
	}
	return bd, nil
}

func tileIndex(bd []int, v int) int {
	i := 0
	for v >= bd[i+1] {
		i++
	}
	return i
}

// sliceEdge reports whether CTB (x, y) and its neighbour (nx, ny) belong to
// different slices.
func (g *Grid) sliceEdge(x, y, nx, ny picture.CTB) bool {
	return g.SliceAddr(x, y) != g.SliceAddr(nx, ny)
}

// tileEdge reports whether CTB (x, y) and its neighbour lie in different
// tiles.
func (g *Grid) tileEdge(x, y, nx, ny picture.CTB) bool {
	return g.TileID(x, y) != g.TileID(nx, ny)
}
