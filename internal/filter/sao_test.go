package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepteams/loopfilter/internal/dsp"
	"github.com/deepteams/loopfilter/internal/picture"
)

func saoConfig(w, h int) Config {
	cfg := testConfig(w, h)
	cfg.SAOEnabled = true
	return cfg
}

// columnPattern fills luma with 100 in even and 110 in odd columns.
func columnPattern(f *Filter[uint8]) {
	luma := f.Frame().Plane(0)
	for y := 0; y < luma.Height; y++ {
		for x := 0; x < luma.Width; x++ {
			luma.Set(x, y, uint8(100+10*(x%2)))
		}
	}
}

func edgeParams(p *SAOParams, eo int) {
	p.Type[0] = SAOEdge
	p.EOClass[0] = eo
	p.Offsets[0] = [5]int16{0, 2, 1, -1, -2}
}

func TestSAOBand(t *testing.T) {
	f := newFilter8(t, saoConfig(16, 16))
	f.Frame().Plane(0).Fill(100)
	p := f.SAOParams(0, 0)
	p.Type[0] = SAOBand
	p.BandPosition[0] = 12
	p.Offsets[0] = [5]int16{0, 3, 0, 0, 0}

	f.FilterPicture(nil)

	for _, v := range f.Frame().Plane(0).Pix {
		require.Equal(t, uint8(103), v)
	}
	assert.Equal(t, [3]SAOType{SAOApplied, SAOApplied, SAOApplied}, p.Type)
}

func TestSAOBandBypass(t *testing.T) {
	f := newFilter8(t, saoConfig(16, 16))
	f.Frame().Plane(0).Fill(100)
	f.Metadata().SetBypass(0, 0, 8, 8, true)
	p := f.SAOParams(0, 0)
	p.Type[0] = SAOBand
	p.BandPosition[0] = 12
	p.Offsets[0] = [5]int16{0, 3, 0, 0, 0}

	f.SAO(0, 0)

	luma := f.Frame().Plane(0)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			want := uint8(103)
			if x < 8 && y < 8 {
				want = 100
			}
			require.Equal(t, want, luma.At(x, y), "(%d, %d)", x, y)
		}
	}
}

func TestSAOAppliedOnce(t *testing.T) {
	f := newFilter8(t, saoConfig(16, 16))
	f.Frame().Plane(0).Fill(100)
	p := f.SAOParams(0, 0)
	p.Type[0] = SAOBand
	p.BandPosition[0] = 12
	p.Offsets[0] = [5]int16{0, 3, 0, 0, 0}

	f.SAO(0, 0)
	f.SAO(0, 0)
	assert.Equal(t, uint8(103), f.Frame().Plane(0).At(5, 5), "second pass is a no-op")
	require.Panics(t, func() { p.markApplied(0) })
}

func TestSAOOffBecomesApplied(t *testing.T) {
	f := newFilter8(t, saoConfig(32, 16))
	columnPattern(f)
	before := f.Frame().Clone()
	f.SAO(1, 0)
	assert.Equal(t, [3]SAOType{SAOApplied, SAOApplied, SAOApplied}, f.SAOParams(1, 0).Type)
	assert.Equal(t, SAOOff, f.SAOParams(0, 0).Type[0])
	assert.Equal(t, before.Plane(0).Pix, f.Frame().Plane(0).Pix)
}

func TestSAOInvalidParamsPanic(t *testing.T) {
	f := newFilter8(t, saoConfig(16, 16))
	p := f.SAOParams(0, 0)
	p.Type[0] = SAOBand
	p.Offsets[0][0] = 1
	require.Panics(t, func() { f.SAO(0, 0) })

	p.Offsets[0][0] = 0
	p.Type[0] = SAOEdge
	p.EOClass[0] = 4
	require.Panics(t, func() { f.SAO(0, 0) })
}

func TestSAOEdgePictureBorders(t *testing.T) {
	f := newFilter8(t, saoConfig(16, 16))
	columnPattern(f)
	edgeParams(f.SAOParams(0, 0), dsp.EOHorizontal)

	f.SAO(0, 0)

	luma := f.Frame().Plane(0)
	for y := 0; y < 16; y++ {
		assert.Equal(t, uint8(100), luma.At(0, y), "left border row %d", y)
		assert.Equal(t, uint8(110), luma.At(15, y), "right border row %d", y)
	}
	// Top and bottom rows do not matter to the horizontal class.
	assert.Equal(t, uint8(108), luma.At(1, 0))
	assert.Equal(t, uint8(102), luma.At(2, 15))

	g := newFilter8(t, saoConfig(16, 16))
	columnPattern(g)
	before := g.Frame().Clone()
	edgeParams(g.SAOParams(0, 0), dsp.EOVertical)
	g.SAO(0, 0)
	assert.Equal(t, before.Plane(0).Pix, g.Frame().Plane(0).Pix, "flat columns")
}

// centreSlice isolates CTB (1, 1) of a 3x3 CTB picture in its own slice
// that does not filter across slice borders.
func centreSlice(t *testing.T) (*Filter[uint8], *Slice) {
	f := newFilter8(t, saoConfig(48, 48))
	columnPattern(f)
	s := &Slice{Addr: 4}
	f.Grid().SetSlice(4, s)
	edgeParams(f.SAOParams(1, 1), dsp.EODiag135)
	return f, s
}

func TestSAOEdgeSliceBorders(t *testing.T) {
	f, _ := centreSlice(t)
	before := f.Frame().Clone()
	f.SAO(1, 1)

	luma := f.Frame().Plane(0)
	assert.Equal(t, uint8(100), luma.At(16, 16), "upper-left corner")
	assert.Equal(t, uint8(108), luma.At(17, 17))
	assert.Equal(t, uint8(102), luma.At(18, 17))
	assert.Equal(t, uint8(110), luma.At(31, 20), "right column")
	assert.Equal(t, uint8(110), luma.At(21, 31), "bottom row")
	assert.Equal(t, uint8(108), luma.At(29, 30))
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			if x >= 16 && x < 32 && y >= 16 && y < 32 {
				continue
			}
			require.Equal(t, before.Plane(0).At(x, y), luma.At(x, y), "neighbour CTB at (%d, %d)", x, y)
		}
	}
}

func TestSAOEdgeSliceCornerSaved(t *testing.T) {
	f, s := centreSlice(t)
	// The upper-left neighbour shares the slice, so the corner sample
	// reads across the diagonal while the rest of the first row and
	// column stay unfiltered.
	f.Grid().SetSlice(0, s)
	f.SAO(1, 1)

	luma := f.Frame().Plane(0)
	assert.Equal(t, uint8(102), luma.At(16, 16))
	assert.Equal(t, uint8(100), luma.At(16, 17))
	assert.Equal(t, uint8(110), luma.At(17, 16))
}

func TestSAOEdgeUsesPreSAONeighbours(t *testing.T) {
	// Filtering the left CTB first must not change how the right CTB
	// classifies its first column.
	run := func(order []picture.CTB) []uint8 {
		f := newFilter8(t, saoConfig(32, 16))
		columnPattern(f)
		edgeParams(f.SAOParams(0, 0), dsp.EOHorizontal)
		edgeParams(f.SAOParams(1, 0), dsp.EOHorizontal)
		for _, x := range order {
			f.SAO(x, 0)
		}
		return f.Frame().Plane(0).Pix
	}
	a := run([]picture.CTB{0, 1})
	b := run([]picture.CTB{1, 0})
	require.Equal(t, a, b)
	for y := 0; y < 16; y++ {
		assert.Equal(t, uint8(102), a[y*32+16], "row %d", y)
		assert.Equal(t, uint8(108), a[y*32+15], "row %d", y)
	}
}

func TestSAOChroma(t *testing.T) {
	f := newFilter8(t, saoConfig(16, 16))
	cb := f.Frame().Plane(1)
	cb.Fill(200)
	p := f.SAOParams(0, 0)
	p.Type[1] = SAOBand
	p.BandPosition[1] = 25
	p.Offsets[1] = [5]int16{0, -4, 0, 0, 0}
	f.SAO(0, 0)
	for _, v := range cb.Pix {
		require.Equal(t, uint8(196), v)
	}
	for _, v := range f.Frame().Plane(2).Pix {
		require.Equal(t, uint8(0), v)
	}
}

func TestSAOBordersTruthTable(t *testing.T) {
	// CTB (1, 1) of a 3x3 CTB picture. other names a neighbour, by raster
	// address, that sits in a different slice; -1 keeps one slice.
	tests := []struct {
		name       string
		lfase      bool
		other      int
		cols, rows []int
		enabled    bool
		across     bool
		vert       [2]bool
		horiz      [2]bool
		diag       [4]bool
	}{
		{name: "one slice one tile", lfase: false, other: -1},
		{name: "upper-left slice", lfase: false, other: 0,
			diag: [4]bool{true, false, false, false}},
		{name: "upper-left slice filtered across", lfase: true, other: 0},
		{name: "upper-right slice", lfase: false, other: 2,
			diag: [4]bool{false, true, false, false}},
		{name: "lower-right slice", lfase: false, other: 8,
			diag: [4]bool{false, false, true, false}},
		{name: "lower-left slice", lfase: false, other: 6,
			diag: [4]bool{false, false, false, true}},
		{name: "left slice", lfase: false, other: 3,
			vert: [2]bool{true, false}},
		{name: "bottom slice", lfase: false, other: 7,
			horiz: [2]bool{false, true}},
		{name: "tiles left and up", lfase: true, other: -1,
			cols: []int{1, 2}, rows: []int{1, 2}, enabled: true,
			vert: [2]bool{true, false}, horiz: [2]bool{true, false},
			diag: [4]bool{true, true, false, true}},
		{name: "tiles left and up filtered across", lfase: true, other: -1,
			cols: []int{1, 2}, rows: []int{1, 2}, enabled: true, across: true},
		{name: "tiles left and up not enabled", lfase: true, other: -1,
			cols: []int{1, 2}, rows: []int{1, 2}},
		{name: "tile right with lower-left slice", lfase: false, other: 6,
			cols: []int{2, 1}, rows: []int{3}, enabled: true,
			vert: [2]bool{false, true},
			diag: [4]bool{false, true, true, true}},
		{name: "tile right with lower-left slice filtered across slices", lfase: true, other: 6,
			cols: []int{2, 1}, rows: []int{3}, enabled: true,
			vert: [2]bool{false, true},
			diag: [4]bool{false, true, true, false}},
		{name: "tile below with upper-left slice", lfase: false, other: 0,
			cols: []int{3}, rows: []int{2, 1}, enabled: true,
			horiz: [2]bool{false, true},
			diag:  [4]bool{true, false, true, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := saoConfig(48, 48)
			cfg.TilesEnabled = tt.enabled
			cfg.LoopFilterAcrossTiles = tt.across
			f := newFilter8(t, cfg)
			grid := f.Grid()
			s := &Slice{Addr: 4, LoopFilterAcrossSlices: tt.lfase}
			for i := 0; i < 9; i++ {
				grid.SetSlice(i, s)
			}
			if tt.other >= 0 {
				grid.SetSlice(tt.other, &Slice{Addr: 9, LoopFilterAcrossSlices: true})
			}
			if tt.cols != nil {
				require.NoError(t, grid.SetTiles(tt.cols, tt.rows))
			}

			b := f.saoBorders(1, 1)
			assert.Equal(t, [4]bool{}, b.edges)
			assert.Equal(t, tt.vert, b.vert, "left, right")
			assert.Equal(t, tt.horiz, b.horiz, "top, bottom")
			assert.Equal(t, tt.diag, b.diag, "upper-left, upper-right, lower-right, lower-left")
		})
	}
}

func TestSAOBordersPictureCorner(t *testing.T) {
	f := newFilter8(t, saoConfig(48, 48))
	f.Grid().SetSlice(0, &Slice{Addr: 0})
	f.Grid().SetSlice(1, &Slice{Addr: 1})
	f.Grid().SetSlice(4, &Slice{Addr: 4})
	b := f.saoBorders(0, 0)
	assert.Equal(t, [4]bool{true, true, false, false}, b.edges)
	assert.Equal(t, [2]bool{false, true}, b.vert)
	assert.Equal(t, [2]bool{}, b.horiz)
	assert.Equal(t, [4]bool{false, false, true, false}, b.diag, "corners outside the picture stay clear")
}

func TestSAOEdgeTileCorner(t *testing.T) {
	// CTB (1, 1) starts a tile whose left and upper neighbours lie in other
	// tiles. All CTBs share one slice.
	run := func(across bool) *picture.Plane[uint8] {
		cfg := saoConfig(48, 48)
		cfg.TilesEnabled = true
		cfg.LoopFilterAcrossTiles = across
		f := newFilter8(t, cfg)
		require.NoError(t, f.Grid().SetTiles([]int{1, 2}, []int{1, 2}))
		columnPattern(f)
		edgeParams(f.SAOParams(1, 1), dsp.EODiag135)
		f.SAO(1, 1)
		return f.Frame().Plane(0)
	}

	closed := run(false)
	assert.Equal(t, uint8(100), closed.At(16, 16), "upper-left corner")
	assert.Equal(t, uint8(100), closed.At(16, 17), "left column")
	assert.Equal(t, uint8(110), closed.At(17, 16), "top row")
	assert.Equal(t, uint8(108), closed.At(17, 17))
	assert.Equal(t, uint8(102), closed.At(18, 17))

	open := run(true)
	assert.Equal(t, uint8(102), open.At(16, 16), "corner reads the upper-left tile")
	assert.Equal(t, uint8(102), open.At(16, 17))
	assert.Equal(t, uint8(108), open.At(17, 16))
	assert.Equal(t, uint8(108), open.At(17, 17))
}
