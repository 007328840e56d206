package filter

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepteams/loopfilter/internal/picture"
)

// testConfig returns an 8-bit 4:2:0 configuration with 16x16 CTBs.
func testConfig(w, h int) Config {
	return Config{
		Width:         w,
		Height:        h,
		BitDepth:      8,
		ChromaFormat:  picture.Chroma420,
		Log2CTBSize:   4,
		Log2MinCBSize: 3,
		Log2MinTBSize: 2,
	}
}

func newFilter8(t *testing.T, cfg Config) *Filter[uint8] {
	t.Helper()
	f, err := New[uint8](cfg)
	require.NoError(t, err)
	return f
}

// fillPlanes writes a slowly varying random walk into every plane so that
// deblocking decisions reach both filters.
func fillPlanes[T picture.Sample](rng *rand.Rand, fr *picture.Frame[T]) {
	maxV := fr.MaxValue()
	for _, p := range fr.Planes {
		if p == nil {
			continue
		}
		v := rng.Intn(maxV + 1)
		for i := range p.Pix {
			if i%p.Stride == 0 && rng.Intn(2) == 0 {
				v = rng.Intn(maxV + 1)
			}
			v = min(maxV, max(0, v+rng.Intn(9)-4))
			p.Pix[i] = T(v)
		}
	}
}

// setIntraQP marks the whole picture intra with one QP and derives the
// strengths of every 8x8 transform block.
func setIntraQP[T picture.Sample](f *Filter[T], qp int) {
	g := f.Geometry()
	m := f.Metadata()
	for y := picture.Luma(0); y < g.Height; y += 8 {
		for x := picture.Luma(0); x < g.Width; x += 8 {
			m.SetIntra(x, y, 8, 8)
			m.SetQP(x, y, 3, qp)
		}
	}
	for y := picture.Luma(0); y < g.Height; y += 8 {
		for x := picture.Luma(0); x < g.Width; x += 8 {
			f.DeriveBoundaryStrengths(x, y, 3)
		}
	}
}

// randomPicture fills samples, metadata, slices and SAO parameters of f from
// the seed. Two filters prepared with the same seed hold identical inputs.
func randomPicture[T picture.Sample](f *Filter[T], seed int64) {
	rng := rand.New(rand.NewSource(seed))
	fillPlanes(rng, f.Frame())
	g := f.Geometry()
	m := f.Metadata()
	grid := f.Grid()

	refs := RefPicLists{{0, 4, 8}, {8, 4}}
	first := &Slice{Addr: 0, LoopFilterAcrossSlices: true, RefPicLists: refs}
	second := &Slice{
		Addr:                   grid.Width() + 1,
		TcOffset:               2 * (rng.Intn(7) - 3),
		BetaOffset:             2 * (rng.Intn(7) - 3),
		LoopFilterAcrossSlices: rng.Intn(2) == 0,
		RefPicLists:            RefPicLists{{4, 0}, {8}},
	}
	n := grid.Width() * grid.Height()
	grid.SetSliceRange(0, second.Addr, first)
	grid.SetSliceRange(second.Addr, n-second.Addr, second)

	randomMotion := func() Motion {
		mv := Motion{Pred: PredMode(rng.Intn(4))}
		for l := 0; l < 2; l++ {
			mv.MV[l] = MV{int16(rng.Intn(17) - 8), int16(rng.Intn(17) - 8)}
			mv.RefIdx[l] = int8(rng.Intn(2))
		}
		return mv
	}

	type tu struct {
		x, y picture.Luma
		log2 int
	}
	var tus []tu
	for y := picture.Luma(0); y < g.Height; y += 16 {
		for x := picture.Luma(0); x < g.Width; x += 16 {
			if x+16 <= g.Width && y+16 <= g.Height && rng.Intn(3) == 0 {
				// One inter 16x16 transform with four prediction blocks.
				mv := randomMotion()
				if mv.Pred == PredIntra {
					mv.Pred = PredBi
				}
				m.SetMotion(x, y, 16, 16, mv)
				for j := picture.Luma(0); j < 16; j += 8 {
					for i := picture.Luma(0); i < 16; i += 8 {
						if rng.Intn(2) == 0 {
							mv := randomMotion()
							mv.Pred |= PredL0
							m.SetMotion(x+i, y+j, 8, 8, mv)
						}
					}
				}
				m.SetQP(x, y, 4, 20+rng.Intn(26))
				m.SetCBF(x, y, 4, rng.Intn(2) == 0)
				tus = append(tus, tu{x, y, 4})
				continue
			}
			for j := picture.Luma(0); j < 16 && y+j < g.Height; j += 8 {
				for i := picture.Luma(0); i < 16 && x+i < g.Width; i += 8 {
					m.SetMotion(x+i, y+j, 8, 8, randomMotion())
					m.SetQP(x+i, y+j, 3, 20+rng.Intn(26))
					m.SetCBF(x+i, y+j, 3, rng.Intn(3) == 0)
					if rng.Intn(20) == 0 {
						m.SetBypass(x+i, y+j, 8, 8, true)
					}
					tus = append(tus, tu{x + i, y + j, 3})
				}
			}
		}
	}
	for _, b := range tus {
		f.DeriveBoundaryStrengths(b.x, b.y, b.log2)
	}

	comps := f.Config().ChromaFormat.NumComponents()
	for cy := 0; cy < grid.Height(); cy++ {
		for cx := 0; cx < grid.Width(); cx++ {
			p := f.SAOParams(picture.CTB(cx), picture.CTB(cy))
			for c := 0; c < comps; c++ {
				p.Type[c] = SAOType(rng.Intn(3))
				p.BandPosition[c] = rng.Intn(32)
				p.EOClass[c] = rng.Intn(4)
				for k := 1; k < 5; k++ {
					p.Offsets[c][k] = int16(rng.Intn(15) - 7)
				}
			}
		}
	}
}

func TestNewRejectsMismatchedSampleType(t *testing.T) {
	cfg := testConfig(32, 32)
	_, err := New[uint16](cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)

	cfg.BitDepth = 10
	_, err = New[uint8](cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)

	f, err := New[uint16](cfg)
	require.NoError(t, err)
	require.Equal(t, 2, f.Config().Log2MinPUSize)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"zero width", func(c *Config) { c.Width = 0 }, false},
		{"bit depth 9", func(c *Config) { c.BitDepth = 9 }, false},
		{"bad chroma", func(c *Config) { c.ChromaFormat = 7 }, false},
		{"ctb 8", func(c *Config) { c.Log2CTBSize = 3 }, false},
		{"ctb 128", func(c *Config) { c.Log2CTBSize = 7 }, false},
		{"min cb above ctb", func(c *Config) { c.Log2MinCBSize = 5 }, false},
		{"min tb above cb", func(c *Config) { c.Log2MinTBSize = 4 }, false},
		{"min pu 1", func(c *Config) { c.Log2MinPUSize = 1 }, false},
		{"width not cb aligned", func(c *Config) { c.Width = 36 }, false},
		{"cb qp offset", func(c *Config) { c.CbQPOffset = 13 }, false},
		{"444 12-bit", func(c *Config) { c.ChromaFormat = picture.Chroma444; c.BitDepth = 12 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(32, 32)
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestGridTiles(t *testing.T) {
	f := newFilter8(t, testConfig(48, 48))
	grid := f.Grid()
	require.NoError(t, grid.SetTiles([]int{2, 1}, []int{1, 2}))
	require.Equal(t, []int{0, 1, 2, 3, 4, 6, 7, 5, 8}, grid.DecodeOrder())
	require.Equal(t, 3, grid.TileID(2, 1))
	require.Equal(t, 2, grid.TileID(0, 2))
	require.True(t, grid.tileEdge(1, 1, 2, 1))
	require.False(t, grid.tileEdge(0, 1, 1, 2))

	require.ErrorIs(t, grid.SetTiles([]int{2, 2}, []int{3}), ErrInvalidConfig)
	require.ErrorIs(t, grid.SetTiles([]int{3, 0}, []int{3}), ErrInvalidConfig)

	s := &Slice{Addr: 4}
	grid.SetSliceRange(3, 4, s)
	for _, rs := range []int{3, 4, 6, 7} {
		require.Equal(t, 4, grid.SliceAddr(picture.CTB(rs%3), picture.CTB(rs/3)), "rs %d", rs)
	}
	require.Equal(t, 0, grid.SliceAddr(2, 1))
}

func TestGridOutOfRangePanics(t *testing.T) {
	f := newFilter8(t, testConfig(32, 32))
	require.Panics(t, func() { f.Grid().Slice(2, 0) })
	require.Panics(t, func() { f.SAO(0, -1) })
	require.Panics(t, func() { f.FilterCTB(5, 5, nil) })
}

func TestResetClearsPictureState(t *testing.T) {
	f := newFilter8(t, testConfig(32, 32))
	setIntraQP(f, 30)
	f.SAOParams(0, 0).Type[0] = SAOBand
	f.FilterPicture(nil)
	require.Equal(t, 32, f.Reported())

	f.Reset()
	require.Equal(t, 0, f.Reported())
	require.Equal(t, SAOOff, f.SAOParams(0, 0).Type[0])
	require.Equal(t, uint8(0), f.VerticalBS().At(8, 0))
	require.NotPanics(t, func() { setIntraQP(f, 30) })
}
