package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/deepteams/loopfilter"
)

// pictureFlags describe the picture format and block layout shared by every
// subcommand.
type pictureFlags struct {
	size     string
	depth    int
	format   string
	log2CTB  int
	log2CB   int
	log2TB   int
	tilesStr string
	tiles    [2]int

	acrossTiles bool
	noDeblock   bool
	cbOffset    int
	crOffset    int
}

func (pf *pictureFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&pf.size, "s", "1920x1080", "picture size WxH in luma samples")
	fs.IntVar(&pf.depth, "depth", 8, "bit depth: 8, 10 or 12")
	fs.StringVar(&pf.format, "fmt", "420", "chroma format: mono/420/422/444")
	fs.IntVar(&pf.log2CTB, "ctb", 6, "log2 CTB size 4-6")
	fs.IntVar(&pf.log2CB, "mincb", 3, "log2 minimum CB size")
	fs.IntVar(&pf.log2TB, "mintb", 2, "log2 minimum TB size")
	fs.StringVar(&pf.tilesStr, "tiles", "1x1", "uniform tile grid CxR")
	fs.BoolVar(&pf.acrossTiles, "across-tiles", true, "filter across tile borders")
	fs.BoolVar(&pf.noDeblock, "nodeblock", false, "disable the deblocking filter")
	fs.IntVar(&pf.cbOffset, "cb_qp_offset", 0, "Cb QP offset -12..12")
	fs.IntVar(&pf.crOffset, "cr_qp_offset", 0, "Cr QP offset -12..12")
}

// config returns the validated filter configuration for the flags.
func (pf *pictureFlags) config() (loopfilter.Config, error) {
	w, h, err := parsePair(pf.size)
	if err != nil {
		return loopfilter.Config{}, fmt.Errorf("picture size: %w", err)
	}
	format, err := loopfilter.ParseChromaFormat(pf.format)
	if err != nil {
		return loopfilter.Config{}, err
	}
	cols, rows, err := parsePair(pf.tilesStr)
	if err != nil {
		return loopfilter.Config{}, fmt.Errorf("tiles: %w", err)
	}
	pf.tiles = [2]int{cols, rows}
	cfg := loopfilter.Config{
		Width:                 w,
		Height:                h,
		BitDepth:              pf.depth,
		ChromaFormat:          format,
		Log2CTBSize:           pf.log2CTB,
		Log2MinCBSize:         pf.log2CB,
		Log2MinTBSize:         pf.log2TB,
		Log2MinPUSize:         pf.log2CB - 1,
		DeblockingDisabled:    pf.noDeblock,
		TilesEnabled:          cols*rows > 1,
		LoopFilterAcrossTiles: pf.acrossTiles,
		CbQPOffset:            pf.cbOffset,
		CrQPOffset:            pf.crOffset,
	}
	if err := cfg.Validate(); err != nil {
		return loopfilter.Config{}, err
	}
	g := cfg.Geometry()
	if cols > int(g.WidthCTBs()) || rows > int(g.HeightCTBs()) {
		return loopfilter.Config{}, fmt.Errorf("tiles: %dx%d does not fit %dx%d CTBs",
			cols, rows, g.WidthCTBs(), g.HeightCTBs())
	}
	return cfg, nil
}

// parsePair parses "AxB" into two positive integers.
func parsePair(s string) (int, int, error) {
	a, b, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%q is not of the form AxB", s)
	}
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, err
	}
	if x <= 0 || y <= 0 {
		return 0, 0, fmt.Errorf("%q: values must be positive", s)
	}
	return x, y, nil
}

// uniformSpacing splits n CTBs into k tiles the way uniform_spacing_flag
// does.
func uniformSpacing(n, k int) []int {
	sizes := make([]int, k)
	for i := range sizes {
		sizes[i] = (i+1)*n/k - i*n/k
	}
	return sizes
}

// newFilter allocates a filter for cfg and applies the tile layout.
func newFilter[T loopfilter.Sample](cfg loopfilter.Config, tiles [2]int) (*loopfilter.Filter[T], error) {
	f, err := loopfilter.New[T](cfg)
	if err != nil {
		return nil, err
	}
	if tiles[0]*tiles[1] > 1 {
		grid := f.Grid()
		if err := grid.SetTiles(uniformSpacing(grid.Width(), tiles[0]), uniformSpacing(grid.Height(), tiles[1])); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// codingFlags describe the block metadata synthesised for each picture.
// The tool has no bitstream to take them from.
type codingFlags struct {
	qp      int
	inter   bool
	log2TU  int
	sao     string
	eoClass int
	bandPos int
	offsets string

	saoOffsets [5]int16
}

func (cf *codingFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&cf.qp, "qp", 32, "luma QP of every block")
	fs.BoolVar(&cf.inter, "inter", false, "code blocks as inter prediction instead of intra")
	fs.IntVar(&cf.log2TU, "tu", 3, "log2 transform block size 3-5")
	fs.StringVar(&cf.sao, "sao", "off", "SAO mode: off/band/edge")
	fs.IntVar(&cf.eoClass, "eo", 0, "SAO edge class 0-3 (horizontal, vertical, 135, 45)")
	fs.IntVar(&cf.bandPos, "band", 12, "SAO first band 0-31")
	fs.StringVar(&cf.offsets, "offsets", "2,1,-1,-2", "four SAO offsets")
}

// validate checks the flags against cfg and enables SAO in cfg when used.
func (cf *codingFlags) validate(cfg *loopfilter.Config) error {
	if cf.qp < -cfg.QpBdOffset() || cf.qp > 51 {
		return fmt.Errorf("qp %d outside [%d, 51]", cf.qp, -cfg.QpBdOffset())
	}
	if cf.log2TU < 3 || cf.log2TU > min(5, cfg.Log2CTBSize) {
		return fmt.Errorf("tu %d outside [3, %d]", cf.log2TU, min(5, cfg.Log2CTBSize))
	}
	tu := 1 << cf.log2TU
	if cfg.Width%tu != 0 || cfg.Height%tu != 0 {
		return fmt.Errorf("picture size %dx%d is not a multiple of the transform size %d", cfg.Width, cfg.Height, tu)
	}
	switch cf.sao {
	case "off":
	case "band", "edge":
		cfg.SAOEnabled = true
	default:
		return fmt.Errorf("unknown SAO mode %q (use off/band/edge)", cf.sao)
	}
	if cf.eoClass < 0 || cf.eoClass > 3 {
		return fmt.Errorf("edge class %d", cf.eoClass)
	}
	if cf.bandPos < 0 || cf.bandPos > 31 {
		return fmt.Errorf("band position %d", cf.bandPos)
	}
	parts := strings.Split(cf.offsets, ",")
	if len(parts) != 4 {
		return fmt.Errorf("offsets: want 4 values, got %d", len(parts))
	}
	limit := (1 << (min(cfg.BitDepth, 10) - 5)) - 1
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("offsets: %w", err)
		}
		if v < -limit || v > limit {
			return fmt.Errorf("offset %d outside [%d, %d]", v, -limit, limit)
		}
		cf.saoOffsets[i+1] = int16(v)
	}
	return nil
}

// prepare writes the synthetic metadata and SAO parameters of one picture
// into f and derives the boundary strengths.
func prepare[T loopfilter.Sample](f *loopfilter.Filter[T], cf *codingFlags) {
	g := f.Geometry()
	m := f.Metadata()
	size := loopfilter.Luma(1) << cf.log2TU
	for y := loopfilter.Luma(0); y < g.Height; y += size {
		for x := loopfilter.Luma(0); x < g.Width; x += size {
			parity := int((x/size + y/size) % 2)
			if cf.inter {
				// Alternate between two motion vectors a full sample apart
				// so that every other edge has strength 1.
				mv := loopfilter.MV{X: int16(4 * parity)}
				m.SetMotion(x, y, size, size, loopfilter.Motion{Pred: loopfilter.PredL0, MV: [2]loopfilter.MV{mv}})
				m.SetCBF(x, y, cf.log2TU, parity == 0 && (y/size)%2 == 0)
			} else {
				m.SetIntra(x, y, size, size)
			}
			m.SetQP(x, y, cf.log2TU, cf.qp)
			f.DeriveBoundaryStrengths(x, y, cf.log2TU)
		}
	}
	if !f.Config().SAOEnabled {
		return
	}
	typ := loopfilter.SAOBand
	if cf.sao == "edge" {
		typ = loopfilter.SAOEdge
	}
	comps := f.Config().ChromaFormat.NumComponents()
	for y := 0; y < f.Grid().Height(); y++ {
		for x := 0; x < f.Grid().Width(); x++ {
			p := f.SAOParams(loopfilter.CTB(x), loopfilter.CTB(y))
			for c := 0; c < comps; c++ {
				p.Type[c] = typ
				p.EOClass[c] = cf.eoClass
				p.BandPosition[c] = cf.bandPos
				p.Offsets[c] = cf.saoOffsets
			}
		}
	}
}
