package filter

import (
	"fmt"

	"github.com/deepteams/loopfilter/internal/dsp"
	"github.com/deepteams/loopfilter/internal/picture"
)

// ProgressFunc receives the number of luma rows, counted from the top of
// the picture, that are final. Values strictly increase.
type ProgressFunc func(rows int)

// Filter runs the in-loop filters over one picture at a time. It is not
// safe for concurrent use; distinct Filters may run on distinct goroutines.
type Filter[T dsp.Sample] struct {
	cfg  Config
	geom picture.Geometry

	frame *picture.Frame[T]
	grid  *Grid
	meta  *Metadata
	vbs   *BSMap // vertical edges
	hbs   *BSMap // horizontal edges
	sao   []SAOParams
	cache *edgeCache[T]

	k *dsp.Kernels[T]

	reported int
}

// New validates cfg and allocates a filter with a zeroed picture.
func New[T dsp.Sample](cfg Config) (*Filter[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var zero T
	if _, ok := any(zero).(uint8); ok != (cfg.BitDepth == 8) {
		return nil, fmt.Errorf("%w: %T samples with bit depth %d", ErrInvalidConfig, zero, cfg.BitDepth)
	}
	cfg.setDefaults()

	f := &Filter[T]{cfg: cfg, geom: cfg.Geometry()}
	g := &f.geom
	f.frame = picture.NewFrame[T](cfg.Width, cfg.Height, cfg.ChromaFormat, cfg.BitDepth)
	f.grid = newGrid(g)
	f.meta = newMetadata(g)
	f.vbs = newBSMap(g.Width, g.Height)
	f.hbs = newBSMap(g.Width, g.Height)
	f.sao = make([]SAOParams, g.NumCTBs())
	f.cache = newEdgeCache(f.frame, int(g.WidthCTBs()), int(g.HeightCTBs()))
	f.k = dsp.For[T]()
	return f, nil
}

// Config returns the configuration with defaults applied.
func (f *Filter[T]) Config() Config { return f.cfg }

// Geometry returns the block geometry of the picture.
func (f *Filter[T]) Geometry() *picture.Geometry { return &f.geom }

// Frame returns the picture being filtered. The decoder writes
// reconstructed samples into its planes.
func (f *Filter[T]) Frame() *picture.Frame[T] { return f.frame }

// Grid returns the CTB slice and tile map.
func (f *Filter[T]) Grid() *Grid { return f.grid }

// Metadata returns the block metadata maps.
func (f *Filter[T]) Metadata() *Metadata { return f.meta }

// VerticalBS returns the boundary strengths of vertical edges.
func (f *Filter[T]) VerticalBS() *BSMap { return f.vbs }

// HorizontalBS returns the boundary strengths of horizontal edges.
func (f *Filter[T]) HorizontalBS() *BSMap { return f.hbs }

// SAOParams returns the SAO parameters of CTB (x, y).
func (f *Filter[T]) SAOParams(x, y picture.CTB) *SAOParams {
	return &f.sao[f.grid.addr(x, y)]
}

// Backend returns the kernel level in use.
func (f *Filter[T]) Backend() dsp.Level { return f.k.Level }

// UseKernels replaces the kernel set, typically with dsp.Scalar.
func (f *Filter[T]) UseKernels(k *dsp.Kernels[T]) { f.k = k }

// Reset prepares the filter for the next picture. Samples and the grid are
// kept; strengths, metadata, SAO parameters and progress are cleared.
func (f *Filter[T]) Reset() {
	f.vbs.Reset()
	f.hbs.Reset()
	f.meta.Reset()
	clear(f.sao)
	f.reported = 0
}

func (f *Filter[T]) report(progress ProgressFunc, rows int) {
	rows = min(rows, int(f.geom.Height))
	if rows <= f.reported {
		return
	}
	f.reported = rows
	if progress != nil {
		progress(rows)
	}
}

// Reported returns the last progress value signalled.
func (f *Filter[T]) Reported() int { return f.reported }
