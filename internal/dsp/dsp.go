// Package dsp provides the sample-level kernels of the HEVC in-loop filters:
// luma/chroma deblocking edge filters and SAO band/edge correction.
//
// All kernels use a full-buffer + base-offset approach so that
// "negative-context" access (e.g. pix[off-4*xstride]) always resolves to a
// valid non-negative index within the buffer.
package dsp

import (
	"os"
	"strconv"

	"github.com/deepteams/loopfilter/internal/picture"
)

// Sample is the sample type the kernels operate on.
type Sample = picture.Sample

// LumaEdge carries the per-edge decision inputs of the luma deblocking
// filter. Beta and Tc are unscaled table values; kernels scale them to the
// bit depth.
type LumaEdge struct {
	Beta int
	Tc   [2]int  // one per 4-line segment, 0 disables the segment
	NoP  [2]bool // P side must not be modified
	NoQ  [2]bool // Q side must not be modified
}

// ChromaEdge carries the per-edge inputs of the chroma deblocking filter.
type ChromaEdge struct {
	Tc  [2]int
	NoP [2]bool
	NoQ [2]bool
}

// LumaEdgeFunc filters one 8-line luma edge. off addresses the first Q0
// sample; xstride steps across the edge and ystride along it.
type LumaEdgeFunc[T Sample] func(pix []T, off, xstride, ystride int, e *LumaEdge, bitDepth int)

// ChromaEdgeFunc filters one 8-line chroma edge.
type ChromaEdgeFunc[T Sample] func(pix []T, off, xstride, ystride int, e *ChromaEdge, bitDepth int)

// SAOBandFunc applies band offsets from src to dst over a width x height block.
type SAOBandFunc[T Sample] func(dst []T, dstOff, dstStride int, src []T, srcOff, srcStride int,
	offsets *[5]int16, bandPos, width, height, bitDepth int)

// SAOEdgeFunc applies edge offsets. src must provide one sample of context
// on every side of the block.
type SAOEdgeFunc[T Sample] func(dst []T, dstOff, dstStride int, src []T, srcOff, srcStride int,
	offsets *[5]int16, eoClass, width, height, bitDepth int)

// Kernels is one backend: a complete set of filter kernels for sample type T.
type Kernels[T Sample] struct {
	Level      Level
	LumaEdge   LumaEdgeFunc[T]
	ChromaEdge ChromaEdgeFunc[T]
	SAOBand    SAOBandFunc[T]
	SAOEdge    SAOEdgeFunc[T]
}

// Backend registries, keyed by level. The scalar reference is always present.
var (
	registry8  = map[Level]*Kernels[uint8]{}
	registry16 = map[Level]*Kernels[uint16]{}

	selected8  *Kernels[uint8]
	selected16 *Kernels[uint16]
)

// Register8 adds an 8-bit backend. Backends must be bit-exact with the
// scalar reference.
func Register8(k *Kernels[uint8]) { registry8[k.Level] = k }

// Register16 adds a high-bit-depth backend.
func Register16(k *Kernels[uint16]) { registry16[k.Level] = k }

// For returns the selected backend for sample type T.
func For[T Sample]() *Kernels[T] {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return any(selected8).(*Kernels[T])
	default:
		return any(selected16).(*Kernels[T])
	}
}

// Scalar returns the reference implementation for sample type T.
func Scalar[T Sample]() *Kernels[T] {
	return &Kernels[T]{
		Level:      LevelScalar,
		LumaEdge:   lumaEdge[T],
		ChromaEdge: chromaEdge[T],
		SAOBand:    saoBand[T],
		SAOEdge:    saoEdge[T],
	}
}

// Backends8 returns every registered 8-bit backend.
func Backends8() []*Kernels[uint8] {
	out := make([]*Kernels[uint8], 0, len(registry8))
	for l := LevelScalar; l <= levelMax; l++ {
		if k, ok := registry8[l]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Backends16 returns every registered high-bit-depth backend.
func Backends16() []*Kernels[uint16] {
	out := make([]*Kernels[uint16], 0, len(registry16))
	for l := LevelScalar; l <= levelMax; l++ {
		if k, ok := registry16[l]; ok {
			out = append(out, k)
		}
	}
	return out
}

// NoSimdEnv reports whether LOOPFILTER_NO_SIMD forces the scalar reference.
func NoSimdEnv() bool {
	val := os.Getenv("LOOPFILTER_NO_SIMD")
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

// Init registers the pure-Go backends and selects the best one for the
// running CPU. It runs at package initialisation and may be called again
// by tests after changing the environment.
func Init() {
	initClipTables()

	Register8(Scalar[uint8]())
	Register16(Scalar[uint16]())
	Register8(tableKernels())

	limit := detected
	if NoSimdEnv() {
		limit = LevelScalar
	}
	selected8 = pick(registry8, limit)
	selected16 = pick(registry16, limit)
}

func pick[T Sample](reg map[Level]*Kernels[T], limit Level) *Kernels[T] {
	for l := limit; l >= LevelScalar; l-- {
		if k, ok := reg[l]; ok {
			return k
		}
	}
	return reg[LevelScalar]
}

func init() {
	Init()
}
