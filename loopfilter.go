package loopfilter

import (
	"github.com/deepteams/loopfilter/internal/dsp"
	"github.com/deepteams/loopfilter/internal/filter"
	"github.com/deepteams/loopfilter/internal/picture"
)

// Sample is the constraint satisfied by plane sample types: uint8 for 8-bit
// pictures, uint16 for deeper ones.
type Sample = picture.Sample

// Filter holds one picture and everything needed to filter it.
type Filter[T Sample] = filter.Filter[T]

// Picture storage.
type (
	Plane[T Sample] = picture.Plane[T]
	Frame[T Sample] = picture.Frame[T]
	Geometry        = picture.Geometry
	ChromaFormat    = picture.ChromaFormat

	// Luma is a coordinate in luma samples.
	Luma = picture.Luma
	// CTB is a coordinate in coding tree blocks.
	CTB = picture.CTB
)

const (
	Monochrome = picture.Monochrome
	Chroma420  = picture.Chroma420
	Chroma422  = picture.Chroma422
	Chroma444  = picture.Chroma444
)

// Configuration, layout and per-block state written by the decoder.
type (
	Config       = filter.Config
	Grid         = filter.Grid
	Slice        = filter.Slice
	RefPicLists  = filter.RefPicLists
	Metadata     = filter.Metadata
	Motion       = filter.Motion
	MV           = filter.MV
	PredMode     = filter.PredMode
	BSMap        = filter.BSMap
	SAOParams    = filter.SAOParams
	SAOType      = filter.SAOType
	ProgressFunc = filter.ProgressFunc
)

const (
	PredIntra = filter.PredIntra
	PredL0    = filter.PredL0
	PredL1    = filter.PredL1
	PredBi    = filter.PredBi
)

const (
	SAOOff     = filter.SAOOff
	SAOBand    = filter.SAOBand
	SAOEdge    = filter.SAOEdge
	SAOApplied = filter.SAOApplied
)

// SAO edge offset classes.
const (
	EOHorizontal = dsp.EOHorizontal
	EOVertical   = dsp.EOVertical
	EODiag135    = dsp.EODiag135
	EODiag45     = dsp.EODiag45
)

// Level identifies a kernel backend.
type Level = dsp.Level

// ErrInvalidConfig is returned by New for configurations outside the
// supported range.
var ErrInvalidConfig = filter.ErrInvalidConfig

// New validates cfg and allocates a Filter with a zeroed frame. T must be
// uint8 for 8-bit configurations and uint16 otherwise.
func New[T Sample](cfg Config) (*Filter[T], error) {
	return filter.New[T](cfg)
}

// ParseChromaFormat parses "420", "yuv422", "mono" and similar names.
func ParseChromaFormat(s string) (ChromaFormat, error) {
	return picture.ParseChromaFormat(s)
}

// UseScalar switches f to the scalar reference kernels.
func UseScalar[T Sample](f *Filter[T]) {
	f.UseKernels(dsp.Scalar[T]())
}

// Backends reports the detected CPU level and the kernel levels selected
// for 8-bit and deeper samples.
func Backends() (detected, sel8, sel16 Level) {
	return dsp.Detected(), dsp.Selected8(), dsp.Selected16()
}
