// Package filter implements the in-loop filter stage of an HEVC decoder:
// boundary-strength derivation, deblocking, sample adaptive offset and the
// CTB traversal that sequences them.
package filter

import (
	"errors"
	"fmt"

	"github.com/deepteams/loopfilter/internal/picture"
)

// ErrInvalidConfig is returned by New for an unusable configuration.
var ErrInvalidConfig = errors.New("loopfilter: invalid configuration")

// Config holds the sequence and picture parameters the filters depend on.
// It is read-only once a Filter has been created.
type Config struct {
	Width, Height int // luma samples
	BitDepth      int // 8, 10 or 12
	ChromaFormat  picture.ChromaFormat

	Log2CTBSize   int // 4..6
	Log2MinCBSize int // 3..Log2CTBSize
	Log2MinTBSize int // 2..min(Log2MinCBSize, 5)
	Log2MinPUSize int // 0 selects Log2MinCBSize-1

	SAOEnabled         bool
	DeblockingDisabled bool // pps_deblocking_filter_disabled_flag

	TilesEnabled          bool
	LoopFilterAcrossTiles bool

	CbQPOffset int // pps_cb_qp_offset
	CrQPOffset int // pps_cr_qp_offset
}

func (c *Config) setDefaults() {
	if c.Log2MinPUSize == 0 {
		c.Log2MinPUSize = c.Log2MinCBSize - 1
	}
}

// Validate reports the first inconsistency in c. Defaults are not applied.
func (c *Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: picture size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.BitDepth != 8 && c.BitDepth != 10 && c.BitDepth != 12:
		return fmt.Errorf("%w: bit depth %d", ErrInvalidConfig, c.BitDepth)
	case !c.ChromaFormat.Valid():
		return fmt.Errorf("%w: chroma format %v", ErrInvalidConfig, c.ChromaFormat)
	case c.Log2CTBSize < 4 || c.Log2CTBSize > 6:
		return fmt.Errorf("%w: log2 CTB size %d", ErrInvalidConfig, c.Log2CTBSize)
	case c.Log2MinCBSize < 3 || c.Log2MinCBSize > c.Log2CTBSize:
		return fmt.Errorf("%w: log2 min CB size %d", ErrInvalidConfig, c.Log2MinCBSize)
	case c.Log2MinTBSize < 2 || c.Log2MinTBSize > c.Log2MinCBSize || c.Log2MinTBSize > 5:
		return fmt.Errorf("%w: log2 min TB size %d", ErrInvalidConfig, c.Log2MinTBSize)
	case c.Log2MinPUSize != 0 && (c.Log2MinPUSize < 2 || c.Log2MinPUSize > c.Log2MinCBSize):
		return fmt.Errorf("%w: log2 min PU size %d", ErrInvalidConfig, c.Log2MinPUSize)
	case c.Width%(1<<c.Log2MinCBSize) != 0 || c.Height%(1<<c.Log2MinCBSize) != 0:
		return fmt.Errorf("%w: picture size %dx%d not a multiple of the min CB size",
			ErrInvalidConfig, c.Width, c.Height)
	case c.CbQPOffset < -12 || c.CbQPOffset > 12 || c.CrQPOffset < -12 || c.CrQPOffset > 12:
		return fmt.Errorf("%w: chroma QP offsets %d, %d", ErrInvalidConfig, c.CbQPOffset, c.CrQPOffset)
	}
	return nil
}

// Geometry returns the block geometry described by c.
func (c *Config) Geometry() picture.Geometry {
	return picture.Geometry{
		Width:         picture.Luma(c.Width),
		Height:        picture.Luma(c.Height),
		Format:        c.ChromaFormat,
		Log2CTBSize:   c.Log2CTBSize,
		Log2MinCBSize: c.Log2MinCBSize,
		Log2MinTBSize: c.Log2MinTBSize,
		Log2MinPUSize: c.Log2MinPUSize,
	}
}

// tileEdgesClosed reports whether both filters stop at tile borders. Without
// tiles the across-tiles flag is inferred as set.
func (c *Config) tileEdgesClosed() bool {
	return c.TilesEnabled && !c.LoopFilterAcrossTiles
}

// QpBdOffset returns the luma QP range extension of the bit depth.
func (c *Config) QpBdOffset() int {
	return 6 * (c.BitDepth - 8)
}
