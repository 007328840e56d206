package picture

import (
	"fmt"
	"strings"
)

// ChromaFormat is the chroma subsampling of a picture.
type ChromaFormat int

const (
	Monochrome ChromaFormat = iota
	Chroma420
	Chroma422
	Chroma444
)

// String returns the conventional name of the format.
func (f ChromaFormat) String() string {
	switch f {
	case Monochrome:
		return "mono"
	case Chroma420:
		return "420"
	case Chroma422:
		return "422"
	case Chroma444:
		return "444"
	default:
		return fmt.Sprintf("ChromaFormat(%d)", int(f))
	}
}

// Valid reports whether f is a known format.
func (f ChromaFormat) Valid() bool {
	return f >= Monochrome && f <= Chroma444
}

// NumComponents returns 1 for monochrome and 3 otherwise.
func (f ChromaFormat) NumComponents() int {
	if f == Monochrome {
		return 1
	}
	return 3
}

// HShift returns the horizontal subsampling shift of component c.
func (f ChromaFormat) HShift(c int) int {
	if c == 0 {
		return 0
	}
	if f == Chroma420 || f == Chroma422 {
		return 1
	}
	return 0
}

// VShift returns the vertical subsampling shift of component c.
func (f ChromaFormat) VShift(c int) int {
	if c == 0 || f != Chroma420 {
		return 0
	}
	return 1
}

// ParseChromaFormat accepts the names returned by String, with an optional
// "yuv" prefix.
func ParseChromaFormat(s string) (ChromaFormat, error) {
	switch strings.TrimPrefix(strings.ToLower(s), "yuv") {
	case "mono", "400", "gray":
		return Monochrome, nil
	case "420":
		return Chroma420, nil
	case "422":
		return Chroma422, nil
	case "444":
		return Chroma444, nil
	}
	return 0, fmt.Errorf("picture: unknown chroma format %q", s)
}
