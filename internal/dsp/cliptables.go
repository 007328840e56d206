package dsp

// Pre-computed clip and absolute-value lookup tables used by the 8-bit table
// backend. Negative-index access is emulated through fixed offsets into
// oversized arrays.

// Table sizes accommodate every intermediate value the 8-bit deblocking
// arithmetic can produce: a sample plus or minus a clipped delta.
var (
	clip1 [255 + 511 + 1]uint8 // clips [-255, 511] to [0, 255]
	abs0  [255 + 255 + 1]uint8 // abs(x) for x in [-255, 255]
)

// Offsets for indexing with negative values.
const (
	clip1Offset = 255
	abs0Offset  = 255
)

// Kclip1 returns the value of v clipped to [0, 255]. v must lie in [-255, 511].
func Kclip1(v int) uint8 { return clip1[clip1Offset+v] }

// Kabs0 returns |v| for v in [-255, 255].
func Kabs0(v int) uint8 { return abs0[abs0Offset+v] }

// Clip8b clips v to the range [0, 255].
// Uses unsigned comparison for single-branch hot path when v is in [0, 255].
func Clip8b(v int) uint8 {
	if uint(v) <= 255 {
		return uint8(v)
	}
	// Arithmetic right shift: v>>63 is 0 for positive, -1 for negative.
	return uint8(^(v >> 63) & 255)
}

// initClipTables fills all lookup tables at package initialisation.
func initClipTables() {
	for i := -255; i <= 511; i++ {
		clip1[clip1Offset+i] = uint8(clip3(0, 255, i))
	}
	for i := -255; i <= 255; i++ {
		v := i
		if v < 0 {
			v = -v
		}
		abs0[abs0Offset+i] = uint8(v)
	}
}
