//go:build !amd64 && !arm64

package dsp

// detectLevel falls back to the table backend; table lookups need no
// special instructions.
func detectLevel() Level {
	return LevelTable
}
