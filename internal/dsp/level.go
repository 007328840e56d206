package dsp

// Level identifies a kernel backend, ordered from least to most specialised.
type Level int

const (
	// LevelScalar is the reference implementation. Always available.
	LevelScalar Level = iota

	// LevelTable uses precomputed clip and band lookup tables (8-bit only).
	LevelTable

	// LevelSSE2 indicates x86-64 baseline SIMD.
	LevelSSE2

	// LevelAVX2 indicates 256-bit x86 SIMD.
	LevelAVX2

	// LevelNEON indicates ARM NEON.
	LevelNEON

	levelMax = LevelNEON
)

// String returns a human-readable name for the level.
func (l Level) String() string {
	switch l {
	case LevelScalar:
		return "scalar"
	case LevelTable:
		return "table"
	case LevelSSE2:
		return "sse2"
	case LevelAVX2:
		return "avx2"
	case LevelNEON:
		return "neon"
	default:
		return "unknown"
	}
}

// detected is the best level the running CPU supports. Package-level
// variables are initialised before any init function runs.
var detected = detectLevel()

// Detected returns the capability level probed at start-up.
func Detected() Level {
	return detected
}

// Selected8 returns the level of the backend in use for 8-bit samples.
func Selected8() Level {
	return selected8.Level
}

// Selected16 returns the level of the backend in use for 16-bit samples.
func Selected16() Level {
	return selected16.Level
}
