//go:build amd64

package dsp

import "golang.org/x/sys/cpu"

// detectLevel probes AVX2 (with OS YMM support, which x/sys/cpu folds into
// HasAVX2). SSE2 is part of the amd64 baseline.
func detectLevel() Level {
	if cpu.X86.HasAVX2 {
		return LevelAVX2
	}
	if cpu.X86.HasSSE2 {
		return LevelSSE2
	}
	return LevelTable
}
