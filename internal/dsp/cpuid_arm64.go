//go:build arm64

package dsp

import "golang.org/x/sys/cpu"

func detectLevel() Level {
	if cpu.ARM64.HasASIMD {
		return LevelNEON
	}
	return LevelTable
}
