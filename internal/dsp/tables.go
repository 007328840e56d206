package dsp

import "fmt"

// MaxQP is the largest luma QP. Valid QpY lies in [-QpBdOffset, MaxQP].
const MaxQP = 51

// defaultIntraTcOffset is added to the tc index for bs == 2 edges.
const defaultIntraTcOffset = 2

// tcTable is tC' indexed by Q in [0, 53].
var tcTable = [MaxQP + defaultIntraTcOffset + 1]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // QP  0...17
	1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, // QP 18...35
	4, 4, 5, 5, 6, 6, 7, 8, 9, 10, 11, 13, 14, 16, 18, 20, 22, 24, // QP 36...53
}

// betaTable is beta' indexed by Q in [0, 51].
var betaTable = [MaxQP + 1]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 6, 7, // QP  0...17
	8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 20, 22, 24, 26, 28, 30, 32, // QP 18...35
	34, 36, 38, 40, 42, 44, 46, 48, 50, 52, 54, 56, 58, 60, 62, 64, // QP 36...51
}

// chromaQPTable maps qPi in [30, 43] to QpC for 4:2:0 content.
var chromaQPTable = [14]uint8{29, 30, 31, 32, 33, 33, 34, 34, 35, 35, 36, 36, 37, 37}

func clip3(lo, hi, v int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Beta returns the unscaled beta threshold for an averaged edge QP.
func Beta(qp, betaOffset int) int {
	return int(betaTable[clip3(0, MaxQP, qp+betaOffset)])
}

// Tc returns the unscaled luma tc for an averaged edge QP and boundary
// strength 1 or 2. tcOffset is the slice value already multiplied by two.
func Tc(qp, bs, tcOffset int) int {
	if bs < 1 || bs > 2 {
		panic(fmt.Sprintf("dsp: boundary strength %d has no tc", bs))
	}
	idx := qp + defaultIntraTcOffset*(bs-1) + (tcOffset &^ 1)
	return int(tcTable[clip3(0, MaxQP+defaultIntraTcOffset, idx)])
}

// ChromaTc returns the unscaled chroma tc. qpY is the averaged luma QP of
// the edge, qpOffset the PPS cb/cr offset, and subsampled420 selects the
// 4:2:0 QP mapping.
func ChromaTc(qpY, qpOffset, tcOffset int, subsampled420 bool) int {
	qpi := clip3(0, 57, qpY+qpOffset)
	var qp int
	switch {
	case !subsampled420:
		qp = clip3(0, MaxQP, qpi)
	case qpi < 30:
		qp = qpi
	case qpi > 43:
		qp = qpi - 6
	default:
		qp = int(chromaQPTable[qpi-30])
	}
	return int(tcTable[clip3(0, MaxQP+defaultIntraTcOffset, qp+defaultIntraTcOffset+tcOffset)])
}

// TcTableLen and BetaTableLen expose the table sizes for tests and tools.
const (
	TcTableLen   = len(tcTable)
	BetaTableLen = len(betaTable)
)

// TcAt returns tC' at index q.
func TcAt(q int) int { return int(tcTable[q]) }

// BetaAt returns beta' at index q.
func BetaAt(q int) int { return int(betaTable[q]) }
