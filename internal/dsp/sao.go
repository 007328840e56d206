package dsp

// SAO edge offset classes.
const (
	EOHorizontal = 0
	EOVertical   = 1
	EODiag135    = 2
	EODiag45     = 3
)

// eoPos holds the two neighbour displacements (dx, dy) of each edge class.
var eoPos = [4][2][2]int{
	{{-1, 0}, {1, 0}},  // horizontal
	{{0, -1}, {0, 1}},  // vertical
	{{-1, -1}, {1, 1}}, // 135 degree
	{{1, -1}, {-1, 1}}, // 45 degree
}

// edgeIdx maps 2 + sign(a) + sign(b) to the offset category. Category 0
// (index 2) carries no offset.
var edgeIdx = [5]uint8{1, 2, 0, 3, 4}

// EONeighbours returns the two neighbour displacements of an edge class.
func EONeighbours(eoClass int) (dx0, dy0, dx1, dy1 int) {
	p := &eoPos[eoClass]
	return p[0][0], p[0][1], p[1][0], p[1][1]
}

func sign(a, b int) int {
	switch {
	case a > b:
		return 1
	case a == b:
		return 0
	default:
		return -1
	}
}

// saoBand adds the offset of each sample's band. Only the four bands
// starting at bandPos carry an offset.
func saoBand[T Sample](dst []T, dstOff, dstStride int, src []T, srcOff, srcStride int,
	offsets *[5]int16, bandPos, width, height, bitDepth int) {
	var table [32]int
	for k := 0; k < 4; k++ {
		table[(k+bandPos)&31] = int(offsets[k+1])
	}
	shift := bitDepth - 5
	for y := 0; y < height; y++ {
		s := src[srcOff+y*srcStride : srcOff+y*srcStride+width]
		d := dst[dstOff+y*dstStride : dstOff+y*dstStride+width]
		for x, v := range s {
			d[x] = clipPixel[T](int(v)+table[int(v)>>shift], bitDepth)
		}
	}
}

// saoEdge classifies every sample against its two neighbours along the
// edge class direction and adds the category offset.
func saoEdge[T Sample](dst []T, dstOff, dstStride int, src []T, srcOff, srcStride int,
	offsets *[5]int16, eoClass, width, height, bitDepth int) {
	dx0, dy0, dx1, dy1 := EONeighbours(eoClass)
	a := dx0 + dy0*srcStride
	b := dx1 + dy1*srcStride
	for y := 0; y < height; y++ {
		so := srcOff + y*srcStride
		do := dstOff + y*dstStride
		for x := 0; x < width; x++ {
			v := int(src[so+x])
			cat := edgeIdx[2+sign(v, int(src[so+x+a]))+sign(v, int(src[so+x+b]))]
			dst[do+x] = clipPixel[T](v+int(offsets[cat]), bitDepth)
		}
	}
}
