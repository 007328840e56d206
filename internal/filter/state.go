package filter

import (
	"fmt"

	"github.com/deepteams/loopfilter/internal/picture"
)

// PredMode is the prediction of a minimum PU. The inter values are bit sets
// over the two reference lists.
type PredMode uint8

const (
	PredIntra PredMode = 0
	PredL0    PredMode = 1
	PredL1    PredMode = 2
	PredBi    PredMode = PredL0 | PredL1
)

func (m PredMode) String() string {
	switch m {
	case PredIntra:
		return "intra"
	case PredL0:
		return "L0"
	case PredL1:
		return "L1"
	case PredBi:
		return "bi"
	default:
		return "invalid"
	}
}

// MV is a motion vector in quarter-sample units.
type MV struct {
	X, Y int16
}

func (a MV) far(b MV) bool {
	return iabs(int(a.X)-int(b.X)) >= 4 || iabs(int(a.Y)-int(b.Y)) >= 4
}

// Motion is the motion field entry of one minimum PU.
type Motion struct {
	Pred   PredMode
	MV     [2]MV
	RefIdx [2]int8
}

// Metadata holds the per-block side information the decoder produces for a
// picture: QP per minimum CB, luma coded-block flag per minimum TB, motion
// and bypass flags per minimum PU.
type Metadata struct {
	geom *picture.Geometry

	qp     []int8
	cbf    []bool
	motion []Motion
	bypass []bool

	anyBypass bool
}

func newMetadata(geom *picture.Geometry) *Metadata {
	return &Metadata{
		geom:   geom,
		qp:     make([]int8, geom.MinCBWidth()*geom.MinCBHeight()),
		cbf:    make([]bool, geom.MinTBWidth()*geom.MinTBHeight()),
		motion: make([]Motion, geom.MinPUWidth()*geom.MinPUHeight()),
		bypass: make([]bool, geom.MinPUWidth()*geom.MinPUHeight()),
	}
}

// Reset clears every map for the next picture.
func (m *Metadata) Reset() {
	clear(m.qp)
	clear(m.cbf)
	clear(m.motion)
	clear(m.bypass)
	m.anyBypass = false
}

// SetQP records QpY for the square block of size 1<<log2Size at (x0, y0).
func (m *Metadata) SetQP(x0, y0 picture.Luma, log2Size int, qp int) {
	g := m.geom
	n := max(1, 1<<(log2Size-g.Log2MinCBSize))
	w := g.MinCBWidth()
	bx, by := int(x0)>>g.Log2MinCBSize, int(y0)>>g.Log2MinCBSize
	for j := by; j < min(by+n, g.MinCBHeight()); j++ {
		for i := bx; i < min(bx+n, w); i++ {
			m.qp[j*w+i] = int8(qp)
		}
	}
}

// QP returns QpY of the minimum CB covering luma (x, y).
func (m *Metadata) QP(x, y picture.Luma) int {
	return int(m.qp[m.geom.MinCBIndex(x, y)])
}

// SetCBF records the luma coded-block flag of the transform block of size
// 1<<log2Size at (x0, y0).
func (m *Metadata) SetCBF(x0, y0 picture.Luma, log2Size int, coded bool) {
	g := m.geom
	n := max(1, 1<<(log2Size-g.Log2MinTBSize))
	w := g.MinTBWidth()
	bx, by := int(x0)>>g.Log2MinTBSize, int(y0)>>g.Log2MinTBSize
	for j := by; j < min(by+n, g.MinTBHeight()); j++ {
		for i := bx; i < min(bx+n, w); i++ {
			m.cbf[j*w+i] = coded
		}
	}
}

// CBF returns the luma coded-block flag covering luma (x, y).
func (m *Metadata) CBF(x, y picture.Luma) bool {
	return m.cbf[m.geom.MinTUIndex(x, y)]
}

// SetMotion records mv for the w x h prediction block at (x0, y0).
func (m *Metadata) SetMotion(x0, y0, w, h picture.Luma, mv Motion) {
	m.fillPU(x0, y0, w, h, func(i int) { m.motion[i] = mv })
}

// SetIntra marks the w x h block at (x0, y0) as intra predicted.
func (m *Metadata) SetIntra(x0, y0, w, h picture.Luma) {
	m.SetMotion(x0, y0, w, h, Motion{Pred: PredIntra})
}

// Motion returns the motion entry of the minimum PU covering luma (x, y).
func (m *Metadata) Motion(x, y picture.Luma) *Motion {
	return &m.motion[m.geom.MinPUIndex(x, y)]
}

// SetBypass flags the w x h block at (x0, y0) as excluded from filtering:
// PCM with the loop filter disabled, or cu_transquant_bypass.
func (m *Metadata) SetBypass(x0, y0, w, h picture.Luma, bypass bool) {
	m.fillPU(x0, y0, w, h, func(i int) { m.bypass[i] = bypass })
	if bypass {
		m.anyBypass = true
	}
}

// Bypass reports whether luma (x, y) lies in a bypass block. Positions
// outside the picture report true so that filters never write there.
func (m *Metadata) Bypass(x, y picture.Luma) bool {
	if !m.geom.Contains(x, y) {
		return true
	}
	return m.bypass[m.geom.MinPUIndex(x, y)]
}

// bypassPU reads the bypass flag by minimum-PU coordinates.
func (m *Metadata) bypassPU(px, py int) bool {
	return m.bypass[py*m.geom.MinPUWidth()+px]
}

func (m *Metadata) fillPU(x0, y0, w, h picture.Luma, set func(i int)) {
	g := m.geom
	pw := g.MinPUWidth()
	x1 := min(int(g.MinPUOf(x0+w-1)), pw-1)
	y1 := min(int(g.MinPUOf(y0+h-1)), g.MinPUHeight()-1)
	for j := int(g.MinPUOf(y0)); j <= y1; j++ {
		for i := int(g.MinPUOf(x0)); i <= x1; i++ {
			set(j*pw + i)
		}
	}
}

func iabs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// BSMap holds one boundary strength per 4-sample edge segment for either the
// vertical or the horizontal edges of a picture. Each position is written
// at most once per picture.
type BSMap struct {
	w, h    int
	bs      []uint8
	written []uint64
}

func newBSMap(width, height picture.Luma) *BSMap {
	w := (int(width)+3)>>2 + 1
	h := (int(height)+3)>>2 + 1
	return &BSMap{
		w:       w,
		h:       h,
		bs:      make([]uint8, w*h),
		written: make([]uint64, (w*h+63)/64),
	}
}

func (m *BSMap) index(x, y picture.Luma) int {
	return (int(y)>>2)*m.w + int(x)>>2
}

// At returns the strength of the edge segment at luma (x, y).
func (m *BSMap) At(x, y picture.Luma) uint8 {
	return m.bs[m.index(x, y)]
}

// Set stores the strength of the edge segment at luma (x, y). A value
// outside 0..2 or a second write to the same segment panics.
func (m *BSMap) Set(x, y picture.Luma, bs uint8) {
	if bs > 2 {
		panic(fmt.Sprintf("filter: boundary strength %d at (%d, %d)", bs, x, y))
	}
	i := m.index(x, y)
	if m.written[i>>6]&(1<<(i&63)) != 0 {
		panic(fmt.Sprintf("filter: boundary strength at (%d, %d) written twice", x, y))
	}
	m.written[i>>6] |= 1 << (i & 63)
	m.bs[i] = bs
}

// Reset clears the map for the next picture.
func (m *BSMap) Reset() {
	clear(m.bs)
	clear(m.written)
}
