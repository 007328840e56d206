package filter

import "fmt"

// SAOType is the state of one SAO component of a CTB. Off, Band and Edge
// are set by the decoder; Applied is entered exactly once, when the filter
// has processed the component.
type SAOType uint8

const (
	SAOOff SAOType = iota
	SAOBand
	SAOEdge
	SAOApplied
)

func (t SAOType) String() string {
	switch t {
	case SAOOff:
		return "off"
	case SAOBand:
		return "band"
	case SAOEdge:
		return "edge"
	case SAOApplied:
		return "applied"
	default:
		return fmt.Sprintf("SAOType(%d)", uint8(t))
	}
}

// SAOParams holds the SAO parameters of one CTB, indexed by component.
type SAOParams struct {
	Type [3]SAOType

	// Offsets[c][0] is always zero; 1..4 hold the signed offsets, already
	// scaled to the bit depth.
	Offsets [3][5]int16

	BandPosition [3]int // first of the four offset bands, 0..31
	EOClass      [3]int // dsp.EOHorizontal .. dsp.EODiag45
}

// Applied reports whether component c has been filtered.
func (p *SAOParams) Applied(c int) bool {
	return p.Type[c] == SAOApplied
}

func (p *SAOParams) markApplied(c int) {
	if p.Type[c] == SAOApplied {
		panic(fmt.Sprintf("filter: SAO applied twice to component %d", c))
	}
	p.Type[c] = SAOApplied
}

func (p *SAOParams) validate(c int) {
	switch {
	case p.Type[c] > SAOApplied:
		panic(fmt.Sprintf("filter: invalid SAO type %d", p.Type[c]))
	case p.Offsets[c][0] != 0:
		panic("filter: SAO offset 0 must be zero")
	case p.Type[c] == SAOBand && (p.BandPosition[c] < 0 || p.BandPosition[c] > 31):
		panic(fmt.Sprintf("filter: SAO band position %d", p.BandPosition[c]))
	case p.Type[c] == SAOEdge && (p.EOClass[c] < 0 || p.EOClass[c] > 3):
		panic(fmt.Sprintf("filter: SAO edge class %d", p.EOClass[c]))
	}
}
