// Package picture holds the sample planes of a reconstructed picture and the
// block geometry used to address them.
package picture

// Sample is the storage type of a picture sample. 8-bit pictures use uint8,
// 10- and 12-bit pictures use uint16.
type Sample interface {
	uint8 | uint16
}

// Plane is one row-major component of a picture. Stride equals Width, so a
// read past the last row panics instead of returning padding.
type Plane[T Sample] struct {
	Pix    []T
	Width  int
	Height int
	Stride int
}

// NewPlane allocates a zeroed plane.
func NewPlane[T Sample](width, height int) *Plane[T] {
	return &Plane[T]{
		Pix:    make([]T, width*height),
		Width:  width,
		Height: height,
		Stride: width,
	}
}

// Offset returns the index of sample (x, y) in Pix.
func (p *Plane[T]) Offset(x, y int) int {
	return y*p.Stride + x
}

// Row returns the samples of row y, limited to the plane width.
func (p *Plane[T]) Row(y int) []T {
	start := y * p.Stride
	return p.Pix[start : start+p.Width]
}

// At returns the sample at (x, y). It panics outside the plane.
func (p *Plane[T]) At(x, y int) T {
	p.check(x, y)
	return p.Pix[y*p.Stride+x]
}

// Set stores v at (x, y). It panics outside the plane.
func (p *Plane[T]) Set(x, y int, v T) {
	p.check(x, y)
	p.Pix[y*p.Stride+x] = v
}

func (p *Plane[T]) check(x, y int) {
	if uint(x) >= uint(p.Width) || uint(y) >= uint(p.Height) {
		panic("picture: sample outside plane")
	}
}

// Fill sets every sample to v.
func (p *Plane[T]) Fill(v T) {
	for i := range p.Pix {
		p.Pix[i] = v
	}
}

// Clone returns a deep copy of the plane.
func (p *Plane[T]) Clone() *Plane[T] {
	c := *p
	c.Pix = make([]T, len(p.Pix))
	copy(c.Pix, p.Pix)
	return &c
}

// CopyBlock copies a w x h block at (x, y) into dst with stride dstStride.
func (p *Plane[T]) CopyBlock(dst []T, dstStride, x, y, w, h int) {
	for j := 0; j < h; j++ {
		o := p.Offset(x, y+j)
		copy(dst[j*dstStride:j*dstStride+w], p.Pix[o:o+w])
	}
}

// Frame is a picture: up to three planes sharing a chroma format and bit
// depth.
type Frame[T Sample] struct {
	Planes   [3]*Plane[T]
	Format   ChromaFormat
	BitDepth int
}

// NewFrame allocates the planes of a width x height picture.
func NewFrame[T Sample](width, height int, format ChromaFormat, bitDepth int) *Frame[T] {
	f := &Frame[T]{Format: format, BitDepth: bitDepth}
	for c := 0; c < format.NumComponents(); c++ {
		w := (width + (1 << format.HShift(c)) - 1) >> format.HShift(c)
		h := (height + (1 << format.VShift(c)) - 1) >> format.VShift(c)
		f.Planes[c] = NewPlane[T](w, h)
	}
	return f
}

// Plane returns component c.
func (f *Frame[T]) Plane(c int) *Plane[T] {
	return f.Planes[c]
}

// Clone returns a deep copy of the frame.
func (f *Frame[T]) Clone() *Frame[T] {
	c := &Frame[T]{Format: f.Format, BitDepth: f.BitDepth}
	for i, p := range f.Planes {
		if p != nil {
			c.Planes[i] = p.Clone()
		}
	}
	return c
}

// MaxValue returns the largest sample value at the frame's bit depth.
func (f *Frame[T]) MaxValue() int {
	return 1<<f.BitDepth - 1
}
