// Package pool provides bucketed sync.Pool instances for reducing allocations
// in hot paths. Buffers are organized by size class to minimize waste.
package pool

import "sync"

// Size classes for bucketed pools, in elements.
const (
	Size256  = 256
	Size1K   = 1024
	Size4K   = 4096
	Size16K  = 16384
	Size64K  = 65536
	Size256K = 262144
	Size1M   = 1048576
)

// bucketIndex returns the pool index for a given size.
func bucketIndex(size int) int {
	switch {
	case size <= Size256:
		return 0
	case size <= Size1K:
		return 1
	case size <= Size4K:
		return 2
	case size <= Size16K:
		return 3
	case size <= Size64K:
		return 4
	case size <= Size256K:
		return 5
	default:
		return 6
	}
}

var sizes = [7]int{Size256, Size1K, Size4K, Size16K, Size64K, Size256K, Size1M}

// Buffers is a set of size-bucketed pools of []E. The zero value is not
// usable; create one with New.
type Buffers[E any] struct {
	pools [7]sync.Pool
}

// New returns an empty set of pools for element type E.
func New[E any]() *Buffers[E] {
	p := &Buffers[E]{}
	for i := range p.pools {
		sz := sizes[i]
		p.pools[i] = sync.Pool{
			New: func() any {
				b := make([]E, sz)
				return &b
			},
		}
	}
	return p
}

// Get returns a slice of at least the requested length from the pool.
// The returned slice has length == size and may have a larger capacity.
// Its contents are unspecified. The caller must call Put when done.
func (p *Buffers[E]) Get(size int) []E {
	idx := bucketIndex(size)
	bp := p.pools[idx].Get().(*[]E)
	b := *bp
	if cap(b) < size {
		b = make([]E, size)
		*bp = b
		return b
	}
	return b[:size]
}

// Put returns a slice to the pool. The slice must have been obtained from
// Get. Slices smaller than Size256 are not pooled.
func (p *Buffers[E]) Put(b []E) {
	c := cap(b)
	if c < Size256 {
		return
	}
	idx := bucketIndex(c)
	// A capacity between two classes belongs to the lower one so that a
	// later Get from that bucket is always large enough.
	if idx > 0 && c < sizes[idx] {
		idx--
	}
	b = b[:c]
	p.pools[idx].Put(&b)
}

// Shared pools for picture samples and raw I/O.
var (
	Samples8  = New[uint8]()
	Samples16 = New[uint16]()
	Bytes     = New[byte]()
)

// Get returns a byte slice from the shared byte pool.
func Get(size int) []byte { return Bytes.Get(size) }

// Put returns a byte slice to the shared byte pool.
func Put(b []byte) { Bytes.Put(b) }

// ForSamples returns the shared pool for picture sample type S.
func ForSamples[S uint8 | uint16]() *Buffers[S] {
	var zero S
	switch any(zero).(type) {
	case uint8:
		return any(Samples8).(*Buffers[S])
	default:
		return any(Samples16).(*Buffers[S])
	}
}
