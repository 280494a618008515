// Package arena implements a bump-style memory pool: a region allocator
// whose contents are freed en masse when drained.
//
// A Pool backs the payloads of packstream.Value (strings, list and map
// backing arrays, struct fields) so that deserializing a record does not
// perform one heap allocation per nested value. Values handed out by a
// Pool are valid only until that Pool is drained or reset.
package arena

import "unsafe"

const defaultSlabSize = 4096

// Mark identifies a point in a Pool's allocation history. Drain(m) frees
// everything allocated since m was taken.
type Mark struct {
	slab int
	off  int
}

// Pool is a bump allocator over a growing list of byte slabs. It is not
// safe for concurrent use; each connection/result stream owns its pools
// and uses them from a single goroutine, matching the rest of this
// library's single-threaded-per-connection model.
type Pool struct {
	slabSize int
	slabs    [][]byte
	off      int // bytes used in the current (last) slab
}

// NewPool returns a Pool that grows in slabSize-byte increments. A
// slabSize of 0 selects a default.
func NewPool(slabSize int) *Pool {
	if slabSize <= 0 {
		slabSize = defaultSlabSize
	}
	return &Pool{slabSize: slabSize}
}

func (p *Pool) currentSlab() []byte {
	if len(p.slabs) == 0 {
		return nil
	}
	return p.slabs[len(p.slabs)-1]
}

func (p *Pool) growFor(n int) {
	size := p.slabSize
	if n > size {
		size = n
	}
	p.slabs = append(p.slabs, make([]byte, size))
	p.off = 0
}

// Allocate returns an n-byte slice backed by the pool. The bytes are
// zeroed. The returned slice remains valid until the pool is drained
// past the Mark taken before this call, or reset.
func (p *Pool) Allocate(n int) []byte {
	if n == 0 {
		return nil
	}
	cur := p.currentSlab()
	if cur == nil || p.off+n > len(cur) {
		p.growFor(n)
		cur = p.currentSlab()
	}
	b := cur[p.off : p.off+n : p.off+n]
	clear(b) // memory reused after Drain/Reset may hold old bytes
	p.off += n
	return b
}

// Calloc is an alias for Allocate kept for parity with the pool's C
// ancestry: every Pool allocation is already zero-filled.
func (p *Pool) Calloc(n int) []byte {
	return p.Allocate(n)
}

// ReallocateLast grows buf, which MUST be the most recent allocation
// returned by this Pool, to n bytes, copying existing contents. If buf
// is not the most recent allocation, or growth would not fit in the
// current slab, a fresh n-byte allocation is made and the old contents
// copied into it.
func (p *Pool) ReallocateLast(buf []byte, n int) []byte {
	cur := p.currentSlab()
	if cur != nil && len(buf) <= p.off {
		start := p.off - len(buf)
		if start >= 0 && sameBacking(cur[start:p.off], buf) {
			if start+n <= len(cur) {
				p.off = start + n
				return cur[start : start+n : start+n]
			}
		}
	}
	grown := p.Allocate(n)
	copy(grown, buf)
	return grown
}

func sameBacking(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}

// Checkpoint returns a Mark for the pool's current allocation point.
func (p *Pool) Checkpoint() Mark {
	return Mark{slab: len(p.slabs), off: p.off}
}

// Drain frees every allocation made since m, making that memory
// available for reuse by subsequent Allocate calls. Any Value built from
// memory freed by Drain must not be accessed afterwards.
func (p *Pool) Drain(m Mark) {
	if m.slab > len(p.slabs) {
		return
	}
	if m.slab == len(p.slabs) {
		p.off = m.off
		return
	}
	p.slabs = p.slabs[:m.slab]
	p.off = m.off
}

// Reset drains the pool back to empty, releasing all slabs but the
// first (kept to absorb the next round of allocations without an
// immediate grow).
func (p *Pool) Reset() {
	if len(p.slabs) > 1 {
		p.slabs = p.slabs[:1]
	}
	p.off = 0
}

// String returns a zero-copy string view of a byte slice allocated by
// this (or any) Pool. The returned string is valid for exactly as long
// as b would be: until the owning pool is drained past the allocation.
func String(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}
