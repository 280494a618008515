package arena_test

import (
	"testing"

	"github.com/cleishm/gobolt/arena"
)

func TestAllocateZeroed(t *testing.T) {
	p := arena.NewPool(64)
	b := p.Allocate(8)
	for i, c := range b {
		if c != 0 {
			t.Fatalf("byte %d not zeroed: %d", i, c)
		}
	}
}

func TestAllocateGrowsAcrossSlabs(t *testing.T) {
	p := arena.NewPool(8)
	a := p.Allocate(8)
	b := p.Allocate(8)
	copy(a, "aaaaaaaa")
	copy(b, "bbbbbbbb")
	if string(a) != "aaaaaaaa" || string(b) != "bbbbbbbb" {
		t.Fatalf("allocations across slab boundary aliased: a=%q b=%q", a, b)
	}
}

func TestReallocateLastGrowsInPlace(t *testing.T) {
	p := arena.NewPool(64)
	a := p.Allocate(4)
	copy(a, "abcd")
	grown := p.ReallocateLast(a, 8)
	if string(grown[:4]) != "abcd" {
		t.Fatalf("ReallocateLast lost original content: %q", grown[:4])
	}
	// Growing past the current slab falls back to a fresh allocation
	// rather than corrupting neighboring data.
	p2 := arena.NewPool(4)
	small := p2.Allocate(4)
	copy(small, "wxyz")
	grownAcrossSlab := p2.ReallocateLast(small, 16)
	if string(grownAcrossSlab[:4]) != "wxyz" {
		t.Fatalf("ReallocateLast across slab boundary lost content: %q", grownAcrossSlab[:4])
	}
}

func TestCheckpointDrainFreesOnlyTail(t *testing.T) {
	p := arena.NewPool(64)
	a := p.Allocate(8)
	copy(a, "keepme!!")
	mark := p.Checkpoint()
	p.Allocate(8)
	p.Allocate(8)
	p.Drain(mark)
	if string(a) != "keepme!!" {
		t.Fatalf("Drain corrupted memory allocated before the checkpoint: %q", a)
	}
	// The drained region is available again.
	reused := p.Allocate(8)
	if len(reused) != 8 {
		t.Fatalf("Allocate after Drain returned %d bytes, want 8", len(reused))
	}
}

func TestDrainAcrossSlabBoundary(t *testing.T) {
	p := arena.NewPool(8)
	mark := p.Checkpoint()
	p.Allocate(8) // first slab
	p.Allocate(8) // second slab
	p.Allocate(8) // third slab
	p.Drain(mark)
	if got := p.Checkpoint(); got != mark {
		t.Fatalf("Checkpoint after Drain(initial mark) = %+v, want %+v", got, mark)
	}
}

func TestResetKeepsFirstSlab(t *testing.T) {
	p := arena.NewPool(8)
	p.Allocate(8)
	p.Allocate(8)
	p.Reset()
	b := p.Allocate(4)
	if len(b) != 4 {
		t.Fatalf("Allocate after Reset returned %d bytes, want 4", len(b))
	}
}

func TestStringZeroCopyView(t *testing.T) {
	p := arena.NewPool(16)
	b := p.Allocate(5)
	copy(b, "hello")
	s := arena.String(b)
	if s != "hello" {
		t.Fatalf("String(b) = %q, want %q", s, "hello")
	}
}
