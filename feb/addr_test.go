package feb

import (
	"testing"
	"unsafe"
)

func TestAlignRoundsDownToWordBoundary(t *testing.T) {
	var w Word
	raw := uintptr(unsafe.Pointer(&w))
	want := AlignedAddr(raw &^ (uintptr(wordSize) - 1))
	if got := align(&w); got != want {
		t.Fatalf("align(&w) = %#x, want %#x", got, want)
	}
	// A Go-allocated Word is always naturally aligned, so align is a
	// no-op in practice; the rounding only matters for the unsafe
	// pointer-arithmetic case AlignedAddr's doc comment calls out.
	if AlignedAddr(raw) != want {
		t.Fatalf("a heap-allocated Word was not naturally aligned: %#x", raw)
	}
}

func TestHash64IsDeterministic(t *testing.T) {
	if hash64(12345) != hash64(12345) {
		t.Fatal("hash64 is not a pure function of its input")
	}
	if hash64(1) == hash64(2) {
		t.Fatal("hash64(1) and hash64(2) collided; weak avalanche for this test's purposes")
	}
}

func TestStripeOfStaysInRange(t *testing.T) {
	const stripes = 64
	for _, addr := range []AlignedAddr{0, 1, 8, 1 << 20, ^AlignedAddr(0)} {
		s := stripeOf(addr, stripes)
		if s >= stripes {
			t.Fatalf("stripeOf(%#x, %d) = %d, out of range", addr, stripes, s)
		}
	}
}
