package gf256

import (
	"sync"
	"testing"
)

func TestFieldIdentities(t *testing.T) {
	Init()

	for x := 1; x < 256; x++ {
		if got := Mul[x][Inv[x]]; got != 1 {
			t.Errorf("Mul[%d][Inv[%d]] = %#x, want 1", x, x, got)
		}
	}

	for x := 0; x < 256; x++ {
		if Mul[0][x] != 0 || Mul[x][0] != 0 {
			t.Errorf("Mul[0][%d]=%#x Mul[%d][0]=%#x, want 0", x, Mul[0][x], x, Mul[x][0])
		}
	}

	for x := 1; x < 256; x++ {
		for y := 1; y < 256; y++ {
			if Mul[x][y] != Mul[y][x] {
				t.Fatalf("multiplication not commutative: Mul[%d][%d]=%#x Mul[%d][%d]=%#x", x, y, Mul[x][y], y, x, Mul[y][x])
			}
		}
	}
}

func TestMultiplicationAssociative(t *testing.T) {
	Init()
	for _, x := range []byte{1, 2, 3, 17, 200, 255} {
		for _, y := range []byte{1, 5, 91, 128, 254} {
			for _, z := range []byte{1, 9, 33, 199, 250} {
				lhs := Mul[x][Mul[y][z]]
				rhs := Mul[Mul[x][y]][z]
				if lhs != rhs {
					t.Fatalf("(%d*%d)*%d = %#x, %d*(%d*%d) = %#x", x, y, z, rhs, x, y, z, lhs)
				}
			}
		}
	}
}

func TestExpLogRoundTrip(t *testing.T) {
	Init()
	for x := 1; x < 256; x++ {
		if got := Exp[Log[byte(x)]]; got != byte(x) {
			t.Errorf("Exp[Log[%d]] = %d, want %d", x, got, x)
		}
	}
}

func TestExpTableDoubled(t *testing.T) {
	Init()
	for i := 0; i < 255; i++ {
		if Exp[i] != Exp[i+255] {
			t.Errorf("Exp[%d]=%#x != Exp[%d]=%#x", i, Exp[i], i+255, Exp[i+255])
		}
	}
}

func TestInitConcurrentIsIdempotent(t *testing.T) {
	initOnce = sync.Once{} // reset for this test only; benign races are allowed by design
	done := make(chan [256]byte, 8)
	for i := 0; i < 8; i++ {
		go func() {
			Init()
			done <- Inv
		}()
	}
	first := <-done
	for i := 1; i < 8; i++ {
		if got := <-done; got != first {
			t.Fatalf("Inv table differs across concurrent Init() callers")
		}
	}
}
