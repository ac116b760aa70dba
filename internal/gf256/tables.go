// Package gf256 implements arithmetic in GF(2^8) with the primitive
// polynomial x^8 + x^4 + x^3 + x^2 + 1 (0x11D) and generator alpha=2.
//
// This is the same field and the same tables used by the classic
// Vandermonde-based Reed-Solomon construction (Rizzo's fec.c and its
// descendants): a doubled exponentiation table so multiplication never
// needs a modular reduction on the hot path, a discrete-log table, a
// per-element inverse table, and the full 64KiB product table built from
// the two.
package gf256

import "sync"

// Exp is the exponentiation table, alpha^i for i in [0,510). It is
// doubled (Exp[i+255] == Exp[i] for i < 255) so that an index up to
// 509, such as the sum of two logarithms or 255-Log[x] when building
// Inv, can be looked up without an explicit modulo.
var Exp [510]byte

// Log is the discrete-log table; Log[0] is a sentinel and is never read
// during arithmetic (0 has no logarithm).
var Log [256]byte

// Inv holds multiplicative inverses; Inv[0] = 0 is a sentinel, never
// consumed.
var Inv [256]byte

// Mul is the full product table: Mul[a][b] = a*b in GF(2^8).
var Mul [256][256]byte

var initOnce sync.Once

// Init builds Exp, Log, Inv and Mul. Safe to call from multiple
// goroutines: the tables are built at most once, guarded by sync.Once,
// and every caller observes the fully-built tables before it returns.
func Init() {
	initOnce.Do(buildTables)
}

func buildTables() {
	// alpha = 2 generates every nonzero element of the field.
	x := 1
	for i := 0; i < 255; i++ {
		Exp[i] = byte(x)
		Log[byte(x)] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= 0x11D
		}
	}
	for i := 255; i < 510; i++ {
		Exp[i] = Exp[i-255]
	}

	Inv[0] = 0
	for x := 1; x < 256; x++ {
		Inv[x] = Exp[255-int(Log[byte(x)])]
	}

	for a := 1; a < 256; a++ {
		for b := 1; b < 256; b++ {
			Mul[a][b] = Exp[ModNN(int(Log[byte(a)])+int(Log[byte(b)]))]
		}
	}
	// Row/column zero are already zero-valued by default.
}

// ModNN reduces x modulo 255 without a division: repeatedly subtract 255
// and fold the high byte back in via (x>>8)+(x&0xFF) until the result is
// below 255. Exported so callers building exponents outside this package
// (e.g. the codec's Vandermonde row construction) can use the same
// reduction rather than a second hand-rolled copy.
func ModNN(x int) int {
	for x >= 255 {
		x -= 255
		x = (x >> 8) + (x & 0xFF)
	}
	return x
}
