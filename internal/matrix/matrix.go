// Package matrix implements dense row-major matrix operations over
// GF(2^8): multiplication, general Gauss-Jordan inversion, and a
// specialized O(k^2) Vandermonde inverter. It underlies the systematic
// Reed-Solomon codec in package rscodec and has no notion of shards or
// codecs of its own.
package matrix

import "github.com/vault-rs/rscodec/internal/gf256"

// MatMul computes C = A*B over GF(2^8), where A is n*k, B is k*m and C
// is n*m, all row-major.
func MatMul(a, b, c []byte, n, k, m int) {
	for row := 0; row < n; row++ {
		arow := a[row*k : row*k+k]
		crow := c[row*m : row*m+m]
		for col := 0; col < m; col++ {
			var acc byte
			for i := 0; i < k; i++ {
				acc ^= gf256.Mul[arow[i]][b[i*m+col]]
			}
			crow[col] = acc
		}
	}
}
