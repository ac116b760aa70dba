package matrix

import "github.com/vault-rs/rscodec/internal/gf256"

// InvertVandermonde inverts a k*k Vandermonde matrix v in place in
// O(k^2), exploiting the fact that it is fully determined by its second
// column (v[i*k+1] == p_i, the evaluation points). It must not be called
// on a matrix that is not actually Vandermonde-structured; the caller
// (rscodec's construction, which builds v this way in the first place)
// guarantees that.
func InvertVandermonde(v []byte, k int) {
	gf256.Init()

	if k == 1 {
		v[0] = 1
		return
	}

	p := make([]byte, k)
	for i := 0; i < k; i++ {
		p[i] = v[i*k+1]
	}

	// c holds the coefficients of P(x) = prod_i (x - p_i); in GF(2^8),
	// -x == x, so the recurrence folds each new root in with XOR.
	c := make([]byte, k)
	c[k-1] = p[0]
	for i := 1; i < k; i++ {
		pi := p[i]
		for j := k - 1 - i; j < k-1; j++ {
			c[j] ^= gf256.Mul[pi][c[j+1]]
		}
		c[k-1] ^= pi
	}

	b := make([]byte, k)
	for row := 0; row < k; row++ {
		x := p[row]
		var t byte = 1
		b[k-1] = 1
		for i := k - 2; i >= 0; i-- {
			b[i] = c[i+1] ^ gf256.Mul[x][b[i+1]]
			t = gf256.Mul[x][t] ^ b[i]
		}
		invT := gf256.Inv[t]
		for col := 0; col < k; col++ {
			v[col*k+row] = gf256.Mul[invT][b[col]]
		}
	}
}
