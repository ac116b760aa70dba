package matrix

import "github.com/vault-rs/rscodec/internal/gf256"

// InvertMat inverts the k*k row-major matrix m in place using
// Gauss-Jordan elimination over GF(2^8), adapted from the classic
// Vandermonde-FEC inverter (itself adapted from Numerical Recipes in C).
//
// ipiv tracks how many times each column has served as a pivot: 0 means
// unused, 1 means used exactly once. Seeing a column with ipiv>1 while
// scanning for the next pivot means m is singular, the same conclusion
// fecpp.cpp's invert_mat reaches by throwing a catchable exception from
// this branch rather than aborting.
func InvertMat(m []byte, k int) error {
	gf256.Init()

	ipiv := make([]int, k)
	indxr := make([]int, k)
	indxc := make([]int, k)

	for col := 0; col < k; col++ {
		irow, icol := -1, -1

		if ipiv[col] != 1 && m[col*k+col] != 0 {
			irow, icol = col, col
		} else {
			for row := 0; row < k && icol == -1; row++ {
				if ipiv[row] == 1 {
					continue
				}
				for ix := 0; ix < k; ix++ {
					if ipiv[ix] == 0 {
						if m[row*k+ix] != 0 {
							irow, icol = row, ix
							break
						}
					} else if ipiv[ix] > 1 {
						return ErrSingular
					}
				}
			}
			if icol == -1 {
				return ErrSingular
			}
		}
		ipiv[icol]++

		if irow != icol {
			swapRows(m, k, irow, icol)
		}

		indxr[col] = irow
		indxc[col] = icol

		pivot := m[icol*k : icol*k+k]
		c := pivot[icol]
		if c == 0 {
			return ErrSingular
		}
		if c != 1 {
			inv := gf256.Inv[c]
			pivot[icol] = 1
			for i := range pivot {
				pivot[i] = gf256.Mul[inv][pivot[i]]
			}
		}

		isIdentityRow := true
		for i := 0; i < k; i++ {
			want := byte(0)
			if i == icol {
				want = 1
			}
			if pivot[i] != want {
				isIdentityRow = false
				break
			}
		}
		if !isIdentityRow {
			for row := 0; row < k; row++ {
				if row == icol {
					continue
				}
				r := m[row*k : row*k+k]
				c := r[icol]
				if c == 0 {
					continue
				}
				r[icol] = 0
				gf256.AddMul(r, pivot, c)
			}
		}
	}

	for col := k - 1; col >= 0; col-- {
		if indxr[col] < 0 || indxr[col] >= k || indxc[col] < 0 || indxc[col] >= k {
			// indxr/indxc are only ever set from irow/icol, both always
			// within [0,k) by construction, so this branch cannot fire;
			// fecpp.cpp reaches the same case by logging to stderr and
			// skipping the swap rather than aborting.
			continue
		}
		if indxr[col] != indxc[col] {
			swapColumns(m, k, indxr[col], indxc[col])
		}
	}
	return nil
}

func swapRows(m []byte, k, r1, r2 int) {
	a := m[r1*k : r1*k+k]
	b := m[r2*k : r2*k+k]
	for i := range a {
		a[i], b[i] = b[i], a[i]
	}
}

func swapColumns(m []byte, k, c1, c2 int) {
	for row := 0; row < k; row++ {
		base := row * k
		m[base+c1], m[base+c2] = m[base+c2], m[base+c1]
	}
}
