// Package rscodec implements a systematic Reed-Solomon erasure codec over
// GF(2^8). Given k equal-size source shards, a Codec constructed for
// (k, n) can produce up to n total shards — the first k identical to the
// sources, the rest parity — such that any k of the n suffice to recover
// the originals.
//
// The codec is byte-wise, block-synchronous and stateless across blocks.
// It knows nothing about shard transport, framing, persistence or
// integrity checking; callers own the shard buffers for the duration of
// every call.
package rscodec

import (
	"errors"

	"github.com/vault-rs/rscodec/internal/gf256"
	"github.com/vault-rs/rscodec/internal/matrix"
)

var (
	// ErrInvalidParameters is returned by New when k, n are out of range
	// (k < 1, k > n, or n > 256).
	ErrInvalidParameters = errors.New("rscodec: invalid k,n parameters")
	// ErrInvalidIndex is returned by Encode when index >= n.
	ErrInvalidIndex = errors.New("rscodec: invalid shard index")
	// ErrDuplicateIndex is returned by Decode when two received shards
	// claim the same original position.
	ErrDuplicateIndex = errors.New("rscodec: duplicate shard index")
	// ErrSingularMatrix is returned by Decode when the k received
	// indices do not yield an invertible decode matrix. For a
	// well-formed systematic Vandermonde codec with distinct in-range
	// indices this cannot happen; seeing it indicates corrupted input.
	ErrSingularMatrix = errors.New("rscodec: singular decode matrix")
)

// Codec holds the parameters and systematic encoding matrix for one
// (k, n) pair. A Codec is immutable after construction: Encode never
// mutates it, and any number of goroutines may call Encode concurrently
// against distinct output buffers. Decode mutates its caller's pkt/index
// slices, so callers must serialize access to those, not to the Codec.
type Codec struct {
	k, n int
	// encMatrix is n*k, row-major. Rows [0,k) are the identity; rows
	// [k,n) are the systematic parity rows.
	encMatrix []byte
}

// New constructs a codec for k source shards and n total shards. It
// requires 1 <= k <= n <= 256.
func New(k, n int) (*Codec, error) {
	if k < 1 || k > n || n > 256 {
		return nil, ErrInvalidParameters
	}
	gf256.Init()

	tmp := make([]byte, n*k)
	// Row 0 is special: it represents the point 0, and 0^0 is taken as
	// 1 by convention so that after systematization it becomes part of
	// the identity block.
	tmp[0] = 1
	for row := 1; row < n; row++ {
		base := row * k
		for col := 0; col < k; col++ {
			tmp[base+col] = gf256.Exp[gf256.ModNN((row-1)*col)]
		}
	}

	top := tmp[:k*k]
	matrix.InvertVandermonde(top, k)

	enc := make([]byte, n*k)
	if n > k {
		matrix.MatMul(tmp[k*k:], top, enc[k*k:], n-k, k, k)
	}
	for i := 0; i < k; i++ {
		enc[i*k+i] = 1
	}

	return &Codec{k: k, n: n, encMatrix: enc}, nil
}

// K returns the number of source shards.
func (c *Codec) K() int { return c.k }

// N returns the total number of shards the codec can produce.
func (c *Codec) N() int { return c.n }

// Encode writes one shard to out: the verbatim source shard when index
// < K(), or a parity shard computed from all k sources otherwise. src
// must have exactly K() elements, all of length sz; out must have length
// sz.
func (c *Codec) Encode(src [][]byte, out []byte, index int, sz int) error {
	if index < 0 || index >= c.n {
		return ErrInvalidIndex
	}
	if index < c.k {
		copy(out, src[index][:sz])
		return nil
	}
	for i := range out {
		out[i] = 0
	}
	row := c.encMatrix[index*c.k : index*c.k+c.k]
	gf256.AddMulK(out, src, row)
	return nil
}

// Decode reconstructs the k original shards in place from any k received
// shards. pkt holds pointers to the received shard buffers and index
// holds the shard index each one corresponds to; both have length K().
// On success every pkt[i] holds original shard i and index is left as
// [0,1,...,k-1]. On error the shuffle step may have partially permuted
// pkt/index.
func (c *Codec) Decode(pkt [][]byte, index []int, sz int) error {
	k := c.k
	if err := shuffle(pkt, index, k); err != nil {
		return err
	}

	dec := make([]byte, k*k)
	for i := 0; i < k; i++ {
		row := dec[i*k : i*k+k]
		if index[i] < k {
			row[i] = 1
		} else {
			copy(row, c.encMatrix[index[i]*k:index[i]*k+k])
		}
	}
	if err := matrix.InvertMat(dec, k); err != nil {
		return ErrSingularMatrix
	}

	// Scratch for every reconstructed shard is allocated up front so
	// that no reconstruction ever reads a pkt buffer another
	// reconstruction has already overwritten.
	recovered := make(map[int][]byte, k)
	for i := 0; i < k; i++ {
		if index[i] < k {
			continue
		}
		r := make([]byte, sz)
		gf256.AddMulK(r, pkt, dec[i*k:i*k+k])
		recovered[i] = r
	}
	for i, r := range recovered {
		copy(pkt[i], r)
		index[i] = i
	}
	return nil
}

// shuffle reorders pkt/index in place so that every shard which is one
// of the originals (index[i] < k) lands at position index[i]. This
// mirrors the classic FEC shuffle: walk forward, and whenever the shard
// at i belongs at some other original slot c, swap it there and
// re-examine i without advancing.
func shuffle(pkt [][]byte, index []int, k int) error {
	for i := 0; i < k; {
		if index[i] >= k || index[i] == i {
			i++
			continue
		}
		c := index[i]
		if index[c] == c {
			return ErrDuplicateIndex
		}
		pkt[i], pkt[c] = pkt[c], pkt[i]
		index[i], index[c] = index[c], index[i]
	}
	return nil
}
