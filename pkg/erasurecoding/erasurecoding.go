// Package erasurecoding turns a byte stream into equal-size shards and
// back, driving package rscodec underneath. It replaces what the
// original storage engine this repository grew out of did by wrapping
// github.com/klauspost/reedsolomon: that call is gone entirely, because
// building the codec itself is this repository's reason to exist.
package erasurecoding

import (
	"context"
	"fmt"

	"github.com/vault-rs/rscodec/pkg/rscodec"
	"github.com/vault-rs/rscodec/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Split pads data with trailing zero bytes to a multiple of k and slices
// it into k equal shards. It returns the shards and the per-shard size.
func Split(data []byte, k int) (shards [][]byte, shardSize int, err error) {
	if k <= 0 {
		return nil, 0, fmt.Errorf("erasurecoding: k must be positive, got %d", k)
	}
	shardSize = (len(data) + k - 1) / k
	if shardSize == 0 {
		shardSize = 1
	}
	padded := make([]byte, shardSize*k)
	copy(padded, data)

	shards = make([][]byte, k)
	for i := 0; i < k; i++ {
		shards[i] = padded[i*shardSize : (i+1)*shardSize]
	}
	return shards, shardSize, nil
}

// Encode builds a codec for (k, n) and produces all n shards from the k
// source shards, each of length sz.
func Encode(ctx context.Context, logger *zap.Logger, shards [][]byte, k, n, sz int) ([][]byte, error) {
	_, span := telemetry.Tracer().Start(ctx, "erasurecoding.Encode",
		trace.WithAttributes(blockAttributes(k, n, sz)...))
	defer span.End()

	codec, err := rscodec.New(k, n)
	if err != nil {
		return nil, fmt.Errorf("erasurecoding: build codec: %w", err)
	}

	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		out[i] = make([]byte, sz)
		if err := codec.Encode(shards, out[i], i, sz); err != nil {
			return nil, fmt.Errorf("erasurecoding: encode shard %d: %w", i, err)
		}
	}
	if logger != nil {
		logger.Debug("encoded block", zap.Int("k", k), zap.Int("n", n), zap.Int("shard_size", sz))
	}
	return out, nil
}

// Reconstruct recovers the k source shards from any k of a block's n
// shards, keyed by their original index in present.
func Reconstruct(ctx context.Context, logger *zap.Logger, present map[int][]byte, k, n, sz int) ([][]byte, error) {
	_, span := telemetry.Tracer().Start(ctx, "erasurecoding.Reconstruct",
		trace.WithAttributes(blockAttributes(k, n, sz)...))
	defer span.End()

	if len(present) < k {
		return nil, fmt.Errorf("erasurecoding: need %d shards to reconstruct, have %d", k, len(present))
	}
	codec, err := rscodec.New(k, n)
	if err != nil {
		return nil, fmt.Errorf("erasurecoding: build codec: %w", err)
	}

	pkt := make([][]byte, 0, k)
	idx := make([]int, 0, k)
	for i, shard := range present {
		if len(idx) == k {
			break
		}
		buf := make([]byte, sz)
		copy(buf, shard)
		pkt = append(pkt, buf)
		idx = append(idx, i)
	}

	if err := codec.Decode(pkt, idx, sz); err != nil {
		return nil, fmt.Errorf("erasurecoding: decode: %w", err)
	}

	out := make([][]byte, k)
	for i, originalIndex := range idx {
		out[originalIndex] = pkt[i]
	}
	if logger != nil {
		logger.Debug("reconstructed block", zap.Int("k", k), zap.Int("n", n), zap.Int("used_shards", len(idx)))
	}
	return out, nil
}

// Join concatenates the k source shards and trims the result to size
// bytes, undoing Split's zero padding.
func Join(shards [][]byte, size int) ([]byte, error) {
	total := 0
	for _, s := range shards {
		total += len(s)
	}
	if total < size {
		return nil, fmt.Errorf("erasurecoding: shards hold %d bytes, want %d", total, size)
	}
	out := make([]byte, 0, total)
	for _, s := range shards {
		out = append(out, s...)
	}
	return out[:size], nil
}

func blockAttributes(k, n, sz int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("k", k),
		attribute.Int("n", n),
		attribute.Int("shard_size", sz),
	}
}
