// Package compression LZ4-compresses shards before they are written to a
// shard store, and decompresses them on read. It has no knowledge of
// erasure coding; it operates on whatever bytes it is handed.
package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// CompressShard LZ4-compresses a single shard's bytes.
func CompressShard(shard []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(shard); err != nil {
		return nil, fmt.Errorf("compression: write shard: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compression: close writer: %w", err)
	}
	return buf.Bytes(), nil
}

// DecompressShard reverses CompressShard.
func DecompressShard(data []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("compression: decompress shard: %w", err)
	}
	return buf.Bytes(), nil
}
