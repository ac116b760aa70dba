package blockstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vault-rs/rscodec/pkg/compression"
	"github.com/vault-rs/rscodec/pkg/erasurecoding"
	"github.com/vault-rs/rscodec/pkg/integrity"
)

// ErrNotEnoughShards is returned by GetBlock when fewer than k of a
// block's shards can be read back from the ShardStore.
var ErrNotEnoughShards = errors.New("blockstore: fewer than k shards available")

// Store persists blocks of arbitrary byte data as erasure-coded,
// compressed shards, tracking each block's metadata in a SQLite
// database.
type Store struct {
	db     *sql.DB
	shards ShardStore
	logger *zap.Logger
}

// New builds a Store over an already-open metadata database and shard
// store. logger may be nil.
func New(db *sql.DB, shards ShardStore, logger *zap.Logger) *Store {
	return &Store{db: db, shards: shards, logger: logger}
}

// PutBlock splits data into k shards, encodes it out to n shards,
// compresses and persists each one, and records the block's metadata
// and per-shard Merkle leaf hashes. It returns the generated block ID
// and the hex-encoded Merkle root over the n shards.
func (s *Store) PutBlock(ctx context.Context, data []byte, k, n int) (blockID string, merkleRoot string, err error) {
	blockID = uuid.NewString()

	srcShards, shardSize, err := erasurecoding.Split(data, k)
	if err != nil {
		return "", "", fmt.Errorf("blockstore: split block %s: %w", blockID, err)
	}
	allShards, err := erasurecoding.Encode(ctx, s.logger, srcShards, k, n, shardSize)
	if err != nil {
		return "", "", fmt.Errorf("blockstore: encode block %s: %w", blockID, err)
	}

	tree, err := integrity.BuildShardTree(allShards)
	if err != nil {
		return "", "", fmt.Errorf("blockstore: build shard tree for %s: %w", blockID, err)
	}
	merkleRoot = integrity.Root(tree)

	leafHashes := make([]string, n)
	for i, shard := range allShards {
		hash, err := integrity.ShardHash(shard)
		if err != nil {
			return "", "", fmt.Errorf("blockstore: hash shard %d of %s: %w", i, blockID, err)
		}
		leafHashes[i] = hash

		compressed, err := compression.CompressShard(shard)
		if err != nil {
			return "", "", fmt.Errorf("blockstore: compress shard %d of %s: %w", i, blockID, err)
		}
		if err := s.shards.StoreShard(blockID, i, compressed); err != nil {
			return "", "", fmt.Errorf("blockstore: store shard %d of %s: %w", i, blockID, err)
		}
	}

	rec := BlockRecord{
		BlockID:      blockID,
		DataShards:   k,
		ParityShards: n - k,
		ShardSize:    shardSize,
		OriginalSize: len(data),
		MerkleRoot:   merkleRoot,
	}
	if err := insertBlock(s.db, rec, leafHashes); err != nil {
		return "", "", err
	}
	if s.logger != nil {
		s.logger.Info("stored block", zap.String("block_id", blockID), zap.Int("k", k), zap.Int("n", n))
	}
	return blockID, merkleRoot, nil
}

// GetBlock reassembles a block from its shards, requiring at least k
// usable ones. availableIndices restricts which of the block's n shard
// slots are even attempted — simulating partial availability (e.g. a
// caller that knows only some storage nodes are reachable); a nil or
// empty availableIndices means try every slot. Shards that fail
// leaf-hash verification are treated as unavailable rather than
// causing an error, so long as k good shards remain.
func (s *Store) GetBlock(ctx context.Context, blockID string, availableIndices []int) ([]byte, error) {
	rec, err := selectBlock(s.db, blockID)
	if err != nil {
		return nil, err
	}
	n := rec.DataShards + rec.ParityShards
	leafHashes, err := selectLeafHashes(s.db, blockID, n)
	if err != nil {
		return nil, err
	}

	candidates := availableIndices
	if len(candidates) == 0 {
		candidates = make([]int, n)
		for i := range candidates {
			candidates[i] = i
		}
	}

	present := make(map[int][]byte, len(candidates))
	for _, i := range candidates {
		if i < 0 || i >= n {
			continue
		}
		compressed, err := s.shards.RetrieveShard(blockID, i)
		if err != nil {
			continue
		}
		shard, err := compression.DecompressShard(compressed)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("dropping unreadable shard", zap.String("block_id", blockID), zap.Int("shard_index", i), zap.Error(err))
			}
			continue
		}
		if i < len(leafHashes) && leafHashes[i] != "" {
			hash, err := integrity.ShardHash(shard)
			if err != nil || hash != leafHashes[i] {
				if s.logger != nil {
					s.logger.Warn("dropping shard that fails integrity check", zap.String("block_id", blockID), zap.Int("shard_index", i))
				}
				continue
			}
		}
		present[i] = shard
	}
	if len(present) < rec.DataShards {
		return nil, fmt.Errorf("%w: block %s has %d/%d", ErrNotEnoughShards, blockID, len(present), rec.DataShards)
	}

	srcShards, err := erasurecoding.Reconstruct(ctx, s.logger, present, rec.DataShards, n, rec.ShardSize)
	if err != nil {
		return nil, fmt.Errorf("blockstore: reconstruct block %s: %w", blockID, err)
	}
	data, err := erasurecoding.Join(srcShards, rec.OriginalSize)
	if err != nil {
		return nil, fmt.Errorf("blockstore: join block %s: %w", blockID, err)
	}
	return data, nil
}

// DeleteBlock removes a block's metadata row and every shard file it
// owns.
func (s *Store) DeleteBlock(blockID string) error {
	rec, err := selectBlock(s.db, blockID)
	if err != nil {
		return err
	}
	if err := deleteBlock(s.db, blockID); err != nil {
		return err
	}
	if local, ok := s.shards.(*LocalShardStore); ok {
		return local.DeleteBlockDir(blockID)
	}
	n := rec.DataShards + rec.ParityShards
	for i := 0; i < n; i++ {
		if err := s.shards.DeleteShard(blockID, i); err != nil {
			return err
		}
	}
	return nil
}
