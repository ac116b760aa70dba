package blockstore

import (
	"fmt"
	"os"
	"path/filepath"
)

// ShardStore persists and retrieves the raw, compressed bytes of a
// single block's shards, addressed by block ID and shard index.
type ShardStore interface {
	StoreShard(blockID string, shardIndex int, data []byte) error
	RetrieveShard(blockID string, shardIndex int) ([]byte, error)
	DeleteShard(blockID string, shardIndex int) error
}

// LocalShardStore lays shards out under BasePath as
// BasePath/<blockID>/shard_<index>.
type LocalShardStore struct {
	BasePath string
}

// NewLocalShardStore returns a LocalShardStore rooted at basePath.
func NewLocalShardStore(basePath string) *LocalShardStore {
	return &LocalShardStore{BasePath: basePath}
}

func (s *LocalShardStore) shardPath(blockID string, shardIndex int) string {
	return filepath.Join(s.BasePath, blockID, fmt.Sprintf("shard_%d", shardIndex))
}

// StoreShard writes shard data to disk, creating the block's directory
// if necessary.
func (s *LocalShardStore) StoreShard(blockID string, shardIndex int, data []byte) error {
	path := s.shardPath(blockID, shardIndex)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("blockstore: create shard directory for %s: %w", blockID, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("blockstore: write shard %d of %s: %w", shardIndex, blockID, err)
	}
	return nil
}

// RetrieveShard reads back shard data previously written by
// StoreShard.
func (s *LocalShardStore) RetrieveShard(blockID string, shardIndex int) ([]byte, error) {
	data, err := os.ReadFile(s.shardPath(blockID, shardIndex))
	if err != nil {
		return nil, fmt.Errorf("blockstore: read shard %d of %s: %w", shardIndex, blockID, err)
	}
	return data, nil
}

// DeleteShard removes a single shard file. Deleting a shard that does
// not exist is not an error.
func (s *LocalShardStore) DeleteShard(blockID string, shardIndex int) error {
	if err := os.Remove(s.shardPath(blockID, shardIndex)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("blockstore: delete shard %d of %s: %w", shardIndex, blockID, err)
	}
	return nil
}

// DeleteBlockDir removes a block's entire shard directory.
func (s *LocalShardStore) DeleteBlockDir(blockID string) error {
	if err := os.RemoveAll(filepath.Join(s.BasePath, blockID)); err != nil {
		return fmt.Errorf("blockstore: delete shard directory for %s: %w", blockID, err)
	}
	return nil
}
