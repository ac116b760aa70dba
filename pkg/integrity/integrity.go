// Package integrity builds a Merkle tree over a block's shard set so a
// blockstore can tell whether the shards it is about to feed to
// rscodec.Decode are the ones it originally wrote. This check happens
// entirely above the codec: rscodec itself carries no shard integrity
// mechanism, by design (see the core specification's Non-goals).
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cbergoon/merkletree"
)

// shardContent adapts a raw shard buffer to merkletree.Content.
type shardContent struct {
	hexData string
}

func (c shardContent) CalculateHash() ([]byte, error) {
	h := sha256.New()
	if _, err := h.Write([]byte(c.hexData)); err != nil {
		return nil, fmt.Errorf("integrity: hash shard: %w", err)
	}
	return h.Sum(nil), nil
}

func (c shardContent) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(shardContent)
	if !ok {
		return false, fmt.Errorf("integrity: comparing against non-shard content")
	}
	return c.hexData == o.hexData, nil
}

// BuildShardTree builds a Merkle tree over a block's n shards, in shard
// index order. The returned root, hex-encoded, is what a blockstore
// persists alongside the block's metadata.
func BuildShardTree(shards [][]byte) (*merkletree.MerkleTree, error) {
	contents := make([]merkletree.Content, len(shards))
	for i, s := range shards {
		contents[i] = shardContent{hexData: hex.EncodeToString(s)}
	}
	tree, err := merkletree.NewTree(contents)
	if err != nil {
		return nil, fmt.Errorf("integrity: build merkle tree: %w", err)
	}
	return tree, nil
}

// Root hex-encodes the tree's Merkle root.
func Root(tree *merkletree.MerkleTree) string {
	return hex.EncodeToString(tree.MerkleRoot())
}

// ShardHash returns the same per-shard leaf hash the Merkle tree hashes
// each shard to, hex-encoded. A blockstore that only has some of a
// block's n shards on hand (the common case: reconstruction from k of
// n) cannot rebuild the full tree to call VerifyShard, but it can still
// check a shard against the leaf hash it recorded for that index when
// the block was written.
func ShardHash(shard []byte) (string, error) {
	c := shardContent{hexData: hex.EncodeToString(shard)}
	h, err := c.CalculateHash()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h), nil
}

// VerifyShard checks that shard is present in tree and returns one hash
// of its Merkle path, hex-encoded: the last entry of the path, or the
// tree's root when the path is empty. The rest of the path is not
// returned. An error means the shard is not part of this tree — a decode
// must not proceed with it.
func VerifyShard(tree *merkletree.MerkleTree, shard []byte) (string, error) {
	content := shardContent{hexData: hex.EncodeToString(shard)}
	ok, err := tree.VerifyContent(content)
	if err != nil {
		return "", fmt.Errorf("integrity: verify shard: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("integrity: shard not part of the recorded shard set")
	}
	path, _, err := tree.GetMerklePath(content)
	if err != nil {
		return "", fmt.Errorf("integrity: get merkle path: %w", err)
	}
	if len(path) == 0 {
		return Root(tree), nil
	}
	return hex.EncodeToString(path[len(path)-1]), nil
}
