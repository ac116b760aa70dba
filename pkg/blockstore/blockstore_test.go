package blockstore

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "blocks.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	shards := NewLocalShardStore(t.TempDir())
	return New(db, shards, nil)
}

func TestPutGetBlockRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	data := []byte("a block of data large enough to span several shards of a reasonable size")
	blockID, merkleRoot, err := store.PutBlock(ctx, data, 4, 6)
	if err != nil {
		t.Fatal(err)
	}
	if blockID == "" {
		t.Fatal("expected a non-empty block ID")
	}
	if merkleRoot == "" {
		t.Fatal("expected a non-empty Merkle root")
	}

	got, err := store.GetBlock(ctx, blockID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("GetBlock = %q, want %q", got, data)
	}
}

func TestGetBlockSurvivesShardLoss(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	data := []byte("this block will lose two of its six shards but should still recover")
	blockID, _, err := store.PutBlock(ctx, data, 4, 6)
	if err != nil {
		t.Fatal(err)
	}

	local := store.shards.(*LocalShardStore)
	if err := local.DeleteShard(blockID, 1); err != nil {
		t.Fatal(err)
	}
	if err := local.DeleteShard(blockID, 4); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetBlock(ctx, blockID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("GetBlock after shard loss = %q, want %q", got, data)
	}
}

func TestGetBlockWithAvailableIndices(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	data := []byte("this block is recovered from an explicit subset of shard indices")
	blockID, _, err := store.PutBlock(ctx, data, 4, 6)
	if err != nil {
		t.Fatal(err)
	}

	// Only name 4 of the 6 shards as available, even though all 6 are
	// still on disk; GetBlock must not reach past what it was told is
	// available.
	got, err := store.GetBlock(ctx, blockID, []int{0, 2, 4, 5})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("GetBlock with restricted indices = %q, want %q", got, data)
	}
}

func TestGetBlockFailsBelowThreshold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	data := []byte("not enough shards will survive to recover this block")
	blockID, _, err := store.PutBlock(ctx, data, 4, 6)
	if err != nil {
		t.Fatal(err)
	}

	local := store.shards.(*LocalShardStore)
	for _, idx := range []int{0, 1, 2} {
		if err := local.DeleteShard(blockID, idx); err != nil {
			t.Fatal(err)
		}
	}

	_, err = store.GetBlock(ctx, blockID, nil)
	if !errors.Is(err, ErrNotEnoughShards) {
		t.Fatalf("expected ErrNotEnoughShards, got %v", err)
	}
}

func TestGetBlockFailsWhenAvailableIndicesTooFew(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	data := []byte("only 3 of the 6 shards are claimed available, below the k=4 threshold")
	blockID, _, err := store.PutBlock(ctx, data, 4, 6)
	if err != nil {
		t.Fatal(err)
	}

	_, err = store.GetBlock(ctx, blockID, []int{0, 1, 2})
	if !errors.Is(err, ErrNotEnoughShards) {
		t.Fatalf("expected ErrNotEnoughShards, got %v", err)
	}
}

func TestDeleteBlockRemovesMetadataAndShards(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	data := []byte("a block that will be deleted")
	blockID, _, err := store.PutBlock(ctx, data, 3, 5)
	if err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteBlock(blockID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetBlock(ctx, blockID, nil); err == nil {
		t.Fatal("expected GetBlock to fail after DeleteBlock")
	}
	if err := store.DeleteBlock(blockID); err == nil {
		t.Fatal("expected DeleteBlock on a missing block to fail")
	}
}
