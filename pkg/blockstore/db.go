// Package blockstore ties rscodec, erasurecoding, integrity and
// compression together into a durable block store: PutBlock erasure
// codes and persists a byte stream as a set of shards plus metadata;
// GetBlock reassembles it from whichever shards are still available.
package blockstore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// OpenDB opens (creating if necessary) the SQLite database that holds
// block metadata, and ensures its schema exists.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("blockstore: open %s: %w", path, err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func initSchema(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS blocks (
		block_id       TEXT PRIMARY KEY,
		data_shards    INTEGER NOT NULL,
		parity_shards  INTEGER NOT NULL,
		shard_size     INTEGER NOT NULL,
		original_size  INTEGER NOT NULL,
		merkle_root    TEXT NOT NULL,
		created_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS block_shards (
		block_id    TEXT NOT NULL,
		shard_index INTEGER NOT NULL,
		leaf_hash   TEXT NOT NULL,
		PRIMARY KEY (block_id, shard_index),
		FOREIGN KEY (block_id) REFERENCES blocks(block_id) ON DELETE CASCADE
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("blockstore: create schema: %w", err)
	}
	return nil
}

// BlockRecord is a block's persisted metadata row.
type BlockRecord struct {
	BlockID      string
	DataShards   int
	ParityShards int
	ShardSize    int
	OriginalSize int
	MerkleRoot   string
}

func insertBlock(db *sql.DB, rec BlockRecord, leafHashes []string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("blockstore: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO blocks (block_id, data_shards, parity_shards, shard_size, original_size, merkle_root)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.BlockID, rec.DataShards, rec.ParityShards, rec.ShardSize, rec.OriginalSize, rec.MerkleRoot,
	)
	if err != nil {
		return fmt.Errorf("blockstore: insert block %s: %w", rec.BlockID, err)
	}

	for i, hash := range leafHashes {
		if _, err := tx.Exec(
			`INSERT INTO block_shards (block_id, shard_index, leaf_hash) VALUES (?, ?, ?)`,
			rec.BlockID, i, hash,
		); err != nil {
			return fmt.Errorf("blockstore: insert shard hash %d for block %s: %w", i, rec.BlockID, err)
		}
	}
	return tx.Commit()
}

func selectBlock(db *sql.DB, blockID string) (BlockRecord, error) {
	var rec BlockRecord
	row := db.QueryRow(
		`SELECT block_id, data_shards, parity_shards, shard_size, original_size, merkle_root
		 FROM blocks WHERE block_id = ?`, blockID)
	if err := row.Scan(&rec.BlockID, &rec.DataShards, &rec.ParityShards, &rec.ShardSize, &rec.OriginalSize, &rec.MerkleRoot); err != nil {
		return BlockRecord{}, fmt.Errorf("blockstore: lookup block %s: %w", blockID, err)
	}
	return rec, nil
}

func selectLeafHashes(db *sql.DB, blockID string, n int) ([]string, error) {
	rows, err := db.Query(
		`SELECT shard_index, leaf_hash FROM block_shards WHERE block_id = ?`, blockID)
	if err != nil {
		return nil, fmt.Errorf("blockstore: lookup shard hashes for %s: %w", blockID, err)
	}
	defer rows.Close()

	hashes := make([]string, n)
	for rows.Next() {
		var idx int
		var hash string
		if err := rows.Scan(&idx, &hash); err != nil {
			return nil, fmt.Errorf("blockstore: scan shard hash for %s: %w", blockID, err)
		}
		if idx >= 0 && idx < n {
			hashes[idx] = hash
		}
	}
	return hashes, rows.Err()
}

func deleteBlock(db *sql.DB, blockID string) error {
	if _, err := db.Exec(`DELETE FROM block_shards WHERE block_id = ?`, blockID); err != nil {
		return fmt.Errorf("blockstore: delete shard hashes for %s: %w", blockID, err)
	}
	res, err := db.Exec(`DELETE FROM blocks WHERE block_id = ?`, blockID)
	if err != nil {
		return fmt.Errorf("blockstore: delete block %s: %w", blockID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("blockstore: check delete result for %s: %w", blockID, err)
	}
	if affected == 0 {
		return fmt.Errorf("blockstore: block %s not found", blockID)
	}
	return nil
}
