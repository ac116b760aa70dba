// Package storagenode runs the HTTP server a single shard-holding node
// exposes: put, get and delete for the shards a blockstore.Store hands
// it, plus health and info endpoints.
package storagenode

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vault-rs/rscodec/pkg/blockstore"
)

// Node serves one machine's slice of a block store's shards.
type Node struct {
	ID     string
	store  blockstore.ShardStore
	logger *zap.Logger
}

// New builds a Node backed by store. logger may be nil.
func New(id string, store blockstore.ShardStore, logger *zap.Logger) *Node {
	return &Node{ID: id, store: store, logger: logger}
}

// Router builds the gorilla/mux router this node serves on.
func (n *Node) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", n.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/info", n.infoHandler).Methods(http.MethodGet)
	r.HandleFunc("/shards/{blockID}/{shardIndex}", n.putShardHandler).Methods(http.MethodPut)
	r.HandleFunc("/shards/{blockID}/{shardIndex}", n.getShardHandler).Methods(http.MethodGet)
	r.HandleFunc("/shards/{blockID}/{shardIndex}", n.deleteShardHandler).Methods(http.MethodDelete)
	return r
}

func (n *Node) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (n *Node) infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"node_id": n.ID})
}

func parseShardIndex(r *http.Request) (blockID string, shardIndex int, err error) {
	vars := mux.Vars(r)
	blockID = vars["blockID"]
	shardIndex, err = strconv.Atoi(vars["shardIndex"])
	return blockID, shardIndex, err
}

func (n *Node) putShardHandler(w http.ResponseWriter, r *http.Request) {
	blockID, shardIndex, err := parseShardIndex(r)
	if err != nil {
		http.Error(w, "invalid shard index", http.StatusBadRequest)
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read shard body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := n.store.StoreShard(blockID, shardIndex, data); err != nil {
		if n.logger != nil {
			n.logger.Error("store shard failed", zap.String("block_id", blockID), zap.Int("shard_index", shardIndex), zap.Error(err))
		}
		http.Error(w, fmt.Sprintf("failed to store shard: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"status": "stored"})
}

func (n *Node) getShardHandler(w http.ResponseWriter, r *http.Request) {
	blockID, shardIndex, err := parseShardIndex(r)
	if err != nil {
		http.Error(w, "invalid shard index", http.StatusBadRequest)
		return
	}
	data, err := n.store.RetrieveShard(blockID, shardIndex)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to retrieve shard: %v", err), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

func (n *Node) deleteShardHandler(w http.ResponseWriter, r *http.Request) {
	blockID, shardIndex, err := parseShardIndex(r)
	if err != nil {
		http.Error(w, "invalid shard index", http.StatusBadRequest)
		return
	}
	if err := n.store.DeleteShard(blockID, shardIndex); err != nil {
		http.Error(w, fmt.Sprintf("failed to delete shard: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}
