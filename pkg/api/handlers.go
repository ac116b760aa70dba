package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vault-rs/rscodec/pkg/auth"
	"github.com/vault-rs/rscodec/pkg/blockstore"
)

// credentialUser is a single statically configured API caller. A real
// deployment would back this with the users table the teacher's own
// bucket schema carried; this repository's scope stops at the block
// store, so login checks a fixed identity instead.
type credentialUser struct {
	Username     string
	PasswordHash string
	Role         string
}

// staticUsers is intentionally tiny: enough to exercise auth end to
// end without pulling in a user-management surface this repository
// does not otherwise need.
var staticUsers = map[string]credentialUser{}

// RegisterUser adds or replaces a login-capable identity. Call it at
// startup from configuration; there is no HTTP route to create users.
func RegisterUser(username, password, role string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	staticUsers[username] = credentialUser{Username: username, PasswordHash: hash, Role: role}
	return nil
}

func (s *Server) loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, ok := staticUsers[req.Username]
	if !ok || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := s.issuer.Issue(user.Username, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// queryInt reads an integer query parameter, falling back to def when
// the parameter is absent or malformed.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// queryIndices parses a comma-separated list of shard indices from the
// shards query parameter. An absent or empty parameter yields a nil
// slice, meaning "every shard is a candidate."
func queryIndices(c *gin.Context) []int {
	raw := c.Query("shards")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	indices := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		indices = append(indices, v)
	}
	return indices
}

func (s *Server) putBlockHandler(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty block body"})
		return
	}

	k := queryInt(c, "k", s.k)
	n := queryInt(c, "n", s.n)

	blockID, merkleRoot, err := s.store.PutBlock(c.Request.Context(), data, k, n)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("put block failed", zap.Error(err))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store block"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"block_id": blockID, "merkle_root": merkleRoot})
}

func (s *Server) getBlockHandler(c *gin.Context) {
	blockID := c.Param("id")
	availableIndices := queryIndices(c)
	data, err := s.store.GetBlock(c.Request.Context(), blockID, availableIndices)
	if err != nil {
		if errors.Is(err, blockstore.ErrNotEnoughShards) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "not enough shards to recover block"})
			return
		}
		if s.logger != nil {
			s.logger.Error("get block failed", zap.String("block_id", blockID), zap.Error(err))
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "block not found"})
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}

func (s *Server) deleteBlockHandler(c *gin.Context) {
	blockID := c.Param("id")
	if err := s.store.DeleteBlock(blockID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "block not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
