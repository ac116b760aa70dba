// Package api exposes a block store over HTTP: JWT-protected endpoints
// to put, get, and delete erasure-coded blocks.
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vault-rs/rscodec/pkg/auth"
	"github.com/vault-rs/rscodec/pkg/blockstore"
)

// Server wires a blockstore.Store, a token issuer and a logger into a
// gin.Engine.
type Server struct {
	store  *blockstore.Store
	issuer *auth.TokenIssuer
	logger *zap.Logger
	// k, n are the default shard parameters used when a PutBlock
	// request does not name its own.
	k, n int
}

// NewServer builds a Server. logger may be nil.
func NewServer(store *blockstore.Store, issuer *auth.TokenIssuer, logger *zap.Logger, k, n int) *Server {
	return &Server{store: store, issuer: issuer, logger: logger, k: k, n: n}
}

// SetupRouter builds the gin.Engine for a Server: a public /login
// route and a JWT-protected block group.
func SetupRouter(s *Server) *gin.Engine {
	r := gin.Default()

	r.GET("/health", healthHandler)
	r.POST("/login", s.loginHandler)

	protected := r.Group("/")
	protected.Use(auth.Middleware(s.issuer))

	protected.POST("/blocks", auth.RequireRole("writer"), s.putBlockHandler)
	protected.GET("/blocks/:id", auth.RequireRole("reader"), s.getBlockHandler)
	protected.DELETE("/blocks/:id", auth.RequireRole("writer"), s.deleteBlockHandler)

	return r
}
