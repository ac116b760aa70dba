// Command blockserver runs the HTTP block-store service: it loads
// configuration, opens the metadata database and shard store, wires up
// tracing, and serves the JWT-protected block API.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/vault-rs/rscodec/pkg/api"
	"github.com/vault-rs/rscodec/pkg/auth"
	"github.com/vault-rs/rscodec/pkg/blockstore"
	"github.com/vault-rs/rscodec/pkg/config"
	"github.com/vault-rs/rscodec/pkg/telemetry"
)

func main() {
	logger, err := telemetry.NewLogger()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	shutdownTracing, err := telemetry.NewTracerProvider("blockserver")
	if err != nil {
		logger.Fatal("tracing init failed", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	db, err := blockstore.OpenDB(cfg.Database)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	defer db.Close()

	shards := blockstore.NewLocalShardStore(cfg.ShardStoreBasePath)
	store := blockstore.New(db, shards, logger)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, 24*time.Hour)
	server := api.NewServer(store, issuer, logger, cfg.DataShards, cfg.DataShards+cfg.ParityShards)

	router := api.SetupRouter(server)
	logger.Info("starting block server",
		zap.String("address", cfg.ServerAddress),
		zap.Int("data_shards", cfg.DataShards),
		zap.Int("parity_shards", cfg.ParityShards),
	)
	if err := router.Run(cfg.ServerAddress); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
