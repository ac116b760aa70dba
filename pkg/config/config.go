// Package config loads the settings a block-store service built around
// package rscodec needs: shard counts, where shards live on disk, and how
// the API and database are reached.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// Config holds the configuration settings for the block-store service.
type Config struct {
	ServerAddress      string `yaml:"server_address" mapstructure:"server_address"`
	ShardStoreBasePath string `yaml:"shard_store_base_path" mapstructure:"shard_store_base_path"`
	Database           string `yaml:"database" mapstructure:"database"`
	JWTSecret          string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	DataShards         int    `yaml:"data_shards" mapstructure:"data_shards"`
	ParityShards       int    `yaml:"parity_shards" mapstructure:"parity_shards"`
}

// defaults mirrors the values a fresh checkout should run with when no
// config.yaml is present at all.
func defaults() Config {
	return Config{
		ServerAddress:      ":8080",
		ShardStoreBasePath: "./data/shards",
		Database:           "./data/blocks.db",
		JWTSecret:          "change-me",
		DataShards:         4,
		ParityShards:       2,
	}
}

// LoadConfig loads configuration from ./config.yaml via viper, falling
// back to the built-in defaults for any field viper does not find. It
// never errors on a missing config file — only on a malformed one.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetDefault("server_address", cfg.ServerAddress)
	viper.SetDefault("shard_store_base_path", cfg.ShardStoreBasePath)
	viper.SetDefault("database", cfg.Database)
	viper.SetDefault("jwt_secret", cfg.JWTSecret)
	viper.SetDefault("data_shards", cfg.DataShards)
	viper.SetDefault("parity_shards", cfg.ParityShards)

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("config: read config.yaml: %w", err)
		}
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile decodes a YAML file at path directly, bypassing viper's
// search path, for callers that point at an explicit file rather than
// relying on the current directory.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
