package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "data_shards: 10\nparity_shards: 4\nserver_address: \":9090\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataShards != 10 || cfg.ParityShards != 4 {
		t.Fatalf("got DataShards=%d ParityShards=%d, want 10,4", cfg.DataShards, cfg.ParityShards)
	}
	if cfg.ServerAddress != ":9090" {
		t.Fatalf("got ServerAddress=%q, want :9090", cfg.ServerAddress)
	}
	// Fields not present in the file keep their defaults.
	if cfg.Database == "" {
		t.Fatal("Database default was dropped")
	}
}

func TestLoadFromFileMissingFile(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
