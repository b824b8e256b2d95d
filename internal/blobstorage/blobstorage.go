// Package blobstorage stores decoded attachment bodies outside the
// message index. Blobs are content-addressed by SHA-256, so storing
// the same attachment twice is a no-op and the index can deduplicate
// by key alone.
package blobstorage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Config selects and configures the blob backend.
type Config struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
}

// Store is the boundary the ingest pipeline writes attachments
// through.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Key derives the content-addressed blob key for data.
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
