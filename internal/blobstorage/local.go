package blobstorage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore keeps blobs as files under a base directory, sharded by
// the first two key characters. The default when S3 is disabled.
type LocalStore struct {
	base string
}

// NewLocalStore creates the base directory if needed.
func NewLocalStore(base string) (*LocalStore, error) {
	if err := os.MkdirAll(base, 0750); err != nil {
		return nil, fmt.Errorf("blob storage: failed to create directory: %v", err)
	}
	return &LocalStore{base: base}, nil
}

func (s *LocalStore) path(key string) string {
	shard := "00"
	if len(key) >= 2 {
		shard = key[:2]
	}
	return filepath.Join(s.base, shard, key)
}

func (s *LocalStore) Put(_ context.Context, key string, data []byte) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("blob storage: put %s: %v", key, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0640); err != nil {
		return fmt.Errorf("blob storage: put %s: %v", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("blob storage: put %s: %v", key, err)
	}
	return nil
}

func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("blob storage: get %s: %v", key, err)
	}
	return data, nil
}

func (s *LocalStore) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("blob storage: stat %s: %v", key, err)
}
