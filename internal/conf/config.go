package conf

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"kestrel/internal/blobstorage"
)

type Config struct {
	// MaxMessageDepth caps recursion into nested message/rfc822 parts.
	MaxMessageDepth int `yaml:"max_message_depth"`
	// IngestConcurrency is the number of messages parsed in parallel
	// by the ingest pipeline.
	IngestConcurrency int                `yaml:"ingest_concurrency"`
	BlobStorage       blobstorage.Config `yaml:"blob_storage"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		MaxMessageDepth:   32,
		IngestConcurrency: 4,
	}
}

func LoadConfig() (*Config, error) {
	// Try multiple possible paths
	configPaths := []string{
		"/etc/kestrel/kestrel.yaml",
		"./config/kestrel.yaml",
		"./kestrel.yaml",
		"config/kestrel.yaml",
	}

	var data []byte
	var err error
	for _, path := range configPaths {
		data, err = os.ReadFile(filepath.Clean(path))
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	return parse(data)
}

// LoadConfigFrom reads the configuration from an explicit path.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.MaxMessageDepth < 1 {
		cfg.MaxMessageDepth = 32
	}
	if cfg.IngestConcurrency < 1 {
		cfg.IngestConcurrency = 4
	}
	return cfg, nil
}
