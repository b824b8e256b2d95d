package main

import (
	"context"
	"flag"
	"log"

	"kestrel/internal/blobstorage"
	"kestrel/internal/conf"
	"kestrel/internal/ingest"
)

func main() {
	// Command-line flags
	dir := flag.String("dir", ".", "Directory to scan for .eml files")
	indexPath := flag.String("index", "./kestrel-index.db", "Path to the message index database")
	blobDir := flag.String("blobs", "./blobs", "Local blob directory (used when S3 is disabled)")
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	log.Println("Starting Kestrel message ingestion...")

	var cfg *conf.Config
	var err error
	if *configPath != "" {
		cfg, err = conf.LoadConfigFrom(*configPath)
	} else {
		cfg, err = conf.LoadConfig()
	}
	if err != nil {
		log.Printf("No config file found (%v), using defaults", err)
		cfg = conf.DefaultConfig()
	}

	var store blobstorage.Store
	if cfg.BlobStorage.Enabled {
		log.Println("Initializing S3 blob storage...")
		s3Store, err := blobstorage.NewS3Store(cfg.BlobStorage)
		if err != nil {
			log.Printf("Warning: Failed to initialize S3 blob storage: %v", err)
			log.Println("Falling back to local blob storage")
		} else {
			log.Printf("S3 blob storage initialized: %s (bucket: %s)", cfg.BlobStorage.Endpoint, cfg.BlobStorage.Bucket)
			store = s3Store
		}
	}
	if store == nil {
		local, err := blobstorage.NewLocalStore(*blobDir)
		if err != nil {
			log.Fatal("Failed to initialize local blob storage:", err)
		}
		store = local
	}

	index, err := ingest.OpenIndex(*indexPath)
	if err != nil {
		log.Fatal("Failed to open message index:", err)
	}
	defer func() {
		if err := index.Close(); err != nil {
			log.Printf("Error closing message index: %v", err)
		}
	}()

	pipeline := &ingest.Pipeline{
		Store:       store,
		Index:       index,
		Concurrency: cfg.IngestConcurrency,
		MaxDepth:    cfg.MaxMessageDepth,
	}

	stats, err := pipeline.IngestDir(context.Background(), *dir)
	if err != nil {
		log.Fatal("Ingestion failed:", err)
	}

	log.Printf("Done: %d files scanned, %d indexed, %d duplicates, %d attachments stored, %d failed",
		stats.Scanned, stats.Indexed, stats.Duplicates, stats.Attachments, stats.Failed)
}
