package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"kestrel/internal/blobstorage"
	"kestrel/internal/message"
	"kestrel/internal/rfc822"
)

// Pipeline wires the parser, the chat assembler, the blob store and
// the index together for batch ingestion.
type Pipeline struct {
	Store       blobstorage.Store
	Index       *Index
	Concurrency int
	MaxDepth    int
}

// Stats summarizes one ingestion run. Failed counts messages that
// could not be read or produced no displayable parts; a parse itself
// never fails a well-formed-enough file.
type Stats struct {
	Scanned     int
	Indexed     int
	Duplicates  int
	Attachments int
	Failed      int

	mu sync.Mutex
}

// IngestDir walks dir for .eml files and ingests each one on its own
// goroutine, at most Concurrency at a time. Message order is not
// significant: each file is an independent buffer.
func (p *Pipeline) IngestDir(ctx context.Context, dir string) (*Stats, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".eml") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	stats := &Stats{}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency())

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := p.ingestFile(ctx, path, stats); err != nil {
				// A single broken file does not abort the run.
				log.Printf("ingest: %s: %v", path, err)
				stats.mu.Lock()
				stats.Failed++
				stats.mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	stats.Scanned = len(paths)
	return stats, nil
}

func (p *Pipeline) concurrency() int {
	if p.Concurrency > 0 {
		return p.Concurrency
	}
	return 4
}

func (p *Pipeline) maxDepth() int {
	if p.MaxDepth > 0 {
		return p.MaxDepth
	}
	return rfc822.DefaultMaxDepth
}

// ingestFile runs one .eml file through the full pipeline.
func (p *Pipeline) ingestFile(ctx context.Context, path string, stats *Stats) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	root, err := rfc822.ParseDepth(raw, p.maxDepth())
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	msg := message.FromPart(root, false)

	msgID := msg.MessageID
	if msgID == "" {
		// No Message-ID; synthesize a stable one from content so
		// re-ingestion still deduplicates.
		msgID = blobstorage.Key(raw) + "@kestrel-ingest"
	}

	var attachments []message.PartInfo
	for _, part := range msg.Parts {
		if part.Viewtype == message.ViewtypeText || len(part.Data) == 0 {
			continue
		}
		attachments = append(attachments, part)
	}

	from := ""
	if len(msg.From) > 0 {
		from = msg.From[0].Address
	}
	date := msg.Date
	if date.IsZero() {
		date = time.Now()
	}
	inserted, err := p.Index.InsertMessage(Record{
		MessageID:   msgID,
		Subject:     msg.Subject,
		FromAddr:    from,
		Date:        date,
		PartCount:   len(msg.Parts),
		Attachments: len(attachments),
		SourcePath:  path,
	})
	if err != nil {
		return err
	}
	if !inserted {
		// Already indexed on a previous run; attachments were stored
		// with it then.
		stats.mu.Lock()
		stats.Duplicates++
		stats.mu.Unlock()
		return nil
	}

	for _, part := range attachments {
		key := blobstorage.Key(part.Data)
		if err := p.storeBlob(ctx, key, part.Data); err != nil {
			return err
		}
		if err := p.Index.InsertAttachment(msgID, key,
			part.Params[message.ParamFilename],
			part.Params[message.ParamMimetype],
			len(part.Data)); err != nil {
			return err
		}
	}

	stats.mu.Lock()
	stats.Indexed++
	stats.Attachments += len(attachments)
	stats.mu.Unlock()
	return nil
}

// storeBlob uploads a blob unless the index already references its
// key. Content addressing makes the upload itself idempotent; the
// check just skips the round trip.
func (p *Pipeline) storeBlob(ctx context.Context, key string, data []byte) error {
	if seen, err := p.Index.HasBlob(key); err == nil && seen {
		return nil
	}
	if exists, err := p.Store.Exists(ctx, key); err == nil && exists {
		return nil
	}
	return p.Store.Put(ctx, key, data)
}
