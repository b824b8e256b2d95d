// Package ingest loads raw .eml files through the parsing pipeline:
// parse, assemble chat parts, store attachments in the blob store and
// record each message in a SQLite index. It is the in-repo stand-in
// for the account layer that normally feeds messages in over IMAP.
package ingest

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Index is the SQLite message index.
type Index struct {
	db *sql.DB
}

// Record is one indexed message.
type Record struct {
	MessageID   string
	Subject     string
	FromAddr    string
	Date        time.Time
	PartCount   int
	Attachments int
	SourcePath  string
}

const indexSchema = `
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id TEXT NOT NULL UNIQUE,
	subject TEXT NOT NULL DEFAULT '',
	from_addr TEXT NOT NULL DEFAULT '',
	date_utc INTEGER NOT NULL DEFAULT 0,
	part_count INTEGER NOT NULL DEFAULT 0,
	attachment_count INTEGER NOT NULL DEFAULT 0,
	source_path TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS attachments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id TEXT NOT NULL,
	blob_key TEXT NOT NULL,
	file_name TEXT NOT NULL DEFAULT '',
	mime_type TEXT NOT NULL DEFAULT '',
	size_bytes INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (message_id) REFERENCES messages(message_id)
);
CREATE INDEX IF NOT EXISTS idx_attachments_blob ON attachments(blob_key);
`

// OpenIndex opens (creating if needed) the index database at path.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %v", err)
	}

	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
	}
	if _, err = db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize index schema: %v", err)
	}
	return &Index{db: db}, nil
}

func (x *Index) Close() error {
	return x.db.Close()
}

// InsertMessage records a message, ignoring duplicates by message-id
// so re-running ingestion over the same directory is idempotent.
func (x *Index) InsertMessage(r Record) (bool, error) {
	res, err := x.db.Exec(`
		INSERT OR IGNORE INTO messages
			(message_id, subject, from_addr, date_utc, part_count, attachment_count, source_path)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.MessageID, r.Subject, r.FromAddr, r.Date.UTC().Unix(),
		r.PartCount, r.Attachments, r.SourcePath,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert message %s: %v", r.MessageID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertAttachment records one stored attachment blob.
func (x *Index) InsertAttachment(messageID, blobKey, fileName, mimeType string, size int) error {
	_, err := x.db.Exec(`
		INSERT INTO attachments (message_id, blob_key, file_name, mime_type, size_bytes)
		VALUES (?, ?, ?, ?, ?)`,
		messageID, blobKey, fileName, mimeType, size,
	)
	if err != nil {
		return fmt.Errorf("failed to insert attachment for %s: %v", messageID, err)
	}
	return nil
}

// MessageCount returns the number of indexed messages.
func (x *Index) MessageCount() (int, error) {
	var n int
	err := x.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

// HasBlob reports whether any indexed attachment references blobKey,
// which lets the pipeline skip re-uploading deduplicated content.
func (x *Index) HasBlob(blobKey string) (bool, error) {
	var n int
	err := x.db.QueryRow("SELECT COUNT(*) FROM attachments WHERE blob_key = ?", blobKey).Scan(&n)
	return n > 0, err
}
