package ingest

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenIndex failed: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestInsertMessage(t *testing.T) {
	idx := openTestIndex(t)

	rec := Record{
		MessageID:  "m1@example.com",
		Subject:    "hello",
		FromAddr:   "alice@example.com",
		Date:       time.Unix(1600000000, 0),
		PartCount:  1,
		SourcePath: "/mail/one.eml",
	}
	inserted, err := idx.InsertMessage(rec)
	if err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}
	if !inserted {
		t.Error("Expected first insert to report true")
	}

	n, err := idx.MessageCount()
	if err != nil {
		t.Fatalf("MessageCount failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 message, got %d", n)
	}
}

func TestInsertMessageDuplicate(t *testing.T) {
	idx := openTestIndex(t)

	rec := Record{MessageID: "dup@example.com", Subject: "first"}
	if _, err := idx.InsertMessage(rec); err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}

	rec.Subject = "second"
	inserted, err := idx.InsertMessage(rec)
	if err != nil {
		t.Fatalf("Duplicate insert errored: %v", err)
	}
	if inserted {
		t.Error("Expected duplicate insert to report false")
	}

	n, err := idx.MessageCount()
	if err != nil {
		t.Fatalf("MessageCount failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 message after duplicate, got %d", n)
	}
}

func TestInsertAttachmentAndHasBlob(t *testing.T) {
	idx := openTestIndex(t)

	if _, err := idx.InsertMessage(Record{MessageID: "m@example.com"}); err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}

	seen, err := idx.HasBlob("abc123")
	if err != nil {
		t.Fatalf("HasBlob failed: %v", err)
	}
	if seen {
		t.Error("Blob reported before insert")
	}

	if err := idx.InsertAttachment("m@example.com", "abc123", "file.pdf", "application/pdf", 42); err != nil {
		t.Fatalf("InsertAttachment failed: %v", err)
	}

	seen, err = idx.HasBlob("abc123")
	if err != nil {
		t.Fatalf("HasBlob failed: %v", err)
	}
	if !seen {
		t.Error("Blob not reported after insert")
	}
}

func TestInsertAttachmentRequiresMessage(t *testing.T) {
	idx := openTestIndex(t)

	// Foreign keys are on: an attachment without its message row fails.
	if err := idx.InsertAttachment("ghost@example.com", "key", "f", "t", 1); err == nil {
		t.Error("Expected foreign key violation")
	}
}
