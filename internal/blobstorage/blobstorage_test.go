package blobstorage

import "testing"

func TestKey(t *testing.T) {
	a := Key([]byte("hello"))
	b := Key([]byte("hello"))
	c := Key([]byte("world"))

	if a != b {
		t.Errorf("Key not deterministic: %s != %s", a, b)
	}
	if a == c {
		t.Errorf("Distinct content produced the same key")
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(a))
	}
	// Known SHA-256 of "hello".
	if a != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("Unexpected key: %s", a)
	}
}
