package server

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func TestDiskStorageRoundTrip(t *testing.T) {
	storage, err := NewDiskStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStorage: %v", err)
	}

	payload := []byte("hello world")
	path, err := storage.Put(context.Background(), "uploads/1-hello.txt", bytes.NewReader(payload), int64(len(payload)), "text/plain")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if path == "" {
		t.Fatal("expected non-empty path")
	}

	rc, err := storage.Get(context.Background(), "uploads/1-hello.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: got %q", got)
	}
}

func TestDiskStorageRejectsTraversal(t *testing.T) {
	storage, err := NewDiskStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStorage: %v", err)
	}

	for _, key := range []string{"../outside", "/abs/path", "."} {
		if _, err := storage.Put(context.Background(), key, bytes.NewReader(nil), 0, ""); err == nil {
			t.Errorf("Put(%q): expected error", key)
		}
		if _, err := storage.Get(context.Background(), key); err == nil {
			t.Errorf("Get(%q): expected error", key)
		}
	}
}

func TestDiskStoragePing(t *testing.T) {
	storage, err := NewDiskStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStorage: %v", err)
	}
	if err := storage.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
