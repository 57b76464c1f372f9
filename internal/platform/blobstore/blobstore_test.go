package blobstore

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestMemoryStorePutAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	info, err := store.Put(ctx, "profiles/abc.png", "image/png", strings.NewReader("fake png bytes"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len("fake png bytes")) {
		t.Errorf("expected size %d, got %d", len("fake png bytes"), info.Size)
	}
	if info.Hash == "" {
		t.Error("expected non-empty hash")
	}

	rc, got, err := store.Get(ctx, "profiles/abc.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "fake png bytes" {
		t.Errorf("unexpected content %q", data)
	}
	if got.ContentType != "image/png" {
		t.Errorf("unexpected content type %q", got.ContentType)
	}
}

func TestMemoryStorePutReplacesExistingKey(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Put(ctx, "profiles/u1", "image/jpeg", strings.NewReader("old")); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := store.Put(ctx, "profiles/u1", "image/jpeg", strings.NewReader("new")); err != nil {
		t.Fatalf("second put: %v", err)
	}

	rc, _, err := store.Get(ctx, "profiles/u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "new" {
		t.Errorf("expected replaced content, got %q", data)
	}
}

func TestMemoryStoreRejectsNonImageContent(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Put(context.Background(), "profiles/x", "application/pdf", strings.NewReader("%PDF"))
	if err != ErrInvalidContentType {
		t.Fatalf("expected ErrInvalidContentType, got %v", err)
	}
}

func TestMemoryStoreRejectsOversizedFile(t *testing.T) {
	store := NewMemoryStore()

	big := strings.NewReader(strings.Repeat("a", MaxImageSize+1))
	_, err := store.Put(context.Background(), "profiles/big", "image/png", big)
	if err != ErrFileTooLarge {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestMemoryStoreGetMissingKey(t *testing.T) {
	store := NewMemoryStore()

	if _, _, err := store.Get(context.Background(), "missing"); err != ErrObjectNotFound {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
	if err := store.Delete(context.Background(), "missing"); err != ErrObjectNotFound {
		t.Fatalf("expected ErrObjectNotFound on delete, got %v", err)
	}
}

func TestAllowedImageType(t *testing.T) {
	cases := map[string]bool{
		"image/png":       true,
		"image/jpeg":      true,
		"image/webp":      true,
		"application/pdf": false,
		"text/html":       false,
		"":                false,
	}
	for ct, want := range cases {
		if got := AllowedImageType(ct); got != want {
			t.Errorf("AllowedImageType(%q) = %v, want %v", ct, got, want)
		}
	}
}
