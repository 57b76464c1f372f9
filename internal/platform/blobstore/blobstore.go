// Package blobstore provides object storage for user-uploaded files such as
// profile pictures. It defines the Store interface, an in-memory
// implementation suitable for testing and development, and an S3-backed
// implementation for production.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var (
	ErrObjectNotFound     = errors.New("object not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
)

// MaxImageSize is the maximum allowed profile image size in bytes (5 MB).
const MaxImageSize = 5 * 1024 * 1024

// AllowedImageType reports whether a MIME type is acceptable for profile
// pictures. Anything under image/ is accepted.
func AllowedImageType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Store defines the contract for object storage backends.
type Store interface {
	Put(ctx context.Context, key, contentType string, content io.Reader) (*ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// readLimited reads content enforcing the size and content-type rules shared
// by all backends.
func readLimited(contentType string, content io.Reader) ([]byte, error) {
	if !AllowedImageType(contentType) {
		return nil, ErrInvalidContentType
	}
	data, err := io.ReadAll(io.LimitReader(content, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxImageSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

type storedObject struct {
	info    ObjectInfo
	content []byte
}

// MemoryStore is a thread-safe, in-memory Store for testing and development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]*storedObject
}

// NewMemoryStore returns a ready-to-use MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]*storedObject)}
}

// Put validates and stores the object, replacing any existing object at the
// same key.
func (s *MemoryStore) Put(_ context.Context, key, contentType string, content io.Reader) (*ObjectInfo, error) {
	data, err := readLimited(contentType, content)
	if err != nil {
		return nil, err
	}

	h := sha256.Sum256(data)
	info := ObjectInfo{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
		Hash:        fmt.Sprintf("%x", h),
		UploadedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	s.objects[key] = &storedObject{info: info, content: data}
	s.mu.Unlock()

	out := info
	return &out, nil
}

// Get returns an io.ReadCloser over the object content and its info.
func (s *MemoryStore) Get(_ context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, ErrObjectNotFound
	}

	info := obj.info
	return io.NopCloser(bytes.NewReader(obj.content)), &info, nil
}

// Delete removes an object by key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(s.objects, key)
	return nil
}
