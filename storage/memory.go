package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryObject is what MemoryUploader keeps per key.
type MemoryObject struct {
	ContentType string
	Data        []byte
}

// MemoryUploader keeps objects in memory. Used when R2 is not configured
// and in tests.
type MemoryUploader struct {
	mu            sync.Mutex
	objects       map[string]MemoryObject
	publicBaseURL string
}

func NewMemoryUploader(publicBaseURL string) *MemoryUploader {
	return &MemoryUploader{objects: make(map[string]MemoryObject), publicBaseURL: publicBaseURL}
}

func (u *MemoryUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("failed to read upload body (key: %s): %w", key, err)
	}
	u.mu.Lock()
	u.objects[key] = MemoryObject{ContentType: contentType, Data: buf.Bytes()}
	u.mu.Unlock()
	return &UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *MemoryUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(u.objects, key)
	return nil
}

func (u *MemoryUploader) GetPublicURL(key string) string {
	return joinPublicURL(u.publicBaseURL, key)
}

func (u *MemoryUploader) Object(key string) (MemoryObject, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	obj, ok := u.objects[key]
	return obj, ok
}
