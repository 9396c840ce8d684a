package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
)

var ErrObjectNotFound = errors.New("object not found")

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores public files such as tournament flyers.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// joinPublicURL appends key to base, keeping exactly one slash between them.
func joinPublicURL(base, key string) string {
	if base == "" || key == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(key, "/")
	return u.String()
}
