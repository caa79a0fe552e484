// Package storage keeps uploaded post images in object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no object exists for a key.
var ErrNotFound = errors.New("object not found")

// Object describes a stored blob.
type Object struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// Store is responsible for image blobs.
type Store interface {
	// Put stores the content read from r under a fresh key.
	Put(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (Object, error)

	// Delete removes the blob stored under key.
	Delete(ctx context.Context, key string) error
}

// NewKey derives a unique object key, fanned out by its first characters and
// keeping the extension of the uploaded file name.
func NewKey(prefix, filename string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s/%s/%s%s", prefix, id[:2], id[2:4], id, ext)
}

func publicURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + key
}
