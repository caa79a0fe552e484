package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Memory stores blobs in memory. It backs tests and local runs without MinIO.
type Memory struct {
	baseURL string
	mu      sync.Mutex
	blobs   map[string][]byte
}

// NewMemory creates an empty in-memory store serving URLs under baseURL.
func NewMemory(baseURL string) *Memory {
	return &Memory{
		baseURL: baseURL,
		blobs:   make(map[string][]byte),
	}
}

// Put implements the Store interface.
func (m *Memory) Put(_ context.Context, filename string, r io.Reader, _ int64, contentType string) (Object, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return Object{}, err
	}

	key := NewKey("posts", filename)
	m.mu.Lock()
	m.blobs[key] = buf.Bytes()
	m.mu.Unlock()

	return Object{
		Key:         key,
		URL:         publicURL(m.baseURL, key),
		ContentType: contentType,
		Size:        n,
	}, nil
}

// Delete implements the Store interface.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[key]; !ok {
		return ErrNotFound
	}
	delete(m.blobs, key)
	return nil
}

// Get returns a copy of the blob stored under key.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Len returns the number of stored blobs.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}
