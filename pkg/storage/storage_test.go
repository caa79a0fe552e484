package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	key := NewKey("posts", "Photo.JPG")
	parts := strings.Split(key, "/")
	require.Len(t, parts, 4)
	assert.Equal(t, "posts", parts[0])
	assert.True(t, strings.HasPrefix(parts[3], parts[1]+parts[2]))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, NewKey("posts", "Photo.JPG"))
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	store := NewMemory("http://media.local/")

	obj, err := store.Put(ctx, "a.png", strings.NewReader("data"), 4, "image/png")
	require.NoError(t, err)
	assert.Equal(t, int64(4), obj.Size)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, "http://media.local/"+obj.Key, obj.URL)

	data, ok := store.Get(obj.Key)
	require.True(t, ok)
	assert.Equal(t, "data", string(data))
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, obj.Key))
	assert.ErrorIs(t, store.Delete(ctx, obj.Key), ErrNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestMinioConfigPublicBase(t *testing.T) {
	cfg := MinioConfig{Bucket: "post-images"}
	assert.Equal(t, "http://minio:9000/post-images", cfg.publicBase("http://minio:9000"))

	cfg.BaseURL = "https://cdn.example.com/images/"
	assert.Equal(t, "https://cdn.example.com/images", cfg.publicBase("http://minio:9000"))
	assert.Equal(t, "https://cdn.example.com/images/posts/a.png", publicURL(cfg.publicBase(""), "posts/a.png"))
}
