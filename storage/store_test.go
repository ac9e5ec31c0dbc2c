package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sentiment-health/api-go/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallest valid PNG header plus padding
var pngBytes = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}, make([]byte, 32)...)

func TestLocalStore_RoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key := GenerateImageKey(7, "image/png")
	require.NoError(t, store.Save(ctx, key, bytes.NewReader(pngBytes), int64(len(pngBytes)), "image/png"))

	rc, contentType, err := store.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)

	assert.Equal(t, pngBytes, data)
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, store.Delete(ctx, key))
	_, _, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Delete(ctx, key))
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	err = store.Save(context.Background(), "../outside.png", strings.NewReader("x"), 1, "image/png")
	assert.Error(t, err)
}

func TestGenerateImageKey(t *testing.T) {
	key := GenerateImageKey(42, "image/jpeg")

	assert.True(t, strings.HasPrefix(key, "uploads/images/42/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.True(t, strings.HasSuffix(GenerateImageKey(42, "image/webp"), ".webp"))
}

func TestLocalStore_ServesSniffedType(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	// a png uploaded as evil.html must still come back as a png
	ct, body, err := DetectImage(bytes.NewReader(pngBytes), int64(len(pngBytes)), 1024)
	require.NoError(t, err)
	key := GenerateImageKey(1, ct)
	assert.False(t, strings.HasSuffix(key, ".html"))
	require.NoError(t, store.Save(ctx, key, body, int64(len(pngBytes)), ct))

	rc, contentType, err := store.Open(ctx, key)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "image/png", contentType)
}

func TestNewImageStore_DefaultsToLocal(t *testing.T) {
	store, err := NewImageStore(config.StorageConfig{UploadDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	store, err = NewImageStore(config.StorageConfig{Bucket: "posts", Region: "auto", Endpoint: "http://localhost:9000"})
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, store)
}

func TestDetectImage(t *testing.T) {
	t.Run("png keeps full stream", func(t *testing.T) {
		ct, body, err := DetectImage(bytes.NewReader(pngBytes), int64(len(pngBytes)), 1024)
		require.NoError(t, err)
		assert.Equal(t, "image/png", ct)

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, pngBytes, data)
	})

	t.Run("text is rejected", func(t *testing.T) {
		_, _, err := DetectImage(strings.NewReader("just some text"), 14, 1024)
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})

	t.Run("too large", func(t *testing.T) {
		_, _, err := DetectImage(bytes.NewReader(pngBytes), 2048, 1024)
		assert.ErrorIs(t, err, ErrImageTooLarge)
	})
}
