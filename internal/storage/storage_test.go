package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func TestDecodeDataURI(t *testing.T) {
	img, err := DecodeDataURI("data:image/png;base64," + pixelPNG)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "png", img.Extension)
	assert.NotEmpty(t, img.Data)
}

func TestDecodeDataURIRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"not a data uri", "https://example.com/cat.png"},
		{"no payload", "data:image/png;base64"},
		{"not base64", "data:image/png," + pixelPNG},
		{"not an image type", "data:text/plain;base64,aGVsbG8="},
		{"garbage payload", "data:image/png;base64,!!!"},
		{"payload is text", "data:image/png;base64,aGVsbG8gd29ybGQ="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDataURI(tt.uri)
			assert.ErrorIs(t, err, ErrInvalidImage)
		})
	}
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/media/")
	require.NoError(t, err)

	key := NewImageKey("png")
	assert.True(t, strings.HasPrefix(key, "recipes/images/"))

	require.NoError(t, store.Save(context.Background(), key, []byte("img"), "image/png"))
	data, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), data)
	assert.Equal(t, "/media/"+key, store.URL(key))
	assert.Equal(t, "", store.URL(""))

	require.NoError(t, store.Delete(context.Background(), key))
	_, err = os.Stat(filepath.Join(dir, key))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is not an error
	require.NoError(t, store.Delete(context.Background(), key))
}

func TestLocalStoreKeepsKeysInsideDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "media"), "/media")
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "../../escape.png", []byte("x"), "image/png"))
	_, err = os.Stat(filepath.Join(dir, "media", "escape.png"))
	assert.NoError(t, err)
}
