// Package storage persists recipe images.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/config"
)

// ErrInvalidImage is returned when an image payload cannot be decoded
var ErrInvalidImage = errors.New("invalid image")

// ImageStore saves image bytes under a key and resolves keys to public URLs
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Image is a decoded data URI payload
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeDataURI decodes "data:image/<type>;base64,<payload>"
func DecodeDataURI(uri string) (*Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return nil, fmt.Errorf("%w: expected a data URI", ErrInvalidImage)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing payload", ErrInvalidImage)
	}
	mediaType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return nil, fmt.Errorf("%w: payload must be base64 encoded", ErrInvalidImage)
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("%w: unsupported media type %q", ErrInvalidImage, mediaType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, fmt.Errorf("%w: bad base64 payload", ErrInvalidImage)
	}
	if detected := http.DetectContentType(data); !strings.HasPrefix(detected, "image/") {
		return nil, fmt.Errorf("%w: payload is %s", ErrInvalidImage, detected)
	}

	ext := strings.TrimPrefix(mediaType, "image/")
	switch ext {
	case "jpeg":
		ext = "jpg"
	case "svg+xml":
		ext = "svg"
	}

	return &Image{Data: data, ContentType: mediaType, Extension: ext}, nil
}

// NewImageKey returns a fresh object key for a recipe image
func NewImageKey(ext string) string {
	return fmt.Sprintf("recipes/images/%s.%s", uuid.New().String(), ext)
}

// NewFromConfig returns the image store selected by IMAGE_STORAGE
func NewFromConfig(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.ImageStorage {
	case "s3":
		s3Config, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Store(s3Config), nil
	case "local", "":
		return NewLocalStore(cfg.MediaDir, cfg.MediaURL)
	default:
		return nil, fmt.Errorf("unknown image storage %q", cfg.ImageStorage)
	}
}
