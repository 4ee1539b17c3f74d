// Package imagestore keeps toy cover images uploaded through the edit form.
package imagestore

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("image not found")

type ImageStore interface {
	// Save stores the image and returns the key it can be fetched by.
	Save(ctx context.Context, mimeType string, r io.Reader) (key string, err error)
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}
