// Package storage abstracts where uploaded image bytes live.
package storage

import (
	"context"
	"io"
)

// StoredFile describes a persisted asset.
type StoredFile struct {
	URL      string
	PublicID string
}

// FileStorage uploads and removes image assets.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (StoredFile, error)
	Destroy(ctx context.Context, publicID string) error
}
