package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrInvalidID    = errors.New("invalid blob id")
)

// BlobStore keeps the raw bytes of files addressed by an opaque id.
type BlobStore interface {
	Save(ctx context.Context, id string, data io.Reader) (int64, error)
	Open(ctx context.Context, id string) (io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
}

func validateID(id string) error {
	if id == "" {
		return ErrInvalidID
	}
	for _, r := range id {
		if r == '/' || r == '\\' || r == '.' || r == 0 {
			return ErrInvalidID
		}
	}
	return nil
}
