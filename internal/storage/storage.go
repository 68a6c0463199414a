package storage

import (
	"context"
	"io"
)

// Storage holds staged upload bytes until the product is submitted.
type Storage interface {
	// Upload stores a file under input.Key, replacing any previous content.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// Open returns the stored bytes. A missing key is ErrNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// UploadInput holds the parameters for uploading a file.
type UploadInput struct {
	Key         string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UploadResult holds the result of a successful upload.
type UploadResult struct {
	Key  string
	Size int64
}
