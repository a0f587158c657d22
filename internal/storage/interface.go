package storage

import (
	"context"
	"io"
)

//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks carpool/internal/storage Storage

// Storage defines the interface for object storage operations.
type Storage interface {
	// PutObject uploads an object to storage.
	PutObject(ctx context.Context, key string, body io.Reader, contentType string) error
}

// Ensure S3Client implements Storage interface
var _ Storage = (*S3Client)(nil)
