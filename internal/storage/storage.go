package storage

import (
	"context"
	"io"
)

type PutInput struct {
	Key         string
	ContentType string
}

type PutResult struct {
	Key string
	URL string
}

// Storage archives raw gateway payloads for audit. Writes are best-effort
// from the webhook path; a failed archive never fails the request.
type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
	Delete(ctx context.Context, key string) error
}
