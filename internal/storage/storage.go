package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound distinguishes a missing key from other I/O failures.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is a minimal blob store: write bytes under a key and read them
// back. Implementations must return ErrObjectNotFound (possibly wrapped) when
// the key does not exist.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, data []byte) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}
