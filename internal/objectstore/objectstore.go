package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// IsDirMarker reports whether the entry is a zero-length placeholder standing for a folder.
func (o ObjectInfo) IsDirMarker() bool {
	return strings.HasSuffix(o.Key, "/")
}

// ObjectStore is a read-only view over a bucket.
type ObjectStore interface {
	// List returns every object under prefix, recursively, in the order the backend yields them.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// Get opens the object. A missing object fails with ErrObjectNotFound before any byte is returned.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}
