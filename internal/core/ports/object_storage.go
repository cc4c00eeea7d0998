package ports

import (
	"context"
	"io"
)

// StoredObject describes an asset persisted in external object storage.
type StoredObject struct {
	Key         string
	URL         string
	Bytes       int64
	ContentType string
}

// ObjectStorage abstracts the external binary store holding scan images.
// Objects are write-once; nothing in this system deletes them.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*StoredObject, error)
}
