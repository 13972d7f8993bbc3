// Package storage abstracts where attachment bytes live. The default
// backend is a flat local directory; an S3-compatible backend is available
// for deployments that keep files in object storage.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrExists is returned by Save when a blob with the same name is already
// present. Callers decide whether to re-disambiguate or give up; the store
// itself never overwrites.
var ErrExists = errors.New("blob already exists")

// BlobStore persists and serves attachment bytes under flat names.
type BlobStore interface {
	// Save writes the blob under name. It fails with ErrExists rather than
	// overwriting an existing blob.
	Save(ctx context.Context, name string, r io.Reader) error

	// Open returns a reader for the named blob, or common.ErrorNotFound.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
