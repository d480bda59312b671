package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// ErrConcurrentModification is returned by conditional writes when another
// writer committed first.
var ErrConcurrentModification = errors.New("blobstore: concurrent modification")

// BlobStore is an abstraction for storing and retrieving immutable blobs
// (snapshots, manifests, pointers). Implementations must be safe for
// concurrent use.
type BlobStore interface {
	// Open opens a blob for reading.
	// Returns ErrNotFound if the blob does not exist.
	Open(ctx context.Context, name string) (Blob, error)

	// Create opens a blob for writing. The blob becomes visible to readers
	// no later than Close; partial writes must never be observable.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a complete blob atomically, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all blobs with the given prefix,
	// in lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a blob.
type Blob interface {
	// ReadAt reads len(p) bytes starting at offset off.
	// It follows io.ReaderAt semantics, with a context for remote backends.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	io.Closer

	// Size returns the size of the blob in bytes.
	Size() int64

	// ReadRange returns a reader over [off, off+length). Remote backends
	// serve this as a single ranged request instead of many ReadAt calls.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
}

// WritableBlob is a write handle returned by Create.
type WritableBlob interface {
	io.Writer
	io.Closer

	// Sync flushes written data to stable storage where the backend
	// supports it.
	Sync() error
}

// Mappable is an optional interface for Blobs that support zero-copy access.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// Aborter is an optional interface for WritableBlobs that can discard an
// in-progress write instead of committing it on Close.
type Aborter interface {
	Abort() error
}

// Discard abandons an in-progress write. When the blob supports Abort,
// nothing is committed; otherwise the blob is closed and the committed
// name deleted.
func Discard(ctx context.Context, bs BlobStore, wb WritableBlob, name string) {
	if a, ok := wb.(Aborter); ok {
		_ = a.Abort()
		return
	}
	_ = wb.Close()
	_ = bs.Delete(ctx, name)
}

// ReadAll reads the entire content of a blob.
// It uses Mappable.Bytes when available to avoid a second copy.
func ReadAll(ctx context.Context, b Blob) ([]byte, error) {
	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err == nil {
			out := make([]byte, len(data))
			copy(out, data)
			return out, nil
		}
	}

	out := make([]byte, b.Size())
	n, err := b.ReadAt(ctx, out, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return out[:n], nil
}
