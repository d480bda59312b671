// Package blobstore provides storage abstraction for immutable memory
// snapshots and their manifests.
//
// BlobStore is the interface for reading and writing blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory store for tests and ephemeral catalogs
//   - LocalStore: local filesystem with mmap-backed reads
//   - s3.Store: Amazon S3 with range reads and parallel uploads
//   - minio.Store: MinIO and other S3-compatible object stores
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)           // Open for reading
//	    Create(ctx, name) (WritableBlob, error) // Create for writing
//	    Put(ctx, name, data) error              // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// For cloud backends, implement ReadRange for efficient partial reads:
//
//	type Blob interface {
//	    ReadAt(ctx, p, off) (int, error)
//	    io.Closer
//	    Size() int64
//	    ReadRange(ctx, off, length) (io.ReadCloser, error)
//	}
//
// CachingStore wraps any BlobStore with a block-level read cache; it pays
// off in front of remote backends where repeated header or manifest reads
// would otherwise hit the network.
package blobstore
