package s3

import (
	"context"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/sdmgo/blobstore"
)

// Options holds configuration for the S3 store.
type Options struct {
	// Upload configures multipart uploads for Create.
	Upload UploadConfig
}

// DefaultOptions is the default configuration for the S3 store.
var DefaultOptions = Options{
	Upload: DefaultUploadConfig(),
}

// Store implements blobstore.BlobStore for Amazon S3.
type Store struct {
	client Client
	bucket string
	prefix string
	opts   Options
}

// NewStore creates a new S3 blob store.
// rootPrefix is prepended to all blob names (e.g. "memories/prod").
func NewStore(client Client, bucket, rootPrefix string, optFns ...func(o *Options)) *Store {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
		opts:   opts,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open opens a blob for reading.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	return openBlob(ctx, s.client, s.bucket, s.key(name))
}

// Create starts a streaming multipart upload. The upload runs under ctx;
// canceling ctx aborts it. Data is committed only when Close returns nil.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	uploader := newUploader(s.client, s.opts.Upload)
	return newStreamingWritableBlob(ctx, s.client, uploader, s.bucket, s.key(name), s.opts.Upload.EnableChecksum), nil
}

// Put writes a blob in a single request, with CRC32C integrity validation
// when enabled.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	return putObject(ctx, s.client, s.bucket, s.key(name), data, s.opts.Upload.EnableChecksum)
}

// Delete removes a blob. Deleting a missing blob is not an error: S3
// DeleteObject is idempotent.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

// List returns the names of all blobs with the given prefix,
// in lexicographic order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return listObjects(ctx, s.client, s.bucket, s.key(prefix), s.prefix)
}
