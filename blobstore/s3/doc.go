// Package s3 provides an Amazon S3 implementation of the
// blobstore.BlobStore interface, plus a DynamoDB-backed pointer store for
// atomic snapshot publication.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil { ... }
//
//	store := s3.NewStore(s3.NewFromConfig(cfg), "my-bucket", "memories/prod")
//
//	catalog, err := snapshot.NewCatalog(store)
//
// Reads use ranged GetObject requests, so loading a snapshot header never
// pulls the whole object. Create streams the snapshot into a multipart
// upload as it is written; nothing is visible until Close commits it.
// Put attaches a CRC32C checksum so S3 verifies the payload end to end.
//
// DDBPointerStore replaces the CURRENT-object pointer with a DynamoDB
// conditional write, giving compare-and-set publication when several
// writers share one catalog.
package s3
