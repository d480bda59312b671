// Package snapshot provides a versioned catalog of memory snapshots over a
// blob store.
//
// Each publish writes two blobs, a framed snapshot (snapshots/%016d.sdm)
// and a manifest document (manifests/%016d.json), then advances a commit
// pointer. The pointer is the only mutable object: readers follow it
// through Latest and LoadLatest, so a crash or a lost publish race never
// exposes a partial generation.
//
//	catalog := snapshot.NewCatalog(blobstore.NewMemoryStore())
//
//	manifest, err := catalog.Publish(ctx, mem)
//	...
//	mem, manifest, err := catalog.LoadLatest(ctx)
//
// The default pointer lives in a CURRENT object on the same blob store and
// serializes writers within one process. Deployments with several writers
// swap in a compare-and-set implementation such as s3.DDBPointerStore.
package snapshot
