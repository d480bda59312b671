// Package sdmgo provides an embedded sparse distributed memory for Go.
//
// A sparse distributed memory stores high-dimensional binary data in a fixed
// set of randomly addressed hard locations. Writes superimpose a vector onto
// every location within the critical distance of the target address; reads
// average the activated locations back into a reconstruction. Content
// distributes across locations, so recall degrades gracefully under noise
// instead of failing outright.
//
// # Quick Start
//
//	ctx := context.Background()
//	mem := sdmgo.Memory(256, 2000).Factor(0.45).Seed(42).MustBuild()
//
//	addr, _ := bitvec.Parse("1011...") // 256 bits
//	data := make([]float32, 256)       // what to store
//
//	activated, _ := mem.Write(ctx, addr, data)
//	result, _ := mem.Read(ctx, addr)
//	fmt.Println(activated, result.Data)
//
// Reading from a noisy address still reconstructs the stored pattern as long
// as the probe stays within the critical distance of the written address:
//
//	noisy := addr.Clone()
//	noisy.Flip(3)
//	noisy.Flip(17)
//	result, _ = mem.Read(ctx, noisy)
//
// # Snapshots
//
// The full memory state round-trips through framed, checksummed and
// optionally compressed snapshots:
//
//	_ = mem.SaveToFile("memory.sdm")
//	mem2, _ := sdmgo.LoadFromFile("memory.sdm")
//
//	// Or open-or-create in one call:
//	mem3, _ := sdmgo.Open("memory.sdm", 256, 2000)
//
// Snapshots also write to any blob store (local directory, S3, MinIO or
// in-memory):
//
//	bs, _ := blobstore.NewLocalStore("/var/lib/myapp/memories")
//	_ = mem.SaveToStore(ctx, bs, "memory.sdm")
//
// # Snapshot Catalogs
//
// For versioned snapshots with manifests and an atomically updated latest
// pointer, use snapshot.Catalog:
//
//	cat := snapshot.NewCatalog(bs)
//	manifest, _ := cat.Publish(ctx, mem.Store())
//	st, _, _ := cat.LoadLatest(ctx)
//
// # Key Features
//
//   - Immutable random addresses with float32 accumulator counters
//   - Deterministic construction from a seed
//   - Parallel location scans for large memories
//   - Framed snapshots with CRC32 integrity and zstd/LZ4 compression
//   - Pluggable blob storage (local, S3, MinIO, in-memory)
//   - Versioned snapshot catalogs with compare-and-swap pointers
package sdmgo
