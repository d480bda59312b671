// Package mmap provides memory-mapped file access for zero-copy reads.
//
// The local blob store maps snapshot files instead of reading them through
// kernel buffers, which matters once memories reach hundreds of megabytes.
//
// # Usage
//
//	m, err := mmap.Open("memory.sdm")
//	if err != nil { ... }
//	defer m.Close()
//
//	// Zero-copy access to file contents
//	data := m.Bytes()
//
//	// Provide kernel hints for access patterns
//	m.Advise(mmap.AccessSequential)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (advice is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent read access. Close() is idempotent and
// protected by atomic operations, but callers must ensure no goroutine
// touches Bytes() after Close() returns.
package mmap
