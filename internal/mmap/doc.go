// Package mmap provides off-heap memory for the primary slot table and
// read-only file mappings for local snapshot blobs.
//
// # Anonymous mappings
//
// MapAnon returns zero-filled, read-write memory that lives outside the Go
// heap. The garbage collector never scans or moves it, so it may only hold
// plain integers (never Go pointers). The slot table stores identity keys as
// integers for exactly this reason.
//
//	m, err := mmap.MapAnon(size)
//	if err != nil { ... }
//	defer m.Close()
//
//	slots := m.Bytes()
//
// # File mappings
//
// Open maps a file read-only; LocalStore uses it for zero-copy snapshot reads.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) and madvise(2) via golang.org/x/sys/unix
//   - Windows: VirtualAlloc / MapViewOfFile via golang.org/x/sys/windows (Advise is a no-op)
//
// # Thread Safety
//
// Close is idempotent and guarded by an atomic flag, but callers must ensure
// no goroutine touches Bytes() after Close returns.
package mmap
