// Package resource governs the memory, concurrency and IO an index may use.
//
// A Controller can be shared by many indexes:
//
//   - Memory: the bytes of every primary table mapping are reserved up front
//     (fail-fast, never blocking) and released when the index is closed.
//   - Background: snapshot saves take a worker slot so only a bounded number
//     run at once.
//   - IO: snapshot uploads are throttled by a token bucket.
//
// Share one controller between indexes to bound them together:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   64 << 20,
//	    IOLimitBytesPerSec: 8 << 20,
//	})
//	idx, err := typeindex.New(1<<16, typeindex.WithResourceController(rc))
//
// A nil *Controller is valid and imposes no limits.
package resource
