// Package blobstore provides the storage abstraction snapshots are written to.
//
// Snapshot blobs are written once with Create; a new version of a snapshot
// is a new name, and only the CURRENT pointer is replaced with Put. Stores
// implementing Creator make that create step atomic. Implementations must be
// safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process, for tests and ephemeral worlds
//   - LocalStore: local filesystem, mmap reads and atomic rename writes
//   - s3.Store / s3.DDBCommitStore: Amazon S3, optionally with DynamoDB commits
//   - minio.Store: MinIO and other S3-compatible services
package blobstore
