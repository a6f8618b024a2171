// Package fs abstracts the file operations the local blob store performs, so
// tests can inject write, sync and rename failures.
//
// Production code uses [Default], which is [LocalFS]. Tests wrap it in a
// [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: -1, FailOnSync: true})
//
// Operations take no context. They are local syscalls that cannot be
// interrupted; remote stores implement [blobstore.BlobStore] directly.
package fs
