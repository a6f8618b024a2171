// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("worlds/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	err = ti.SaveCurrent(ctx, store, "world-42")
//
// # Features
//
//   - Range reads for partial fetches
//   - CRC32C-checked single-part puts, multipart uploads for large blobs
//   - Automatic pagination for listing
//   - Atomic CURRENT pointer commits through DynamoDB (DDBCommitStore)
package s3
