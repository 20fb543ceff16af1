// Package storage provides read access to the statement archive.
//
// It wraps the MinIO Go client to provide a simplified interface for the
// operations ingest needs: checking bucket access, streaming report objects,
// and listing a network's prefix. This abstraction supports both AWS S3 and
// self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it
// easier to mock archive interactions for unit testing (as seen in
// core/storage/mocks). Report uploads happen upstream in the network
// connectors; this side is read-only.
//
// # Operations
//
//   - BucketExists: Verifies access to the archive bucket.
//   - GetObject: Retrieves a report CSV as a stream.
//   - ListObjects: Lists report objects under a network prefix.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "statements")
package storage
