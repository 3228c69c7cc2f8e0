// Package storage archives sign-off reports in object storage.
//
// It wraps the MinIO Go client behind the small Client interface so services
// can be tested with the mock in core/storage/mocks. Both AWS S3 and
// self-hosted MinIO are supported. Archiving is optional: with no endpoint
// configured NewClient returns ErrDisabled.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if errors.Is(err, storage.ErrDisabled) {
//	    // run without an archive
//	}
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
