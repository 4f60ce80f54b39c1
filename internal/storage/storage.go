// Package storage keeps log photos and master-data images in an object
// store, either S3 or a directory on local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"pasta-logger/internal/config"

	"github.com/rs/zerolog"
)

// Logical buckets. On S3 they become key prefixes inside the configured bucket.
const (
	BucketPhotos = "pasta-photos"
	BucketImages = "pasta-images"
)

// ErrInvalidKey is returned for bucket or key names that would escape the store.
var ErrInvalidKey = errors.New("invalid object key")

// Store is an object store addressed by logical bucket and key.
type Store interface {
	// Upload writes body under bucket/key.
	Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error

	// SignedURL returns a URL that grants read access to the object for ttl.
	SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)

	// PublicURL returns a permanent URL for the object, or "" when the
	// store has no public endpoint.
	PublicURL(bucket, key string) string

	// Remove deletes the objects. Missing objects are not an error.
	Remove(ctx context.Context, bucket string, keys ...string) error
}

// New returns the S3 store when it is enabled and initialises, and the
// local store otherwise.
func New(ctx context.Context, cfg config.StorageConfig, baseURL, secret string, logger zerolog.Logger) Store {
	local := NewLocalStore(cfg.LocalRoot, baseURL, secret, logger)

	if !cfg.S3Enabled {
		logger.Info().Str("root", cfg.LocalRoot).Msg("S3 disabled, using local object storage")
		return local
	}

	s3Store, err := NewS3Store(ctx, cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialise S3 storage, falling back to local object storage")
		return local
	}
	return s3Store
}

// ResolveURL picks the URL to display for a stored object: the stored URL
// when present, else a signed URL for the stored path, else "".
func ResolveURL(ctx context.Context, store Store, bucket string, storedURL, path *string, ttl time.Duration) (string, error) {
	if storedURL != nil && *storedURL != "" {
		return *storedURL, nil
	}
	if path == nil || *path == "" {
		return "", nil
	}
	return store.SignedURL(ctx, bucket, *path, ttl)
}
