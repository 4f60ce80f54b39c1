package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"pasta-logger/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// s3Store implements Store on a single S3 bucket, using the logical bucket
// as a key prefix.
type s3Store struct {
	client     *s3.Client
	presign    *s3.PresignClient
	bucket     string
	publicBase string
	logger     zerolog.Logger
}

// NewS3Store creates an S3-backed object store.
func NewS3Store(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "s3-object-store").Logger()

	// Load AWS configuration
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info().
		Str("bucket", cfg.S3Bucket).
		Str("region", cfg.S3Region).
		Str("endpoint", cfg.S3Endpoint).
		Msg("S3 object store initialised")

	return &s3Store{
		client:     client,
		presign:    s3.NewPresignClient(client),
		bucket:     cfg.S3Bucket,
		publicBase: cfg.PublicBaseURL,
		logger:     logger,
	}, nil
}

func (s *s3Store) objectKey(bucket, key string) (string, error) {
	if !validBucket(bucket) || !validKey(key) {
		return "", fmt.Errorf("%w: %s/%s", ErrInvalidKey, bucket, key)
	}
	return bucket + "/" + key, nil
}

// Upload puts the object. Non-seekable bodies are buffered so the SDK can
// compute the payload checksum.
func (s *s3Store) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	objectKey, err := s.objectKey(bucket, key)
	if err != nil {
		return err
	}

	if _, ok := body.(io.ReadSeeker); !ok {
		data, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("failed to read upload body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", objectKey).
			Msg("failed to put object to S3")
		return fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", s.bucket, objectKey, err)
	}

	s.logger.Debug().Str("key", objectKey).Msg("object uploaded")
	return nil
}

func (s *s3Store) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	objectKey, err := s.objectKey(bucket, key)
	if err != nil {
		return "", err
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		s.logger.Error().Err(err).Str("key", objectKey).Msg("failed to presign object URL")
		return "", fmt.Errorf("failed to presign object URL (key=%s): %w", objectKey, err)
	}
	return req.URL, nil
}

func (s *s3Store) PublicURL(bucket, key string) string {
	if s.publicBase == "" {
		return ""
	}
	objectKey, err := s.objectKey(bucket, key)
	if err != nil {
		return ""
	}
	return s.publicBase + "/" + objectKey
}

func (s *s3Store) Remove(ctx context.Context, bucket string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	ids := make([]s3types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objectKey, err := s.objectKey(bucket, key)
		if err != nil {
			return err
		}
		ids = append(ids, s3types.ObjectIdentifier{Key: aws.String(objectKey)})
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		s.logger.Error().Err(err).Str("bucket", s.bucket).Int("objects", len(ids)).Msg("failed to delete objects from S3")
		return fmt.Errorf("failed to delete objects from S3: %w", err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("failed to delete %d object(s) from S3: %s: %s",
			len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return nil
}
