package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// ErrInvalidToken is returned when a local file token is missing, expired
// or issued for another object.
var ErrInvalidToken = errors.New("invalid or expired file token")

// LocalStore keeps objects under Root/<bucket>/<key> and serves them through
// /files/{bucket}/{key} with short-lived signed tokens.
type LocalStore struct {
	Root    string
	baseURL string
	secret  []byte
	logger  zerolog.Logger
}

// NewLocalStore creates a disk-backed store. Signed URLs point at baseURL.
func NewLocalStore(root, baseURL, secret string, logger zerolog.Logger) *LocalStore {
	return &LocalStore{
		Root:    root,
		baseURL: baseURL,
		secret:  []byte(secret),
		logger:  logger.With().Str("component", "local-object-store").Logger(),
	}
}

// Path returns the file backing bucket/key.
func (s *LocalStore) Path(bucket, key string) (string, error) {
	if !validBucket(bucket) || !validKey(key) {
		return "", fmt.Errorf("%w: %s/%s", ErrInvalidKey, bucket, key)
	}
	return filepath.Join(s.Root, bucket, filepath.FromSlash(key)), nil
}

func (s *LocalStore) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	full, err := s.Path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		s.logger.Error().Err(err).Str("path", full).Msg("failed to create object file")
		return fmt.Errorf("failed to create object file %s: %w", full, err)
	}
	defer f.Close()

	n, err := io.Copy(f, body)
	if err != nil {
		_ = os.Remove(full)
		return fmt.Errorf("failed to write object file %s: %w", full, err)
	}

	s.logger.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Int64("bytes", n).
		Str("content_type", contentType).
		Msg("object stored")
	return nil
}

// SignedURL returns a /files URL carrying an HS256 token bound to the object.
func (s *LocalStore) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if _, err := s.Path(bucket, key); err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   bucket + "/" + key,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign file token: %w", err)
	}

	return fmt.Sprintf("%s/files/%s/%s?token=%s", s.baseURL, bucket, key, url.QueryEscape(token)), nil
}

// PublicURL is always empty: local objects are only reachable with a token.
func (s *LocalStore) PublicURL(bucket, key string) string {
	return ""
}

func (s *LocalStore) Remove(ctx context.Context, bucket string, keys ...string) error {
	for _, key := range keys {
		full, err := s.Path(bucket, key)
		if err != nil {
			return err
		}
		if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove object %s: %w", full, err)
		}
	}
	return nil
}

// Open verifies token for bucket/key and opens the object for reading.
func (s *LocalStore) Open(bucket, key, token string) (*os.File, error) {
	if err := s.verify(bucket, key, token); err != nil {
		return nil, err
	}
	full, err := s.Path(bucket, key)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (s *LocalStore) verify(bucket, key, token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject != bucket+"/"+key {
		return ErrInvalidToken
	}
	return nil
}
