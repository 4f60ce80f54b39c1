package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"pasta-logger/internal/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// MockStore is a mock implementation of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	args := m.Called(ctx, bucket, key, body, contentType)
	return args.Error(0)
}

func (m *MockStore) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockStore) PublicURL(bucket, key string) string {
	return m.Called(bucket, key).String(0)
}

func (m *MockStore) Remove(ctx context.Context, bucket string, keys ...string) error {
	args := m.Called(ctx, bucket, keys)
	return args.Error(0)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "png", Extension("image/png"))
	assert.Equal(t, "png", Extension("IMAGE/PNG"))
	assert.Equal(t, "jpg", Extension("image/jpeg"))
	assert.Equal(t, "jpg", Extension("image/webp"))
	assert.Equal(t, "jpg", Extension(""))
}

func TestKeys(t *testing.T) {
	userID := uuid.MustParse("7d3c1d4e-2b7a-4c55-9e0a-3c7f5a6b8d90")

	photo := PhotoKey(userID, "image/png")
	assert.Regexp(t, regexp.MustCompile(`^7d3c1d4e-2b7a-4c55-9e0a-3c7f5a6b8d90/[0-9a-f-]{36}\.png$`), photo)

	image := ImageKey(FolderCheese, userID, "image/jpeg")
	assert.Regexp(t, regexp.MustCompile(`^cheese/7d3c1d4e-2b7a-4c55-9e0a-3c7f5a6b8d90/[0-9a-f-]{36}\.jpg$`), image)

	assert.NotEqual(t, PhotoKey(userID, "image/png"), PhotoKey(userID, "image/png"))
}

func TestValidKey(t *testing.T) {
	tests := []struct {
		key   string
		valid bool
	}{
		{"user/photo.jpg", true},
		{"pasta/user/img.png", true},
		{"", false},
		{"/etc/passwd", false},
		{"../secret", false},
		{"user/../../secret", false},
		{"user//photo.jpg", false},
		{`user\photo.jpg`, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.valid, validKey(tt.key))
		})
	}
}

func newLocal(t *testing.T) *LocalStore {
	t.Helper()
	return NewLocalStore(t.TempDir(), "http://localhost:8080", testSecret, zerolog.Nop())
}

func tokenFrom(t *testing.T, signed string) string {
	t.Helper()
	u, err := url.Parse(signed)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestLocalStore_UploadSignOpen(t *testing.T) {
	store := newLocal(t)
	ctx := context.Background()

	err := store.Upload(ctx, BucketPhotos, "u1/a.jpg", strings.NewReader("pasta"), "image/jpeg")
	require.NoError(t, err)

	signed, err := store.SignedURL(ctx, BucketPhotos, "u1/a.jpg", time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(signed, "http://localhost:8080/files/pasta-photos/u1/a.jpg?token="))

	f, err := store.Open(BucketPhotos, "u1/a.jpg", tokenFrom(t, signed))
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "pasta", string(data))

	assert.Empty(t, store.PublicURL(BucketPhotos, "u1/a.jpg"))
}

func TestLocalStore_UploadDoesNotOverwrite(t *testing.T) {
	store := newLocal(t)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, BucketImages, "pasta/u/x.png", strings.NewReader("one"), "image/png"))
	err := store.Upload(ctx, BucketImages, "pasta/u/x.png", strings.NewReader("two"), "image/png")
	assert.Error(t, err)
}

func TestLocalStore_TokenChecks(t *testing.T) {
	store := newLocal(t)
	ctx := context.Background()
	require.NoError(t, store.Upload(ctx, BucketPhotos, "u1/a.jpg", strings.NewReader("a"), "image/jpeg"))
	require.NoError(t, store.Upload(ctx, BucketPhotos, "u2/b.jpg", strings.NewReader("b"), "image/jpeg"))

	signed, err := store.SignedURL(ctx, BucketPhotos, "u1/a.jpg", time.Hour)
	require.NoError(t, err)
	token := tokenFrom(t, signed)

	_, err = store.Open(BucketPhotos, "u2/b.jpg", token)
	assert.ErrorIs(t, err, ErrInvalidToken, "token is bound to one object")

	_, err = store.Open(BucketPhotos, "u1/a.jpg", "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewLocalStore(store.Root, "http://localhost:8080", strings.Repeat("x", 32), zerolog.Nop())
	_, err = other.Open(BucketPhotos, "u1/a.jpg", token)
	assert.ErrorIs(t, err, ErrInvalidToken, "token signed with another secret")

	expired, err := store.SignedURL(ctx, BucketPhotos, "u1/a.jpg", -time.Minute)
	require.NoError(t, err)
	_, err = store.Open(BucketPhotos, "u1/a.jpg", tokenFrom(t, expired))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocalStore_RejectsBadKeys(t *testing.T) {
	store := newLocal(t)
	ctx := context.Background()

	err := store.Upload(ctx, BucketPhotos, "../escape.jpg", strings.NewReader("x"), "image/jpeg")
	assert.ErrorIs(t, err, ErrInvalidKey)

	err = store.Upload(ctx, "other-bucket", "a.jpg", strings.NewReader("x"), "image/jpeg")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = store.SignedURL(ctx, BucketPhotos, "/abs.jpg", time.Hour)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestLocalStore_Remove(t *testing.T) {
	store := newLocal(t)
	ctx := context.Background()
	require.NoError(t, store.Upload(ctx, BucketPhotos, "u1/a.jpg", strings.NewReader("a"), "image/jpeg"))

	require.NoError(t, store.Remove(ctx, BucketPhotos, "u1/a.jpg", "u1/missing.jpg"))

	_, err := os.Stat(filepath.Join(store.Root, BucketPhotos, "u1", "a.jpg"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestS3Store_ObjectKeyAndPublicURL(t *testing.T) {
	store := &s3Store{bucket: "assets", publicBase: "https://cdn.example.com", logger: zerolog.Nop()}

	key, err := store.objectKey(BucketImages, "pasta/u/x.png")
	require.NoError(t, err)
	assert.Equal(t, "pasta-images/pasta/u/x.png", key)

	assert.Equal(t, "https://cdn.example.com/pasta-photos/u/a.jpg", store.PublicURL(BucketPhotos, "u/a.jpg"))
	assert.Empty(t, store.PublicURL(BucketPhotos, "../a.jpg"))

	store.publicBase = ""
	assert.Empty(t, store.PublicURL(BucketPhotos, "u/a.jpg"))

	_, err = store.objectKey("nope", "a.jpg")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestNew_S3DisabledUsesLocal(t *testing.T) {
	cfg := config.StorageConfig{LocalRoot: t.TempDir(), SignedURLTTL: time.Hour}

	store := New(context.Background(), cfg, "http://localhost:8080", testSecret, zerolog.Nop())

	_, ok := store.(*LocalStore)
	assert.True(t, ok)
}

func TestResolveURL(t *testing.T) {
	ctx := context.Background()
	stored := "https://cdn.example.com/pasta-photos/u/a.jpg"
	path := "u/a.jpg"
	empty := ""

	t.Run("Stored URL wins", func(t *testing.T) {
		store := new(MockStore)
		got, err := ResolveURL(ctx, store, BucketPhotos, &stored, &path, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, stored, got)
		store.AssertNotCalled(t, "SignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Signed URL for path", func(t *testing.T) {
		store := new(MockStore)
		store.On("SignedURL", ctx, BucketPhotos, path, time.Hour).Return("https://signed", nil)

		got, err := ResolveURL(ctx, store, BucketPhotos, &empty, &path, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, "https://signed", got)
		store.AssertExpectations(t)
	})

	t.Run("Nothing stored", func(t *testing.T) {
		store := new(MockStore)
		got, err := ResolveURL(ctx, store, BucketPhotos, nil, nil, time.Hour)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Signing error", func(t *testing.T) {
		store := new(MockStore)
		store.On("SignedURL", ctx, BucketPhotos, path, time.Hour).Return("", errors.New("boom"))

		_, err := ResolveURL(ctx, store, BucketPhotos, nil, &path, time.Hour)
		assert.Error(t, err)
	})
}
