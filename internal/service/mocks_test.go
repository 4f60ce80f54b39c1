package service

import (
	"context"
	"io"
	"time"

	"pasta-logger/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockLogRepository is a mock implementation of LogRepository.
type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) Create(ctx context.Context, entry *model.LogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLogRepository) List(ctx context.Context, userID uuid.UUID, filter model.LogFilter) ([]model.LogSummary, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LogSummary), args.Error(1)
}

func (m *MockLogRepository) GetDetail(ctx context.Context, userID, id uuid.UUID) (*model.LogDetail, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LogDetail), args.Error(1)
}

func (m *MockLogRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockRecipeRepository is a mock implementation of RecipeRepository.
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) List(ctx context.Context, filter model.MasterFilter) ([]model.Recipe, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) ListActive(ctx context.Context) ([]model.Recipe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	return m.Called(ctx, recipe).Error(0)
}

func (m *MockRecipeRepository) Update(ctx context.Context, recipe *model.Recipe) error {
	return m.Called(ctx, recipe).Error(0)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRecipeRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockPastaKindRepository is a mock implementation of PastaKindRepository.
type MockPastaKindRepository struct {
	mock.Mock
}

func (m *MockPastaKindRepository) List(ctx context.Context, filter model.MasterFilter) ([]model.PastaKind, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PastaKind), args.Error(1)
}

func (m *MockPastaKindRepository) ListActive(ctx context.Context) ([]model.PastaKind, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PastaKind), args.Error(1)
}

func (m *MockPastaKindRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PastaKind, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PastaKind), args.Error(1)
}

func (m *MockPastaKindRepository) Create(ctx context.Context, kind *model.PastaKind) error {
	return m.Called(ctx, kind).Error(0)
}

func (m *MockPastaKindRepository) Update(ctx context.Context, kind *model.PastaKind) error {
	return m.Called(ctx, kind).Error(0)
}

func (m *MockPastaKindRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPastaKindRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockCheeseRepository is a mock implementation of CheeseRepository.
type MockCheeseRepository struct {
	mock.Mock
}

func (m *MockCheeseRepository) List(ctx context.Context, filter model.MasterFilter) ([]model.Cheese, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Cheese), args.Error(1)
}

func (m *MockCheeseRepository) ListActive(ctx context.Context) ([]model.Cheese, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Cheese), args.Error(1)
}

func (m *MockCheeseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Cheese, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cheese), args.Error(1)
}

func (m *MockCheeseRepository) Create(ctx context.Context, cheese *model.Cheese) error {
	return m.Called(ctx, cheese).Error(0)
}

func (m *MockCheeseRepository) Update(ctx context.Context, cheese *model.Cheese) error {
	return m.Called(ctx, cheese).Error(0)
}

func (m *MockCheeseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCheeseRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCheeseRepository) NamesByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockStore is a mock implementation of storage.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	return m.Called(ctx, bucket, key, body, contentType).Error(0)
}

func (m *MockStore) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockStore) PublicURL(bucket, key string) string {
	return m.Called(bucket, key).String(0)
}

func (m *MockStore) Remove(ctx context.Context, bucket string, keys ...string) error {
	return m.Called(ctx, bucket, keys).Error(0)
}

func strPtr(s string) *string         { return &s }
func floatPtr(f float64) *float64     { return &f }
func intPtr(i int) *int               { return &i }
func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }
