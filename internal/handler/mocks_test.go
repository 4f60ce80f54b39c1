package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"pasta-logger/internal/auth"
	"pasta-logger/internal/cooking"
	"pasta-logger/internal/model"
	"pasta-logger/internal/service"
	"pasta-logger/internal/view"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLogService is a mock implementation of LogService.
type MockLogService struct {
	mock.Mock
}

func (m *MockLogService) Create(ctx context.Context, userID uuid.UUID, in model.LogInput, photo *service.Upload, snap cooking.Snapshot) (*model.LogEntry, error) {
	args := m.Called(ctx, userID, in, photo, snap)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LogEntry), args.Error(1)
}

func (m *MockLogService) List(ctx context.Context, userID uuid.UUID, filter model.LogFilter) ([]model.LogSummary, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LogSummary), args.Error(1)
}

func (m *MockLogService) Get(ctx context.Context, userID, id uuid.UUID) (*model.LogDetail, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LogDetail), args.Error(1)
}

func (m *MockLogService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

// MockMasterService is a mock implementation of MasterService.
type MockMasterService struct {
	mock.Mock
}

func (m *MockMasterService) ListRecipes(ctx context.Context, filter model.MasterFilter) ([]model.Recipe, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

func (m *MockMasterService) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockMasterService) SaveRecipe(ctx context.Context, id *uuid.UUID, in model.RecipeInput) (*model.Recipe, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockMasterService) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMasterService) ListPastaKinds(ctx context.Context, filter model.MasterFilter) ([]model.PastaKind, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PastaKind), args.Error(1)
}

func (m *MockMasterService) GetPastaKind(ctx context.Context, id uuid.UUID) (*model.PastaKind, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PastaKind), args.Error(1)
}

func (m *MockMasterService) SavePastaKind(ctx context.Context, userID uuid.UUID, id *uuid.UUID, in model.PastaKindInput, image *service.Upload) (*model.PastaKind, error) {
	args := m.Called(ctx, userID, id, in, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PastaKind), args.Error(1)
}

func (m *MockMasterService) DeletePastaKind(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMasterService) ListCheeses(ctx context.Context, filter model.MasterFilter) ([]model.Cheese, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Cheese), args.Error(1)
}

func (m *MockMasterService) GetCheese(ctx context.Context, id uuid.UUID) (*model.Cheese, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cheese), args.Error(1)
}

func (m *MockMasterService) SaveCheese(ctx context.Context, userID uuid.UUID, id *uuid.UUID, in model.CheeseInput, image *service.Upload) (*model.Cheese, error) {
	args := m.Called(ctx, userID, id, in, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cheese), args.Error(1)
}

func (m *MockMasterService) DeleteCheese(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMasterService) Stats(ctx context.Context) (*model.MasterStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MasterStats), args.Error(1)
}

func (m *MockMasterService) Pickers(ctx context.Context) (*model.Pickers, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pickers), args.Error(1)
}

// MockAuthService is a mock implementation of auth.Service.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) RequestMagicLink(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAuthService) VerifyMagicLink(ctx context.Context, token string) (*model.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockStreamer is a mock implementation of Streamer.
type MockStreamer struct {
	mock.Mock
}

func (m *MockStreamer) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	return m.Called(w, r, userID).Error(0)
}

// MockFileOpener is a mock implementation of FileOpener.
type MockFileOpener struct {
	mock.Mock
}

func (m *MockFileOpener) Open(bucket, key, token string) (*os.File, error) {
	args := m.Called(bucket, key, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*os.File), args.Error(1)
}

var testUser = &model.User{ID: uuid.MustParse("9b2f1c1e-58a4-4c6c-9b8f-1a2b3c4d5e6f"), Email: "cook@example.com"}

func newRenderer(t *testing.T) *view.Renderer {
	t.Helper()
	r, err := view.New(zerolog.Nop())
	require.NoError(t, err)
	return r
}

func newTracker(t *testing.T) *cooking.Tracker {
	t.Helper()
	tracker := cooking.NewTracker(cooking.Options{TickInterval: time.Hour, BoilSeconds: 480}, nil, zerolog.Nop())
	t.Cleanup(tracker.Close)
	return tracker
}

// signedIn returns req carrying testUser, as RequireSession would.
func signedIn(req *http.Request) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), testUser))
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
