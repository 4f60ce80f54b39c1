package handler

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"pasta-logger/internal/cooking"
	"pasta-logger/internal/model"
	"pasta-logger/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type logFixture struct {
	logs    *MockLogService
	masters *MockMasterService
	tracker *cooking.Tracker
	handler *LogHandler
}

func newLogFixture(t *testing.T) *logFixture {
	f := &logFixture{
		logs:    new(MockLogService),
		masters: new(MockMasterService),
		tracker: newTracker(t),
	}
	f.handler = NewLogHandler(f.logs, f.masters, f.tracker, newRenderer(t), "https://dashboard.example.com", zerolog.Nop())
	return f
}

var testPickers = &model.Pickers{
	PastaKinds: []model.PickerItem{{ID: uuid.New(), Label: "De Cecco 1.6mm"}},
	Cheeses:    []model.PickerItem{{ID: uuid.New(), Label: "Pecorino"}},
}

func TestLogHandler_List(t *testing.T) {
	kindID := uuid.New()

	tests := []struct {
		name           string
		query          string
		expectedFilter model.LogFilter
	}{
		{
			name:           "No filter",
			query:          "",
			expectedFilter: model.LogFilter{},
		},
		{
			name:  "Pasta and thickness range",
			query: "?pasta=" + kindID.String() + "&thickness_min=1.4&thickness_max=1.8",
			expectedFilter: model.LogFilter{
				PastaKindID:  &kindID,
				ThicknessMin: floatPtr(1.4),
				ThicknessMax: floatPtr(1.8),
			},
		},
		{
			name:           "Malformed values are ignored",
			query:          "?recipe=abc&thickness_min=thin",
			expectedFilter: model.LogFilter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLogFixture(t)
			f.logs.On("List", mock.Anything, testUser.ID, tt.expectedFilter).Return([]model.LogSummary{
				{ID: uuid.New(), TakenAt: time.Now(), Overall: intPtr(5), Feedback: "Perfect al dente"},
			}, nil)
			f.masters.On("Pickers", mock.Anything).Return(testPickers, nil)

			w := serve(f.handler.List, signedIn(httptest.NewRequest(http.MethodGet, "/logs"+tt.query, nil)))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "Perfect al dente")
			f.logs.AssertExpectations(t)
		})
	}
}

func TestLogHandler_List_BackendPaused(t *testing.T) {
	f := newLogFixture(t)
	f.logs.On("List", mock.Anything, testUser.ID, model.LogFilter{}).
		Return(nil, errors.New("failed to list logs: dial tcp: i/o timeout"))

	w := serve(f.handler.List, signedIn(httptest.NewRequest(http.MethodGet, "/logs", nil)))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "https://dashboard.example.com")
}

func TestLogHandler_New(t *testing.T) {
	f := newLogFixture(t)
	f.masters.On("Pickers", mock.Anything).Return(testPickers, nil)
	require.NoError(t, f.tracker.Get(testUser.ID).Record(cooking.SauceStart, time.Now()))

	w := serve(f.handler.New, signedIn(httptest.NewRequest(http.MethodGet, "/logs/new", nil)))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "De Cecco 1.6mm")
	assert.Contains(t, body, `data-stage="sauce_start" disabled`)
	assert.Contains(t, body, `enctype="multipart/form-data"`)
}

func multipartForm(t *testing.T, fields url.Values, fileField, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestLogHandler_Create(t *testing.T) {
	kindID := testPickers.PastaKinds[0].ID
	cheeseID := testPickers.Cheeses[0].ID

	t.Run("Saves with photo and resets the timer", func(t *testing.T) {
		f := newLogFixture(t)
		start := time.Date(2026, 10, 19, 18, 30, 0, 0, time.UTC)
		require.NoError(t, f.tracker.Get(testUser.ID).Record(cooking.PastaStart, start))

		entryID := uuid.New()
		f.logs.On("Create", mock.Anything, testUser.ID,
			mock.MatchedBy(func(in model.LogInput) bool {
				return *in.PastaKindID == kindID &&
					len(in.CheeseIDs) == 1 && in.CheeseIDs[0] == cheeseID &&
					*in.WaterLitres == 2 && *in.SaltGrams == 20 &&
					*in.Overall == 4 && in.Firmness == nil &&
					in.RecipeID == nil && in.Title == "Sunday carbonara"
			}),
			mock.MatchedBy(func(photo *service.Upload) bool {
				return photo != nil && photo.ContentType == "image/png"
			}),
			mock.MatchedBy(func(snap cooking.Snapshot) bool {
				at, ok := snap.Times[cooking.PastaStart]
				return ok && at.Equal(start)
			}),
		).Return(&model.LogEntry{ID: entryID}, nil)

		body, contentType := multipartForm(t, url.Values{
			"pasta_kind_id": {kindID.String()},
			"cheese_ids":    {cheeseID.String()},
			"water_l":       {"2"},
			"salt_g":        {"20"},
			"overall":       {"4"},
			"firmness":      {""},
			"title":         {"Sunday carbonara"},
		}, "photo", "plate.png", pngHeader)
		req := httptest.NewRequest(http.MethodPost, "/logs", body)
		req.Header.Set("Content-Type", contentType)

		w := serve(f.handler.Create, signedIn(req))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/logs/"+entryID.String(), w.Header().Get("Location"))
		_, active := f.tracker.Peek(testUser.ID)
		assert.False(t, active)
		f.logs.AssertExpectations(t)
	})

	t.Run("Validation error keeps the form and the timer", func(t *testing.T) {
		f := newLogFixture(t)
		f.tracker.Get(testUser.ID)
		f.logs.On("Create", mock.Anything, testUser.ID, mock.Anything, (*service.Upload)(nil), mock.Anything).
			Return(nil, model.ErrPastaKindRequired)
		f.masters.On("Pickers", mock.Anything).Return(testPickers, nil)

		req := postForm("/logs", url.Values{"title": {"Forgot the pasta"}, "cheese_ids": {cheeseID.String()}})

		w := serve(f.handler.Create, signedIn(req))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Please choose a pasta kind")
		assert.Contains(t, w.Body.String(), `value="Forgot the pasta"`)
		assert.Contains(t, w.Body.String(), `value="`+cheeseID.String()+`" selected`)
		_, active := f.tracker.Peek(testUser.ID)
		assert.True(t, active)
	})

	t.Run("Unreadable number never reaches the service", func(t *testing.T) {
		f := newLogFixture(t)
		f.masters.On("Pickers", mock.Anything).Return(testPickers, nil)

		req := postForm("/logs", url.Values{"pasta_kind_id": {kindID.String()}, "water_l": {"two"}})

		w := serve(f.handler.Create, signedIn(req))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), model.ErrInvalidForm.Message)
		f.logs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Values the log cannot store never reach the service", func(t *testing.T) {
		tests := []struct {
			name  string
			field string
			value string
		}{
			{name: "Infinite salt", field: "salt_g", value: "Inf"},
			{name: "NaN water", field: "water_l", value: "NaN"},
			{name: "Infinite ladle", field: "ladle_half_units", value: "-Inf"},
			{name: "Overall above range", field: "overall", value: "999"},
			{name: "Firmness below range", field: "firmness", value: "0"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newLogFixture(t)
				f.masters.On("Pickers", mock.Anything).Return(testPickers, nil)

				req := postForm("/logs", url.Values{"pasta_kind_id": {kindID.String()}, tt.field: {tt.value}})

				w := serve(f.handler.Create, signedIn(req))

				assert.Equal(t, http.StatusBadRequest, w.Code)
				f.logs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("Backend paused", func(t *testing.T) {
		f := newLogFixture(t)
		f.logs.On("Create", mock.Anything, testUser.ID, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("failed to create log: connection refused"))

		req := postForm("/logs", url.Values{"pasta_kind_id": {kindID.String()}})

		w := serve(f.handler.Create, signedIn(req))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestLogHandler_Detail(t *testing.T) {
	t.Run("Found with analysis", func(t *testing.T) {
		f := newLogFixture(t)
		id := uuid.New()
		base := time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC)
		f.logs.On("Get", mock.Anything, testUser.ID, id).Return(&model.LogDetail{
			LogEntry: model.LogEntry{
				ID:      id,
				TakenAt: base,
				ProcessTimes: map[string]time.Time{
					"pasta_finish":  base.Add(10 * time.Minute),
					"combine_start": base.Add(10*time.Minute + 45*time.Second),
				},
			},
			DisplayTitle: "Cacio e pepe",
			CheeseNames:  []string{"Pecorino"},
		}, nil)

		req := signedIn(httptest.NewRequest(http.MethodGet, "/logs/"+id.String(), nil))
		req.SetPathValue("id", id.String())
		w := serve(f.handler.Detail, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<h1>Cacio e pepe</h1>")
		assert.Contains(t, w.Body.String(), "Pasta waited for combine: 0m 45s")
	})

	t.Run("Not found", func(t *testing.T) {
		f := newLogFixture(t)
		id := uuid.New()
		f.logs.On("Get", mock.Anything, testUser.ID, id).Return(nil, model.ErrLogNotFound)

		req := signedIn(httptest.NewRequest(http.MethodGet, "/logs/"+id.String(), nil))
		req.SetPathValue("id", id.String())
		w := serve(f.handler.Detail, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Malformed id", func(t *testing.T) {
		f := newLogFixture(t)

		req := signedIn(httptest.NewRequest(http.MethodGet, "/logs/xyz", nil))
		req.SetPathValue("id", "xyz")
		w := serve(f.handler.Detail, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		f.logs.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLogHandler_Delete(t *testing.T) {
	tests := []struct {
		name             string
		mockError        error
		expectedStatus   int
		expectedLocation string
	}{
		{
			name:             "Deleted",
			expectedStatus:   http.StatusSeeOther,
			expectedLocation: "/logs",
		},
		{
			name:           "Someone else's log",
			mockError:      model.ErrLogNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLogFixture(t)
			id := uuid.New()
			f.logs.On("Delete", mock.Anything, testUser.ID, id).Return(tt.mockError)

			req := signedIn(httptest.NewRequest(http.MethodPost, "/logs/"+id.String()+"/delete", nil))
			req.SetPathValue("id", id.String())
			w := serve(f.handler.Delete, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedLocation, w.Header().Get("Location"))
			f.logs.AssertExpectations(t)
		})
	}
}
