package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"watch-tracker/domain/model"
	"watch-tracker/infrastructure/realtime"
	httpHandler "watch-tracker/interfaces/http"
	"watch-tracker/server"
	"watch-tracker/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) AddVideo(ctx context.Context, url string) (*model.VideoRecord, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoRecord), args.Error(1)
}

func (m *MockTracker) RemoveVideo(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTracker) SetGoal(ctx context.Context, minutes int) error {
	args := m.Called(ctx, minutes)
	return args.Error(0)
}

func (m *MockTracker) SetMonthlyGoal(ctx context.Context, month string, minutes int) (model.MonthBucket, error) {
	args := m.Called(ctx, month, minutes)
	return args.Get(0).(model.MonthBucket), args.Error(1)
}

func (m *MockTracker) RecomputeAll(ctx context.Context) ([]model.MonthBucket, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.MonthBucket), args.Error(1)
}

func (m *MockTracker) Videos() []model.VideoRecord {
	return m.Called().Get(0).([]model.VideoRecord)
}

func (m *MockTracker) Goal() int {
	return m.Called().Int(0)
}

func (m *MockTracker) TotalWatchedSeconds() int {
	return m.Called().Int(0)
}

func (m *MockTracker) CurrentMonthProgress() model.MonthBucket {
	return m.Called().Get(0).(model.MonthBucket)
}

func (m *MockTracker) MonthlyProgress() []model.MonthBucket {
	return m.Called().Get(0).([]model.MonthBucket)
}

func (m *MockTracker) MonthlySeries() []model.MonthlySeriesPoint {
	return m.Called().Get(0).([]model.MonthlySeriesPoint)
}

func (m *MockTracker) Snapshot() model.ProgressSnapshot {
	return m.Called().Get(0).(model.ProgressSnapshot)
}

func (m *MockTracker) Busy() bool {
	return m.Called().Bool(0)
}

func (m *MockTracker) Subscribe(listener usecase.ProgressListener) func() {
	args := m.Called(listener)
	return args.Get(0).(func())
}

func newRouter(tracker *MockTracker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return server.InitiateRouter(httpHandler.NewTrackerHandler(tracker, realtime.NewProgressHub()))
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestTrackerHandler_AddVideo(t *testing.T) {
	const url = "https://youtu.be/dQw4w9WgXcQ"
	tests := []struct {
		name       string
		record     *model.VideoRecord
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"created", &model.VideoRecord{ID: "1", Title: "t", DurationSeconds: 213}, nil, http.StatusCreated, ""},
		{"invalid url", nil, model.ErrInvalidURL, http.StatusBadRequest, model.ErrInvalidURL.Error()},
		{"busy", nil, model.ErrBusy, http.StatusConflict, model.ErrBusy.Error()},
		{"resolution failed", nil, &model.ResolutionError{Message: "video not found", Err: model.ErrVideoNotFound}, http.StatusBadGateway, "video not found"},
		{"saved failed", &model.VideoRecord{ID: "2"}, &model.PersistError{Key: "watchedVideos", Err: errors.New("disk full")}, http.StatusInternalServerError, "persist watchedVideos: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := new(MockTracker)
			tracker.On("AddVideo", mock.Anything, url).Return(tt.record, tt.err).Once()

			w := do(newRouter(tracker), http.MethodPost, "/api/videos", `{"url":"`+url+`"}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body["message"])
			}
			if tt.record != nil {
				data := body["data"].(map[string]any)
				assert.Equal(t, tt.record.ID, data["id"])
			}
			tracker.AssertExpectations(t)
		})
	}
}

func TestTrackerHandler_AddVideoBadBody(t *testing.T) {
	tracker := new(MockTracker)

	w := do(newRouter(tracker), http.MethodPost, "/api/videos", `{`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	tracker.AssertNotCalled(t, "AddVideo", mock.Anything, mock.Anything)
}

func TestTrackerHandler_ListAndRemove(t *testing.T) {
	tracker := new(MockTracker)
	tracker.On("Videos").Return([]model.VideoRecord{{ID: "a"}, {ID: "b"}})
	tracker.On("RemoveVideo", mock.Anything, "a").Return(true, nil)
	tracker.On("RemoveVideo", mock.Anything, "zzz").Return(false, nil)
	router := newRouter(tracker)

	w := do(router, http.MethodGet, "/api/videos", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 2)

	w = do(router, http.MethodDelete, "/api/videos/a", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["data"].(map[string]any)["removed"])

	w = do(router, http.MethodDelete, "/api/videos/zzz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["data"].(map[string]any)["removed"])
}

func TestTrackerHandler_Goal(t *testing.T) {
	tracker := new(MockTracker)
	tracker.On("Goal").Return(125)
	tracker.On("SetGoal", mock.Anything, 90).Return(nil).Twice()
	router := newRouter(tracker)

	w := do(router, http.MethodGet, "/api/goal", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2h 5m", decode(t, w)["data"].(map[string]any)["display"])

	assert.Equal(t, http.StatusOK, do(router, http.MethodPut, "/api/goal", `{"minutes":90}`).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodPut, "/api/goal", `{"minutes":"90"}`).Code)

	for _, bad := range []string{`{"minutes":0}`, `{"minutes":"abc"}`, `{"minutes":-4}`, `{}`} {
		w = do(router, http.MethodPut, "/api/goal", bad)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
		assert.Equal(t, model.ErrInvalidGoal.Error(), decode(t, w)["message"])
	}
	tracker.AssertExpectations(t)
}

func TestTrackerHandler_MonthlyGoal(t *testing.T) {
	tracker := new(MockTracker)
	tracker.On("SetMonthlyGoal", mock.Anything, "2025-03", 30).
		Return(model.MonthBucket{Month: "2025-03", GoalMinutes: 30, TotalWatchedSeconds: 600}, nil)
	tracker.On("SetMonthlyGoal", mock.Anything, "2025-3", 30).
		Return(model.MonthBucket{}, model.ErrInvalidMonth)
	router := newRouter(tracker)

	w := do(router, http.MethodPut, "/api/progress/monthly/2025-03", `{"minutes":30}`)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(30), data["goal"])
	assert.Equal(t, float64(600), data["totalWatched"])

	w = do(router, http.MethodPut, "/api/progress/monthly/2025-3", `{"minutes":30}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrackerHandler_Progress(t *testing.T) {
	tracker := new(MockTracker)
	tracker.On("Snapshot").Return(model.ProgressSnapshot{TotalWatchedSeconds: 2100, GoalMinutes: 30, PercentComplete: 100})
	tracker.On("CurrentMonthProgress").Return(model.MonthBucket{Month: "2025-03", TotalWatchedSeconds: 2100, GoalMinutes: 30})
	tracker.On("MonthlySeries").Return([]model.MonthlySeriesPoint{{Month: "2025-03", Percent: 100, HoursWatched: 0.58}})
	tracker.On("RecomputeAll", mock.Anything).Return([]model.MonthBucket{{Month: "2025-03"}}, nil)
	tracker.On("Busy").Return(false)
	router := newRouter(tracker)

	w := do(router, http.MethodGet, "/api/progress", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), decode(t, w)["data"].(map[string]any)["percentComplete"])

	w = do(router, http.MethodGet, "/api/progress/monthly", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "2025-03", data["current"].(map[string]any)["month"])
	assert.Len(t, data["series"], 1)

	w = do(router, http.MethodPost, "/api/progress/monthly/recompute", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestRouter_CORSAllowsLocalOrigins(t *testing.T) {
	tracker := new(MockTracker)
	tracker.On("Busy").Return(false)
	router := newRouter(tracker)

	for origin, allowed := range map[string]bool{
		"http://localhost:5173": true,
		"http://127.0.0.1:8080": true,
		"https://evil.example":  false,
	} {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if allowed {
			assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"), origin)
		} else {
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"), origin)
		}
	}
}
