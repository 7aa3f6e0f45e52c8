// internal/api/handler_test.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/akshita317/devinsight/internal/apperr"
	"github.com/akshita317/devinsight/internal/model"
)

// MockMonitor is a mock of the MonitorService interface.
type MockMonitor struct {
	mock.Mock
}

func (m *MockMonitor) AddRepository(ctx context.Context, owner, name string) (model.RepositoryRecord, error) {
	args := m.Called(ctx, owner, name)
	return args.Get(0).(model.RepositoryRecord), args.Error(1)
}
func (m *MockMonitor) ListRepositories(ctx context.Context) ([]model.RepositoryRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.RepositoryRecord), args.Error(1)
}
func (m *MockMonitor) GetHealthDetail(ctx context.Context, owner, name string) (*model.HealthDetail, error) {
	args := m.Called(ctx, owner, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HealthDetail), args.Error(1)
}
func (m *MockMonitor) RemoveRepository(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOverview is a mock of the OverviewProvider interface.
type MockOverview struct {
	mock.Mock
}

func (m *MockOverview) Overview(ctx context.Context) (model.OverviewStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.OverviewStats), args.Error(1)
}

func setupRouter(t *testing.T) (http.Handler, *MockMonitor, *MockOverview) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	mockMonitor := new(MockMonitor)
	mockOverview := new(MockOverview)
	return NewRouter(mockMonitor, mockOverview, logger), mockMonitor, mockOverview
}

func TestHandler_AddRepository(t *testing.T) {
	t.Run("returns 201 with the created record", func(t *testing.T) {
		router, mockMonitor, _ := setupRouter(t)
		rec := model.RepositoryRecord{ID: 1, FullName: "test-owner/test-repo", HealthScore: 85.5, IsMonitored: true}
		mockMonitor.On("AddRepository", mock.Anything, "test-owner", "test-repo").Return(rec, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/repositories",
			strings.NewReader(`{"owner": "test-owner", "repo": "test-repo"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var got model.RepositoryRecord
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "test-owner/test-repo", got.FullName)
		assert.Equal(t, 85.5, got.HealthScore)
	})

	t.Run("returns 409 for a duplicate add", func(t *testing.T) {
		router, mockMonitor, _ := setupRouter(t)
		mockMonitor.On("AddRepository", mock.Anything, "test-owner", "test-repo").
			Return(model.RepositoryRecord{}, fmt.Errorf("repository test-owner/test-repo: %w", apperr.ErrAlreadyMonitored)).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/repositories",
			strings.NewReader(`{"owner": "test-owner", "repo": "test-repo"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("returns 404 when the repository does not exist upstream", func(t *testing.T) {
		router, mockMonitor, _ := setupRouter(t)
		mockMonitor.On("AddRepository", mock.Anything, "test-owner", "ghost").
			Return(model.RepositoryRecord{}, fmt.Errorf("repository test-owner/ghost: %w", apperr.ErrRepoNotFound)).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/repositories",
			strings.NewReader(`{"owner": "test-owner", "repo": "ghost"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("returns 502 when the upstream API is unavailable", func(t *testing.T) {
		router, mockMonitor, _ := setupRouter(t)
		mockMonitor.On("AddRepository", mock.Anything, "test-owner", "test-repo").
			Return(model.RepositoryRecord{}, fmt.Errorf("%w: timeout", apperr.ErrUpstreamUnavailable)).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/repositories",
			strings.NewReader(`{"owner": "test-owner", "repo": "test-repo"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})

	t.Run("returns 400 for malformed body", func(t *testing.T) {
		router, mockMonitor, _ := setupRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/api/repositories", strings.NewReader(`{not json`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockMonitor.AssertNotCalled(t, "AddRepository")
	})

	t.Run("returns 400 for an invalid repository name", func(t *testing.T) {
		router, mockMonitor, _ := setupRouter(t)
		mockMonitor.On("AddRepository", mock.Anything, "", "test-repo").
			Return(model.RepositoryRecord{}, &apperr.InvalidRepoNameError{Owner: "", Name: "test-repo"}).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/repositories",
			strings.NewReader(`{"owner": "", "repo": "test-repo"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandler_ListRepositories(t *testing.T) {
	t.Run("returns the active set", func(t *testing.T) {
		router, mockMonitor, _ := setupRouter(t)
		mockMonitor.On("ListRepositories", mock.Anything).Return([]model.RepositoryRecord{
			{ID: 1, FullName: "a/one"},
			{ID: 2, FullName: "b/two"},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/repositories", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var got []model.RepositoryRecord
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Len(t, got, 2)
	})

	t.Run("returns an empty array rather than null", func(t *testing.T) {
		router, mockMonitor, _ := setupRouter(t)
		mockMonitor.On("ListRepositories", mock.Anything).Return([]model.RepositoryRecord(nil), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/repositories", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
	})
}

func TestHandler_GetRepositoryHealth(t *testing.T) {
	t.Run("returns the detail payload", func(t *testing.T) {
		router, mockMonitor, _ := setupRouter(t)
		detail := &model.HealthDetail{
			HealthScore: 72.5,
			Repository:  model.RepositoryMetadata{FullName: "test-owner/test-repo"},
			Metrics:     model.HealthMetrics{OpenPRs: 3, RecentCommits: 10},
		}
		mockMonitor.On("GetHealthDetail", mock.Anything, "test-owner", "test-repo").Return(detail, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/repositories/test-owner/test-repo/health", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var got model.HealthDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, 72.5, got.HealthScore)
		assert.Equal(t, 3, got.Metrics.OpenPRs)
	})

	t.Run("returns 404 for an unknown upstream repository", func(t *testing.T) {
		router, mockMonitor, _ := setupRouter(t)
		mockMonitor.On("GetHealthDetail", mock.Anything, "test-owner", "ghost").
			Return(nil, fmt.Errorf("repository test-owner/ghost: %w", apperr.ErrRepoNotFound)).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/repositories/test-owner/ghost/health", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandler_RemoveRepository(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		router, mockMonitor, _ := setupRouter(t)
		mockMonitor.On("RemoveRepository", mock.Anything, int64(7)).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/repositories/7", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockMonitor.AssertExpectations(t)
	})

	t.Run("returns 404 for an unknown id", func(t *testing.T) {
		router, mockMonitor, _ := setupRouter(t)
		mockMonitor.On("RemoveRepository", mock.Anything, int64(99)).
			Return(fmt.Errorf("record 99: %w", apperr.ErrRecordNotFound)).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/repositories/99", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("returns 400 for a non-numeric id", func(t *testing.T) {
		router, mockMonitor, _ := setupRouter(t)

		req := httptest.NewRequest(http.MethodDelete, "/api/repositories/abc", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockMonitor.AssertNotCalled(t, "RemoveRepository")
	})
}

func TestHandler_GetOverview(t *testing.T) {
	router, _, mockOverview := setupRouter(t)
	mockOverview.On("Overview", mock.Anything).Return(model.OverviewStats{
		TotalRepositories:  2,
		AverageHealthScore: 75.25,
		TotalOpenIssues:    5,
		TotalOpenPRs:       3,
		Repositories: []model.RepositoryOverview{
			{Name: "a/one", HealthScore: 80, Issues: 2, PRs: 1},
			{Name: "b/two", HealthScore: 70.5, Issues: 3, PRs: 2},
		},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/overview", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var got model.OverviewStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 2, got.TotalRepositories)
	assert.Equal(t, 75.25, got.AverageHealthScore)
	require.Len(t, got.Repositories, 2)
	assert.Equal(t, "a/one", got.Repositories[0].Name)
}

func TestHandler_Notifications(t *testing.T) {
	router, _, _ := setupRouter(t)

	t.Run("settings are static defaults", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/notifications/settings", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var got NotificationSettings
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.False(t, got.EmailEnabled)
		assert.True(t, got.NotifyOnIssues)
	})

	t.Run("test notification is a placeholder", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/notifications/test", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestHandler_HealthCheck(t *testing.T) {
	router, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rr.Body.String())
}
