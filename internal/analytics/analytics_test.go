// internal/analytics/analytics_test.go
package analytics

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/akshita317/devinsight/internal/model"
	"github.com/akshita317/devinsight/internal/store"
)

// MockStore is a mock of the store.Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, arg store.CreateParams) (model.RepositoryRecord, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(model.RepositoryRecord), args.Error(1)
}
func (m *MockStore) GetByID(ctx context.Context, id int64) (model.RepositoryRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.RepositoryRecord), args.Error(1)
}
func (m *MockStore) GetActiveByFullName(ctx context.Context, fullName string) (model.RepositoryRecord, error) {
	args := m.Called(ctx, fullName)
	return args.Get(0).(model.RepositoryRecord), args.Error(1)
}
func (m *MockStore) ListActive(ctx context.Context) ([]model.RepositoryRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.RepositoryRecord), args.Error(1)
}
func (m *MockStore) UpdateAnalysis(ctx context.Context, arg store.UpdateAnalysisParams) (model.RepositoryRecord, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(model.RepositoryRecord), args.Error(1)
}
func (m *MockStore) SetMonitored(ctx context.Context, id int64, monitored bool) error {
	args := m.Called(ctx, id, monitored)
	return args.Error(0)
}

func TestSummarize(t *testing.T) {
	t.Run("aggregates totals and mean score", func(t *testing.T) {
		records := []model.RepositoryRecord{
			{FullName: "a/one", HealthScore: 90, OpenIssuesCount: 3, OpenPRsCount: 2},
			{FullName: "b/two", HealthScore: 70.5, OpenIssuesCount: 10, OpenPRsCount: 0},
			{FullName: "c/three", HealthScore: 55, OpenIssuesCount: 0, OpenPRsCount: 7},
		}

		got := Summarize(records)

		assert.Equal(t, 3, got.TotalRepositories)
		assert.Equal(t, 71.83, got.AverageHealthScore)
		assert.Equal(t, 13, got.TotalOpenIssues)
		assert.Equal(t, 9, got.TotalOpenPRs)
	})

	t.Run("projection preserves input ordering", func(t *testing.T) {
		records := []model.RepositoryRecord{
			{FullName: "z/last-added-first", HealthScore: 10, OpenIssuesCount: 1, OpenPRsCount: 2},
			{FullName: "a/second", HealthScore: 20},
		}

		got := Summarize(records)

		require.Len(t, got.Repositories, 2)
		assert.Equal(t, "z/last-added-first", got.Repositories[0].Name)
		assert.Equal(t, 10.0, got.Repositories[0].HealthScore)
		assert.Equal(t, 1, got.Repositories[0].Issues)
		assert.Equal(t, 2, got.Repositories[0].PRs)
		assert.Equal(t, "a/second", got.Repositories[1].Name)
	})

	t.Run("empty set yields zero average without error", func(t *testing.T) {
		got := Summarize(nil)

		assert.Equal(t, 0, got.TotalRepositories)
		assert.Equal(t, 0.0, got.AverageHealthScore)
		assert.Equal(t, 0, got.TotalOpenIssues)
		assert.Equal(t, 0, got.TotalOpenPRs)
		assert.Empty(t, got.Repositories)
	})
}

func TestAggregator_Overview(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("reads the active set from the store", func(t *testing.T) {
		mockStore := new(MockStore)
		mockStore.On("ListActive", ctx).Return([]model.RepositoryRecord{
			{FullName: "a/one", HealthScore: 80},
			{FullName: "b/two", HealthScore: 60},
		}, nil).Once()

		agg := NewAggregator(mockStore, logger)
		got, err := agg.Overview(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, got.TotalRepositories)
		assert.Equal(t, 70.0, got.AverageHealthScore)
		mockStore.AssertExpectations(t)
	})

	t.Run("propagates store failures", func(t *testing.T) {
		mockStore := new(MockStore)
		dbErr := errors.New("connection refused")
		mockStore.On("ListActive", ctx).Return([]model.RepositoryRecord(nil), dbErr).Once()

		agg := NewAggregator(mockStore, logger)
		_, err := agg.Overview(ctx)

		assert.ErrorIs(t, err, dbErr)
	})
}
