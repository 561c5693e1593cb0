// Path: internal/service/service_test.go
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gh-trending/internal/config"
	"gh-trending/internal/domain"
	"gh-trending/internal/events"
	"gh-trending/internal/trends"
)

// MockSnapshotStore is a mock implementation of the SnapshotStore interface
type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) UpsertSnapshot(ctx context.Context, date string, repos []domain.Repo) error {
	args := m.Called(ctx, date, repos)
	return args.Error(0)
}

func (m *MockSnapshotStore) GetSnapshot(ctx context.Context, date string) ([]domain.Repo, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]domain.Repo), args.Error(1)
}

func (m *MockSnapshotStore) GetPriorSnapshot(ctx context.Context, date string) ([]domain.Repo, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]domain.Repo), args.Error(1)
}

func (m *MockSnapshotStore) UpsertDetails(ctx context.Context, details []domain.RepoDetail) error {
	args := m.Called(ctx, details)
	return args.Error(0)
}

func (m *MockSnapshotStore) GetAllDetails(ctx context.Context) (map[string]domain.RepoDetail, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]domain.RepoDetail), args.Error(1)
}

func (m *MockSnapshotStore) GetHistory(ctx context.Context, repoName, since string) ([]domain.HistoryPoint, error) {
	args := m.Called(ctx, repoName, since)
	return args.Get(0).([]domain.HistoryPoint), args.Error(1)
}

func (m *MockSnapshotStore) DeleteBefore(ctx context.Context, cutoff string) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSnapshotStore) AvailableDates(ctx context.Context, limit int) ([]string, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]string), args.Error(1)
}

// MockStatusStore is a mock implementation of the StatusStore interface
type MockStatusStore struct {
	mock.Mock
}

func (m *MockStatusStore) LastRun(ctx context.Context) (*domain.RunRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).(*domain.RunRecord), args.Error(1)
}

func (m *MockStatusStore) RecordRun(ctx context.Context, rec domain.RunRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// stubFetcher returns a canned board.
type stubFetcher struct {
	repos   []domain.Repo
	skipped int
	err     error
}

func (f *stubFetcher) Fetch(ctx context.Context) ([]domain.Repo, int, error) {
	return f.repos, f.skipped, f.err
}

func (f *stubFetcher) Readmes(ctx context.Context, repos []domain.Repo, limit int) map[string]string {
	return map[string]string{}
}

// stubSummarizer returns canned details.
type stubSummarizer struct {
	details []domain.RepoDetail
	err     error
}

func (s *stubSummarizer) Summarize(ctx context.Context, repos []domain.Repo, readmes map[string]string) ([]domain.RepoDetail, error) {
	return s.details, s.err
}

func testService(fetcher RepoFetcher, summarizer DetailSummarizer, snapshots SnapshotStore, status StatusStore) *Service {
	return NewService(
		config.WatcherConfig{IntervalHours: 24},
		config.TrendsConfig{
			SurgeThreshold: 0.3,
			SurgeFloor:     100,
			TopN:           20,
			MoversLimit:    5,
			ActiveLimit:    10,
			RetentionDays:  90,
		},
		50,
		fetcher,
		summarizer,
		snapshots,
		status,
		nil,
		events.NewBroker(),
		zap.NewNop().Sugar(),
	)
}

func TestRunCycle_HappyPath(t *testing.T) {
	now := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{
		repos: []domain.Repo{
			{RepoName: "x/b", Rank: 1, Stars: 80},
			{RepoName: "x/c", Rank: 2, Stars: 40},
		},
	}

	snapshots := new(MockSnapshotStore)
	snapshots.On("GetPriorSnapshot", mock.Anything, "2026-08-30").Return([]domain.Repo{
		{RepoName: "x/a", Rank: 1, Stars: 100},
		{RepoName: "x/b", Rank: 2, Stars: 50},
	}, nil)
	snapshots.On("UpsertSnapshot", mock.Anything, "2026-08-30", mock.MatchedBy(func(repos []domain.Repo) bool {
		// The persisted snapshot must carry the delta annotations.
		return len(repos) == 2 && repos[0].StarsDelta == 30 && repos[1].StarsDelta == 0
	})).Return(nil)
	snapshots.On("GetAllDetails", mock.Anything).Return(map[string]domain.RepoDetail{}, nil)
	snapshots.On("DeleteBefore", mock.Anything, trends.Cutoff(now, 90)).Return(int64(3), nil)

	status := new(MockStatusStore)
	status.On("RecordRun", mock.Anything, mock.MatchedBy(func(rec domain.RunRecord) bool {
		return rec.Date == "2026-08-30" && rec.RepoCount == 2 && rec.PurgedRows == 3
	})).Return(nil)

	svc := testService(fetcher, nil, snapshots, status)
	report, err := svc.RunCycle(context.Background(), now)

	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "2026-08-30", report.Date)

	require.Len(t, report.Rising, 1)
	assert.Equal(t, "x/b", report.Rising[0].RepoName)
	assert.Equal(t, 0.6, report.Rising[0].StarsRate)
	require.Len(t, report.NewEntries, 1)
	assert.Equal(t, "x/c", report.NewEntries[0].RepoName)
	require.Len(t, report.Dropped, 1)
	assert.Equal(t, "x/a", report.Dropped[0].RepoName)
	require.Len(t, report.Surging, 1)
	assert.Equal(t, "x/b", report.Surging[0].RepoName)

	assert.Same(t, report, svc.LatestReport())
	snapshots.AssertExpectations(t)
	status.AssertExpectations(t)
}

func TestRunCycle_PublishesReportEvent(t *testing.T) {
	now := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{repos: []domain.Repo{{RepoName: "x/a", Rank: 1, Stars: 10}}}

	snapshots := new(MockSnapshotStore)
	snapshots.On("GetPriorSnapshot", mock.Anything, mock.Anything).Return([]domain.Repo{}, nil)
	snapshots.On("UpsertSnapshot", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	snapshots.On("GetAllDetails", mock.Anything).Return(map[string]domain.RepoDetail{}, nil)
	snapshots.On("DeleteBefore", mock.Anything, mock.Anything).Return(int64(0), nil)

	status := new(MockStatusStore)
	status.On("RecordRun", mock.Anything, mock.Anything).Return(nil)

	svc := testService(fetcher, nil, snapshots, status)
	ch := svc.broker.Subscribe(EventReportReady)

	report, err := svc.RunCycle(context.Background(), now)
	require.NoError(t, err)

	select {
	case event := <-ch:
		published, ok := event.Data.(*domain.TrendReport)
		require.True(t, ok)
		assert.Same(t, report, published)
	default:
		t.Fatal("expected a report event to be published")
	}
}

func TestRunCycle_NoHistoryMeansAllNew(t *testing.T) {
	now := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{repos: []domain.Repo{
		{RepoName: "x/a", Rank: 1, Stars: 100},
		{RepoName: "x/b", Rank: 2, Stars: 50},
	}}

	snapshots := new(MockSnapshotStore)
	snapshots.On("GetPriorSnapshot", mock.Anything, mock.Anything).Return([]domain.Repo{}, nil)
	snapshots.On("UpsertSnapshot", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	snapshots.On("GetAllDetails", mock.Anything).Return(map[string]domain.RepoDetail{}, nil)
	snapshots.On("DeleteBefore", mock.Anything, mock.Anything).Return(int64(0), nil)

	status := new(MockStatusStore)
	status.On("RecordRun", mock.Anything, mock.Anything).Return(nil)

	svc := testService(fetcher, nil, snapshots, status)
	report, err := svc.RunCycle(context.Background(), now)

	require.NoError(t, err)
	assert.Len(t, report.NewEntries, 2)
	assert.Empty(t, report.Dropped)
	assert.Empty(t, report.Rising)
	assert.Empty(t, report.Surging)
}

func TestRunCycle_FetchErrorIsFatal(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("rate limited")}
	svc := testService(fetcher, nil, new(MockSnapshotStore), new(MockStatusStore))

	report, err := svc.RunCycle(context.Background(), time.Now())

	assert.Error(t, err)
	assert.Nil(t, report)
	assert.Nil(t, svc.LatestReport())
}

func TestRunCycle_EmptyFetchIsFatal(t *testing.T) {
	svc := testService(&stubFetcher{}, nil, new(MockSnapshotStore), new(MockStatusStore))

	report, err := svc.RunCycle(context.Background(), time.Now())

	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestRunCycle_StorageFailureProducesNoReport(t *testing.T) {
	fetcher := &stubFetcher{repos: []domain.Repo{{RepoName: "x/a", Rank: 1, Stars: 10}}}

	snapshots := new(MockSnapshotStore)
	snapshots.On("GetPriorSnapshot", mock.Anything, mock.Anything).Return([]domain.Repo{}, nil)
	snapshots.On("UpsertSnapshot", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	svc := testService(fetcher, nil, snapshots, new(MockStatusStore))
	report, err := svc.RunCycle(context.Background(), time.Now())

	assert.Error(t, err)
	assert.Nil(t, report)
	assert.Nil(t, svc.LatestReport())
}

func TestRunCycle_SummarizerFailureDegradesToCache(t *testing.T) {
	now := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{repos: []domain.Repo{{RepoName: "x/a", Rank: 1, Stars: 10}}}
	summarizer := &stubSummarizer{err: errors.New("model overloaded")}

	cached := map[string]domain.RepoDetail{
		"x/a": {RepoName: "x/a", Summary: "cached summary"},
	}

	snapshots := new(MockSnapshotStore)
	snapshots.On("GetPriorSnapshot", mock.Anything, mock.Anything).Return([]domain.Repo{}, nil)
	snapshots.On("UpsertSnapshot", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	snapshots.On("GetAllDetails", mock.Anything).Return(cached, nil)
	snapshots.On("DeleteBefore", mock.Anything, mock.Anything).Return(int64(0), nil)

	status := new(MockStatusStore)
	status.On("RecordRun", mock.Anything, mock.Anything).Return(nil)

	svc := testService(fetcher, summarizer, snapshots, status)
	report, err := svc.RunCycle(context.Background(), now)

	require.NoError(t, err)
	require.Len(t, report.TopRepos, 1)
	assert.Equal(t, "cached summary", report.TopRepos[0].Summary)
	// UpsertDetails must not have been called with a failed batch.
	snapshots.AssertNotCalled(t, "UpsertDetails", mock.Anything, mock.Anything)
}

func TestRunCycle_FreshDetailsArePersisted(t *testing.T) {
	now := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{repos: []domain.Repo{{RepoName: "x/a", Rank: 1, Stars: 10}}}
	fresh := []domain.RepoDetail{{RepoName: "x/a", Summary: "fresh"}}
	summarizer := &stubSummarizer{details: fresh}

	snapshots := new(MockSnapshotStore)
	snapshots.On("GetPriorSnapshot", mock.Anything, mock.Anything).Return([]domain.Repo{}, nil)
	snapshots.On("UpsertSnapshot", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	snapshots.On("UpsertDetails", mock.Anything, fresh).Return(nil)
	snapshots.On("GetAllDetails", mock.Anything).Return(map[string]domain.RepoDetail{
		"x/a": fresh[0],
	}, nil)
	snapshots.On("DeleteBefore", mock.Anything, mock.Anything).Return(int64(0), nil)

	status := new(MockStatusStore)
	status.On("RecordRun", mock.Anything, mock.Anything).Return(nil)

	svc := testService(fetcher, summarizer, snapshots, status)
	report, err := svc.RunCycle(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, "fresh", report.TopRepos[0].Summary)
	snapshots.AssertExpectations(t)
}

func TestRunCycle_PurgeFailureDoesNotAbort(t *testing.T) {
	now := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{repos: []domain.Repo{{RepoName: "x/a", Rank: 1, Stars: 10}}}

	snapshots := new(MockSnapshotStore)
	snapshots.On("GetPriorSnapshot", mock.Anything, mock.Anything).Return([]domain.Repo{}, nil)
	snapshots.On("UpsertSnapshot", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	snapshots.On("GetAllDetails", mock.Anything).Return(map[string]domain.RepoDetail{}, nil)
	snapshots.On("DeleteBefore", mock.Anything, mock.Anything).Return(int64(0), errors.New("timeout"))

	status := new(MockStatusStore)
	status.On("RecordRun", mock.Anything, mock.Anything).Return(nil)

	svc := testService(fetcher, nil, snapshots, status)
	report, err := svc.RunCycle(context.Background(), now)

	require.NoError(t, err)
	assert.NotNil(t, report)
}

func TestReportForDate_MissingDayReturnsNil(t *testing.T) {
	snapshots := new(MockSnapshotStore)
	snapshots.On("GetSnapshot", mock.Anything, "2026-01-01").Return([]domain.Repo{}, nil)

	svc := testService(&stubFetcher{}, nil, snapshots, new(MockStatusStore))
	report, err := svc.ReportForDate(context.Background(), "2026-01-01")

	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestReportForDate_RecomputesDeltas(t *testing.T) {
	snapshots := new(MockSnapshotStore)
	snapshots.On("GetSnapshot", mock.Anything, "2026-08-30").Return([]domain.Repo{
		{RepoName: "x/a", Rank: 1, Stars: 130, StarsDelta: 30},
	}, nil)
	snapshots.On("GetPriorSnapshot", mock.Anything, "2026-08-30").Return([]domain.Repo{
		{RepoName: "x/a", Rank: 3, Stars: 100},
	}, nil)
	snapshots.On("GetAllDetails", mock.Anything).Return(map[string]domain.RepoDetail{}, nil)

	svc := testService(&stubFetcher{}, nil, snapshots, new(MockStatusStore))
	report, err := svc.ReportForDate(context.Background(), "2026-08-30")

	require.NoError(t, err)
	require.NotNil(t, report)
	require.Len(t, report.TopRepos, 1)
	assert.Equal(t, 2, report.TopRepos[0].RankDelta)
	assert.Equal(t, 0.3, report.TopRepos[0].StarsRate)
	require.Len(t, report.Surging, 1)
}

func TestRepoHistory_UsesTrailingWindow(t *testing.T) {
	since := time.Now().UTC().AddDate(0, 0, -7).Format("2006-01-02")
	points := []domain.HistoryPoint{{RepoName: "x/a", Date: since, Rank: 1, Stars: 10}}

	snapshots := new(MockSnapshotStore)
	snapshots.On("GetHistory", mock.Anything, "x/a", since).Return(points, nil)

	svc := testService(&stubFetcher{}, nil, snapshots, new(MockStatusStore))
	got, err := svc.RepoHistory(context.Background(), "x/a", 7)

	require.NoError(t, err)
	assert.Equal(t, points, got)
}
