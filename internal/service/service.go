// Path: internal/service/service.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gh-trending/internal/config"
	"gh-trending/internal/domain"
	"gh-trending/internal/events"
	"gh-trending/internal/trends"

	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"

	// Event topics
	EventReportReady = "report:ready"
)

// Service is the central orchestrator of the daemon's logic. It runs the
// daily cycle: fetch the board, enrich it, diff it against yesterday,
// persist the snapshot, derive the trend report, publish it and purge
// expired history.
type Service struct {
	watcherCfg config.WatcherConfig
	trendsCfg  config.TrendsConfig
	topDetails int

	fetcher    RepoFetcher
	summarizer DetailSummarizer
	snapshots  SnapshotStore
	status     StatusStore
	site       SiteWriter
	broker     *events.Broker
	log        *zap.SugaredLogger

	mu         sync.RWMutex
	lastReport *domain.TrendReport

	stopChan chan struct{} // Used for graceful shutdown
}

// NewService creates a new core application service. summarizer and site may
// be nil when those collaborators are not configured.
func NewService(
	watcherCfg config.WatcherConfig,
	trendsCfg config.TrendsConfig,
	topDetails int,
	fetcher RepoFetcher,
	summarizer DetailSummarizer,
	snapshots SnapshotStore,
	status StatusStore,
	site SiteWriter,
	broker *events.Broker,
	log *zap.SugaredLogger,
) *Service {
	return &Service{
		watcherCfg: watcherCfg,
		trendsCfg:  trendsCfg,
		topDetails: topDetails,
		fetcher:    fetcher,
		summarizer: summarizer,
		snapshots:  snapshots,
		status:     status,
		site:       site,
		broker:     broker,
		log:        log,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the periodic cycle loop. It runs one cycle immediately, then
// one per configured interval, and blocks until stopped or cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.log.Infow("service starting", "interval_hours", s.watcherCfg.IntervalHours)

	if _, err := s.RunCycle(ctx, time.Now()); err != nil {
		s.log.Errorw("cycle failed", "error", err)
	}

	ticker := time.NewTicker(time.Duration(s.watcherCfg.IntervalHours) * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunCycle(ctx, time.Now()); err != nil {
				s.log.Errorw("cycle failed", "error", err)
			}
		case <-s.stopChan:
			s.log.Info("cycle loop stopped")
			return nil
		case <-ctx.Done():
			s.log.Info("cycle loop context cancelled")
			return ctx.Err()
		}
	}
}

// Stop gracefully shuts down the cycle loop.
func (s *Service) Stop() {
	s.log.Info("service stopping")
	close(s.stopChan)
}

// RunCycle executes one full batch for the given time's calendar day (UTC).
// Storage failures abort the cycle so a partial day is never reported as
// complete; re-running the same day is safe because every write is an
// idempotent upsert.
func (s *Service) RunCycle(ctx context.Context, now time.Time) (*domain.TrendReport, error) {
	date := now.UTC().Format(dateLayout)
	s.log.Infow("cycle starting", "date", date)

	// 1. Today's ranked board.
	repos, skipped, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repositories: %w", err)
	}
	if skipped > 0 {
		s.log.Warnw("skipped malformed records", "count", skipped)
	}
	if len(repos) == 0 {
		return nil, fmt.Errorf("fetch returned no repositories for %s", date)
	}
	s.log.Infow("fetched repositories", "count", len(repos))

	// 2. Best-effort enrichment. A summarizer failure degrades to the
	// cached details; it never aborts the cycle.
	var fresh []domain.RepoDetail
	if s.summarizer != nil {
		readmes := s.fetcher.Readmes(ctx, repos, s.topDetails)
		fresh, err = s.summarizer.Summarize(ctx, repos, readmes)
		if err != nil {
			s.log.Warnw("summarization failed, using cached details", "error", err)
			fresh = nil
		}
	}

	// 3. Diff against exactly one calendar day back. An empty prior day is
	// "no history", not an error.
	prior, err := s.snapshots.GetPriorSnapshot(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load prior snapshot: %w", err)
	}
	yesterday := trends.ByName(prior)
	repos = trends.ComputeDeltas(repos, yesterday)

	// 4. Persist the annotated day before classifying, so tomorrow's diff
	// sees a complete day or none at all.
	if err := s.snapshots.UpsertSnapshot(ctx, date, repos); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}
	if len(fresh) > 0 {
		if err := s.snapshots.UpsertDetails(ctx, fresh); err != nil {
			return nil, fmt.Errorf("failed to store details: %w", err)
		}
	}

	details, err := s.snapshots.GetAllDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load details: %w", err)
	}

	// 5. Derive the report.
	report := trends.BuildReport(date, repos, yesterday, details, s.trendsCfg)

	// 6. Retention runs last so an earlier crash never costs history that
	// tomorrow's diff still needs.
	purged, err := s.snapshots.DeleteBefore(ctx, trends.Cutoff(now, s.trendsCfg.RetentionDays))
	if err != nil {
		s.log.Errorw("retention purge failed", "error", err)
	} else if purged > 0 {
		s.log.Infow("purged expired rows", "count", purged)
	}

	if err := s.status.RecordRun(ctx, domain.RunRecord{
		Date:        date,
		RepoCount:   len(repos),
		Skipped:     skipped,
		PurgedRows:  purged,
		CompletedAt: time.Now().UTC(),
	}); err != nil {
		s.log.Warnw("failed to record run status", "error", err)
	}

	s.setLastReport(report)
	s.broker.Publish(EventReportReady, report)
	s.publishSite(ctx, report)

	s.log.Infow("cycle finished", "date", date,
		"repos", len(repos), "new", len(report.NewEntries),
		"dropped", len(report.Dropped), "surging", len(report.Surging))
	return report, nil
}

// publishSite regenerates the static site. Failures are logged only: the
// report itself is already derived and durable.
func (s *Service) publishSite(ctx context.Context, report *domain.TrendReport) {
	if s.site == nil {
		return
	}
	dates, err := s.snapshots.AvailableDates(ctx, 30)
	if err != nil {
		s.log.Errorw("failed to list available dates", "error", err)
		return
	}
	if err := s.site.Generate(report, dates); err != nil {
		s.log.Errorw("failed to generate static site", "error", err)
	}
}

func (s *Service) setLastReport(report *domain.TrendReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastReport = report
}

// LatestReport returns the report from the most recent successful cycle, or
// nil if none has completed since startup.
func (s *Service) LatestReport() *domain.TrendReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport
}

// ReportForDate recomputes the trend report for a stored day. Returns nil
// when no snapshot exists for that date.
func (s *Service) ReportForDate(ctx context.Context, date string) (*domain.TrendReport, error) {
	today, err := s.snapshots.GetSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(today) == 0 {
		return nil, nil
	}

	prior, err := s.snapshots.GetPriorSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}
	yesterday := trends.ByName(prior)

	// Stored rows keep stars_delta but not the recomputable annotations;
	// rebuilding them from the prior day restores the full view.
	today = trends.ComputeDeltas(today, yesterday)

	details, err := s.snapshots.GetAllDetails(ctx)
	if err != nil {
		return nil, err
	}
	return trends.BuildReport(date, today, yesterday, details, s.trendsCfg), nil
}

// RepoHistory returns one repository's trailing history points.
func (s *Service) RepoHistory(ctx context.Context, repoName string, days int) ([]domain.HistoryPoint, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(dateLayout)
	return s.snapshots.GetHistory(ctx, repoName, since)
}
