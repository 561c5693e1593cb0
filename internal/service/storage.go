// Path: internal/service/storage.go
package service

import (
	"context"

	"gh-trending/internal/domain"
)

// SnapshotStore defines the persistence interface the trend engine runs on.
type SnapshotStore interface {
	// UpsertSnapshot atomically replaces the daily rows and history points
	// for a date. Re-ingesting the same day replaces, never duplicates.
	UpsertSnapshot(ctx context.Context, date string, repos []domain.Repo) error

	// GetSnapshot returns one day's records ordered by rank ascending;
	// empty when no data exists for that date.
	GetSnapshot(ctx context.Context, date string) ([]domain.Repo, error)

	// GetPriorSnapshot returns the snapshot exactly one calendar day
	// before date. Empty when that day was skipped.
	GetPriorSnapshot(ctx context.Context, date string) ([]domain.Repo, error)

	// UpsertDetails replaces detail documents by repository name.
	UpsertDetails(ctx context.Context, details []domain.RepoDetail) error

	// GetAllDetails returns the full detail cache keyed by repository name.
	GetAllDetails(ctx context.Context) (map[string]domain.RepoDetail, error)

	// GetHistory returns one repository's history points since a date,
	// ascending by date.
	GetHistory(ctx context.Context, repoName, since string) ([]domain.HistoryPoint, error)

	// DeleteBefore removes snapshot and history rows dated before the
	// cutoff, returning the number of rows removed. Details are untouched.
	DeleteBefore(ctx context.Context, cutoff string) (int64, error)

	// AvailableDates lists the stored snapshot dates, newest first.
	AvailableDates(ctx context.Context, limit int) ([]string, error)
}

// StatusStore persists the outcome of the most recent cycle.
type StatusStore interface {
	LastRun(ctx context.Context) (*domain.RunRecord, error)
	RecordRun(ctx context.Context, rec domain.RunRecord) error
}

// RepoFetcher supplies the day's ranked repository list and README excerpts.
type RepoFetcher interface {
	Fetch(ctx context.Context) ([]domain.Repo, int, error)
	Readmes(ctx context.Context, repos []domain.Repo, limit int) map[string]string
}

// DetailSummarizer produces detail annotations for repositories.
type DetailSummarizer interface {
	Summarize(ctx context.Context, repos []domain.Repo, readmes map[string]string) ([]domain.RepoDetail, error)
}

// SiteWriter publishes a rendered report to the static site.
type SiteWriter interface {
	Generate(report *domain.TrendReport, dates []string) error
}
