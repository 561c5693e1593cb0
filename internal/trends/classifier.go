// Path: internal/trends/classifier.go
package trends

import (
	"sort"

	"gh-trending/internal/config"
	"gh-trending/internal/domain"
)

// BuildReport derives the trend buckets for one day from the delta-annotated
// snapshot, yesterday's snapshot and the detail cache. It is stateless: the
// same inputs always produce the same report.
func BuildReport(
	date string,
	today []domain.Repo,
	yesterday map[string]domain.Repo,
	details map[string]domain.RepoDetail,
	cfg config.TrendsConfig,
) *domain.TrendReport {
	return &domain.TrendReport{
		Date:       date,
		TopRepos:   topRepos(today, details, cfg.TopN),
		Rising:     topMovers(today, details, true, cfg.MoversLimit),
		Falling:    topMovers(today, details, false, cfg.MoversLimit),
		NewEntries: newEntries(today, yesterday, details),
		Dropped:    droppedEntries(today, yesterday, details),
		Surging:    surging(today, details, cfg.SurgeThreshold, cfg.SurgeFloor),
		Active:     activeRepos(today, details, cfg.ActiveLimit),
	}
}

// topRepos takes the first n records by rank and merges the full detail
// annotation. Missing details default to empty fields, never absent keys.
func topRepos(today []domain.Repo, details map[string]domain.RepoDetail, n int) []domain.ReportEntry {
	if len(today) > n {
		today = today[:n]
	}
	entries := make([]domain.ReportEntry, 0, len(today))
	for _, repo := range today {
		entry := domain.ReportEntry{Repo: repo, Solves: domain.StringList{}}
		if d, ok := details[repo.RepoName]; ok {
			entry.Summary = d.Summary
			entry.CategoryLabel = d.CategoryLabel
			entry.Description = d.Description
			entry.UseCase = d.UseCase
			entry.Solves = d.Solves.OrEmpty()
			entry.Category = d.Category
		}
		entries = append(entries, entry)
	}
	return entries
}

// topMovers returns the repositories with the largest star growth (rising)
// or decline (falling). The sort is stable, so ties keep today's rank order.
func topMovers(today []domain.Repo, details map[string]domain.RepoDetail, rising bool, limit int) []domain.ReportEntry {
	var movers []domain.Repo
	for _, repo := range today {
		if rising && repo.StarsDelta > 0 {
			movers = append(movers, repo)
		} else if !rising && repo.StarsDelta < 0 {
			movers = append(movers, repo)
		}
	}

	sort.SliceStable(movers, func(i, j int) bool {
		if rising {
			return movers[i].StarsDelta > movers[j].StarsDelta
		}
		return movers[i].StarsDelta < movers[j].StarsDelta
	})

	if len(movers) > limit {
		movers = movers[:limit]
	}
	return shortEntries(movers, details)
}

// newEntries returns the repositories on today's board that were absent
// yesterday, in today's rank order.
func newEntries(today []domain.Repo, yesterday map[string]domain.Repo, details map[string]domain.RepoDetail) []domain.ReportEntry {
	var fresh []domain.Repo
	for _, repo := range today {
		if _, ok := yesterday[repo.RepoName]; !ok {
			fresh = append(fresh, repo)
		}
	}
	return shortEntries(fresh, details)
}

// droppedEntries returns the repositories that were on yesterday's board but
// are absent today, ordered by yesterday's rank. Each carries yesterday's
// rank and stars since no today-record exists to merge.
func droppedEntries(today []domain.Repo, yesterday map[string]domain.Repo, details map[string]domain.RepoDetail) []domain.DroppedEntry {
	todayNames := make(map[string]struct{}, len(today))
	for _, repo := range today {
		todayNames[repo.RepoName] = struct{}{}
	}

	var dropped []domain.DroppedEntry
	for name, prev := range yesterday {
		if _, ok := todayNames[name]; ok {
			continue
		}
		entry := domain.DroppedEntry{
			RepoName: name,
			Rank:     prev.Rank,
			Stars:    prev.Stars,
			URL:      prev.URL,
		}
		if d, ok := details[name]; ok {
			entry.Summary = d.Summary
			entry.CategoryLabel = d.CategoryLabel
		}
		dropped = append(dropped, entry)
	}

	// Map iteration order is random; yesterday's rank keeps this stable.
	sort.Slice(dropped, func(i, j int) bool { return dropped[i].Rank < dropped[j].Rank })
	return dropped
}

// surging returns repositories whose growth rate meets the threshold or
// whose absolute star growth meets the floor. Both bounds are inclusive, and
// either condition alone qualifies: the rate catches small-base spikes, the
// floor catches large-base ones.
func surging(today []domain.Repo, details map[string]domain.RepoDetail, threshold float64, floor int) []domain.ReportEntry {
	var hot []domain.Repo
	for _, repo := range today {
		if repo.StarsRate >= threshold || repo.StarsDelta >= floor {
			hot = append(hot, repo)
		}
	}
	return shortEntries(hot, details)
}

// activeRepos returns the most recently updated repositories, newest first.
// Records without an update timestamp are skipped.
func activeRepos(today []domain.Repo, details map[string]domain.RepoDetail, limit int) []domain.ReportEntry {
	var active []domain.Repo
	for _, repo := range today {
		if !repo.UpdatedAt.IsZero() {
			active = append(active, repo)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].UpdatedAt.After(active[j].UpdatedAt)
	})
	if len(active) > limit {
		active = active[:limit]
	}
	return shortEntries(active, details)
}

// shortEntries merges only the short detail fields (summary and category
// label) to keep non-top bucket payloads bounded.
func shortEntries(repos []domain.Repo, details map[string]domain.RepoDetail) []domain.ReportEntry {
	entries := make([]domain.ReportEntry, 0, len(repos))
	for _, repo := range repos {
		entry := domain.ReportEntry{Repo: repo}
		if d, ok := details[repo.RepoName]; ok {
			entry.Summary = d.Summary
			entry.CategoryLabel = d.CategoryLabel
		}
		entries = append(entries, entry)
	}
	return entries
}
