// Path: internal/trends/delta.go
package trends

import (
	"math"

	"gh-trending/internal/domain"
)

// ComputeDeltas annotates today's records with their day-over-day movement
// against yesterday's snapshot. It only annotates: no record is added or
// removed, and input order is preserved.
//
// Sign convention: RankDelta = yesterday.Rank - today.Rank, so a positive
// value means the repository moved up the board. StarsRate is the relative
// growth against yesterday's stars, rounded to 4 decimal places.
//
// A repository absent from yesterday's map gets zero deltas across the
// board. A first appearance is not an infinite riser.
func ComputeDeltas(today []domain.Repo, yesterday map[string]domain.Repo) []domain.Repo {
	for i := range today {
		prev, ok := yesterday[today[i].RepoName]
		if !ok {
			today[i].RankDelta = 0
			today[i].StarsDelta = 0
			today[i].StarsRate = 0
			continue
		}

		today[i].RankDelta = prev.Rank - today[i].Rank
		delta := today[i].Stars - prev.Stars
		today[i].StarsDelta = delta
		if prev.Stars > 0 {
			today[i].StarsRate = math.Round(float64(delta)/float64(prev.Stars)*10000) / 10000
		} else {
			today[i].StarsRate = 0
		}
	}
	return today
}

// ByName builds a repo-name lookup for a day's snapshot. An empty or nil
// snapshot yields an empty map, which ComputeDeltas treats as "no history".
func ByName(repos []domain.Repo) map[string]domain.Repo {
	m := make(map[string]domain.Repo, len(repos))
	for _, r := range repos {
		m[r.RepoName] = r
	}
	return m
}
