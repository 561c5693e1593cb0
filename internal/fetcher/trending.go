// Path: internal/fetcher/trending.go
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gh-trending/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// fetchTrending scrapes the GitHub trending page. The page carries fewer
// fields than the API (no issues, topics or timestamps), so buckets that
// depend on update times come back empty in this mode.
func (f *Fetcher) fetchTrending(ctx context.Context) ([]domain.Repo, int, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	reqURL := f.cfg.TrendingURL
	if f.cfg.TrendingLanguage != "" {
		reqURL += "/" + f.cfg.TrendingLanguage
	}
	if f.cfg.TrendingSince != "" {
		reqURL += "?since=" + f.cfg.TrendingSince
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "gh-trending/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse trending page: %w", err)
	}

	var repos []domain.Repo
	skipped := 0
	doc.Find("article.Box-row").Each(func(_ int, row *goquery.Selection) {
		repo, ok := parseTrendingRow(row, len(repos)+1)
		if !ok {
			skipped++
			f.log.Warnw("skipping malformed trending row")
			return
		}
		repos = append(repos, repo)
	})

	return repos, skipped, nil
}

// parseTrendingRow extracts one repository from a trending page article.
func parseTrendingRow(row *goquery.Selection, rank int) (domain.Repo, bool) {
	href, ok := row.Find("h2 a").Attr("href")
	if !ok {
		return domain.Repo{}, false
	}
	repoName := strings.Trim(href, "/")
	parts := strings.SplitN(repoName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return domain.Repo{}, false
	}

	stars := parseCount(row.Find(`a[href$="/stargazers"]`).First().Text())
	forks := parseCount(row.Find(`a[href$="/forks"]`).First().Text())

	return domain.Repo{
		Rank:        rank,
		RepoName:    repoName,
		Owner:       parts[0],
		Stars:       stars,
		Forks:       forks,
		Language:    strings.TrimSpace(row.Find(`span[itemprop="programmingLanguage"]`).Text()),
		URL:         "https://github.com/" + repoName,
		Description: strings.TrimSpace(row.Find("p").First().Text()),
		Topics:      domain.StringList{},
	}, true
}

// parseCount converts counts like "1,234" into an integer.
func parseCount(text string) int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return n
}
