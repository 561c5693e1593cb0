// Path: internal/fetcher/fetcher.go
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"gh-trending/internal/config"
	"gh-trending/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// searchResponse mirrors the GitHub search API envelope.
type searchResponse struct {
	TotalCount        int        `json:"total_count"`
	IncompleteResults bool       `json:"incomplete_results"`
	Items             []repoItem `json:"items"`
}

// repoItem is a single repository as returned by the GitHub API.
type repoItem struct {
	FullName string `json:"full_name"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	OpenIssues  int       `json:"open_issues_count"`
	Language    string    `json:"language"`
	HTMLURL     string    `json:"html_url"`
	Description string    `json:"description"`
	Topics      []string  `json:"topics"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Fetcher is a client for the GitHub API that produces the day's ranked
// repository list.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     config.FetcherConfig
	log     *zap.SugaredLogger
}

// NewFetcher creates and configures a new Fetcher.
func NewFetcher(cfg config.FetcherConfig, log *zap.SugaredLogger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(
			rate.Limit(cfg.RequestsPerSecond),
			cfg.BurstLimit,
		),
		cfg: cfg,
		log: log,
	}
}

// Fetch retrieves the ranked repository list for the configured mode.
// It returns the accepted records in rank order plus the number of upstream
// items that were skipped as malformed. Ranks are assigned in acceptance
// order, so upstream ties break by arrival.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.Repo, int, error) {
	if f.cfg.Mode == "trending" {
		return f.fetchTrending(ctx)
	}
	return f.fetchTopic(ctx)
}

// fetchTopic pages through the search API for the configured topic.
func (f *Fetcher) fetchTopic(ctx context.Context) ([]domain.Repo, int, error) {
	limit := f.cfg.PerPage * f.cfg.MaxPages
	repos := make([]domain.Repo, 0, f.cfg.PerPage)
	skipped := 0

	for page := 1; page <= f.cfg.MaxPages && len(repos) < limit; page++ {
		result, err := f.fetchPage(ctx, page)
		if err != nil {
			return nil, skipped, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
		if len(result.Items) == 0 {
			break
		}

		for _, item := range result.Items {
			repo, ok := parseRepoItem(item, len(repos)+1)
			if !ok {
				skipped++
				f.log.Warnw("skipping malformed repository record", "page", page)
				continue
			}
			repos = append(repos, repo)
			if len(repos) >= limit {
				break
			}
		}

		f.log.Debugw("fetched search page", "page", page, "items", len(result.Items), "total", len(repos))

		// A short page means the result set is exhausted.
		if len(result.Items) < f.cfg.PerPage {
			break
		}
	}

	return repos, skipped, nil
}

// fetchPage performs a single search API request, respecting the rate limit.
func (f *Fetcher) fetchPage(ctx context.Context, page int) (*searchResponse, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("q", "topic:"+f.cfg.Topic)
	query.Set("sort", f.cfg.Sort)
	query.Set("order", "desc")
	query.Set("per_page", fmt.Sprintf("%d", f.cfg.PerPage))
	query.Set("page", fmt.Sprintf("%d", page))
	reqURL := f.cfg.APIBase + "/search/repositories?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "gh-trending/1.0")
	if f.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.cfg.Token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json response: %w", err)
	}
	return &result, nil
}

// parseRepoItem converts an API item into a domain record. Items without a
// full name cannot be keyed and are rejected.
func parseRepoItem(item repoItem, rank int) (domain.Repo, bool) {
	if item.FullName == "" {
		return domain.Repo{}, false
	}
	return domain.Repo{
		Rank:        rank,
		RepoName:    item.FullName,
		Owner:       item.Owner.Login,
		Stars:       item.Stars,
		Forks:       item.Forks,
		Issues:      item.OpenIssues,
		Language:    item.Language,
		URL:         item.HTMLURL,
		Description: item.Description,
		Topics:      domain.StringList(item.Topics).OrEmpty(),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}, true
}
