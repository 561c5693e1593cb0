// Path: internal/fetcher/readme.go
package fetcher

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"gh-trending/internal/domain"
)

// readmeExcerptLimit caps how much README text is handed to the summarizer.
const readmeExcerptLimit = 3000

// readmeResponse mirrors the GitHub contents API for README files.
type readmeResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// FetchReadme retrieves and decodes a repository's README, truncated to an
// excerpt suitable for summarization. A missing README returns an empty
// string, not an error.
func (f *Fetcher) FetchReadme(ctx context.Context, repoName string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	reqURL := f.cfg.APIBase + "/repos/" + repoName + "/readme"
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "gh-trending/1.0")
	if f.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.cfg.Token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var readme readmeResponse
	if err := json.Unmarshal(body, &readme); err != nil {
		return "", fmt.Errorf("failed to unmarshal readme response: %w", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(readme.Content)
	if err != nil {
		// Some responses use base64 with embedded newlines.
		decoded, err = base64.StdEncoding.DecodeString(stripNewlines(readme.Content))
		if err != nil {
			return "", fmt.Errorf("failed to decode readme content: %w", err)
		}
	}

	text := string(decoded)
	if len(text) > readmeExcerptLimit {
		text = text[:readmeExcerptLimit]
	}
	return text, nil
}

// Readmes fetches README excerpts for the first limit repositories, keyed by
// repository name. Failures are logged and skipped; a partial map is fine
// since summaries are best-effort enrichment.
func (f *Fetcher) Readmes(ctx context.Context, repos []domain.Repo, limit int) map[string]string {
	if len(repos) > limit {
		repos = repos[:limit]
	}
	readmes := make(map[string]string, len(repos))
	for _, repo := range repos {
		text, err := f.FetchReadme(ctx, repo.RepoName)
		if err != nil {
			f.log.Warnw("failed to fetch readme", "repo", repo.RepoName, "error", err)
			continue
		}
		if text != "" {
			readmes[repo.RepoName] = text
		}
	}
	return readmes
}

func stripNewlines(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' && s[i] != '\r' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
