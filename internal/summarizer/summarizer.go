// Path: internal/summarizer/summarizer.go
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gh-trending/internal/config"
	"gh-trending/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const anthropicVersion = "2023-06-01"

// messagesRequest is the payload for an Anthropic-compatible messages API.
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse holds the parts of the API response we consume.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// detailPayload is the JSON object the model is asked to produce.
type detailPayload struct {
	Summary       string   `json:"summary"`
	Description   string   `json:"description"`
	UseCase       string   `json:"use_case"`
	Solves        []string `json:"solves"`
	Category      string   `json:"category"`
	CategoryLabel string   `json:"category_label"`
	Topics        []string `json:"topics"`
}

// Summarizer is a client for an Anthropic-compatible messages API that turns
// repository metadata into detail annotations.
type Summarizer struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     config.SummarizerConfig
	log     *zap.SugaredLogger
}

// NewSummarizer creates and configures a new Summarizer.
func NewSummarizer(cfg config.SummarizerConfig, log *zap.SugaredLogger) *Summarizer {
	return &Summarizer{
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		limiter: rate.NewLimiter(
			rate.Limit(cfg.RequestsPerSecond),
			cfg.BurstLimit,
		),
		cfg: cfg,
		log: log,
	}
}

// Summarize produces detail annotations for the given repositories.
// Individual failures are logged and skipped so one bad response never
// discards the rest of the batch.
func (s *Summarizer) Summarize(ctx context.Context, repos []domain.Repo, readmes map[string]string) ([]domain.RepoDetail, error) {
	if len(repos) > s.cfg.TopNDetails {
		repos = repos[:s.cfg.TopNDetails]
	}

	details := make([]domain.RepoDetail, 0, len(repos))
	for _, repo := range repos {
		detail, err := s.summarizeOne(ctx, repo, readmes[repo.RepoName])
		if err != nil {
			if ctx.Err() != nil {
				return details, ctx.Err()
			}
			s.log.Warnw("failed to summarize repository", "repo", repo.RepoName, "error", err)
			continue
		}
		details = append(details, *detail)
	}
	return details, nil
}

func (s *Summarizer) summarizeOne(ctx context.Context, repo domain.Repo, readme string) (*domain.RepoDetail, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload := messagesRequest{
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
		Messages: []message{
			{Role: "user", Content: buildPrompt(repo, readme)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.APIBase+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var msg messagesResponse
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(msg.Content) == 0 {
		return nil, fmt.Errorf("empty response content")
	}

	var parsed detailPayload
	if err := json.Unmarshal([]byte(extractJSON(msg.Content[0].Text)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}

	return &domain.RepoDetail{
		RepoName:      repo.RepoName,
		Summary:       parsed.Summary,
		Description:   parsed.Description,
		UseCase:       parsed.UseCase,
		Solves:        domain.StringList(parsed.Solves).OrEmpty(),
		Category:      parsed.Category,
		CategoryLabel: parsed.CategoryLabel,
		Topics:        domain.StringList(parsed.Topics).OrEmpty(),
		Language:      repo.Language,
		ReadmeSummary: readme,
		Owner:         repo.Owner,
		URL:           repo.URL,
	}, nil
}

// buildPrompt assembles the instruction for a single repository.
func buildPrompt(repo domain.Repo, readme string) string {
	var b strings.Builder
	b.WriteString("Analyze this GitHub repository and respond with a single JSON object ")
	b.WriteString(`with keys "summary" (one sentence), "description" (2-3 sentences), `)
	b.WriteString(`"use_case", "solves" (array of strings), "category" `)
	b.WriteString(`(one of: plugin, tool, template, docs, demo, integration, library, app, other), `)
	b.WriteString(`"category_label" (human-readable category name) and "topics" (array of strings). `)
	b.WriteString("Respond with JSON only.\n\n")
	fmt.Fprintf(&b, "Repository: %s\n", repo.RepoName)
	fmt.Fprintf(&b, "Language: %s\n", repo.Language)
	fmt.Fprintf(&b, "Stars: %d\n", repo.Stars)
	fmt.Fprintf(&b, "Description: %s\n", repo.Description)
	if len(repo.Topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(repo.Topics, ", "))
	}
	if readme != "" {
		fmt.Fprintf(&b, "\nREADME excerpt:\n%s\n", readme)
	}
	return b.String()
}

// extractJSON strips markdown code fences the model sometimes wraps around
// its output.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}
