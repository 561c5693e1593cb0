// Path: internal/report/email_test.go
package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gh-trending/internal/domain"
)

func sampleReport() *domain.TrendReport {
	return &domain.TrendReport{
		Date: "2026-08-30",
		TopRepos: []domain.ReportEntry{
			{
				Repo:    domain.Repo{RepoName: "x/alpha", Rank: 1, Stars: 12345, StarsDelta: 150, URL: "https://github.com/x/alpha"},
				Summary: "An agent toolkit",
			},
			{
				Repo: domain.Repo{RepoName: "y/beta", Rank: 2, Stars: 900, StarsDelta: -5, URL: "https://github.com/y/beta"},
			},
		},
		Rising: []domain.ReportEntry{
			{Repo: domain.Repo{RepoName: "x/alpha", StarsDelta: 150, URL: "https://github.com/x/alpha"}, Summary: "An agent toolkit"},
		},
		Surging: []domain.ReportEntry{
			{Repo: domain.Repo{RepoName: "x/alpha", StarsDelta: 150, StarsRate: 0.42, URL: "https://github.com/x/alpha"}},
		},
		NewEntries: []domain.ReportEntry{
			{Repo: domain.Repo{RepoName: "z/gamma", Rank: 7, Stars: 300, URL: "https://github.com/z/gamma"}},
		},
		Dropped: []domain.DroppedEntry{
			{RepoName: "w/delta", Rank: 19, Stars: 210, URL: "https://github.com/w/delta"},
		},
	}
}

func TestRenderEmail(t *testing.T) {
	html, err := RenderEmail(sampleReport(), "GitHub Topics Trending")

	require.NoError(t, err)
	assert.Contains(t, html, "GitHub Topics Trending")
	assert.Contains(t, html, "2026-08-30")
	assert.Contains(t, html, "x/alpha")
	assert.Contains(t, html, "An agent toolkit")
	assert.Contains(t, html, "12.3K")
	assert.Contains(t, html, "+150")
	assert.Contains(t, html, "z/gamma")
	assert.Contains(t, html, "w/delta")
	assert.Contains(t, html, "42.0%")
}

func TestRenderEmail_EmptyBucketsOmitSections(t *testing.T) {
	report := &domain.TrendReport{Date: "2026-08-30"}

	html, err := RenderEmail(report, "t")

	require.NoError(t, err)
	assert.NotContains(t, html, "Rising")
	assert.NotContains(t, html, "Dropped off")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1.0K", formatNumber(1000))
	assert.Equal(t, "12.3K", formatNumber(12345))
	assert.Equal(t, "2.5M", formatNumber(2500000))
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "+5", formatDelta(5))
	assert.Equal(t, "-3", formatDelta(-3))
	assert.Equal(t, "0", formatDelta(0))
}
