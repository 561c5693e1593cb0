// Path: internal/report/webgen.go
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"gh-trending/internal/config"
	"gh-trending/internal/domain"

	"go.uber.org/zap"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} - {{.Report.Date}}</title>
<style>
body{font-family:-apple-system,"Segoe UI",Helvetica,Arial,sans-serif;background:#0d1117;color:#c9d1d9;margin:0;padding:24px;}
.wrap{max-width:860px;margin:0 auto;}
a{color:#58a6ff;text-decoration:none;}
h1{color:#58a6ff;}
h2{border-bottom:1px solid #30363d;padding-bottom:4px;}
table{width:100%;border-collapse:collapse;}
td{padding:8px 4px;border-bottom:1px solid #30363d;}
.muted{color:#8b949e;font-size:13px;}
.up{color:#238636;}
.down{color:#f85149;}
nav a{margin-right:12px;}
</style>
</head>
<body>
<div class="wrap">
<h1>{{.Title}}</h1>
<p class="muted">{{.Report.Date}}</p>
{{if .Dates}}
<nav>
{{range .Dates}}<a href="reports/{{.}}.html">{{.}}</a>{{end}}
</nav>
{{end}}

<h2>Top {{len .Report.TopRepos}}</h2>
<table>
{{range .Report.TopRepos}}
<tr>
<td class="muted">#{{.Rank}}</td>
<td><a href="{{.URL}}">{{.RepoName}}</a>
{{if .Summary}}<br><span class="muted">{{.Summary}}</span>{{end}}
{{if .CategoryLabel}}<br><span class="muted">{{.CategoryLabel}}</span>{{end}}</td>
<td style="text-align:right;">&#9733; {{formatNumber .Stars}}
{{if .StarsDelta}}<br><span class="{{if gt .StarsDelta 0}}up{{else}}down{{end}}">{{formatDelta .StarsDelta}}</span>{{end}}</td>
</tr>
{{end}}
</table>

{{if .Report.Rising}}<h2 class="up">Rising</h2><ul>
{{range .Report.Rising}}<li><a href="{{.URL}}">{{.RepoName}}</a> {{formatDelta .StarsDelta}} stars{{if .Summary}} <span class="muted">{{.Summary}}</span>{{end}}</li>{{end}}
</ul>{{end}}

{{if .Report.Falling}}<h2 class="down">Falling</h2><ul>
{{range .Report.Falling}}<li><a href="{{.URL}}">{{.RepoName}}</a> {{formatDelta .StarsDelta}} stars</li>{{end}}
</ul>{{end}}

{{if .Report.Surging}}<h2>Surging</h2><ul>
{{range .Report.Surging}}<li><a href="{{.URL}}">{{.RepoName}}</a> {{formatDelta .StarsDelta}} stars{{if .Summary}} <span class="muted">{{.Summary}}</span>{{end}}</li>{{end}}
</ul>{{end}}

{{if .Report.NewEntries}}<h2>New on the board</h2><ul>
{{range .Report.NewEntries}}<li>#{{.Rank}} <a href="{{.URL}}">{{.RepoName}}</a> &#9733; {{formatNumber .Stars}}</li>{{end}}
</ul>{{end}}

{{if .Report.Dropped}}<h2>Dropped off</h2><ul>
{{range .Report.Dropped}}<li><a href="{{.URL}}">{{.RepoName}}</a> (was #{{.Rank}}, &#9733; {{formatNumber .Stars}})</li>{{end}}
</ul>{{end}}

{{if .Report.Active}}<h2>Recently active</h2><ul>
{{range .Report.Active}}<li><a href="{{.URL}}">{{.RepoName}}</a>{{if .Summary}} <span class="muted">{{.Summary}}</span>{{end}}</li>{{end}}
</ul>{{end}}

</div>
</body>
</html>`

var pageTpl = template.Must(template.New("page").Funcs(templateFuncs()).Parse(pageTemplate))

// SiteGenerator writes the static report pages published alongside the
// daemon (e.g. via GitHub Pages).
type SiteGenerator struct {
	outputDir string
	title     string
	log       *zap.SugaredLogger
}

// NewSiteGenerator creates a static site writer. Returns nil when no output
// directory is configured.
func NewSiteGenerator(cfg config.ReportConfig, log *zap.SugaredLogger) *SiteGenerator {
	if cfg.OutputDir == "" {
		return nil
	}
	return &SiteGenerator{outputDir: cfg.OutputDir, title: cfg.SiteTitle, log: log}
}

// Generate writes the dated report page and refreshes index.html with the
// latest report plus the archive navigation.
func (g *SiteGenerator) Generate(report *domain.TrendReport, dates []string) error {
	reportsDir := filepath.Join(g.outputDir, "reports")
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	page, err := g.renderPage(report, nil)
	if err != nil {
		return err
	}
	datedPath := filepath.Join(reportsDir, report.Date+".html")
	if err := os.WriteFile(datedPath, page, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", datedPath, err)
	}

	index, err := g.renderPage(report, dates)
	if err != nil {
		return err
	}
	indexPath := filepath.Join(g.outputDir, "index.html")
	if err := os.WriteFile(indexPath, index, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", indexPath, err)
	}

	g.log.Infow("static site updated", "dir", g.outputDir, "date", report.Date)
	return nil
}

func (g *SiteGenerator) renderPage(report *domain.TrendReport, dates []string) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTpl.Execute(&buf, struct {
		Title  string
		Report *domain.TrendReport
		Dates  []string
	}{Title: g.title, Report: report, Dates: dates})
	if err != nil {
		return nil, fmt.Errorf("failed to render report page: %w", err)
	}
	return buf.Bytes(), nil
}
