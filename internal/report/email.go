// Path: internal/report/email.go
package report

import (
	"bytes"
	"fmt"
	"html/template"

	"gh-trending/internal/domain"
)

// funcMap holds the formatting helpers shared by the email and site
// templates.
var funcMap = template.FuncMap{
	"formatNumber": formatNumber,
	"formatDelta":  formatDelta,
}

// formatNumber renders counts the way GitHub does: 1.2K, 3.4M.
func formatNumber(n int) string {
	switch {
	case n >= 1000000:
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	case n >= 1000:
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// formatDelta renders a signed change with an explicit plus sign.
func formatDelta(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

const emailTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family:-apple-system,Segoe UI,Helvetica,Arial,sans-serif;background:#0d1117;color:#c9d1d9;margin:0;padding:24px;">
<div style="max-width:680px;margin:0 auto;">
<h1 style="color:#58a6ff;">{{.Title}}</h1>
<p style="color:#8b949e;">Daily trend report for {{.Report.Date}}</p>

<h2 style="color:#58a6ff;border-bottom:1px solid #30363d;padding-bottom:4px;">Top {{len .Report.TopRepos}}</h2>
<table style="width:100%;border-collapse:collapse;">
{{range .Report.TopRepos}}
<tr style="border-bottom:1px solid #30363d;">
<td style="padding:8px 4px;color:#8b949e;">#{{.Rank}}</td>
<td style="padding:8px 4px;"><a href="{{.URL}}" style="color:#58a6ff;text-decoration:none;">{{.RepoName}}</a>
{{if .Summary}}<br><span style="color:#8b949e;font-size:13px;">{{.Summary}}</span>{{end}}</td>
<td style="padding:8px 4px;text-align:right;">&#9733; {{formatNumber .Stars}}
{{if .StarsDelta}}<br><span style="color:{{if gt .StarsDelta 0}}#238636{{else}}#f85149{{end}};font-size:13px;">{{formatDelta .StarsDelta}}</span>{{end}}</td>
</tr>
{{end}}
</table>

{{if .Report.Rising}}
<h2 style="color:#238636;border-bottom:1px solid #30363d;padding-bottom:4px;">Rising</h2>
<ul>
{{range .Report.Rising}}<li><a href="{{.URL}}" style="color:#58a6ff;">{{.RepoName}}</a> {{formatDelta .StarsDelta}} stars{{if .Summary}} &mdash; {{.Summary}}{{end}}</li>{{end}}
</ul>
{{end}}

{{if .Report.Falling}}
<h2 style="color:#f85149;border-bottom:1px solid #30363d;padding-bottom:4px;">Falling</h2>
<ul>
{{range .Report.Falling}}<li><a href="{{.URL}}" style="color:#58a6ff;">{{.RepoName}}</a> {{formatDelta .StarsDelta}} stars</li>{{end}}
</ul>
{{end}}

{{if .Report.Surging}}
<h2 style="color:#d29922;border-bottom:1px solid #30363d;padding-bottom:4px;">Surging</h2>
<ul>
{{range .Report.Surging}}<li><a href="{{.URL}}" style="color:#58a6ff;">{{.RepoName}}</a> {{formatDelta .StarsDelta}} stars ({{printf "%.1f%%" (mulPercent .StarsRate)}}){{if .Summary}} &mdash; {{.Summary}}{{end}}</li>{{end}}
</ul>
{{end}}

{{if .Report.NewEntries}}
<h2 style="color:#58a6ff;border-bottom:1px solid #30363d;padding-bottom:4px;">New on the board</h2>
<ul>
{{range .Report.NewEntries}}<li>#{{.Rank}} <a href="{{.URL}}" style="color:#58a6ff;">{{.RepoName}}</a> &#9733; {{formatNumber .Stars}}</li>{{end}}
</ul>
{{end}}

{{if .Report.Dropped}}
<h2 style="color:#8b949e;border-bottom:1px solid #30363d;padding-bottom:4px;">Dropped off</h2>
<ul>
{{range .Report.Dropped}}<li><a href="{{.URL}}" style="color:#58a6ff;">{{.RepoName}}</a> (was #{{.Rank}}, &#9733; {{formatNumber .Stars}})</li>{{end}}
</ul>
{{end}}

{{if .Report.Active}}
<h2 style="color:#58a6ff;border-bottom:1px solid #30363d;padding-bottom:4px;">Recently active</h2>
<ul>
{{range .Report.Active}}<li><a href="{{.URL}}" style="color:#58a6ff;">{{.RepoName}}</a>{{if .Summary}} &mdash; {{.Summary}}{{end}}</li>{{end}}
</ul>
{{end}}

</div>
</body>
</html>`

var emailTpl = template.Must(template.New("email").Funcs(templateFuncs()).Parse(emailTemplate))

// templateFuncs extends funcMap with helpers only the templates need.
func templateFuncs() template.FuncMap {
	funcs := template.FuncMap{
		"mulPercent": func(rate float64) float64 { return rate * 100 },
	}
	for k, v := range funcMap {
		funcs[k] = v
	}
	return funcs
}

// RenderEmail renders the HTML email body for a trend report.
func RenderEmail(report *domain.TrendReport, title string) (string, error) {
	var buf bytes.Buffer
	err := emailTpl.Execute(&buf, struct {
		Title  string
		Report *domain.TrendReport
	}{Title: title, Report: report})
	if err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}
