// Path: internal/delivery/rest/handlers.go
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"gh-trending/internal/domain"
)

// dataService defines the interface required by the handlers from the core
// service. This keeps the delivery layer decoupled from the full service
// implementation.
type dataService interface {
	LatestReport() *domain.TrendReport
	ReportForDate(ctx context.Context, date string) (*domain.TrendReport, error)
	RepoHistory(ctx context.Context, repoName string, days int) ([]domain.HistoryPoint, error)
}

// TrendHandlers holds dependencies for trend-related HTTP handlers.
type TrendHandlers struct {
	service dataService
}

// NewTrendHandlers creates a new handler struct.
func NewTrendHandlers(s dataService) *TrendHandlers {
	return &TrendHandlers{service: s}
}

// GetHealth reports liveness.
func (h *TrendHandlers) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// GetLatestReport returns the report from the most recent completed cycle.
// Path: /api/report/latest
func (h *TrendHandlers) GetLatestReport(w http.ResponseWriter, r *http.Request) {
	report := h.service.LatestReport()
	if report == nil {
		http.Error(w, "No report available yet", http.StatusNotFound)
		return
	}
	writeJSON(w, report)
}

// GetReportByDate recomputes the report for a stored day.
// Path: /api/report/{date}
func (h *TrendHandlers) GetReportByDate(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimPrefix(r.URL.Path, "/api/report/")
	if date == "latest" {
		h.GetLatestReport(w, r)
		return
	}
	if len(date) != len("2006-01-02") {
		http.Error(w, "Invalid date format. Expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	report, err := h.service.ReportForDate(r.Context(), date)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if report == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, report)
}

// GetRepoHistory returns one repository's trailing history.
// Path: /api/repos/{owner}/{name}/history?days=N
func (h *TrendHandlers) GetRepoHistory(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/api/repos/")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 3 || parts[2] != "history" {
		http.Error(w, "Invalid path. Expected /api/repos/{owner}/{name}/history", http.StatusBadRequest)
		return
	}
	repoName := parts[0] + "/" + parts[1]

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid days parameter", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	points, err := h.service.RepoHistory(r.Context(), repoName, days)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if points == nil {
		points = []domain.HistoryPoint{}
	}
	writeJSON(w, points)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
