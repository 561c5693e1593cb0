// Path: internal/domain/models.go
package domain

import (
	"encoding/json"
	"time"
)

// StringList is an ordered list of strings that always serializes as a JSON
// array. A nil list marshals to [], never null, so downstream consumers can
// rely on the key being present.
type StringList []string

// MarshalJSON implements the json.Marshaler interface for StringList.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// OrEmpty returns the list itself, or an empty (non-nil) list when nil.
// The storage layer calls this before writes so BSON never stores null.
func (l StringList) OrEmpty() StringList {
	if l == nil {
		return StringList{}
	}
	return l
}

// Repo represents one repository's state on one calendar day.
// The bson-tagged fields form the repos_daily document; the remaining fields
// travel with the record during a cycle (fetcher output, delta annotations)
// but are not persisted in the daily snapshot.
type Repo struct {
	Date     string `json:"date" bson:"date"` // YYYY-MM-DD
	Rank     int    `json:"rank" bson:"rank"`
	RepoName string `json:"repo_name" bson:"repo_name"` // "owner/name"
	Owner    string `json:"owner" bson:"owner"`
	Stars    int    `json:"stars" bson:"stars"`
	// StarsDelta is persisted alongside the snapshot so stored days keep
	// their day-over-day movement.
	StarsDelta int    `json:"stars_delta" bson:"stars_delta"`
	Forks      int    `json:"forks" bson:"forks"`
	Issues     int    `json:"issues" bson:"issues"`
	Language   string `json:"language" bson:"language"`
	URL        string `json:"url" bson:"url"`

	// Derived per run, recomputable from the prior day.
	RankDelta int     `json:"rank_delta" bson:"-"`
	StarsRate float64 `json:"stars_rate" bson:"-"`

	// Fetch-only metadata consumed by the summarizer and classifier.
	Description string     `json:"description,omitempty" bson:"-"`
	Topics      StringList `json:"topics,omitempty" bson:"-"`
	CreatedAt   time.Time  `json:"created_at,omitempty" bson:"-"`
	UpdatedAt   time.Time  `json:"updated_at,omitempty" bson:"-"`
}

// HistoryPoint is one repository's (date, rank, stars, forks) tuple, kept in
// a narrow collection so long-range trend queries need not scan daily rows.
type HistoryPoint struct {
	RepoName string `json:"repo_name" bson:"repo_name"`
	Date     string `json:"date" bson:"date"`
	Rank     int    `json:"rank" bson:"rank"`
	Stars    int    `json:"stars" bson:"stars"`
	Forks    int    `json:"forks" bson:"forks"`
}

// RepoDetail is the latest AI-generated annotation for a repository.
// There is exactly one per repository; upserts overwrite in place and the
// retention pass never touches these.
type RepoDetail struct {
	RepoName      string     `json:"repo_name" bson:"_id"`
	Summary       string     `json:"summary" bson:"summary"`
	Description   string     `json:"description" bson:"description"`
	UseCase       string     `json:"use_case" bson:"use_case"`
	Solves        StringList `json:"solves" bson:"solves"`
	Category      string     `json:"category" bson:"category"`
	CategoryLabel string     `json:"category_label" bson:"category_label"`
	Topics        StringList `json:"topics" bson:"topics"`
	Language      string     `json:"language" bson:"language"`
	ReadmeSummary string     `json:"readme_summary" bson:"readme_summary"`
	Owner         string     `json:"owner" bson:"owner"`
	URL           string     `json:"url" bson:"url"`
}

// ReportEntry is a snapshot record merged with its detail annotation for
// presentation. Detail fields default to empty values when no annotation
// exists; the long fields are only populated for the top-N bucket.
type ReportEntry struct {
	Repo
	Summary       string     `json:"summary"`
	CategoryLabel string     `json:"category_label"`
	Description   string     `json:"ai_description,omitempty"`
	UseCase       string     `json:"use_case,omitempty"`
	Solves        StringList `json:"solves,omitempty"`
	Category      string     `json:"category,omitempty"`
}

// DroppedEntry describes a repository that was on yesterday's board but is
// absent today. It carries yesterday's rank and stars since no today-record
// exists to merge.
type DroppedEntry struct {
	RepoName      string `json:"repo_name"`
	Rank          int    `json:"yesterday_rank"`
	Stars         int    `json:"stars"`
	URL           string `json:"url"`
	Summary       string `json:"summary"`
	CategoryLabel string `json:"category_label"`
}

// TrendReport is the derived output of one cycle. It is recomputed on every
// run and never persisted.
type TrendReport struct {
	Date       string         `json:"date"`
	TopRepos   []ReportEntry  `json:"top_repos"`
	Rising     []ReportEntry  `json:"rising"`
	Falling    []ReportEntry  `json:"falling"`
	NewEntries []ReportEntry  `json:"new_entries"`
	Dropped    []DroppedEntry `json:"dropped_entries"`
	Surging    []ReportEntry  `json:"surging"`
	Active     []ReportEntry  `json:"active"`
}

// RunRecord captures the outcome of the most recent cycle, stored in the
// database so the daemon's state survives restarts.
type RunRecord struct {
	ID          string    `bson:"_id"` // constant key, "last_run"
	Date        string    `bson:"date"`
	RepoCount   int       `bson:"repoCount"`
	Skipped     int       `bson:"skipped"`
	PurgedRows  int64     `bson:"purgedRows"`
	CompletedAt time.Time `bson:"completedAt"`
}
