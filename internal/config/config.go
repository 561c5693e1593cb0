// Path: internal/config/config.go
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Fetcher    FetcherConfig
	Summarizer SummarizerConfig
	Trends     TrendsConfig
	Report     ReportConfig
	Watcher    WatcherConfig
	Logging    LoggingConfig
}

// ServerConfig holds the API server settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// DatabaseConfig holds the database connection settings.
type DatabaseConfig struct {
	URI               string `mapstructure:"uri"`
	Name              string `mapstructure:"name"`
	DailyCollection   string `mapstructure:"daily_collection"`
	DetailsCollection string `mapstructure:"details_collection"`
	HistoryCollection string `mapstructure:"history_collection"`
	StatusCollection  string `mapstructure:"status_collection"`
}

// FetcherConfig holds settings for the GitHub repository fetcher.
type FetcherConfig struct {
	APIBase           string `mapstructure:"api_base"`
	Token             string `mapstructure:"token"`
	Topic             string `mapstructure:"topic"`
	Mode              string `mapstructure:"mode"` // "topic" or "trending"
	Sort              string `mapstructure:"sort"` // stars, forks, updated
	PerPage           int    `mapstructure:"per_page"`
	MaxPages          int    `mapstructure:"max_pages"`
	RequestsPerSecond int    `mapstructure:"requests_per_second"`
	BurstLimit        int    `mapstructure:"burst_limit"`
	TrendingURL       string `mapstructure:"trending_url"`
	TrendingLanguage  string `mapstructure:"trending_language"`
	TrendingSince     string `mapstructure:"trending_since"` // daily, weekly, monthly
}

// SummarizerConfig holds settings for the AI summarizer client.
// An empty APIKey disables summarization; the run then falls back to the
// cached details already in the store.
type SummarizerConfig struct {
	APIBase           string `mapstructure:"api_base"`
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	MaxTokens         int    `mapstructure:"max_tokens"`
	TopNDetails       int    `mapstructure:"top_n_details"`
	RequestsPerSecond int    `mapstructure:"requests_per_second"`
	BurstLimit        int    `mapstructure:"burst_limit"`
}

// TrendsConfig holds the thresholds for the trend engine. These are passed
// explicitly into the delta/classifier/retention code rather than read as
// ambient globals, so the engine stays independently testable.
type TrendsConfig struct {
	SurgeThreshold float64 `mapstructure:"surge_threshold"` // growth rate, 0.3 = 30%
	SurgeFloor     int     `mapstructure:"surge_floor"`     // absolute stars growth
	TopN           int     `mapstructure:"top_n"`
	MoversLimit    int     `mapstructure:"movers_limit"`
	ActiveLimit    int     `mapstructure:"active_limit"`
	RetentionDays  int     `mapstructure:"retention_days"`
}

// ReportConfig holds settings for email delivery and the static site.
// Empty ResendAPIKey or To disables email; empty OutputDir disables the site.
type ReportConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
	To           string `mapstructure:"to"`
	OutputDir    string `mapstructure:"output_dir"`
	SiteTitle    string `mapstructure:"site_title"`
}

// WatcherConfig holds settings for the periodic cycle loop.
type WatcherConfig struct {
	IntervalHours int `mapstructure:"interval_hours"`
}

// LoggingConfig selects the logger mode.
type LoggingConfig struct {
	Mode string `mapstructure:"mode"` // "dev" or "prod"
}

// Load loads the configuration from file and environment variables.
func Load() (*Config, error) {
	// Set default values
	viper.SetDefault("SERVER.PORT", "8080")
	viper.SetDefault("DATABASE.URI", "mongodb://localhost:27017/?replicaSet=rs0")
	viper.SetDefault("DATABASE.NAME", "gh-trending")
	viper.SetDefault("DATABASE.DAILY_COLLECTION", "repos_daily")
	viper.SetDefault("DATABASE.DETAILS_COLLECTION", "repos_details")
	viper.SetDefault("DATABASE.HISTORY_COLLECTION", "repos_history")
	viper.SetDefault("DATABASE.STATUS_COLLECTION", "_status")
	viper.SetDefault("FETCHER.API_BASE", "https://api.github.com")
	viper.SetDefault("FETCHER.TOPIC", "claude-code")
	viper.SetDefault("FETCHER.MODE", "topic")
	viper.SetDefault("FETCHER.SORT", "stars")
	viper.SetDefault("FETCHER.PER_PAGE", 100)
	viper.SetDefault("FETCHER.MAX_PAGES", 10)
	viper.SetDefault("FETCHER.REQUESTS_PER_SECOND", 2)
	viper.SetDefault("FETCHER.BURST_LIMIT", 5)
	viper.SetDefault("FETCHER.TRENDING_URL", "https://github.com/trending")
	viper.SetDefault("FETCHER.TRENDING_SINCE", "daily")
	viper.SetDefault("SUMMARIZER.API_BASE", "https://api.anthropic.com")
	viper.SetDefault("SUMMARIZER.MODEL", "claude-3-5-sonnet-20241022")
	viper.SetDefault("SUMMARIZER.MAX_TOKENS", 8192)
	viper.SetDefault("SUMMARIZER.TOP_N_DETAILS", 50)
	viper.SetDefault("SUMMARIZER.REQUESTS_PER_SECOND", 1)
	viper.SetDefault("SUMMARIZER.BURST_LIMIT", 2)
	viper.SetDefault("TRENDS.SURGE_THRESHOLD", 0.3)
	viper.SetDefault("TRENDS.SURGE_FLOOR", 100)
	viper.SetDefault("TRENDS.TOP_N", 20)
	viper.SetDefault("TRENDS.MOVERS_LIMIT", 5)
	viper.SetDefault("TRENDS.ACTIVE_LIMIT", 10)
	viper.SetDefault("TRENDS.RETENTION_DAYS", 90)
	viper.SetDefault("REPORT.FROM", "onboarding@resend.dev")
	viper.SetDefault("REPORT.OUTPUT_DIR", "docs")
	viper.SetDefault("REPORT.SITE_TITLE", "GitHub Topics Trending")
	viper.SetDefault("WATCHER.INTERVAL_HOURS", 24)
	viper.SetDefault("LOGGING.MODE", "dev")

	// Load from config file
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err // Only return error if it's not a "file not found" error
		}
	}

	// Load from environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
