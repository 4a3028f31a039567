package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Options are the runtime-updatable workflow settings. Updates arrive
// as a key/value map and are rejected wholesale when any key is not
// recognized (see ApplyUpdates).
type Options struct {
	ScrapingIntervalHours int     `yaml:"scraping_interval_hours" json:"scraping_interval_hours" mapstructure:"scraping_interval_hours"`
	ScoringThreshold      float64 `yaml:"scoring_threshold" json:"scoring_threshold" mapstructure:"scoring_threshold"`
	MaxAutoApplications   int     `yaml:"max_auto_applications" json:"max_auto_applications" mapstructure:"max_auto_applications"`
	AutoApplyEnabled      bool    `yaml:"auto_apply_enabled" json:"auto_apply_enabled" mapstructure:"auto_apply_enabled"`
	FollowUpIntervalDays  int     `yaml:"follow_up_interval_days" json:"follow_up_interval_days" mapstructure:"follow_up_interval_days"`
	MaxApplicationsPerDay int     `yaml:"max_applications_per_day" json:"max_applications_per_day" mapstructure:"max_applications_per_day"`
}

type Board struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Search struct {
		Keywords   string `yaml:"keywords" json:"keywords"`
		Location   string `yaml:"location" json:"location"`
		MaxResults int    `yaml:"max_results" json:"max_results"`
	} `yaml:"search" json:"search"`

	Workflow Options `yaml:"workflow" json:"workflow"`

	Sources struct {
		API struct {
			Enabled   bool     `yaml:"enabled" json:"enabled"`
			Endpoints []string `yaml:"endpoints" json:"endpoints"`
		} `yaml:"api" json:"api"`
		Boards struct {
			Enabled bool    `yaml:"enabled" json:"enabled"`
			Pages   []Board `yaml:"pages" json:"pages"`
		} `yaml:"boards" json:"boards"`
	} `yaml:"sources" json:"sources"`

	Dispatch struct {
		JitterMinSeconds int     `yaml:"jitter_min_seconds" json:"jitter_min_seconds"`
		JitterMaxSeconds int     `yaml:"jitter_max_seconds" json:"jitter_max_seconds"`
		HostRatePerSec   float64 `yaml:"host_rate_per_sec" json:"host_rate_per_sec"`
		HostBurst        int     `yaml:"host_burst" json:"host_burst"`
		SMTPHost         string  `yaml:"smtp_host" json:"smtp_host"`
		SMTPPort         int     `yaml:"smtp_port" json:"smtp_port"`
		SMTPUsername     string  `yaml:"smtp_username" json:"smtp_username"`
	} `yaml:"dispatch" json:"dispatch"`

	Tracker struct {
		InboxEnabled bool   `yaml:"inbox_enabled" json:"inbox_enabled"`
		IMAPHost     string `yaml:"imap_host" json:"imap_host"`
		IMAPPort     int    `yaml:"imap_port" json:"imap_port"`
		Username     string `yaml:"username" json:"username"`
		Mailbox      string `yaml:"mailbox" json:"mailbox"`
	} `yaml:"tracker" json:"tracker"`

	Letter struct {
		Provider   string `yaml:"provider" json:"provider"` // "gemini" or "" for template only
		Model      string `yaml:"model" json:"model"`
		APIKeyFile string `yaml:"api_key_file" json:"api_key_file"`
	} `yaml:"letter" json:"letter"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
