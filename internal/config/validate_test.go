package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.Search.Keywords = "software engineer"
	cfg.Search.Location = "Remote"
	cfg.Search.MaxResults = 50
	cfg.Workflow = Options{
		ScrapingIntervalHours: 6,
		ScoringThreshold:      0.6,
		MaxAutoApplications:   5,
		FollowUpIntervalDays:  7,
		MaxApplicationsPerDay: 10,
	}
	cfg.Dispatch.JitterMinSeconds = 30
	cfg.Dispatch.JitterMaxSeconds = 60
	cfg.Sources.API.Enabled = true
	return cfg
}

func TestNormalizeAndValidateOK(t *testing.T) {
	_, res := NormalizeAndValidate(validConfig())
	if !res.OK() {
		t.Fatalf("valid config rejected: %v", res.Errors)
	}
}

func TestNormalizeTrimsAndDropsEmptyBoards(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Keywords = "  golang  "
	cfg.Sources.Boards.Pages = []Board{
		{Name: " acme ", URL: " https://boards.example.com/acme "},
		{Name: "empty", URL: "   "},
	}

	out, _ := NormalizeAndValidate(cfg)
	if out.Search.Keywords != "golang" {
		t.Errorf("keywords = %q, want trimmed", out.Search.Keywords)
	}
	if len(out.Sources.Boards.Pages) != 1 {
		t.Fatalf("boards = %v, want empty URL dropped", out.Sources.Boards.Pages)
	}
	if out.Sources.Boards.Pages[0].URL != "https://boards.example.com/acme" {
		t.Errorf("board URL not trimmed: %q", out.Sources.Boards.Pages[0].URL)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.App.Port = 0 }, "app.port"},
		{"bad threshold", func(c *Config) { c.Workflow.ScoringThreshold = 1.5 }, "scoring_threshold"},
		{"zero interval", func(c *Config) { c.Workflow.ScrapingIntervalHours = 0 }, "scraping_interval_hours"},
		{"zero daily cap", func(c *Config) { c.Workflow.MaxApplicationsPerDay = 0 }, "max_applications_per_day"},
		{"jitter inverted", func(c *Config) {
			c.Dispatch.JitterMinSeconds = 60
			c.Dispatch.JitterMaxSeconds = 30
		}, "jitter_max_seconds"},
		{"inbox missing host", func(c *Config) { c.Tracker.InboxEnabled = true }, "tracker.imap_host"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			_, res := NormalizeAndValidate(cfg)
			if res.OK() {
				t.Fatal("expected validation errors")
			}
			found := false
			for _, e := range res.Errors {
				if strings.Contains(e, tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %q", res.Errors, tt.wantErr)
			}
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	cfg := validConfig()
	cfg.Sources.API.Enabled = false

	_, res := NormalizeAndValidate(cfg)
	if !res.OK() {
		t.Fatalf("warnings must not fail validation: %v", res.Errors)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning about no enabled sources")
	}

	cfg = validConfig()
	cfg.Workflow.AutoApplyEnabled = true
	cfg.Workflow.MaxAutoApplications = 0
	_, res = NormalizeAndValidate(cfg)
	if !res.OK() {
		t.Fatalf("warnings must not fail validation: %v", res.Errors)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning about auto apply with zero cap")
	}
}
