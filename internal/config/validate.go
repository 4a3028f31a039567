package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything a
// careful operator should know before the config is saved.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	out.Search.Keywords = strings.TrimSpace(out.Search.Keywords)
	out.Search.Location = strings.TrimSpace(out.Search.Location)

	trimBoards := func(xs []Board) []Board {
		var ys []Board
		for _, x := range xs {
			x.Name = strings.TrimSpace(x.Name)
			x.URL = strings.TrimSpace(x.URL)
			if x.URL == "" {
				continue
			}
			ys = append(ys, x)
		}
		return ys
	}
	out.Sources.Boards.Pages = trimBoards(out.Sources.Boards.Pages)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Search.MaxResults <= 0 {
		res.addErr("search.max_results must be > 0")
	}

	if out.Workflow.ScrapingIntervalHours <= 0 {
		res.addErr("workflow.scraping_interval_hours must be > 0")
	}
	if out.Workflow.ScoringThreshold < 0 || out.Workflow.ScoringThreshold > 1 {
		res.addErr("workflow.scoring_threshold must be within 0..1")
	}
	if out.Workflow.MaxAutoApplications < 0 {
		res.addErr("workflow.max_auto_applications must be >= 0")
	}
	if out.Workflow.MaxApplicationsPerDay <= 0 {
		res.addErr("workflow.max_applications_per_day must be > 0")
	}
	if out.Workflow.FollowUpIntervalDays <= 0 {
		res.addErr("workflow.follow_up_interval_days must be > 0")
	}
	if out.Workflow.AutoApplyEnabled && out.Workflow.MaxAutoApplications == 0 {
		res.addWarn("auto_apply_enabled is true but max_auto_applications is 0; the apply phase will do nothing")
	}

	if out.Dispatch.JitterMinSeconds < 0 || out.Dispatch.JitterMaxSeconds < 0 {
		res.addErr("dispatch jitter bounds must be >= 0")
	}
	if out.Dispatch.JitterMaxSeconds < out.Dispatch.JitterMinSeconds {
		res.addErr("dispatch.jitter_max_seconds must be >= dispatch.jitter_min_seconds")
	}
	if out.Dispatch.JitterMinSeconds > 0 && out.Dispatch.JitterMinSeconds < 5 {
		res.addWarn("dispatch.jitter_min_seconds is very low (%d); target sites may rate-limit.", out.Dispatch.JitterMinSeconds)
	}

	if out.Tracker.InboxEnabled {
		if strings.TrimSpace(out.Tracker.IMAPHost) == "" {
			res.addErr("tracker.imap_host is required when tracker.inbox_enabled=true")
		}
		if out.Tracker.IMAPPort == 0 {
			res.addErr("tracker.imap_port is required when tracker.inbox_enabled=true")
		}
		if strings.TrimSpace(out.Tracker.Username) == "" {
			res.addErr("tracker.username is required when tracker.inbox_enabled=true")
		}
		if strings.TrimSpace(out.Tracker.Mailbox) == "" {
			res.addErr("tracker.mailbox is required when tracker.inbox_enabled=true")
		}
	}

	if !out.Sources.API.Enabled && !out.Sources.Boards.Enabled {
		res.addWarn("no listing sources enabled; searches will come back empty")
	}

	return out, res
}
