package config

import (
	"errors"
	"testing"
)

func baseOptions() Options {
	return Options{
		ScrapingIntervalHours: 6,
		ScoringThreshold:      0.6,
		MaxAutoApplications:   5,
		AutoApplyEnabled:      false,
		FollowUpIntervalDays:  7,
		MaxApplicationsPerDay: 10,
	}
}

func TestApplyUpdates(t *testing.T) {
	got, err := ApplyUpdates(baseOptions(), map[string]any{
		"scoring_threshold":  0.8,
		"auto_apply_enabled": true,
	})
	if err != nil {
		t.Fatalf("ApplyUpdates: %v", err)
	}
	if got.ScoringThreshold != 0.8 || !got.AutoApplyEnabled {
		t.Errorf("updates not applied: %+v", got)
	}
	if got.ScrapingIntervalHours != 6 || got.MaxApplicationsPerDay != 10 {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestApplyUpdatesWeakTyping(t *testing.T) {
	// JSON decodes numbers as float64; the merge must still land them
	// in integer fields.
	got, err := ApplyUpdates(baseOptions(), map[string]any{
		"max_auto_applications": float64(3),
	})
	if err != nil {
		t.Fatalf("ApplyUpdates: %v", err)
	}
	if got.MaxAutoApplications != 3 {
		t.Errorf("MaxAutoApplications = %d, want 3", got.MaxAutoApplications)
	}
}

func TestApplyUpdatesUnknownKeyRejectsAll(t *testing.T) {
	in := baseOptions()
	got, err := ApplyUpdates(in, map[string]any{
		"scoring_threshold": 0.9,
		"not_a_real_option": 1,
	})
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("err = %v, want ErrUnknownKey", err)
	}
	// No partial application: the valid key in the same payload must
	// not have been merged either.
	if got != in {
		t.Errorf("options changed despite rejection: %+v", got)
	}
}

func TestApplyUpdatesEmptyPayload(t *testing.T) {
	in := baseOptions()
	got, err := ApplyUpdates(in, map[string]any{})
	if err != nil {
		t.Fatalf("ApplyUpdates: %v", err)
	}
	if got != in {
		t.Errorf("empty payload changed options: %+v", got)
	}
}
