package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"jobpilot-engine/internal/domain"
)

// FormStrategy posts the candidate form straight at a company careers
// URL. It shares the host limiter with the portal strategy so a company
// serving both never sees bursts.
type FormStrategy struct {
	Client  *http.Client
	Limiter *HostLimiter
	Profile domain.CandidateProfile
}

func NewFormStrategy(limiter *HostLimiter, profile domain.CandidateProfile) *FormStrategy {
	return &FormStrategy{
		Client:  &http.Client{Timeout: 30 * time.Second},
		Limiter: limiter,
		Profile: profile,
	}
}

func (s *FormStrategy) Name() domain.ApplyMethod { return domain.MethodForm }

func (s *FormStrategy) Apply(ctx context.Context, task domain.ApplicationTask) (string, error) {
	target := task.Listing.ApplyTarget
	if err := s.Limiter.WaitURL(ctx, target); err != nil {
		return "", err
	}

	form := url.Values{
		"name":         {s.Profile.Name},
		"email":        {s.Profile.Email},
		"phone":        {s.Profile.Phone},
		"cover_letter": {task.Letter},
	}
	if err := postForm(ctx, s.Client, target, form); err != nil {
		return "", fmt.Errorf("form submit: %w", err)
	}
	return "form submitted at " + target, nil
}
