package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobpilot-engine/internal/domain"
)

// PortalStrategy submits through a known applicant-tracking portal. The
// generic flow posts the candidate form to the target's apply endpoint;
// portals with quirks get their own submit func in the registry.
type PortalStrategy struct {
	Client  *http.Client
	Limiter *HostLimiter
	Profile domain.CandidateProfile
}

func NewPortalStrategy(limiter *HostLimiter, profile domain.CandidateProfile) *PortalStrategy {
	return &PortalStrategy{
		Client:  &http.Client{Timeout: 30 * time.Second},
		Limiter: limiter,
		Profile: profile,
	}
}

func (s *PortalStrategy) Name() domain.ApplyMethod { return domain.MethodPortal }

func (s *PortalStrategy) Apply(ctx context.Context, task domain.ApplicationTask) (string, error) {
	target := task.Listing.ApplyTarget
	portal, ok := PortalFor(target)
	if !ok {
		return "", fmt.Errorf("no portal handler for %s", target)
	}
	if err := s.Limiter.WaitURL(ctx, target); err != nil {
		return "", err
	}

	submit := portalSubmits[portal]
	if submit == nil {
		submit = submitGenericForm
	}
	if err := submit(ctx, s.Client, target, s.Profile, task.Letter); err != nil {
		return "", fmt.Errorf("%s portal: %w", portal, err)
	}
	return fmt.Sprintf("submitted via %s portal", portal), nil
}

type portalSubmitFunc func(ctx context.Context, c *http.Client, target string, p domain.CandidateProfile, letter string) error

var portalSubmits = map[string]portalSubmitFunc{
	"lever":      submitLever,
	"greenhouse": submitGenericForm,
}

// Lever accepts a form post at <posting>/apply.
func submitLever(ctx context.Context, c *http.Client, target string, p domain.CandidateProfile, letter string) error {
	apply := strings.TrimRight(target, "/") + "/apply"
	form := url.Values{
		"name":     {p.Name},
		"email":    {p.Email},
		"phone":    {p.Phone},
		"comments": {letter},
	}
	return postForm(ctx, c, apply, form)
}

func submitGenericForm(ctx context.Context, c *http.Client, target string, p domain.CandidateProfile, letter string) error {
	form := url.Values{
		"first_name":   {firstName(p.Name)},
		"last_name":    {lastName(p.Name)},
		"email":        {p.Email},
		"phone":        {p.Phone},
		"cover_letter": {letter},
	}
	return postForm(ctx, c, target, form)
}

func postForm(ctx context.Context, c *http.Client, target string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("submit returned %s", resp.Status)
	}
	return nil
}

func firstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func lastName(full string) string {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " ")
}
