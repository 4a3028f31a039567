package dispatch

import (
	"context"
	"net/url"
	"strings"

	"jobpilot-engine/internal/domain"
)

// Strategy submits one application task. Apply returns a human-readable
// message on success.
type Strategy interface {
	Name() domain.ApplyMethod
	Apply(ctx context.Context, task domain.ApplicationTask) (string, error)
}

// portalHosts maps known applicant-tracking hosts to a portal name.
// Targets on these hosts get the portal strategy; other http(s) URLs
// fall through to the form strategy.
var portalHosts = map[string]string{
	"jobs.lever.co":            "lever",
	"boards.greenhouse.io":     "greenhouse",
	"myworkdayjobs.com":        "workday",
	"jobs.smartrecruiters.com": "smartrecruiters",
}

// PortalFor returns the portal name for an apply target, if any.
func PortalFor(target string) (string, bool) {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Host)
	if name, ok := portalHosts[host]; ok {
		return name, true
	}
	for suffix, name := range portalHosts {
		if strings.HasSuffix(host, "."+suffix) {
			return name, true
		}
	}
	return "", false
}

// SelectMethod picks the submission method for an apply target.
// Priority is portal, then email, then form; anything unusable lands on
// manual.
func SelectMethod(target string) domain.ApplyMethod {
	t := strings.TrimSpace(target)
	if t == "" {
		return domain.MethodManual
	}
	if strings.HasPrefix(strings.ToLower(t), "mailto:") {
		return domain.MethodEmail
	}
	if !strings.Contains(t, "://") && strings.Contains(t, "@") {
		return domain.MethodEmail
	}
	if _, ok := PortalFor(t); ok {
		return domain.MethodPortal
	}
	u, err := url.Parse(t)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return domain.MethodForm
	}
	return domain.MethodManual
}

// EmailAddress strips the mailto scheme and query from an email target.
func EmailAddress(target string) string {
	t := strings.TrimSpace(target)
	t = strings.TrimPrefix(t, "mailto:")
	if i := strings.IndexByte(t, '?'); i >= 0 {
		t = t[:i]
	}
	return t
}
