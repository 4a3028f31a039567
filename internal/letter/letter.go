// Package letter produces the cover text attached to an application.
package letter

import (
	"context"
	"fmt"
	"strings"

	"jobpilot-engine/internal/domain"
)

// Generator writes a cover letter for one listing. Implementations must
// not block past the context.
type Generator interface {
	Generate(ctx context.Context, p domain.CandidateProfile, l domain.Listing) (string, error)
}

// Template fills a plain letter from profile and listing fields. It is
// the fallback when no model-backed generator is configured and the
// safety net when one fails.
type Template struct{}

func (Template) Generate(_ context.Context, p domain.CandidateProfile, l domain.Listing) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Dear %s hiring team,\n\n", l.Company)
	fmt.Fprintf(&b, "I am applying for the %s position.", l.Title)
	if len(p.Skills) > 0 {
		fmt.Fprintf(&b, " My background covers %s", joinSkills(p.Skills))
		if p.ExperienceYears > 0 {
			fmt.Fprintf(&b, " with %d years of experience", p.ExperienceYears)
		}
		b.WriteString(".")
	}
	b.WriteString("\n\nI would welcome the chance to discuss how I can contribute to your team.\n\n")
	fmt.Fprintf(&b, "Best regards,\n%s\n%s", p.Name, p.Email)

	return b.String(), nil
}

func joinSkills(skills []string) string {
	if len(skills) > 5 {
		skills = skills[:5]
	}
	switch len(skills) {
	case 1:
		return skills[0]
	default:
		return strings.Join(skills[:len(skills)-1], ", ") + " and " + skills[len(skills)-1]
	}
}

// WithFallback wraps a generator so failures degrade to the template
// instead of blocking the dispatch.
type WithFallback struct {
	Primary  Generator
	Fallback Generator
}

func (w WithFallback) Generate(ctx context.Context, p domain.CandidateProfile, l domain.Listing) (string, error) {
	out, err := w.Primary.Generate(ctx, p, l)
	if err == nil && strings.TrimSpace(out) != "" {
		return out, nil
	}
	fb := w.Fallback
	if fb == nil {
		fb = Template{}
	}
	return fb.Generate(ctx, p, l)
}
