package letter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"jobpilot-engine/internal/domain"
)

const defaultModel = "gemini-2.5-flash"

// Gemini writes cover letters with the Gemini API.
type Gemini struct {
	client    *genai.Client
	modelName string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Gemini{client: client, modelName: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, p domain.CandidateProfile, l domain.Listing) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt := buildPrompt(p, l)
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate letter: %w", err)
	}

	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return out, nil
}

func buildPrompt(p domain.CandidateProfile, l domain.Listing) string {
	var b strings.Builder
	b.WriteString("Write a short, professional cover letter (under 200 words). ")
	b.WriteString("Plain text only, no placeholders.\n\n")
	fmt.Fprintf(&b, "Candidate: %s, %d years of experience.\n", p.Name, p.ExperienceYears)
	fmt.Fprintf(&b, "Skills: %s.\n", strings.Join(p.Skills, ", "))
	fmt.Fprintf(&b, "Role: %s at %s (%s).\n", l.Title, l.Company, l.Location)
	if l.Requirements != "" {
		fmt.Fprintf(&b, "Role requirements: %s\n", l.Requirements)
	}
	return b.String()
}
