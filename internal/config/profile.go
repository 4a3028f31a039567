package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"jobpilot-engine/internal/domain"
)

// LoadProfile reads the candidate profile from its YAML file.
func LoadProfile(path string) (domain.CandidateProfile, error) {
	var p domain.CandidateProfile
	b, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("parse profile: %w", err)
	}
	if strings.TrimSpace(p.ID) == "" {
		p.ID = "default"
	}
	if strings.TrimSpace(p.Name) == "" {
		return p, fmt.Errorf("profile %s: name is required", path)
	}
	return p, nil
}
