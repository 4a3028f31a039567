package domain

import "strings"

// CompanySize buckets inferred from listing text.
type CompanySize string

const (
	SizeUnknown    CompanySize = ""
	SizeStartup    CompanySize = "startup"
	SizeSmall      CompanySize = "small"
	SizeMedium     CompanySize = "medium"
	SizeLarge      CompanySize = "large"
	SizeEnterprise CompanySize = "enterprise"
)

// ExperienceLevel buckets. Extraction falls back to entry when no
// level-indicating terms are present.
type ExperienceLevel string

const (
	LevelEntry  ExperienceLevel = "entry"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
	LevelLead   ExperienceLevel = "lead"
)

// FeatureSet is the structured view of free text used for matching.
// A pure function of its source text; rebuilt rather than mutated.
type FeatureSet struct {
	Skills     []string        `json:"skills"`
	Benefits   []string        `json:"benefits"`
	Education  []string        `json:"education"`
	Size       CompanySize     `json:"company_size"`
	Level      ExperienceLevel `json:"experience_level"`
	Location   string          `json:"location"`
	SalaryMin  float64         `json:"salary_min"`
	SalaryMax  float64         `json:"salary_max"`
	RemoteFlag bool            `json:"remote"`
}

// HasSkill does a case-insensitive membership check.
func (f FeatureSet) HasSkill(name string) bool {
	for _, s := range f.Skills {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}
