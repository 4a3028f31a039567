package extract

import (
	"regexp"
	"strings"

	"jobpilot-engine/internal/domain"
)

// Extract functions never fail: empty or garbage text yields an empty
// (or partial) FeatureSet so one malformed listing cannot take down a
// whole pipeline run.

// Listing builds a FeatureSet from a raw listing. Structured salary
// fields win over anything parsed out of the text.
func Listing(l domain.Listing) domain.FeatureSet {
	text := strings.ToLower(l.Description + " " + l.Requirements)

	fs := domain.FeatureSet{
		Skills:    scanCatalog(skillCatalog, text),
		Benefits:  scanCatalog(benefitCatalog, strings.ToLower(l.Description)),
		Education: scanCatalog(educationCatalog, text),
		Size:      companySize(strings.ToLower(l.Description)),
		Level:     experienceLevel(strings.ToLower(l.Title + " " + l.Description)),
		Location:  CleanText(l.Location),
		SalaryMin: l.SalaryMin,
		SalaryMax: l.SalaryMax,
	}
	fs.RemoteFlag = isRemote(l.Location, l.Title, l.Description)

	if fs.SalaryMin == 0 && fs.SalaryMax == 0 {
		fs.SalaryMin, fs.SalaryMax = ParseSalary(l.Description)
	}
	return fs
}

// Profile builds a FeatureSet from a candidate profile.
func Profile(p domain.CandidateProfile) domain.FeatureSet {
	skills := make([]string, 0, len(p.Skills))
	seen := map[string]bool{}
	for _, s := range p.Skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		skills = append(skills, s)
	}

	return domain.FeatureSet{
		Skills:     skills,
		Level:      levelForYears(p.ExperienceYears),
		Location:   CleanText(p.Location),
		SalaryMin:  p.Preferences.SalaryMin,
		SalaryMax:  p.Preferences.SalaryMax,
		RemoteFlag: p.Preferences.RemotePreferred,
	}
}

func companySize(text string) domain.CompanySize {
	found := scanCatalog(sizeCatalog, text)
	if len(found) == 0 {
		return domain.SizeUnknown
	}
	return domain.CompanySize(found[0])
}

var levelTerms = []struct {
	level domain.ExperienceLevel
	re    *regexp.Regexp
}{
	{domain.LevelLead, regexp.MustCompile(`\b(?:lead|principal|staff|head\s+of)\b`)},
	{domain.LevelSenior, regexp.MustCompile(`\b(?:senior|sr\.?|expert)\b`)},
	{domain.LevelMid, regexp.MustCompile(`\b(?:mid[\s-]?level|intermediate|\d\+?\s*years)\b`)},
	{domain.LevelEntry, regexp.MustCompile(`\b(?:junior|jr\.?|entry[\s-]?level|intern(?:ship)?|graduate)\b`)},
}

// experienceLevel falls back to entry when nothing in the text
// indicates a level.
func experienceLevel(text string) domain.ExperienceLevel {
	for _, t := range levelTerms {
		if t.re.MatchString(text) {
			return t.level
		}
	}
	return domain.LevelEntry
}

func levelForYears(years int) domain.ExperienceLevel {
	switch {
	case years >= 8:
		return domain.LevelLead
	case years >= 5:
		return domain.LevelSenior
	case years >= 2:
		return domain.LevelMid
	default:
		return domain.LevelEntry
	}
}

func isRemote(fields ...string) bool {
	blob := strings.ToLower(strings.Join(fields, " "))
	return strings.Contains(blob, "remote") || strings.Contains(blob, "work from home")
}
