package match

import (
	"strings"

	"jobpilot-engine/internal/domain"
)

// Matcher scores a listing feature set against a candidate feature set.
// Deterministic feature comparison only; there is no learned model here.
type Matcher struct{}

func New() *Matcher { return &Matcher{} }

// Score compares the two feature sets. The headline score is
// (exact*1.0 + partial*0.5) / max(required, 1), clamped to [0,1]; the
// breakdown carries the auxiliary component scores so a caller can see
// why a listing ranked where it did.
func (m *Matcher) Score(profile, listing domain.FeatureSet) domain.MatchResult {
	res := domain.MatchResult{
		Breakdown: map[string]float64{},
	}

	candidate := map[string]bool{}
	for _, s := range profile.Skills {
		candidate[strings.ToLower(s)] = true
	}

	for _, req := range listing.Skills {
		reqLower := strings.ToLower(req)
		if candidate[reqLower] {
			res.ExactMatches = append(res.ExactMatches, req)
			continue
		}
		if via, conf := partialSkillMatch(reqLower, profile.Skills); via != "" {
			res.PartialMatches = append(res.PartialMatches, domain.PartialMatch{
				Required:   req,
				Matched:    via,
				Confidence: conf,
			})
			continue
		}
		res.MissingSkills = append(res.MissingSkills, req)
	}

	required := len(listing.Skills)
	if required < 1 {
		required = 1
	}
	score := (float64(len(res.ExactMatches))*1.0 + float64(len(res.PartialMatches))*0.5) / float64(required)
	res.Score = clamp01(score)

	res.Breakdown["skills"] = res.Score
	res.Breakdown["location"] = LocationSimilarity(profile.Location, listing.Location)
	res.Breakdown["experience"] = experienceFit(profile, listing)
	res.Breakdown["salary"] = salaryFit(profile, listing)

	return res
}

// ScoreListing is the convenience form used by the workflow: it carries
// the listing through and folds the company preference into the
// breakdown.
func (m *Matcher) ScoreListing(p domain.CandidateProfile, profileFS domain.FeatureSet, l domain.Listing, listingFS domain.FeatureSet) domain.MatchResult {
	res := m.Score(profileFS, listingFS)
	res.Listing = l
	res.Breakdown["company"] = companyPreference(p.Preferences, l.Company)
	return res
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// experienceFit maps the listing's level to a years band and scores the
// candidate's level against it: inside the band is 1.0, under-qualified
// drops 0.2 per missing year, over-qualified drops 0.1 per extra year
// with a 0.5 floor.
func experienceFit(profile, listing domain.FeatureSet) float64 {
	bands := map[domain.ExperienceLevel][2]int{
		domain.LevelEntry:  {0, 2},
		domain.LevelMid:    {2, 5},
		domain.LevelSenior: {5, 10},
		domain.LevelLead:   {8, 15},
	}
	band, ok := bands[listing.Level]
	if !ok {
		return 0.5
	}

	years := yearsForLevel(profile.Level)
	switch {
	case years >= band[0] && years <= band[1]:
		return 1.0
	case years < band[0]:
		v := 1.0 - float64(band[0]-years)*0.2
		return clamp01(v)
	default:
		v := 1.0 - float64(years-band[1])*0.1
		if v < 0.5 {
			return 0.5
		}
		return v
	}
}

func yearsForLevel(l domain.ExperienceLevel) int {
	switch l {
	case domain.LevelLead:
		return 10
	case domain.LevelSenior:
		return 6
	case domain.LevelMid:
		return 3
	default:
		return 1
	}
}

// salaryFit compares the listing's range midpoint against the
// candidate's expectations. Listings without salary data score neutral.
func salaryFit(profile, listing domain.FeatureSet) float64 {
	if listing.SalaryMin == 0 && listing.SalaryMax == 0 {
		return 0.5
	}

	mid := listing.SalaryMin
	if listing.SalaryMax > 0 {
		mid = (listing.SalaryMin + listing.SalaryMax) / 2
	}

	want := profile.SalaryMin
	if want <= 0 {
		return 0.5
	}
	if mid >= want {
		if profile.SalaryMax > 0 && mid > profile.SalaryMax {
			return 0.9
		}
		return 1.0
	}
	return clamp01(mid / want)
}

func companyPreference(prefs domain.Preferences, company string) float64 {
	c := strings.ToLower(company)
	for _, p := range prefs.PreferredCompanies {
		if p != "" && strings.Contains(c, strings.ToLower(p)) {
			return 1.0
		}
	}
	for _, a := range prefs.AvoidedCompanies {
		if a != "" && strings.Contains(c, strings.ToLower(a)) {
			return 0.0
		}
	}
	return 0.5
}
