package match

import "strings"

// skillRelations is a small hand-curated relationship graph: knowing
// the key suggests familiarity with the values and vice versa.
var skillRelations = map[string][]string{
	"javascript":       {"js", "node.js", "nodejs", "react", "angular", "vue"},
	"python":           {"django", "flask", "fastapi", "pandas", "numpy"},
	"java":             {"spring", "hibernate", "maven", "gradle"},
	"react":            {"javascript", "js", "jsx", "redux"},
	"angular":          {"javascript", "typescript", "rxjs"},
	"vue":              {"javascript", "vuex", "nuxt"},
	"sql":              {"mysql", "postgresql", "sqlite", "oracle"},
	"aws":              {"ec2", "s3", "lambda", "cloudformation"},
	"machine learning": {"tensorflow", "pytorch", "scikit-learn", "keras", "pandas", "numpy"},
	"data science":     {"python", "r", "pandas", "numpy", "matplotlib", "jupyter"},
}

const (
	relationConfidence  = 0.7
	substringConfidence = 0.6
	// substring containment only counts when both terms are longer than
	// this; short tokens like "go" embed in too many words. Known
	// limitation: short multi-word overlaps can still false-positive.
	minSubstringLen = 3
)

// partialSkillMatch looks for an indirect way the candidate covers the
// required skill: the curated relationship graph first, then substring
// containment in either direction.
func partialSkillMatch(required string, candidateSkills []string) (matched string, confidence float64) {
	for _, skill := range candidateSkills {
		s := strings.ToLower(skill)

		if related(required, s) || related(s, required) {
			return skill, relationConfidence
		}

		if len(required) > minSubstringLen && len(s) > minSubstringLen {
			if strings.Contains(s, required) || strings.Contains(required, s) {
				return skill, substringConfidence
			}
		}
	}
	return "", 0
}

func related(key, other string) bool {
	for _, rel := range skillRelations[key] {
		if rel == other {
			return true
		}
	}
	return false
}
