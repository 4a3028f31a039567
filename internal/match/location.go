package match

import "strings"

var locationSeparators = []string{",", "-", "/", "|"}

// LocationSimilarity is a deliberately coarse tiering, not geocoding:
// exact match 1.0, containment either way 0.8, a shared separator token
// longer than two characters 0.6, otherwise 0.0.
func LocationSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))

	if la == lb {
		return 1.0
	}
	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		return 0.8
	}

	for _, sep := range locationSeparators {
		if !strings.Contains(la, sep) || !strings.Contains(lb, sep) {
			continue
		}
		for _, pa := range splitTrim(la, sep) {
			for _, pb := range splitTrim(lb, sep) {
				if pa == pb && len(pa) > 2 {
					return 0.6
				}
			}
		}
	}
	return 0.0
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
