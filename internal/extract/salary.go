package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	salaryRangeRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[-–]\s*(\d+(?:\.\d+)?)`)
	salarySingleRe = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	salaryStripRe  = regexp.MustCompile(`[^\d\s\-\.–]`)

	daysAgoRe   = regexp.MustCompile(`(\d+)\s*days?\s*ago`)
	weeksAgoRe  = regexp.MustCompile(`(\d+)\s*weeks?\s*ago`)
	monthsAgoRe = regexp.MustCompile(`(\d+)\s*months?\s*ago`)
)

// ParseSalary pulls a min/max pair out of free salary text.
// "$60,000 - $80,000" -> (60000, 80000); "75K per year" -> (75000, 75000).
// Returns zeros when nothing parseable is present.
func ParseSalary(text string) (min, max float64) {
	if text == "" {
		return 0, 0
	}

	lower := strings.ToLower(text)
	stripped := salaryStripRe.ReplaceAllString(strings.ReplaceAll(text, ",", ""), "")

	mult := 1.0
	if strings.Contains(lower, "k") || strings.Contains(lower, "thousand") {
		mult = 1000
	}
	if strings.Contains(lower, "lakh") {
		mult = 100000
	}

	if m := salaryRangeRe.FindStringSubmatch(stripped); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		return lo * mult, hi * mult
	}
	if m := salarySingleRe.FindStringSubmatch(stripped); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v * mult, v * mult
	}
	return 0, 0
}

// ParsePostedAt turns relative posting phrases ("2 days ago", "posted
// today") into a timestamp against now. Nil when unrecognized.
func ParsePostedAt(text string, now time.Time) *time.Time {
	if text == "" {
		return nil
	}
	t := strings.ToLower(strings.TrimSpace(text))

	switch {
	case strings.Contains(t, "today"), strings.Contains(t, "just posted"):
		return &now
	case strings.Contains(t, "yesterday"):
		d := now.AddDate(0, 0, -1)
		return &d
	}

	if m := daysAgoRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		d := now.AddDate(0, 0, -n)
		return &d
	}
	if m := weeksAgoRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		d := now.AddDate(0, 0, -7*n)
		return &d
	}
	if m := monthsAgoRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		d := now.AddDate(0, -n, 0)
		return &d
	}
	return nil
}
