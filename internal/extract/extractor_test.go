package extract

import (
	"reflect"
	"testing"
	"time"

	"jobpilot-engine/internal/domain"
)

func TestListingSkillExtraction(t *testing.T) {
	l := domain.Listing{
		Title:       "Backend Engineer",
		Company:     "Acme",
		Description: "We use Python and Docker heavily. Experience with PostgreSQL is a plus.",
	}
	fs := Listing(l)

	want := []string{"python", "postgresql", "docker"}
	if !reflect.DeepEqual(fs.Skills, want) {
		t.Errorf("Skills = %v, want %v (catalog order)", fs.Skills, want)
	}
}

func TestListingWordBoundaries(t *testing.T) {
	// "golang" must not fire the javascript "js" pattern or similar
	// short-token catalogs.
	fs := Listing(domain.Listing{
		Title:       "Dev",
		Company:     "X",
		Description: "bonjs javadoc agogo",
	})
	if len(fs.Skills) != 0 {
		t.Errorf("Skills = %v, want none from embedded tokens", fs.Skills)
	}
}

func TestListingEmptyTextYieldsEmptySet(t *testing.T) {
	fs := Listing(domain.Listing{Title: "X", Company: "Y"})
	if len(fs.Skills) != 0 || len(fs.Benefits) != 0 || len(fs.Education) != 0 {
		t.Errorf("expected empty feature set, got %+v", fs)
	}
	if fs.Level != domain.LevelEntry {
		t.Errorf("Level = %v, want entry fallback", fs.Level)
	}
}

func TestListingStructuredSalaryWins(t *testing.T) {
	fs := Listing(domain.Listing{
		Title:       "Dev",
		Company:     "X",
		Description: "Salary 10 - 20",
		SalaryMin:   90000,
		SalaryMax:   120000,
	})
	if fs.SalaryMin != 90000 || fs.SalaryMax != 120000 {
		t.Errorf("salary = %v-%v, want structured fields kept", fs.SalaryMin, fs.SalaryMax)
	}
}

func TestExperienceLevelDetection(t *testing.T) {
	tests := []struct {
		text string
		want domain.ExperienceLevel
	}{
		{"Senior Backend Engineer", domain.LevelSenior},
		{"Staff Engineer, Platform", domain.LevelLead},
		{"junior developer wanted", domain.LevelEntry},
		{"mid-level position", domain.LevelMid},
		{"lead overrides senior engineer", domain.LevelLead},
		{"plain developer", domain.LevelEntry},
	}
	for _, tt := range tests {
		fs := Listing(domain.Listing{Title: tt.text, Company: "X"})
		if fs.Level != tt.want {
			t.Errorf("level(%q) = %v, want %v", tt.text, fs.Level, tt.want)
		}
	}
}

func TestProfileFeatureSet(t *testing.T) {
	p := domain.CandidateProfile{
		Skills:          []string{"Python", " python ", "Docker"},
		ExperienceYears: 6,
		Location:        "Berlin",
		Preferences:     domain.Preferences{SalaryMin: 70000, RemotePreferred: true},
	}
	fs := Profile(p)

	if !reflect.DeepEqual(fs.Skills, []string{"python", "docker"}) {
		t.Errorf("Skills = %v, want deduplicated lowercase", fs.Skills)
	}
	if fs.Level != domain.LevelSenior {
		t.Errorf("Level = %v, want senior for 6 years", fs.Level)
	}
	if !fs.RemoteFlag {
		t.Error("RemoteFlag not carried from preferences")
	}
}

func TestParseSalary(t *testing.T) {
	tests := []struct {
		in       string
		min, max float64
	}{
		{"$60,000 - $80,000", 60000, 80000},
		{"75K per year", 75000, 75000},
		{"60k-80k", 60000, 80000},
		{"2 - 3 lakh", 200000, 300000},
		{"competitive", 0, 0},
		{"", 0, 0},
	}
	for _, tt := range tests {
		lo, hi := ParseSalary(tt.in)
		if lo != tt.min || hi != tt.max {
			t.Errorf("ParseSalary(%q) = (%v, %v), want (%v, %v)", tt.in, lo, hi, tt.min, tt.max)
		}
	}
}

func TestParsePostedAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want *time.Time
	}{
		{"posted today", &now},
		{"2 days ago", timePtr(now.AddDate(0, 0, -2))},
		{"3 weeks ago", timePtr(now.AddDate(0, 0, -21))},
		{"1 month ago", timePtr(now.AddDate(0, -1, 0))},
		{"last century", nil},
	}
	for _, tt := range tests {
		got := ParsePostedAt(tt.in, now)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("ParsePostedAt(%q) = %v, want nil", tt.in, got)
		case tt.want != nil && (got == nil || !got.Equal(*tt.want)):
			t.Errorf("ParsePostedAt(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestCleanText(t *testing.T) {
	in := "  hello  world \n\t again  "
	if got := CleanText(in); got != "hello world again" {
		t.Errorf("CleanText = %q", got)
	}
}

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Location: Berlin, Germany", "Berlin, Germany"},
		{"Berlin, berlin, Germany", "Berlin, Germany"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeLocation(tt.in); got != tt.want {
			t.Errorf("NormalizeLocation(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
