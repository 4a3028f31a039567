package domain

// Preferences are the candidate's search preferences. Owned by the
// caller; the engine only reads them.
type Preferences struct {
	Locations          []string `json:"locations" yaml:"locations"`
	JobTypes           []string `json:"job_types" yaml:"job_types"`
	SalaryMin          float64  `json:"salary_min" yaml:"salary_min"`
	SalaryMax          float64  `json:"salary_max" yaml:"salary_max"`
	PreferredCompanies []string `json:"preferred_companies" yaml:"preferred_companies"`
	AvoidedCompanies   []string `json:"avoided_companies" yaml:"avoided_companies"`
	RemotePreferred    bool     `json:"remote_preferred" yaml:"remote_preferred"`
}

type CandidateProfile struct {
	ID              string      `json:"id" yaml:"id"`
	Name            string      `json:"name" yaml:"name"`
	Email           string      `json:"email" yaml:"email"`
	Phone           string      `json:"phone" yaml:"phone"`
	Skills          []string    `json:"skills" yaml:"skills"`
	ExperienceYears int         `json:"experience_years" yaml:"experience_years"`
	Location        string      `json:"location" yaml:"location"`
	Preferences     Preferences `json:"preferences" yaml:"preferences"`
}
