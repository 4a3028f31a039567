package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/extract"
)

const userAgent = "JobPilot/1.0 (+local)"

// PostingsAPI pulls listings from JSON postings endpoints. The query is
// passed through as parameters; responses that ignore them get filtered
// client-side.
type PostingsAPI struct {
	Endpoints []string
	hc        *http.Client
}

func NewPostingsAPI(endpoints []string) *PostingsAPI {
	return &PostingsAPI{
		Endpoints: endpoints,
		hc:        &http.Client{Timeout: 20 * time.Second},
	}
}

func (s *PostingsAPI) Name() string { return "api" }

type apiPosting struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Salary       string   `json:"salary"`
	SalaryMin    float64  `json:"salary_min"`
	SalaryMax    float64  `json:"salary_max"`
	ApplyURL     string   `json:"apply_url"`
	ContactEmail string   `json:"contact_email"`
	PostedAt     string   `json:"posted_at"`
}

func (s *PostingsAPI) Fetch(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
	var out []domain.Listing
	var lastErr error

	for _, endpoint := range s.Endpoints {
		got, err := s.fetchEndpoint(ctx, endpoint, q)
		if err != nil {
			lastErr = err
			continue
		}
		out = append(out, got...)
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (s *PostingsAPI) fetchEndpoint(ctx context.Context, endpoint string, q domain.Query) ([]domain.Listing, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("endpoint %q: %w", endpoint, err)
	}
	vals := u.Query()
	if q.Keywords != "" {
		vals.Set("q", q.Keywords)
	}
	if q.Location != "" {
		vals.Set("location", q.Location)
	}
	if q.MaxResults > 0 {
		vals.Set("limit", strconv.Itoa(q.MaxResults))
	}
	u.RawQuery = vals.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("postings get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("postings status %d from %s", res.StatusCode, u.Host)
	}

	var postings []apiPosting
	if err := json.NewDecoder(res.Body).Decode(&postings); err != nil {
		return nil, fmt.Errorf("postings decode: %w", err)
	}

	out := make([]domain.Listing, 0, len(postings))
	for _, p := range postings {
		l := domain.Listing{
			Title:        strings.TrimSpace(p.Title),
			Company:      strings.TrimSpace(p.Company),
			Location:     extract.NormalizeLocation(p.Location),
			Description:  extract.CleanText(p.Description),
			Requirements: strings.Join(p.Requirements, "; "),
			SalaryMin:    p.SalaryMin,
			SalaryMax:    p.SalaryMax,
			Source:       s.Name(),
		}
		if l.SalaryMin == 0 && l.SalaryMax == 0 && p.Salary != "" {
			l.SalaryMin, l.SalaryMax = extract.ParseSalary(p.Salary)
		}
		switch {
		case p.ApplyURL != "":
			l.ApplyTarget = p.ApplyURL
		case p.ContactEmail != "":
			l.ApplyTarget = "mailto:" + p.ContactEmail
		}
		if p.PostedAt != "" {
			if t, err := time.Parse(time.RFC3339, p.PostedAt); err == nil {
				l.PostedAt = &t
			} else {
				l.PostedAt = extract.ParsePostedAt(p.PostedAt, time.Now())
			}
		}
		if MatchesQuery(l, q) {
			out = append(out, l)
		}
	}
	return out, nil
}
