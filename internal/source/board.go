package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/extract"
)

// BoardPage scrapes one job-board listing page. The selectors cover the
// common board layouts (greenhouse-style .opening rows and generic
// .job-listing cards).
type BoardPage struct {
	BoardName string
	URL       string
	hc        *http.Client
}

func NewBoardPage(name, pageURL string) *BoardPage {
	return &BoardPage{
		BoardName: name,
		URL:       pageURL,
		hc:        &http.Client{Timeout: 20 * time.Second},
	}
}

func (s *BoardPage) Name() string { return "board:" + s.BoardName }

func (s *BoardPage) Fetch(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	req.Header.Set("User-Agent", userAgent)

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("board get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("board status %d from %s", res.StatusCode, s.URL)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("board parse: %w", err)
	}

	base, _ := url.Parse(s.URL)
	now := time.Now()

	var out []domain.Listing
	doc.Find("div.opening, li.job-listing, .job-card").Each(func(_ int, sel *goquery.Selection) {
		l := s.parseRow(sel, base, now)
		if l.Valid() && MatchesQuery(l, q) {
			out = append(out, l)
		}
	})
	return out, nil
}

func (s *BoardPage) parseRow(sel *goquery.Selection, base *url.URL, now time.Time) domain.Listing {
	link := sel.Find("a").First()

	l := domain.Listing{
		Title:       extract.CleanText(link.Text()),
		Company:     s.company(sel),
		Location:    extract.NormalizeLocation(sel.Find(".location, [data-qa='location']").First().Text()),
		Description: extract.CleanText(sel.Find(".description, .job-snippet").First().Text()),
		Source:      s.Name(),
	}
	if l.Title == "" {
		l.Title = extract.CleanText(sel.Find("h2, h3, .job-title").First().Text())
	}

	if href, ok := link.Attr("href"); ok {
		if u, err := url.Parse(strings.TrimSpace(href)); err == nil {
			l.ApplyTarget = base.ResolveReference(u).String()
		}
	}

	if sal := extract.CleanText(sel.Find(".salary, .compensation").First().Text()); sal != "" {
		l.SalaryMin, l.SalaryMax = extract.ParseSalary(sal)
	}
	if posted := extract.CleanText(sel.Find(".posted, .date, time").First().Text()); posted != "" {
		l.PostedAt = extract.ParsePostedAt(posted, now)
	}
	return l
}

func (s *BoardPage) company(sel *goquery.Selection) string {
	if c := extract.CleanText(sel.Find(".company, [data-qa='company']").First().Text()); c != "" {
		return c
	}
	// Boards hosted by a single employer rarely repeat the name per row.
	return s.BoardName
}
