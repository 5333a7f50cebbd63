package smartrecruiters

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"applyflow/internal/domain"
	"applyflow/internal/scrape/types"
	"applyflow/internal/scrape/util"
)

type Config struct {
	Boards []Board
}

// Board is one SmartRecruiters company, jobs.smartrecruiters.com/<slug>.
type Board struct {
	Slug string
	Name string
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
	base    string

	// Log receives board fetch problems; nil means log.Default.
	Log *log.Logger
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 25 * time.Second},
		limiter: limiter,
		base:    "https://api.smartrecruiters.com/v1/companies",
	}
}

func (s *Scraper) Name() string { return "smartrecruiters" }

// Public postings API:
// { "content": [...], "totalFound": N, "offset": O, "limit": L }
type postingsResponse struct {
	Content    []posting `json:"content"`
	TotalFound int       `json:"totalFound"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
}

type posting struct {
	ID           string    `json:"id"`
	UUID         string    `json:"uuid"`
	Name         string    `json:"name"`
	ReleasedDate time.Time `json:"releasedDate"`
	Ref          string    `json:"ref"`
	Location     struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
	} `json:"location"`
}

// Per-posting detail carries the job ad text in named sections.
type postingDetail struct {
	JobAd struct {
		Sections struct {
			CompanyDescription    adSection `json:"companyDescription"`
			JobDescription        adSection `json:"jobDescription"`
			Qualifications        adSection `json:"qualifications"`
			AdditionalInformation adSection `json:"additionalInformation"`
		} `json:"sections"`
	} `json:"jobAd"`
}

type adSection struct {
	Title string `json:"title"`
	Text  string `json:"text"` // html
}

func (s *Scraper) Fetch(ctx context.Context, opts types.Options) ([]domain.JobPosting, error) {
	var out []domain.JobPosting
	for _, b := range s.cfg.Boards {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}

		cctx, cancel := context.WithTimeout(ctx, 60*time.Second)
		jobs, err := s.fetchBoard(cctx, b, opts)
		cancel()

		if err != nil {
			s.logf("[ats:smartrecruiters] board=%q slug=%q err=%v", b.Name, b.Slug, err)
			continue
		}
		out = append(out, jobs...)
	}

	s.logf("[smartrecruiters] Processed: %d", len(out))
	return out, nil
}

func (s *Scraper) logf(format string, args ...any) {
	l := s.Log
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}

func (s *Scraper) fetchBoard(ctx context.Context, b Board, opts types.Options) ([]domain.JobPosting, error) {
	slug := strings.TrimSpace(b.Slug)
	if slug == "" {
		return nil, fmt.Errorf("empty slug")
	}
	listBase := fmt.Sprintf("%s/%s/postings", s.base, url.PathEscape(slug))

	company := b.Name
	if company == "" {
		company = slug
	}

	limit := 100
	offset := 0
	var out []domain.JobPosting

paging:
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		var pr postingsResponse
		u := fmt.Sprintf("%s?limit=%d&offset=%d", listBase, limit, offset)
		if err := s.getJSON(ctx, u, &pr); err != nil {
			return out, err
		}
		if len(pr.Content) == 0 {
			break
		}

		for _, p := range pr.Content {
			title := strings.TrimSpace(p.Name)
			id := strings.TrimSpace(firstNonEmpty(p.ID, p.UUID, p.Ref))
			if title == "" || id == "" {
				continue
			}
			// the listing has no ad text; match on title before paying
			// for the detail request
			if !util.MatchesAnyQuery(opts.Queries, title) {
				continue
			}

			jobURL := fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", slug, id)
			loc := util.NormalizeLocation(strings.Join(nonEmpty(p.Location.City, p.Location.Region, p.Location.Country), ", "))

			var postedAt *time.Time
			if !p.ReleasedDate.IsZero() {
				t := p.ReleasedDate.UTC()
				postedAt = &t
			}

			job := domain.JobPosting{
				Title:     title,
				Company:   company,
				Location:  loc,
				URL:       util.CanonicalizeURL(jobURL),
				Platform:  domain.PlatformSmartRecruiters,
				PostedAt:  postedAt,
				ScrapedAt: time.Now().UTC(),
				Status:    domain.StatusNew,
			}
			if desc, err := s.fetchDescription(ctx, listBase, id); err == nil {
				job.Description = desc
			}

			out = append(out, job)
			if opts.MaxPerSource > 0 && len(out) >= opts.MaxPerSource {
				break paging
			}
		}

		offset += limit
		if pr.TotalFound > 0 && offset >= pr.TotalFound {
			break
		}
		if offset > 5000 {
			break
		}
	}

	return out, nil
}

func (s *Scraper) fetchDescription(ctx context.Context, listBase, id string) (string, error) {
	var pd postingDetail
	u := fmt.Sprintf("%s/%s", listBase, url.PathEscape(id))
	if err := s.getJSON(ctx, u, &pd); err != nil {
		return "", err
	}

	secs := pd.JobAd.Sections
	parts := nonEmpty(
		util.HTMLToText(secs.CompanyDescription.Text),
		util.HTMLToText(secs.JobDescription.Text),
		util.HTMLToText(secs.Qualifications.Text),
		util.HTMLToText(secs.AdditionalInformation.Text),
	)
	return strings.Join(parts, "\n\n"), nil
}

func (s *Scraper) getJSON(ctx context.Context, u string, v any) error {
	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, u); err != nil {
			return err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	req.Header.Set("User-Agent", "applyflow/1.0 (+local)")
	req.Header.Set("Accept", "application/json")

	res, err := s.hc.Do(req)
	if err != nil {
		return fmt.Errorf("smartrecruiters get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("smartrecruiters status %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("smartrecruiters decode: %w", err)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
