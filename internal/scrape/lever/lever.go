package lever

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"applyflow/internal/domain"
	"applyflow/internal/scrape/types"
	"applyflow/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

type Config struct {
	Boards []Board
}

// Board is one hosted board, api.lever.co/v0/postings/<slug>.
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
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
		base:    "https://api.lever.co/v0/postings",
	}
}

func (s *Scraper) Name() string { return "lever" }

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"` // ms epoch
	Categories struct {
		Location string `json:"location"`
	} `json:"categories"`
	Description      string `json:"description"`      // html
	DescriptionPlain string `json:"descriptionPlain"` // not always present
}

func (s *Scraper) Fetch(ctx context.Context, opts types.Options) ([]domain.JobPosting, error) {
	var out []domain.JobPosting
	for _, b := range s.cfg.Boards {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}

		cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		jobs, err := s.fetchBoard(cctx, b, opts)
		cancel()

		if err != nil {
			s.logf("[ats:lever] board=%q slug=%q err=%v", b.Name, b.Slug, err)
			continue
		}
		out = append(out, jobs...)
	}

	s.logf("[lever] Processed: %d", len(out))
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
	apiURL := fmt.Sprintf("%s/%s?mode=json", s.base, b.Slug)

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", "applyflow/1.0 (+local)")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lever get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("lever status %d", res.StatusCode)
	}

	var postings []leverPosting
	if err := json.NewDecoder(res.Body).Decode(&postings); err != nil {
		return nil, fmt.Errorf("lever decode: %w", err)
	}

	company := b.Name
	if company == "" {
		company = b.Slug
	}

	out := make([]domain.JobPosting, 0, len(postings))
	for _, p := range postings {
		if p.ID == "" || p.HostedURL == "" || strings.TrimSpace(p.Text) == "" {
			continue
		}

		title := strings.TrimSpace(p.Text)
		desc := strings.TrimSpace(p.DescriptionPlain)
		if desc == "" {
			desc = util.HTMLToText(p.Description)
		}
		// the listing carries full descriptions, so match on both
		if !util.MatchesAnyQuery(opts.Queries, title, desc) {
			continue
		}

		var postedAt *time.Time
		if p.CreatedAt > 0 {
			t := time.UnixMilli(p.CreatedAt).UTC()
			postedAt = &t
		}

		out = append(out, domain.JobPosting{
			Title:       title,
			Company:     company,
			Location:    util.NormalizeLocation(p.Categories.Location),
			URL:         util.CanonicalizeURL(p.HostedURL),
			Description: desc,
			Platform:    domain.PlatformLever,
			PostedAt:    postedAt,
			ScrapedAt:   time.Now().UTC(),
			Status:      domain.StatusNew,
		})

		if opts.MaxPerSource > 0 && len(out) >= opts.MaxPerSource {
			break
		}
	}

	for i := range out {
		if out[i].Location == "" {
			_ = s.hydrateLocation(ctx, &out[i])
		}
	}

	return out, nil
}

// hydrateLocation scrapes the hosted posting page when the API gave no
// location category.
func (s *Scraper) hydrateLocation(ctx context.Context, j *domain.JobPosting) error {
	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, j.URL); err != nil {
			return err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, j.URL, nil)
	req.Header.Set("User-Agent", "applyflow/1.0 (+local)")

	res, err := s.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("job page status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return err
	}

	candidates := []string{
		"[data-qa='location']",
		".posting-categories .location",
		".posting-categories .sort-by-time",
		".location",
	}
	for _, sel := range candidates {
		if t := util.CleanText(doc.Find(sel).First().Text()); t != "" {
			j.Location = util.NormalizeLocation(t)
			return nil
		}
	}
	return nil
}
