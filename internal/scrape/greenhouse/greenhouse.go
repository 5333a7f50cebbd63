package greenhouse

import (
	"context"
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

// Board is one hosted board, boards.greenhouse.io/<slug>.
type Board struct {
	Slug string
	Name string // company display name
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
		base:    "https://boards.greenhouse.io",
	}
}

func (s *Scraper) Name() string { return "greenhouse" }

func (s *Scraper) Fetch(ctx context.Context, opts types.Options) ([]domain.JobPosting, error) {
	var out []domain.JobPosting
	for _, b := range s.cfg.Boards {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		jobs, err := s.fetchBoard(ctx, b, opts)
		if err != nil {
			// one board being down is not a reason to lose the rest
			s.logf("[ats:greenhouse] board=%q slug=%q err=%v", b.Name, b.Slug, err)
			continue
		}
		out = append(out, jobs...)
	}
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
	boardURL := fmt.Sprintf("%s/%s", s.base, b.Slug)

	doc, err := s.get(ctx, boardURL)
	if err != nil {
		return nil, err
	}

	company := b.Name
	if company == "" {
		company = b.Slug
	}

	// Boards link each opening as /<slug>/jobs/<id>. Titles live in the
	// anchor text on most boards; the rest resolve during hydration.
	seen := map[string]bool{}
	var jobs []domain.JobPosting

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		abs := href
		if strings.HasPrefix(href, "/") {
			abs = s.base + href
		}
		low := strings.ToLower(abs)
		if !strings.Contains(low, "greenhouse.io") && !strings.HasPrefix(abs, s.base) {
			return
		}
		if !strings.Contains(low, "/jobs/") {
			return
		}

		jobID := extractJobID(abs)
		if jobID == "" {
			return
		}
		key := b.Slug + ":" + jobID
		if seen[key] {
			return
		}
		seen[key] = true

		title := util.CleanText(a.Text())
		if looksLikeJunkTitle(title) {
			// some boards wrap titles weird; the job page has the real one
			title = ""
		}
		// match against queries before spending a request per job
		if title != "" && !util.MatchesAnyQuery(opts.Queries, title) {
			return
		}

		jobs = append(jobs, domain.JobPosting{
			Title:     title,
			Company:   company,
			URL:       util.CanonicalizeURL(abs),
			Platform:  domain.PlatformGreenhouse,
			ScrapedAt: time.Now().UTC(),
			Status:    domain.StatusNew,
		})
	})

	if opts.MaxPerSource > 0 && len(jobs) > opts.MaxPerSource {
		jobs = jobs[:opts.MaxPerSource]
	}

	var out []domain.JobPosting
	for i := range jobs {
		// hydrate errors keep the minimal entry; title-only may still do
		_ = s.hydrate(ctx, &jobs[i])

		if jobs[i].Title == "" {
			continue
		}
		if !util.MatchesAnyQuery(opts.Queries, jobs[i].Title) {
			continue
		}
		out = append(out, jobs[i])
	}
	return out, nil
}

// hydrate fills title, location and description from the job page itself.
func (s *Scraper) hydrate(ctx context.Context, j *domain.JobPosting) error {
	doc, err := s.get(ctx, j.URL)
	if err != nil {
		return err
	}

	if j.Title == "" {
		if t := util.CleanText(doc.Find("h1").First().Text()); t != "" {
			j.Title = t
		}
	}

	if loc := util.FindLocation(doc); loc != "" {
		j.Location = loc
	}

	if sel := doc.Find("#content").First(); sel.Length() > 0 {
		if h, err := sel.Html(); err == nil {
			j.Description = util.HTMLToText(h)
		}
	}
	if j.Description == "" {
		if t := util.CleanText(doc.Find(".job__description").First().Text()); t != "" {
			j.Description = t
		}
	}

	return nil
}

func (s *Scraper) get(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, rawURL); err != nil {
			return nil, err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	req.Header.Set("User-Agent", "applyflow/1.0 (+local)")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("greenhouse status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("greenhouse parse html: %w", err)
	}
	return doc, nil
}

func extractJobID(u string) string {
	// split on /jobs/ and take the next run of digits
	parts := strings.Split(u, "/jobs/")
	if len(parts) < 2 {
		return ""
	}
	id := ""
	for _, r := range parts[1] {
		if r >= '0' && r <= '9' {
			id += string(r)
		} else {
			break
		}
	}
	return id
}

func looksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return l == "" || strings.Contains(l, "view job") || strings.Contains(l, "apply")
}
