package workday

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"applyflow/internal/domain"
	"applyflow/internal/scrape/types"
	"applyflow/internal/scrape/util"
)

type Config struct {
	Boards []Board
}

// Board is one hosted Workday site. Slug is the full board URL, e.g.
// https://acme.wd1.myworkdayjobs.com/en-US/External; tenant and site are
// derived from it.
type Board struct {
	Slug string
	Name string
}

type Scraper struct {
	cfg     Config
	limiter *util.HostLimiter

	// Hosts Cloudflare has challenged this run. Further boards on the same
	// host are skipped instead of burning requests on more challenges.
	blockedHost map[string]bool

	// Log receives board fetch problems; nil means log.Default.
	Log *log.Logger
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		cfg:         cfg,
		limiter:     limiter,
		blockedHost: map[string]bool{},
	}
}

func (s *Scraper) Name() string { return "workday" }

// board holds the pieces of a parsed Workday URL needed to build CXS
// endpoints: https://<tenant>.wdN.myworkdayjobs.com/[locale/]<site>.
type board struct {
	Scheme string
	Host   string
	Tenant string
	Site   string
	Locale string
}

// The CXS search endpoint takes a POST with paging fields and returns the
// postings for one page.
type searchRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type searchResponse struct {
	Total       int       `json:"total"`
	JobPostings []posting `json:"jobPostings"`
}

// Field names vary across tenants, hence the near-duplicate pairs.
type posting struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	ExternalPath     string `json:"externalPath"`
	ExternalURL      string `json:"externalUrl"`
	LocationsText    string `json:"locationsText"`
	Location         string `json:"location"`
	PostedOn         string `json:"postedOn"`
	PostedOnDate     string `json:"postedOnDate"`
	JobReqID         string `json:"jobRequisitionId"`
	JobRequisitionID string `json:"jobRequisitionID"`
}

// The per-posting CXS endpoint mirrors externalPath and carries the ad text.
type detailResponse struct {
	JobPostingInfo struct {
		Title          string `json:"title"`
		JobDescription string `json:"jobDescription"` // html
		Location       string `json:"location"`
	} `json:"jobPostingInfo"`
}

var ErrBlocked = errors.New("workday blocked by cloudflare")

func (s *Scraper) Fetch(ctx context.Context, opts types.Options) ([]domain.JobPosting, error) {
	var out []domain.JobPosting
	for _, b := range s.cfg.Boards {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}

		cctx, cancel := context.WithTimeout(ctx, 90*time.Second)
		jobs, err := s.fetchBoard(cctx, b, opts)
		cancel()

		if err != nil {
			if errors.Is(err, ErrBlocked) {
				s.logf("[ats:workday] board=%q host challenged, skipping", b.Name)
				continue
			}
			s.logf("[ats:workday] board=%q slug=%q err=%v", b.Name, b.Slug, err)
			continue
		}
		out = append(out, jobs...)
	}

	s.logf("[workday] Processed: %d", len(out))
	return out, nil
}

func (s *Scraper) logf(format string, args ...any) {
	l := s.Log
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}

func (s *Scraper) fetchBoard(ctx context.Context, cb Board, opts types.Options) ([]domain.JobPosting, error) {
	b, err := parseBoardURL(cb.Slug)
	if err != nil {
		return nil, err
	}
	if s.blockedHost[b.Host] {
		return nil, ErrBlocked
	}

	company := cb.Name
	if company == "" {
		company = b.Tenant
	}

	// Cookies and the CSRF token must persist across requests, so each
	// board gets its own jar-backed client.
	jar, _ := cookiejar.New(nil)
	hc := &http.Client{Jar: jar, Timeout: 30 * time.Second}

	csrf, err := s.bootstrap(ctx, hc, b, cb.Slug)
	if err != nil {
		if errors.Is(err, ErrBlocked) {
			s.blockedHost[b.Host] = true
		}
		return nil, err
	}

	limit := 50
	offset := 0
	var out []domain.JobPosting

paging:
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		var sr searchResponse
		if err := s.searchPage(ctx, hc, b, cb.Slug, csrf, limit, offset, &sr); err != nil {
			return out, err
		}
		if len(sr.JobPostings) == 0 {
			break
		}

		for _, p := range sr.JobPostings {
			title := strings.TrimSpace(p.Title)
			jobURL := b.absoluteJobURL(p)
			if title == "" || jobURL == "" {
				continue
			}
			// the search response has no ad text; match on title before
			// paying for the detail request
			if !util.MatchesAnyQuery(opts.Queries, title) {
				continue
			}

			loc := util.NormalizeLocation(firstNonEmpty(p.LocationsText, p.Location))

			job := domain.JobPosting{
				Title:     title,
				Company:   company,
				Location:  loc,
				URL:       util.CanonicalizeURL(jobURL),
				Platform:  domain.PlatformWorkday,
				PostedAt:  parsePostedAt(firstNonEmpty(p.PostedOnDate, p.PostedOn)),
				ScrapedAt: time.Now().UTC(),
				Status:    domain.StatusNew,
			}
			if desc, detailLoc, err := s.fetchDetail(ctx, hc, b, p.ExternalPath); err == nil {
				job.Description = desc
				if job.Location == "" {
					job.Location = util.NormalizeLocation(detailLoc)
				}
			}

			out = append(out, job)
			if opts.MaxPerSource > 0 && len(out) >= opts.MaxPerSource {
				break paging
			}
		}

		offset += limit
		if sr.Total > 0 && offset >= sr.Total {
			break
		}
		if offset > 5000 {
			break
		}
	}

	return out, nil
}

// bootstrap loads the board page once so the tenant sets its session
// cookies, and returns the CALYPSO_CSRF_TOKEN some tenants require on the
// search POST. A missing token is not fatal; most tenants accept the POST
// without it.
func (s *Scraper) bootstrap(ctx context.Context, hc *http.Client, b board, boardURL string) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, boardURL); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, boardURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", firstNonEmpty(b.Locale, "en-US"))

	res, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	preview, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	_, _ = io.Copy(io.Discard, res.Body)

	if looksLikeCloudflareBlock(res, string(preview)) {
		return "", ErrBlocked
	}

	u, _ := url.Parse(boardURL)
	for _, c := range hc.Jar.Cookies(u) {
		if c.Name == "CALYPSO_CSRF_TOKEN" && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", nil
}

func (s *Scraper) searchPage(ctx context.Context, hc *http.Client, b board, referer, csrf string, limit, offset int, sr *searchResponse) error {
	endpoint := b.searchEndpoint()
	payload, _ := json.Marshal(searchRequest{
		AppliedFacets: map[string]any{},
		Limit:         limit,
		Offset:        offset,
	})

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, endpoint); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", fmt.Sprintf("%s://%s", b.Scheme, b.Host))
	req.Header.Set("Referer", strings.TrimRight(referer, "/"))
	req.Header.Set("Accept-Language", firstNonEmpty(b.Locale, "en-US"))
	if csrf != "" {
		req.Header.Set("x-calypso-csrf-token", csrf)
	}

	res, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("workday search: %w", err)
	}
	data, _ := io.ReadAll(res.Body)
	res.Body.Close()

	if res.StatusCode >= 400 {
		if looksLikeCloudflareBlock(res, string(data)) {
			s.blockedHost[b.Host] = true
			return ErrBlocked
		}
		return fmt.Errorf("workday status %d body=%s", res.StatusCode, clipBody(string(data)))
	}
	if err := json.Unmarshal(data, sr); err != nil {
		return fmt.Errorf("workday decode: %w body=%s", err, clipBody(string(data)))
	}
	return nil
}

// fetchDetail pulls the posting's ad text from the CXS job endpoint, which
// mirrors externalPath under the site.
func (s *Scraper) fetchDetail(ctx context.Context, hc *http.Client, b board, externalPath string) (string, string, error) {
	path := strings.TrimSpace(externalPath)
	if path == "" {
		return "", "", errors.New("no external path")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	endpoint := fmt.Sprintf("%s://%s/wday/cxs/%s/%s%s", b.Scheme, b.Host, b.Tenant, b.Site, path)

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, endpoint); err != nil {
			return "", "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	res, err := hc.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("workday detail: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return "", "", fmt.Errorf("workday detail status %d", res.StatusCode)
	}

	var dr detailResponse
	if err := json.NewDecoder(res.Body).Decode(&dr); err != nil {
		return "", "", fmt.Errorf("workday detail decode: %w", err)
	}
	return util.HTMLToText(dr.JobPostingInfo.JobDescription), dr.JobPostingInfo.Location, nil
}

func parseBoardURL(raw string) (board, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return board{}, errors.New("empty board url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return board{}, err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Host == "" {
		return board{}, fmt.Errorf("missing host in %q", raw)
	}

	parts := strings.Split(u.Host, ".")
	if len(parts) < 3 {
		return board{}, fmt.Errorf("unexpected host %q", u.Host)
	}
	tenant := parts[0]

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return board{}, fmt.Errorf("unexpected path %q", u.Path)
	}

	// Board paths may carry a locale segment before the site, like
	// /en-US/External.
	locale := ""
	if len(segs) >= 2 && looksLikeLocale(segs[0]) {
		locale = normalizeLocale(segs[0])
		segs = segs[1:]
	}

	site := segs[len(segs)-1]
	if site == "" {
		return board{}, fmt.Errorf("could not derive site from path %q", u.Path)
	}

	return board{
		Scheme: u.Scheme,
		Host:   u.Host,
		Tenant: tenant,
		Site:   site,
		Locale: locale,
	}, nil
}

func looksLikeLocale(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != '-' {
		return false
	}
	return isAlpha(s[0:2]) && isAlpha(s[3:5])
}

func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 5 && s[2] == '-' {
		return strings.ToLower(s[0:2]) + "-" + strings.ToUpper(s[3:5])
	}
	return s
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return true
}

func (b board) searchEndpoint() string {
	base := fmt.Sprintf("%s://%s/wday/cxs/%s/%s/jobs", b.Scheme, b.Host, b.Tenant, b.Site)
	if b.Locale == "" {
		return base
	}
	return base + "?locale=" + url.QueryEscape(b.Locale)
}

func (b board) absoluteJobURL(p posting) string {
	if p.ExternalURL != "" {
		return strings.TrimSpace(p.ExternalURL)
	}
	path := strings.TrimSpace(p.ExternalPath)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s%s", b.Scheme, b.Host, path)
}

// parsePostedAt copes with the formats tenants actually emit: RFC3339,
// plain dates, and epoch strings in seconds or milliseconds.
func parsePostedAt(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		var t time.Time
		if n >= 1_000_000_000_000 {
			t = time.UnixMilli(n)
		} else {
			t = time.Unix(n, 0)
		}
		return &t
	}
	return nil
}

func looksLikeCloudflareBlock(res *http.Response, bodyPreview string) bool {
	server := strings.ToLower(res.Header.Get("Server"))
	cfRay := res.Header.Get("CF-RAY")
	if cfRay == "" {
		cfRay = res.Header.Get("cf-ray")
	}
	if strings.Contains(server, "cloudflare") && cfRay != "" {
		return true
	}

	low := strings.ToLower(bodyPreview)
	if strings.Contains(low, "/cdn-cgi/") ||
		(strings.Contains(low, "cloudflare") && strings.Contains(low, "checking your browser")) ||
		(strings.Contains(low, "attention required") && strings.Contains(low, "cloudflare")) {
		return true
	}

	return res.StatusCode == 403 || res.StatusCode == 429
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func clipBody(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)
	if len(s) <= 240 {
		return s
	}
	return s[:240] + "..."
}
