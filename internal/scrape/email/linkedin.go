package email_scrape

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"applyflow/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

// LinkedInJob is one posting lifted out of a job-alert email.
type LinkedInJob struct {
	Title    string
	Company  string
	Location string
	Salary   string // raw text, e.g. "$80K - $100K / year"
	URL      string // canonical /jobs/view/<id>/ form
	SourceID string // linkedin:<id> when the id is visible
}

var (
	reSalary = regexp.MustCompile(`\$\s?\d[\d,]*(?:K|M)?\s*(?:-\s*\$\s?\d[\d,]*(?:K|M)?)?\s*/\s*year`)
	reJobID  = regexp.MustCompile(`/jobs/view/(\d+)`)
	reMoney  = regexp.MustCompile(`\$\s?(\d[\d,]*(?:\.\d+)?)\s*(K|M)?`)
)

// ParseLinkedInJobAlertHTML merges all anchors pointing to the same job id
// into one job. Alert templates link each card several times (logo, title,
// footer), and the logo anchor tends to come first with no usable text.
// Output order follows first appearance in the email.
func ParseLinkedInJobAlertHTML(htmlBody string) ([]LinkedInJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}

	byID := map[string]*LinkedInJob{}
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || util.IsJunkURL(href) {
			return
		}

		lh := strings.ToLower(href)
		if !strings.Contains(lh, "linkedin.com") || !strings.Contains(lh, "/jobs/view/") {
			return
		}

		jobURL := util.CanonicalizeURL(unwrapRedirect(href))
		if jobURL == "" {
			return
		}

		sourceID := linkedInSourceID(jobURL)
		key := sourceID
		if key == "" {
			key = jobURL
		}

		j, ok := byID[key]
		if !ok {
			j = &LinkedInJob{
				URL:      jobURL,
				SourceID: sourceID,
			}
			byID[key] = j
			order = append(order, key)
		}

		// anchor text is only a title on some of the card's anchors
		titleCand := stripBadTitleSuffixes(util.CleanText(a.Text()))
		if betterTitle(titleCand, j.Title) {
			j.Title = titleCand
		}

		// surrounding card container
		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Closest("tr")
		}
		if card.Length() == 0 {
			card = a.Parent()
		}

		// "Company · Location" usually sits in a <p>
		card.Find("p").Each(func(_ int, p *goquery.Selection) {
			t := util.CleanText(p.Text())
			if t == "" {
				return
			}

			if j.Company == "" && j.Location == "" && strings.Contains(t, " · ") {
				parts := strings.SplitN(t, " · ", 2)
				j.Company = strings.TrimSpace(parts[0])
				j.Location = strings.TrimSpace(parts[1])
			}

			// some templates carry the title in a <p> too
			t2 := stripBadTitleSuffixes(t)
			if betterTitle(t2, j.Title) && !strings.Contains(t2, " · ") {
				j.Title = t2
			}
		})

		if j.Salary == "" {
			if blob := util.CleanText(card.Text()); blob != "" {
				if m := reSalary.FindString(blob); m != "" {
					j.Salary = strings.TrimSpace(m)
				}
			}
		}
	})

	// emit only jobs with both URL and title, in discovery order
	out := make([]LinkedInJob, 0, len(order))
	for _, key := range order {
		j := byID[key]
		if strings.TrimSpace(j.URL) == "" || strings.TrimSpace(j.Title) == "" {
			continue
		}
		out = append(out, *j)
	}

	return out, nil
}

// ParseSalaryRange turns "$80K - $100K / year" into numeric bounds. A single
// figure fills both. Currency is reported as USD; alert emails do not say.
func ParseSalaryRange(s string) (lo, hi float64, currency string) {
	ms := reMoney.FindAllStringSubmatch(s, -1)
	if len(ms) == 0 {
		return 0, 0, ""
	}

	var vals []float64
	for _, m := range ms {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		switch m[2] {
		case "K":
			v *= 1_000
		case "M":
			v *= 1_000_000
		}
		vals = append(vals, v)
		if len(vals) == 2 {
			break
		}
	}
	if len(vals) == 0 {
		return 0, 0, ""
	}

	lo = vals[0]
	hi = lo
	if len(vals) > 1 {
		hi = vals[1]
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo, hi, "USD"
}

func linkedInSourceID(jobURL string) string {
	if m := reJobID.FindStringSubmatch(jobURL); len(m) == 2 {
		return "linkedin:" + m[1]
	}
	return ""
}

// unwrapRedirect resolves tracking wrappers that put the real target in a
// query param.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	// wrapper with url= param
	if raw := u.Query().Get("url"); raw != "" {
		if uu, err := url.Parse(raw); err == nil && uu.Host != "" {
			return uu.String()
		}
	}

	// google redirect /url?q=
	if strings.Contains(strings.ToLower(u.Host), "google.") && strings.HasPrefix(u.Path, "/url") {
		if q := u.Query().Get("q"); q != "" {
			if uu, err := url.Parse(q); err == nil && uu.Host != "" {
				return uu.String()
			}
		}
	}

	if u.Host != "" {
		return u.String()
	}
	return href
}

func stripBadTitleSuffixes(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// common LinkedIn email junk that gets appended
	bads := []string{
		"Actively recruiting",
		"Easy Apply",
		"Promoted",
	}
	for _, b := range bads {
		s = strings.TrimSpace(strings.ReplaceAll(s, b, ""))
	}
	// avoid obvious non-titles
	low := strings.ToLower(s)
	if strings.Contains(low, "alumni") ||
		strings.Contains(low, "connections") ||
		strings.Contains(low, "applicants") ||
		strings.Contains(low, "school") {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

func betterTitle(candidate, current string) bool {
	c := strings.TrimSpace(candidate)
	if c == "" {
		return false
	}
	cur := strings.TrimSpace(current)

	// accept any plausible title when there is none yet
	if cur == "" {
		return titleScore(c) >= 5
	}

	cs := titleScore(c)
	ks := titleScore(cur)
	if ks >= 8 && cs < ks {
		return false
	}

	// only replace when meaningfully better, to avoid flip-flopping
	return cs >= ks+3
}

func titleScore(s string) int {
	orig := strings.TrimSpace(s)
	if orig == "" {
		return -100
	}

	l := strings.ToLower(orig)
	score := 0

	if strings.Contains(l, "unsubscribe") || (strings.Contains(l, "manage") && strings.Contains(l, "alert")) {
		return -50
	}
	if strings.Contains(l, "http://") || strings.Contains(l, "https://") || strings.Contains(l, "www.") {
		return -30
	}

	// salary-ish
	if strings.ContainsAny(orig, "$€£") {
		score -= 8
	}
	if strings.Contains(l, "per hour") || strings.Contains(l, "/hour") || strings.Contains(l, "/hr") ||
		strings.Contains(l, "per year") || strings.Contains(l, "/year") || strings.Contains(l, "/yr") {
		score -= 6
	}
	if strings.Count(orig, "-") >= 1 && (strings.ContainsAny(orig, "$€£") || strings.Contains(l, "k")) {
		score -= 4
	}

	// CTA-ish
	for _, bad := range []string{"apply", "view job", "see job", "see details", "learn more", "sign in"} {
		if strings.Contains(l, bad) {
			score -= 6
		}
	}

	// location-ish
	for _, loc := range []string{"remote", "hybrid", "on-site", "onsite", "united states", "usa"} {
		if strings.Contains(l, loc) {
			score -= 3
		}
	}

	// separator soup often means concatenated row data
	if strings.Count(orig, "|") >= 1 || strings.Count(orig, "•") >= 1 {
		score -= 2
	}

	titleWords := []string{
		"engineer", "developer", "software", "backend", "frontend", "full stack", "full-stack",
		"platform", "cloud", "devops", "sre", "security", "embedded", "firmware",
		"data", "ml", "ai", "scientist", "analyst", "architect",
		"manager", "director", "lead", "principal", "staff", "intern", "technician",
	}
	for _, w := range titleWords {
		if strings.Contains(l, w) {
			score += 4
			break
		}
	}

	for _, w := range []string{"sr", "senior", "jr", "junior", "i", "ii", "iii", "iv", "principal", "staff", "lead"} {
		if containsWord(l, w) {
			score += 2
		}
	}

	// shape heuristics
	n := len([]rune(orig))
	if n >= 6 && n <= 80 {
		score += 2
	} else if n < 4 || n > 140 {
		score -= 6
	}

	// looks like a sentence / description
	if strings.HasSuffix(orig, ".") || strings.Contains(l, "you will") || strings.Contains(l, "we are") {
		score -= 4
	}

	// too many digits is suspicious (ids/salary)
	digits := 0
	for _, r := range orig {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits >= 6 {
		score -= 4
	}

	return score
}

// containsWord checks for whole-word-ish match in a cheap way, so "sr" does
// not match inside "sre".
func containsWord(haystackLower, needleLower string) bool {
	bounds := func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '\r', '-', '/', '\\', '(', ')', '[', ']', '{', '}', ',', '.', ':', ';', '|':
			return true
		default:
			return false
		}
	}

	idx := strings.Index(haystackLower, needleLower)
	for idx != -1 {
		leftOK := idx == 0 || bounds(rune(haystackLower[idx-1]))
		rightIdx := idx + len(needleLower)
		rightOK := rightIdx == len(haystackLower) || bounds(rune(haystackLower[rightIdx]))
		if leftOK && rightOK {
			return true
		}
		next := strings.Index(haystackLower[idx+1:], needleLower)
		if next == -1 {
			break
		}
		idx = idx + 1 + next
	}
	return false
}
