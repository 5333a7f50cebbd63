package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"applyflow/internal/config"
	"applyflow/internal/domain"
)

// Reject reasons recorded in the archive.
const (
	ReasonStale         = "stale"
	ReasonLocation      = "location"
	ReasonSeniorKeyword = "senior_keyword"
	ReasonYearsExceeded = "years_exceeded"
)

// Years-of-experience mentions. A range takes its upper bound.
var yearsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\+?\s*(?:to|-)\s*(\d+)\s*years?`), // "3-5 years", "3 to 5 years"
	regexp.MustCompile(`(?i)(\d+)\+\s*years?`),                    // "5+ years"
	regexp.MustCompile(`(?i)(\d+)\s*years?\s*(?:of)?\s*experience`),
}

type Filter struct {
	MaxYears       int
	SeniorKeywords []string
	JuniorKeywords []string
	Locations      []string // folded; empty allows everything
	Window         time.Duration
}

func New(cfg config.Config) *Filter {
	locs := make([]string, 0, len(cfg.Search.Locations))
	for _, l := range cfg.Search.Locations {
		locs = append(locs, Fold(l))
	}
	return &Filter{
		MaxYears:       cfg.Filter.MaxYearsExperience,
		SeniorKeywords: cfg.Filter.SeniorKeywords,
		JuniorKeywords: cfg.Filter.JuniorKeywords,
		Locations:      locs,
		Window:         time.Duration(cfg.Search.HoursOld) * time.Hour,
	}
}

// ExtractYearsRequired returns the maximum years figure mentioned anywhere
// in text, considering every match of every pattern. ok is false when no
// pattern matches.
func ExtractYearsRequired(text string) (years int, ok bool) {
	if text == "" {
		return 0, false
	}
	maxYears := 0
	for _, pat := range yearsPatterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			for _, g := range m[1:] {
				if g == "" {
					continue
				}
				n, err := strconv.Atoi(g)
				if err != nil {
					continue
				}
				if n > maxYears {
					maxYears = n
				}
				ok = true
			}
		}
	}
	return maxYears, ok
}

func (f *Filter) IsSenior(title, description string) bool {
	return containsAny(title+" "+description, f.SeniorKeywords)
}

func (f *Filter) IsJunior(title, description string) bool {
	return containsAny(title+" "+description, f.JuniorKeywords)
}

// PassesExperience decides whether a posting fits the target seniority band:
//  1. a senior keyword rejects outright;
//  2. a years requirement over MaxYears rejects, unless a junior keyword is
//     also present (broad ranges on explicitly junior postings are accepted);
//  3. everything else passes.
func (f *Filter) PassesExperience(title, description string) bool {
	if f.IsSenior(title, description) {
		return false
	}
	if years, ok := ExtractYearsRequired(description); ok && years > f.MaxYears {
		return f.IsJunior(title, description)
	}
	return true
}

// Decision is the outcome of Evaluate for one posting.
type Decision struct {
	Accept      bool
	Reason      string // empty when accepted
	JuniorMatch bool
	Years       *int
}

// Evaluate runs the recency, location, and seniority checks in order and
// derives the junior-match and experience-years fields regardless of
// outcome, so rejected postings are archived with the same detail.
func (f *Filter) Evaluate(j domain.JobPosting) Decision {
	var d Decision
	d.JuniorMatch = f.IsJunior(j.Title, j.Description)
	if years, ok := ExtractYearsRequired(j.Description); ok {
		d.Years = &years
	}

	if f.Window > 0 && j.PostedAt != nil && time.Since(*j.PostedAt) > f.Window {
		d.Reason = ReasonStale
		return d
	}
	if !f.matchesLocation(j.Location) {
		d.Reason = ReasonLocation
		return d
	}
	if f.IsSenior(j.Title, j.Description) {
		d.Reason = ReasonSeniorKeyword
		return d
	}
	if d.Years != nil && *d.Years > f.MaxYears && !d.JuniorMatch {
		d.Reason = ReasonYearsExceeded
		return d
	}

	d.Accept = true
	return d
}

// Enrich copies the derived fields onto the posting.
func (d Decision) Enrich(j *domain.JobPosting) {
	j.JuniorMatch = d.JuniorMatch
	j.ExperienceYears = d.Years
}

func containsAny(text string, keywords []string) bool {
	t := strings.ToLower(text)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}
