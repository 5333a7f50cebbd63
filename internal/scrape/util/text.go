package util

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var reTags = regexp.MustCompile(`(?is)<[^>]+>`)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// HTMLToText flattens an HTML fragment into plain text. Good enough for job
// descriptions headed into a prompt; layout is not preserved.
func HTMLToText(s string) string {
	s = reTags.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimPrefix(loc, "LOCATIONS:")
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// FindLocation pulls a location string out of a job posting page, trying the
// selectors the hosted boards actually use before falling back to labeled
// text in the body.
func FindLocation(doc *goquery.Document) string {
	candidates := []string{
		".location",
		".opening .location",
		".job__location",
		".app-title + .location",
		"[data-testid='job-location']",
		"[data-testid='location']",
	}

	for _, sel := range candidates {
		if t := CleanText(doc.Find(sel).First().Text()); t != "" {
			return NormalizeLocation(t)
		}
	}

	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if loc := ExtractLocationFromLabeledText(v); loc != "" {
			return NormalizeLocation(loc)
		}
	}

	body := CleanText(doc.Find("body").Text())
	if loc := ExtractLocationFromLabeledText(body); loc != "" {
		return NormalizeLocation(loc)
	}

	return ""
}

// extracts after "Location" patterns in plain text
func ExtractLocationFromLabeledText(s string) string {
	low := strings.ToLower(s)

	labels := []string{
		"location:",
		"locations:",
		"job location:",
	}

	for _, lab := range labels {
		if i := strings.Index(low, lab); i >= 0 {
			start := i + len(lab)
			rest := strings.TrimSpace(s[start:])

			for _, cut := range []string{"\n", "\r", " | ", " · "} {
				if j := strings.Index(rest, cut); j >= 0 {
					rest = rest[:j]
				}
			}

			rest = CleanText(rest)
			if rest != "" && len(rest) <= 80 {
				return rest
			}
		}
	}
	return ""
}
