package dedup

import (
	"strings"

	"applyflow/internal/domain"
)

// Dedupe collapses a batch to unique postings: first by exact URL, then by
// (company, title) pair, keeping the first occurrence of each and
// preserving input order. Different platforms list the same role under
// different tracking URLs, which the second pass catches.
func Dedupe(in []domain.JobPosting) []domain.JobPosting {
	seenURL := map[string]bool{}
	seenPair := map[string]bool{}

	out := make([]domain.JobPosting, 0, len(in))
	for _, j := range in {
		url := strings.TrimSpace(j.URL)
		if url != "" {
			if seenURL[url] {
				continue
			}
			seenURL[url] = true
		}

		pair := pairKey(j.Company, j.Title)
		if pair != "" {
			if seenPair[pair] {
				continue
			}
			seenPair[pair] = true
		}

		out = append(out, j)
	}
	return out
}

func pairKey(company, title string) string {
	c := strings.ToLower(strings.TrimSpace(company))
	t := strings.ToLower(strings.TrimSpace(title))
	if c == "" && t == "" {
		return ""
	}
	return c + "\x00" + t
}
