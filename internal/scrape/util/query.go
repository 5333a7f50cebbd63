package util

import "strings"

// MatchesAnyQuery reports whether any configured search query appears in any
// of the given fields, case-insensitively. Hosted boards list every open role
// in every department, so this is what keeps marketing and finance postings
// out of a software search. An empty query list matches everything.
func MatchesAnyQuery(queries []string, fields ...string) bool {
	cleaned := make([]string, 0, len(queries))
	for _, q := range queries {
		if q = strings.ToLower(strings.TrimSpace(q)); q != "" {
			cleaned = append(cleaned, q)
		}
	}
	if len(cleaned) == 0 {
		return true
	}

	var blob strings.Builder
	for _, f := range fields {
		blob.WriteString(strings.ToLower(f))
		blob.WriteByte(' ')
	}
	hay := blob.String()

	for _, q := range cleaned {
		if strings.Contains(hay, q) {
			return true
		}
	}
	return false
}
