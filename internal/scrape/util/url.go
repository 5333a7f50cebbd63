package util

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var reLinkedInJobPath = regexp.MustCompile(`/jobs/view/(\d+)`)

// CanonicalizeURL normalizes a job URL so the same posting always maps to the
// same string: lowercased scheme and host, no fragment, tracking params
// stripped, remaining query sorted. LinkedIn job links collapse to the bare
// /jobs/view/<id>/ form regardless of how the alert email wrapped them.
func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	// drop common tracking params
	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" {
			q.Del(k)
		}
	}

	if strings.Contains(u.Host, "linkedin.com") {
		// /comm/jobs/view/123, /jobs/view/123/?trackingId=... all mean
		// the same posting
		if m := reLinkedInJobPath.FindStringSubmatch(u.Path); m != nil {
			u.Path = "/jobs/view/" + m[1] + "/"
			u.RawQuery = ""
			return u.String()
		}
		// keep only useful linkedin param currentJobId if present
		keep := url.Values{}
		if v := q.Get("currentJobId"); v != "" {
			keep.Set("currentJobId", v)
		}
		q = keep
	}

	// deterministic query
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// IsJunkURL reports whether u is a template or housekeeping link that can
// never be a job posting (unsubscribe footers, settings, tracking pixels).
func IsJunkURL(u string) bool {
	lu := strings.ToLower(u)

	junks := []string{
		"unsubscribe",
		"preferences",
		"manage-preferences",
		"email-preferences",
		"privacy",
		"terms",
		"view-in-browser",
		"viewaswebpage",
		"tracking",
		"pixel",
		"beacon",
		"/alerts",
		"/settings",
		"/help",
		"/legal",
	}
	for _, j := range junks {
		if strings.Contains(lu, j) {
			return true
		}
	}
	return false
}
