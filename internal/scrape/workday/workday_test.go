package workday

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"applyflow/internal/domain"
	"applyflow/internal/scrape/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchJSON = `{
  "total": 2,
  "jobPostings": [
    {"title":"Backend Engineer","externalPath":"/job/Toronto-ON/Backend-Engineer_R100",
     "locationsText":"Toronto, ON","postedOnDate":"2026-08-20","jobRequisitionId":"R100"},
    {"title":"Account Executive","externalPath":"/job/Austin/AE_R101"}
  ]
}`

const detailJSON = `{
  "jobPostingInfo": {
    "title": "Backend Engineer",
    "jobDescription": "<p>Build Go services.</p><ul><li>3+ years experience</li></ul>",
    "location": "Toronto, ON"
  }
}`

func TestParseBoardURL(t *testing.T) {
	b, err := parseBoardURL("https://acme.wd1.myworkdayjobs.com/External")
	require.NoError(t, err)
	assert.Equal(t, "https", b.Scheme)
	assert.Equal(t, "acme.wd1.myworkdayjobs.com", b.Host)
	assert.Equal(t, "acme", b.Tenant)
	assert.Equal(t, "External", b.Site)
	assert.Equal(t, "", b.Locale)

	b, err = parseBoardURL("acme.wd5.myworkdayjobs.com/en-us/Careers")
	require.NoError(t, err)
	assert.Equal(t, "https", b.Scheme, "scheme defaults to https")
	assert.Equal(t, "en-US", b.Locale)
	assert.Equal(t, "Careers", b.Site)

	for _, bad := range []string{"", "https://nohost", "https://acme.wd1.myworkdayjobs.com"} {
		_, err := parseBoardURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestSearchEndpointCarriesLocale(t *testing.T) {
	b := board{Scheme: "https", Host: "acme.wd1.myworkdayjobs.com", Tenant: "acme", Site: "Careers", Locale: "en-US"}
	assert.Equal(t, "https://acme.wd1.myworkdayjobs.com/wday/cxs/acme/Careers/jobs?locale=en-US", b.searchEndpoint())

	b.Locale = ""
	assert.Equal(t, "https://acme.wd1.myworkdayjobs.com/wday/cxs/acme/Careers/jobs", b.searchEndpoint())
}

func TestFetchSearchesAndHydrates(t *testing.T) {
	var detailHits int
	var gotCSRF string

	mux := http.NewServeMux()
	mux.HandleFunc("/External", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "CALYPSO_CSRF_TOKEN", Value: "tok123", Path: "/"})
		fmt.Fprint(w, "<html><body>careers</body></html>")
	})
	mux.HandleFunc("/wday/cxs/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/jobs") {
			gotCSRF = r.Header.Get("x-calypso-csrf-token")
			fmt.Fprint(w, searchJSON)
			return
		}
		detailHits++
		fmt.Fprint(w, detailJSON)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := New(Config{Boards: []Board{{Slug: srv.URL + "/External", Name: "Acme"}}}, nil)

	jobs, err := s.Fetch(context.Background(), types.Options{
		Queries: []string{"backend engineer"},
	})
	require.NoError(t, err)
	require.Len(t, jobs, 1, "the sales posting should not match the queries")

	j := jobs[0]
	assert.Equal(t, "Backend Engineer", j.Title)
	assert.Equal(t, "Acme", j.Company)
	assert.Equal(t, "Toronto, ON", j.Location)
	assert.Equal(t, srv.URL+"/job/Toronto-ON/Backend-Engineer_R100", j.URL)
	assert.Equal(t, "Build Go services. 3+ years experience", j.Description)
	assert.Equal(t, domain.PlatformWorkday, j.Platform)
	require.NotNil(t, j.PostedAt)
	assert.Equal(t, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), *j.PostedAt)

	assert.Equal(t, "tok123", gotCSRF, "the bootstrap token rides the search request")
	assert.Equal(t, 1, detailHits, "only matching postings should be hydrated")
}

func TestFetchSkipsChallengedHost(t *testing.T) {
	var bootstrapHits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bootstrapHits++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := New(Config{Boards: []Board{
		{Slug: srv.URL + "/External", Name: "Acme"},
		{Slug: srv.URL + "/Careers", Name: "Acme Retail"},
	}}, nil)

	jobs, err := s.Fetch(context.Background(), types.Options{})
	require.NoError(t, err, "a challenged host is logged, not fatal")
	assert.Empty(t, jobs)
	assert.Equal(t, 1, bootstrapHits, "the second board on the host must not be attempted")
}

func TestParsePostedAtFormats(t *testing.T) {
	got := parsePostedAt("2026-08-20T10:30:00Z")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC), got.UTC())

	got = parsePostedAt("2026-08-20")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), got.UTC())

	got = parsePostedAt("1766224800")
	require.NotNil(t, got, "epoch seconds")

	got = parsePostedAt("1766224800000")
	require.NotNil(t, got, "epoch milliseconds")

	assert.Nil(t, parsePostedAt("yesterday"))
	assert.Nil(t, parsePostedAt(""))
}
