package lever

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"applyflow/internal/domain"
	"applyflow/internal/scrape/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postingsJSON = `[
  {"id":"a1","text":"Software Engineer, Platform","hostedUrl":"https://jobs.lever.co/acme/a1",
   "createdAt":1755900000000,"categories":{"location":"Toronto, Ontario"},
   "descriptionPlain":"We build Go services. 2-4 years experience."},
  {"id":"b2","text":"Sales Manager","hostedUrl":"https://jobs.lever.co/acme/b2",
   "createdAt":1755900000000,"categories":{"location":"New York"},
   "descriptionPlain":"Quota-carrying role."},
  {"id":"c3","text":"Backend Software Engineer","hostedUrl":"https://jobs.lever.co/acme/c3",
   "createdAt":0,"categories":{"location":"Vancouver"},
   "description":"<p>Ship APIs in Go.</p>"}
]`

func newTestScraper(t *testing.T) (*Scraper, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/acme", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, postingsJSON)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	s := New(Config{Boards: []Board{{Slug: "acme", Name: "Acme"}}}, nil)
	s.base = srv.URL
	return s, srv
}

func TestFetchParsesPostings(t *testing.T) {
	s, _ := newTestScraper(t)

	jobs, err := s.Fetch(context.Background(), types.Options{
		Queries: []string{"software engineer"},
	})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	j := jobs[0]
	assert.Equal(t, "Software Engineer, Platform", j.Title)
	assert.Equal(t, "Acme", j.Company)
	assert.Equal(t, "Toronto, Ontario", j.Location)
	assert.Equal(t, "https://jobs.lever.co/acme/a1", j.URL)
	assert.Equal(t, "We build Go services. 2-4 years experience.", j.Description)
	assert.Equal(t, domain.PlatformLever, j.Platform)
	require.NotNil(t, j.PostedAt)
	assert.Equal(t, time.UnixMilli(1755900000000).UTC(), *j.PostedAt)

	// html description falls back to flattened text, zero createdAt stays unset
	assert.Equal(t, "Ship APIs in Go.", jobs[1].Description)
	assert.Nil(t, jobs[1].PostedAt)
}

func TestFetchRespectsCap(t *testing.T) {
	s, _ := newTestScraper(t)

	jobs, err := s.Fetch(context.Background(), types.Options{
		Queries:      []string{"software engineer"},
		MaxPerSource: 1,
	})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Software Engineer, Platform", jobs[0].Title)
}
