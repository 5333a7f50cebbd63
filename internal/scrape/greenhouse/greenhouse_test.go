package greenhouse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"applyflow/internal/domain"
	"applyflow/internal/scrape/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boardHTML = `<html><body>
<div class="opening">
  <a href="/acme/jobs/4012345">Backend Engineer</a>
  <span class="location">Remote - Canada</span>
</div>
<div class="opening">
  <a href="/acme/jobs/4099999">Account Executive</a>
</div>
<a href="/acme/jobs/4012345">Backend Engineer</a>
<a href="https://twitter.com/acme">Follow us</a>
</body></html>`

const jobHTML = `<html><body>
<h1>Backend Engineer</h1>
<div class="location">Remote - Canada</div>
<div id="content"><p>Build Go services. 3+ years experience required.</p></div>
</body></html>`

func TestFetchFiltersAndHydrates(t *testing.T) {
	var jobPageHits int
	mux := http.NewServeMux()
	mux.HandleFunc("/acme", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, boardHTML)
	})
	mux.HandleFunc("/acme/jobs/4012345", func(w http.ResponseWriter, r *http.Request) {
		jobPageHits++
		fmt.Fprint(w, jobHTML)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := New(Config{Boards: []Board{{Slug: "acme", Name: "Acme"}}}, nil)
	s.base = srv.URL

	jobs, err := s.Fetch(context.Background(), types.Options{
		Queries:      []string{"backend engineer"},
		MaxPerSource: 10,
	})
	require.NoError(t, err)
	require.Len(t, jobs, 1, "sales opening and duplicate anchor should be gone")

	j := jobs[0]
	assert.Equal(t, "Backend Engineer", j.Title)
	assert.Equal(t, "Acme", j.Company)
	assert.Equal(t, srv.URL+"/acme/jobs/4012345", j.URL)
	assert.Equal(t, "Remote - Canada", j.Location)
	assert.Contains(t, j.Description, "Build Go services")
	assert.Equal(t, domain.PlatformGreenhouse, j.Platform)
	assert.Equal(t, domain.StatusNew, j.Status)
	assert.Equal(t, 1, jobPageHits, "only the matching opening should be hydrated")
}

func TestFetchBoardDownKeepsGoing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, boardHTML)
	})
	mux.HandleFunc("/up/jobs/4012345", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, jobHTML)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := New(Config{Boards: []Board{{Slug: "down"}, {Slug: "up", Name: "Up Co"}}}, nil)
	s.base = srv.URL

	jobs, err := s.Fetch(context.Background(), types.Options{Queries: []string{"backend"}})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Up Co", jobs[0].Company)
}

func TestExtractJobID(t *testing.T) {
	assert.Equal(t, "4012345", extractJobID("https://boards.greenhouse.io/acme/jobs/4012345?t=abc"))
	assert.Equal(t, "", extractJobID("https://boards.greenhouse.io/acme"))
	assert.Equal(t, "", extractJobID("https://boards.greenhouse.io/acme/jobs/apply"))
}
