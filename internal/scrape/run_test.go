package scrape

import (
	"context"
	"errors"
	"testing"

	"applyflow/internal/config"
	"applyflow/internal/domain"
	"applyflow/internal/scrape/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name  string
	jobs  []domain.JobPosting
	err   error
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, opts types.Options) ([]domain.JobPosting, error) {
	f.calls++
	return f.jobs, f.err
}

func TestRunKeepsGoingPastFailedSource(t *testing.T) {
	bad := &fakeSource{name: "greenhouse", err: errors.New("boom")}
	ok := &fakeSource{name: "lever", jobs: []domain.JobPosting{{Title: "A", URL: "u1"}}}
	ok2 := &fakeSource{name: "email", jobs: []domain.JobPosting{{Title: "B", URL: "u2"}}}

	r := &Runner{sources: []types.Source{bad, ok, ok2}}
	jobs := r.Run(context.Background())

	require.Len(t, jobs, 2)
	assert.Equal(t, "A", jobs[0].Title)
	assert.Equal(t, "B", jobs[1].Title)
	assert.Equal(t, 1, bad.calls)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{name: "lever"}
	r := &Runner{sources: []types.Source{src}}

	assert.Empty(t, r.Run(ctx))
	assert.Equal(t, 0, src.calls)
}

func TestNewRunnerBuildsEnabledSources(t *testing.T) {
	cfg := config.Default()
	cfg.Sources.Lever.Enabled = true
	cfg.Sources.Lever.Boards = []config.Board{{Slug: "acme"}}
	cfg.Email.Enabled = true

	r := NewRunner(cfg, "")
	require.Len(t, r.sources, 1, "email without a password should be skipped")
	assert.Equal(t, "lever", r.sources[0].Name())

	r = NewRunner(cfg, "app-password")
	require.Len(t, r.sources, 2)
	assert.Equal(t, "email", r.sources[1].Name())

	assert.Equal(t, cfg.Search.Queries, r.opts.Queries)
	assert.Equal(t, 20, r.opts.MaxPerSource)
}
