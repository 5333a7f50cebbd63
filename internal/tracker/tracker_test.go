package tracker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"applyflow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempCSV(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "applied_jobs.csv")
}

func TestLoadMissingFile(t *testing.T) {
	tr, err := Load(tempCSV(t))
	require.NoError(t, err)
	assert.Equal(t, 0, tr.Len())
}

func TestUpsertRoundTrip(t *testing.T) {
	path := tempCSV(t)
	tr, err := Load(path)
	require.NoError(t, err)

	job := domain.JobPosting{
		Title:     "Full Stack Developer",
		Company:   "Maple Labs",
		Location:  "Toronto, ON",
		URL:       "https://www.linkedin.com/jobs/view/4012345678/",
		Platform:  domain.PlatformLinkedIn,
		ScrapedAt: time.Date(2026, 8, 21, 9, 30, 0, 0, time.Local),
	}
	rec := domain.NewTrackedRecord(job, domain.StatusReadyToApply)
	rec.ResumePath = "/out/resume.pdf"
	rec.NotionPageID = "page-123"
	require.NoError(t, tr.Upsert(rec))

	// reload from disk and compare
	tr2, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, tr2.Len())

	got, ok := tr2.Lookup(job.URL)
	require.True(t, ok)
	assert.Equal(t, "Full Stack Developer", got.Title)
	assert.Equal(t, "Maple Labs", got.Company)
	assert.Equal(t, domain.PlatformLinkedIn, got.Platform)
	assert.Equal(t, domain.StatusReadyToApply, got.Status)
	assert.Equal(t, "/out/resume.pdf", got.ResumePath)
	assert.Equal(t, "page-123", got.NotionPageID)
	assert.Equal(t, job.ScrapedAt, got.ScrapedAt)
	assert.Nil(t, got.AppliedAt)
}

func TestUpsertReplacesByURL(t *testing.T) {
	tr, err := Load(tempCSV(t))
	require.NoError(t, err)

	rec := domain.TrackedRecord{URL: "u1", Title: "Old", Status: domain.StatusReadyToApply}
	require.NoError(t, tr.Upsert(rec))

	rec.Title = "New"
	rec.Status = domain.StatusError
	require.NoError(t, tr.Upsert(rec))

	assert.Equal(t, 1, tr.Len())
	got, _ := tr.Lookup("u1")
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, domain.StatusError, got.Status)
}

func TestUpsertRejectsEmptyURL(t *testing.T) {
	tr, err := Load(tempCSV(t))
	require.NoError(t, err)
	assert.Error(t, tr.Upsert(domain.TrackedRecord{Title: "no url"}))
}

func TestFilterNew(t *testing.T) {
	tr, err := Load(tempCSV(t))
	require.NoError(t, err)
	require.NoError(t, tr.Upsert(domain.TrackedRecord{URL: "u1"}))

	jobs := []domain.JobPosting{{URL: "u1"}, {URL: "u2"}, {URL: "u3"}}
	fresh := tr.FilterNew(jobs)
	require.Len(t, fresh, 2)
	assert.Equal(t, "u2", fresh[0].URL)
	assert.Equal(t, "u3", fresh[1].URL)

	assert.True(t, tr.IsTracked("u1"))
	assert.False(t, tr.IsTracked("u2"))
}

func TestSetStatusStampsAppliedAt(t *testing.T) {
	tr, err := Load(tempCSV(t))
	require.NoError(t, err)
	require.NoError(t, tr.Upsert(domain.TrackedRecord{URL: "u1", Status: domain.StatusReadyToApply}))

	require.NoError(t, tr.SetStatus("u1", domain.StatusApplied))
	got, _ := tr.Lookup("u1")
	assert.Equal(t, domain.StatusApplied, got.Status)
	require.NotNil(t, got.AppliedAt)

	stamp := *got.AppliedAt
	require.NoError(t, tr.SetStatus("u1", domain.StatusApplied))
	got, _ = tr.Lookup("u1")
	assert.Equal(t, stamp, *got.AppliedAt, "applied_at must not move on repeat calls")

	assert.Error(t, tr.SetStatus("unknown", domain.StatusApplied))
}

func TestLoadBackfillsOldColumns(t *testing.T) {
	path := tempCSV(t)
	old := strings.Join([]string{
		"job_url,title,company,status",
		"u1,Dev,Acme,Applied",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(old), 0o644))

	tr, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, tr.Len())

	got, ok := tr.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusApplied, got.Status)
	assert.Empty(t, got.NotionPageID)

	// next save writes the full column set
	require.NoError(t, tr.Upsert(domain.TrackedRecord{URL: "u2", Title: "Dev 2"}))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), strings.Join(columns, ",")))
}

func TestSaveKeepsBackup(t *testing.T) {
	path := tempCSV(t)
	tr, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, tr.Upsert(domain.TrackedRecord{URL: "u1"}))
	require.NoError(t, tr.Upsert(domain.TrackedRecord{URL: "u2"}))

	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err, "second save should shelve the previous file")
}
