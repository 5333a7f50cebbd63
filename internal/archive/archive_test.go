package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applyflow/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrate())

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, 1, v)
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRecordAndRecentDecisions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	runID := NewRunID()
	require.NoError(t, db.RecordRun(ctx, runID, time.Now()))

	years := 7
	jobs := []struct {
		job      domain.JobPosting
		accepted bool
		reason   string
	}{
		{domain.JobPosting{URL: "https://a.example/1", Title: "Dev", Company: "Acme", Platform: domain.PlatformLever}, true, ""},
		{domain.JobPosting{URL: "https://a.example/2", Title: "Old", Company: "Acme", Platform: domain.PlatformLever}, false, "stale"},
		{domain.JobPosting{URL: "https://a.example/3", Title: "Staff Eng", Company: "Beta", Platform: domain.PlatformGreenhouse, ExperienceYears: &years, JuniorMatch: true}, false, "years_exceeded"},
	}
	for _, j := range jobs {
		require.NoError(t, db.RecordDecision(ctx, runID, j.job, j.accepted, j.reason))
	}

	got, err := db.RecentDecisions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2, "limit should cap the result")

	// Newest first.
	assert.Equal(t, "https://a.example/3", got[0].URL)
	assert.False(t, got[0].Accepted)
	assert.Equal(t, "years_exceeded", got[0].Reason)
	require.NotNil(t, got[0].Years)
	assert.Equal(t, 7, *got[0].Years)
	assert.True(t, got[0].Junior)
	assert.Equal(t, runID, got[0].RunID)
	assert.False(t, got[0].RecordedAt.IsZero())

	assert.Equal(t, "https://a.example/2", got[1].URL)
	assert.Nil(t, got[1].Years)
	assert.False(t, got[1].Junior)
}

func TestFinishRunUpdatesCounts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	runID := NewRunID()
	started := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)

	require.NoError(t, db.RecordRun(ctx, runID, started))
	require.NoError(t, db.FinishRun(ctx, runID, started.Add(3*time.Minute), RunCounts{
		Scraped: 40, Accepted: 12, Processed: 10, Failed: 2,
	}))

	var startedAt, finishedAt string
	var scraped, accepted, processed, failed int
	require.NoError(t, db.Pool.QueryRow(`
SELECT started_at, finished_at, scraped, accepted, processed, failed
FROM runs WHERE id = ?;`, runID).
		Scan(&startedAt, &finishedAt, &scraped, &accepted, &processed, &failed))

	assert.Equal(t, "2026-08-23 09:00:00", startedAt)
	assert.Equal(t, "2026-08-23 09:03:00", finishedAt)
	assert.Equal(t, 40, scraped)
	assert.Equal(t, 12, accepted)
	assert.Equal(t, 10, processed)
	assert.Equal(t, 2, failed)
}
