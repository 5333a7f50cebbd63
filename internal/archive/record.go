package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"applyflow/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// RunCounts is the summary written when a run finishes.
type RunCounts struct {
	Scraped   int
	Accepted  int
	Processed int
	Failed    int
}

// DecisionRow is one archived filter outcome.
type DecisionRow struct {
	RunID      string
	URL        string
	Title      string
	Company    string
	Location   string
	Platform   string
	Accepted   bool
	Reason     string
	Years      *int
	Junior     bool
	RecordedAt time.Time
}

// RecordRun inserts the run row when a run starts.
func (d *DB) RecordRun(ctx context.Context, runID string, startedAt time.Time) error {
	_, err := d.Pool.ExecContext(ctx, `
INSERT OR IGNORE INTO runs (id, started_at)
VALUES (?, ?);`, runID, startedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// FinishRun stamps the run row with its end time and counts.
func (d *DB) FinishRun(ctx context.Context, runID string, finishedAt time.Time, counts RunCounts) error {
	_, err := d.Pool.ExecContext(ctx, `
UPDATE runs
SET finished_at = ?, scraped = ?, accepted = ?, processed = ?, failed = ?
WHERE id = ?;`,
		finishedAt.UTC().Format(timeLayout),
		counts.Scraped, counts.Accepted, counts.Processed, counts.Failed, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordDecision appends one audit row. The derived years and junior
// fields are read from the posting, so callers enrich it first.
func (d *DB) RecordDecision(ctx context.Context, runID string, j domain.JobPosting, accepted bool, reason string) error {
	var years any
	if j.ExperienceYears != nil {
		years = *j.ExperienceYears
	}
	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO decisions (run_id, url, title, company, location, platform, accepted, reason, years, junior, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		runID, j.URL, j.Title, j.Company, j.Location, j.Platform,
		b2i(accepted), reason, years, b2i(j.JuniorMatch),
		time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record decision: %w", err)
	}
	return nil
}

// RecentDecisions returns the newest audit rows first.
func (d *DB) RecentDecisions(ctx context.Context, limit int) ([]DecisionRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.Pool.QueryContext(ctx, `
SELECT run_id, url, title, company, location, platform, accepted, reason, years, junior, recorded_at
FROM decisions
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DecisionRow
	for rows.Next() {
		var (
			r                DecisionRow
			accepted, junior int
			years            sql.NullInt64
			recorded         string
		)
		if err := rows.Scan(&r.RunID, &r.URL, &r.Title, &r.Company, &r.Location, &r.Platform,
			&accepted, &r.Reason, &years, &junior, &recorded); err != nil {
			return nil, err
		}
		r.Accepted = accepted != 0
		r.Junior = junior != 0
		if years.Valid {
			y := int(years.Int64)
			r.Years = &y
		}
		r.RecordedAt, _ = time.Parse(timeLayout, recorded)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
