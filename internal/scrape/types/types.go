package types

import (
	"context"
	"time"

	"applyflow/internal/domain"
)

// Options carries the per-run knobs every source respects.
type Options struct {
	// Queries are the configured search terms. Board sources list every
	// open role in every department, so they match postings against these
	// before doing any per-job work.
	Queries []string

	// Window is how far back a posting may date and still be fetched.
	// Sources that can filter server-side (IMAP SINCE) use it directly.
	Window time.Duration

	// MaxPerSource caps how many postings one board or mailbox may
	// contribute. Zero or negative means no cap.
	MaxPerSource int
}

// Source is one place job postings come from: a hosted ATS board or the
// LinkedIn alert mailbox.
type Source interface {
	Name() string
	Fetch(ctx context.Context, opts Options) ([]domain.JobPosting, error)
}
