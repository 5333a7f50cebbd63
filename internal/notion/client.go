package notion

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"applyflow/internal/domain"

	gonotion "github.com/dstotijn/go-notion"
)

// Sink mirrors tracked applications into a Notion database. The CSV remains
// authoritative; everything here is best-effort from the pipeline's point of
// view.
type Sink struct {
	c          *gonotion.Client
	databaseID string
}

// NewSink returns nil when token or database id is missing, which callers
// treat as "Notion not configured".
func NewSink(token, databaseID string) *Sink {
	if token == "" || databaseID == "" {
		return nil
	}
	return &Sink{
		c:          gonotion.NewClient(token, gonotion.WithHTTPClient(&http.Client{Timeout: 15 * time.Second})),
		databaseID: databaseID,
	}
}

func (s *Sink) Enabled() bool { return s != nil }

// Record pushes rec to Notion. With a pageID from an earlier run the existing
// page is updated in place; otherwise a new page is created. Returns the page
// id to store alongside the record.
func (s *Sink) Record(ctx context.Context, rec domain.TrackedRecord, pageID string) (string, error) {
	props := pageProperties(rec)

	if pageID != "" {
		_, err := s.c.UpdatePage(ctx, pageID, gonotion.UpdatePageParams{
			DatabasePageProperties: props,
		})
		if err != nil {
			return "", fmt.Errorf("notion update page: %w", err)
		}
		return pageID, nil
	}

	page, err := s.c.CreatePage(ctx, gonotion.CreatePageParams{
		ParentType:             gonotion.ParentTypeDatabase,
		ParentID:               s.databaseID,
		DatabasePageProperties: &props,
	})
	if err != nil {
		return "", fmt.Errorf("notion create page: %w", err)
	}
	return page.ID, nil
}

// UpdateStatus flips the Status select on an existing page, stamping
// Applied At when provided.
func (s *Sink) UpdateStatus(ctx context.Context, pageID string, status domain.Status, appliedAt *time.Time) error {
	props := gonotion.DatabasePageProperties{
		"Status": {Select: &gonotion.SelectOptions{Name: string(status)}},
	}
	if appliedAt != nil {
		props["Applied At"] = gonotion.DatabasePageProperty{
			Date: &gonotion.Date{Start: gonotion.NewDateTime(*appliedAt, true)},
		}
	}

	_, err := s.c.UpdatePage(ctx, pageID, gonotion.UpdatePageParams{
		DatabasePageProperties: props,
	})
	if err != nil {
		return fmt.Errorf("notion update status: %w", err)
	}
	return nil
}

func pageProperties(rec domain.TrackedRecord) gonotion.DatabasePageProperties {
	props := gonotion.DatabasePageProperties{
		"Job Title": {Title: richText(rec.Title)},
	}

	if rec.URL != "" {
		u := rec.URL
		props["Job URL"] = gonotion.DatabasePageProperty{URL: &u}
	}
	if rec.Status != "" {
		props["Status"] = gonotion.DatabasePageProperty{
			Select: &gonotion.SelectOptions{Name: string(rec.Status)},
		}
	}
	if rec.Platform != "" {
		props["Platform"] = gonotion.DatabasePageProperty{
			Select: &gonotion.SelectOptions{Name: rec.Platform},
		}
	}
	if rec.Company != "" {
		props["Company"] = gonotion.DatabasePageProperty{RichText: richText(rec.Company)}
	}
	if rec.Location != "" {
		props["Location"] = gonotion.DatabasePageProperty{RichText: richText(rec.Location)}
	}
	if rec.ResumePath != "" {
		props["Resume Path"] = gonotion.DatabasePageProperty{RichText: richText(rec.ResumePath)}
	}
	if rec.CoverLetterPath != "" {
		props["Cover Letter Path"] = gonotion.DatabasePageProperty{RichText: richText(rec.CoverLetterPath)}
	}
	if rec.Notes != "" {
		props["Notes"] = gonotion.DatabasePageProperty{RichText: richText(rec.Notes)}
	}
	if rec.DatePosted != "" {
		if t, err := time.Parse("2006-01-02", rec.DatePosted); err == nil {
			props["Date Posted"] = gonotion.DatabasePageProperty{
				Date: &gonotion.Date{Start: gonotion.NewDateTime(t, false)},
			}
		}
	}
	if rec.AppliedAt != nil {
		props["Applied At"] = gonotion.DatabasePageProperty{
			Date: &gonotion.Date{Start: gonotion.NewDateTime(*rec.AppliedAt, true)},
		}
	}

	return props
}

func richText(s string) []gonotion.RichText {
	return []gonotion.RichText{{Text: &gonotion.Text{Content: s}}}
}
