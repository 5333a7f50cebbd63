package tracker

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"applyflow/internal/domain"
)

// The CSV is the authoritative application log. Columns are fixed; files
// written by older versions get the missing columns backfilled empty on the
// next save.
var columns = []string{
	"job_url", "title", "company", "location", "site",
	"date_posted", "scraped_at", "applied_at", "status",
	"resume_path", "cover_letter_path", "notion_page_id", "notes",
}

const timeLayout = "2006-01-02 15:04:05"

// Tracker keeps every record in memory and rewrites the whole file on each
// change. The file stays small (one row per application) and whole-file
// rewrites keep it trivially consistent.
type Tracker struct {
	path string

	mu   sync.Mutex
	recs []domain.TrackedRecord
	idx  map[string]int // url -> position in recs

	// Log receives dedup counts; nil means log.Default.
	Log *log.Logger
}

// Load reads the CSV at path. A missing file is an empty tracker, not an
// error.
func Load(path string) (*Tracker, error) {
	t := &Tracker{
		path: path,
		idx:  map[string]int{},
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open tracker csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tracker header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tracker row: %w", err)
		}

		rec := rowToRecord(row, col)
		if rec.URL == "" {
			continue
		}
		if _, dup := t.idx[rec.URL]; dup {
			// keep the first occurrence, same as scrape dedup
			continue
		}
		t.idx[rec.URL] = len(t.recs)
		t.recs = append(t.recs, rec)
	}

	return t, nil
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.recs)
}

// Records returns a copy, oldest first.
func (t *Tracker) Records() []domain.TrackedRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.TrackedRecord, len(t.recs))
	copy(out, t.recs)
	return out
}

func (t *Tracker) IsTracked(url string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.idx[strings.TrimSpace(url)]
	return ok
}

func (t *Tracker) Lookup(url string) (domain.TrackedRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.idx[strings.TrimSpace(url)]
	if !ok {
		return domain.TrackedRecord{}, false
	}
	return t.recs[i], true
}

// FilterNew drops postings whose URL is already tracked, preserving order.
func (t *Tracker) FilterNew(jobs []domain.JobPosting) []domain.JobPosting {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.JobPosting, 0, len(jobs))
	for _, j := range jobs {
		if _, ok := t.idx[strings.TrimSpace(j.URL)]; ok {
			continue
		}
		out = append(out, j)
	}
	if skipped := len(jobs) - len(out); skipped > 0 {
		t.logf("[tracker] %d already tracked, %d new", skipped, len(out))
	}
	return out
}

func (t *Tracker) logf(format string, args ...any) {
	l := t.Log
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}

// Upsert inserts or replaces the record for rec.URL and saves the file.
func (t *Tracker) Upsert(rec domain.TrackedRecord) error {
	rec.URL = strings.TrimSpace(rec.URL)
	if rec.URL == "" {
		return errors.New("missing url")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if i, ok := t.idx[rec.URL]; ok {
		t.recs[i] = rec
	} else {
		t.idx[rec.URL] = len(t.recs)
		t.recs = append(t.recs, rec)
	}
	return t.saveLocked()
}

// SetStatus updates one record's status. Moving to Applied stamps the
// applied_at time if it is not already set.
func (t *Tracker) SetStatus(url string, status domain.Status) error {
	url = strings.TrimSpace(url)

	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.idx[url]
	if !ok {
		return fmt.Errorf("not tracked: %s", url)
	}

	t.recs[i].Status = status
	if status == domain.StatusApplied && t.recs[i].AppliedAt == nil {
		now := time.Now()
		t.recs[i].AppliedAt = &now
	}
	return t.saveLocked()
}

// saveLocked rewrites the CSV atomically: write a temp file, shelve the old
// file as .bak, rename the temp into place.
func (t *Tracker) saveLocked() error {
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create tracker dir: %w", err)
	}

	tmp := t.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp tracker: %w", err)
	}

	w := csv.NewWriter(f)
	werr := w.Write(columns)
	for _, rec := range t.recs {
		if werr != nil {
			break
		}
		werr = w.Write(recordToRow(rec))
	}
	w.Flush()
	if werr == nil {
		werr = w.Error()
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write tracker csv: %w", werr)
	}

	bak := t.path + ".bak"
	if _, err := os.Stat(t.path); err == nil {
		_ = os.Remove(bak)
		if err := os.Rename(t.path, bak); err != nil {
			return fmt.Errorf("backup tracker csv: %w", err)
		}
	}
	if err := os.Rename(tmp, t.path); err != nil {
		return fmt.Errorf("replace tracker csv: %w", err)
	}
	return nil
}

func recordToRow(rec domain.TrackedRecord) []string {
	scraped := ""
	if !rec.ScrapedAt.IsZero() {
		scraped = rec.ScrapedAt.Format(timeLayout)
	}
	applied := ""
	if rec.AppliedAt != nil {
		applied = rec.AppliedAt.Format(timeLayout)
	}
	return []string{
		rec.URL, rec.Title, rec.Company, rec.Location, rec.Platform,
		rec.DatePosted, scraped, applied, string(rec.Status),
		rec.ResumePath, rec.CoverLetterPath, rec.NotionPageID, rec.Notes,
	}
}

func rowToRecord(row []string, col map[string]int) domain.TrackedRecord {
	get := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := domain.TrackedRecord{
		URL:             get("job_url"),
		Title:           get("title"),
		Company:         get("company"),
		Location:        get("location"),
		Platform:        get("site"),
		DatePosted:      get("date_posted"),
		Status:          domain.Status(get("status")),
		ResumePath:      get("resume_path"),
		CoverLetterPath: get("cover_letter_path"),
		NotionPageID:    get("notion_page_id"),
		Notes:           get("notes"),
	}
	if s := get("scraped_at"); s != "" {
		if ts, err := time.ParseInLocation(timeLayout, s, time.Local); err == nil {
			rec.ScrapedAt = ts
		}
	}
	if s := get("applied_at"); s != "" {
		if ts, err := time.ParseInLocation(timeLayout, s, time.Local); err == nil {
			rec.AppliedAt = &ts
		}
	}
	return rec
}
