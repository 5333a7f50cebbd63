package domain

import "time"

// TrackedRecord is the persisted view of a posting plus pipeline outputs.
// One record per unique URL; status and path fields are overwritten in place.
type TrackedRecord struct {
	URL             string
	Title           string
	Company         string
	Location        string
	Platform        string
	DatePosted      string // as scraped; empty when the source had none
	ScrapedAt       time.Time
	AppliedAt       *time.Time
	Status          Status
	ResumePath      string
	CoverLetterPath string
	NotionPageID    string
	Notes           string
}

// NewTrackedRecord seeds a record from a scraped posting. Document paths and
// the Notion page id are filled in by the pipeline as it produces them.
func NewTrackedRecord(j JobPosting, status Status) TrackedRecord {
	r := TrackedRecord{
		URL:       j.URL,
		Title:     j.Title,
		Company:   j.Company,
		Location:  j.Location,
		Platform:  j.Platform,
		ScrapedAt: j.ScrapedAt,
		Status:    status,
	}
	if j.PostedAt != nil {
		r.DatePosted = j.PostedAt.Format("2006-01-02")
	}
	return r
}

// DocumentSet names the artifacts produced for one job. Paths are empty
// when the corresponding step failed or was skipped.
type DocumentSet struct {
	Dir             string
	ResumeTeX       string
	ResumePDF       string
	KeywordReport   string
	CoverLetterDocx string
	CoverLetterPDF  string
}

// BestResumePath prefers the compiled PDF and falls back to the source.
func (d DocumentSet) BestResumePath() string {
	if d.ResumePDF != "" {
		return d.ResumePDF
	}
	return d.ResumeTeX
}

// BestCoverLetterPath prefers the compiled PDF and falls back to the DOCX.
func (d DocumentSet) BestCoverLetterPath() string {
	if d.CoverLetterPDF != "" {
		return d.CoverLetterPDF
	}
	return d.CoverLetterDocx
}
