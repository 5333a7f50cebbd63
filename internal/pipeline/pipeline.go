// Package pipeline sequences one full run: scrape, filter, dedupe, tailor,
// render, track. Jobs are processed one at a time; a failing job is tracked
// with status Error so the next run skips it, and the loop moves on.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"applyflow/internal/archive"
	"applyflow/internal/config"
	"applyflow/internal/dedup"
	"applyflow/internal/docx"
	"applyflow/internal/domain"
	"applyflow/internal/filter"
	"applyflow/internal/render"
	"applyflow/internal/runlock"
	"applyflow/internal/tailor"
	"applyflow/internal/tracker"
)

// Scraper yields postings from every enabled source.
type Scraper interface {
	Run(ctx context.Context) []domain.JobPosting
}

// DocMaker produces the tailored document texts for one job.
type DocMaker interface {
	TailorResume(ctx context.Context, job domain.JobPosting) (tex, keywordReport string, err error)
	TailorCoverLetter(ctx context.Context, job domain.JobPosting) (body string, err error)
}

// RemoteSink mirrors tracked records to the hosted tracker.
type RemoteSink interface {
	Enabled() bool
	Record(ctx context.Context, rec domain.TrackedRecord, pageID string) (string, error)
}

// Pipeline wires the run together. Cfg, Scraper, Filter, Tracker and Docs
// are required; Remote and Archive may be absent. The render hooks default
// to the real subprocess drivers and exist so tests can avoid shelling out.
type Pipeline struct {
	Cfg     config.Config
	Scraper Scraper
	Filter  *filter.Filter
	Tracker *tracker.Tracker
	Docs    DocMaker
	Remote  RemoteSink
	Archive *archive.DB

	// Log receives run progress; nil means log.Default.
	Log *log.Logger

	RenderResume      func(ctx context.Context, texPath string) string
	RenderCoverLetter func(ctx context.Context, docxPath string) string
	Now               func() time.Time
}

// Run executes one pass. It refuses to start while another run holds the
// lock, so a slow run and the next scheduled trigger never interleave.
func (p *Pipeline) Run(ctx context.Context) error {
	lock, err := runlock.Acquire(p.Cfg.LockPath())
	if err != nil {
		if errors.Is(err, runlock.ErrHeld) {
			p.logf("[pipeline] previous run still executing, skipping")
		}
		return err
	}
	defer func() { _ = lock.Release() }()

	start := p.now()
	p.logf("[pipeline] run started at %s", start.Format("2006-01-02 15:04"))

	runID := archive.NewRunID()
	if p.Archive != nil {
		if err := p.Archive.RecordRun(ctx, runID, start); err != nil {
			p.logf("[pipeline] archive run: %v", err)
		}
	}
	counts := archive.RunCounts{}
	defer func() {
		if p.Archive == nil {
			return
		}
		if err := p.Archive.FinishRun(ctx, runID, p.now(), counts); err != nil {
			p.logf("[pipeline] archive finish: %v", err)
		}
	}()

	jobs := p.Scraper.Run(ctx)
	counts.Scraped = len(jobs)
	if len(jobs) == 0 {
		p.logf("[pipeline] no jobs found, run complete")
		return nil
	}

	accepted := make([]domain.JobPosting, 0, len(jobs))
	for i := range jobs {
		dec := p.Filter.Evaluate(jobs[i])
		dec.Enrich(&jobs[i])
		p.archiveDecision(ctx, runID, jobs[i], dec)
		if dec.Accept {
			accepted = append(accepted, jobs[i])
		}
	}
	counts.Accepted = len(accepted)
	p.logf("[pipeline] filter kept %d of %d jobs", len(accepted), len(jobs))

	fresh := p.Tracker.FilterNew(dedup.Dedupe(accepted))
	counts.Processed = len(fresh)
	if len(fresh) == 0 {
		p.logf("[pipeline] all scraped jobs already tracked, nothing to process")
		return nil
	}
	p.logf("[pipeline] processing %d new jobs", len(fresh))

	succeeded := make([]domain.JobPosting, 0, len(fresh))
	for i, job := range fresh {
		if ctx.Err() != nil {
			p.logf("[pipeline] cancelled with %d jobs left", len(fresh)-i)
			break
		}
		p.logf("[pipeline] --- [%d/%d] %s - %s ---", i+1, len(fresh), job.Company, job.Title)

		docSet, err := p.processJob(ctx, job)
		if err != nil {
			p.logf("[pipeline] failed for %s - %s: %v", job.Company, job.Title, err)
			p.trackError(ctx, job)
			counts.Failed++
			continue
		}
		p.logf("[pipeline] ready: %s - %s", job.Company, job.Title)
		p.logf("[pipeline]   documents: %s", docSet.Dir)
		succeeded = append(succeeded, job)
	}

	elapsed := time.Since(start).Round(time.Second)
	p.logf("[pipeline] complete in %s", elapsed)
	p.logf("[pipeline]   processed: %d", len(fresh))
	p.logf("[pipeline]   success:   %d", len(succeeded))
	p.logf("[pipeline]   failed:    %d", counts.Failed)

	printSummary(succeeded, p.Cfg.App.OutputDir)
	return nil
}

// processJob produces all documents for one job and records it in the
// trackers with status Ready to Apply. Rendering is best effort; tracking
// paths fall back to the source files when no PDF came out.
func (p *Pipeline) processJob(ctx context.Context, job domain.JobPosting) (domain.DocumentSet, error) {
	var docSet domain.DocumentSet

	dir, err := tailor.OutputDir(p.Cfg.App.OutputDir, job, p.now())
	if err != nil {
		return docSet, fmt.Errorf("create output dir: %w", err)
	}
	docSet.Dir = dir

	tex, report, err := p.Docs.TailorResume(ctx, job)
	if err != nil {
		return docSet, err
	}
	if docSet.ResumeTeX, err = tailor.SaveResume(dir, tex); err != nil {
		return docSet, err
	}
	if docSet.KeywordReport, err = tailor.SaveKeywordReport(dir, report); err != nil {
		return docSet, err
	}

	body, err := p.Docs.TailorCoverLetter(ctx, job)
	if err != nil {
		return docSet, err
	}
	letters := docx.Writer{
		TemplatePath:  p.Cfg.Documents.CoverLetterTemplate,
		CandidateName: p.Cfg.Documents.CandidateName,
		Log:           p.Log,
	}
	docSet.CoverLetterDocx, err = letters.WriteCoverLetter(dir, job, body, p.now())
	if err != nil {
		return docSet, err
	}

	docSet.ResumePDF = p.renderResume(ctx, docSet.ResumeTeX)
	docSet.CoverLetterPDF = p.renderCoverLetter(ctx, docSet.CoverLetterDocx)

	if err := p.track(ctx, job, domain.StatusReadyToApply, docSet); err != nil {
		return docSet, err
	}
	return docSet, nil
}

// track writes the record remotely first, then locally. The CSV is the
// authoritative store: a remote failure is logged and the record still
// lands on disk.
func (p *Pipeline) track(ctx context.Context, job domain.JobPosting, status domain.Status, docSet domain.DocumentSet) error {
	rec := domain.NewTrackedRecord(job, status)
	rec.ResumePath = docSet.BestResumePath()
	rec.CoverLetterPath = docSet.BestCoverLetterPath()
	if prev, ok := p.Tracker.Lookup(job.URL); ok {
		rec.NotionPageID = prev.NotionPageID
		rec.AppliedAt = prev.AppliedAt
	}

	if p.Remote != nil && p.Remote.Enabled() {
		pageID, err := p.Remote.Record(ctx, rec, rec.NotionPageID)
		if err != nil {
			p.logf("[pipeline] notion tracking failed for %s - %s: %v", job.Company, job.Title, err)
		} else {
			rec.NotionPageID = pageID
		}
	}
	return p.Tracker.Upsert(rec)
}

func (p *Pipeline) trackError(ctx context.Context, job domain.JobPosting) {
	if err := p.track(ctx, job, domain.StatusError, domain.DocumentSet{}); err != nil {
		p.logf("[pipeline] could not track failed job %s: %v", job.URL, err)
	}
}

func (p *Pipeline) archiveDecision(ctx context.Context, runID string, job domain.JobPosting, dec filter.Decision) {
	if p.Archive == nil {
		return
	}
	if err := p.Archive.RecordDecision(ctx, runID, job, dec.Accept, dec.Reason); err != nil {
		p.logf("[pipeline] archive decision: %v", err)
	}
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) logf(format string, args ...any) {
	l := p.Log
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}

func (p *Pipeline) renderResume(ctx context.Context, texPath string) string {
	if p.RenderResume != nil {
		return p.RenderResume(ctx, texPath)
	}
	return render.Renderer{Log: p.Log}.RenderResume(ctx, texPath)
}

func (p *Pipeline) renderCoverLetter(ctx context.Context, docxPath string) string {
	if p.RenderCoverLetter != nil {
		return p.RenderCoverLetter(ctx, docxPath)
	}
	return render.Renderer{Log: p.Log}.RenderCoverLetter(ctx, docxPath)
}

func printSummary(jobs []domain.JobPosting, outputDir string) {
	if len(jobs) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("%-30s %-35s %s\n", "COMPANY", "TITLE", "STATUS")
	fmt.Println(strings.Repeat("-", 80))
	for _, j := range jobs {
		fmt.Printf("%-30s %-35s %s\n", j.Company, j.Title, domain.StatusReadyToApply)
	}
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("\nAll documents saved under %s\n", outputDir)
	fmt.Println("Review each folder, then record applications with: applyflow applied <job-url>")
	fmt.Println()
}
