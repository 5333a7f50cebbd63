// Package tailor turns one job posting into role-specific application
// documents: a tailored LaTeX resume, a keyword match report, and a cover
// letter body. All generation goes through an llm.Generator; this package
// owns the prompts, the response splitting, and the on-disk artifacts.
package tailor

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"applyflow/internal/domain"
	"applyflow/internal/llm"
)

const (
	resumeFileName = "resume.tex"
	reportFileName = "keyword_report.txt"
)

// Tailorer prompts a text generator with the base resume template, the
// candidate profile, and one job. Template and profile are re-read on every
// call so edits take effect without a restart.
type Tailorer struct {
	gen         llm.Generator
	resumePath  string
	profilePath string

	// Log receives generation progress; nil means log.Default.
	Log *log.Logger
}

func New(gen llm.Generator, resumeTemplate, profile string) *Tailorer {
	return &Tailorer{gen: gen, resumePath: resumeTemplate, profilePath: profile}
}

// TailorResume rewrites the base resume for the given job and returns the
// LaTeX source plus the keyword match report. The model is asked to append
// the report after a fixed delimiter line; when the delimiter is missing the
// whole response is treated as the resume and a placeholder report is
// returned instead.
func (t *Tailorer) TailorResume(ctx context.Context, job domain.JobPosting) (string, string, error) {
	baseTeX, err := os.ReadFile(t.resumePath)
	if err != nil {
		return "", "", fmt.Errorf("read resume template: %w", err)
	}
	profile, err := os.ReadFile(t.profilePath)
	if err != nil {
		return "", "", fmt.Errorf("read candidate profile: %w", err)
	}

	t.logf("[tailor] resume for %s - %s", job.Company, job.Title)
	out, err := t.gen.Generate(ctx, llm.Request{
		System:    resumeSystemPrompt,
		Prompt:    resumePrompt(job, string(baseTeX), string(profile)),
		MaxTokens: resumeMaxTokens,
	})
	if err != nil {
		return "", "", fmt.Errorf("tailor resume: %w", err)
	}

	tex, report, found := strings.Cut(out, KeywordReportDelimiter)
	if !found {
		report = missingReport
	}
	return strings.TrimSpace(tex), strings.TrimSpace(report), nil
}

// TailorCoverLetter writes the letter body for the given job: plain
// paragraphs without salutation or sign-off, ready for the document
// template.
func (t *Tailorer) TailorCoverLetter(ctx context.Context, job domain.JobPosting) (string, error) {
	profile, err := os.ReadFile(t.profilePath)
	if err != nil {
		return "", fmt.Errorf("read candidate profile: %w", err)
	}

	t.logf("[tailor] cover letter for %s - %s", job.Company, job.Title)
	body, err := t.gen.Generate(ctx, llm.Request{
		System:    coverLetterSystemPrompt,
		Prompt:    coverLetterPrompt(job, string(profile)),
		MaxTokens: coverLetterMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("tailor cover letter: %w", err)
	}
	return strings.TrimSpace(body), nil
}

func (t *Tailorer) logf(format string, args ...any) {
	l := t.Log
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}

// SaveResume writes the tailored LaTeX source into dir and returns the
// .tex path.
func SaveResume(dir, tex string) (string, error) {
	p := filepath.Join(dir, resumeFileName)
	if err := os.WriteFile(p, []byte(tex+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("save resume: %w", err)
	}
	return p, nil
}

// SaveKeywordReport writes the keyword match report next to the resume.
func SaveKeywordReport(dir, report string) (string, error) {
	p := filepath.Join(dir, reportFileName)
	if err := os.WriteFile(p, []byte(report+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("save keyword report: %w", err)
	}
	return p, nil
}
