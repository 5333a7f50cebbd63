package tailor

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"applyflow/internal/domain"
)

const maxDirNameLen = 60

// OutputDir creates and returns the per-job document directory under root.
// The name is the sanitized "company_title" capped at 60 characters plus a
// minute-resolution timestamp, so repeat runs for the same role do not
// collide.
func OutputDir(root string, job domain.JobPosting, now time.Time) (string, error) {
	name := sanitizeName(job.Company + "_" + job.Title)
	if name == "" {
		name = "job"
	}
	dir := filepath.Join(root, name+"_"+now.Format("20060102_1504"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// sanitizeName keeps letters, digits, spaces, underscores and hyphens,
// trims the result, and turns spaces into underscores.
func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	out := strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
	if runes := []rune(out); len(runes) > maxDirNameLen {
		out = string(runes[:maxDirNameLen])
	}
	return out
}
