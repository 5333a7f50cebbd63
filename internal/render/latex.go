// Package render shells out to the document toolchain: pdflatex for the
// resume and LibreOffice for the cover letter. Rendering is best effort;
// failures are logged and reported as an empty path so the pipeline can
// continue with the source files.
package render

import (
	"context"
	"errors"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const runTimeout = 60 * time.Second

// Binary names, swapped for stubs in tests.
var (
	pdflatexBin = "pdflatex"
	officeBins  = []string{"soffice", "libreoffice"}
)

// Renderer drives the conversion tools. The zero value is ready to use;
// Log nil means log.Default.
type Renderer struct {
	Log *log.Logger
}

func (r Renderer) logf(format string, args ...any) {
	l := r.Log
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}

// RenderResume compiles a .tex file to PDF, running pdflatex twice so
// references resolve. Returns the PDF path, or "" when the tool is missing,
// times out, or produces no PDF. Auxiliary .aux/.log/.out files are removed
// after a successful compile.
func (r Renderer) RenderResume(ctx context.Context, texPath string) string {
	if _, err := os.Stat(texPath); err != nil {
		r.logf("[render] latex source not found: %s", texPath)
		return ""
	}
	workDir := filepath.Dir(texPath)
	base := stem(texPath)
	pdfPath := filepath.Join(workDir, base+".pdf")

	for pass := 1; pass <= 2; pass++ {
		runCtx, cancel := context.WithTimeout(ctx, runTimeout)
		cmd := exec.CommandContext(runCtx, pdflatexBin, "-interaction=nonstopmode", "-output-directory", workDir, texPath)
		cmd.Dir = workDir
		err := cmd.Run()
		cancel()
		switch {
		case runCtx.Err() != nil:
			r.logf("[render] pdflatex timed out for %s", texPath)
			return ""
		case errors.Is(err, exec.ErrNotFound):
			r.logf("[render] pdflatex not found in PATH, skipping resume PDF")
			return ""
		case err != nil:
			// pdflatex exits non-zero on recoverable errors too; the
			// second pass and the final stat decide the outcome.
			r.logf("[render] pdflatex pass %d reported errors for %s", pass, filepath.Base(texPath))
		}
	}

	if _, err := os.Stat(pdfPath); err != nil {
		r.logf("[render] no PDF produced, check %s", filepath.Join(workDir, base+".log"))
		return ""
	}
	for _, ext := range []string{".aux", ".log", ".out"} {
		_ = os.Remove(filepath.Join(workDir, base+ext))
	}
	r.logf("[render] resume PDF compiled: %s", pdfPath)
	return pdfPath
}

func stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
