package render

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
)

// RenderCoverLetter converts a .docx to a PDF in the same directory. Tries
// soffice first, then the libreoffice binary name; returns "" when neither
// produces a PDF.
func (r Renderer) RenderCoverLetter(ctx context.Context, docxPath string) string {
	if _, err := os.Stat(docxPath); err != nil {
		r.logf("[render] docx not found: %s", docxPath)
		return ""
	}
	outDir := filepath.Dir(docxPath)
	pdfPath := filepath.Join(outDir, stem(docxPath)+".pdf")

	for _, tool := range officeBins {
		if _, err := exec.LookPath(tool); err != nil {
			continue
		}
		runCtx, cancel := context.WithTimeout(ctx, runTimeout)
		cmd := exec.CommandContext(runCtx, tool, "--headless", "--convert-to", "pdf", "--outdir", outDir, docxPath)
		err := cmd.Run()
		cancel()
		if err != nil {
			r.logf("[render] %s conversion failed for %s: %v", filepath.Base(tool), filepath.Base(docxPath), err)
			continue
		}
		if _, err := os.Stat(pdfPath); err == nil {
			r.logf("[render] cover letter PDF converted: %s", pdfPath)
			return pdfPath
		}
	}

	r.logf("[render] could not convert %s to PDF, install LibreOffice", filepath.Base(docxPath))
	return ""
}
