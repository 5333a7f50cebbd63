// Package docx writes and fills minimal WordprocessingML (.docx) documents
// for the cover letter. A .docx is a zip archive; only the document part,
// the content types manifest, and the package relationships are required
// for Word and LibreOffice to open it.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"applyflow/internal/domain"
)

const coverLetterFileName = "cover_letter.docx"

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const (
	docHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	docFooter = `</w:body></w:document>`
)

// lineBreak closes the current text element, emits a run-level break, and
// reopens text. Substituted values sit inside <w:t>, where a bare newline
// has no meaning.
const lineBreak = `</w:t><w:br/><w:t xml:space="preserve">`

// Writer builds cover letter documents. TemplatePath and CandidateName may
// be empty; the zero value writes minimal documents from scratch.
type Writer struct {
	TemplatePath  string
	CandidateName string

	// Log receives fallback notices; nil means log.Default.
	Log *log.Logger
}

func (w Writer) logf(format string, args ...any) {
	l := w.Log
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}

// WriteCoverLetter builds cover_letter.docx in dir and returns its path.
// When a template exists at w.TemplatePath it is copied with its
// {{COVER_LETTER_BODY}}, {{COMPANY}}, {{ROLE}} and {{DATE}} placeholders
// substituted; otherwise a minimal document is written from scratch with a
// date line, a subject line, the body paragraphs, and a sign-off.
func (w Writer) WriteCoverLetter(dir string, job domain.JobPosting, body string, now time.Time) (string, error) {
	out := filepath.Join(dir, coverLetterFileName)

	if w.TemplatePath != "" {
		if _, err := os.Stat(w.TemplatePath); err == nil {
			if err := w.fillTemplate(out, job, body, now); err != nil {
				return "", fmt.Errorf("fill cover letter template: %w", err)
			}
			return out, nil
		}
		w.logf("[docx] cover letter template not found at %s, writing a minimal document", w.TemplatePath)
	}

	paras := []string{now.Format("January 2, 2006"), "", "Re: " + job.Title + " - " + job.Company, ""}
	paras = append(paras, strings.Split(body, "\n\n")...)
	if w.CandidateName != "" {
		paras = append(paras, "", "Sincerely,", w.CandidateName)
	}
	if err := Write(out, paras); err != nil {
		return "", fmt.Errorf("write cover letter: %w", err)
	}
	return out, nil
}

// Write creates a .docx at path containing the given paragraphs, one
// <w:p> each. An empty string produces an empty paragraph.
func Write(path string, paragraphs []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(f)
	entries := []struct{ name, data string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML(paragraphs)},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err == nil {
			_, err = w.Write([]byte(e.data))
		}
		if err != nil {
			f.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fillTemplate copies the template archive entry by entry, rewriting
// word/document.xml with the placeholder substitutions. When no placeholder
// occurs anywhere in the document, the body is appended as new paragraphs
// at the end instead, so a template without markers still yields a usable
// letter.
func (w Writer) fillTemplate(outPath string, job domain.JobPosting, body string, now time.Time) error {
	repl := map[string]string{
		"{{COVER_LETTER_BODY}}": body,
		"{{COMPANY}}":           job.Company,
		"{{ROLE}}":              job.Title,
		"{{DATE}}":              now.Format("January 2, 2006"),
	}

	r, err := zip.OpenReader(w.TemplatePath)
	if err != nil {
		return err
	}
	defer r.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)

	for _, zf := range r.File {
		rc, err := zf.Open()
		if err != nil {
			out.Close()
			return err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			out.Close()
			return err
		}

		if zf.Name == "word/document.xml" {
			doc := string(data)
			replaced := false
			for token, value := range repl {
				if strings.Contains(doc, token) {
					doc = strings.ReplaceAll(doc, token, runText(value))
					replaced = true
				}
			}
			if !replaced {
				w.logf("[docx] no placeholders in cover letter template, appending body")
				doc = appendParagraphs(doc, append([]string{""}, strings.Split(body, "\n\n")...))
			}
			data = []byte(doc)
		}

		ew, err := zw.Create(zf.Name)
		if err == nil {
			_, err = ew.Write(data)
		}
		if err != nil {
			out.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func documentXML(paragraphs []string) string {
	var b strings.Builder
	b.WriteString(docHeader)
	for _, p := range paragraphs {
		b.WriteString(paragraphXML(p))
	}
	b.WriteString(docFooter)
	return b.String()
}

func paragraphXML(text string) string {
	if text == "" {
		return "<w:p/>"
	}
	return `<w:p><w:r><w:t xml:space="preserve">` + runText(text) + `</w:t></w:r></w:p>`
}

// runText escapes a value for insertion inside a <w:t> element, turning
// newlines into run-level breaks.
func runText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = escape(line)
	}
	return strings.Join(lines, lineBreak)
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

// appendParagraphs injects paragraphs just before the closing body tag.
// Documents without a recognizable body are left untouched.
func appendParagraphs(doc string, paragraphs []string) string {
	i := strings.LastIndex(doc, "</w:body>")
	if i < 0 {
		return doc
	}
	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString(paragraphXML(p))
	}
	return doc[:i] + b.String() + doc[i:]
}
