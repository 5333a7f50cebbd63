package render

import "os/exec"

// Tool reports whether one external binary is on PATH.
type Tool struct {
	Name  string
	Path  string
	Found bool
}

// Probe checks for the rendering binaries. Either soffice or libreoffice
// is enough for cover letter conversion.
func Probe() []Tool {
	names := append([]string{pdflatexBin}, officeBins...)
	tools := make([]Tool, 0, len(names))
	for _, name := range names {
		p, err := exec.LookPath(name)
		tools = append(tools, Tool{Name: name, Path: p, Found: err == nil})
	}
	return tools
}
