package config

import (
	"errors"
	"os"
	"path/filepath"
)

// Ensure creates the data dir, a default config, and starter document
// templates on first run. Existing files are never touched.
// Returns the config path.
func Ensure(dataDir string) (string, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".applyflow")
	}
	if err := os.MkdirAll(filepath.Join(dataDir, "templates"), 0o755); err != nil {
		return "", err
	}

	cfgPath := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(cfgPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		cfg := Default()
		cfg.App.DataDir = dataDir
		cfg.applyDefaultPaths()
		if err := SaveAtomic(cfgPath, cfg); err != nil {
			return "", err
		}
	}

	if err := writeIfMissing(filepath.Join(dataDir, "templates", "resume.tex"), starterResumeTeX); err != nil {
		return "", err
	}
	if err := writeIfMissing(filepath.Join(dataDir, "profile.md"), starterProfile); err != nil {
		return "", err
	}

	return cfgPath, nil
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

const starterResumeTeX = `\documentclass[11pt]{article}
\usepackage[margin=0.75in]{geometry}
\usepackage{enumitem}
\setlist[itemize]{noitemsep,topsep=2pt,leftmargin=*}
\pagestyle{empty}

\begin{document}

\begin{center}
{\LARGE Your Name}\\[2pt]
City, Country \textbar{} you@example.com \textbar{} +1 (555) 000-0000
\end{center}

\section*{Objective}
Replace this with a one-sentence objective. The tailoring step rewrites it per job.

\section*{Technical Skills}
\begin{itemize}
  \item Languages: ...
  \item Frameworks: ...
  \item Tools: ...
\end{itemize}

\section*{Experience}
\textbf{Job Title} --- Company, City \hfill 2022--2024
\begin{itemize}
  \item Replace with real bullet points; keep one achievement per line.
\end{itemize}

\section*{Education}
\textbf{Degree} --- School \hfill Year

\end{document}
`

const starterProfile = `# Candidate profile

This file is sent to the language model with every tailoring request.
Replace it with your real background: name, location, contact, a short
summary, education, work experience, and key skills. Plain text or
markdown, a page or so.
`
