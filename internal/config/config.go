package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Board is one company board on an ATS, e.g.
// https://boards.greenhouse.io/<slug> or https://api.lever.co/v0/postings/<slug>.
type Board struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

type BoardSource struct {
	Enabled bool    `yaml:"enabled"`
	Boards  []Board `yaml:"boards"`
}

type Config struct {
	App struct {
		DataDir   string `yaml:"data_dir"`   // tracker CSV, archive DB, lock, templates
		OutputDir string `yaml:"output_dir"` // per-job document folders
	} `yaml:"app"`

	Schedule struct {
		RunTime string `yaml:"run_time"` // 24h local time, e.g. "09:00"
	} `yaml:"schedule"`

	Search struct {
		Queries         []string `yaml:"queries"`
		Locations       []string `yaml:"locations"`
		HoursOld        int      `yaml:"hours_old"`
		ResultsPerQuery int      `yaml:"results_per_query"`
	} `yaml:"search"`

	Filter struct {
		MaxYearsExperience int      `yaml:"max_years_experience"`
		SeniorKeywords     []string `yaml:"senior_keywords"`
		JuniorKeywords     []string `yaml:"junior_keywords"`
	} `yaml:"filter"`

	Sources struct {
		Greenhouse      BoardSource `yaml:"greenhouse"`
		Lever           BoardSource `yaml:"lever"`
		SmartRecruiters BoardSource `yaml:"smartrecruiters"`
		Workday         BoardSource `yaml:"workday"` // slugs are full board URLs
	} `yaml:"sources"`

	Email struct {
		Enabled  bool     `yaml:"enabled"`
		IMAPHost string   `yaml:"imap_host"`
		IMAPPort int      `yaml:"imap_port"`
		Username string   `yaml:"username"`
		Mailbox  string   `yaml:"mailbox"`
		Senders  []string `yaml:"senders"` // job-alert sender addresses
	} `yaml:"email"`

	Notion struct {
		DatabaseID string `yaml:"database_id"`
	} `yaml:"notion"`

	LLM struct {
		Model string `yaml:"model"`
	} `yaml:"llm"`

	Documents struct {
		ResumeTemplate      string `yaml:"resume_template"`
		CoverLetterTemplate string `yaml:"cover_letter_template"`
		Profile             string `yaml:"profile"`
		CandidateName       string `yaml:"candidate_name"`
	} `yaml:"documents"`
}

func Default() Config {
	var cfg Config

	cfg.Schedule.RunTime = "09:00"

	cfg.Search.Queries = []string{
		"fullstack developer",
		"full stack developer",
		"backend engineer",
		"software engineer",
	}
	cfg.Search.Locations = []string{
		"canada", "ontario", "bc", "alberta", "quebec", "british columbia",
		"toronto", "vancouver", "montreal", "calgary", "ottawa",
	}
	cfg.Search.HoursOld = 24
	cfg.Search.ResultsPerQuery = 20

	cfg.Filter.MaxYearsExperience = 5
	cfg.Filter.SeniorKeywords = []string{
		"senior", "sr.", "lead", "principal", "staff", "architect",
		"head of", "director", "manager", "10+ years", "8+ years", "7+ years",
	}
	cfg.Filter.JuniorKeywords = []string{
		"junior", "intermediate", "mid-level", "associate", "entry",
		"0-3 years", "1-3 years", "2-4 years", "2-5 years", "3-5 years", "new grad",
	}

	cfg.Email.IMAPHost = "imap.gmail.com"
	cfg.Email.IMAPPort = 993
	cfg.Email.Mailbox = "INBOX"
	cfg.Email.Senders = []string{
		"jobalerts-noreply@linkedin.com",
		"jobs-noreply@linkedin.com",
	}

	cfg.LLM.Model = "claude-sonnet-4-6"

	return cfg
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaultPaths()
	return cfg, nil
}

// applyDefaultPaths fills path fields left empty in the file.
func (c *Config) applyDefaultPaths() {
	if c.App.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.App.DataDir = filepath.Join(home, ".applyflow")
	}
	if c.App.OutputDir == "" {
		c.App.OutputDir = filepath.Join(c.App.DataDir, "output")
	}
	if c.Documents.ResumeTemplate == "" {
		c.Documents.ResumeTemplate = filepath.Join(c.App.DataDir, "templates", "resume.tex")
	}
	if c.Documents.CoverLetterTemplate == "" {
		c.Documents.CoverLetterTemplate = filepath.Join(c.App.DataDir, "templates", "cover_letter.docx")
	}
	if c.Documents.Profile == "" {
		c.Documents.Profile = filepath.Join(c.App.DataDir, "profile.md")
	}
}

func (c Config) ConfigPath() string     { return filepath.Join(c.App.DataDir, "config.yaml") }
func (c Config) TrackerCSVPath() string { return filepath.Join(c.App.DataDir, "applied_jobs.csv") }
func (c Config) ArchiveDBPath() string  { return filepath.Join(c.App.DataDir, "applyflow.db") }
func (c Config) LockPath() string       { return filepath.Join(c.App.DataDir, "applyflow.lock") }

// IMAPAddr joins host and port for dialing.
func (c Config) IMAPAddr() string {
	port := c.Email.IMAPPort
	if port == 0 {
		port = 993
	}
	return fmt.Sprintf("%s:%d", c.Email.IMAPHost, port)
}
