package config

import (
	"fmt"
	"strings"
	"time"
)

type Validation struct {
	Errors   []string
	Warnings []string
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate trims and dedupes list fields and checks the config
// for problems. Errors make the config unusable; warnings are advisory.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Search.Queries = trimList(out.Search.Queries)
	out.Search.Locations = trimList(out.Search.Locations)
	out.Filter.SeniorKeywords = trimList(out.Filter.SeniorKeywords)
	out.Filter.JuniorKeywords = trimList(out.Filter.JuniorKeywords)
	out.Email.Senders = trimList(out.Email.Senders)

	// ---- Validation rules ----

	if _, err := time.Parse("15:04", out.Schedule.RunTime); err != nil {
		res.addErr("schedule.run_time %q is not HH:MM 24h time", out.Schedule.RunTime)
	}

	if out.Search.HoursOld <= 0 {
		res.addErr("search.hours_old must be > 0")
	}
	if out.Search.ResultsPerQuery <= 0 {
		res.addErr("search.results_per_query must be > 0")
	} else if out.Search.ResultsPerQuery > 100 {
		res.addWarn("search.results_per_query is very high (%d); each new job costs an LLM call.", out.Search.ResultsPerQuery)
	}
	if len(out.Search.Locations) == 0 {
		res.addWarn("search.locations is empty; the location filter will accept every posting.")
	}
	if len(out.Search.Queries) == 0 {
		res.addWarn("search.queries is empty; board sources will keep every posting.")
	}

	if out.Filter.MaxYearsExperience < 0 {
		res.addErr("filter.max_years_experience must be >= 0")
	}
	if len(out.Filter.SeniorKeywords) == 0 {
		res.addWarn("filter.senior_keywords is empty; no seniority rejection will happen.")
	}

	checkBoards := func(name string, s BoardSource) {
		if !s.Enabled {
			return
		}
		if len(s.Boards) == 0 {
			res.addWarn("sources.%s is enabled with no boards.", name)
		}
		for i, b := range s.Boards {
			if strings.TrimSpace(b.Slug) == "" {
				res.addErr("sources.%s.boards[%d].slug is required", name, i)
			}
		}
	}
	checkBoards("greenhouse", out.Sources.Greenhouse)
	checkBoards("lever", out.Sources.Lever)
	checkBoards("smartrecruiters", out.Sources.SmartRecruiters)
	checkBoards("workday", out.Sources.Workday)

	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Mailbox) == "" {
			res.addErr("email.mailbox is required when email.enabled=true")
		}
		if len(out.Email.Senders) == 0 {
			res.addWarn("email.senders is empty; every unseen message will be scanned for job alerts.")
		}
	}

	if !out.Email.Enabled &&
		!out.Sources.Greenhouse.Enabled &&
		!out.Sources.Lever.Enabled &&
		!out.Sources.SmartRecruiters.Enabled &&
		!out.Sources.Workday.Enabled {
		res.addWarn("no sources enabled; a run will scrape nothing.")
	}

	if strings.TrimSpace(out.LLM.Model) == "" {
		res.addErr("llm.model is required")
	}
	if strings.TrimSpace(out.Notion.DatabaseID) == "" {
		res.addWarn("notion.database_id is empty; tracking is CSV-only until setup-notion runs.")
	}

	return out, res
}
