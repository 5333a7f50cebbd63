package scrape

import (
	"context"
	"log"
	"time"

	"applyflow/internal/config"
	"applyflow/internal/domain"
	email_scrape "applyflow/internal/scrape/email"
	"applyflow/internal/scrape/greenhouse"
	"applyflow/internal/scrape/lever"
	"applyflow/internal/scrape/smartrecruiters"
	"applyflow/internal/scrape/types"
	"applyflow/internal/scrape/util"
	"applyflow/internal/scrape/workday"
)

// Runner fetches from every enabled source, one at a time. Sequential on
// purpose: this runs once a day on a personal machine, and slow-and-polite
// beats fast-and-blocked on every board involved.
type Runner struct {
	sources []types.Source
	opts    types.Options

	// Log receives run progress; nil means log.Default.
	Log *log.Logger
}

// NewRunner assembles the enabled sources from config. The IMAP password is
// passed in separately because it never lives in the config file.
func NewRunner(cfg config.Config, imapPassword string) *Runner {
	limiter := util.NewHostLimiter(2, 4)

	var sources []types.Source

	if cfg.Sources.Greenhouse.Enabled && len(cfg.Sources.Greenhouse.Boards) > 0 {
		sources = append(sources, greenhouse.New(greenhouse.Config{
			Boards: mapGreenhouseBoards(cfg.Sources.Greenhouse.Boards),
		}, limiter))
	}
	if cfg.Sources.Lever.Enabled && len(cfg.Sources.Lever.Boards) > 0 {
		sources = append(sources, lever.New(lever.Config{
			Boards: mapLeverBoards(cfg.Sources.Lever.Boards),
		}, limiter))
	}
	if cfg.Sources.SmartRecruiters.Enabled && len(cfg.Sources.SmartRecruiters.Boards) > 0 {
		sources = append(sources, smartrecruiters.New(smartrecruiters.Config{
			Boards: mapSmartRecruitersBoards(cfg.Sources.SmartRecruiters.Boards),
		}, limiter))
	}
	if cfg.Sources.Workday.Enabled && len(cfg.Sources.Workday.Boards) > 0 {
		sources = append(sources, workday.New(workday.Config{
			Boards: mapWorkdayBoards(cfg.Sources.Workday.Boards),
		}, limiter))
	}
	if cfg.Email.Enabled && imapPassword != "" {
		sources = append(sources, email_scrape.New(email_scrape.Config{
			Addr:     cfg.IMAPAddr(),
			Username: cfg.Email.Username,
			Password: imapPassword,
			Mailbox:  cfg.Email.Mailbox,
			Senders:  cfg.Email.Senders,
		}))
	}

	return &Runner{
		sources: sources,
		opts: types.Options{
			Queries:      cfg.Search.Queries,
			Window:       time.Duration(cfg.Search.HoursOld) * time.Hour,
			MaxPerSource: cfg.Search.ResultsPerQuery,
		},
	}
}

// Run fetches from each source in turn. One broken or slow board never kills
// the run; its error is logged and the rest proceed.
func (r *Runner) Run(ctx context.Context) []domain.JobPosting {
	var out []domain.JobPosting

	for _, src := range r.sources {
		if ctx.Err() != nil {
			r.logf("[scrape] aborted: %v", ctx.Err())
			break
		}

		timeout := 2 * time.Minute
		switch src.Name() {
		case "greenhouse", "lever", "smartrecruiters", "workday":
			timeout = 5 * time.Minute
		}

		fctx, cancel := context.WithTimeout(ctx, timeout)
		r.logf("[%s] Running...", src.Name())
		jobs, err := src.Fetch(fctx, r.opts)
		cancel()

		if err != nil {
			r.logf("[scrape:%s] error: %v", src.Name(), err)
			continue
		}
		r.logf("[scrape] source=%s jobs=%d", src.Name(), len(jobs))
		out = append(out, jobs...)
	}

	r.logf("[scrape] done sources=%d jobs=%d", len(r.sources), len(out))
	return out
}

func (r *Runner) logf(format string, args ...any) {
	l := r.Log
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}

func mapGreenhouseBoards(in []config.Board) []greenhouse.Board {
	out := make([]greenhouse.Board, 0, len(in))
	for _, b := range in {
		out = append(out, greenhouse.Board{Slug: b.Slug, Name: b.Name})
	}
	return out
}

func mapLeverBoards(in []config.Board) []lever.Board {
	out := make([]lever.Board, 0, len(in))
	for _, b := range in {
		out = append(out, lever.Board{Slug: b.Slug, Name: b.Name})
	}
	return out
}

func mapSmartRecruitersBoards(in []config.Board) []smartrecruiters.Board {
	out := make([]smartrecruiters.Board, 0, len(in))
	for _, b := range in {
		out = append(out, smartrecruiters.Board{Slug: b.Slug, Name: b.Name})
	}
	return out
}

func mapWorkdayBoards(in []config.Board) []workday.Board {
	out := make([]workday.Board, 0, len(in))
	for _, b := range in {
		out = append(out, workday.Board{Slug: b.Slug, Name: b.Name})
	}
	return out
}
