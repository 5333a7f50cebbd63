package main

import (
	"context"
	"errors"
	"log"

	"github.com/spf13/cobra"

	"applyflow/internal/archive"
	"applyflow/internal/config"
	"applyflow/internal/filter"
	"applyflow/internal/llm"
	"applyflow/internal/notion"
	"applyflow/internal/pipeline"
	"applyflow/internal/scheduler"
	"applyflow/internal/scrape"
	"applyflow/internal/secrets"
	"applyflow/internal/tailor"
	"applyflow/internal/tracker"
)

func runCmd(dataDir *string) *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline daily at the scheduled time (or once with --now)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*dataDir)
			if err != nil {
				return err
			}

			p, cleanup, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signalContext()
			defer stop()

			if now {
				return p.Run(ctx)
			}

			err = scheduler.Daily(ctx, cfg.Schedule.RunTime, "run", p.Run)
			if errors.Is(err, context.Canceled) {
				log.Printf("[run] shutting down")
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&now, "now", false, "run once immediately instead of waiting for the schedule")
	return cmd
}

// buildPipeline assembles the pipeline from config and stored secrets. The
// Anthropic key is required; Notion, email, and the archive degrade to off
// when their pieces are missing.
func buildPipeline(cfg config.Config) (*pipeline.Pipeline, func(), error) {
	anthropicKey, err := secrets.Get(secrets.AnthropicAPIKey)
	if err != nil {
		return nil, nil, err
	}

	imapPassword := ""
	if cfg.Email.Enabled {
		imapPassword = secrets.GetOptional(secrets.IMAPPassword)
		if imapPassword == "" {
			log.Printf("[email] %s not set, alert emails will be skipped", secrets.IMAPPassword)
		}
	}

	var remote pipeline.RemoteSink
	if token := secrets.GetOptional(secrets.NotionAPIKey); token != "" {
		remote = notion.NewSink(token, cfg.Notion.DatabaseID)
	} else {
		log.Printf("[notion] %s not set, tracking locally only", secrets.NotionAPIKey)
	}

	tr, err := tracker.Load(cfg.TrackerCSVPath())
	if err != nil {
		return nil, nil, err
	}

	db := openArchive(cfg.ArchiveDBPath())
	cleanup := func() {
		if db != nil {
			_ = db.Close()
		}
	}

	gen := llm.NewClient(anthropicKey, cfg.LLM.Model)

	p := &pipeline.Pipeline{
		Cfg:     cfg,
		Scraper: scrape.NewRunner(cfg, imapPassword),
		Filter:  filter.New(cfg),
		Tracker: tr,
		Docs:    tailor.New(gen, cfg.Documents.ResumeTemplate, cfg.Documents.Profile),
		Remote:  remote,
		Archive: db,
	}
	return p, cleanup, nil
}

// openArchive opens and migrates the decision archive. A broken archive
// disables auditing for the run rather than blocking it.
func openArchive(path string) *archive.DB {
	db, err := archive.Open(path)
	if err != nil {
		log.Printf("[archive] disabled: %v", err)
		return nil
	}
	if err := db.Migrate(); err != nil {
		log.Printf("[archive] disabled: %v", err)
		_ = db.Close()
		return nil
	}
	return db
}
