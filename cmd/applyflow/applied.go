package main

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"

	"applyflow/internal/domain"
	"applyflow/internal/notion"
	"applyflow/internal/scrape/util"
	"applyflow/internal/secrets"
	"applyflow/internal/tracker"
)

func appliedCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "applied <job-url>",
		Short: "Mark a tracked job as applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*dataDir)
			if err != nil {
				return err
			}
			tr, err := tracker.Load(cfg.TrackerCSVPath())
			if err != nil {
				return err
			}

			// Strip tracking params so a pasted browser URL matches the
			// canonical form the tracker stores.
			url := util.CanonicalizeURL(args[0])
			if err := tr.SetStatus(url, domain.StatusApplied); err != nil {
				return err
			}
			rec, _ := tr.Lookup(url)
			log.Printf("[tracker] %s - %s marked applied", rec.Company, rec.Title)

			if rec.NotionPageID == "" {
				return nil
			}
			sink := notion.NewSink(secrets.GetOptional(secrets.NotionAPIKey), cfg.Notion.DatabaseID)
			if !sink.Enabled() {
				return nil
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := sink.UpdateStatus(ctx, rec.NotionPageID, domain.StatusApplied, rec.AppliedAt); err != nil {
				log.Printf("[notion] status update failed: %v", err)
			}
			return nil
		},
	}
}
