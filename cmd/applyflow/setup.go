package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"

	"applyflow/internal/config"
	"applyflow/internal/notion"
	"applyflow/internal/secrets"
)

func setupNotionCmd(dataDir *string) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "setup-notion",
		Short: "Create the Notion tracking database under a page and save its id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if parent == "" {
				return errors.New("--parent is required (the Notion page id to create the database under)")
			}
			cfg, err := loadConfig(*dataDir)
			if err != nil {
				return err
			}
			token, err := secrets.Get(secrets.NotionAPIKey)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			dbID, err := notion.CreateTrackingDatabase(ctx, token, parent)
			if err != nil {
				return err
			}

			cfg.Notion.DatabaseID = dbID
			if err := config.SaveAtomic(cfg.ConfigPath(), cfg); err != nil {
				return err
			}
			log.Printf("[notion] tracking database %s created, id saved to %s", dbID, cfg.ConfigPath())
			return nil
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Notion page id the integration is shared with")
	return cmd
}
