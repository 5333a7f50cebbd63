package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"applyflow/internal/archive"
)

func historyCmd(dataDir *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent filter decisions from the run archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*dataDir)
			if err != nil {
				return err
			}
			db, err := archive.Open(cfg.ArchiveDBPath())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Migrate(); err != nil {
				return err
			}

			rows, err := db.RecentDecisions(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("no decisions recorded yet")
				return nil
			}

			fmt.Printf("%-16s %-7s %-15s %-22s %-32s %s\n",
				"RECORDED", "VERDICT", "REASON", "COMPANY", "TITLE", "URL")
			fmt.Println(strings.Repeat("-", 110))
			for _, r := range rows {
				verdict := "accept"
				reason := "-"
				if !r.Accepted {
					verdict = "reject"
					reason = r.Reason
				}
				fmt.Printf("%-16s %-7s %-15s %-22s %-32s %s\n",
					r.RecordedAt.Format("2006-01-02 15:04"), verdict, reason,
					clip(r.Company, 22), clip(r.Title, 32), r.URL)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 25, "number of decisions to show")
	return cmd
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
