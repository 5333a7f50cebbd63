package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"applyflow/internal/archive"
	"applyflow/internal/config"
	"applyflow/internal/render"
	"applyflow/internal/secrets"
	"applyflow/internal/tracker"
)

// doctorCmd reports on everything a run depends on instead of failing at
// the first problem, so it loads config by hand rather than via loadConfig.
func doctorCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check config, credentials, documents, and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			dir := *dataDir
			if dir == "" {
				dir = os.Getenv("APPLYFLOW_DATA_DIR")
			}
			cfgPath, err := config.Ensure(dir)
			if err != nil {
				return err
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			config.OverlayEnv(&cfg)
			cfg, res := config.NormalizeAndValidate(cfg)

			fmt.Printf("config: %s\n", cfgPath)
			for _, e := range res.Errors {
				fmt.Printf("  [!!] %s\n", e)
			}
			for _, w := range res.Warnings {
				fmt.Printf("  [--] %s\n", w)
			}
			if res.OK() && len(res.Warnings) == 0 {
				fmt.Println("  [ok] valid")
			}

			fmt.Println("tools:")
			for _, tool := range render.Probe() {
				if tool.Found {
					fmt.Printf("  [ok] %s: %s\n", tool.Name, tool.Path)
				} else {
					fmt.Printf("  [--] %s: not found (PDFs will be skipped)\n", tool.Name)
				}
			}

			fmt.Println("secrets:")
			for _, name := range knownSecrets {
				if secrets.GetOptional(name) != "" {
					fmt.Printf("  [ok] %s\n", name)
				} else {
					fmt.Printf("  [--] %s: not set\n", name)
				}
			}

			fmt.Println("documents:")
			checkFile("resume template", cfg.Documents.ResumeTemplate, true)
			checkFile("profile", cfg.Documents.Profile, true)
			checkFile("cover letter template", cfg.Documents.CoverLetterTemplate, false)

			fmt.Println("tracking:")
			if tr, err := tracker.Load(cfg.TrackerCSVPath()); err != nil {
				fmt.Printf("  [!!] tracker: %v\n", err)
			} else {
				fmt.Printf("  [ok] tracker: %s (%d records)\n", cfg.TrackerCSVPath(), len(tr.Records()))
			}
			if db, err := archive.Open(cfg.ArchiveDBPath()); err != nil {
				fmt.Printf("  [!!] archive: %v\n", err)
			} else {
				merr := db.Migrate()
				_ = db.Close()
				if merr != nil {
					fmt.Printf("  [!!] archive: %v\n", merr)
				} else {
					fmt.Printf("  [ok] archive: %s\n", cfg.ArchiveDBPath())
				}
			}
			if cfg.Notion.DatabaseID != "" {
				fmt.Printf("  [ok] notion database: %s\n", cfg.Notion.DatabaseID)
			} else {
				fmt.Println("  [--] notion database id not set (run: applyflow setup-notion)")
			}

			if !res.OK() {
				return errors.New("config has errors")
			}
			return nil
		},
	}
}

// checkFile prints one document line. Missing required files are errors;
// missing optional ones just note the fallback.
func checkFile(label, path string, required bool) {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("  [ok] %s: %s\n", label, path)
		return
	}
	if required {
		fmt.Printf("  [!!] %s: %s missing\n", label, path)
		return
	}
	fmt.Printf("  [--] %s: %s not found (a plain letter is written instead)\n", label, path)
}
