// applyflow scrapes job postings from ATS boards and LinkedIn alert
// emails, filters them to the target seniority band, tailors a resume and
// cover letter per job with Claude, renders PDFs, and records everything
// in a CSV tracker mirrored to Notion.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"applyflow/internal/config"
)

// version is stamped by the release build via -ldflags.
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:           "applyflow",
		Short:         "Personal job application automator",
		Long:          "applyflow scrapes job boards and LinkedIn alert emails, filters postings\nto your seniority band, tailors a resume and cover letter per job, and\ntracks every application in a CSV file and a Notion database.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default $APPLYFLOW_DATA_DIR or ~/.applyflow)")

	cmd.AddCommand(
		runCmd(&dataDir),
		setupNotionCmd(&dataDir),
		appliedCmd(&dataDir),
		historyCmd(&dataDir),
		secretsCmd(),
		doctorCmd(&dataDir),
	)
	return cmd
}

// loadConfig bootstraps the data dir on first use, then loads, overlays,
// and validates the config. Warnings are logged; errors refuse the command.
func loadConfig(dataDir string) (config.Config, error) {
	_ = godotenv.Load()

	if dataDir == "" {
		dataDir = os.Getenv("APPLYFLOW_DATA_DIR")
	}
	cfgPath, err := config.Ensure(dataDir)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, err
	}
	config.OverlayEnv(&cfg)

	normalized, res := config.NormalizeAndValidate(cfg)
	for _, w := range res.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !res.OK() {
		return config.Config{}, fmt.Errorf("config %s is invalid:\n- %s", cfgPath, strings.Join(res.Errors, "\n- "))
	}
	return normalized, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
