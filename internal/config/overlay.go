package config

import (
	"os"
	"strings"
)

// OverlayEnv applies environment overrides after the file is loaded.
// NOTION_DATABASE_ID mirrors the keyring-backed secrets: handy for
// one-off runs without editing the config.
func OverlayEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("NOTION_DATABASE_ID")); v != "" {
		cfg.Notion.DatabaseID = v
	}
}
