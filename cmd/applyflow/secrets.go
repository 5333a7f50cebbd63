package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"applyflow/internal/secrets"
)

var knownSecrets = []string{
	secrets.AnthropicAPIKey,
	secrets.NotionAPIKey,
	secrets.IMAPPassword,
}

func secretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Store credentials in the OS keychain",
	}

	set := &cobra.Command{
		Use:   "set <name>",
		Short: "Store a secret (value read from stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := secretName(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "value for %s: ", name)
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read value: %w", err)
			}
			if err := secrets.Set(name, strings.TrimSpace(line)); err != nil {
				return err
			}
			log.Printf("[secrets] %s stored", name)
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear <name>",
		Short: "Remove a secret from the keychain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := secretName(args[0])
			if err != nil {
				return err
			}
			if err := secrets.Delete(name); err != nil {
				return err
			}
			log.Printf("[secrets] %s cleared", name)
			return nil
		},
	}

	cmd.AddCommand(set, clear)
	return cmd
}

func secretName(arg string) (string, error) {
	name := strings.ToUpper(strings.TrimSpace(arg))
	for _, known := range knownSecrets {
		if name == known {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown secret %q (one of: %s)", arg, strings.Join(knownSecrets, ", "))
}
