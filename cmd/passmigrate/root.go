// Package main provides the entry point for the passmigrate CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for passmigrate.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passmigrate",
		Short: "Migrate a pass store to a Proton Pass CSV",
		Long: `passmigrate migrates a GPG-encrypted pass (password-store) hierarchy into
a flat CSV file that Proton Pass can import.

Entries are decrypted one at a time with your local gpg binary, classified
into login fields (password, username, email, note), and written as one
CSV row per entry. Decrypted payloads only ever exist in memory; the CSV
holds every secret in clear text, so delete it after importing.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .passmigrate in current, XDG config, or home directory)")

	// Add subcommands
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
