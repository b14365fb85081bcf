package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/passmigrate/internal/config"
	"github.com/nao1215/passmigrate/internal/database"
	"github.com/nao1215/passmigrate/internal/report"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit caps the listing when --limit is not given.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command lists export runs recorded in the local run database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past export runs",
		Long: `History lists export runs recorded in the local run database.

Each completed export stores one record: when it ran, how many entries
succeeded and failed, where the CSV went, and the SHA3-256 checksum of
the written file. Matching checksums across runs mean the store content
has not changed in between.

The database only ever holds entry names, failure reasons, and counts.
No passwords or decrypted data are recorded.

Examples:
  # List the most recent export runs
  passmigrate history

  # List only the last three runs
  passmigrate history --limit 3

  # Show one run in full, including its failure list
  passmigrate history --run-id 9f0c1b2a-...

  # Output run records in JSON format
  passmigrate history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultHistoryLimit,
		"Maximum number of runs to list")
	cmd.Flags().StringP("run-id", "i", "",
		"Show the full record of a single run (use the listing to find IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Output run records in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	runID, err := cmd.Flags().GetString("run-id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	dbDir, err := resolveDBDir(cmd)
	if err != nil {
		return err
	}

	// A missing database is an error here, unlike during export: there is
	// nothing to list, and creating an empty database just to say so
	// would be pointless.
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open run database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if runID != "" {
		return showRun(ctx, db, runID, jsonOutput)
	}
	return listRuns(ctx, db, limit, jsonOutput)
}

// resolveDBDir determines the run database directory the same way export
// does: defaults, then the YAML config file. There is no flag or
// environment variable for it.
func resolveDBDir(cmd *cobra.Command) (string, error) {
	cfg := config.NewConfig()

	configFilePath := getConfigFlag(cmd)
	explicitConfigPath := configFilePath != ""
	configPath := config.FindConfigFile(configFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return "", fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return "", fmt.Errorf("configuration file not found: %s", configFilePath)
	}

	return cfg.DBDir, nil
}

// listRuns lists recorded export runs, newest first.
func listRuns(ctx context.Context, db *database.RunDB, limit int, jsonOutput bool) error {
	records, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No export runs recorded yet.")
		fmt.Println("\nUse 'passmigrate export' to migrate a store.")
		return nil
	}

	fmt.Printf("Export runs (%d):\n\n", len(records))
	fmt.Printf("  %-36s  %-20s  %8s  %6s  %6s  %s\n",
		"Run ID", "Date", "Entries", "OK", "Failed", "Output")
	fmt.Println("  " + strings.Repeat("-", 96))

	for _, rec := range records {
		output := rec.OutputPath
		if rec.DryRun {
			output += " (dry run)"
		}
		fmt.Printf("  %-36s  %-20s  %8d  %6d  %6d  %s\n",
			rec.RunID,
			rec.StartedAt.Format("2006-01-02 15:04:05"),
			rec.TotalEntries,
			rec.Succeeded,
			rec.Failed,
			output,
		)
	}

	fmt.Println("\nUse 'passmigrate history --run-id <id>' to see one run in full.")

	return nil
}

// showRun displays the full record of a single run.
func showRun(ctx context.Context, db *database.RunDB, runID string, jsonOutput bool) error {
	rep, err := db.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	if rep == nil {
		return fmt.Errorf("run %s not found (use 'passmigrate history' to list recorded runs)", runID)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rep)
	}

	writer := report.NewSimpleWriter(os.Stdout, report.WithVerbose(true), report.WithShowEmpty(true))
	_, err = writer.Write(rep)
	return err
}
