package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/passmigrate/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/passmigrate.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new passmigrate configuration file",
		Long: `Initialize creates a new .passmigrate configuration file in the current directory.

The generated file includes:
- Commented defaults for the store root, output path, and gpg binary
- Examples for the agent preset (keygrip) and username labels
- Documentation for all available options

The GPG passphrase has no place in this file; use the
PASSMIGRATE_GPG_PASSPHRASE environment variable instead.

Examples:
  # Create .passmigrate in current directory
  passmigrate init

  # Create config file at a specific path
  passmigrate init -o ~/.config/passmigrate/.passmigrate

  # Force overwrite existing file
  passmigrate init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/passmigrate.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write configuration file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Printf("Created configuration file: %s\n", outputPath)
	fmt.Println("\nEdit this file to configure settings such as:")
	fmt.Println("  - Password store root and CSV destination")
	fmt.Println("  - GPG binary, keygrip, and decryption timeout")
	fmt.Println("  - Username labels recognized during classification")

	return nil
}
