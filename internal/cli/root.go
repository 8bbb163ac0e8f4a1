// Package cli provides the Cobra command structure for pdfobjedit.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/pdfobjedit/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root pdfobjedit command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "pdfobjedit",
		Short: "Edit the raw objects of a PDF container",
		Long: `pdfobjedit opens a PDF container, lets you rewrite individual objects or
their embedded streams in your text editor, and writes a new container with a
rebuilt cross-reference table.

The original file is never modified. Edits are written to <file>.modified.pdf
unless --output or the output_suffix setting says otherwise.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
			cmd.SetContext(logging.WithLogger(commandContext(cmd), logging.Default()))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newEditCommand())
	rootCmd.AddCommand(newXrefCommand())
	rootCmd.AddCommand(newBlankCommand())
	rootCmd.AddCommand(newSearchCommand())
	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
