package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/pdfobjedit/internal/configloader"
	"github.com/yaklabco/pdfobjedit/internal/logging"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new pdfobjedit configuration file",
		Long: `Create a new .pdfobjedit.yml configuration file in the current directory
with the default output and scratch suffixes. Editor and pager entries are
written commented out so $VISUAL, $EDITOR and $PAGER keep working.

Examples:
  pdfobjedit init                      Create .pdfobjedit.yml
  pdfobjedit init --force              Overwrite an existing file
  pdfobjedit init --output custom.yml  Write to a custom file path`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", configloader.ProjectConfigName, "Output file path")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.FromContext(commandContext(cmd))

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return fmt.Errorf("file %q already exists; use --force to overwrite", flags.output)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, flags.output)
	}

	if err := configloader.WriteDefault(commandContext(cmd), absPath, true); err != nil {
		return err
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	for _, env := range configloader.ListEnvVars() {
		logger.Debug("environment override", "variable", env[0], "description", env[1])
	}

	return nil
}
