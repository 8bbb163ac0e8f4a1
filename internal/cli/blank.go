package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/pdfobjedit/internal/logging"
	"github.com/yaklabco/pdfobjedit/internal/repl"
	"github.com/yaklabco/pdfobjedit/internal/session"
	"github.com/yaklabco/pdfobjedit/pkg/config"
)

func newBlankCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "blank <file> <n|range>...",
		Short: "Replace objects with empty streams and export",
		Long: `Replace each listed object with an empty stream object that keeps its
generation number, then write the modified container.

Ranges are start-end or start-end+step. Numbers may use 0x, 0o or 0b
prefixes. Numbers outside the table are skipped.

Examples:
  pdfobjedit blank report.pdf 7
  pdfobjedit blank report.pdf 10-40+2 0x30
  pdfobjedit blank report.pdf 5 --output clean.pdf`,
		Args: cobra.MinimumNArgs(2), //nolint:mnd // file plus at least one object
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlank(cmd, args[0], args[1:], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: <file> + output_suffix)")

	return cmd
}

func runBlank(cmd *cobra.Command, path string, ranges []string, output string) error {
	cfg, err := resolveConfig(cmd, &config.Config{Output: output})
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	sess, err := session.Open(ctx, path, session.Options{
		OutputPath: cfg.OutputPath(path),
		Backups:    backupConfig(cfg),
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	objects, err := repl.ExpandRanges(ranges, sess.Table().Len())
	if err != nil {
		return err
	}

	for _, n := range objects {
		if err := sess.Blank(n); err != nil {
			return err
		}
		logger.Debug("object replaced", logging.FieldObject, n)
	}

	result, err := sess.Export(ctx)
	if err != nil {
		return fmt.Errorf("export %s: %w", cfg.OutputPath(path), err)
	}

	styles, _ := outputStyles(cmd, cfg)
	fmt.Fprint(cmd.OutOrStdout(), styles.FormatExportSummary(repl.ExportStats(sess, result)))
	return nil
}
