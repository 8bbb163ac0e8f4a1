package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/yaklabco/pdfobjedit/internal/repl"
	"github.com/yaklabco/pdfobjedit/internal/session"
	"github.com/yaklabco/pdfobjedit/pkg/reporter"
)

// xrefFlags holds the flags for the xref command.
type xrefFlags struct {
	format  string
	compact bool
}

func newXrefCommand() *cobra.Command {
	flags := &xrefFlags{}

	cmd := &cobra.Command{
		Use:   "xref <file>",
		Short: "Print the cross-reference table",
		Long: `Print every entry of a container's cross-reference table together with the
byte length derived for it from the offsets of its neighbours.

Examples:
  pdfobjedit xref doc.pdf                 Styled table
  pdfobjedit xref doc.pdf --format json   Machine-readable listing`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runXref(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "Write JSON without indentation")

	return cmd
}

func runXref(cmd *cobra.Command, path string, flags *xrefFlags) error {
	format, err := reporter.ParseFormat(flags.format)
	if err != nil {
		return errors.Join(ErrInvalidFlag, err)
	}

	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}

	sess, err := session.Open(commandContext(cmd), path, session.Options{})
	if err != nil {
		return err
	}
	defer sess.Close()

	rep, err := reporter.New(reporter.Options{
		Writer:  cmd.OutOrStdout(),
		Format:  format,
		Color:   string(cfg.Color),
		Compact: flags.compact,
	})
	if err != nil {
		return err
	}

	return rep.Report(commandContext(cmd), &reporter.Listing{
		Path:        path,
		TableOffset: sess.Table().TableOffset,
		Rows:        repl.IndexRows(sess),
	})
}
