package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/pdfobjedit/internal/extcmd"
	"github.com/yaklabco/pdfobjedit/internal/logging"
	"github.com/yaklabco/pdfobjedit/internal/repl"
	"github.com/yaklabco/pdfobjedit/internal/session"
	"github.com/yaklabco/pdfobjedit/pkg/config"
)

// annotationInteractive holds the interactive command list shown in help.
const annotationInteractive = "interactive"

type editFlags struct {
	output string
	editor string
	pager  string
}

func newEditCommand() *cobra.Command {
	flags := &editFlags{}

	cmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "Edit objects interactively",
		Long: `Open a container and read editing commands from standard input.

Objects are loaded on demand. Edits stay in memory until "ex" writes the
modified container; the source file is only ever read.

Examples:
  pdfobjedit edit report.pdf
  pdfobjedit edit report.pdf --output fixed.pdf
  pdfobjedit edit report.pdf --editor "nano" --pager "less -R"
  printf 'mtos 12-20\nex\nq\n' | pdfobjedit edit report.pdf`,
		Args: cobra.ExactArgs(1),
		Annotations: map[string]string{
			annotationInteractive: repl.HelpText(),
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output path (default: <file> + output_suffix)")
	cmd.Flags().StringVar(&flags.editor, "editor", "", "Editor command line (default: $VISUAL, $EDITOR, vim)")
	cmd.Flags().StringVar(&flags.pager, "pager", "", "Pager command line (default: $PAGER, less)")

	return cmd
}

func runEdit(cmd *cobra.Command, path string, flags *editFlags) error {
	cfg, err := resolveConfig(cmd, &config.Config{
		Output: flags.output,
		Editor: flags.editor,
		Pager:  flags.pager,
	})
	if err != nil {
		return err
	}

	programs, err := extcmd.New(cfg.Editor, cfg.Pager)
	if err != nil {
		return fmt.Errorf("configure programs: %w", err)
	}
	programs.Stdout = cmd.OutOrStdout()
	programs.Stderr = cmd.ErrOrStderr()

	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	sess, err := session.Open(ctx, path, session.Options{
		OutputPath:  cfg.OutputPath(path),
		ScratchPath: cfg.ScratchPath(path),
		Programs:    programs,
		Backups:     backupConfig(cfg),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("close failed", logging.FieldPath, path, logging.FieldError, err)
		}
	}()

	styles, colorEnabled := outputStyles(cmd, cfg)
	fmt.Fprintln(cmd.OutOrStdout(), styles.FormatFileHeader(path, sess.Table().Len()))

	loop := repl.New(sess, repl.Options{
		In:           cmd.InOrStdin(),
		Out:          cmd.OutOrStdout(),
		Styles:       styles,
		ColorEnabled: colorEnabled,
	})
	return loop.Run(ctx)
}
