package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/pdfobjedit/internal/logging"
	"github.com/yaklabco/pdfobjedit/internal/session"
)

func newSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <file> <text>",
		Short: "List objects containing text",
		Long: `Print the number of every object whose raw bytes contain the given text,
one per line. Stream payloads are searched as stored, without decoding.`,
		Args: cobra.ExactArgs(2), //nolint:mnd // file and needle
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], args[1])
		},
	}
}

func runSearch(cmd *cobra.Command, path, needle string) error {
	if _, err := resolveConfig(cmd, nil); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	sess, err := session.Open(ctx, path, session.Options{})
	if err != nil {
		return err
	}
	defer sess.Close()

	found, err := sess.Search(ctx, []byte(needle))
	if err != nil {
		return err
	}

	for _, n := range found {
		fmt.Fprintln(cmd.OutOrStdout(), n)
	}
	logging.FromContext(ctx).Debug("search complete", logging.FieldCount, len(found))
	return nil
}
