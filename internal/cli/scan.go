package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/yaklabco/pdfobjedit/internal/logging"
	"github.com/yaklabco/pdfobjedit/internal/session"
	"github.com/yaklabco/pdfobjedit/pkg/runner"
)

var errEmptyNeedle = errors.New("search text must not be empty")

// scanFlags holds the flags for the scan command.
type scanFlags struct {
	jobs           int
	exclude        []string
	extensions     []string
	followSymlinks bool
}

func newScanCommand() *cobra.Command {
	flags := &scanFlags{}

	cmd := &cobra.Command{
		Use:   "scan <text> [path...]",
		Short: "Search many containers for objects containing text",
		Long: `Walk the given files and directories, open every container found and print
the objects whose raw bytes contain the text. Containers are scanned
concurrently. Directories are searched for *.pdf files; hidden entries are
skipped. Files named on the command line are always scanned.

Examples:
  pdfobjedit scan /JavaScript                  Scan the current directory
  pdfobjedit scan /EmbeddedFile inbox/ a.pdf   Scan a directory and a file
  pdfobjedit scan /URI . --exclude 'old/**'    Skip a subtree`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], args[1:], flags)
		},
	}

	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "Concurrent workers (default: jobs setting, or one per CPU)")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "Glob patterns to skip (repeatable)")
	cmd.Flags().StringSliceVar(&flags.extensions, "ext", nil, "File extensions to scan (default: .pdf)")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "Descend into symlinked directories")

	return cmd
}

func runScan(cmd *cobra.Command, needle string, paths []string, flags *scanFlags) error {
	if needle == "" {
		return errors.Join(ErrInvalidFlag, errEmptyNeedle)
	}

	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}

	jobs := cfg.Jobs
	if cmd.Flags().Changed("jobs") {
		jobs = flags.jobs
	}
	if jobs < 0 {
		return errors.Join(ErrInvalidFlag, fmt.Errorf("--jobs must not be negative, got %d", jobs))
	}

	logger := logging.FromContext(commandContext(cmd))
	run := runner.New(func(ctx context.Context, path string) ([]int, error) {
		sess, err := session.Open(ctx, path, session.Options{})
		if err != nil {
			return nil, err
		}
		defer sess.Close()
		return sess.Search(ctx, []byte(needle))
	})

	result, err := run.Run(commandContext(cmd), runner.Options{
		Paths:          paths,
		Extensions:     flags.extensions,
		ExcludeGlobs:   append(append([]string{}, cfg.Ignore...), flags.exclude...),
		FollowSymlinks: flags.followSymlinks,
		Jobs:           jobs,
	})
	if err != nil {
		return err
	}

	styles, _ := outputStyles(cmd, cfg)
	out := cmd.OutOrStdout()
	for _, outcome := range result.Files {
		if outcome.Error != nil {
			logger.Warn("unable to scan container", logging.FieldPath, outcome.Path, logging.FieldError, outcome.Error)
			continue
		}
		if len(outcome.Matches) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", styles.FilePath.Render(outcome.Path),
			strings.Join(lo.Map(outcome.Matches, func(n int, _ int) string { return strconv.Itoa(n) }), " "))
	}

	logger.Debug("scan complete",
		"discovered", result.Stats.FilesDiscovered,
		"matched", result.Stats.FilesWithMatches,
		logging.FieldCount, result.Stats.MatchesTotal,
	)

	if result.HasErrors() {
		return fmt.Errorf("%d of %d containers could not be scanned: %w",
			result.Stats.FilesErrored, result.Stats.FilesDiscovered, result.FirstError())
	}
	return nil
}
