// Package extcmd runs the external editor and pager on behalf of a session.
package extcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/google/shlex"
)

// ErrEmptyCommand indicates a command line with no program name.
var ErrEmptyCommand = errors.New("empty command")

// Runner starts the configured editor and pager as synchronous children that
// share the session's terminal.
type Runner struct {
	editor []string
	pager  []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New splits the editor and pager command lines shell-style.
func New(editorCmd, pagerCmd string) (*Runner, error) {
	editor, err := Split(editorCmd)
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	pager, err := Split(pagerCmd)
	if err != nil {
		return nil, fmt.Errorf("pager: %w", err)
	}

	return &Runner{
		editor: editor,
		pager:  pager,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// Split breaks a command line into words, honouring quotes.
func Split(command string) ([]string, error) {
	words, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("split %q: %w", command, err)
	}
	if len(words) == 0 {
		return nil, ErrEmptyCommand
	}
	return words, nil
}

// Edit opens path in the editor and waits for it to exit.
func (r *Runner) Edit(ctx context.Context, path string) error {
	return r.run(ctx, r.editor, path)
}

// Page shows path in the pager and waits for it to exit.
func (r *Runner) Page(ctx context.Context, path string) error {
	return r.run(ctx, r.pager, path)
}

// run starts words with path appended. A non-zero exit status is ignored;
// only a failure to start the program is returned.
func (r *Runner) run(ctx context.Context, words []string, path string) error {
	args := append(append([]string(nil), words[1:]...), path)

	//nolint:gosec // The command comes from the user's own configuration.
	cmd := exec.CommandContext(ctx, words[0], args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err := cmd.Run()

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("run %s: %w", words[0], err)
	}
	return nil
}
