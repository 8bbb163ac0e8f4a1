// Package repl implements the interactive command loop of an editing session.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/shlex"
	"golang.org/x/term"

	"github.com/yaklabco/pdfobjedit/internal/session"
	"github.com/yaklabco/pdfobjedit/internal/ui/pretty"
)

// Prompt is printed before each command when input is a terminal.
const Prompt = "pdf> "

// maxLineSize bounds a single command line.
const maxLineSize = 32768

// errQuit ends the loop.
var errQuit = errors.New("quit")

// Options configures a REPL.
type Options struct {
	In  io.Reader
	Out io.Writer

	// ShowPrompt forces the prompt on or off. When nil the prompt is shown
	// only if In is a terminal.
	ShowPrompt *bool

	Styles       *pretty.Styles
	ColorEnabled bool
}

// REPL reads commands and applies them to a session.
type REPL struct {
	sess     *session.Session
	in       io.Reader
	out      io.Writer
	prompt   bool
	styles   *pretty.Styles
	color    bool
	commands map[string]*command

	// quitArmed is set after a quit was refused because of unexported edits.
	quitArmed bool
}

type command struct {
	short string
	long  string
	args  string
	help  string
	run   func(r *REPL, ctx context.Context, args []string) error
}

// New creates a REPL over sess.
func New(sess *session.Session, opts Options) *REPL {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Styles == nil {
		opts.Styles = pretty.NewStyles(opts.ColorEnabled)
	}

	showPrompt := isTerminal(opts.In)
	if opts.ShowPrompt != nil {
		showPrompt = *opts.ShowPrompt
	}

	r := &REPL{
		sess:   sess,
		in:     opts.In,
		out:    opts.Out,
		prompt: showPrompt,
		styles: opts.Styles,
		color:  opts.ColorEnabled,
	}

	r.commands = make(map[string]*command)
	for _, cmd := range commandTable() {
		r.commands[cmd.short] = cmd
		r.commands[cmd.long] = cmd
	}

	return r
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Run processes commands until quit, end of input or cancellation.
func (r *REPL) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.prompt {
			fmt.Fprint(r.out, r.styles.Prompt.Render(Prompt))
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read command: %w", err)
			}
			r.warnUnsaved()
			return nil
		}

		if err := r.Execute(ctx, scanner.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return err
			}
			r.errorf("%v", err)
		}
	}
}

// Execute runs a single command line.
func (r *REPL) Execute(ctx context.Context, line string) error {
	words, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command: %w", err)
	}
	if len(words) == 0 {
		return nil
	}

	cmd, ok := r.commands[words[0]]
	if !ok {
		return fmt.Errorf("unknown command %q (h for help)", words[0])
	}

	if cmd.long != "quit" {
		r.quitArmed = false
	}

	return cmd.run(r, ctx, words[1:])
}

func (r *REPL) infof(format string, args ...any) {
	fmt.Fprint(r.out, r.styles.FormatMessage(pretty.LevelInfo, format, args...))
}

func (r *REPL) warnf(format string, args ...any) {
	fmt.Fprint(r.out, r.styles.FormatMessage(pretty.LevelWarn, format, args...))
}

func (r *REPL) errorf(format string, args ...any) {
	fmt.Fprint(r.out, r.styles.FormatMessage(pretty.LevelError, format, args...))
}

func (r *REPL) warnUnsaved() {
	if r.sess.Unsaved() {
		r.warnf("edits since the last export were not written to %s", r.sess.OutputPath())
	}
}

// objectArg parses the single object number argument of a command.
func objectArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errors.New("need object")
	}
	n, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadRange, args[0])
	}
	return int(n), nil
}

func commandTable() []*command {
	return []*command{
		{short: "q", long: "quit", help: "quit", run: (*REPL).cmdQuit},
		{short: "h", long: "help", help: "help", run: (*REPL).cmdHelp},
		{short: "vo", long: "view-original", help: "view the original container in the pager", run: (*REPL).cmdViewOriginal},
		{short: "ve", long: "view-edited", help: "view the last export in the pager", run: (*REPL).cmdViewEdited},
		{short: "eo", long: "edit-object", args: "<n>", help: "edit an object", run: (*REPL).cmdEditObject},
		{short: "eos", long: "edit-object-stream", args: "<n>", help: "edit an object's stream", run: (*REPL).cmdEditStream},
		{short: "ex", long: "export", help: "export the edited container", run: (*REPL).cmdExport},
		{short: "uo", long: "undo-object", args: "<n|range>...", help: "undo object edits (restore original)", run: (*REPL).cmdUndo},
		{short: "mtos", long: "replace-with-empty-stream", args: "<n|range>...", help: "replace objects with an empty stream object", run: (*REPL).cmdBlank},
		{short: "lsrch", long: "list-objects-containing", args: "<text>", help: "list objects containing text", run: (*REPL).cmdSearch},
		{short: "info", long: "info", args: "<n>", help: "describe an object", run: (*REPL).cmdInfo},
		{short: "ls", long: "list-overlays", help: "list loaded and edited objects", run: (*REPL).cmdList},
		{short: "xref", long: "xref", help: "print the index table", run: (*REPL).cmdXref},
	}
}
