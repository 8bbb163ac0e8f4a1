package repl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/yaklabco/pdfobjedit/internal/session"
	"github.com/yaklabco/pdfobjedit/internal/ui/pretty"
	"github.com/yaklabco/pdfobjedit/pkg/export"
	"github.com/yaklabco/pdfobjedit/pkg/xref"
)

func (r *REPL) cmdQuit(_ context.Context, _ []string) error {
	if r.sess.Unsaved() && !r.quitArmed {
		r.warnUnsaved()
		r.warnf("q again to quit without exporting")
		r.quitArmed = true
		return nil
	}
	return errQuit
}

func (r *REPL) cmdHelp(_ context.Context, _ []string) error {
	fmt.Fprint(r.out, HelpText())
	return nil
}

// HelpText lists every interactive command.
func HelpText() string {
	var builder strings.Builder
	for _, cmd := range commandTable() {
		names := cmd.short
		if cmd.long != cmd.short {
			names += ", " + cmd.long
		}
		if cmd.args != "" {
			names += " " + cmd.args
		}
		fmt.Fprintf(&builder, "  %-42s %s\n", names, cmd.help)
	}
	return builder.String()
}

func (r *REPL) cmdViewOriginal(ctx context.Context, _ []string) error {
	return r.sess.ViewOriginal(ctx)
}

func (r *REPL) cmdViewEdited(ctx context.Context, _ []string) error {
	return r.sess.ViewEdited(ctx)
}

// loadAnnounced loads object n, printing a notice on a fresh read.
func (r *REPL) loadAnnounced(n int) error {
	loaded, err := r.sess.Load(n)
	if err != nil {
		return fmt.Errorf("load object %d: %w", n, err)
	}
	if loaded {
		r.infof("object %s loaded", r.styles.FormatObject(n))
	}
	return nil
}

func (r *REPL) cmdEditObject(ctx context.Context, args []string) error {
	n, err := objectArg(args)
	if err != nil {
		return err
	}
	if err := r.loadAnnounced(n); err != nil {
		return err
	}
	return r.sess.EditObject(ctx, n)
}

func (r *REPL) cmdEditStream(ctx context.Context, args []string) error {
	n, err := objectArg(args)
	if err != nil {
		return err
	}
	if err := r.loadAnnounced(n); err != nil {
		return err
	}
	return r.sess.EditStream(ctx, n)
}

func (r *REPL) cmdExport(ctx context.Context, _ []string) error {
	result, err := r.sess.Export(ctx)
	if err != nil {
		return fmt.Errorf("failed to export edited container: %w", err)
	}
	r.infof("Export complete")
	fmt.Fprint(r.out, r.styles.FormatExportOneLine(ExportStats(r.sess, result)))
	return nil
}

// forEachMember applies fn to every in-range member of the range arguments.
// A malformed token stops the command after the members before it.
func (r *REPL) forEachMember(args []string, fn func(n int) error) error {
	if len(args) == 0 {
		return errors.New("need object")
	}
	members, rangeErr := ExpandRanges(args, r.sess.Table().Len())
	for _, n := range members {
		if err := fn(n); err != nil {
			return err
		}
	}
	return rangeErr
}

func (r *REPL) cmdUndo(_ context.Context, args []string) error {
	return r.forEachMember(args, func(n int) error {
		r.infof("Restoring object %s", r.styles.FormatObject(n))
		return r.sess.Undo(n)
	})
}

func (r *REPL) cmdBlank(_ context.Context, args []string) error {
	return r.forEachMember(args, func(n int) error {
		r.infof("Replacing object %s", r.styles.FormatObject(n))
		return r.sess.Blank(n)
	})
}

func (r *REPL) cmdSearch(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "" {
		return nil
	}

	found, err := r.sess.Search(ctx, []byte(args[0]))
	if err != nil {
		return err
	}
	if len(found) == 0 {
		r.infof("No results")
		return nil
	}

	r.infof("Found in objects %s", strings.Join(lo.Map(found, func(n int, _ int) string {
		return r.styles.FormatObject(n)
	}), " "))
	return nil
}

func (r *REPL) cmdInfo(_ context.Context, args []string) error {
	n, err := objectArg(args)
	if err != nil {
		return err
	}

	info, err := r.sess.Describe(n)
	if err != nil {
		return err
	}

	state := "original"
	if info.Dirty {
		state = "edited"
	}

	fmt.Fprintf(r.out, "object %s\n", r.styles.FormatObject(info.Number))
	fmt.Fprintf(r.out, "  use:        %s\n", info.Entry.Use)
	fmt.Fprintf(r.out, "  generation: %d\n", info.Entry.Generation)
	if info.Entry.InUse() {
		fmt.Fprintf(r.out, "  offset:     %s\n", r.styles.Offset.Render(fmt.Sprint(info.Entry.Offset)))
	} else {
		fmt.Fprintf(r.out, "  next free:  %d\n", info.Entry.NextFree)
	}
	fmt.Fprintf(r.out, "  length:     %d\n", info.Entry.Length)
	fmt.Fprintf(r.out, "  state:      %s\n", state)
	fmt.Fprintf(r.out, "  size:       %d\n", info.Size)
	if info.HasStream {
		fmt.Fprintf(r.out, "  stream:     %d bytes\n", info.PayloadLen)
	}
	fmt.Fprintf(r.out, "  digest:     %s\n", r.styles.Digest.Render(info.Digest.String()))
	return nil
}

func (r *REPL) cmdList(_ context.Context, _ []string) error {
	overlays := r.sess.Overlays()
	if len(overlays) == 0 {
		r.infof("No objects loaded")
		return nil
	}

	rows := lo.Filter(IndexRows(r.sess), func(row pretty.IndexRow, _ int) bool {
		return row.State != pretty.StateOriginal
	})
	fmt.Fprint(r.out, pretty.NewTableFormatter(r.styles, r.color).FormatIndexTable(rows))
	return nil
}

func (r *REPL) cmdXref(_ context.Context, _ []string) error {
	rows := IndexRows(r.sess)
	formatter := pretty.NewTableFormatter(r.styles, r.color)
	fmt.Fprintln(r.out, r.styles.FormatFileHeader(r.sess.Path(), len(rows)))
	fmt.Fprint(r.out, formatter.FormatIndexTable(rows))
	fmt.Fprintln(r.out, formatter.FormatTableSummary(rows, r.sess.Table().TableOffset))
	return nil
}

// IndexRows returns one table row per object number of sess, tagged with its
// overlay state.
func IndexRows(sess *session.Session) []pretty.IndexRow {
	return lo.Map(sess.Table().Entries, func(entry xref.Entry, n int) pretty.IndexRow {
		row := pretty.IndexRow{Object: n, Entry: entry}
		switch {
		case sess.Dirty(n):
			row.State = pretty.StateEdited
		case sess.Loaded(n):
			row.State = pretty.StateLoaded
		}
		return row
	})
}

// ExportStats summarizes result for display.
func ExportStats(sess *session.Session, result *export.Result) pretty.ExportStats {
	return pretty.ExportStats{
		Output:       sess.OutputPath(),
		Objects:      sess.Table().Len(),
		Edited:       len(sess.Edited()),
		BytesWritten: result.BytesWritten,
		TableOffset:  result.TableOffset,
	}
}
