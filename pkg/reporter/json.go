package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/pdfobjedit/internal/ui/pretty"
)

// jsonVersion is the schema version of JSONOutput.
const jsonVersion = "1.0.0"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version     string       `json:"version"`
	Path        string       `json:"path"`
	TableOffset int64        `json:"tableOffset"`
	Objects     []JSONObject `json:"objects"`
	Summary     JSONSummary  `json:"summary"`
}

// JSONObject represents one index entry.
type JSONObject struct {
	Number     int    `json:"number"`
	Use        string `json:"use"`
	Offset     int64  `json:"offset"`
	Length     int64  `json:"length"`
	Generation uint32 `json:"generation"`
	NextFree   *int64 `json:"nextFree,omitempty"`
	State      string `json:"state,omitempty"`
}

// JSONSummary contains aggregate counts.
type JSONSummary struct {
	Objects int `json:"objects"`
	InUse   int `json:"inUse"`
	Free    int `json:"free"`
	Loaded  int `json:"loaded"`
	Edited  int `json:"edited"`
}

// JSONReporter formats listings as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, listing *Listing) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(BuildJSON(listing)); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// BuildJSON converts a listing to its JSON structure.
func BuildJSON(listing *Listing) *JSONOutput {
	output := &JSONOutput{
		Version: jsonVersion,
		Objects: make([]JSONObject, 0),
	}
	if listing == nil {
		return output
	}

	output.Path = listing.Path
	output.TableOffset = listing.TableOffset
	output.Objects = make([]JSONObject, 0, len(listing.Rows))

	for _, row := range listing.Rows {
		obj := JSONObject{
			Number:     row.Object,
			Use:        row.Entry.Use.String(),
			Offset:     row.Entry.Offset,
			Length:     row.Entry.Length,
			Generation: row.Entry.Generation,
			State:      string(row.State),
		}

		if row.Entry.InUse() {
			output.Summary.InUse++
		} else {
			next := row.Entry.NextFree
			obj.NextFree = &next
			output.Summary.Free++
		}

		switch row.State {
		case pretty.StateEdited:
			output.Summary.Edited++
		case pretty.StateLoaded:
			output.Summary.Loaded++
		}

		output.Objects = append(output.Objects, obj)
	}

	output.Summary.Objects = len(output.Objects)
	return output
}
