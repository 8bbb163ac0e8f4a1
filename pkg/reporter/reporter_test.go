package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pdfobjedit/internal/ui/pretty"
	"github.com/yaklabco/pdfobjedit/pkg/reporter"
	"github.com/yaklabco/pdfobjedit/pkg/xref"
)

func sampleListing() *reporter.Listing {
	return &reporter.Listing{
		Path:        "doc.pdf",
		TableOffset: 250,
		Rows: []pretty.IndexRow{
			{Object: 0, Entry: xref.Entry{Offset: 0, Length: 15, Generation: 65535, Use: xref.UseFree, NextFree: 0}},
			{Object: 1, Entry: xref.Entry{Offset: 15, Length: 60, Use: xref.UseInUse}, State: pretty.StateLoaded},
			{Object: 2, Entry: xref.Entry{Offset: 75, Length: 175, Use: xref.UseInUse}, State: pretty.StateEdited},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{name: "empty defaults to text", input: "", want: reporter.FormatText},
		{name: "text", input: "text", want: reporter.FormatText},
		{name: "json", input: "json", want: reporter.FormatJSON},
		{name: "unknown format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_IsValid(t *testing.T) {
	tests := []struct {
		format reporter.Format
		want   bool
	}{
		{reporter.FormatText, true},
		{reporter.FormatJSON, true},
		{reporter.Format("unknown"), false},
		{reporter.Format(""), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.format.IsValid(), tt.format.String())
	}
}

func TestNew_UnsupportedFormat(t *testing.T) {
	_, err := reporter.New(reporter.Options{Format: "sarif"})
	require.Error(t, err)
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep, err := reporter.New(reporter.Options{Writer: &buf, Format: reporter.FormatJSON})
	require.NoError(t, err)
	require.NoError(t, rep.Report(context.Background(), sampleListing()))

	var out reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "doc.pdf", out.Path)
	assert.Equal(t, int64(250), out.TableOffset)
	require.Len(t, out.Objects, 3)
	assert.Equal(t, "f", out.Objects[0].Use)
	require.NotNil(t, out.Objects[0].NextFree)
	assert.Nil(t, out.Objects[1].NextFree)
	assert.Equal(t, "edited", out.Objects[2].State)
	assert.Equal(t, reporter.JSONSummary{Objects: 3, InUse: 2, Free: 1, Loaded: 1, Edited: 1}, out.Summary)
	assert.Contains(t, buf.String(), "\n  \"version\"")
}

func TestJSONReporter_Compact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Compact: true})
	require.NoError(t, rep.Report(context.Background(), nil))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), `"objects":[]`)
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep, err := reporter.New(reporter.Options{Writer: &buf, Color: "never"})
	require.NoError(t, err)
	require.NoError(t, rep.Report(context.Background(), sampleListing()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "doc.pdf (3 objects)\n"))
	assert.Contains(t, out, "->0")
	assert.Contains(t, out, "1 edited")
	assert.Contains(t, out, "table at 250")
}
