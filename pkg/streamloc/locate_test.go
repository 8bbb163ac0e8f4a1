package streamloc_test

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pdfobjedit/pkg/streamloc"
)

func TestLocate(t *testing.T) {
	t.Parallel()

	obj := []byte("25 0 obj\n<<\n   /Length 5\n>>\nstream\nhello\nendstream\nendobj\n")

	b, err := streamloc.Locate(obj)
	require.NoError(t, err)

	assert.Equal(t, strings.Index(string(obj), "<<"), b.DictStart)
	assert.Equal(t, strings.Index(string(obj), ">>")+2, b.DictEnd)
	assert.Equal(t, strings.Index(string(obj), "hello"), b.PayloadStart)
	assert.Equal(t, "hello", string(streamloc.Payload(obj, b)))
	assert.Equal(t, strings.Index(string(obj), "5\n>>"), b.LengthField)
	assert.True(t, b.HasLengthField())
}

func TestLocate_Variants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		obj         string
		wantPayload string
		wantLength  bool
	}{
		{
			name:        "blank lines after header",
			obj:         "1 0 obj\n\n\n<< /Length 3 >>\nstream\nabc\nendstream\nendobj\n",
			wantPayload: "abc",
			wantLength:  true,
		},
		{
			name:        "nested dictionaries",
			obj:         "2 0 obj\n<< /DecodeParms << /Columns 4 >> /Length 2 /Filter /FlateDecode >>\nstream\nxy\nendstream\nendobj\n",
			wantPayload: "xy",
			wantLength:  true,
		},
		{
			name:        "length inside nested dictionary is ignored",
			obj:         "3 0 obj\n<< /X << /Length 1 >> /Length 4 >>\nstream\nwxyz\nendstream\nendobj\n",
			wantPayload: "wxyz",
			wantLength:  true,
		},
		{
			name:        "crlf line endings",
			obj:         "4 0 obj\r\n<< /Length 2 >>\r\nstream\r\nok\r\nendstream\r\nendobj\r\n",
			wantPayload: "ok",
			wantLength:  true,
		},
		{
			name:        "no length runs to end of object",
			obj:         "5 0 obj\n<< /Type /XObject >>\nstream\ndata\nendstream\nendobj\n",
			wantPayload: "data\nendstream\nendobj\n",
		},
		{
			name:        "indirect length counts as absent",
			obj:         "6 0 obj\n<< /Length 7 0 R >>\nstream\nabc\nendstream\nendobj\n",
			wantPayload: "abc\nendstream\nendobj\n",
		},
		{
			name:        "length1 key is not length",
			obj:         "7 0 obj\n<< /Length1 9 /Length 1 >>\nstream\nz\nendstream\nendobj\n",
			wantPayload: "z",
			wantLength:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			obj := []byte(tt.obj)
			b, err := streamloc.Locate(obj)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPayload, string(streamloc.Payload(obj, b)))
			assert.Equal(t, tt.wantLength, b.HasLengthField())
		})
	}
}

func TestLocate_NoStream(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		obj  string
	}{
		{"empty", ""},
		{"header only", "1 0 obj\n"},
		{"no dictionary", "1 0 obj\n[1 2 3]\nendobj\n"},
		{"unclosed dictionary", "1 0 obj\n<< /A << /B 1 >>\nstream\nx\nendstream\n"},
		{"plain dictionary", "1 0 obj\n<< /Type /Catalog >>\nendobj\n"},
		{"stream keyword without newline", "1 0 obj\n<< /Length 1 >>\nstreamx"},
		{"declared length overruns object", "1 0 obj\n<< /Length 500 >>\nstream\nabc\nendstream\nendobj\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := streamloc.Locate([]byte(tt.obj))
			assert.ErrorIs(t, err, streamloc.ErrNoStream)
		})
	}
}

func TestReplacePayload_ShrinksLengthDigits(t *testing.T) {
	t.Parallel()

	oldPayload := strings.Repeat("x", 50)
	obj := []byte("2 0 obj\n<< /Length 50 /Filter /None >>\nstream\n" + oldPayload + "\nendstream\nendobj\n")

	b, err := streamloc.Locate(obj)
	require.NoError(t, err)
	require.Equal(t, 50, b.PayloadLen())

	out := streamloc.ReplacePayload(obj, b, []byte("1234567"))
	assert.Equal(t, "2 0 obj\n<< /Length 7 /Filter /None >>\nstream\n1234567\nendstream\nendobj\n", string(out))
	assert.Equal(t, len(obj)-1-43, len(out), "one digit and 43 payload bytes removed")

	again, err := streamloc.Locate(out)
	require.NoError(t, err)
	assert.Equal(t, 7, again.PayloadLen())
	assert.Equal(t, b.PayloadStart-1, again.PayloadStart)
}

func TestReplacePayload_LengthConsistent(t *testing.T) {
	t.Parallel()

	obj := []byte("9 0 obj\n<<\n  /Length 3\n>>\nstream\nabc\nendstream\nendobj\n")

	for _, size := range []int{0, 1, 9, 10, 99, 100, 12345} {
		payload := bytes.Repeat([]byte{0xff}, size)

		b, err := streamloc.Locate(obj)
		require.NoError(t, err)
		out := streamloc.ReplacePayload(obj, b, payload)

		got, err := streamloc.Locate(out)
		require.NoError(t, err, "size %d", size)
		assert.Equal(t, size, got.PayloadLen())
		assert.Equal(t, payload, streamloc.Payload(out, got))

		digits := out[got.LengthField : got.LengthField+len(strconv.Itoa(size))]
		parsed, err := strconv.Atoi(string(digits))
		require.NoError(t, err)
		assert.Equal(t, size, parsed)
		assert.True(t, bytes.HasSuffix(out, []byte("\nendstream\nendobj\n")))
	}
}

func TestReplacePayload_WithoutLengthField(t *testing.T) {
	t.Parallel()

	obj := []byte("5 0 obj\n<< /Type /XObject >>\nstream\ndata\nendstream\nendobj\n")
	b, err := streamloc.Locate(obj)
	require.NoError(t, err)

	out := streamloc.ReplacePayload(obj, b, []byte("new\nendstream\nendobj\n"))
	assert.Equal(t, "5 0 obj\n<< /Type /XObject >>\nstream\nnew\nendstream\nendobj\n", string(out))
}

func BenchmarkLocate(b *testing.B) {
	obj := []byte("7 0 obj\n<<\n  /Filter /FlateDecode\n  /DecodeParms << /Columns 4 >>\n  /Length 64\n>>\nstream\n" +
		strings.Repeat("x", 64) + "\nendstream\nendobj\n")

	b.ReportAllocs()
	for b.Loop() {
		if _, err := streamloc.Locate(obj); err != nil {
			b.Fatal(err)
		}
	}
}
