// Package testpdf builds small well-formed containers for tests.
package testpdf

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Header is the file header every built container starts with.
const Header = "%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"

// Doc is a built container and the positions recorded while building it.
type Doc struct {
	Bytes         []byte
	Offsets       []int64 // Offsets[n] for object n; Offsets[0] is 0
	TableOffset   int64
	TrailerOffset int64
	PointerField  int64
}

// Build lays out objects as numbers 1..len(objects) after the header, followed
// by a single-section index table whose entry 0 heads the free list.
func Build(objects ...string) *Doc {
	doc := &Doc{Offsets: make([]int64, len(objects)+1)}

	buf := []byte(Header)
	for i, obj := range objects {
		doc.Offsets[i+1] = int64(len(buf))
		buf = append(buf, obj...)
	}

	doc.TableOffset = int64(len(buf))
	buf = fmt.Appendf(buf, "xref\n0 %d\n", len(objects)+1)
	buf = append(buf, "0000000000 65535 f \n"...)
	for _, off := range doc.Offsets[1:] {
		buf = fmt.Appendf(buf, "%010d 00000 n \n", off)
	}

	doc.TrailerOffset = int64(len(buf))
	buf = fmt.Appendf(buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n", len(objects)+1)
	doc.PointerField = int64(len(buf))
	buf = fmt.Appendf(buf, "%d\n%%%%EOF\n", doc.TableOffset)

	doc.Bytes = buf
	return doc
}

// Object renders "n 0 obj\n<body>\nendobj\n".
func Object(n int, body string) string {
	return fmt.Sprintf("%d 0 obj\n%s\nendobj\n", n, body)
}

// StreamObject renders a stream object whose /Length matches payload.
func StreamObject(n int, payload string) string {
	return fmt.Sprintf("%d 0 obj\n<<\n  /Length %d\n>>\nstream\n%s\nendstream\nendobj\n", n, len(payload), payload)
}

// Sample returns a three-object container: a catalog, a stream and a dictionary.
func Sample() *Doc {
	return Build(
		Object(1, "<< /Type /Catalog /Pages 3 0 R >>"),
		StreamObject(2, "BT /F1 12 Tf 72 712 Td (Hello, world) Tj ET"),
		Object(3, "<< /Type /Pages /Kids [] /Count 0 >>"),
	)
}

// WriteFile writes doc into dir under name and returns the path.
func WriteFile(tb testing.TB, dir, name string, doc *Doc) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, doc.Bytes, 0644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Many returns a container of n objects alternating between dictionaries and
// small streams.
func Many(n int) *Doc {
	objects := make([]string, n)
	for i := range objects {
		num := i + 1
		if num%2 == 0 {
			objects[i] = StreamObject(num, fmt.Sprintf("q %d 0 0 %d 0 0 cm Q", num, num))
		} else {
			objects[i] = Object(num, fmt.Sprintf("<< /Type /Annot /N %d >>", num))
		}
	}
	return Build(objects...)
}
