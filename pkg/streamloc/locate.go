// Package streamloc finds the embedded payload of a stream object and rewrites
// objects around a replacement payload.
//
// An object with a payload looks like
//
//	25 0 obj
//	<<
//	   /Length 95
//	>>
//	stream
//	<95 bytes of data>
//	endstream
//	endobj
//
// Only the attribute block brackets and the direct /Length value are
// interpreted; the rest of the object is carried as opaque bytes.
package streamloc

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// ErrNoStream indicates the object has no recognizable embedded payload.
var ErrNoStream = errors.New("object has no stream")

var (
	streamKeyword = []byte("stream")
	lengthKey     = []byte("/Length")
)

// Bounds describes where the parts of a stream object lie within its bytes.
type Bounds struct {
	// DictStart is the offset of the opening "<<".
	DictStart int

	// DictEnd is the offset just past the matching ">>".
	DictEnd int

	// PayloadStart is the offset right after the "stream" keyword line.
	PayloadStart int

	// PayloadEnd is PayloadStart plus the declared length, or the end of the
	// object when no direct length is declared.
	PayloadEnd int

	// LengthField is the offset of the first digit of the /Length value, or 0
	// when there is nothing to patch.
	LengthField int
}

// PayloadLen returns the payload size in bytes.
func (b Bounds) PayloadLen() int {
	return b.PayloadEnd - b.PayloadStart
}

// HasLengthField reports whether the declared length can be patched in place.
func (b Bounds) HasLengthField() bool {
	return b.LengthField > 0
}

// Locate scans obj once and returns its stream bounds.
func Locate(obj []byte) (Bounds, error) {
	var b Bounds

	pos := skipLine(obj, 0)
	if pos+2 > len(obj) || obj[pos] != '<' || obj[pos+1] != '<' {
		return Bounds{}, fmt.Errorf("%w: attribute block not found", ErrNoStream)
	}
	b.DictStart = pos

	lengthAt, lengthValue := -1, 0
	depth := 1
	pos += 2
	for pos+2 <= len(obj) && depth > 0 {
		switch {
		case obj[pos] == '>' && obj[pos+1] == '>':
			depth--
			pos += 2
		case obj[pos] == '<' && obj[pos+1] == '<':
			depth++
			pos += 2
		case depth == 1 && lengthAt < 0 && bytes.HasPrefix(obj[pos:], lengthKey):
			if at, value, ok := directLength(obj, pos+len(lengthKey)); ok {
				lengthAt, lengthValue = at, value
			}
			pos += len(lengthKey)
		default:
			pos++
		}
	}
	if depth > 0 {
		return Bounds{}, fmt.Errorf("%w: attribute block never closes", ErrNoStream)
	}
	b.DictEnd = pos

	pos = skipLine(obj, pos)
	payloadStart, ok := afterStreamKeyword(obj, pos)
	if !ok {
		return Bounds{}, fmt.Errorf("%w: stream keyword not found", ErrNoStream)
	}
	b.PayloadStart = payloadStart
	b.PayloadEnd = len(obj)

	if lengthAt >= 0 {
		if lengthValue > len(obj)-payloadStart {
			return Bounds{}, fmt.Errorf("%w: declared length %d exceeds the %d bytes after stream",
				ErrNoStream, lengthValue, len(obj)-payloadStart)
		}
		b.LengthField = lengthAt
		b.PayloadEnd = payloadStart + lengthValue
	}

	return b, nil
}

// directLength parses the value after a /Length key. It requires whitespace
// after the key and rejects indirect references ("12 0 R").
func directLength(obj []byte, pos int) (at, value int, ok bool) {
	if pos >= len(obj) || !isSpace(obj[pos]) {
		return 0, 0, false
	}
	for pos < len(obj) && isSpace(obj[pos]) {
		pos++
	}

	at = pos
	end := digitRun(obj, pos)
	if end == at {
		return 0, 0, false
	}
	value, err := strconv.Atoi(string(obj[at:end]))
	if err != nil {
		return 0, 0, false
	}

	if isIndirectRef(obj, end) {
		return 0, 0, false
	}

	return at, value, true
}

// isIndirectRef reports whether obj[pos:] continues a number into "<gen> R".
func isIndirectRef(obj []byte, pos int) bool {
	i := pos
	for i < len(obj) && isSpace(obj[i]) {
		i++
	}
	if i == pos {
		return false
	}
	genEnd := digitRun(obj, i)
	if genEnd == i {
		return false
	}
	i = genEnd
	for i < len(obj) && isSpace(obj[i]) {
		i++
	}
	return i < len(obj) && obj[i] == 'R'
}

// afterStreamKeyword returns the offset after "stream" plus its LF or CRLF.
func afterStreamKeyword(obj []byte, pos int) (int, bool) {
	if !bytes.HasPrefix(obj[pos:], streamKeyword) {
		return 0, false
	}
	pos += len(streamKeyword)
	switch {
	case bytes.HasPrefix(obj[pos:], []byte("\r\n")):
		return pos + 2, true
	case pos < len(obj) && obj[pos] == '\n':
		return pos + 1, true
	default:
		return 0, false
	}
}

// skipLine advances past the rest of the current line and any blank lines.
func skipLine(obj []byte, pos int) int {
	for pos < len(obj) && obj[pos] != '\n' {
		pos++
	}
	for pos < len(obj) && (obj[pos] == '\n' || obj[pos] == '\r') {
		pos++
	}
	return pos
}

func digitRun(obj []byte, pos int) int {
	for pos < len(obj) && obj[pos] >= '0' && obj[pos] <= '9' {
		pos++
	}
	return pos
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	default:
		return false
	}
}
