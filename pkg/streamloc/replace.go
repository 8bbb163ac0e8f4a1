package streamloc

import "strconv"

// ReplacePayload returns a new object built from obj with the payload described
// by b swapped for payload. When b has a length field its digit run is
// rewritten to len(payload); the run may grow or shrink, shifting everything
// after it.
func ReplacePayload(obj []byte, b Bounds, payload []byte) []byte {
	out := make([]byte, 0, len(obj)-b.PayloadLen()+len(payload)+8)

	head := obj[:b.PayloadStart]
	if b.HasLengthField() {
		digitsEnd := min(digitRun(obj, b.LengthField), b.PayloadStart)
		out = append(out, obj[:b.LengthField]...)
		out = strconv.AppendInt(out, int64(len(payload)), 10)
		head = obj[digitsEnd:b.PayloadStart]
	}

	out = append(out, head...)
	out = append(out, payload...)
	out = append(out, obj[b.PayloadEnd:]...)

	return out
}

// Payload returns the payload bytes of obj described by b.
func Payload(obj []byte, b Bounds) []byte {
	return obj[b.PayloadStart:b.PayloadEnd]
}
