package repl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// ErrBadRange indicates an object argument that is not a number or range.
var ErrBadRange = errors.New("invalid object range")

// Range is an inclusive run of object numbers "start-end+step".
type Range struct {
	Start int64
	End   int64
	Step  int64
}

// ParseRange parses "n", "start-end" or "start-end+step". An empty end, as in
// "5-", ends the range at its start. Numbers accept the 0x, 0o, 0b and
// leading-zero octal prefixes. A step below 1 becomes 1.
func ParseRange(token string) (Range, error) {
	if token == "" || token[0] < '0' || token[0] > '9' {
		return Range{}, fmt.Errorf("%w: %q", ErrBadRange, token)
	}

	startText, rest, isRange := strings.Cut(token, "-")
	start, err := parseNumber(startText)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrBadRange, token)
	}

	r := Range{Start: start, End: start, Step: 1}
	if !isRange {
		return r, nil
	}

	endText, stepText, hasStep := strings.Cut(rest, "+")
	if endText != "" {
		if r.End, err = parseNumber(endText); err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrBadRange, token)
		}
	}
	if hasStep {
		if r.Step, err = parseNumber(stepText); err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrBadRange, token)
		}
		r.Step = max(r.Step, 1)
	}

	return r, nil
}

func parseNumber(s string) (int64, error) {
	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(s, 0, 64)
}

// Members returns the numbers of r that fall inside [0, limit).
func (r Range) Members(limit int) []int {
	end := min(r.End, int64(limit)-1)
	if r.Start > end {
		return nil
	}
	return lo.Map(lo.RangeWithSteps(r.Start, end+1, r.Step), func(n int64, _ int) int {
		return int(n)
	})
}

// ExpandRanges parses every token and concatenates their members.
func ExpandRanges(tokens []string, limit int) ([]int, error) {
	var out []int
	for _, token := range tokens {
		r, err := ParseRange(token)
		if err != nil {
			return out, err
		}
		out = append(out, r.Members(limit)...)
	}
	return out, nil
}
