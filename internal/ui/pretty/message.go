package pretty

import (
	"fmt"
	"strconv"
)

// Level is the prefix class of an interactive message.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Prefix returns the plain prefix for level.
func (l Level) Prefix() string {
	switch l {
	case LevelWarn:
		return "WARN:"
	case LevelError:
		return "ERR:"
	default:
		return "INFO:"
	}
}

// FormatPrefix returns the styled prefix for level.
func (s *Styles) FormatPrefix(level Level) string {
	switch level {
	case LevelWarn:
		return s.Warning.Render(level.Prefix())
	case LevelError:
		return s.Error.Render(level.Prefix())
	default:
		return s.Info.Render(level.Prefix())
	}
}

// FormatMessage returns "PREFIX message\n" with the prefix styled.
func (s *Styles) FormatMessage(level Level, format string, args ...any) string {
	return s.FormatPrefix(level) + " " + fmt.Sprintf(format, args...) + "\n"
}

// FormatObject renders an object number.
func (s *Styles) FormatObject(n int) string {
	return s.Object.Render(strconv.Itoa(n))
}

// FormatFileHeader formats a container header for listings.
func (s *Styles) FormatFileHeader(path string, objects int) string {
	header := s.FilePath.Render(path)
	if objects > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d objects)", objects))
	}
	return header
}
