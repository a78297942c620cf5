package text

import (
	"errors"
	"strings"
)

// ErrEmptyText is returned when a document has no content besides whitespace.
var ErrEmptyText = errors.New("text is empty")

const byteOrderMark = "\ufeff"

// NormalizeDocument prepares a raw script for lexing: it drops a leading
// byte order mark, converts CRLF and bare CR line endings to LF and trims
// surrounding whitespace. Whitespace-only input returns ErrEmptyText.
func NormalizeDocument(s string) (string, error) {
	s = strings.TrimPrefix(s, byteOrderMark)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyText
	}

	return s, nil
}

// CollapseSpace replaces every run of whitespace with a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
