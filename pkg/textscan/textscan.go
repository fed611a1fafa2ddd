// Package textscan classifies file content as processable text or binary.
// Classification inspects content, never just the file extension, so that
// scrub passes skip real binaries and still process extensionless text files.
package textscan

import (
	"bytes"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// IsText reports whether content is safe to treat as line-oriented text.
// Empty files count as text. Any NUL byte or invalid UTF-8 marks the content
// as binary.
func IsText(content []byte) bool {
	if len(content) == 0 {
		return true
	}

	body := bytes.TrimPrefix(content, utf8BOM)
	if bytes.IndexByte(body, 0) >= 0 {
		return false
	}
	return utf8.Valid(body)
}

// DetectLineEnding returns the dominant line ending in content ("\r\n" or
// "\n"). Defaults to "\n" for content without newlines.
func DetectLineEnding(content []byte) string {
	crlf := bytes.Count(content, []byte("\r\n"))
	lf := bytes.Count(content, []byte("\n")) - crlf
	if crlf > lf {
		return "\r\n"
	}
	return "\n"
}
