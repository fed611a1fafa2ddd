package transform

import (
	"bytes"
	"fmt"
	"strings"
)

// stripMarkerRegions removes every complete marker-delimited region from
// content, delimiters inclusive. A region spans whole lines: from the line
// containing the begin token through the line containing the end token. A
// begin token with no matching end fails the pass; a dangling private region
// must never slip through to validation unnoticed. An end token with no begin
// is treated as ordinary text.
func stripMarkerRegions(content []byte, begin, end string) ([]byte, int, error) {
	if !bytes.Contains(content, []byte(begin)) {
		return content, 0, nil
	}

	var out bytes.Buffer
	out.Grow(len(content))
	regions := 0
	inRegion := false

	for _, line := range splitLines(content) {
		if inRegion {
			if strings.Contains(line, end) {
				inRegion = false
				regions++
			}
			continue
		}
		if idx := strings.Index(line, begin); idx >= 0 {
			if strings.Contains(line[idx+len(begin):], end) {
				// Begin and end on the same line: drop just this line.
				regions++
				continue
			}
			inRegion = true
			continue
		}
		out.WriteString(line)
	}

	if inRegion {
		return nil, regions, fmt.Errorf("unmatched %q marker", begin)
	}
	return out.Bytes(), regions, nil
}

// splitLines splits content into lines, each retaining its terminator, so
// that reassembly preserves the original line-ending style.
func splitLines(content []byte) []string {
	s := string(content)
	var lines []string
	for len(s) > 0 {
		idx := strings.IndexByte(s, '\n')
		if idx < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:idx+1])
		s = s[idx+1:]
	}
	return lines
}
