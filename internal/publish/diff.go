package publish

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/pressroomhq/scrubpress/internal/snapshot"
	"github.com/pressroomhq/scrubpress/pkg/textscan"
)

// Entry status values.
const (
	StatusModified = "modified"
	StatusDeleted  = "deleted"
	StatusBinary   = "binary"
)

// FileDiff is the preview entry for one changed file.
type FileDiff struct {
	Path    string
	Status  string
	Unified string
}

// DiffReport is the full preview: one entry per file whose to-publish content
// differs from the original. Identical files produce no entry.
type DiffReport struct {
	Entries []FileDiff
}

// Preview diffs every originally tracked file against its snapshot
// counterpart. Files removed by exclusion appear as deletions. Binary content
// is compared by identity only. Preview never touches the network or any
// history, so it is safe to run even when validation would fail.
func Preview(sourceRoot string, trackedFiles []string, snap *snapshot.Snapshot) (*DiffReport, error) {
	report := &DiffReport{}

	for _, rel := range trackedFiles {
		orig, err := os.ReadFile(sourcePath(sourceRoot, rel)) // #nosec G304 -- path from the tracked file list
		if err != nil {
			return nil, fmt.Errorf("preview failed reading original %s: %w", rel, err)
		}

		if !snap.Contains(rel) {
			report.Entries = append(report.Entries, FileDiff{Path: rel, Status: StatusDeleted})
			continue
		}

		current, err := os.ReadFile(snap.Path(rel)) // #nosec G304 -- path rooted in the owned snapshot
		if err != nil {
			return nil, fmt.Errorf("preview failed reading snapshot %s: %w", rel, err)
		}
		if bytes.Equal(orig, current) {
			continue
		}

		if !textscan.IsText(orig) || !textscan.IsText(current) {
			report.Entries = append(report.Entries, FileDiff{Path: rel, Status: StatusBinary})
			continue
		}

		report.Entries = append(report.Entries, FileDiff{
			Path:    rel,
			Status:  StatusModified,
			Unified: unifiedText(string(orig), string(current)),
		})
	}
	return report, nil
}

// Render writes the preview report in a unified-diff-like format.
func (r *DiffReport) Render(w io.Writer) {
	if len(r.Entries) == 0 {
		fmt.Fprintln(w, "No changes: the published tree would be identical to the original.")
		return
	}
	for _, e := range r.Entries {
		switch e.Status {
		case StatusDeleted:
			fmt.Fprintf(w, "--- a/%s\n+++ /dev/null\n", e.Path)
		case StatusBinary:
			fmt.Fprintf(w, "Binary files a/%s and b/%s differ\n", e.Path, e.Path)
		default:
			fmt.Fprintf(w, "--- a/%s\n+++ b/%s\n%s", e.Path, e.Path, e.Unified)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d file(s) would change.\n", len(r.Entries))
}

const contextLines = 2

// unifiedText renders a line-mode diff with -/+ prefixes and a bounded
// amount of surrounding context.
func unifiedText(before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var sb strings.Builder
	for i, d := range diffs {
		lines := toLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			writePrefixed(&sb, lines, "-")
		case diffmatchpatch.DiffInsert:
			writePrefixed(&sb, lines, "+")
		case diffmatchpatch.DiffEqual:
			writeContext(&sb, lines, i == 0, i == len(diffs)-1)
		}
	}
	return sb.String()
}

func toLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func writePrefixed(sb *strings.Builder, lines []string, prefix string) {
	for _, line := range lines {
		sb.WriteString(prefix)
		sb.WriteString(ensureNewline(line))
	}
}

// writeContext keeps at most contextLines around each change and elides the
// rest, mirroring what a hunked unified diff would show.
func writeContext(sb *strings.Builder, lines []string, first, last bool) {
	keepHead := contextLines
	keepTail := contextLines
	if first {
		keepHead = 0
	}
	if last {
		keepTail = 0
	}
	if len(lines) <= keepHead+keepTail {
		writePrefixed(sb, lines, " ")
		return
	}
	writePrefixed(sb, lines[:keepHead], " ")
	fmt.Fprintf(sb, "@@ %d unchanged line(s) @@\n", len(lines)-keepHead-keepTail)
	writePrefixed(sb, lines[len(lines)-keepTail:], " ")
}

func ensureNewline(line string) string {
	if strings.HasSuffix(line, "\n") {
		return line
	}
	return line + "\n"
}
