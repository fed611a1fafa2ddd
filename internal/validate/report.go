package validate

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxLineDisplayWidth bounds the rendered line text by display width, not
// byte count, so wide runes don't blow out terminal reports.
const maxLineDisplayWidth = 100

// Render writes a human-readable findings report. It prints nothing when the
// result passed.
func Render(w io.Writer, result *Result) {
	if result.Passed {
		return
	}

	fmt.Fprintf(w, "validation failed: %d forbidden occurrence(s) survived transformation\n\n", len(result.Findings))

	byTerm := make(map[string][]Finding)
	var order []string
	for _, f := range result.Findings {
		if _, ok := byTerm[f.Term]; !ok {
			order = append(order, f.Term)
		}
		byTerm[f.Term] = append(byTerm[f.Term], f)
	}

	for _, term := range order {
		fmt.Fprintf(w, "  term %q:\n", term)
		for _, f := range byTerm[term] {
			text := runewidth.Truncate(strings.TrimSpace(f.Text), maxLineDisplayWidth, "…")
			fmt.Fprintf(w, "    %s:%d: %s\n", f.File, f.Line, text)
		}
	}
	fmt.Fprintln(w, "\nExtend scrub_rules or exclude_paths to cover these, then re-run preview.")
}
