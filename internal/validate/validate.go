// Package validate re-scans the fully transformed snapshot for every term
// the operator cares about. It is a pure read-only pass: every forbidden
// occurrence across every file is aggregated before anything is reported,
// so a failing configuration can be extended in one iteration.
package validate

import (
	"fmt"
	"os"
	"strings"

	"github.com/pressroomhq/scrubpress/internal/snapshot"
	"github.com/pressroomhq/scrubpress/pkg/config"
)

// maxPerTermPerFile caps the findings captured for one term in one file,
// keeping reports readable when a term saturates a file.
const maxPerTermPerFile = 5

// Finding is one surviving occurrence of a forbidden term.
type Finding struct {
	Term string `json:"term"`
	File string `json:"file"`
	Line int    `json:"line"` // 1-based
	Text string `json:"text"`
}

// Result aggregates all findings. Passed is true iff Findings is empty.
type Result struct {
	Passed   bool      `json:"passed"`
	Findings []Finding `json:"findings"`
}

// Scan checks every snapshot file (any content type) for literal occurrences
// of every scrub-rule find term and every blocklist term. The blocklist is an
// independent second layer: it catches terms no scrub rule ever targeted.
func Scan(snap *snapshot.Snapshot, cfg *config.PublishConfig) (*Result, error) {
	terms := collectTerms(cfg)
	result := &Result{}

	for _, rel := range snap.Files {
		content, err := os.ReadFile(snap.Path(rel)) // #nosec G304 -- path rooted in the owned snapshot
		if err != nil {
			return nil, fmt.Errorf("validation failed reading %s: %w", rel, err)
		}
		text := string(content)
		var lines []string // split lazily, most files contain no term

		for _, term := range terms {
			if !strings.Contains(text, term) {
				continue
			}
			if lines == nil {
				lines = strings.Split(text, "\n")
			}
			found := 0
			for i, line := range lines {
				if !strings.Contains(line, term) {
					continue
				}
				result.Findings = append(result.Findings, Finding{
					Term: term,
					File: rel,
					Line: i + 1,
					Text: strings.TrimRight(line, "\r"),
				})
				found++
				if found >= maxPerTermPerFile {
					break
				}
			}
			if found == 0 {
				// The term spans lines; the per-line scan cannot see it.
				// Locate each occurrence in the full text instead.
				for off := 0; found < maxPerTermPerFile; {
					i := strings.Index(text[off:], term)
					if i < 0 {
						break
					}
					pos := off + i
					lineNo := strings.Count(text[:pos], "\n") + 1
					result.Findings = append(result.Findings, Finding{
						Term: term,
						File: rel,
						Line: lineNo,
						Text: strings.TrimRight(lines[lineNo-1], "\r"),
					})
					found++
					off = pos + len(term)
				}
			}
		}
	}

	result.Passed = len(result.Findings) == 0
	return result, nil
}

// collectTerms merges scrub-rule find terms with the blocklist, first
// occurrence wins so a term in both layers is reported once.
func collectTerms(cfg *config.PublishConfig) []string {
	seen := make(map[string]bool)
	var terms []string
	add := func(term string) {
		if term != "" && !seen[term] {
			seen[term] = true
			terms = append(terms, term)
		}
	}
	for _, rule := range cfg.ScrubRules {
		add(rule.Find)
	}
	for _, term := range cfg.ValidationBlocklist {
		add(term)
	}
	return terms
}
