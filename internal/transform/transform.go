// Package transform applies the ordered sanitizing passes to a snapshot:
// marker-region stripping, literal scrub rules, then template reset. Pass
// order is fixed; a failure in any pass aborts the transformer so that a
// partially transformed snapshot is never validated or published.
package transform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/pressroomhq/scrubpress/internal/snapshot"
	"github.com/pressroomhq/scrubpress/pkg/config"
	"github.com/pressroomhq/scrubpress/pkg/logger"
	"github.com/pressroomhq/scrubpress/pkg/safeio"
	"github.com/pressroomhq/scrubpress/pkg/templates"
	"github.com/pressroomhq/scrubpress/pkg/textscan"
)

// RuleReport describes the effect of one scrub rule across the snapshot.
// CandidateFiles is the pre-pass containment count (reporting only);
// TouchedFiles is the number of files actually rewritten by the rule.
type RuleReport struct {
	Rule           config.ScrubRule
	CandidateFiles int
	TouchedFiles   int
}

// Report summarizes a completed transform.
type Report struct {
	StrippedRegions  int
	Rules            []RuleReport
	ResetFiles       []string
	SkippedTemplates []string
}

// Transformer mutates a snapshot in place according to the publish config.
type Transformer struct {
	cfg     *config.PublishConfig
	catalog *templates.Catalog
}

// New returns a Transformer for the given config and template catalog.
func New(cfg *config.PublishConfig, catalog *templates.Catalog) *Transformer {
	return &Transformer{cfg: cfg, catalog: catalog}
}

// Run executes the three passes in order against snap.
func (t *Transformer) Run(snap *snapshot.Snapshot) (*Report, error) {
	report := &Report{}

	if err := t.stripMarkers(snap, report); err != nil {
		return nil, err
	}
	if err := t.applyScrubRules(snap, report); err != nil {
		return nil, err
	}
	if err := t.resetTemplates(snap, report); err != nil {
		return nil, err
	}

	for _, rr := range report.Rules {
		if rr.TouchedFiles == 0 {
			// Often a sign of configuration drift: the rule's target no
			// longer exists in the tree.
			logger.Warn("scrub rule never matched",
				logger.String("find", rr.Rule.Find))
		} else {
			logger.Info("scrub rule applied",
				logger.String("find", rr.Rule.Find),
				logger.Int("candidate_files", rr.CandidateFiles),
				logger.Int("touched_files", rr.TouchedFiles))
		}
	}
	return report, nil
}

// stripMarkers is Pass A: remove every complete marker-delimited region from
// text files. Runs before scrub rules so content hidden inside a region does
// not also have to satisfy them.
func (t *Transformer) stripMarkers(snap *snapshot.Snapshot, report *Report) error {
	for _, rel := range snap.Files {
		path := snap.Path(rel)
		content, err := os.ReadFile(path) // #nosec G304 -- path rooted in the owned snapshot
		if err != nil {
			return fmt.Errorf("marker pass failed reading %s: %w", rel, err)
		}
		if !textscan.IsText(content) {
			continue
		}
		stripped, regions, err := stripMarkerRegions(content, t.cfg.Markers.Begin, t.cfg.Markers.End)
		if err != nil {
			return fmt.Errorf("marker pass failed in %s: %w", rel, err)
		}
		if regions == 0 {
			continue
		}
		if err := safeio.WriteFilePreservePerms(path, stripped); err != nil {
			return fmt.Errorf("marker pass failed writing %s: %w", rel, err)
		}
		report.StrippedRegions += regions
		logger.Debug("stripped marker regions",
			logger.String("file", rel), logger.Int("regions", regions))
	}
	return nil
}

// applyScrubRules is Pass B: ordered literal find/replace over every text
// file. Files are processed in parallel; within a file the rule sequence is
// strictly ordered so later rules act on the output of earlier ones. Literal
// substring replacement only; find/replace terms are never pattern syntax.
func (t *Transformer) applyScrubRules(snap *snapshot.Snapshot, report *Report) error {
	rules := t.cfg.ScrubRules
	if len(rules) == 0 {
		return nil
	}

	candidates := make([]atomic.Int64, len(rules))
	touched := make([]atomic.Int64, len(rules))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, rel := range snap.Files {
		rel := rel
		g.Go(func() error {
			path := snap.Path(rel)
			content, err := os.ReadFile(path) // #nosec G304 -- path rooted in the owned snapshot
			if err != nil {
				return fmt.Errorf("scrub pass failed reading %s: %w", rel, err)
			}
			if !textscan.IsText(content) {
				return nil
			}

			orig := string(content)
			text := orig
			changed := false
			for i, rule := range rules {
				if strings.Contains(orig, rule.Find) {
					candidates[i].Add(1)
				}
				if !strings.Contains(text, rule.Find) {
					continue
				}
				text = strings.ReplaceAll(text, rule.Find, rule.Replace)
				touched[i].Add(1)
				changed = true
			}
			if !changed {
				return nil
			}
			if err := safeio.WriteFilePreservePerms(path, []byte(text)); err != nil {
				return fmt.Errorf("scrub pass failed writing %s: %w", rel, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, rule := range rules {
		report.Rules = append(report.Rules, RuleReport{
			Rule:           rule,
			CandidateFiles: int(candidates[i].Load()),
			TouchedFiles:   int(touched[i].Load()),
		})
	}
	return nil
}

// resetTemplates is Pass C: overwrite designated files wholesale with their
// canonical templates. Template replacement is authoritative and final for
// those files, regardless of what earlier passes produced.
func (t *Transformer) resetTemplates(snap *snapshot.Snapshot, report *Report) error {
	for _, rel := range t.cfg.ResetToTemplates {
		if !snap.Contains(rel) {
			logger.Debug("reset target not in snapshot", logger.String("path", rel))
			continue
		}
		content, known, err := t.catalog.Resolve(filepath.Base(rel), t.cfg.Project)
		if err != nil {
			return fmt.Errorf("template pass failed for %s: %w", rel, err)
		}
		if !known {
			logger.Warn("no template defined — skipped", logger.String("path", rel))
			logger.Debug("catalog templates",
				logger.String("known", strings.Join(t.catalog.Names(), ", ")))
			report.SkippedTemplates = append(report.SkippedTemplates, rel)
			continue
		}
		if existing, err := os.ReadFile(snap.Path(rel)); err == nil { // #nosec G304 -- path rooted in the owned snapshot
			if eol := textscan.DetectLineEnding(existing); eol != "\n" {
				content = strings.ReplaceAll(content, "\n", eol)
			}
		}
		if err := safeio.WriteFilePreservePerms(snap.Path(rel), []byte(content)); err != nil {
			return fmt.Errorf("template pass failed writing %s: %w", rel, err)
		}
		report.ResetFiles = append(report.ResetFiles, rel)
	}
	return nil
}
