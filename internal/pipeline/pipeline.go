// Package pipeline orchestrates the sanitizing publish run: snapshot,
// transform, validate, publish. Stages are strictly sequential and every
// run is from scratch; there is no retry state.
package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/pressroomhq/scrubpress/internal/publish"
	"github.com/pressroomhq/scrubpress/internal/snapshot"
	"github.com/pressroomhq/scrubpress/internal/tracked"
	"github.com/pressroomhq/scrubpress/internal/transform"
	"github.com/pressroomhq/scrubpress/internal/validate"
	"github.com/pressroomhq/scrubpress/pkg/config"
	"github.com/pressroomhq/scrubpress/pkg/logger"
	"github.com/pressroomhq/scrubpress/pkg/templates"
)

// Pipeline runs the four stages against one source tree with one immutable
// configuration. A Pipeline is not safe for concurrent use; concurrent runs
// must construct their own (each gets its own snapshot root).
type Pipeline struct {
	sourceRoot string
	cfg        *config.PublishConfig
	catalog    *templates.Catalog
	files      []string
	state      State
}

// New enumerates the tracked file set and prepares a run. An empty tracked
// set is a configuration error, not a silent no-op.
func New(sourceRoot string, cfg *config.PublishConfig, catalog *templates.Catalog) (*Pipeline, error) {
	files, err := tracked.List(sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate tracked files: %w", err)
	}
	if len(files) == 0 {
		return nil, &config.Error{Reason: "tracked file set is empty"}
	}
	if cfg.Project == "" {
		abs, err := filepath.Abs(sourceRoot)
		if err == nil {
			cfg.Project = filepath.Base(abs)
		}
	}
	return &Pipeline{
		sourceRoot: sourceRoot,
		cfg:        cfg,
		catalog:    catalog,
		files:      files,
		state:      Idle,
	}, nil
}

// State returns the current pipeline state.
func (p *Pipeline) State() State { return p.state }

// Preview transforms and validates a fresh snapshot, then renders the diff
// against the original tree. It completes regardless of the validation
// outcome and performs no network or history operation; the returned
// validation result lets callers surface pending failures alongside the diff.
func (p *Pipeline) Preview() (*publish.DiffReport, *validate.Result, error) {
	snap, vres, err := p.prepare()
	if snap != nil {
		defer func() { _ = snap.Close() }()
	}
	if err != nil {
		return nil, nil, err
	}

	report, err := publish.Preview(p.sourceRoot, p.files, snap)
	if err != nil {
		return nil, nil, err
	}
	return report, vres, nil
}

// Check transforms and validates a fresh snapshot without diffing or
// publishing. Useful as a fast configuration lint.
func (p *Pipeline) Check() (*validate.Result, error) {
	snap, vres, err := p.prepare()
	if snap != nil {
		defer func() { _ = snap.Close() }()
	}
	if err != nil {
		return nil, err
	}
	return vres, nil
}

// Publish runs the full pipeline and force-pushes the validated snapshot.
// When validation fails it returns a *ValidationError carrying the complete
// findings list and never touches the remote.
func (p *Pipeline) Publish() (*publish.Result, error) {
	snap, vres, err := p.prepare()
	if snap != nil {
		defer func() { _ = snap.Close() }()
	}
	if err != nil {
		return nil, err
	}

	if !vres.Passed {
		p.transition(Rejected)
		return nil, &ValidationError{Result: vres}
	}

	result, err := publish.Live(p.sourceRoot, snap, p.cfg, vres)
	if err != nil {
		p.transition(Rejected)
		return nil, err
	}
	p.transition(Published)
	logger.Info("publish complete",
		logger.String("remote", result.Remote),
		logger.String("branch", result.Branch),
		logger.String("commit", result.CommitHash),
		logger.Int("files", result.FileCount))
	return result, nil
}

// prepare runs the shared snapshot → transform → validate prefix. The caller
// owns closing the returned snapshot, which is non-nil whenever it was
// created, even on error.
func (p *Pipeline) prepare() (*snapshot.Snapshot, *validate.Result, error) {
	p.state = Idle

	snap, err := snapshot.Create(p.sourceRoot, p.files, p.cfg.ExcludePaths)
	if err != nil {
		return nil, nil, err
	}
	p.transition(SnapshotReady)
	logger.Debug("snapshot ready",
		logger.String("root", snap.Root), logger.Int("files", len(snap.Files)))

	if _, err := transform.New(p.cfg, p.catalog).Run(snap); err != nil {
		return snap, nil, err
	}
	p.transition(Transformed)

	vres, err := validate.Scan(snap, p.cfg)
	if err != nil {
		return snap, nil, err
	}
	if vres.Passed {
		p.transition(ValidatedPass)
	} else {
		p.transition(ValidatedFail)
	}
	logger.Debug("validation complete",
		logger.Bool("passed", vres.Passed), logger.Int("findings", len(vres.Findings)))
	return snap, vres, nil
}
