package publish

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/pressroomhq/scrubpress/internal/snapshot"
	"github.com/pressroomhq/scrubpress/internal/validate"
	"github.com/pressroomhq/scrubpress/pkg/config"
	"github.com/pressroomhq/scrubpress/pkg/logger"
)

// ErrGateRefused is returned when live publishing is attempted against a
// failed (or missing) validation result. This is the single hard gate in the
// pipeline.
var ErrGateRefused = errors.New("publish refused: validation did not pass")

// PushError carries the remote's rejection verbatim. No retry is attempted.
type PushError struct {
	Remote string
	Err    error
}

func (e *PushError) Error() string {
	return fmt.Sprintf("push to remote %q rejected: %v", e.Remote, e.Err)
}

func (e *PushError) Unwrap() error { return e.Err }

// IsPushError reports whether err is (or wraps) a push rejection.
func IsPushError(err error) bool {
	var pe *PushError
	return errors.As(err, &pe)
}

// Result describes a completed live publish.
type Result struct {
	Remote     string `json:"remote"`
	RemoteURL  string `json:"remote_url"`
	Branch     string `json:"branch"`
	CommitHash string `json:"commit"`
	FileCount  int    `json:"file_count"`
}

const (
	committerName  = "scrubpress"
	committerEmail = "scrubpress@localhost"
)

// Live commits the validated snapshot as a brand-new, parentless history and
// force-pushes it to the configured remote, overwriting whatever history
// exists there. The remote URL is resolved from the source repository's
// remote of the same name; an unknown remote is a configuration error.
func Live(sourceRoot string, snap *snapshot.Snapshot, cfg *config.PublishConfig, vres *validate.Result) (*Result, error) {
	if vres == nil || !vres.Passed {
		return nil, ErrGateRefused
	}

	remoteURL, err := resolveRemoteURL(sourceRoot, cfg.Remote)
	if err != nil {
		return nil, err
	}

	repo, hash, err := commitSnapshot(snap, cfg.Branch)
	if err != nil {
		return nil, err
	}

	if _, err := repo.CreateRemote(&gitcfg.RemoteConfig{
		Name: cfg.Remote,
		URLs: []string{remoteURL},
	}); err != nil {
		return nil, fmt.Errorf("failed to configure remote %s: %w", cfg.Remote, err)
	}

	refSpec := gitcfg.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/heads/%s", cfg.Branch, cfg.Branch))
	logger.Info("force-pushing sanitized snapshot",
		logger.String("remote", cfg.Remote),
		logger.String("branch", cfg.Branch),
		logger.String("commit", hash.String()))
	err = repo.Push(&git.PushOptions{
		RemoteName: cfg.Remote,
		RefSpecs:   []gitcfg.RefSpec{refSpec},
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, &PushError{Remote: cfg.Remote, Err: err}
	}

	return &Result{
		Remote:     cfg.Remote,
		RemoteURL:  remoteURL,
		Branch:     cfg.Branch,
		CommitHash: hash.String(),
		FileCount:  len(snap.Files),
	}, nil
}

// commitSnapshot initializes a fresh repository at the snapshot root and
// records the whole tree as a single commit on branch. The history is
// parentless by construction: prior publishes are never reachable from it.
func commitSnapshot(snap *snapshot.Snapshot, branch string) (*git.Repository, plumbing.Hash, error) {
	repo, err := git.PlainInit(snap.Root, false)
	if err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("failed to initialize snapshot repository: %w", err)
	}

	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(branch))
	if err := repo.Storer.SetReference(head); err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("failed to point HEAD at %s: %w", branch, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("failed to open snapshot worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("failed to stage snapshot: %w", err)
	}

	hash, err := wt.Commit("Publish sanitized snapshot", &git.CommitOptions{
		Author: &object.Signature{
			Name:  committerName,
			Email: committerEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return repo, hash, nil
}

// resolveRemoteURL looks the remote name up in the source repository.
func resolveRemoteURL(sourceRoot, name string) (string, error) {
	repo, err := git.PlainOpenWithOptions(sourceRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", &config.Error{Reason: "source tree is not a git repository", Err: err}
	}
	remote, err := repo.Remote(name)
	if err != nil {
		return "", &config.Error{Reason: fmt.Sprintf("unknown remote %q", name), Err: err}
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", &config.Error{Reason: fmt.Sprintf("remote %q has no URL", name)}
	}
	return urls[0], nil
}

func sourcePath(sourceRoot, rel string) string {
	return filepath.Join(sourceRoot, filepath.FromSlash(rel))
}
