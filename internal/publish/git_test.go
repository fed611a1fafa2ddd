package publish

import (
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/pressroomhq/scrubpress/internal/snapshot"
	"github.com/pressroomhq/scrubpress/internal/validate"
	"github.com/pressroomhq/scrubpress/pkg/config"
)

// sourceRepo builds a private repo with one commit and a remote named
// "public" pointing at a local bare repository. Returns both roots.
func sourceRepo(t *testing.T, files map[string]string) (string, string) {
	t.Helper()
	src := t.TempDir()
	bare := t.TempDir()

	if _, err := git.PlainInit(bare, true); err != nil {
		t.Fatalf("init bare remote: %v", err)
	}

	repo, err := git.PlainInit(src, false)
	if err != nil {
		t.Fatalf("init source repo: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	for rel, content := range files {
		writeFile(t, src, rel, content)
		if _, err := wt.Add(rel); err != nil {
			t.Fatalf("add %s: %v", rel, err)
		}
	}
	_, err = wt.Commit("private work", &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.org", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := repo.CreateRemote(&gitcfg.RemoteConfig{Name: "public", URLs: []string{bare}}); err != nil {
		t.Fatalf("create remote: %v", err)
	}
	return src, bare
}

func publishConfig() *config.PublishConfig {
	return &config.PublishConfig{Remote: "public", Branch: "main"}
}

func passedResult() *validate.Result {
	return &validate.Result{Passed: true}
}

func makeSnap(t *testing.T, src string, files []string) *snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.Create(src, files, nil)
	if err != nil {
		t.Fatalf("snapshot.Create() failed: %v", err)
	}
	t.Cleanup(func() { _ = snap.Close() })
	return snap
}

func remoteBranchCommit(t *testing.T, bare, branch string) *object.Commit {
	t.Helper()
	repo, err := git.PlainOpen(bare)
	if err != nil {
		t.Fatalf("open bare remote: %v", err)
	}
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		t.Fatalf("remote branch %s missing: %v", branch, err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		t.Fatalf("commit object: %v", err)
	}
	return commit
}

func TestLivePushesFreshHistory(t *testing.T) {
	src, bare := sourceRepo(t, map[string]string{"doc.md": "sanitized content\n"})
	snap := makeSnap(t, src, []string{"doc.md"})

	result, err := Live(src, snap, publishConfig(), passedResult())
	if err != nil {
		t.Fatalf("Live() failed: %v", err)
	}
	if result.Branch != "main" || result.Remote != "public" || result.FileCount != 1 {
		t.Errorf("result = %+v", result)
	}

	commit := remoteBranchCommit(t, bare, "main")
	if commit.NumParents() != 0 {
		t.Errorf("published commit has %d parents, expected parentless history", commit.NumParents())
	}
	if commit.Hash.String() != result.CommitHash {
		t.Errorf("remote commit %s != reported %s", commit.Hash, result.CommitHash)
	}
}

func TestRepublishOverwritesAndStaysParentless(t *testing.T) {
	src, bare := sourceRepo(t, map[string]string{"doc.md": "v1\n"})

	snap1 := makeSnap(t, src, []string{"doc.md"})
	first, err := Live(src, snap1, publishConfig(), passedResult())
	if err != nil {
		t.Fatalf("first Live() failed: %v", err)
	}

	// Change content so the second publish produces a different commit.
	writeFile(t, src, "doc.md", "v2\n")
	snap2 := makeSnap(t, src, []string{"doc.md"})
	second, err := Live(src, snap2, publishConfig(), passedResult())
	if err != nil {
		t.Fatalf("second Live() failed: %v", err)
	}
	if first.CommitHash == second.CommitHash {
		t.Fatal("expected distinct commits across publishes")
	}

	commit := remoteBranchCommit(t, bare, "main")
	if commit.Hash.String() != second.CommitHash {
		t.Errorf("remote should carry the latest publish, got %s", commit.Hash)
	}
	if commit.NumParents() != 0 {
		t.Errorf("republished commit has %d parents, expected zero", commit.NumParents())
	}
}

func TestLiveRefusesFailedValidation(t *testing.T) {
	src, _ := sourceRepo(t, map[string]string{"doc.md": "x\n"})
	snap := makeSnap(t, src, []string{"doc.md"})

	failed := &validate.Result{Passed: false, Findings: []validate.Finding{
		{Term: "internal-only", File: "doc.md", Line: 1, Text: "x"},
	}}
	if _, err := Live(src, snap, publishConfig(), failed); err != ErrGateRefused {
		t.Errorf("Live() = %v, expected ErrGateRefused", err)
	}
	if _, err := Live(src, snap, publishConfig(), nil); err != ErrGateRefused {
		t.Errorf("Live() with nil result = %v, expected ErrGateRefused", err)
	}
}

func TestLiveUnknownRemoteIsConfigError(t *testing.T) {
	src, _ := sourceRepo(t, map[string]string{"doc.md": "x\n"})
	snap := makeSnap(t, src, []string{"doc.md"})

	cfg := &config.PublishConfig{Remote: "nonexistent", Branch: "main"}
	_, err := Live(src, snap, cfg, passedResult())
	if err == nil || !config.IsConfigError(err) {
		t.Errorf("Live() = %v, expected configuration error for unknown remote", err)
	}
}

func TestLiveBadRemoteURLIsPushError(t *testing.T) {
	src, _ := sourceRepo(t, map[string]string{"doc.md": "x\n"})
	snap := makeSnap(t, src, []string{"doc.md"})

	// Repoint the remote at a path that is not a repository.
	repo, err := git.PlainOpen(src)
	if err != nil {
		t.Fatalf("open source repo: %v", err)
	}
	if err := repo.DeleteRemote("public"); err != nil {
		t.Fatalf("delete remote: %v", err)
	}
	if _, err := repo.CreateRemote(&gitcfg.RemoteConfig{
		Name: "public",
		URLs: []string{filepath.Join(t.TempDir(), "not-a-repo")},
	}); err != nil {
		t.Fatalf("create remote: %v", err)
	}

	_, err = Live(src, snap, publishConfig(), passedResult())
	if err == nil || !IsPushError(err) {
		t.Errorf("Live() = %v, expected push error", err)
	}
}

func TestSourcePath(t *testing.T) {
	got := sourcePath("/tmp/root", "a/b.txt")
	want := filepath.Join("/tmp/root", "a", "b.txt")
	if got != want {
		t.Errorf("sourcePath() = %q, expected %q", got, want)
	}
}
