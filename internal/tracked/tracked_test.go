package tracked

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func initRepo(t *testing.T, root string, files map[string]string) {
	t.Helper()
	repo, err := git.PlainInit(root, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	for rel, content := range files {
		writeFile(t, root, rel, content)
		if _, err := wt.Add(rel); err != nil {
			t.Fatalf("Add(%s): %v", rel, err)
		}
	}
	_, err = wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.org", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestListFromGitIndex(t *testing.T) {
	root := t.TempDir()
	initRepo(t, root, map[string]string{
		"README.md":      "# readme\n",
		"docs/guide.md":  "guide\n",
		"src/main.go":    "package main\n",
		"internal/a.txt": "a\n",
	})
	// Untracked file must not appear.
	writeFile(t, root, "scratch.txt", "untracked\n")

	files, err := List(root)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	expected := []string{"README.md", "docs/guide.md", "internal/a.txt", "src/main.go"}
	if len(files) != len(expected) {
		t.Fatalf("List() = %v, expected %v", files, expected)
	}
	for i, want := range expected {
		if files[i] != want {
			t.Errorf("files[%d] = %q, expected %q", i, files[i], want)
		}
	}
}

func TestListWalkFallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# readme\n")
	writeFile(t, root, "build/out.bin", "x\n")
	writeFile(t, root, ".gitignore", "build/\n")

	files, err := List(root)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	seen := make(map[string]bool)
	for _, f := range files {
		seen[f] = true
	}
	if !seen["README.md"] {
		t.Errorf("walk fallback missed README.md: %v", files)
	}
	if seen["build/out.bin"] {
		t.Errorf("walk fallback should honor .gitignore: %v", files)
	}
}
