// Package tracked enumerates the files a publish run operates on. Inside a
// git repository the tracked set is the index; outside one (useful for dry
// previews of exported trees) it falls back to a gitignore-aware walk.
package tracked

import (
	"bufio"
	"bytes"
	"io/fs"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	git "github.com/go-git/go-git/v5"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// List returns the repo-relative, slash-separated paths of all tracked files
// under root, sorted. Resolution order: go-git index, git CLI, ignore-aware
// filesystem walk.
func List(root string) ([]string, error) {
	if files, ok := listGoGit(root); ok {
		sort.Strings(files)
		return files, nil
	}
	if files, ok := listCLI(root); ok {
		sort.Strings(files)
		return files, nil
	}
	files, err := listWalk(root)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func listGoGit(root string) ([]string, bool) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, false
	}
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, false
	}
	files := make([]string, 0, len(idx.Entries))
	for _, entry := range idx.Entries {
		files = append(files, filepath.ToSlash(entry.Name))
	}
	return files, true
}

func listCLI(root string) ([]string, bool) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, false
	}
	cmd := exec.Command("git", "ls-files", "-z")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil, false
	}
	var files []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Split(splitNul)
	for scanner.Scan() {
		name := scanner.Text()
		if name != "" {
			files = append(files, filepath.ToSlash(name))
		}
	}
	return files, true
}

// listWalk walks root honoring gitignore patterns, for trees that are not
// git repositories.
func listWalk(root string) ([]string, error) {
	bfs := osfs.New(root)

	var patterns []gitignore.Pattern
	// .git contents are never publishable even if a stray directory exists.
	patterns = append(patterns, gitignore.ParsePattern(".git/**", nil))
	if gitPatterns, err := gitignore.ReadPatterns(bfs, nil); err == nil {
		patterns = append(patterns, gitPatterns...)
	}
	matcher := gitignore.NewMatcher(patterns)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		parts := splitPath(filepath.ToSlash(rel))
		if d.IsDir() {
			if d.Name() == ".git" || matcher.Match(parts, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.Match(parts, false) {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func splitNul(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// splitPath converts a slash-separated path into components for the go-git
// gitignore matcher.
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
