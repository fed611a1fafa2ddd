// Package snapshot materializes the disposable working copy that all
// transformation and validation happens on. A Snapshot is exclusively owned
// by one pipeline run and must be closed on every exit path.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pressroomhq/scrubpress/pkg/logger"
	"github.com/pressroomhq/scrubpress/pkg/safeio"
)

// Snapshot is an isolated copy of the tracked file set, rooted at a temporary
// directory. Files holds the relative slash paths that survived exclusion.
type Snapshot struct {
	Root  string
	Files []string
}

// Create copies every tracked file not under an excluded path from sourceRoot
// into a fresh temporary root. The tracked set must be non-empty. Exclude
// entries match themselves, everything beneath them, and doublestar globs.
// Any copy failure aborts the snapshot; the partial tree is removed.
func Create(sourceRoot string, files, excludes []string) (*Snapshot, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("tracked file set is empty")
	}

	root, err := os.MkdirTemp("", "scrubpress-*")
	if err != nil {
		return nil, fmt.Errorf("failed to allocate snapshot root: %w", err)
	}
	snap := &Snapshot{Root: root}

	matched := make(map[string]bool, len(excludes))
	for _, rel := range files {
		if ex, ok := excluded(rel, excludes); ok {
			matched[ex] = true
			continue
		}
		if err := copyFile(sourceRoot, root, rel); err != nil {
			_ = snap.Close()
			return nil, fmt.Errorf("failed to copy %s into snapshot: %w", rel, err)
		}
		snap.Files = append(snap.Files, rel)
	}

	// Excludes are best-effort "remove if present"; an entry that matched
	// nothing is only worth a note.
	for _, ex := range excludes {
		if !matched[ex] {
			logger.Debug("exclude path matched no tracked files", logger.String("path", ex))
		}
	}

	return snap, nil
}

// Close removes the snapshot root. Safe to call more than once.
func (s *Snapshot) Close() error {
	if s.Root == "" {
		return nil
	}
	err := os.RemoveAll(s.Root)
	s.Root = ""
	return err
}

// Path resolves a relative snapshot path to its absolute location.
func (s *Snapshot) Path(rel string) string {
	return filepath.Join(s.Root, filepath.FromSlash(rel))
}

// Contains reports whether rel survived exclusion into the snapshot.
func (s *Snapshot) Contains(rel string) bool {
	for _, f := range s.Files {
		if f == rel {
			return true
		}
	}
	return false
}

func excluded(rel string, excludes []string) (string, bool) {
	for _, ex := range excludes {
		if rel == ex || strings.HasPrefix(rel, ex+"/") {
			return ex, true
		}
		if ok, err := doublestar.Match(ex, rel); err == nil && ok {
			return ex, true
		}
	}
	return "", false
}

func copyFile(sourceRoot, destRoot, rel string) error {
	src := filepath.Join(sourceRoot, filepath.FromSlash(rel))
	dst := filepath.Join(destRoot, filepath.FromSlash(rel))

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	data, err := safeio.ReadFileContained(sourceRoot, src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, info.Mode().Perm())
}
