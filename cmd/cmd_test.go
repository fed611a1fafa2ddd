package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/pressroomhq/scrubpress/internal/pipeline"
	"github.com/pressroomhq/scrubpress/internal/publish"
	"github.com/pressroomhq/scrubpress/internal/validate"
	"github.com/pressroomhq/scrubpress/pkg/config"
	"github.com/pressroomhq/scrubpress/pkg/exitcode"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

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

// fixture builds a committed repo with a "public" remote and an untracked
// scrubpress.yaml. Returns the source root and the config path.
func fixture(t *testing.T, files map[string]string, configBody string) (string, string) {
	t.Helper()
	src := t.TempDir()
	bare := t.TempDir()

	if _, err := git.PlainInit(bare, true); err != nil {
		t.Fatalf("init bare: %v", err)
	}
	repo, err := git.PlainInit(src, false)
	if err != nil {
		t.Fatalf("init source: %v", err)
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
	if _, err := wt.Commit("private", &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.org", When: time.Now()},
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := repo.CreateRemote(&gitcfg.RemoteConfig{Name: "public", URLs: []string{bare}}); err != nil {
		t.Fatalf("remote: %v", err)
	}

	cfgPath := filepath.Join(t.TempDir(), "scrubpress.yaml")
	if err := os.WriteFile(cfgPath, []byte(configBody), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return src, cfgPath
}

const testConfig = `scrub_rules:
  - find: "Acme Corp"
    replace: "Example Org"
validation_blocklist:
  - internal-only
remote: public
branch: main
`

func TestPreviewCommand(t *testing.T) {
	src, cfgPath := fixture(t, map[string]string{"doc.md": "Acme Corp\n"}, testConfig)

	out, err := executeCommand(t, "preview", "--config", cfgPath, "--target", src)
	if err != nil {
		t.Fatalf("preview failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "doc.md") || !strings.Contains(out, "+Example Org") {
		t.Errorf("preview output missing diff:\n%s", out)
	}
}

func TestPreviewSucceedsDespiteFindings(t *testing.T) {
	src, cfgPath := fixture(t, map[string]string{"notes.md": "internal-only\n"}, testConfig)

	out, err := executeCommand(t, "preview", "--config", cfgPath, "--target", src)
	if err != nil {
		t.Fatalf("preview must not fail on validation findings: %v", err)
	}
	if !strings.Contains(out, "internal-only") {
		t.Errorf("preview should surface pending findings:\n%s", out)
	}
}

func TestPublishCommand(t *testing.T) {
	src, cfgPath := fixture(t, map[string]string{"doc.md": "Acme Corp\n"}, testConfig)

	out, err := executeCommand(t, "publish", "--config", cfgPath, "--target", src)
	if err != nil {
		t.Fatalf("publish failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Published 1 file(s) to public/main") {
		t.Errorf("publish output = %q", out)
	}
}

func TestPublishBlockedByValidation(t *testing.T) {
	src, cfgPath := fixture(t, map[string]string{"notes.md": "internal-only\n"}, testConfig)

	out, err := executeCommand(t, "publish", "--config", cfgPath, "--target", src)
	if err == nil {
		t.Fatal("publish must fail while findings remain")
	}
	if _, ok := pipeline.AsValidationError(err); !ok {
		t.Errorf("error = %v, expected ValidationError", err)
	}
	if !strings.Contains(out, "internal-only") {
		t.Errorf("findings not rendered:\n%s", out)
	}
}

func TestCheckCommand(t *testing.T) {
	src, cfgPath := fixture(t, map[string]string{"doc.md": "all clean\n"}, testConfig)

	out, err := executeCommand(t, "check", "--config", cfgPath, "--target", src)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, "Validation passed") {
		t.Errorf("check output = %q", out)
	}
}

func TestMissingConfigIsConfigError(t *testing.T) {
	src, _ := fixture(t, map[string]string{"doc.md": "x\n"}, testConfig)

	_, err := executeCommand(t, "check", "--config", filepath.Join(src, "absent.yaml"), "--target", src)
	if err == nil || !config.IsConfigError(err) {
		t.Errorf("error = %v, expected configuration error", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", &pipeline.ValidationError{Result: &validate.Result{}}, exitcode.ValidationFailure},
		{"config", &config.Error{Reason: "x"}, exitcode.ConfigError},
		{"push", &publish.PushError{Remote: "public", Err: errors.New("rejected")}, exitcode.PublishError},
		{"io", errors.New("read failed"), exitcode.IOError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got != tt.expected {
				t.Errorf("classify(%v) = %d, expected %d", tt.err, got, tt.expected)
			}
		})
	}
}
