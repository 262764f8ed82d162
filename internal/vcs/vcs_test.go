package vcs

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newRepo builds a repository with one committed file that is then modified,
// one staged new file, one untracked file and ignored content.
func newRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, ".gitignore"), "build/\n*.log\n")
	writeFile(t, filepath.Join(root, "committed.py"), "x = 1\n")
	writeFile(t, filepath.Join(root, "clean.py"), "y = 1\n")
	_, err = wt.Add(".gitignore")
	require.NoError(t, err)
	_, err = wt.Add("committed.py")
	require.NoError(t, err)
	_, err = wt.Add("clean.py")
	require.NoError(t, err)
	_, err = wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "committed.py"), "x = 2\n")
	writeFile(t, filepath.Join(root, "src", "staged.py"), "z = 1\n")
	_, err = wt.Add("src/staged.py")
	require.NoError(t, err)
	writeFile(t, filepath.Join(root, "src", "untracked.cpp"), "int x;\n")
	writeFile(t, filepath.Join(root, "build", "out.py"), "ignored\n")
	writeFile(t, filepath.Join(root, "run.log"), "ignored\n")
	return root
}

func expectedChanged(root string) []string {
	return []string{
		filepath.Join(root, "committed.py"),
		filepath.Join(root, "src", "staged.py"),
		filepath.Join(root, "src", "untracked.cpp"),
	}
}

func TestRepoClientChangedFiles(t *testing.T) {
	root := newRepo(t)
	c := NewRepoClient(slog.Default())
	files, err := c.ChangedFiles(context.Background(), filepath.Join(root, "src"))
	require.NoError(t, err)
	assert.Equal(t, expectedChanged(root), files)
}

func TestRepoClientIgnored(t *testing.T) {
	root := newRepo(t)
	c := NewRepoClient(slog.Default())
	ignored, err := c.Ignored(context.Background(), root)
	require.NoError(t, err)
	assert.True(t, ignored(filepath.Join(root, "build"), true))
	assert.True(t, ignored(filepath.Join(root, "run.log"), false))
	assert.False(t, ignored(filepath.Join(root, "committed.py"), false))
	assert.False(t, ignored(filepath.Join(filepath.Dir(root), "elsewhere.log"), false))
}

func TestRepoClientOutsideRepository(t *testing.T) {
	c := NewRepoClient(slog.Default())
	ignored, err := c.Ignored(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.False(t, ignored("/anything", false))

	_, err = c.ChangedFiles(context.Background(), t.TempDir())
	require.Error(t, err)
}

func TestExecClient(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	root := newRepo(t)
	c := NewExecClient(slog.Default())

	files, err := c.ChangedFiles(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, expectedChanged(root), files)

	ignored, err := c.Ignored(context.Background(), root)
	require.NoError(t, err)
	assert.True(t, ignored(filepath.Join(root, "build", "out.py"), false))
	assert.True(t, ignored(filepath.Join(root, "run.log"), false))
	assert.False(t, ignored(filepath.Join(root, "src", "untracked.cpp"), false))

	outside, err := c.Ignored(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.False(t, outside("/anything", false))
}

func TestNewSelectsBackend(t *testing.T) {
	assert.IsType(t, &RepoClient{}, New("go-git", nil))
	assert.IsType(t, &ExecClient{}, New("exec", nil))
}
