package hooks

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallPreCommit(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	sub := filepath.Join(root, "src", "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	stale := filepath.Join(root, ".git", "hooks", PartsDirName, "00002_old")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("#!/bin/bash\n"), 0o755))

	res, err := InstallPreCommit(sub)
	require.NoError(t, err)
	assert.Equal(t, root, res.Root)
	assert.False(t, res.Skipped)
	assert.Equal(t, filepath.Join(root, ".git", "hooks", "pre-commit"), res.HookFile)

	hook, err := os.ReadFile(res.HookFile)
	require.NoError(t, err)
	assert.Contains(t, string(hook), "for i in `ls .git/hooks/_pre-commit-parts`;")
	assert.Contains(t, string(hook), "exit $globalreturncode")

	entries, err := os.ReadDir(filepath.Join(root, ".git", "hooks", PartsDirName))
	require.NoError(t, err)
	require.Len(t, entries, 1, "parts directory is recreated")
	assert.Equal(t, PartName, entries[0].Name())

	part, err := os.ReadFile(filepath.Join(root, ".git", "hooks", PartsDirName, PartName))
	require.NoError(t, err)
	assert.Contains(t, string(part), "git diff-index --diff-filter=ACM --name-only --cached HEAD | fix-format --check --stdin")
	assert.Contains(t, string(part), "Hook fix-format in progress")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(res.HookFile)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode().Perm()&0o100)
	}
	_, err = os.Stat(filepath.Join(root, ".git", "hooks", ".fix-format.lock"))
	assert.True(t, os.IsNotExist(err))

	// reinstalling is idempotent
	_, err = InstallPreCommit(root)
	require.NoError(t, err)
}

func TestInstallPreCommitSubmoduleIsSkipped(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git"), []byte("gitdir: ../.git/modules/x\n"), 0o644))
	res, err := InstallPreCommit(root)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Empty(t, res.HookFile)
}

func TestInstallPreCommitOutsideRepository(t *testing.T) {
	_, err := InstallPreCommit(t.TempDir())
	if err == nil {
		t.Skip("temp directory lives inside a git checkout")
	}
	assert.ErrorIs(t, err, ErrNoRepository)
}
