// Package hooks installs the commit-time check into a git repository.
package hooks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	PartsDirName = "_pre-commit-parts"
	PartName     = "00001_fix-format"
)

const preCommitScript = `#!/bin/bash
# installed automatically by fix-format --git-hooks, changes will be lost!

echo ` + "`pwd`" + `
globalreturncode=0
for i in ` + "`ls .git/hooks/" + PartsDirName + "`" + `;
do
    .git/hooks/` + PartsDirName + `/$i
    returncode=$?
    if [ "$returncode" != "0" ]
    then
        globalreturncode=1
    fi
done
exit $globalreturncode
`

const fixFormatPart = `#!/bin/bash

echo "` + "\x1b[34m" + `Hook fix-format in progress ....` + "\x1b[0m" + `"
if ! which fix-format >/dev/null 2>&1
then
    echo "fix-format not found, install it and make sure it is on PATH"
    exit 1
else
    git diff-index --diff-filter=ACM --name-only --cached HEAD | fix-format --check --stdin
    returncode=$?
    if [ "$returncode" != "0" ]
    then
        echo ""
        echo "fix-format check failed (status=$returncode)! To fix, execute:"
        echo "  fix-format -c"
        exit 1
    fi
fi
`

var ErrNoRepository = errors.New("no .git found in the directory hierarchy")

type Result struct {
	Root     string
	HookFile string
	// Skipped is set when .git is a file, as in submodules and worktrees.
	Skipped bool
}

// InstallPreCommit (re)creates the pre-commit hook of the repository that
// contains dir. The hook runs every part in the parts directory, which is
// recreated with the fix-format part on each install.
func InstallPreCommit(dir string) (Result, error) {
	root, err := findGitRoot(dir)
	if err != nil {
		return Result{}, err
	}
	res := Result{Root: root}
	dotGit := filepath.Join(root, ".git")
	info, err := os.Stat(dotGit)
	if err != nil {
		return res, fmt.Errorf("stat %s: %w", dotGit, err)
	}
	if !info.IsDir() {
		res.Skipped = true
		return res, nil
	}

	hooksDir := filepath.Join(dotGit, "hooks")
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return res, fmt.Errorf("create %s: %w", hooksDir, err)
	}
	lockPath := filepath.Join(hooksDir, ".fix-format.lock")
	lock := flock.New(lockPath)
	if err := lock.Lock(); err != nil {
		return res, fmt.Errorf("failed to acquire lock on %s: %w", lockPath, err)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}()

	partsDir := filepath.Join(hooksDir, PartsDirName)
	if err := os.RemoveAll(partsDir); err != nil {
		return res, fmt.Errorf("remove %s: %w", partsDir, err)
	}
	if err := os.MkdirAll(partsDir, 0o755); err != nil {
		return res, fmt.Errorf("create %s: %w", partsDir, err)
	}
	res.HookFile = filepath.Join(hooksDir, "pre-commit")
	if err := writeExecutable(res.HookFile, preCommitScript); err != nil {
		return res, err
	}
	if err := writeExecutable(filepath.Join(partsDir, PartName), fixFormatPart); err != nil {
		return res, err
	}
	return res, nil
}

func findGitRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for d := abs; ; {
		if _, err := os.Stat(filepath.Join(d, ".git")); err == nil {
			return d, nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			return "", fmt.Errorf("%w (started at %s)", ErrNoRepository, abs)
		}
		d = parent
	}
}

// writeExecutable replaces path atomically through a temp file and rename.
func writeExecutable(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o755); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	return nil
}
