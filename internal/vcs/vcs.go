// Package vcs answers the two questions the formatter asks version control:
// which files changed, and which files are ignored.
package vcs

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// IgnoreFunc reports whether an absolute path is ignored by version control.
type IgnoreFunc func(path string, isDir bool) bool

type Client interface {
	// ChangedFiles lists staged and unstaged additions, copies and
	// modifications plus untracked, non-ignored files of the repository
	// containing dir, as absolute paths.
	ChangedFiles(ctx context.Context, dir string) ([]string, error)
	// Ignored builds a matcher for the repository containing dir. Outside
	// a repository nothing is ignored.
	Ignored(ctx context.Context, dir string) (IgnoreFunc, error)
}

func New(backend string, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}
	if backend == "go-git" {
		return NewRepoClient(logger)
	}
	return NewExecClient(logger)
}

func NeverIgnored(string, bool) bool { return false }

func absSorted(root string, rel map[string]struct{}) []string {
	out := make([]string, 0, len(rel))
	for p := range rel {
		out = append(out, filepath.Join(root, filepath.FromSlash(p)))
	}
	sort.Strings(out)
	return out
}

func relParts(root, path string) ([]string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, false
	}
	return strings.Split(filepath.ToSlash(rel), "/"), true
}
