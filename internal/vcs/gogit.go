package vcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// RepoClient reads the repository in-process with go-git, so it works
// without a git binary on PATH.
type RepoClient struct {
	logger *slog.Logger
}

func NewRepoClient(logger *slog.Logger) *RepoClient {
	return &RepoClient{logger: logger.With(slog.String("component", "vcs"), slog.String("backend", "go-git"))}
}

func (c *RepoClient) open(dir string) (*git.Worktree, string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, "", fmt.Errorf("open worktree of %s: %w", dir, err)
	}
	return wt, wt.Filesystem.Root(), nil
}

func (c *RepoClient) ChangedFiles(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wt, root, err := c.open(dir)
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", dir, err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("read status of %s: %w", root, err)
	}
	rel := map[string]struct{}{}
	for p, fs := range status {
		if wanted(fs.Staging) || wanted(fs.Worktree) || fs.Worktree == git.Untracked {
			rel[p] = struct{}{}
		}
	}
	c.logger.Debug("changed files", slog.String("root", root), slog.Int("count", len(rel)))
	return absSorted(root, rel), nil
}

func wanted(code git.StatusCode) bool {
	switch code {
	case git.Added, git.Copied, git.Modified:
		return true
	}
	return false
}

func (c *RepoClient) Ignored(ctx context.Context, dir string) (IgnoreFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wt, root, err := c.open(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return NeverIgnored, nil
	}
	if err != nil {
		c.logger.Debug("ignored-file lookup skipped", slog.String("dir", dir), slog.Any("error", err))
		return NeverIgnored, nil
	}
	patterns, err := gitignore.ReadPatterns(wt.Filesystem, nil)
	if err != nil {
		return nil, fmt.Errorf("read ignore patterns of %s: %w", root, err)
	}
	patterns = append(patterns, wt.Excludes...)
	matcher := gitignore.NewMatcher(patterns)
	return func(path string, isDir bool) bool {
		parts, ok := relParts(root, path)
		if !ok {
			return false
		}
		return matcher.Match(parts, isDir)
	}, nil
}
