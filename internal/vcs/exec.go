package vcs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExecClient runs the git binary.
type ExecClient struct {
	logger *slog.Logger
}

func NewExecClient(logger *slog.Logger) *ExecClient {
	return &ExecClient{logger: logger.With(slog.String("component", "vcs"), slog.String("backend", "exec"))}
}

func (c *ExecClient) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command 'git %s' failed in %s: %w. stderr: %s", strings.Join(args, " "), dir, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func (c *ExecClient) toplevel(ctx context.Context, dir string) (string, error) {
	out, err := c.run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return filepath.FromSlash(strings.TrimSpace(out)), nil
}

func (c *ExecClient) ChangedFiles(ctx context.Context, dir string) ([]string, error) {
	root, err := c.toplevel(ctx, dir)
	if err != nil {
		return nil, err
	}
	queries := [][]string{
		{"diff", "--name-only", "-z", "--diff-filter=ACM", "--staged"},
		{"diff", "--name-only", "-z", "--diff-filter=ACM"},
		{"ls-files", "-z", "-o", "--full-name", "--exclude-standard"},
	}
	rel := map[string]struct{}{}
	for _, q := range queries {
		out, err := c.run(ctx, root, q...)
		if err != nil {
			return nil, err
		}
		for _, p := range splitNUL(out) {
			rel[p] = struct{}{}
		}
	}
	c.logger.Debug("changed files", slog.String("root", root), slog.Int("count", len(rel)))
	return absSorted(root, rel), nil
}

func (c *ExecClient) Ignored(ctx context.Context, dir string) (IgnoreFunc, error) {
	root, err := c.toplevel(ctx, dir)
	if err != nil {
		// not a repository, or git is missing
		c.logger.Debug("ignored-file lookup skipped", slog.String("dir", dir), slog.Any("error", err))
		return NeverIgnored, nil
	}
	out, err := c.run(ctx, root, "status", "--ignored", "--untracked-files=all", "--porcelain=2", "-z", "--", dir)
	if err != nil {
		c.logger.Debug("ignored-file lookup failed", slog.String("dir", dir), slog.Any("error", err))
		return NeverIgnored, nil
	}
	files := map[string]struct{}{}
	var dirs []string
	for _, entry := range splitNUL(out) {
		if !strings.HasPrefix(entry, "! ") {
			continue
		}
		p := strings.TrimPrefix(entry, "! ")
		if strings.HasSuffix(p, "/") {
			dirs = append(dirs, strings.TrimSuffix(p, "/"))
			continue
		}
		files[p] = struct{}{}
	}
	return func(path string, isDir bool) bool {
		parts, ok := relParts(root, path)
		if !ok {
			return false
		}
		rel := strings.Join(parts, "/")
		if _, hit := files[rel]; hit {
			return true
		}
		for _, d := range dirs {
			if rel == d || strings.HasPrefix(rel, d+"/") {
				return true
			}
		}
		return false
	}, nil
}

func splitNUL(out string) []string {
	var items []string
	for _, s := range strings.Split(out, "\x00") {
		if s = strings.TrimSpace(s); s != "" {
			items = append(items, s)
		}
	}
	return items
}
