package formatter

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// BinaryAware formats files of the binary-aware family in place.
type BinaryAware interface {
	Name() string
	// WouldChange asks the tool whether it would rewrite path.
	WouldChange(ctx context.Context, path string) (bool, error)
	// Apply rewrites path in place.
	Apply(ctx context.Context, path string) error
}

type ClangFormat struct {
	Binary string
}

func (c ClangFormat) Name() string { return "clang-format" }

func (c ClangFormat) WouldChange(ctx context.Context, path string) (bool, error) {
	out, err := c.run(ctx, "-output-replacements-xml", path)
	if err != nil {
		return false, err
	}
	return bytes.Contains(out, []byte("<replacement ")), nil
}

func (c ClangFormat) Apply(ctx context.Context, path string) error {
	_, err := c.run(ctx, "-i", path)
	return err
}

func (c ClangFormat) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			detail = ": " + detail
		}
		return nil, fmt.Errorf("%s %s: %w%s", c.Binary, strings.Join(args, " "), err, detail)
	}
	return out, nil
}
