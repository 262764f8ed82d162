package formatter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// SkipFileDirective makes the reflow engine leave a whole file alone.
const SkipFileDirective = "isort:skip_file"

var ErrFileSkipped = errors.New("file skipped by an embedded skip directive")

type ReflowOptions struct {
	Path        string
	SettingsDir string
	// LineLength overrides the engine's configured line length when positive.
	LineLength int
}

// Reflower reorders import statements. It returns ErrFileSkipped when the
// text opts out of reflowing.
type Reflower interface {
	Reflow(ctx context.Context, text string, opts ReflowOptions) (string, error)
}

// ExecReflower pipes the text through an isort-compatible command.
type ExecReflower struct {
	Command []string
}

func (r ExecReflower) Reflow(ctx context.Context, text string, opts ReflowOptions) (string, error) {
	if strings.Contains(text, SkipFileDirective) {
		return text, ErrFileSkipped
	}
	if len(r.Command) == 0 {
		return text, nil
	}
	args := append([]string{}, r.Command[1:]...)
	if opts.SettingsDir != "" {
		args = append(args, "--settings-path", opts.SettingsDir)
	}
	if opts.LineLength > 0 {
		args = append(args, "--line-length", strconv.Itoa(opts.LineLength))
	}
	if opts.Path != "" {
		args = append(args, "--filename", opts.Path)
	}
	args = append(args, "-")

	cmd := exec.CommandContext(ctx, r.Command[0], args...)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return text, fmt.Errorf("%s %s: %w: %s", r.Command[0], strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
