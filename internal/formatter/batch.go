package formatter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// WindowsChunkSize bounds the number of files per batch invocation where
// the command line length is limited.
const WindowsChunkSize = 100

// Batch runs a project-wide formatter (black-compatible) over many files at
// once. Its output goes straight to the user.
type Batch struct {
	Command   []string
	ChunkSize int
	Stdout    io.Writer
	Stderr    io.Writer
}

type BatchResult struct {
	Files int
	// WouldChange is set in check mode when the tool reported files it
	// would reformat.
	WouldChange bool
	// Failed is set when an invocation failed for another reason.
	Failed bool
	Errors []string
}

func NewBatch(command []string, stdout, stderr io.Writer) *Batch {
	b := &Batch{Command: command, Stdout: stdout, Stderr: stderr}
	if runtime.GOOS == "windows" {
		b.ChunkSize = WindowsChunkSize
	}
	return b
}

// Run does not verify files one by one: the exit status of each invocation
// is taken as the answer for all files it was given.
func (b *Batch) Run(ctx context.Context, files []string, check, verbose bool) BatchResult {
	res := BatchResult{Files: len(files)}
	if len(files) == 0 || len(b.Command) == 0 {
		return res
	}
	chunks := [][]string{files}
	if b.ChunkSize > 0 {
		chunks = slices.Collect(slices.Chunk(files, b.ChunkSize))
	}
	for _, chunk := range chunks {
		args := append([]string{}, b.Command[1:]...)
		if check {
			args = append(args, "--check")
		}
		if verbose {
			args = append(args, "--verbose")
		}
		args = append(args, chunk...)
		cmd := exec.CommandContext(ctx, b.Command[0], args...)
		cmd.Stdout = orDefault(b.Stdout, os.Stdout)
		cmd.Stderr = orDefault(b.Stderr, os.Stderr)
		err := cmd.Run()
		status := 0
		var exitErr *exec.ExitError
		switch {
		case err == nil:
		case errors.As(err, &exitErr):
			status = exitErr.ExitCode()
		default:
			res.Failed = true
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", strings.Join(b.Command, " "), err))
			continue
		}
		switch {
		case status == 0:
		case check && status == 1:
			res.WouldChange = true
		default:
			res.Failed = true
			res.Errors = append(res.Errors, fmt.Sprintf("%s exited with status %d", strings.Join(b.Command, " "), status))
		}
	}
	return res
}

func (b *Batch) name() string {
	if len(b.Command) == 0 {
		return "batch formatter"
	}
	return filepath.Base(b.Command[0])
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
