package app

import (
	"io"
	"log/slog"

	"fix-format/internal/classify"
	"fix-format/internal/config"
	"fix-format/internal/formatter"
	"fix-format/internal/scan"
)

const (
	StatusFailed  = "Failed"
	StatusOK      = "OK"
	StatusFixed   = "Fixed"
	StatusSkipped = "Skipped"
)

// Status is the word reported for an analysed file.
func Status(check, changed bool) string {
	switch {
	case check && changed:
		return StatusFailed
	case check:
		return StatusOK
	case changed:
		return StatusFixed
	default:
		return StatusSkipped
	}
}

type Options struct {
	Check   bool
	Verbose bool

	Input scan.Mode
	Paths []string
	Stdin io.Reader
	CWD   string

	ConfigPath string
	Format     string
	Version    string
	Args       []string

	// ToolOutput receives the batch formatter's own output.
	ToolOutput io.Writer
	Launcher   *formatter.Launcher
	Logger     *slog.Logger

	// OnBatch and OnFile are called as the run progresses, for streaming
	// reports. Both are optional.
	OnBatch func(files int, check bool)
	OnFile  func(FileResult)
}

type FileResult struct {
	Path      string
	Status    string
	Changed   bool
	Formatter string
	// Reason is set for files that were not analysed.
	Reason string
}

func (f FileResult) Analysed() bool { return f.Reason == "" }

type Report struct {
	Check   bool
	Verbose bool
	Project config.Project

	Analysed []string
	Changed  []string
	Skipped  []classify.FileTask
	Files    []FileResult
	Errors   []*formatter.FileError

	BatchFiles       int
	WouldBeFormatted bool
}

func (r Report) Unchanged() int { return len(r.Analysed) - len(r.Changed) }

// ExitCode is 1 when any error was recorded, or in check mode when a file
// would change, else 0.
func (r Report) ExitCode() int {
	if len(r.Errors) > 0 {
		return 1
	}
	if r.Check && (len(r.Changed) > 0 || r.WouldBeFormatted) {
		return 1
	}
	return 0
}
