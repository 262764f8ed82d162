package scan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fix-format/internal/classify"
	"fix-format/internal/vcs"
)

// skipDirs are version-control metadata directories, never walked.
var skipDirs = map[string]struct{}{
	".git": {},
	".hg":  {},
}

type Mode int

const (
	ModePaths Mode = iota
	ModeStdin
	ModeCommit
)

func (m Mode) String() string {
	switch m {
	case ModeStdin:
		return "stdin"
	case ModeCommit:
		return "commit"
	default:
		return "paths"
	}
}

type Options struct {
	Mode  Mode
	Paths []string
	// Stdin is read in ModeStdin, one path per line.
	Stdin io.Reader
	CWD   string
	// Classifier filters files met during directory walks; nil keeps all.
	Classifier *classify.Classifier
	VCS        vcs.Client
	Logger     *slog.Logger
}

type ScanResult struct {
	Files  []string
	Errors []ScanError
}

type ScanError struct {
	Code   string
	Path   string
	Detail string
}

const (
	CodePathNotFound = "input_path_not_found"
	CodeStatFailed   = "input_stat_failed"
	CodeWalkError    = "walk_error"
)

// MissingInputs lists the inputs that do not exist.
func (r ScanResult) MissingInputs() []string {
	var out []string
	for _, e := range r.Errors {
		if e.Code == CodePathNotFound {
			out = append(out, e.Path)
		}
	}
	return out
}

// Collect resolves the inputs of one run into a sorted list of unique,
// absolute file paths. The error is set only when the input list itself
// could not be obtained.
func Collect(ctx context.Context, opts Options) (ScanResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "scan"), slog.String("mode", opts.Mode.String()))
	m := make(map[string]struct{})
	var errs []ScanError

	switch opts.Mode {
	case ModeStdin:
		if opts.Stdin == nil {
			return ScanResult{}, errors.New("no standard input to read file names from")
		}
		names, err := ReadList(opts.Stdin)
		if err != nil {
			return ScanResult{}, err
		}
		for _, n := range names {
			m[absFrom(opts.CWD, n)] = struct{}{}
		}
	case ModeCommit:
		if opts.VCS == nil {
			return ScanResult{}, errors.New("no version control client configured")
		}
		files, err := opts.VCS.ChangedFiles(ctx, opts.CWD)
		if err != nil {
			return ScanResult{}, fmt.Errorf("list changed files: %w", err)
		}
		for _, f := range files {
			m[f] = struct{}{}
		}
	default:
		for _, in := range opts.Paths {
			abs := absFrom(opts.CWD, in)
			info, err := os.Stat(abs)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					errs = append(errs, ScanError{Code: CodePathNotFound, Path: in, Detail: "path does not exist"})
					continue
				}
				errs = append(errs, ScanError{Code: CodeStatFailed, Path: in, Detail: err.Error()})
				continue
			}
			if info.IsDir() {
				walkDir(ctx, abs, opts, logger, m, &errs)
				continue
			}
			m[abs] = struct{}{}
		}
	}

	files := make([]string, 0, len(m))
	for p := range m {
		files = append(files, p)
	}
	sort.Strings(files)
	logger.Debug("collected files", slog.Int("count", len(files)), slog.Int("errors", len(errs)))
	return ScanResult{Files: files, Errors: errs}, nil
}

func walkDir(ctx context.Context, root string, opts Options, logger *slog.Logger, out map[string]struct{}, errs *[]ScanError) {
	ignored := vcs.NeverIgnored
	if opts.VCS != nil {
		fn, err := opts.VCS.Ignored(ctx, root)
		if err != nil {
			logger.Warn("ignored-file lookup failed", slog.String("dir", root), slog.Any("error", err))
		} else {
			ignored = fn
		}
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			*errs = append(*errs, ScanError{Code: CodeWalkError, Path: path, Detail: err.Error()})
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, ok := skipDirs[d.Name()]; ok {
				return fs.SkipDir
			}
			if ignored(path, true) {
				return fs.SkipDir
			}
			return nil
		}
		if ignored(path, false) {
			return nil
		}
		if opts.Classifier != nil && !opts.Classifier.Wanted(path) {
			return nil
		}
		out[path] = struct{}{}
		return nil
	})
}

// ReadList reads one path per line. Lines are trimmed and blank lines
// dropped.
func ReadList(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read file list: %w", err)
	}
	return out, nil
}

func absFrom(cwd, p string) string {
	if !filepath.IsAbs(p) && cwd != "" {
		p = filepath.Join(cwd, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
