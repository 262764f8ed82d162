package classify

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type Class int

const (
	Unrecognized Class = iota
	Excluded
	PlainFormat
	ExternalReflow
	ExternalFullReformat
	ExternalBinaryAware
)

func (c Class) String() string {
	switch c {
	case Excluded:
		return "excluded"
	case PlainFormat:
		return "plain"
	case ExternalReflow:
		return "reflow"
	case ExternalFullReformat:
		return "full-reformat"
	case ExternalBinaryAware:
		return "binary-aware"
	default:
		return "unrecognized"
	}
}

func (c Class) Eligible() bool {
	return c != Unrecognized && c != Excluded
}

const (
	ReasonExcluded      = "Excluded file"
	ReasonNotebook      = "paired notebook, generated file"
	ReasonUnknownFormat = "Unknown file type"
)

var BinaryAwarePatterns = []string{
	"*.cpp",
	"*.c",
	"*.h",
	"*.hpp",
	"*.hxx",
	"*.cxx",
	"*.cu",
}

var ReflowPatterns = []string{"*.py"}

var DefaultPatterns = append([]string{
	"*.py",
	"*.java",
	"*.js",
	"*.pyx",
	"*.pxd",
	"CMakeLists.txt",
	"*.cmake",
}, BinaryAwarePatterns...)

type FileTask struct {
	Path   string
	Class  Class
	Reason string
}

// ShouldFormat decides whether path is in scope. Exclude patterns are
// matched against the absolute path and win over include patterns, which are
// matched against the base name.
func ShouldFormat(path string, include, exclude []string) (bool, string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if MatchAny(exclude, abs) {
		return false, ReasonExcluded
	}
	if IsPairedNotebook(path) {
		return false, ReasonNotebook
	}
	if MatchAny(include, filepath.Base(path)) {
		return true, ""
	}
	return false, ReasonUnknownFormat
}

// MatchAny matches patterns against name with both sides using forward
// slashes, whatever the host separator is. Invalid patterns never match.
func MatchAny(patterns []string, name string) bool {
	name = toSlash(name)
	for _, p := range patterns {
		ok, err := doublestar.Match(toSlash(p), name)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// IsPairedNotebook reports whether a .py file is generated from a sibling
// notebook: the .ipynb carries the pairing marker and the .py file does not
// carry its own.
func IsPairedNotebook(path string) bool {
	ext := filepath.Ext(path)
	if ext != ".py" {
		return false
	}
	nb, err := os.ReadFile(strings.TrimSuffix(path, ext) + ".ipynb")
	if err != nil || !bytes.Contains(nb, []byte("jupytext")) {
		return false
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return !bytes.Contains(src, []byte("jupytext:"))
}

type Classifier struct {
	Include []string
	Exclude []string
	// FullReformat routes reflow-family files to the project-wide batch
	// formatter instead of the per-file reflow engine.
	FullReformat bool
}

func New(include, exclude []string, fullReformat bool) *Classifier {
	if len(include) == 0 {
		include = DefaultPatterns
	}
	return &Classifier{Include: include, Exclude: exclude, FullReformat: fullReformat}
}

func (c *Classifier) Classify(path string) FileTask {
	ok, reason := ShouldFormat(path, c.Include, c.Exclude)
	if !ok {
		class := Unrecognized
		if reason != ReasonUnknownFormat {
			class = Excluded
		}
		return FileTask{Path: path, Class: class, Reason: reason}
	}
	base := filepath.Base(path)
	switch {
	case MatchAny(BinaryAwarePatterns, base):
		return FileTask{Path: path, Class: ExternalBinaryAware}
	case MatchAny(ReflowPatterns, base):
		if c.FullReformat {
			return FileTask{Path: path, Class: ExternalFullReformat}
		}
		return FileTask{Path: path, Class: ExternalReflow}
	default:
		return FileTask{Path: path, Class: PlainFormat}
	}
}

// Excluded reports whether path matches an exclude pattern.
func (c *Classifier) Excluded(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return MatchAny(c.Exclude, abs)
}

// Wanted is the enumeration-time filter of directory walks: the base name
// matches an include pattern and the path is not excluded. It never reads
// the file.
func (c *Classifier) Wanted(path string) bool {
	return MatchAny(c.Include, filepath.Base(path)) && !c.Excluded(path)
}

func toSlash(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}
