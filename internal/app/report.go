package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"fix-format/internal/formatter"
)

const bannerWidth = 100

// Banner centers caption in a line of '=' bannerWidth columns wide.
func Banner(caption string) string {
	caption = " " + caption + " "
	fill := (bannerWidth - runewidth.StringWidth(caption)) / 2
	if fill < 0 {
		fill = 0
	}
	h := strings.Repeat("=", fill)
	return h + caption + h
}

// Summary is the closing line of a run without errors.
func Summary(r Report) string {
	verb := ""
	if r.Check {
		verb = "would be "
	}
	first := ""
	if len(r.Changed) > 0 {
		first = fmt.Sprintf("%d files %schanged, ", len(r.Changed), verb)
	}
	return fmt.Sprintf("fix-format: %s%d files %sleft unchanged.", first, r.Unchanged(), verb)
}

// TextReport writes the human-readable report. File lines are written as
// they come; errors and the summary at the end.
type TextReport struct {
	// Base, when set, shortens paths below it to relative ones.
	Base string

	w       io.Writer
	verbose bool

	red, green, yellow, cyan, white, summary *color.Color
}

func NewTextReport(w io.Writer, verbose, noColor bool) *TextReport {
	t := &TextReport{
		w:       w,
		verbose: verbose,
		red:     color.New(color.FgRed),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow),
		cyan:    color.New(color.FgCyan),
		white:   color.New(color.FgWhite),
		summary: color.New(color.FgGreen, color.Bold),
	}
	enabled := !noColor && isTerminal(w)
	for _, c := range []*color.Color{t.red, t.green, t.yellow, t.cyan, t.white, t.summary} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return t
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (t *TextReport) Batch(files int, check bool) {
	verb := "Running"
	if check {
		verb = "Checking"
	}
	t.cyan.Fprintf(t.w, "%s batch formatter on %d files...\n", verb, files)
}

func (t *TextReport) File(f FileResult) {
	if !f.Analysed() {
		if t.verbose {
			t.white.Fprintf(t.w, "%s: %s\n", t.display(f.Path), f.Reason)
		}
		return
	}
	if !f.Changed && !t.verbose {
		return
	}
	msg := t.display(f.Path) + ": " + f.Status
	if f.Formatter != "" {
		msg += " (" + f.Formatter + ")"
	}
	t.statusColor(f.Status).Fprintln(t.w, msg)
}

func (t *TextReport) display(path string) string {
	if t.Base == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(t.Base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

func (t *TextReport) statusColor(status string) *color.Color {
	switch status {
	case StatusFailed:
		return t.red
	case StatusSkipped:
		return t.yellow
	default:
		return t.green
	}
}

func (t *TextReport) Finish(r Report) {
	if len(r.Errors) > 0 {
		fmt.Fprintln(t.w)
		t.red.Fprintln(t.w, Banner("ERRORS"))
		for _, line := range errorLines(r.Errors, t.display) {
			t.red.Fprintln(t.w, line)
		}
		return
	}
	t.summary.Fprintln(t.w, Summary(r))
}

// errorLines renders errors with their ERROR markers aligned in one column.
func errorLines(errs []*formatter.FileError, display func(string) string) []string {
	paths := make([]string, len(errs))
	width := 0
	for i, e := range errs {
		if e.Path != "" {
			paths[i] = display(e.Path)
		}
		width = max(width, runewidth.StringWidth(paths[i]))
	}
	lines := make([]string, 0, len(errs))
	for i, e := range errs {
		if e.Path == "" {
			lines = append(lines, e.Error())
			continue
		}
		pad := strings.Repeat(" ", width-runewidth.StringWidth(paths[i]))
		lines = append(lines, fmt.Sprintf("%s:%s ERROR %s", paths[i], pad, e.Msg))
	}
	return lines
}
