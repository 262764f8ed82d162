package app

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fix-format/internal/formatter"
)

func TestBanner(t *testing.T) {
	b := Banner("ERRORS")
	assert.Equal(t, strings.Repeat("=", 46)+" ERRORS "+strings.Repeat("=", 46), b)
	assert.Len(t, b, 100)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "Failed", Status(true, true))
	assert.Equal(t, "OK", Status(true, false))
	assert.Equal(t, "Fixed", Status(false, true))
	assert.Equal(t, "Skipped", Status(false, false))
}

func TestSummary(t *testing.T) {
	r := Report{Analysed: []string{"a", "b", "c"}, Changed: []string{"a"}}
	assert.Equal(t, "fix-format: 1 files changed, 2 files left unchanged.", Summary(r))
	r.Check = true
	assert.Equal(t, "fix-format: 1 files would be changed, 2 files would be left unchanged.", Summary(r))
	r.Changed = nil
	assert.Equal(t, "fix-format: 3 files would be left unchanged.", Summary(r))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, Report{}.ExitCode())
	assert.Equal(t, 0, Report{Changed: []string{"a"}}.ExitCode())
	assert.Equal(t, 1, Report{Check: true, Changed: []string{"a"}}.ExitCode())
	assert.Equal(t, 1, Report{Check: true, WouldBeFormatted: true}.ExitCode())
	adv := &formatter.FileError{Path: "a.py", Kind: formatter.ConfigAdvisory, Msg: "x"}
	assert.Equal(t, 1, Report{Errors: []*formatter.FileError{adv}}.ExitCode())
}

func TestTextReport(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTextReport(&buf, false, false)
	tr.File(FileResult{Path: "a.py", Status: StatusOK})
	tr.File(FileResult{Path: "b.cpp", Status: StatusFixed, Changed: true, Formatter: "clang-format"})
	tr.File(FileResult{Path: "c.md", Reason: "Unknown file type"})
	tr.Finish(Report{Analysed: []string{"a.py", "b.cpp"}, Changed: []string{"b.cpp"}})
	assert.Equal(t, "b.cpp: Fixed (clang-format)\nfix-format: 1 files changed, 1 files left unchanged.\n", buf.String())
}

func TestTextReportVerboseAndErrors(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTextReport(&buf, true, true)
	tr.Batch(3, true)
	tr.File(FileResult{Path: "a.py", Status: StatusOK})
	tr.File(FileResult{Path: "c.md", Reason: "Unknown file type"})
	tr.Finish(Report{Errors: []*formatter.FileError{{Path: "x.c", Kind: formatter.DecodeError, Msg: "bad"}}})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Checking batch formatter on 3 files...", lines[0])
	assert.Equal(t, "a.py: OK", lines[1])
	assert.Equal(t, "c.md: Unknown file type", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, Banner("ERRORS"), lines[4])
	assert.Equal(t, "x.c: ERROR bad", lines[5])
}

func TestErrorLinesAlignByDisplayWidth(t *testing.T) {
	same := func(p string) string { return p }
	lines := errorLines([]*formatter.FileError{
		{Path: "abc.py", Kind: formatter.DecodeError, Msg: "bad"},
		{Path: "数据.py", Kind: formatter.ConfigAdvisory, Msg: "short lines"},
		{Kind: formatter.BatchError, Msg: "Error formatting black (see console)"},
	}, same)
	assert.Equal(t, []string{
		"abc.py:  ERROR bad",
		"数据.py: ERROR short lines",
		"ERROR Error formatting black (see console)",
	}, lines)
}

func TestTextReportShortensPathsBelowBase(t *testing.T) {
	base := filepath.Join(t.TempDir(), "proj")
	var buf bytes.Buffer
	tr := NewTextReport(&buf, true, true)
	tr.Base = base
	inside := filepath.Join(base, "src", "a.py")
	outside := filepath.Join(filepath.Dir(base), "other", "b.py")
	tr.File(FileResult{Path: inside, Status: StatusFixed, Changed: true})
	tr.File(FileResult{Path: outside, Status: StatusOK})
	tr.Finish(Report{Errors: []*formatter.FileError{{Path: inside, Kind: formatter.DecodeError, Msg: "bad"}}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, filepath.Join("src", "a.py")+": Fixed", lines[0])
	assert.Equal(t, outside+": OK", lines[1])
	assert.Equal(t, filepath.Join("src", "a.py")+": ERROR bad", lines[4])
}

func TestEvents(t *testing.T) {
	r := Report{
		Check:    true,
		Analysed: []string{"a.py"},
		Changed:  []string{"a.py"},
		Files: []FileResult{
			{Path: "a.py", Status: StatusFailed, Changed: true},
			{Path: "r.md", Reason: "Unknown file type"},
		},
		Errors: []*formatter.FileError{{Path: "a.py", Kind: formatter.ToolRuntimeError, Msg: "Error formatting code: x"}},
	}
	events := Events(Options{Format: "ndjson", Version: "test"}, r)
	require.Len(t, events, 5)
	assert.Equal(t, "meta", events[0]["type"])
	assert.Equal(t, "check", events[0]["mode"])
	assert.Equal(t, "file", events[1]["type"])
	assert.Equal(t, "skipped", events[2]["type"])
	assert.Equal(t, "error", events[3]["type"])
	assert.Equal(t, "tool_runtime_error", events[3]["code"])
	assert.Equal(t, false, events[3]["fatal"])
	sm := events[4]
	assert.Equal(t, "summary", sm["type"])
	assert.Equal(t, 1, sm["exit_code"])
	assert.Equal(t, 0, sm["unchanged_files"])
}
