package textutil

import (
	"strings"
	"unicode"
)

const (
	TabWidth = 4

	LF   = "\n"
	CRLF = "\r\n"
	CR   = "\r"
)

// DetectEOL reports the terminator of the first line read from a file.
// Only the first line is inspected: tools run later in the pipeline may
// rewrite terminators, so the answer must be taken before any of them runs.
func DetectEOL(firstLine string) string {
	switch {
	case strings.HasSuffix(firstLine, CRLF):
		return CRLF
	case strings.HasSuffix(firstLine, CR):
		return CR
	default:
		return LF
	}
}

// FirstLine returns the first line of text including its terminator.
func FirstLine(text string) string {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			return text[:i+1]
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				return text[:i+2]
			}
			return text[:i+1]
		}
	}
	return text
}

// SplitLines splits text after every "\n", "\r\n" or "\r", keeping the
// terminators. A trailing terminator does not produce an empty last line.
func SplitLines(text string) []string {
	lines := make([]string, 0, strings.Count(text, "\n")+1)
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i+1])
			start = i + 1
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

// Normalize strips trailing whitespace from every line, expands tabs to
// TabWidth stops and joins the lines with eol. A final eol is written only
// when the original content ended with one.
func Normalize(lines []string, eol string, endsWithEOL bool) string {
	var b strings.Builder
	for i, ln := range lines {
		if i > 0 {
			b.WriteString(eol)
		}
		b.WriteString(ExpandTabs(strings.TrimRightFunc(ln, unicode.IsSpace), TabWidth))
	}
	if endsWithEOL {
		b.WriteString(eol)
	}
	return b.String()
}

// NormalizeText is Normalize applied to a whole text whose EOL style was
// already detected.
func NormalizeText(text, eol string, endsWithEOL bool) string {
	return Normalize(SplitLines(text), eol, endsWithEOL)
}

// ExpandTabs replaces every tab in a single line with spaces up to the next
// multiple of width. Columns count runes.
func ExpandTabs(line string, width int) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var b strings.Builder
	b.Grow(len(line) + width*strings.Count(line, "\t"))
	col := 0
	for _, r := range line {
		if r == '\t' {
			n := width - col%width
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}
