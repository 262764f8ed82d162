package textutil

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

const BOM = "\ufeff"

var bomBytes = []byte(BOM)

var (
	ErrNotUTF8    = errors.New("the file contents can not be decoded using UTF-8")
	ErrMissingBOM = errors.New("not a valid UTF-8 encoded file, since it contains non-ASCII characters; ensure it has UTF-8 encoding with BOM")
)

// DecodeUTF8 strictly decodes data. The BOM, if any, is kept in the text.
func DecodeUTF8(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	if hint := guessUTF16(data); hint != "" {
		return "", fmt.Errorf("%w (content looks like %s)", ErrNotUTF8, hint)
	}
	return "", ErrNotUTF8
}

func guessUTF16(data []byte) string {
	if len(data) < 2 {
		return ""
	}
	candidates := []struct {
		name   string
		prefix []byte
		endian unicode.Endianness
	}{
		{"UTF-16LE", []byte{0xff, 0xfe}, unicode.LittleEndian},
		{"UTF-16BE", []byte{0xfe, 0xff}, unicode.BigEndian},
	}
	for _, c := range candidates {
		if !bytes.HasPrefix(data, c.prefix) {
			continue
		}
		if _, err := unicode.UTF16(c.endian, unicode.ExpectBOM).NewDecoder().Bytes(data); err == nil {
			return c.name
		}
	}
	return ""
}

// HasNonASCII reports whether text holds a character outside the printable
// ASCII range. ASCII whitespace controls do not count.
func HasNonASCII(text string) bool {
	for _, r := range text {
		if r >= ' ' && r <= '~' {
			continue
		}
		switch r {
		case '\t', '\n', '\v', '\f', '\r':
			continue
		}
		return true
	}
	return false
}

// CheckBOMPolicy enforces that non-ASCII content starts with a UTF-8 BOM.
func CheckBOMPolicy(data []byte, text string) error {
	if HasNonASCII(text) && !bytes.HasPrefix(data, bomBytes) {
		return ErrMissingBOM
	}
	return nil
}

// StripBOM removes a leading BOM and reports whether one was present.
func StripBOM(text string) (string, bool) {
	if len(text) < len(BOM) || text[:len(BOM)] != BOM {
		return text, false
	}
	out, err := unicode.UTF8BOM.NewDecoder().String(text)
	if err != nil {
		return text[len(BOM):], true
	}
	return out, true
}
