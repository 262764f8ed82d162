package formatter

import (
	"os"
	"path/filepath"
)

const ClangFormatMarker = ".clang-format"

// MarkerCache answers "is there a marker file in this directory or any of
// its ancestors", remembering the answer for every directory it had to look
// at. It lives for one run; marker files are assumed not to change meanwhile.
type MarkerCache struct {
	name  string
	known map[string]bool
	exist func(path string) bool
}

func NewMarkerCache(name string) *MarkerCache {
	return &MarkerCache{name: name, known: map[string]bool{}, exist: isFile}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Has reports whether the marker is found from file's directory up to the
// filesystem root.
func (c *MarkerCache) Has(file string) bool {
	abs, err := filepath.Abs(file)
	if err != nil {
		abs = file
	}
	dirs := ancestry(filepath.Dir(abs))

	// deepest directory already answered
	i := len(dirs) - 1
	for ; i >= 0; i-- {
		if has, ok := c.known[dirs[i]]; ok {
			if has {
				return true
			}
			break
		}
	}

	found := false
	for _, d := range dirs[i+1:] {
		if found {
			c.known[d] = true
			continue
		}
		found = c.exist(filepath.Join(d, c.name))
		c.known[d] = found
	}
	return found
}

// ancestry lists dir and its ancestors, root first.
func ancestry(dir string) []string {
	var out []string
	for {
		out = append(out, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}
