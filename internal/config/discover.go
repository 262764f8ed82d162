package config

import (
	"os"
	"path/filepath"
	"strings"
)

// CommonDir returns the deepest directory containing every path. Relative
// paths are taken against cwd. A path naming a file contributes its parent.
func CommonDir(paths []string, cwd string) string {
	var common []string
	first := true
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}
		p = filepath.Clean(p)
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			p = filepath.Dir(p)
		}
		parts := splitPath(p)
		if first {
			common = parts
			first = false
			continue
		}
		n := 0
		for n < len(common) && n < len(parts) && common[n] == parts[n] {
			n++
		}
		common = common[:n]
	}
	if first {
		return cwd
	}
	return joinPath(common)
}

// FindUp looks for name in start and each of its ancestors and returns the
// first regular file found.
func FindUp(start, name string) string {
	if start == "" {
		return ""
	}
	dir := filepath.Clean(start)
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func splitPath(p string) []string {
	vol := filepath.VolumeName(p)
	rest := strings.TrimPrefix(p[len(vol):], string(filepath.Separator))
	parts := []string{vol + string(filepath.Separator)}
	if rest == "" {
		return parts
	}
	return append(parts, strings.Split(rest, string(filepath.Separator))...)
}

func joinPath(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return filepath.Join(parts...)
}
