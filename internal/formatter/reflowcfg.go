package formatter

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/ini.v1"
)

// DefaultReflowLineLength is the reflow engine's line length when no
// configuration file sets one.
const DefaultReflowLineLength = 79

// reflowConfigFiles are looked up in this order in every directory. The
// first one holding a reflow section wins, even without a line length.
var reflowConfigFiles = []struct {
	name     string
	sections []string
}{
	{".isort.cfg", []string{"settings", "isort"}},
	{"pyproject.toml", []string{"tool.isort"}},
	{"setup.cfg", []string{"isort", "tool:isort"}},
	{"tox.ini", []string{"isort", "tool:isort"}},
}

// projectRootMarkers stop the upward search once their directory was
// checked.
var projectRootMarkers = []string{".git", ".hg"}

type reflowSetting struct {
	lineLength int
	source     string
}

// ReflowSettings resolves the line length the reflow engine applies to a
// file, searching its configuration the way the engine does: from the
// file's directory up to the project root. Answers are cached per directory
// for one run.
type ReflowSettings struct {
	known map[string]reflowSetting
}

func NewReflowSettings() *ReflowSettings {
	return &ReflowSettings{known: map[string]reflowSetting{}}
}

// LineLength returns the effective line length for file and the
// configuration file it came from, empty when the default applies.
func (s *ReflowSettings) LineLength(file string) (int, string) {
	abs, err := filepath.Abs(file)
	if err != nil {
		abs = file
	}
	st := s.resolve(filepath.Dir(abs))
	return st.lineLength, st.source
}

func (s *ReflowSettings) resolve(dir string) reflowSetting {
	if st, ok := s.known[dir]; ok {
		return st
	}
	st, found := readReflowConfig(dir)
	if !found {
		parent := filepath.Dir(dir)
		if parent == dir || isProjectRoot(dir) {
			st = reflowSetting{lineLength: DefaultReflowLineLength}
		} else {
			st = s.resolve(parent)
		}
	}
	s.known[dir] = st
	return st
}

func isProjectRoot(dir string) bool {
	for _, m := range projectRootMarkers {
		if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
			return true
		}
	}
	return false
}

func readReflowConfig(dir string) (reflowSetting, bool) {
	for _, cf := range reflowConfigFiles {
		path := filepath.Join(dir, cf.name)
		if !isFile(path) {
			continue
		}
		var (
			values map[string]string
			ok     bool
		)
		if strings.HasSuffix(cf.name, ".toml") {
			values, ok = tomlSection(path)
		} else {
			values, ok = iniSection(path, cf.sections)
		}
		if !ok {
			continue
		}
		st := reflowSetting{lineLength: DefaultReflowLineLength, source: path}
		for _, key := range []string{"line_length", "line-length"} {
			if v, has := values[key]; has {
				if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
					st.lineLength = n
				}
				break
			}
		}
		return st, true
	}
	return reflowSetting{}, false
}

func iniSection(path string, names []string) (map[string]string, bool) {
	cfg, err := ini.LoadSources(ini.LoadOptions{Loose: true, AllowBooleanKeys: true, SkipUnrecognizableLines: true}, path)
	if err != nil {
		return nil, false
	}
	for _, name := range names {
		sec, err := cfg.GetSection(name)
		if err != nil {
			continue
		}
		return sec.KeysHash(), true
	}
	return nil, false
}

func tomlSection(path string) (map[string]string, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var doc struct {
		Tool struct {
			Isort map[string]any `toml:"isort"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(b, &doc); err != nil || doc.Tool.Isort == nil {
		return nil, false
	}
	out := make(map[string]string, len(doc.Tool.Isort))
	for k, v := range doc.Tool.Isort {
		switch n := v.(type) {
		case int64:
			out[k] = strconv.FormatInt(n, 10)
		case string:
			out[k] = n
		}
	}
	return out, true
}
