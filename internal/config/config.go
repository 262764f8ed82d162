package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"fix-format/internal/classify"
)

const (
	FileName = ".fix-format.yaml"

	BackendExec  = "exec"
	BackendGoGit = "go-git"
)

type Python struct {
	LineLength    *int     `yaml:"line_length"`
	ReflowCommand []string `yaml:"reflow_command"`
	CodeServer    []string `yaml:"code_server"`
	Batch         *bool    `yaml:"batch"`
	BatchCommand  []string `yaml:"batch_command"`
}

type Cpp struct {
	ClangFormat string `yaml:"clang_format"`
}

type Git struct {
	Backend string `yaml:"backend"`
}

type Config struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
	Python  Python   `yaml:"python"`
	Cpp     Cpp      `yaml:"cpp"`
	Git     Git      `yaml:"git"`
}

// Project is the effective configuration of one run.
type Project struct {
	ConfigPath    string
	PyprojectPath string

	Include []string
	Exclude []string

	// LineLength is forced on the reflow engine when positive; zero leaves
	// the engine's own configuration in charge.
	LineLength    int
	ReflowCommand []string
	CodeServer    []string
	Batch         bool
	BatchCommand  []string
	ClangFormat   string
	GitBackend    string
}

func Defaults() Project {
	return Project{
		Include:       append([]string(nil), classify.DefaultPatterns...),
		ReflowCommand: []string{"isort"},
		BatchCommand:  []string{"black"},
		ClangFormat:   "clang-format",
		GitBackend:    BackendExec,
	}
}

func Load(path string) (Config, error) {
	var cfg Config
	if strings.TrimSpace(path) == "" {
		return cfg, fmt.Errorf("config file path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	expanded, err := expandEnv(string(b))
	if err != nil {
		return cfg, err
	}
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

type ResolveOptions struct {
	// Inputs are the paths the run starts from; project files are searched
	// from their common ancestor upwards.
	Inputs     []string
	ConfigPath string
	CWD        string
	EnvPrefix  string
}

// Resolve layers defaults, pyproject.toml, the YAML config file and the
// environment, in that order.
func Resolve(opts ResolveOptions) (Project, error) {
	p := Defaults()
	start := CommonDir(opts.Inputs, opts.CWD)

	if pp := FindUp(start, PyprojectName); pp != "" {
		pyproject, err := LoadPyproject(pp)
		if err != nil {
			return p, err
		}
		pyproject.apply(&p, filepath.Dir(pp))
		p.PyprojectPath = pp
	}

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = FindUp(start, FileName)
	}
	if cfgPath != "" {
		abs, err := filepath.Abs(cfgPath)
		if err != nil {
			return p, fmt.Errorf("resolve config path: %w", err)
		}
		cfg, err := Load(abs)
		if err != nil {
			return p, err
		}
		cfg.apply(&p, filepath.Dir(abs))
		p.ConfigPath = abs
	}

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = EnvPrefix
	}
	if err := ApplyEnv(&p, prefix, opts.CWD); err != nil {
		return p, err
	}
	switch p.GitBackend {
	case BackendExec, BackendGoGit:
	default:
		return p, fmt.Errorf("unknown git backend %q (expected %s or %s)", p.GitBackend, BackendExec, BackendGoGit)
	}
	return p, nil
}

func (c Config) apply(p *Project, dir string) {
	p.Include = appendUnique(p.Include, c.Include...)
	p.Exclude = appendUnique(p.Exclude, anchor(dir, c.Exclude)...)
	if c.Python.LineLength != nil {
		p.LineLength = *c.Python.LineLength
	}
	if c.Python.ReflowCommand != nil {
		p.ReflowCommand = c.Python.ReflowCommand
	}
	if c.Python.CodeServer != nil {
		p.CodeServer = c.Python.CodeServer
	}
	if c.Python.Batch != nil {
		p.Batch = *c.Python.Batch
	}
	if c.Python.BatchCommand != nil {
		p.BatchCommand = c.Python.BatchCommand
	}
	if c.Cpp.ClangFormat != "" {
		p.ClangFormat = c.Cpp.ClangFormat
	}
	if c.Git.Backend != "" {
		p.GitBackend = c.Git.Backend
	}
}

// anchor makes relative patterns absolute against dir.
func anchor(dir string, patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, pat := range patterns {
		if pat == "" {
			continue
		}
		if !filepath.IsAbs(pat) && dir != "" {
			pat = filepath.Join(dir, pat)
		}
		out = append(out, pat)
	}
	return out
}

func appendUnique(dst []string, values ...string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, v := range dst {
		seen[v] = struct{}{}
	}
	for _, v := range values {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		dst = append(dst, v)
	}
	return dst
}

var envExpr = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

func expandEnv(src string) (string, error) {
	var out strings.Builder
	last := 0
	for _, idx := range envExpr.FindAllStringSubmatchIndex(src, -1) {
		out.WriteString(src[last:idx[0]])
		name := src[idx[2]:idx[3]]
		hasDefault := idx[4] >= 0 && idx[5] >= 0
		defVal := ""
		if hasDefault && idx[6] >= 0 && idx[7] >= 0 {
			defVal = src[idx[6]:idx[7]]
		}
		if v, ok := os.LookupEnv(name); ok {
			out.WriteString(v)
		} else if hasDefault {
			out.WriteString(defVal)
		} else {
			return "", fmt.Errorf("config references unset environment variable %s", name)
		}
		last = idx[1]
	}
	out.WriteString(src[last:])
	return out.String(), nil
}
