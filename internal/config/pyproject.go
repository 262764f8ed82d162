package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const PyprojectName = "pyproject.toml"

type Pyproject struct {
	Tool struct {
		FixFormat struct {
			Include []string `toml:"include"`
			Exclude []string `toml:"exclude"`
		} `toml:"fix-format"`
	} `toml:"tool"`

	// HasBlack is set when the file declares a [tool.black] table, which
	// turns on the project-wide batch formatter.
	HasBlack bool `toml:"-"`
}

func LoadPyproject(path string) (Pyproject, error) {
	var pp Pyproject
	b, err := os.ReadFile(path)
	if err != nil {
		return pp, fmt.Errorf("read %s: %w", path, err)
	}
	if err := toml.Unmarshal(b, &pp); err != nil {
		return pp, fmt.Errorf("parse %s: %w", path, err)
	}
	var raw struct {
		Tool map[string]any `toml:"tool"`
	}
	if err := toml.Unmarshal(b, &raw); err == nil {
		_, pp.HasBlack = raw.Tool["black"]
	}
	if !pp.HasBlack {
		pp.HasBlack = strings.Contains(string(b), "[tool.black]")
	}
	return pp, nil
}

func (pp Pyproject) apply(p *Project, dir string) {
	p.Include = appendUnique(p.Include, pp.Tool.FixFormat.Include...)
	p.Exclude = appendUnique(p.Exclude, anchor(dir, pp.Tool.FixFormat.Exclude)...)
	if pp.HasBlack {
		p.Batch = true
	}
}
