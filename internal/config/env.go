package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const EnvPrefix = "FIX_FORMAT_"

// ApplyEnv overrides p from environment variables, e.g.
// FIX_FORMAT_LINE_LENGTH=100 or FIX_FORMAT_EXCLUDE=build/**,gen/*.py.
// A variable that is set but empty clears its setting: commands are
// disabled and the line length goes back to the reflow engine's own.
func ApplyEnv(p *Project, prefix, cwd string) error {
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(prefix + key)
		if !ok {
			return nil
		}
		if strings.TrimSpace(v) == "" {
			*dst = 0
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("environment variable %s%s is not a valid integer", prefix, key)
		}
		*dst = n
		return nil
	}
	setBool := func(key string, dst *bool) error {
		v, ok := os.LookupEnv(prefix + key)
		if !ok {
			return nil
		}
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("environment variable %s%s is not a valid boolean", prefix, key)
		}
		*dst = b
		return nil
	}
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(prefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	setCommand := func(key string, dst *[]string) {
		if v, ok := os.LookupEnv(prefix + key); ok {
			*dst = strings.Fields(v)
		}
	}
	addList := func(key string, dst *[]string, anchorDir string) {
		v, ok := os.LookupEnv(prefix + key)
		if !ok {
			return
		}
		items := splitCSV(v)
		if anchorDir != "" {
			items = anchor(anchorDir, items)
		}
		*dst = appendUnique(*dst, items...)
	}

	if err := setInt("LINE_LENGTH", &p.LineLength); err != nil {
		return err
	}
	if err := setBool("BATCH", &p.Batch); err != nil {
		return err
	}
	setCommand("REFLOW_COMMAND", &p.ReflowCommand)
	setCommand("CODE_SERVER", &p.CodeServer)
	setCommand("BATCH_COMMAND", &p.BatchCommand)
	setString("CLANG_FORMAT", &p.ClangFormat)
	setString("GIT_BACKEND", &p.GitBackend)
	addList("INCLUDE", &p.Include, "")
	addList("EXCLUDE", &p.Exclude, cwd)
	return nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func parseBool(v string) (bool, error) {
	s := strings.ToLower(strings.TrimSpace(v))
	switch s {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool")
	}
}
