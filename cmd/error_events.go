package cmd

import (
	"io"
	"strings"

	"fix-format/internal/output"
)

type cliErrorHint struct {
	NextAction  string
	FixExample  string
	DocKey      string
	Recoverable bool
}

// writeCLIError reports a failure that happened before any file was
// processed, in the machine-readable format the user asked for.
func writeCLIError(w io.Writer, format string, args []string, ee *ExitError) {
	h := cliHintByCode(ee.Kind)
	events := []map[string]any{
		{
			"type":          "meta",
			"tool":          "fix-format",
			"version":       Version,
			"args":          args,
			"output_format": format,
		},
		{
			"type":        "error",
			"code":        ee.Kind,
			"fatal":       true,
			"detail":      ee.Msg,
			"next_action": h.NextAction,
			"fix_example": h.FixExample,
			"doc_key":     h.DocKey,
			"recoverable": h.Recoverable,
		},
		{
			"type":           "summary",
			"analysed_files": 0,
			"changed_files":  0,
			"error_count":    1,
			"exit_code":      ee.Code,
		},
	}
	_ = output.Write(w, normalizeFormat(format), events)
}

func normalizeFormat(format string) string {
	if format == output.FormatJSON {
		return output.FormatJSON
	}
	return output.FormatNDJSON
}

func detectFormatFromArgs(args []string) string {
	format := output.FormatText
	for i := 0; i < len(args); i++ {
		a := strings.TrimSpace(args[i])
		if a == "--format" {
			if i+1 < len(args) {
				return args[i+1]
			}
			continue
		}
		if strings.HasPrefix(a, "--format=") {
			return strings.TrimPrefix(a, "--format=")
		}
	}
	return format
}

func cliHintByCode(code string) cliErrorHint {
	switch code {
	case "arg_missing_paths":
		return cliErrorHint{
			NextAction:  "pass at least one file or directory, or use --stdin / --commit",
			FixExample:  "fix-format --check src/",
			DocKey:      "arg.missing_paths",
			Recoverable: true,
		}
	case "invalid_output_format":
		return cliErrorHint{
			NextAction:  "set --format to text, ndjson or json",
			FixExample:  "fix-format --check src/ --format ndjson",
			DocKey:      "arg.invalid_output_format",
			Recoverable: true,
		}
	case "invalid_input_paths":
		return cliErrorHint{
			NextAction:  "check that every path exists and is spelled correctly",
			FixExample:  "fix-format src/module.py",
			DocKey:      "arg.invalid_input_paths",
			Recoverable: true,
		}
	case "config_invalid":
		return cliErrorHint{
			NextAction:  "fix the configuration file or the FIX_FORMAT_* environment variables",
			FixExample:  "fix-format --config .fix-format.yaml src/",
			DocKey:      "config.invalid",
			Recoverable: true,
		}
	case "cwd_failed":
		return cliErrorHint{
			NextAction:  "run from an accessible directory",
			FixExample:  "cd /path/to/repo && fix-format --commit",
			DocKey:      "runtime.cwd_failed",
			Recoverable: true,
		}
	case "run_failed":
		return cliErrorHint{
			NextAction:  "check that the working directory is a git repository when using --commit",
			FixExample:  "git status && fix-format --commit",
			DocKey:      "runtime.run_failed",
			Recoverable: true,
		}
	case "output_write_failed":
		return cliErrorHint{
			NextAction:  "check that the output pipe or redirect target is writable",
			FixExample:  "fix-format --check src/ --format ndjson > report.ndjson",
			DocKey:      "runtime.output_write_failed",
			Recoverable: true,
		}
	case "hook_install_failed":
		return cliErrorHint{
			NextAction:  "run from inside a git working tree with a writable .git directory",
			FixExample:  "cd /path/to/repo && fix-format --git-hooks",
			DocKey:      "hooks.install_failed",
			Recoverable: true,
		}
	default:
		return cliErrorHint{
			NextAction:  "fix the arguments according to detail and run again",
			FixExample:  "fix-format --help",
			DocKey:      "general.error",
			Recoverable: true,
		}
	}
}
