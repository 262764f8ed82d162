package app

import "fix-format/internal/formatter"

type errorHint struct {
	NextAction  string
	FixExample  string
	DocKey      string
	Recoverable bool
}

func buildErrorEvent(e *formatter.FileError) map[string]any {
	code := e.Kind.String()
	h := hintByCode(code)
	return map[string]any{
		"type":        "error",
		"code":        code,
		"fatal":       e.Fatal(),
		"path":        e.Path,
		"detail":      e.Msg,
		"next_action": h.NextAction,
		"fix_example": h.FixExample,
		"doc_key":     h.DocKey,
		"recoverable": h.Recoverable,
	}
}

func hintByCode(code string) errorHint {
	switch code {
	case "decode_error":
		return errorHint{
			NextAction:  "re-encode the file as UTF-8 and run again",
			FixExample:  "iconv -f latin1 -t utf-8 input.py -o input.py.new && mv input.py.new input.py",
			DocKey:      "file.decode_error",
			Recoverable: true,
		}
	case "encoding_policy_error":
		return errorHint{
			NextAction:  "save the file as UTF-8 with BOM, or remove the non-ASCII characters",
			FixExample:  "printf '\\xef\\xbb\\xbf' | cat - input.cpp > input.cpp.new && mv input.cpp.new input.cpp",
			DocKey:      "file.missing_bom",
			Recoverable: true,
		}
	case "tool_invocation_error":
		return errorHint{
			NextAction:  "check that the external formatter is installed and on PATH",
			FixExample:  "FIX_FORMAT_CLANG_FORMAT=/usr/bin/clang-format-17 fix-format src/",
			DocKey:      "tool.invocation",
			Recoverable: true,
		}
	case "tool_runtime_error":
		return errorHint{
			NextAction:  "inspect the code server output; the file kept the text from before that step",
			FixExample:  "fix-format --debug path/to/file.py",
			DocKey:      "tool.runtime",
			Recoverable: true,
		}
	case "config_advisory":
		return errorHint{
			NextAction:  "set the reflow line length to 80 or more",
			FixExample:  "printf '[settings]\\nline_length = 100\\n' > .isort.cfg",
			DocKey:      "config.line_length",
			Recoverable: true,
		}
	case "bom_stripped":
		return errorHint{
			NextAction:  "the BOM was removed; commit the fixed file",
			FixExample:  "fix-format path/to/file.py",
			DocKey:      "file.bom_stripped",
			Recoverable: true,
		}
	case "batch_error":
		return errorHint{
			NextAction:  "read the batch formatter output above and fix the reported files",
			FixExample:  "black --check path/to/project",
			DocKey:      "tool.batch",
			Recoverable: true,
		}
	default:
		return errorHint{
			NextAction:  "fix the input according to detail and run again",
			FixExample:  "fix-format --help",
			DocKey:      "general.error",
			Recoverable: true,
		}
	}
}
