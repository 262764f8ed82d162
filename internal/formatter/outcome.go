package formatter

import "fmt"

type Kind int

const (
	// DecodeError: the content is not valid UTF-8. Fatal.
	DecodeError Kind = iota
	// EncodingPolicyError: non-ASCII content without a BOM in the
	// binary-aware family. Fatal, the file is left untouched.
	EncodingPolicyError
	// ToolInvocationError: an external tool could not run or exited with a
	// failure. Fatal.
	ToolInvocationError
	// ToolRuntimeError: the code server failed mid-pipeline; the text from
	// before that step is kept.
	ToolRuntimeError
	// ConfigAdvisory: a configuration value below the recommended minimum.
	ConfigAdvisory
	// BOMStripped: a BOM was removed from a reflow-family file.
	BOMStripped
	// IOError: the file could not be read or written. Fatal.
	IOError
	// BatchError: the batch formatter failed; not tied to one file.
	BatchError
)

func (k Kind) String() string {
	switch k {
	case DecodeError:
		return "decode_error"
	case EncodingPolicyError:
		return "encoding_policy_error"
	case ToolInvocationError:
		return "tool_invocation_error"
	case ToolRuntimeError:
		return "tool_runtime_error"
	case ConfigAdvisory:
		return "config_advisory"
	case BOMStripped:
		return "bom_stripped"
	case IOError:
		return "io_error"
	case BatchError:
		return "batch_error"
	default:
		return "unknown"
	}
}

// Fatal reports whether processing of the file stopped at this error.
func (k Kind) Fatal() bool {
	switch k {
	case DecodeError, EncodingPolicyError, ToolInvocationError, IOError, BatchError:
		return true
	}
	return false
}

type FileError struct {
	Path string
	Kind Kind
	Msg  string
	Err  error
}

func (e *FileError) Error() string {
	if e.Path == "" {
		return "ERROR " + e.Msg
	}
	return fmt.Sprintf("%s: ERROR %s", e.Path, e.Msg)
}

func (e *FileError) Unwrap() error { return e.Err }

func (e *FileError) Fatal() bool { return e.Kind.Fatal() }

type ProcessOutcome struct {
	Changed bool
	Errors  []*FileError
	// Formatter names the external formatter path taken, empty for
	// whitespace-only processing.
	Formatter string
}

func (o *ProcessOutcome) fail(path string, kind Kind, err error, format string, args ...any) {
	o.Errors = append(o.Errors, &FileError{Path: path, Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err})
}

func (o ProcessOutcome) HasFatal() bool {
	for _, e := range o.Errors {
		if e.Fatal() {
			return true
		}
	}
	return false
}
