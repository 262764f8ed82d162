package cmd

import "fmt"

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

type ExitError struct {
	Code int
	Msg  string
	// Kind is the error code used in machine-readable output.
	Kind string
}

func (e *ExitError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Msg
}

func usageError(kind, format string, args ...any) *ExitError {
	return &ExitError{Code: ExitUsage, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
